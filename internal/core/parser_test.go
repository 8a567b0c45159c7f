package core_test

import (
	"testing"

	"varejo-backoffice/internal/core"
)

func TestParseOrderText_BasicOrder(t *testing.T) {
	parsed := core.ParseOrderText("Pedido,12345\nApple,10\nBanana,5\n")

	if parsed.OrderNumber != "12345" {
		t.Errorf("expected order number 12345, got %q", parsed.OrderNumber)
	}
	if len(parsed.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(parsed.Items))
	}
	if parsed.Items[0].Name != "Apple" || parsed.Items[0].QuantityOrdered != 10 {
		t.Errorf("unexpected first item: %+v", parsed.Items[0])
	}
	if parsed.Items[1].Name != "Banana" || parsed.Items[1].QuantityOrdered != 5 {
		t.Errorf("unexpected second item: %+v", parsed.Items[1])
	}
	if parsed.SkippedLines != 0 {
		t.Errorf("expected no skipped lines, got %d", parsed.SkippedLines)
	}
}

func TestParseOrderText_OrderNumberDefaults(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"missing second field", "Pedido\nApple,10\n", "Unknown"},
		{"empty second field", "Pedido,\nApple,10\n", "Unknown"},
		{"quoted number", `"Pedido","98765"` + "\nApple,10\n", "98765"},
		{"empty body", "", "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := core.ParseOrderText(tt.raw).OrderNumber; got != tt.want {
				t.Errorf("order number = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseOrderText_NoiseLinesFiltered(t *testing.T) {
	raw := "Pedido,555\n" +
		"PRODUTO,QTD\n" +
		"Apple,10\n" +
		"TOTAL,100\n" +
		"peso,5kg\n" +
		"Valor,123.45\n" +
		"Num. Pedido,555\n" +
		"OBSERVACAO,entregar cedo\n" +
		"observação,acentuada\n" +
		"Banana,5\n"

	parsed := core.ParseOrderText(raw)
	if len(parsed.Items) != 2 {
		t.Fatalf("expected 2 items after noise filtering, got %d: %+v", len(parsed.Items), parsed.Items)
	}
	for _, item := range parsed.Items {
		if item.Name != "Apple" && item.Name != "Banana" {
			t.Errorf("noise line leaked through as item %q", item.Name)
		}
	}
	// Noise lines are filtered, not counted as malformed.
	if parsed.SkippedLines != 0 {
		t.Errorf("expected 0 skipped lines, got %d", parsed.SkippedLines)
	}
}

func TestParseOrderText_MalformedRowsSkipped(t *testing.T) {
	raw := "Pedido,1\n" +
		"Apple,10\n" +
		"NoQuantityHere\n" +        // missing field
		"Banana,five\n" +           // quantity not an integer
		",7\n" +                    // empty product name
		"Cherry,-3\n" +             // negative quantity
		"Grape,2\n"

	parsed := core.ParseOrderText(raw)
	if len(parsed.Items) != 2 {
		t.Fatalf("expected 2 valid items, got %d: %+v", len(parsed.Items), parsed.Items)
	}
	if parsed.SkippedLines != 4 {
		t.Errorf("expected 4 skipped lines, got %d", parsed.SkippedLines)
	}
	for _, item := range parsed.Items {
		if item.QuantityOrdered < 0 {
			t.Errorf("item %q has negative ordered quantity %d", item.Name, item.QuantityOrdered)
		}
		if item.QuantityReceived == nil || *item.QuantityReceived != 0 {
			t.Errorf("fresh item %q should start with received 0", item.Name)
		}
	}
}

func TestParseOrderText_EmptyBody(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\n"} {
		parsed := core.ParseOrderText(raw)
		if len(parsed.Items) != 0 {
			t.Errorf("ParseOrderText(%q) yielded %d items, want 0", raw, len(parsed.Items))
		}
	}
}

func TestNormalizeProductName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"ARROZ BRANCO", "Arroz Branco"},
		{"  arroz   branco ", "Arroz Branco"},
		{"feijão PRETO", "Feijão Preto"},
		{"óleo", "Óleo"},
		{"a", "A"},
	}
	for _, tt := range tests {
		if got := core.NormalizeProductName(tt.in); got != tt.want {
			t.Errorf("NormalizeProductName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseOrderText_NamesNormalized(t *testing.T) {
	parsed := core.ParseOrderText("Pedido,1\nARROZ   branco,3\n")
	if len(parsed.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(parsed.Items))
	}
	if parsed.Items[0].Name != "Arroz Branco" {
		t.Errorf("expected normalized name, got %q", parsed.Items[0].Name)
	}
}

func TestDecodeOrderUpload_Windows1252(t *testing.T) {
	// "Feijão" in Windows-1252: 0xE3 is ã.
	raw := []byte{'P', 'e', 'd', 'i', 'd', 'o', ',', '1', '\n', 'F', 'e', 'i', 'j', 0xE3, 'o', ',', '4', '\n'}
	text := core.DecodeOrderUpload(raw)
	parsed := core.ParseOrderText(text)
	if len(parsed.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(parsed.Items))
	}
	if parsed.Items[0].Name != "Feijão" {
		t.Errorf("expected decoded name Feijão, got %q", parsed.Items[0].Name)
	}
}

func TestDecodeOrderUpload_UTF8Passthrough(t *testing.T) {
	in := "Pedido,1\nFeijão,4\n"
	if got := core.DecodeOrderUpload([]byte(in)); got != in {
		t.Errorf("valid UTF-8 should pass through unchanged, got %q", got)
	}
}
