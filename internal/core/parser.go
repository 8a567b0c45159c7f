package core

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// ParsedOrder is the structured result of parsing one raw order text blob.
type ParsedOrder struct {
	OrderNumber  string
	Items        []LineItem
	SkippedLines int // malformed item lines that were tolerated, for a UI warning
}

// noisePrefixes are the header/footer lines POS exports sprinkle through the
// order body. Matched case-insensitively and accent-insensitively against the
// first field of each line.
var noisePrefixes = []string{
	"total",
	"peso",
	"valor",
	"num. pedido",
	"observacao",
	"produto",
}

// ParseOrderText converts a raw comma-delimited order blob into an order number
// and line items.
//
// The first line's second field (quotes stripped) is the order number,
// "Unknown" when absent. Every following line is a candidate item: field 0 is
// the product name, field 1 the ordered quantity. Lines matching a known
// header/footer pattern are dropped, and a line only becomes an item when the
// name is non-empty and the quantity parses as a non-negative integer —
// anything else is skipped, never an error. An empty body yields an empty
// order, also not an error.
func ParseOrderText(raw string) ParsedOrder {
	parsed := ParsedOrder{OrderNumber: "Unknown"}

	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(raw) == "" {
		return parsed
	}

	header := splitFields(lines[0])
	if len(header) > 1 && header[1] != "" {
		parsed.OrderNumber = header[1]
	}

	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := splitFields(line)
		if isNoiseLine(fields[0]) {
			continue
		}

		if len(fields) < 2 || fields[0] == "" {
			parsed.SkippedLines++
			continue
		}
		qty, err := strconv.Atoi(fields[1])
		if err != nil || qty < 0 {
			parsed.SkippedLines++
			continue
		}

		received := 0
		parsed.Items = append(parsed.Items, LineItem{
			Name:             NormalizeProductName(fields[0]),
			QuantityOrdered:  qty,
			QuantityReceived: &received,
		})
	}

	return parsed
}

// splitFields splits a raw line on commas, stripping quotes and surrounding
// whitespace from each field. The blobs are not RFC 4180 CSV — quoting is
// decorative and arity varies — so encoding/csv would reject exactly the lines
// this parser must tolerate.
func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	fields := make([]string, len(parts))
	for i, p := range parts {
		fields[i] = strings.TrimSpace(strings.ReplaceAll(p, `"`, ""))
	}
	return fields
}

// isNoiseLine reports whether the line's first field marks a header/footer row.
func isNoiseLine(firstField string) bool {
	folded := foldAccents(strings.ToLower(firstField))
	for _, prefix := range noisePrefixes {
		if strings.HasPrefix(folded, prefix) {
			return true
		}
	}
	return false
}

// foldAccents strips combining marks so "observação" matches "observacao".
func foldAccents(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeProductName title-cases each space-separated token and collapses
// runs of whitespace: `  ARROZ   branco ` → `Arroz Branco`.
func NormalizeProductName(name string) string {
	tokens := strings.Fields(name)
	for i, tok := range tokens {
		r, size := utf8.DecodeRuneInString(tok)
		tokens[i] = string(unicode.ToUpper(r)) + strings.ToLower(tok[size:])
	}
	return strings.Join(tokens, " ")
}

// DecodeOrderUpload turns uploaded order bytes into a UTF-8 string. Brazilian
// POS exports are frequently Windows-1252; anything that is not already valid
// UTF-8 gets decoded from that codepage.
func DecodeOrderUpload(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}
