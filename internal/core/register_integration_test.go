package core_test

import (
	"context"
	"testing"
	"time"

	"varejo-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

func TestRegister_OpenToClose(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	registers := core.NewRegisterService(pool)

	sess, err := registers.OpenSession(ctx, 1, "CX1", "maria", decimal.NewFromInt(200))
	if err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}
	if sess.Status != core.RegisterOpen {
		t.Errorf("expected OPEN, got %s", sess.Status)
	}

	// Second open on the same register must be rejected.
	if _, err := registers.OpenSession(ctx, 1, "CX1", "joao", decimal.Zero); err == nil {
		t.Error("second OPEN session on the same register should fail")
	}

	for _, m := range []struct {
		typ    core.RegisterMovementType
		amount int64
	}{
		{core.RegisterSale, 150},
		{core.RegisterSale, 80},
		{core.RegisterDeposit, 50},
		{core.RegisterWithdrawal, 100},
	} {
		if _, err := registers.RecordMovement(ctx, 1, sess.ID, m.typ,
			decimal.NewFromInt(m.amount), ""); err != nil {
			t.Fatalf("RecordMovement %s failed: %v", m.typ, err)
		}
	}

	// expected = 200 + 150 + 80 + 50 - 100 = 380; drawer counts 375.
	closed, err := registers.CloseSession(ctx, 1, sess.ID, "maria", decimal.NewFromInt(375))
	if err != nil {
		t.Fatalf("CloseSession failed: %v", err)
	}
	if closed.ExpectedAmount == nil || !closed.ExpectedAmount.Equal(decimal.NewFromInt(380)) {
		t.Errorf("unexpected expected amount: %v", closed.ExpectedAmount)
	}
	if closed.Difference == nil || !closed.Difference.Equal(decimal.NewFromInt(-5)) {
		t.Errorf("unexpected difference: %v", closed.Difference)
	}
	if len(closed.Movements) != 4 {
		t.Errorf("expected 4 movements on the closed session, got %d", len(closed.Movements))
	}

	// Movements on a CLOSED session are rejected.
	if _, err := registers.RecordMovement(ctx, 1, sess.ID, core.RegisterSale,
		decimal.NewFromInt(10), ""); err == nil {
		t.Error("movement on a CLOSED session should fail")
	}

	// The register is free again.
	if _, err := registers.OpenSession(ctx, 1, "CX1", "joao", decimal.Zero); err != nil {
		t.Errorf("reopening after close should succeed: %v", err)
	}
}

func TestBenchmark_MonthlyRevenueShares(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	if _, err := pool.Exec(ctx, `
		INSERT INTO stores (id, code, name, city, is_active)
		VALUES (2, 'NORTE', 'Loja Norte', 'São Paulo', true)
	`); err != nil {
		t.Fatalf("seed second store: %v", err)
	}

	registers := core.NewRegisterService(pool)
	benchmark := core.NewBenchmarkService(pool)

	for storeID, sales := range map[int][]int64{1: {600}, 2: {300, 100}} {
		sess, err := registers.OpenSession(ctx, storeID, "CX1", "maria", decimal.Zero)
		if err != nil {
			t.Fatalf("OpenSession store %d failed: %v", storeID, err)
		}
		for _, amount := range sales {
			if _, err := registers.RecordMovement(ctx, storeID, sess.ID,
				core.RegisterSale, decimal.NewFromInt(amount), ""); err != nil {
				t.Fatalf("RecordMovement failed: %v", err)
			}
		}
		// Withdrawals must not count as revenue.
		if _, err := registers.RecordMovement(ctx, storeID, sess.ID,
			core.RegisterWithdrawal, decimal.NewFromInt(50), "sangria"); err != nil {
			t.Fatalf("RecordMovement failed: %v", err)
		}
	}

	now := time.Now()
	report, err := benchmark.MonthlyBenchmark(ctx, now.Year(), int(now.Month()))
	if err != nil {
		t.Fatalf("MonthlyBenchmark failed: %v", err)
	}
	if !report.TotalRevenue.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected chain total 1000, got %s", report.TotalRevenue)
	}

	shares := map[string]string{}
	for _, row := range report.Rows {
		shares[row.StoreCode] = row.Share.StringFixed(2)
	}
	if shares["CENTRO"] != "60.00" || shares["NORTE"] != "40.00" {
		t.Errorf("unexpected shares: %v", shares)
	}

	history, err := benchmark.StoreRevenueHistory(ctx, 2, now.Year())
	if err != nil {
		t.Fatalf("StoreRevenueHistory failed: %v", err)
	}
	if len(history) != 12 {
		t.Fatalf("expected 12 months, got %d", len(history))
	}
	if !history[now.Month()-1].Revenue.Equal(decimal.NewFromInt(400)) {
		t.Errorf("expected 400 for the current month, got %s", history[now.Month()-1].Revenue)
	}
}
