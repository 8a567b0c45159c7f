package core_test

import (
	"context"
	"os"
	"testing"

	"varejo-backoffice/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE pendencies, reconciliations, orders,
		               stock_movements, stock_items,
		               register_movements, register_sessions,
		               employee_documents, employees,
		               users, stores CASCADE;

		INSERT INTO stores (id, code, name, city, is_active)
		VALUES (1, 'CENTRO', 'Loja Centro', 'São Paulo', true);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func TestReconciliation_FullCycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	orders := core.NewOrderService(pool)
	store := core.NewReconciliationStore(pool)
	engine := core.NewReconciliationEngine(orders, store)

	order, err := orders.CreateOrder(ctx, 1, "Distribuidora Sul", "2026-08-01",
		"Pedido,12345\nApple,10\nBanana,5\n")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if order.Status != core.OrderStatusOpen {
		t.Errorf("expected OPEN, got %s", order.Status)
	}
	if order.OrderNumber != "12345" {
		t.Errorf("expected extracted order number 12345, got %q", order.OrderNumber)
	}

	// First reconciliation: Banana short by 2.
	sess, err := engine.LoadSession(ctx, 1, order.ID)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if sess.Revisit {
		t.Error("first session should be fresh")
	}
	if err := sess.SetReceived("Apple", 10); err != nil {
		t.Fatal(err)
	}
	if err := sess.SetReceived("Banana", 3); err != nil {
		t.Fatal(err)
	}
	if err := sess.SetReason("Banana", "Damaged packaging"); err != nil {
		t.Fatal(err)
	}

	summary, err := engine.Save(ctx, sess, "Maria")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if summary.FullyReconciled || summary.PendencyCount != 1 || summary.TotalReceived != 13 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	pendencies, err := store.PendenciesByOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("PendenciesByOrder failed: %v", err)
	}
	if len(pendencies) != 1 {
		t.Fatalf("expected 1 pendency row, got %d", len(pendencies))
	}
	if p := pendencies[0]; p.Product != "Banana" || p.QuantityShort != 2 {
		t.Errorf("unexpected pendency: %+v", p)
	}

	reloaded, err := orders.GetOrder(ctx, 1, order.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if reloaded.Status != core.OrderStatusReconciled {
		t.Errorf("expected RECONCILED, got %s", reloaded.Status)
	}

	// Revisit: the missing bananas arrive.
	sess2, err := engine.LoadSession(ctx, 1, order.ID)
	if err != nil {
		t.Fatalf("LoadSession (revisit) failed: %v", err)
	}
	if !sess2.Revisit {
		t.Error("second session should be a revisit")
	}
	if err := sess2.AddReceived("Banana", 2); err != nil {
		t.Fatal(err)
	}

	summary2, err := engine.Save(ctx, sess2, "Maria")
	if err != nil {
		t.Fatalf("revisit Save failed: %v", err)
	}
	if !summary2.FullyReconciled || summary2.TotalReceived != 15 {
		t.Errorf("unexpected revisit summary: %+v", summary2)
	}

	pendencies, err = store.PendenciesByOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("PendenciesByOrder (revisit) failed: %v", err)
	}
	if len(pendencies) != 0 {
		t.Errorf("pendency set should be empty after full receipt, got %+v", pendencies)
	}

	// Exactly one summary row, superseded in place.
	var count int
	var totalReceived int
	if err := pool.QueryRow(ctx,
		"SELECT COUNT(*), MAX(total_received) FROM reconciliations WHERE order_id = $1",
		order.ID,
	).Scan(&count, &totalReceived); err != nil {
		t.Fatalf("count reconciliations: %v", err)
	}
	if count != 1 {
		t.Errorf("expected a single reconciliation row, got %d", count)
	}
	if totalReceived != 15 {
		t.Errorf("expected total_received 15, got %d", totalReceived)
	}
}

func TestOrderService_DeleteCascades(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	orders := core.NewOrderService(pool)
	store := core.NewReconciliationStore(pool)
	engine := core.NewReconciliationEngine(orders, store)

	order, err := orders.CreateOrder(ctx, 1, "Distribuidora Sul", "", "Pedido,9\nApple,4\n")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	sess, err := engine.LoadSession(ctx, 1, order.ID)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if err := sess.SetReceived("Apple", 1); err != nil {
		t.Fatal(err)
	}
	if err := sess.SetReason("Apple", "Out of stock"); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Save(ctx, sess, "Maria"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := orders.DeleteOrder(ctx, 1, order.ID); err != nil {
		t.Fatalf("DeleteOrder failed: %v", err)
	}

	var remaining int
	if err := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM pendencies WHERE order_id = $1", order.ID,
	).Scan(&remaining); err != nil {
		t.Fatalf("count pendencies: %v", err)
	}
	if remaining != 0 {
		t.Errorf("pendencies should be removed with their order, got %d", remaining)
	}
}
