package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReconciliationEngine drives the conferência flow: load an order into a
// session, take the user's received quantities and reasons, and persist the
// resulting summary + pendency snapshot.
type ReconciliationEngine struct {
	orders OrderService
	store  ReconciliationStore
}

func NewReconciliationEngine(orders OrderService, store ReconciliationStore) *ReconciliationEngine {
	return &ReconciliationEngine{orders: orders, store: store}
}

// LoadSession opens a reconciliation session for an order. Orders with stored
// pendencies or a prior reconciliation open as revisit sessions seeded from
// the pendency set; everything else opens fresh with zero received.
func (e *ReconciliationEngine) LoadSession(ctx context.Context, storeID, orderID int) (*Session, error) {
	order, err := e.orders.GetOrder(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}

	parsed := ParseOrderText(order.RawContent)
	// The stored order number wins over the re-parse in case the blob was
	// edited after ingest.
	if order.OrderNumber != "" {
		parsed.OrderNumber = order.OrderNumber
	}

	pendencies, err := e.store.PendenciesByOrder(ctx, orderID)
	if err != nil {
		return nil, &PersistenceError{Op: "load pendencies", OrderID: orderID, Retryable: true, Err: err}
	}

	if order.Status == OrderStatusReconciled || len(pendencies) > 0 {
		return NewRevisitSession(orderID, parsed, pendencies), nil
	}
	return NewSession(orderID, parsed), nil
}

// Save runs the session through validation, the responsible-party gate, and
// persistence. On success the session is DONE and the summary says whether
// anything is still pending; on a persistence failure the session is FAILED
// and the returned *PersistenceError is retryable.
func (e *ReconciliationEngine) Save(ctx context.Context, sess *Session, responsibleParty string) (*SaveSummary, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}

	rec, pendencies, err := sess.buildRecords(responsibleParty, time.Now())
	if err != nil {
		return nil, err
	}

	sess.State = StatePersisting
	if err := e.store.ReplaceReconciliation(ctx, rec, pendencies); err != nil {
		sess.State = StateFailed
		perr := &PersistenceError{Op: "save reconciliation", OrderID: sess.OrderID, Retryable: true, Err: err}
		log.Printf("reconciliation save failed: order=%d responsible=%q items=%d pendencies=%d err=%v",
			sess.OrderID, responsibleParty, len(rec.Items), len(pendencies), err)
		return nil, perr
	}
	sess.State = StateDone

	summary := &SaveSummary{
		OrderID:         sess.OrderID,
		OrderNumber:     sess.OrderNumber,
		TotalReceived:   rec.TotalReceived,
		TotalShort:      sess.TotalShort(),
		PendencyCount:   len(pendencies),
		FullyReconciled: len(pendencies) == 0,
	}
	if summary.FullyReconciled {
		summary.Message = fmt.Sprintf("Order %s fully reconciled", sess.OrderNumber)
	} else {
		summary.Message = fmt.Sprintf("Order %s reconciled with %d pending item(s)", sess.OrderNumber, len(pendencies))
	}
	return summary, nil
}

// ── PostgreSQL store ──────────────────────────────────────────────────────────

type reconciliationStore struct {
	pool *pgxpool.Pool
}

// NewReconciliationStore constructs a ReconciliationStore backed by PostgreSQL.
func NewReconciliationStore(pool *pgxpool.Pool) ReconciliationStore {
	return &reconciliationStore{pool: pool}
}

func (s *reconciliationStore) PendenciesByOrder(ctx context.Context, orderID int) ([]PendencyRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, order_number, product, quantity_ordered, quantity_received,
		       quantity_short, shortfall_reason, responsible_party, date
		FROM pendencies
		WHERE order_id = $1
		ORDER BY product`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("query pendencies for order %d: %w", orderID, err)
	}
	defer rows.Close()

	var pendencies []PendencyRecord
	for rows.Next() {
		var p PendencyRecord
		if err := rows.Scan(&p.ID, &p.OrderID, &p.OrderNumber, &p.Product, &p.QuantityOrdered,
			&p.QuantityReceived, &p.QuantityShort, &p.ShortfallReason, &p.ResponsibleParty, &p.Date); err != nil {
			return nil, fmt.Errorf("scan pendency: %w", err)
		}
		pendencies = append(pendencies, p)
	}
	return pendencies, rows.Err()
}

func (s *reconciliationStore) PendenciesByStore(ctx context.Context, storeID int) ([]PendencyRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.order_id, p.order_number, p.product, p.quantity_ordered, p.quantity_received,
		       p.quantity_short, p.shortfall_reason, p.responsible_party, p.date
		FROM pendencies p
		JOIN orders o ON o.id = p.order_id
		WHERE o.store_id = $1
		ORDER BY p.date DESC, p.product`,
		storeID,
	)
	if err != nil {
		return nil, fmt.Errorf("query pendencies for store %d: %w", storeID, err)
	}
	defer rows.Close()

	var pendencies []PendencyRecord
	for rows.Next() {
		var p PendencyRecord
		if err := rows.Scan(&p.ID, &p.OrderID, &p.OrderNumber, &p.Product, &p.QuantityOrdered,
			&p.QuantityReceived, &p.QuantityShort, &p.ShortfallReason, &p.ResponsibleParty, &p.Date); err != nil {
			return nil, fmt.Errorf("scan pendency: %w", err)
		}
		pendencies = append(pendencies, p)
	}
	return pendencies, rows.Err()
}

// ReplaceReconciliation swaps the order's pendency set and upserts the summary
// record in one transaction. Delete-then-insert as separate calls could leave
// an empty pendency set on a mid-sequence failure; here a failure at any step
// rolls the whole replacement back.
func (s *reconciliationStore) ReplaceReconciliation(ctx context.Context, rec ReconciliationRecord, pendencies []PendencyRecord) error {
	itemsJSON, err := json.Marshal(rec.Items)
	if err != nil {
		return fmt.Errorf("marshal reconciled items: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM pendencies WHERE order_id = $1", rec.OrderID); err != nil {
		return fmt.Errorf("delete pendencies: %w", err)
	}

	for _, p := range pendencies {
		if _, err := tx.Exec(ctx, `
			INSERT INTO pendencies (order_id, order_number, product, quantity_ordered,
			                        quantity_received, quantity_short, shortfall_reason,
			                        responsible_party, date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			p.OrderID, p.OrderNumber, p.Product, p.QuantityOrdered,
			p.QuantityReceived, p.QuantityShort, p.ShortfallReason,
			p.ResponsibleParty, p.Date,
		); err != nil {
			return fmt.Errorf("insert pendency for %q: %w", p.Product, err)
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO reconciliations (order_id, order_number, total_received, items,
		                             responsible_party, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (order_id) DO UPDATE
		SET order_number      = EXCLUDED.order_number,
		    total_received    = EXCLUDED.total_received,
		    items             = EXCLUDED.items,
		    responsible_party = EXCLUDED.responsible_party,
		    date              = EXCLUDED.date`,
		rec.OrderID, rec.OrderNumber, rec.TotalReceived, itemsJSON,
		rec.ResponsibleParty, rec.Date,
	); err != nil {
		return fmt.Errorf("upsert reconciliation: %w", err)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE orders SET status = 'RECONCILED' WHERE id = $1", rec.OrderID,
	); err != nil {
		return fmt.Errorf("mark order reconciled: %w", err)
	}

	return tx.Commit(ctx)
}
