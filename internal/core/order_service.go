package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type orderService struct {
	pool *pgxpool.Pool
}

// NewOrderService constructs an OrderService backed by PostgreSQL.
func NewOrderService(pool *pgxpool.Pool) OrderService {
	return &orderService{pool: pool}
}

func (s *orderService) CreateOrder(ctx context.Context, storeID int, supplier, orderDate, rawContent string) (*Order, error) {
	if strings.TrimSpace(supplier) == "" {
		return nil, fmt.Errorf("supplier is required")
	}
	if orderDate == "" {
		orderDate = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", orderDate); err != nil {
		return nil, fmt.Errorf("invalid order date %q: %w", orderDate, err)
	}

	parsed := ParseOrderText(rawContent)

	var orderID int
	if err := s.pool.QueryRow(ctx, `
		INSERT INTO orders (store_id, supplier, order_number, status, order_date, raw_content)
		VALUES ($1, $2, $3, 'OPEN', $4, $5)
		RETURNING id`,
		storeID, strings.TrimSpace(supplier), parsed.OrderNumber, orderDate, rawContent,
	).Scan(&orderID); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	return s.GetOrder(ctx, storeID, orderID)
}

func (s *orderService) GetOrder(ctx context.Context, storeID, orderID int) (*Order, error) {
	o := &Order{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, store_id, supplier, order_number, status, order_date::text, raw_content, created_at
		FROM orders
		WHERE id = $1 AND store_id = $2`,
		orderID, storeID,
	).Scan(&o.ID, &o.StoreID, &o.Supplier, &o.OrderNumber, &o.Status, &o.OrderDate, &o.RawContent, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "order", Ref: strconv.Itoa(orderID)}
		}
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	return o, nil
}

func (s *orderService) ListOrders(ctx context.Context, storeID int, status OrderStatus) ([]Order, error) {
	query := `
		SELECT id, store_id, supplier, order_number, status, order_date::text, created_at
		FROM orders
		WHERE store_id = $1`
	args := []any{storeID}

	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.StoreID, &o.Supplier, &o.OrderNumber, &o.Status, &o.OrderDate, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *orderService) DeleteOrder(ctx context.Context, storeID, orderID int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Assert store ownership before touching dependent rows.
	var exists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1 AND store_id = $2)",
		orderID, storeID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("order ownership check: %w", err)
	}
	if !exists {
		return &NotFoundError{Kind: "order", Ref: strconv.Itoa(orderID)}
	}

	if _, err := tx.Exec(ctx, "DELETE FROM pendencies WHERE order_id = $1", orderID); err != nil {
		return fmt.Errorf("delete pendencies for order %d: %w", orderID, err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM reconciliations WHERE order_id = $1", orderID); err != nil {
		return fmt.Errorf("delete reconciliation for order %d: %w", orderID, err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM orders WHERE id = $1", orderID); err != nil {
		return fmt.Errorf("delete order %d: %w", orderID, err)
	}

	return tx.Commit(ctx)
}
