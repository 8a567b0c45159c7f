package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type inventoryService struct {
	pool *pgxpool.Pool
}

// NewInventoryService constructs an InventoryService backed by PostgreSQL.
func NewInventoryService(pool *pgxpool.Pool) InventoryService {
	return &inventoryService{pool: pool}
}

func (s *inventoryService) UpsertItem(ctx context.Context, storeID int, product, unit string, minimumLevel decimal.Decimal) (*StockItem, error) {
	product = NormalizeProductName(product)
	if product == "" {
		return nil, fmt.Errorf("product name is required")
	}
	if unit == "" {
		unit = "un"
	}
	if minimumLevel.IsNegative() {
		return nil, fmt.Errorf("minimum level cannot be negative")
	}

	item := &StockItem{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO stock_items (store_id, product, unit, quantity, minimum_level)
		VALUES ($1, $2, $3, 0, $4)
		ON CONFLICT (store_id, product) DO UPDATE
		SET unit = EXCLUDED.unit, minimum_level = EXCLUDED.minimum_level, updated_at = NOW()
		RETURNING id, store_id, product, unit, quantity, minimum_level, updated_at`,
		storeID, product, strings.TrimSpace(unit), minimumLevel,
	).Scan(&item.ID, &item.StoreID, &item.Product, &item.Unit, &item.Quantity, &item.MinimumLevel, &item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert stock item %q: %w", product, err)
	}
	return item, nil
}

func (s *inventoryService) ListItems(ctx context.Context, storeID int) ([]StockItem, error) {
	return s.listItems(ctx, storeID, false)
}

func (s *inventoryService) LowStock(ctx context.Context, storeID int) ([]StockItem, error) {
	return s.listItems(ctx, storeID, true)
}

func (s *inventoryService) listItems(ctx context.Context, storeID int, lowOnly bool) ([]StockItem, error) {
	query := `
		SELECT id, store_id, product, unit, quantity, minimum_level, updated_at
		FROM stock_items
		WHERE store_id = $1`
	if lowOnly {
		query += " AND quantity <= minimum_level"
	}
	query += " ORDER BY product"

	rows, err := s.pool.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	defer rows.Close()

	var items []StockItem
	for rows.Next() {
		var i StockItem
		if err := rows.Scan(&i.ID, &i.StoreID, &i.Product, &i.Unit, &i.Quantity, &i.MinimumLevel, &i.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (s *inventoryService) RecordMovement(ctx context.Context, storeID, itemID int, movType MovementType,
	quantity decimal.Decimal, reason, createdBy string) (*StockMovement, error) {

	switch movType {
	case MovementIn, MovementOut:
		if !quantity.IsPositive() {
			return nil, fmt.Errorf("%s movement requires a positive quantity", movType)
		}
	case MovementAdjust:
		if quantity.IsZero() {
			return nil, fmt.Errorf("ADJUST movement requires a non-zero quantity")
		}
	default:
		return nil, fmt.Errorf("unknown movement type %q", movType)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current decimal.Decimal
	var product string
	if err := tx.QueryRow(ctx,
		"SELECT quantity, product FROM stock_items WHERE id = $1 AND store_id = $2 FOR UPDATE",
		itemID, storeID,
	).Scan(&current, &product); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "stock item", Ref: strconv.Itoa(itemID)}
		}
		return nil, fmt.Errorf("lock stock item %d: %w", itemID, err)
	}

	delta := quantity
	if movType == MovementOut {
		delta = quantity.Neg()
	}
	next := current.Add(delta)
	if next.IsNegative() {
		return nil, fmt.Errorf("movement would leave %q at %s (has %s)", product, next.StringFixed(3), current.StringFixed(3))
	}

	if _, err := tx.Exec(ctx,
		"UPDATE stock_items SET quantity = $1, updated_at = NOW() WHERE id = $2",
		next, itemID,
	); err != nil {
		return nil, fmt.Errorf("update stock quantity: %w", err)
	}

	m := &StockMovement{Product: product}
	if err := tx.QueryRow(ctx, `
		INSERT INTO stock_movements (store_id, item_id, type, quantity, reason, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, store_id, item_id, type, quantity, reason, created_by, created_at`,
		storeID, itemID, movType, quantity, reason, createdBy,
	).Scan(&m.ID, &m.StoreID, &m.ItemID, &m.Type, &m.Quantity, &m.Reason, &m.CreatedBy, &m.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert stock movement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit stock movement: %w", err)
	}
	return m, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, storeID, itemID int) ([]StockMovement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.id, m.store_id, m.item_id, i.product, m.type, m.quantity, m.reason, m.created_by, m.created_at
		FROM stock_movements m
		JOIN stock_items i ON i.id = m.item_id
		WHERE m.store_id = $1 AND m.item_id = $2
		ORDER BY m.created_at DESC`,
		storeID, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var movements []StockMovement
	for rows.Next() {
		var m StockMovement
		if err := rows.Scan(&m.ID, &m.StoreID, &m.ItemID, &m.Product, &m.Type, &m.Quantity, &m.Reason, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
