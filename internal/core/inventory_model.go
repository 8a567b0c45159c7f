package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementIn     MovementType = "IN"     // goods received
	MovementOut    MovementType = "OUT"    // goods sold or consumed
	MovementAdjust MovementType = "ADJUST" // stocktake correction, signed quantity
)

// StockItem is one tracked product in a store's inventory.
type StockItem struct {
	ID           int             `json:"id"`
	StoreID      int             `json:"store_id"`
	Product      string          `json:"product"`
	Unit         string          `json:"unit"` // "un", "kg", "cx"...
	Quantity     decimal.Decimal `json:"quantity"`
	MinimumLevel decimal.Decimal `json:"minimum_level"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Low reports whether the item sits at or below its minimum level.
func (i *StockItem) Low() bool {
	return i.Quantity.LessThanOrEqual(i.MinimumLevel)
}

// StockMovement is one inventory change, kept as an audit trail next to the
// running quantity on the item.
type StockMovement struct {
	ID        int             `json:"id"`
	StoreID   int             `json:"store_id"`
	ItemID    int             `json:"item_id"`
	Product   string          `json:"product"`
	Type      MovementType    `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason"`
	CreatedBy string          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}

// InventoryService tracks per-store stock levels and their movement history.
type InventoryService interface {
	// UpsertItem creates a stock item or updates unit/minimum level on an
	// existing one, keyed by (store, product).
	UpsertItem(ctx context.Context, storeID int, product, unit string, minimumLevel decimal.Decimal) (*StockItem, error)

	// ListItems returns the store's items ordered by product name.
	ListItems(ctx context.Context, storeID int) ([]StockItem, error)

	// LowStock returns items at or below their minimum level.
	LowStock(ctx context.Context, storeID int) ([]StockItem, error)

	// RecordMovement applies a movement to an item's running quantity and logs
	// it. IN and OUT require a positive quantity; ADJUST accepts a signed one.
	// A movement that would drive the quantity negative is rejected.
	RecordMovement(ctx context.Context, storeID, itemID int, movType MovementType,
		quantity decimal.Decimal, reason, createdBy string) (*StockMovement, error)

	// ListMovements returns an item's movement history, newest first.
	ListMovements(ctx context.Context, storeID, itemID int) ([]StockMovement, error)
}
