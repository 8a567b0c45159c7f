package core

import (
	"context"
	"time"
)

type OrderStatus string

const (
	OrderStatusOpen       OrderStatus = "OPEN"
	OrderStatusReconciled OrderStatus = "RECONCILED"
)

// Order is a purchase order as delivered to a store: the supplier's raw text
// blob plus the metadata extracted from it. The line items are not persisted
// as rows — they are re-parsed from RawContent whenever a reconciliation
// session opens, so the stored blob stays the single source of truth.
type Order struct {
	ID          int         `json:"id"`
	StoreID     int         `json:"store_id"`
	Supplier    string      `json:"supplier"`
	OrderNumber string      `json:"order_number"`
	Status      OrderStatus `json:"status"`
	OrderDate   string      `json:"order_date"` // YYYY-MM-DD
	RawContent  string      `json:"raw_content,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// OrderService provides purchase order persistence scoped to a store.
type OrderService interface {
	// CreateOrder stores a pasted/uploaded order text. The order number is
	// extracted from the first line at ingest time so listings can show it
	// without re-parsing every blob.
	CreateOrder(ctx context.Context, storeID int, supplier, orderDate, rawContent string) (*Order, error)

	// GetOrder returns one order including its raw content.
	// Returns *NotFoundError when the id does not resolve within the store.
	GetOrder(ctx context.Context, storeID, orderID int) (*Order, error)

	// ListOrders returns the store's orders, newest first, optionally filtered
	// by status. RawContent is omitted from listings.
	ListOrders(ctx context.Context, storeID int, status OrderStatus) ([]Order, error)

	// DeleteOrder removes an order and, with it, its reconciliation and
	// pendency rows.
	DeleteOrder(ctx context.Context, storeID, orderID int) error
}
