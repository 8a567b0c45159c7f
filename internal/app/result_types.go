package app

import (
	"varejo-backoffice/internal/core"
)

// UserSession is what a successful login produces: the identity the web layer
// bakes into the JWT. Store scoping for every subsequent request derives from
// StoreID, not from anything the client sends.
type UserSession struct {
	UserID   int       `json:"user_id"`
	StoreID  int       `json:"store_id"`
	Username string    `json:"username"`
	Role     core.Role `json:"role"`
}

// UserResult is the profile shape returned to the client. It never carries the
// password hash.
type UserResult struct {
	ID       int       `json:"id"`
	StoreID  int       `json:"store_id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     core.Role `json:"role"`
}

// OrderResult is an order together with its parsed line-item preview, so the
// client can render the conferência table without re-parsing the blob.
type OrderResult struct {
	Order        core.Order      `json:"order"`
	Items        []OrderItemView `json:"items"`
	SkippedLines int             `json:"skipped_lines,omitempty"`
}

// OrderItemView is one parsed product row of an order.
type OrderItemView struct {
	Product         string `json:"product"`
	QuantityOrdered int    `json:"quantity_ordered"`
}

// ReconciliationItemView is one line of an open reconciliation session as
// presented to the client.
type ReconciliationItemView struct {
	Product          string `json:"product"`
	QuantityOrdered  int    `json:"quantity_ordered"`
	QuantityReceived *int   `json:"quantity_received"`
	QuantityShort    int    `json:"quantity_short"`
	ShortfallReason  string `json:"shortfall_reason,omitempty"`
}

// ReconciliationSessionResult describes an open session: the rows to edit,
// whether this is a revisit of a previously saved reconciliation, and a
// warning when the source text had rows the parser could not read.
type ReconciliationSessionResult struct {
	OrderID      int                      `json:"order_id"`
	OrderNumber  string                   `json:"order_number"`
	Revisit      bool                     `json:"revisit"`
	Items        []ReconciliationItemView `json:"items"`
	TotalOrdered int                      `json:"total_ordered"`
	Warning      string                   `json:"warning,omitempty"`
}
