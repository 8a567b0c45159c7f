package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// LineItem is one product row of a reconciliation session. It lives only in
// memory; what gets persisted are the ReconciliationRecord and PendencyRecords
// derived from it.
//
// QuantityReceived is a pointer so "not yet entered" is distinguishable from an
// explicit zero. A fresh session seeds every item with 0; an API caller that
// omits the field leaves it nil, which blocks the save.
type LineItem struct {
	Name             string `json:"name"`
	QuantityOrdered  int    `json:"quantity_ordered"`
	QuantityReceived *int   `json:"quantity_received"`
	ShortfallReason  string `json:"shortfall_reason"`

	touched bool
}

// Short returns the outstanding shortfall for the item. An item with no entered
// quantity counts as fully short.
func (li *LineItem) Short() int {
	if li.QuantityReceived == nil {
		return li.QuantityOrdered
	}
	return li.QuantityOrdered - *li.QuantityReceived
}

// ReconciledItem is the serialized per-product snapshot stored on a
// ReconciliationRecord.
type ReconciledItem struct {
	Product          string  `json:"product"`
	QuantityOrdered  int     `json:"quantity_ordered"`
	QuantityReceived int     `json:"quantity_received"`
	ShortfallReason  *string `json:"shortfall_reason"`
}

// ReconciliationRecord is the per-order summary row. Saving again for the same
// order overwrites it; records are superseded, not versioned.
type ReconciliationRecord struct {
	OrderID          int              `json:"order_id"`
	OrderNumber      string           `json:"order_number"`
	TotalReceived    int              `json:"total_received"`
	Items            []ReconciledItem `json:"items"`
	ResponsibleParty string           `json:"responsible_party"`
	Date             time.Time        `json:"date"`
}

// PendencyRecord is one outstanding per-product shortfall. The full set for an
// order always reflects the current snapshot: every save replaces it whole, and
// a product's row disappears once its shortfall reaches zero.
type PendencyRecord struct {
	ID               int       `json:"id"`
	OrderID          int       `json:"order_id"`
	OrderNumber      string    `json:"order_number"`
	Product          string    `json:"product"`
	QuantityOrdered  int       `json:"quantity_ordered"`
	QuantityReceived int       `json:"quantity_received"`
	QuantityShort    int       `json:"quantity_short"`
	ShortfallReason  string    `json:"shortfall_reason"`
	ResponsibleParty string    `json:"responsible_party"`
	Date             time.Time `json:"date"`
}

// SessionState is the reconciliation session's position in its lifecycle.
type SessionState string

const (
	StateLoading    SessionState = "LOADING"
	StateEditing    SessionState = "EDITING"
	StateValidating SessionState = "VALIDATING"
	StateAwaiting   SessionState = "AWAITING_RESPONSIBLE"
	StatePersisting SessionState = "PERSISTING"
	StateDone       SessionState = "DONE"
	StateFailed     SessionState = "FAILED"
)

// Session is one in-memory reconciliation of one order. Sessions are not shared
// across requests; the web layer rebuilds one per submit from the posted items.
type Session struct {
	OrderID     int
	OrderNumber string
	Items       []LineItem
	State       SessionState

	// Revisit is true when the session was seeded from previously stored
	// pendencies. Revisit sessions allow a short item without an explicit
	// reason: untouched items keep the reason recorded on the first save, and
	// touched items without one default to "Not informed" on save.
	Revisit bool

	// SkippedLines carries the parser's malformed-row count so the UI can show
	// a partial-parse warning. It never affects what gets saved.
	SkippedLines int
}

// ReasonNotInformed is the fallback shortfall reason applied on a revisit save
// when a touched short item carries no explicit reason. Untouched items keep
// the reason recorded on the first reconciliation.
const ReasonNotInformed = "Not informed"

// SaveSummary is what the engine reports back after a successful save.
type SaveSummary struct {
	OrderID         int    `json:"order_id"`
	OrderNumber     string `json:"order_number"`
	TotalReceived   int    `json:"total_received"`
	TotalShort      int    `json:"total_short"`
	PendencyCount   int    `json:"pendency_count"`
	FullyReconciled bool   `json:"fully_reconciled"`
	Message         string `json:"message"`
}

// ReconciliationStore is the persistence boundary of the reconciliation engine.
// ReplaceReconciliation performs, atomically: delete the order's existing
// pendency set, insert the fresh set, upsert the summary record, and mark the
// order RECONCILED.
type ReconciliationStore interface {
	PendenciesByOrder(ctx context.Context, orderID int) ([]PendencyRecord, error)

	// PendenciesByStore lists every outstanding pendency across the store's
	// orders, for the shortfall dashboard.
	PendenciesByStore(ctx context.Context, storeID int) ([]PendencyRecord, error)

	ReplaceReconciliation(ctx context.Context, rec ReconciliationRecord, pendencies []PendencyRecord) error
}

// ── Error taxonomy ────────────────────────────────────────────────────────────

// NotFoundError reports a reference that resolved to nothing.
type NotFoundError struct {
	Kind string // "order", "pendency", ...
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Ref)
}

// ValidationError blocks the save before any persistence call is made.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "reconciliation incomplete: " + strings.Join(e.Problems, "; ")
}

// MissingResponsiblePartyError blocks only the final confirmation step.
type MissingResponsiblePartyError struct{}

func (e *MissingResponsiblePartyError) Error() string {
	return "a responsible party must be named before saving"
}

// PersistenceError wraps a failed mutation. Retryable is always true: the
// replacement runs in a single transaction, so a failure leaves the previous
// pendency set intact and the save can simply be retried.
type PersistenceError struct {
	Op        string
	OrderID   int
	Retryable bool
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s for order %d: %v", e.Op, e.OrderID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
