package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type RegisterSessionStatus string

const (
	RegisterOpen   RegisterSessionStatus = "OPEN"
	RegisterClosed RegisterSessionStatus = "CLOSED"
)

type RegisterMovementType string

const (
	RegisterSale       RegisterMovementType = "SALE"
	RegisterWithdrawal RegisterMovementType = "WITHDRAWAL" // sangria
	RegisterDeposit    RegisterMovementType = "DEPOSIT"    // suprimento
)

// RegisterSession is one open-to-close cycle of a cash register (caixa).
// Expected balance and the over/short difference are computed at close time
// and frozen on the row.
type RegisterSession struct {
	ID             int                   `json:"id"`
	StoreID        int                   `json:"store_id"`
	RegisterCode   string                `json:"register_code"`
	Status         RegisterSessionStatus `json:"status"`
	OpenedBy       string                `json:"opened_by"`
	OpeningFloat   decimal.Decimal       `json:"opening_float"`
	OpenedAt       time.Time             `json:"opened_at"`
	ClosedBy       *string               `json:"closed_by,omitempty"`
	CountedAmount  *decimal.Decimal      `json:"counted_amount,omitempty"`
	ExpectedAmount *decimal.Decimal      `json:"expected_amount,omitempty"`
	Difference     *decimal.Decimal      `json:"difference,omitempty"` // counted - expected
	ClosedAt       *time.Time            `json:"closed_at,omitempty"`
	Movements      []RegisterMovement    `json:"movements,omitempty"`
}

// RegisterMovement is one cash event within a session.
type RegisterMovement struct {
	ID          int                  `json:"id"`
	SessionID   int                  `json:"session_id"`
	Type        RegisterMovementType `json:"type"`
	Amount      decimal.Decimal      `json:"amount"`
	Description string               `json:"description"`
	CreatedAt   time.Time            `json:"created_at"`
}

// RegisterService controls cash register sessions per store. A register has at
// most one OPEN session at a time.
type RegisterService interface {
	// OpenSession opens a register with an opening float. Fails if the
	// register already has an OPEN session.
	OpenSession(ctx context.Context, storeID int, registerCode, openedBy string, openingFloat decimal.Decimal) (*RegisterSession, error)

	// RecordMovement logs a cash event on an OPEN session. All amounts are
	// positive; the type decides the sign at close time.
	RecordMovement(ctx context.Context, storeID, sessionID int, movType RegisterMovementType,
		amount decimal.Decimal, description string) (*RegisterMovement, error)

	// CloseSession counts the drawer and closes the session, computing
	// expected = float + sales + deposits - withdrawals and
	// difference = counted - expected.
	CloseSession(ctx context.Context, storeID, sessionID int, closedBy string, countedAmount decimal.Decimal) (*RegisterSession, error)

	// GetSession returns one session including its movements.
	GetSession(ctx context.Context, storeID, sessionID int) (*RegisterSession, error)

	// ListSessions returns the store's sessions, newest first.
	ListSessions(ctx context.Context, storeID int) ([]RegisterSession, error)
}
