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

type registerService struct {
	pool *pgxpool.Pool
}

// NewRegisterService constructs a RegisterService backed by PostgreSQL.
func NewRegisterService(pool *pgxpool.Pool) RegisterService {
	return &registerService{pool: pool}
}

func (s *registerService) OpenSession(ctx context.Context, storeID int, registerCode, openedBy string, openingFloat decimal.Decimal) (*RegisterSession, error) {
	registerCode = strings.TrimSpace(registerCode)
	if registerCode == "" {
		return nil, fmt.Errorf("register code is required")
	}
	if openedBy == "" {
		return nil, fmt.Errorf("opened_by is required")
	}
	if openingFloat.IsNegative() {
		return nil, fmt.Errorf("opening float cannot be negative")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// One OPEN session per register. The partial unique index enforces this
	// too; checking first gives a readable error instead of a constraint one.
	var openID int
	err = tx.QueryRow(ctx, `
		SELECT id FROM register_sessions
		WHERE store_id = $1 AND register_code = $2 AND status = 'OPEN'
		FOR UPDATE`,
		storeID, registerCode,
	).Scan(&openID)
	if err == nil {
		return nil, fmt.Errorf("register %s already has open session %d", registerCode, openID)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check open session: %w", err)
	}

	sess := &RegisterSession{}
	if err := tx.QueryRow(ctx, `
		INSERT INTO register_sessions (store_id, register_code, status, opened_by, opening_float)
		VALUES ($1, $2, 'OPEN', $3, $4)
		RETURNING id, store_id, register_code, status, opened_by, opening_float, opened_at`,
		storeID, registerCode, openedBy, openingFloat,
	).Scan(&sess.ID, &sess.StoreID, &sess.RegisterCode, &sess.Status, &sess.OpenedBy, &sess.OpeningFloat, &sess.OpenedAt); err != nil {
		return nil, fmt.Errorf("insert register session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit register session: %w", err)
	}
	return sess, nil
}

func (s *registerService) RecordMovement(ctx context.Context, storeID, sessionID int, movType RegisterMovementType,
	amount decimal.Decimal, description string) (*RegisterMovement, error) {

	switch movType {
	case RegisterSale, RegisterWithdrawal, RegisterDeposit:
	default:
		return nil, fmt.Errorf("unknown register movement type %q", movType)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("movement amount must be positive")
	}

	var status RegisterSessionStatus
	if err := s.pool.QueryRow(ctx,
		"SELECT status FROM register_sessions WHERE id = $1 AND store_id = $2",
		sessionID, storeID,
	).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "register session", Ref: strconv.Itoa(sessionID)}
		}
		return nil, fmt.Errorf("fetch register session %d: %w", sessionID, err)
	}
	if status != RegisterOpen {
		return nil, fmt.Errorf("register session %d is %s — movements require an OPEN session", sessionID, status)
	}

	m := &RegisterMovement{}
	if err := s.pool.QueryRow(ctx, `
		INSERT INTO register_movements (session_id, type, amount, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, session_id, type, amount, description, created_at`,
		sessionID, movType, amount, description,
	).Scan(&m.ID, &m.SessionID, &m.Type, &m.Amount, &m.Description, &m.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert register movement: %w", err)
	}
	return m, nil
}

func (s *registerService) CloseSession(ctx context.Context, storeID, sessionID int, closedBy string, countedAmount decimal.Decimal) (*RegisterSession, error) {
	if closedBy == "" {
		return nil, fmt.Errorf("closed_by is required")
	}
	if countedAmount.IsNegative() {
		return nil, fmt.Errorf("counted amount cannot be negative")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status RegisterSessionStatus
	var openingFloat decimal.Decimal
	if err := tx.QueryRow(ctx,
		"SELECT status, opening_float FROM register_sessions WHERE id = $1 AND store_id = $2 FOR UPDATE",
		sessionID, storeID,
	).Scan(&status, &openingFloat); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "register session", Ref: strconv.Itoa(sessionID)}
		}
		return nil, fmt.Errorf("lock register session %d: %w", sessionID, err)
	}
	if status != RegisterOpen {
		return nil, fmt.Errorf("register session %d is already %s", sessionID, status)
	}

	// expected = float + sales + deposits - withdrawals
	var expected decimal.Decimal
	if err := tx.QueryRow(ctx, `
		SELECT $1::numeric + COALESCE(SUM(
			CASE type
				WHEN 'WITHDRAWAL' THEN -amount
				ELSE amount
			END), 0)
		FROM register_movements
		WHERE session_id = $2`,
		openingFloat, sessionID,
	).Scan(&expected); err != nil {
		return nil, fmt.Errorf("compute expected balance: %w", err)
	}

	difference := countedAmount.Sub(expected)
	if _, err := tx.Exec(ctx, `
		UPDATE register_sessions
		SET status = 'CLOSED', closed_by = $1, counted_amount = $2,
		    expected_amount = $3, difference = $4, closed_at = NOW()
		WHERE id = $5`,
		closedBy, countedAmount, expected, difference, sessionID,
	); err != nil {
		return nil, fmt.Errorf("close register session %d: %w", sessionID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit register close: %w", err)
	}
	return s.GetSession(ctx, storeID, sessionID)
}

func (s *registerService) GetSession(ctx context.Context, storeID, sessionID int) (*RegisterSession, error) {
	sess := &RegisterSession{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, store_id, register_code, status, opened_by, opening_float, opened_at,
		       closed_by, counted_amount, expected_amount, difference, closed_at
		FROM register_sessions
		WHERE id = $1 AND store_id = $2`,
		sessionID, storeID,
	).Scan(&sess.ID, &sess.StoreID, &sess.RegisterCode, &sess.Status, &sess.OpenedBy,
		&sess.OpeningFloat, &sess.OpenedAt, &sess.ClosedBy, &sess.CountedAmount,
		&sess.ExpectedAmount, &sess.Difference, &sess.ClosedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "register session", Ref: strconv.Itoa(sessionID)}
		}
		return nil, fmt.Errorf("get register session %d: %w", sessionID, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, type, amount, description, created_at
		FROM register_movements
		WHERE session_id = $1
		ORDER BY created_at`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch register movements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m RegisterMovement
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Type, &m.Amount, &m.Description, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan register movement: %w", err)
		}
		sess.Movements = append(sess.Movements, m)
	}
	return sess, rows.Err()
}

func (s *registerService) ListSessions(ctx context.Context, storeID int) ([]RegisterSession, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, store_id, register_code, status, opened_by, opening_float, opened_at,
		       closed_by, counted_amount, expected_amount, difference, closed_at
		FROM register_sessions
		WHERE store_id = $1
		ORDER BY opened_at DESC`,
		storeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list register sessions: %w", err)
	}
	defer rows.Close()

	var sessions []RegisterSession
	for rows.Next() {
		var sess RegisterSession
		if err := rows.Scan(&sess.ID, &sess.StoreID, &sess.RegisterCode, &sess.Status, &sess.OpenedBy,
			&sess.OpeningFloat, &sess.OpenedAt, &sess.ClosedBy, &sess.CountedAmount,
			&sess.ExpectedAmount, &sess.Difference, &sess.ClosedAt); err != nil {
			return nil, fmt.Errorf("scan register session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}
