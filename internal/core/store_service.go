package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StoreService manages the chain's store (tenant) records.
type StoreService interface {
	CreateStore(ctx context.Context, code, name, city string) (*Store, error)
	GetStore(ctx context.Context, storeID int) (*Store, error)
	ListStores(ctx context.Context, activeOnly bool) ([]Store, error)
}

type storeService struct {
	pool *pgxpool.Pool
}

// NewStoreService constructs a StoreService backed by PostgreSQL.
func NewStoreService(pool *pgxpool.Pool) StoreService {
	return &storeService{pool: pool}
}

func (s *storeService) CreateStore(ctx context.Context, code, name, city string) (*Store, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("store code and name are required")
	}

	st := &Store{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO stores (code, name, city, is_active)
		VALUES ($1, $2, $3, true)
		RETURNING id, code, name, city, is_active, created_at`,
		code, name, strings.TrimSpace(city),
	).Scan(&st.ID, &st.Code, &st.Name, &st.City, &st.IsActive, &st.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert store %q: %w", code, err)
	}
	return st, nil
}

func (s *storeService) GetStore(ctx context.Context, storeID int) (*Store, error) {
	st := &Store{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, code, name, city, is_active, created_at
		FROM stores
		WHERE id = $1`,
		storeID,
	).Scan(&st.ID, &st.Code, &st.Name, &st.City, &st.IsActive, &st.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Kind: "store", Ref: strconv.Itoa(storeID)}
		}
		return nil, fmt.Errorf("get store %d: %w", storeID, err)
	}
	return st, nil
}

func (s *storeService) ListStores(ctx context.Context, activeOnly bool) ([]Store, error) {
	query := "SELECT id, code, name, city, is_active, created_at FROM stores"
	if activeOnly {
		query += " WHERE is_active = true"
	}
	query += " ORDER BY code"

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var stores []Store
	for rows.Next() {
		var st Store
		if err := rows.Scan(&st.ID, &st.Code, &st.Name, &st.City, &st.IsActive, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, st)
	}
	return stores, rows.Err()
}
