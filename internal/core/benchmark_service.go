package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type benchmarkService struct {
	pool *pgxpool.Pool
}

// NewBenchmarkService constructs a BenchmarkService backed by PostgreSQL.
func NewBenchmarkService(pool *pgxpool.Pool) BenchmarkService {
	return &benchmarkService{pool: pool}
}

func (s *benchmarkService) MonthlyBenchmark(ctx context.Context, year, month int) (*BenchmarkReport, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT st.id, st.code, st.name, COALESCE(SUM(m.amount), 0) AS revenue
		FROM stores st
		LEFT JOIN register_sessions rs
		       ON rs.store_id = st.id
		      AND EXTRACT(YEAR FROM rs.opened_at)::int = $1
		      AND EXTRACT(MONTH FROM rs.opened_at)::int = $2
		LEFT JOIN register_movements m
		       ON m.session_id = rs.id AND m.type = 'SALE'
		WHERE st.is_active = true
		GROUP BY st.id, st.code, st.name
		ORDER BY revenue DESC, st.code`,
		year, month,
	)
	if err != nil {
		return nil, fmt.Errorf("query monthly benchmark: %w", err)
	}
	defer rows.Close()

	report := &BenchmarkReport{Year: year, Month: month}
	for rows.Next() {
		var row BenchmarkRow
		if err := rows.Scan(&row.StoreID, &row.StoreCode, &row.StoreName, &row.Revenue); err != nil {
			return nil, fmt.Errorf("scan benchmark row: %w", err)
		}
		report.TotalRevenue = report.TotalRevenue.Add(row.Revenue)
		report.Rows = append(report.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hundred := decimal.NewFromInt(100)
	for i := range report.Rows {
		if report.TotalRevenue.IsZero() {
			report.Rows[i].Share = decimal.Zero
			continue
		}
		report.Rows[i].Share = report.Rows[i].Revenue.Mul(hundred).DivRound(report.TotalRevenue, 2)
	}
	return report, nil
}

func (s *benchmarkService) StoreRevenueHistory(ctx context.Context, storeID, year int) ([]MonthRevenue, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT EXTRACT(MONTH FROM rs.opened_at)::int AS month, COALESCE(SUM(m.amount), 0)
		FROM register_sessions rs
		JOIN register_movements m ON m.session_id = rs.id AND m.type = 'SALE'
		WHERE rs.store_id = $1 AND EXTRACT(YEAR FROM rs.opened_at)::int = $2
		GROUP BY month`,
		storeID, year,
	)
	if err != nil {
		return nil, fmt.Errorf("query revenue history: %w", err)
	}
	defer rows.Close()

	byMonth := make(map[int]decimal.Decimal, 12)
	for rows.Next() {
		var month int
		var revenue decimal.Decimal
		if err := rows.Scan(&month, &revenue); err != nil {
			return nil, fmt.Errorf("scan revenue history: %w", err)
		}
		byMonth[month] = revenue
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	history := make([]MonthRevenue, 0, 12)
	for month := 1; month <= 12; month++ {
		revenue, ok := byMonth[month]
		if !ok {
			revenue = decimal.Zero
		}
		history = append(history, MonthRevenue{Month: month, Revenue: revenue})
	}
	return history, nil
}
