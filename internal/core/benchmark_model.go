package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// BenchmarkRow is one store's slice of the chain's revenue for a month.
type BenchmarkRow struct {
	StoreID   int             `json:"store_id"`
	StoreCode string          `json:"store_code"`
	StoreName string          `json:"store_name"`
	Revenue   decimal.Decimal `json:"revenue"`
	Share     decimal.Decimal `json:"share"` // percentage of chain total, 2 decimal places
}

// BenchmarkReport compares revenue across every active store for one month.
// Revenue is the sum of SALE movements in register sessions opened within the
// month; sessions still open count their sales so far.
type BenchmarkReport struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	Rows         []BenchmarkRow  `json:"rows"`
}

// MonthRevenue is one month of a single store's revenue history.
type MonthRevenue struct {
	Month   int             `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// BenchmarkService produces the cross-store revenue comparisons.
type BenchmarkService interface {
	// MonthlyBenchmark returns every active store's revenue and share of the
	// chain total for the given month.
	MonthlyBenchmark(ctx context.Context, year, month int) (*BenchmarkReport, error)

	// StoreRevenueHistory returns a store's revenue per month for a year.
	// Months with no sessions appear with zero revenue.
	StoreRevenueHistory(ctx context.Context, storeID, year int) ([]MonthRevenue, error)
}
