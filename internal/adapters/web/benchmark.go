package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// benchmarkPeriod reads year/month query parameters, defaulting to the current
// month.
func benchmarkPeriod(r *http.Request) (int, int, error) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 2000 || y > 2100 {
			return 0, 0, fmt.Errorf("invalid year %q", v)
		}
		year = y
	}
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, fmt.Errorf("invalid month %q", v)
		}
		month = m
	}
	return year, month, nil
}

// monthlyBenchmark handles GET /api/benchmark?year=2026&month=8.
func (h *Handler) monthlyBenchmark(w http.ResponseWriter, r *http.Request) {
	year, month, err := benchmarkPeriod(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	report, err := h.svc.MonthlyBenchmark(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, report)
}

// exportBenchmark handles GET /api/benchmark/export — the same report as an
// .xlsx download.
func (h *Handler) exportBenchmark(w http.ResponseWriter, r *http.Request) {
	year, month, err := benchmarkPeriod(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	data, err := h.svc.ExportMonthlyBenchmark(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	filename := fmt.Sprintf("benchmark-%04d-%02d.xlsx", year, month)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(data)
}

// revenueHistory handles GET /api/benchmark/history?year=2026 — the caller's
// store month by month.
func (h *Handler) revenueHistory(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	year, _, err := benchmarkPeriod(r)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	history, err := h.svc.StoreRevenueHistory(r.Context(), claims.StoreID, year)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, history)
}
