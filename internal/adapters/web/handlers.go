package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"varejo-backoffice/internal/app"
	"varejo-backoffice/internal/core"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{svc: svc, jwtSecret: jwtSecret}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Auth (public) ─────────────────────────────────────────────────────────
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Protected API routes ──────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		// Order uploads carry whole POS text exports; everything else gets a
		// tighter limit.
		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(10 << 20)) // 10 MB
			r.Post("/api/orders/upload", h.uploadOrder)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequestBodyLimit(1 << 20)) // 1 MB

			r.Get("/api/auth/me", h.me)

			// ── Stores ────────────────────────────────────────────────────────
			r.Get("/api/stores", h.listStores)
			r.With(h.RequireRole(core.RoleAdmin)).Post("/api/stores", h.createStore)

			// ── Orders & conferência ──────────────────────────────────────────
			r.Get("/api/orders", h.listOrders)
			r.Post("/api/orders", h.createOrder)
			r.Get("/api/orders/{id}", h.getOrder)
			r.With(h.RequireRole(core.RoleManager)).Delete("/api/orders/{id}", h.deleteOrder)
			r.Get("/api/orders/{id}/reconciliation", h.openReconciliation)
			r.Post("/api/orders/{id}/reconciliation", h.saveReconciliation)
			r.Get("/api/pendencies", h.listPendencies)

			// ── Inventory ─────────────────────────────────────────────────────
			r.Get("/api/stock", h.listStock)
			r.Put("/api/stock", h.upsertStockItem)
			r.Post("/api/stock/{id}/movements", h.recordStockMovement)
			r.Get("/api/stock/{id}/movements", h.listStockMovements)

			// ── Cash registers ────────────────────────────────────────────────
			r.Get("/api/registers", h.listRegisterSessions)
			r.Post("/api/registers", h.openRegister)
			r.Get("/api/registers/{id}", h.getRegisterSession)
			r.Post("/api/registers/{id}/movements", h.recordRegisterMovement)
			r.Post("/api/registers/{id}/close", h.closeRegister)

			// ── Employees ─────────────────────────────────────────────────────
			r.Group(func(r chi.Router) {
				r.Use(h.RequireRole(core.RoleManager))
				r.Get("/api/employees", h.listEmployees)
				r.Post("/api/employees", h.createEmployee)
				r.Get("/api/employees/{id}", h.getEmployee)
				r.Put("/api/employees/{id}", h.updateEmployee)
				r.Delete("/api/employees/{id}", h.deactivateEmployee)
				r.Post("/api/employees/{id}/documents", h.attachEmployeeDocument)
			})

			// ── Benchmark ─────────────────────────────────────────────────────
			r.Group(func(r chi.Router) {
				r.Use(h.RequireRole(core.RoleManager))
				r.Get("/api/benchmark", h.monthlyBenchmark)
				r.Get("/api/benchmark/export", h.exportBenchmark)
				r.Get("/api/benchmark/history", h.revenueHistory)
			})
		})
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// urlID extracts the {id} URL parameter as an int; writes a 400 and returns
// false when it does not parse.
func urlID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid id in URL", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
