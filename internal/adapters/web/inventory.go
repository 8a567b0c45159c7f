package web

import (
	"net/http"

	"varejo-backoffice/internal/app"
	"varejo-backoffice/internal/core"
)

// listStock handles GET /api/stock?low=true.
func (h *Handler) listStock(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	lowOnly := r.URL.Query().Get("low") == "true"

	items, err := h.svc.ListStock(r.Context(), claims.StoreID, lowOnly)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []core.StockItem{}
	}
	writeJSON(w, items)
}

// upsertStockItem handles PUT /api/stock — creates or re-parameterizes an item.
func (h *Handler) upsertStockItem(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var req app.UpsertStockItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.StoreID = claims.StoreID

	item, err := h.svc.UpsertStockItem(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, item)
}

// recordStockMovement handles POST /api/stock/{id}/movements.
func (h *Handler) recordStockMovement(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var req app.StockMovementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.StoreID = claims.StoreID
	req.ItemID = id
	req.CreatedBy = claims.Username

	movement, err := h.svc.RecordStockMovement(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, movement)
}

// listStockMovements handles GET /api/stock/{id}/movements.
func (h *Handler) listStockMovements(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	movements, err := h.svc.ListStockMovements(r.Context(), claims.StoreID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if movements == nil {
		movements = []core.StockMovement{}
	}
	writeJSON(w, movements)
}
