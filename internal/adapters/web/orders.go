package web

import (
	"io"
	"net/http"

	"varejo-backoffice/internal/app"
	"varejo-backoffice/internal/core"
)

// listStores handles GET /api/stores.
func (h *Handler) listStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.svc.ListStores(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, stores)
}

// createStore handles POST /api/stores (admin only).
func (h *Handler) createStore(w http.ResponseWriter, r *http.Request) {
	var req app.CreateStoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	store, err := h.svc.CreateStore(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, store)
}

// listOrders handles GET /api/orders?status=OPEN|RECONCILED.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	status := core.OrderStatus(r.URL.Query().Get("status"))
	if status != "" && status != core.OrderStatusOpen && status != core.OrderStatusReconciled {
		writeError(w, r, "status must be OPEN or RECONCILED", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	orders, err := h.svc.ListOrders(r.Context(), claims.StoreID, status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, orders)
}

// createOrder handles POST /api/orders — pasted order text as JSON.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var req app.CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.StoreID = claims.StoreID

	order, err := h.svc.CreateOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, order)
}

// uploadOrder handles POST /api/orders/upload — multipart file upload of a POS
// export. The file bytes are charset-sniffed before parsing, so Windows-1252
// exports come through with their accents intact.
func (h *Handler) uploadOrder(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, r, "invalid multipart form: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, "missing file field", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, "reading upload failed", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	req := app.CreateOrderRequest{
		StoreID:   claims.StoreID,
		Supplier:  r.FormValue("supplier"),
		OrderDate: r.FormValue("order_date"),
		RawUpload: data,
	}
	order, err := h.svc.CreateOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, order)
}

// getOrder handles GET /api/orders/{id}.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	order, err := h.svc.GetOrder(r.Context(), claims.StoreID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

// deleteOrder handles DELETE /api/orders/{id} (manager+).
func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteOrder(r.Context(), claims.StoreID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// openReconciliation handles GET /api/orders/{id}/reconciliation — opens a
// fresh or revisit session and returns the editable rows.
func (h *Handler) openReconciliation(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	sess, err := h.svc.OpenReconciliation(r.Context(), claims.StoreID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, sess)
}

// saveReconciliation handles POST /api/orders/{id}/reconciliation.
func (h *Handler) saveReconciliation(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var req app.SaveReconciliationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.StoreID = claims.StoreID
	req.OrderID = id

	summary, err := h.svc.SaveReconciliation(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, summary)
}

// listPendencies handles GET /api/pendencies — every outstanding shortfall in
// the store.
func (h *Handler) listPendencies(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	pendencies, err := h.svc.ListPendencies(r.Context(), claims.StoreID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if pendencies == nil {
		pendencies = []core.PendencyRecord{}
	}
	writeJSON(w, pendencies)
}
