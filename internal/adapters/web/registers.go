package web

import (
	"net/http"

	"varejo-backoffice/internal/app"
	"varejo-backoffice/internal/core"
)

// listRegisterSessions handles GET /api/registers.
func (h *Handler) listRegisterSessions(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	sessions, err := h.svc.ListRegisterSessions(r.Context(), claims.StoreID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []core.RegisterSession{}
	}
	writeJSON(w, sessions)
}

// openRegister handles POST /api/registers.
func (h *Handler) openRegister(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var req app.OpenRegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.StoreID = claims.StoreID
	req.OpenedBy = claims.Username

	sess, err := h.svc.OpenRegister(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, sess)
}

// getRegisterSession handles GET /api/registers/{id}.
func (h *Handler) getRegisterSession(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	sess, err := h.svc.GetRegisterSession(r.Context(), claims.StoreID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, sess)
}

// recordRegisterMovement handles POST /api/registers/{id}/movements.
func (h *Handler) recordRegisterMovement(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var req app.RegisterMovementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.StoreID = claims.StoreID
	req.SessionID = id

	movement, err := h.svc.RecordRegisterMovement(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, movement)
}

// closeRegister handles POST /api/registers/{id}/close.
func (h *Handler) closeRegister(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var req app.CloseRegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.StoreID = claims.StoreID
	req.SessionID = id
	req.ClosedBy = claims.Username

	sess, err := h.svc.CloseRegister(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, sess)
}
