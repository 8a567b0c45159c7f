package web

import (
	"net/http"

	"varejo-backoffice/internal/app"
	"varejo-backoffice/internal/core"
)

// listEmployees handles GET /api/employees?active=true.
func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	activeOnly := r.URL.Query().Get("active") == "true"

	employees, err := h.svc.ListEmployees(r.Context(), claims.StoreID, activeOnly)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if employees == nil {
		employees = []core.Employee{}
	}
	writeJSON(w, employees)
}

// createEmployee handles POST /api/employees.
func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	var req app.EmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.StoreID = claims.StoreID

	employee, err := h.svc.CreateEmployee(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, employee)
}

// getEmployee handles GET /api/employees/{id}.
func (h *Handler) getEmployee(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	employee, err := h.svc.GetEmployee(r.Context(), claims.StoreID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, employee)
}

// updateEmployee handles PUT /api/employees/{id}.
func (h *Handler) updateEmployee(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var req app.EmployeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.StoreID = claims.StoreID

	employee, err := h.svc.UpdateEmployee(r.Context(), claims.StoreID, id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, employee)
}

// deactivateEmployee handles DELETE /api/employees/{id} — a soft delete, the
// record stays for payroll history.
func (h *Handler) deactivateEmployee(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeactivateEmployee(r.Context(), claims.StoreID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// attachEmployeeDocument handles POST /api/employees/{id}/documents.
func (h *Handler) attachEmployeeDocument(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var req app.AttachDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.StoreID = claims.StoreID
	req.EmployeeID = id

	doc, err := h.svc.AttachEmployeeDocument(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, doc)
}
