package handlers

import (
	"net/http"
	"strconv"

	"github.com/HaGotHem/optines/internal/models"
	"github.com/HaGotHem/optines/internal/service"
)

type EmployeeHandler struct {
	rosterService *service.RosterService
}

func NewEmployeeHandler(rosterService *service.RosterService) *EmployeeHandler {
	return &EmployeeHandler{
		rosterService: rosterService,
	}
}

func employeeID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid employee id: "+r.PathValue("id"))
		return 0, false
	}
	return id, true
}

func (h *EmployeeHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.rosterService.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, "Error trying to get employees", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"employees": employees,
	})
}

func (h *EmployeeHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var e models.Employee
	if !decodeBody(w, r, &e) {
		return
	}

	created, err := h.rosterService.Create(r.Context(), e)
	if err != nil {
		writeServiceError(w, "Error trying to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"employee": created,
	})
}

func (h *EmployeeHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}
	var e models.Employee
	if !decodeBody(w, r, &e) {
		return
	}
	e.ID = id

	updated, err := h.rosterService.Update(r.Context(), e)
	if err != nil {
		writeServiceError(w, "Error trying to update employee", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"employee": updated,
	})
}

func (h *EmployeeHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}
	if err := h.rosterService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, "Error trying to delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EmployeeHandler) TeamStats(w http.ResponseWriter, r *http.Request) {
	date, ok := requireDate(w, r)
	if !ok {
		return
	}

	stats, err := h.rosterService.TeamStats(r.Context(), date)
	if err != nil {
		writeServiceError(w, "Error trying to get team stats", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats": stats,
	})
}
