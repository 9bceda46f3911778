package handlers

import (
	"net/http"
	"strconv"

	"github.com/HaGotHem/optines/internal/models"
	"github.com/HaGotHem/optines/internal/service"
)

type SettingsHandler struct {
	planningService *service.PlanningService
}

func NewSettingsHandler(planningService *service.PlanningService) *SettingsHandler {
	return &SettingsHandler{
		planningService: planningService,
	}
}

func (h *SettingsHandler) GetWorkingHours(w http.ResponseWriter, r *http.Request) {
	wh, err := h.planningService.WorkingHours(r.Context())
	if err != nil {
		writeServiceError(w, "Error trying to get working hours", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"workingHours": wh,
	})
}

func (h *SettingsHandler) UpdateWorkingHours(w http.ResponseWriter, r *http.Request) {
	var wh models.WorkingHours
	if !decodeBody(w, r, &wh) {
		return
	}

	saved, err := h.planningService.UpdateWorkingHours(r.Context(), wh)
	if err != nil {
		writeServiceError(w, "Error trying to save working hours", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"workingHours": saved,
	})
}

func (h *SettingsHandler) TimeSlots(w http.ResponseWriter, r *http.Request) {
	var hour *int
	if raw := r.URL.Query().Get("hour"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid hour: "+raw)
			return
		}
		hour = &v
	}

	slots, err := h.planningService.TimeSlots(r.Context(), hour)
	if err != nil {
		writeServiceError(w, "Error trying to get time slots", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"timeSlots": slots,
	})
}
