package handlers

import (
	"net/http"

	"github.com/HaGotHem/optines/internal/scheduler"
	"github.com/HaGotHem/optines/internal/service"
)

type CalculatorHandler struct {
	planningService *service.PlanningService
}

func NewCalculatorHandler(planningService *service.PlanningService) *CalculatorHandler {
	return &CalculatorHandler{
		planningService: planningService,
	}
}

func (h *CalculatorHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var draft scheduler.Draft
	if !decodeBody(w, r, &draft) {
		return
	}

	preview, err := h.planningService.Preview(r.Context(), draft)
	if err != nil {
		writeServiceError(w, "Error trying to preview task", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"preview": preview,
	})
}
