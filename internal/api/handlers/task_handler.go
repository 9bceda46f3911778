package handlers

import (
	"net/http"

	"github.com/HaGotHem/optines/internal/models"
	"github.com/HaGotHem/optines/internal/scheduler"
	"github.com/HaGotHem/optines/internal/service"
)

type CreateTaskRequestBody struct {
	scheduler.Draft
	ConfirmConflicts bool `json:"confirmConflicts"`
}

type TaskHandler struct {
	planningService *service.PlanningService
}

func NewTaskHandler(planningService *service.PlanningService) *TaskHandler {
	return &TaskHandler{
		planningService: planningService,
	}
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var reqBody CreateTaskRequestBody
	if !decodeBody(w, r, &reqBody) {
		return
	}

	task, err := h.planningService.CreateTask(r.Context(), reqBody.Draft, reqBody.ConfirmConflicts)
	if err != nil {
		writeServiceError(w, "Error trying to create task", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"task": task,
	})
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	date, ok := requireDate(w, r)
	if !ok {
		return
	}

	tasks, err := h.planningService.TasksForDate(r.Context(), date)
	if err != nil {
		writeServiceError(w, "Error trying to get tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": tasks,
	})
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.planningService.DeleteTask(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, "Error trying to delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.planningService.CompleteTask(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, "Error trying to complete task", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"task": task,
	})
}

// ImportTasks accepts a JSON array of recorded tasks.
func (h *TaskHandler) ImportTasks(w http.ResponseWriter, r *http.Request) {
	var tasks []models.Task
	if !decodeBody(w, r, &tasks) {
		return
	}

	n, err := h.planningService.Import(r.Context(), tasks)
	if err != nil {
		writeServiceError(w, "Error trying to import tasks", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"imported": n,
	})
}

func (h *TaskHandler) DailyStats(w http.ResponseWriter, r *http.Request) {
	date, ok := requireDate(w, r)
	if !ok {
		return
	}

	stats, err := h.planningService.DailyStats(r.Context(), date)
	if err != nil {
		writeServiceError(w, "Error trying to get daily stats", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats": stats,
	})
}
