package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/HaGotHem/optines/internal/logging"
	"github.com/HaGotHem/optines/internal/repository"
	"github.com/HaGotHem/optines/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Logger.Errorf("Event ID: RESPONSE_ENCODE_FAILED, Description: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service errors onto status codes. action is
// prefixed to unexpected errors only.
func writeServiceError(w http.ResponseWriter, action string, err error) {
	var validation *service.ValidationError
	var conflict *service.ConflictError
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": validation.Message,
			"field": validation.Field,
		})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":     "Conflit de planning détecté",
			"task":      conflict.Task,
			"conflicts": conflict.Conflicts,
		})
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		logging.Logger.Errorf("Event ID: REQUEST_FAILED, Description: %s: %v", action, err)
		writeError(w, http.StatusInternalServerError, action+": "+err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "JSON error: "+err.Error())
		return false
	}
	return true
}

func requireDate(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "date query parameter is required")
		return "", false
	}
	return date, true
}
