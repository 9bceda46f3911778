package api

import (
	"net/http"

	"github.com/HaGotHem/optines/internal/api/handlers"
	"github.com/HaGotHem/optines/internal/client"
	"github.com/HaGotHem/optines/internal/service"
)

type Stores struct {
	Tasks    service.TaskStore
	Roster   service.RosterStore
	Settings service.SettingsStore
}

func SetupRouter(stores Stores, notifier client.Notifier, opts service.PlanningOptions) http.Handler {
	mux := http.NewServeMux()

	planningService := service.NewPlanningService(
		stores.Tasks,
		stores.Roster,
		stores.Settings,
		notifier,
		opts,
	)
	rosterService := service.NewRosterService(stores.Roster, stores.Tasks)

	calculatorHandler := handlers.NewCalculatorHandler(planningService)
	taskHandler := handlers.NewTaskHandler(planningService)
	employeeHandler := handlers.NewEmployeeHandler(rosterService)
	settingsHandler := handlers.NewSettingsHandler(planningService)

	mux.HandleFunc("POST /calculator/preview", calculatorHandler.Preview)

	mux.HandleFunc("POST /tasks", taskHandler.CreateTask)
	mux.HandleFunc("POST /tasks/import", taskHandler.ImportTasks)
	mux.HandleFunc("GET /tasks", taskHandler.ListTasks)
	mux.HandleFunc("DELETE /tasks/{id}", taskHandler.DeleteTask)
	mux.HandleFunc("POST /tasks/{id}/done", taskHandler.CompleteTask)
	mux.HandleFunc("GET /stats/daily", taskHandler.DailyStats)

	mux.HandleFunc("GET /employees", employeeHandler.ListEmployees)
	mux.HandleFunc("POST /employees", employeeHandler.CreateEmployee)
	mux.HandleFunc("GET /employees/stats", employeeHandler.TeamStats)
	mux.HandleFunc("PUT /employees/{id}", employeeHandler.UpdateEmployee)
	mux.HandleFunc("DELETE /employees/{id}", employeeHandler.DeleteEmployee)

	mux.HandleFunc("GET /settings/working-hours", settingsHandler.GetWorkingHours)
	mux.HandleFunc("PUT /settings/working-hours", settingsHandler.UpdateWorkingHours)
	mux.HandleFunc("GET /settings/time-slots", settingsHandler.TimeSlots)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	return withCORS(mux)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
