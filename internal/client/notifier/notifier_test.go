package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HaGotHem/optines/internal/client"
	"github.com/HaGotHem/optines/internal/models"
)

func TestWebhookReminder(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewWebhookClient(srv.URL)
	at := time.Date(2025, 6, 2, 7, 45, 0, 0, time.UTC)
	task := models.Task{ID: "t1", Title: "Frais - JD", Date: "2025-06-02", StartTime: "08:00"}
	if err := c.ScheduleReminder(context.Background(), task, at); err != nil {
		t.Fatalf("ScheduleReminder: %v", err)
	}

	if got["kind"] != KindReminder {
		t.Errorf("kind = %v", got["kind"])
	}
	if got["remindAt"] != "2025-06-02T07:45:00Z" {
		t.Errorf("remindAt = %v", got["remindAt"])
	}
	if task, ok := got["task"].(map[string]any); !ok || task["id"] != "t1" {
		t.Errorf("task = %v", got["task"])
	}
}

func TestWebhookConflictAlert(t *testing.T) {
	var got struct {
		Kind      string            `json:"kind"`
		Title     string            `json:"title"`
		Conflicts []models.Conflict `json:"conflicts"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
	}))
	defer srv.Close()

	alert := client.ConflictAlert{
		Title:     "Conflit d'horaire",
		Conflicts: []models.Conflict{{Title: "Réunion équipe", StartTime: "09:00", EndTime: "10:00", Type: models.EventTypeMeeting}},
	}
	if err := NewWebhookClient(srv.URL).SendConflictAlert(context.Background(), alert); err != nil {
		t.Fatalf("SendConflictAlert: %v", err)
	}
	if got.Kind != KindConflict || got.Title != alert.Title || len(got.Conflicts) != 1 {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestWebhookBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewWebhookClient(srv.URL)
	alert := client.ConflictAlert{Title: "x"}
	for i := 0; i < 6; i++ {
		if err := c.SendConflictAlert(context.Background(), alert); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	// Four consecutive failures trip the breaker; later calls never reach the server.
	if n := hits.Load(); n != 4 {
		t.Errorf("server hits = %d, want 4", n)
	}
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(newDiscardLogger())
	if err := n.ScheduleReminder(context.Background(), models.Task{ID: "a"}, time.Now()); err != nil {
		t.Errorf("ScheduleReminder: %v", err)
	}
	if err := n.SendConflictAlert(context.Background(), client.ConflictAlert{Title: "x"}); err != nil {
		t.Errorf("SendConflictAlert: %v", err)
	}
}

func newDiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
