package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/HaGotHem/optines/internal/client"
	"github.com/HaGotHem/optines/internal/logging"
	"github.com/HaGotHem/optines/internal/models"
)

const (
	KindReminder = "reminder"
	KindConflict = "conflict"
)

type reminderPayload struct {
	Kind     string      `json:"kind"`
	Task     models.Task `json:"task"`
	RemindAt time.Time   `json:"remindAt"`
}

type conflictPayload struct {
	Kind string `json:"kind"`
	client.ConflictAlert
}

type WebhookClient struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewWebhookClient(url string) *WebhookClient {
	return &WebhookClient{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "notify-webhook-cb",
			MaxRequests: 1,
			Timeout:     5 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
			},
		}),
	}
}

func (c *WebhookClient) ScheduleReminder(ctx context.Context, task models.Task, at time.Time) error {
	return c.post(ctx, reminderPayload{Kind: KindReminder, Task: task, RemindAt: at})
}

func (c *WebhookClient) SendConflictAlert(ctx context.Context, alert client.ConflictAlert) error {
	return c.post(ctx, conflictPayload{Kind: KindConflict, ConflictAlert: alert})
}

func (c *WebhookClient) post(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("Error trying to parse body to Json: %w", err)
	}

	_, err = c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return nil, fmt.Errorf("webhook error status %d: %s", resp.StatusCode, bytes.TrimSpace(errorBody))
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("webhook unavailable: %w", err)
	}
	return err
}
