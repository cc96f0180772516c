package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"autotrader/internal/httputil"
)

// Sender fires persona hook events at the backend's internal API. Delivery
// is fire-and-forget: failures are logged and never reach the caller that
// triggered the event.
type Sender struct {
	hookURL       string
	internalToken string
	httpClient    *http.Client
	retry         httputil.RetryConfig
}

func NewSender(backendURL, internalToken string) *Sender {
	return &Sender{
		hookURL:       backendURL + "/api/internal/hooks/fire",
		internalToken: internalToken,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    5 * time.Second,
		},
	}
}

func (s *Sender) Enabled() bool {
	return s.internalToken != ""
}

// Notify delivers a hook event with its payload.
func (s *Sender) Notify(event string, data map[string]any) {
	if !s.Enabled() {
		fmt.Println("[HOOKS] No internal token configured, skipping hook fire")
		return
	}
	if data == nil {
		data = map[string]any{}
	}

	body, err := json.Marshal(map[string]any{"event": event, "data": data})
	if err != nil {
		fmt.Printf("[HOOKS] Marshal failed for %s: %v\n", event, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := httputil.Do(ctx, s.httpClient, s.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.hookURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Internal-Token", s.internalToken)
		return req, nil
	})
	if err != nil {
		fmt.Printf("[HOOKS] Failed to fire %s after retries: %v\n", event, err)
		return
	}
	resp.Body.Close()
	fmt.Printf("[HOOKS] Fired %s\n", event)
}
