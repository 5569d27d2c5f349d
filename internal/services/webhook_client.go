package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/traceops/backend/internal/models"
	"go.uber.org/zap"
)

// WebhookClient posts ingestion notifications to the automation endpoint
// (n8n or similar). A client with an empty URL is disabled.
type WebhookClient struct {
	url        string
	httpClient *http.Client
	log        *zap.Logger
}

func NewWebhookClient(url string, timeout time.Duration, log *zap.Logger) *WebhookClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookClient{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

func (c *WebhookClient) Enabled() bool {
	return c != nil && c.url != ""
}

// Send posts payload as JSON. Any transport error or non-2xx status is returned.
func (c *WebhookClient) Send(ctx context.Context, payload any) error {
	body, err := gojson.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(b))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// EventWebhookPayload is one ingested event as seen by automation.
type EventWebhookPayload struct {
	TenantID   uuid.UUID       `json:"tenant_id"`
	EventID    uuid.UUID       `json:"event_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Actor      string          `json:"actor"`
	Action     string          `json:"action"`
	Resource   string          `json:"resource"`
	ResourceID *string         `json:"resource_id"`
	IP         *string         `json:"ip"`
	Result     *string         `json:"result"`
	Metadata   json.RawMessage `json:"metadata"`
}

type BatchWebhookPayload struct {
	TenantID uuid.UUID             `json:"tenant_id"`
	Events   []EventWebhookPayload `json:"events"`
}

func newEventWebhookPayload(e *models.AuditEvent) EventWebhookPayload {
	return EventWebhookPayload{
		TenantID:   e.TenantID,
		EventID:    e.ID,
		OccurredAt: e.OccurredAt,
		Actor:      e.Actor,
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		IP:         e.IP,
		Result:     e.Result,
		Metadata:   e.Metadata,
	}
}
