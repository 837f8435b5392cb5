package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"randevulu/internal/store"
)

type webhookPublisher struct {
	url    string
	token  string
	client *http.Client
}

func newWebhookPublisher(url, token string) *webhookPublisher {
	return &webhookPublisher{url: url, token: token, client: &http.Client{Timeout: 5 * time.Second}}
}

func (p *webhookPublisher) Publish(ctx context.Context, event store.OutboxEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-ID", event.EventID)
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook rejected event %s: status %d", event.EventID, resp.StatusCode)
	}
	return nil
}

func (p *webhookPublisher) Name() string { return SinkWebhook }
func (p *webhookPublisher) Close() error { return nil }
