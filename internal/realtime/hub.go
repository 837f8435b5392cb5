// Package realtime pushes committed appointment events to connected
// browsers over SockJS. Each client sees events for its own user id and,
// for business accounts, its tenant.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"randevulu/internal/store"
)

const sinkName = "realtime"

type Client struct {
	ID     string
	Send   chan []byte
	Scopes []string
	paused bool
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

type envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{clients: make(map[string]*Client), logger: logger}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	close(client.Send)
}

// SetPaused stops or resumes delivery without dropping the connection.
func (h *Hub) SetPaused(client *Client, paused bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.paused = paused
}

// Broadcast delivers payload to every client holding one of scopes. Slow
// clients lose the message rather than block the relay.
func (h *Hub) Broadcast(payload []byte, scopes ...string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for _, client := range h.clients {
		if client.paused || !matches(client.Scopes, scopes) {
			continue
		}
		select {
		case client.Send <- payload:
			delivered++
		default:
			h.logger.Warn("drop realtime message", zap.String("client_id", client.ID))
		}
	}
	return delivered
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish lets the hub sit behind the outbox relay like any other sink.
func (h *Hub) Publish(ctx context.Context, event store.OutboxEvent) error {
	payload, err := json.Marshal(envelope{Type: event.Type, Payload: event.Payload, CreatedAt: event.CreatedAt})
	if err != nil {
		return err
	}
	h.Broadcast(payload, eventScopes(event)...)
	return nil
}

func (h *Hub) Name() string { return sinkName }

func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		delete(h.clients, id)
		close(client.Send)
	}
	return nil
}

func eventScopes(event store.OutboxEvent) []string {
	scopes := []string{event.TenantID}
	var payload store.AppointmentEvent
	if err := json.Unmarshal(event.Payload, &payload); err == nil && payload.CreatedBy != nil {
		scopes = append(scopes, *payload.CreatedBy)
	}
	return scopes
}

func matches(have, want []string) bool {
	for _, a := range have {
		if a == "" {
			continue
		}
		for _, b := range want {
			if a == b {
				return true
			}
		}
	}
	return false
}

type controlMessage struct {
	Action string `json:"action"`
}

// parseControl accepts {"action":"subscribe"} and {"action":"unsubscribe"}.
func parseControl(data []byte) (string, bool) {
	var msg controlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return "", false
	}
	if msg.Action != "subscribe" && msg.Action != "unsubscribe" {
		return "", false
	}
	return msg.Action, true
}
