package realtime

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/igm/sockjs-go/sockjs"
	"go.uber.org/zap"

	"randevulu/internal/models"
)

const Prefix = "/realtime"

type ActorResolver interface {
	Resolve(ctx context.Context, sessionID string) (models.Actor, error)
}

// Handler serves the SockJS endpoint under Prefix. Browsers pass the
// session as a bearer token or a session_id query parameter.
func Handler(h *Hub, resolver ActorResolver, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return sockjs.NewHandler(Prefix, sockjs.DefaultOptions, func(session sockjs.Session) {
		sessionID := sessionIDFromRequest(session.Request())
		if sessionID == "" {
			_ = session.Close(4001, "missing session")
			return
		}
		actor, err := resolver.Resolve(context.Background(), sessionID)
		if err != nil {
			_ = session.Close(4002, "invalid session")
			return
		}

		client := &Client{ID: uuid.NewString(), Send: make(chan []byte, 16), Scopes: []string{actor.UserID, actor.TenantID}}
		h.Register(client)
		defer h.Unregister(client)
		logger.Debug("realtime client connected", zap.String("client_id", client.ID), zap.String("user_id", actor.UserID))

		go func() {
			for msg := range client.Send {
				if err := session.Send(string(msg)); err != nil {
					return
				}
			}
		}()

		for {
			msg, err := session.Recv()
			if err != nil {
				return
			}
			if action, ok := parseControl([]byte(msg)); ok {
				h.SetPaused(client, action == "unsubscribe")
			}
		}
	})
}

func sessionIDFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("session_id"))
}
