package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"randevulu/internal/identity"
	"randevulu/internal/models"
)

type authContextKey struct{}

// ActorResolver turns a session id into the caller behind it.
type ActorResolver interface {
	Resolve(ctx context.Context, sessionID string) (models.Actor, error)
}

func AuthMiddleware(resolver ActorResolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicEndpoint(r) {
			next.ServeHTTP(w, r)
			return
		}
		sessionID := sessionIDFromRequest(r)
		if sessionID == "" {
			writeError(w, requestIDFromRequest(r), http.StatusUnauthorized, "unauthorized", "missing session")
			return
		}
		actor, err := resolver.Resolve(r.Context(), sessionID)
		if err != nil {
			if errors.Is(err, identity.ErrUnauthenticated) {
				writeError(w, requestIDFromRequest(r), http.StatusUnauthorized, "unauthorized", "invalid session")
				return
			}
			writeError(w, requestIDFromRequest(r), http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		ctx := context.WithValue(r.Context(), authContextKey{}, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func actorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(authContextKey{}).(models.Actor)
	return actor, ok
}

// requireActor writes a 401 when the request carries no resolved actor.
func requireActor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := actorFromContext(r.Context())
	if !ok || actor.IsAnonymous() {
		writeError(w, requestIDFromRequest(r), http.StatusUnauthorized, "unauthorized", "missing session")
		return models.Actor{}, false
	}
	return actor, true
}

func sessionIDFromRequest(r *http.Request) string {
	if token := bearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	return strings.TrimSpace(r.Header.Get("X-Session-ID"))
}

func requestIDFromRequest(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Request-ID"))
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

func isPublicEndpoint(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/metrics":
		return true
	case "/api/auth/register", "/api/auth/login":
		return r.Method == http.MethodPost
	case "/api/availability", "/api/tenants":
		return r.Method == http.MethodGet
	}
	if strings.HasPrefix(r.URL.Path, "/api/tenants/") {
		return r.Method == http.MethodGet
	}
	// The realtime endpoint authenticates its own sessions.
	if strings.HasPrefix(r.URL.Path, "/realtime/") {
		return true
	}
	return r.Method == http.MethodOptions
}
