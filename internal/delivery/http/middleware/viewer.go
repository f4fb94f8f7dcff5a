package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	h "eventcircle/internal/delivery/http/helpers"
	"eventcircle/internal/domain"
)

// ViewerTokenHeader carries the signed viewer scope token.
const ViewerTokenHeader = "X-Viewer-Token"

type contextKey string

const (
	viewerKey      contextKey = "viewer"
	viewerScopeKey contextKey = "viewerScope"
)

// ViewerTokens issues and verifies viewer scope tokens.
type ViewerTokens interface {
	domain.ViewerTokenIssuer
	domain.ViewerTokenVerifier
}

// SetViewer returns a context carrying the resolved viewer and its scope.
func SetViewer(ctx context.Context, scope string, viewer *domain.User) context.Context {
	ctx = context.WithValue(ctx, viewerScopeKey, scope)
	return context.WithValue(ctx, viewerKey, viewer)
}

// ViewerFromContext returns the user the request is acting as, if resolved.
func ViewerFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(viewerKey).(*domain.User)
	return u, ok && u != nil
}

// ViewerScopeFromContext returns the viewer scope id of the request, if resolved.
func ViewerScopeFromContext(ctx context.Context) (string, bool) {
	scope, ok := ctx.Value(viewerScopeKey).(string)
	return scope, ok && scope != ""
}

// ResolveViewer returns a wrapper that maps the X-Viewer-Token header to a viewer
// scope and loads the scope's current user into the request context. A missing or
// invalid token starts a new scope; the token for it is returned in the response header.
func ResolveViewer(tokens ViewerTokens, viewers domain.ViewerService, ttl time.Duration, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(ViewerTokenHeader))
			scope := ""
			if token != "" {
				s, err := tokens.Verify(token)
				if err != nil {
					logger.DebugContext(r.Context(), "viewer token rejected", "err", err)
				} else {
					scope = s
				}
			}
			if scope == "" {
				scope = uuid.NewString()
				issued, err := tokens.Issue(scope, ttl)
				if err != nil {
					h.WriteServiceError(w, r, logger, err)
					return
				}
				token = issued
			}
			w.Header().Set(ViewerTokenHeader, token)

			viewer, err := viewers.Current(r.Context(), scope)
			if err != nil {
				h.WriteServiceError(w, r, logger, err)
				return
			}
			next(w, r.WithContext(SetViewer(r.Context(), scope, viewer)))
		}
	}
}
