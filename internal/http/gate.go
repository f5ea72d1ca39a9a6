package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Clark-Hu/movierank/internal/domain"
	"github.com/Clark-Hu/movierank/internal/service"
)

type ctxKey int

const identityKey ctxKey = iota

// IdentityFromContext returns the caller attached by requireAuth.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok
}

// bearerToken extracts the token from an Authorization header value. Both the
// raw token and the "Bearer <token>" form are accepted.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// requireAuth rejects requests without a valid token before any handler runs
// and attaches the decoded identity to the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			s.respondServiceError(w, r, "authenticate", service.ErrAuthRequired)
			return
		}
		identity, err := s.tokens.Verify(token)
		if err != nil {
			s.logger.Debug().Err(err).Str("request_id", requestID(r)).Msg("token rejected")
			s.respondServiceError(w, r, "authenticate", service.ErrInvalidToken)
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin must run after requireAuth.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok || !identity.IsAdmin() {
			s.respondServiceError(w, r, "authorize", service.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

func mustIdentity(r *http.Request) domain.Identity {
	identity, _ := IdentityFromContext(r.Context())
	return identity
}
