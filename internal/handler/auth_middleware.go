package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/suar-net/suar-relay/internal/model"
	"github.com/suar-net/suar-relay/internal/service"
)

type contextKey string

const identityContextKey = contextKey("identity")

type AuthMiddleware struct {
	identityService service.IIdentityService
	logger          *log.Logger
}

func NewAuthMiddleware(s service.IIdentityService, l *log.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		identityService: s,
		logger:          l,
	}
}

// Authenticate rejects requests without a valid identity with 401.
// Nothing downstream runs for a rejected request.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := m.identityService.Resolve(r.Context(), r.Header.Get("Authorization"))
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext returns the caller stored by Authenticate.
func IdentityFromContext(ctx context.Context) (*model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*model.Identity)
	return identity, ok && identity != nil
}

// requireIdentity is the handler-side guard for routes mounted behind Authenticate.
func requireIdentity(w http.ResponseWriter, r *http.Request) (*model.Identity, bool) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return identity, true
}
