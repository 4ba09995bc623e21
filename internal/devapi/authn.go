package devapi

import (
	"context"
	"net/http"
	"strings"

	"parkdesk.app/internal/auth"
	"parkdesk.app/internal/services"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/auth/login",
	"/healthz",
	"/metrics",
}

type principalKey struct{}

// principal is the authenticated caller attached to the request context.
type principal struct {
	User   services.User
	Claims *auth.Claims
}

func contextWithPrincipal(ctx context.Context, p principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func principalFromContext(ctx context.Context) (principal, bool) {
	p, ok := ctx.Value(principalKey{}).(principal)
	return p, ok
}

// withAuth rejects requests without a valid bearer token, except on public
// paths. A missing header yields the exact envelope clients treat as a
// session invalidation signal.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		header := strings.TrimSpace(r.Header.Get(authHeader))
		if header == "" {
			writeNoToken(w)
			return
		}
		token, ok := extractBearerToken(header)
		if !ok {
			writeUnauthorized(w, "invalid authorization scheme")
			return
		}

		claims, err := a.signer.Parse(token)
		if err != nil {
			writeUnauthorized(w, "invalid token")
			return
		}
		user, _, err := a.store.UserByID(claims.Subject)
		if err != nil || !user.Enabled {
			writeUnauthorized(w, "invalid token")
			return
		}

		ctx := contextWithPrincipal(r.Context(), principal{User: user, Claims: claims})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole guards a handler behind an allowed-role set.
func (a *API) requireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			p, ok := principalFromContext(r.Context())
			if !ok {
				writeNoToken(w)
				return
			}
			for _, role := range roles {
				if p.User.Role == role {
					next(w, r)
					return
				}
			}
			writeForbidden(w)
		}
	}
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}

func extractBearerToken(header string) (string, bool) {
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearer):])
	return token, token != ""
}
