package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClaims stores the parsed caller token claims
	ContextKeyClaims ContextKey = "claims"
)

// CallerClaims are the claims the back-office auth layer puts in the bearer
// tokens it mints for this service. Companies is the list of company ids the
// user may work in; SessionID identifies the caller session the proxy state
// is keyed by.
type CallerClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
	Companies []int  `json:"companies"`
}

// RequireAuth validates the Bearer token on API routes, records the asserted
// company memberships, and injects the claims into the request context.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			rawToken := strings.TrimPrefix(authHeader, "Bearer ")

			claims := &CallerClaims{}
			token, err := jwt.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return s.jwtSecret, nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}
			if claims.Subject == "" || claims.SessionID == "" {
				http.Error(w, "token missing subject or session", http.StatusUnauthorized)
				return
			}

			s.memberships.Record(claims.Subject, claims.Companies)

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// ClaimsFromContext returns the caller claims injected by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*CallerClaims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*CallerClaims)
	return claims, ok
}
