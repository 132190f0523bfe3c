package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/lorrc/asset-desk-backend/internal/auth"
	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	"github.com/lorrc/asset-desk-backend/internal/infrastructure/logging"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// UserClaimsKey is the key used to store user claims in the request context.
const UserClaimsKey contextKey = "userClaims"

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// JWTMiddleware validates the JWT token from the Authorization header.
func JWTMiddleware(tv TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "Authorization header is required", "UNAUTHORIZED")
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "Authorization header format must be Bearer {token}", "UNAUTHORIZED")
				return
			}

			claims, err := tv.ValidateToken(token)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token", "UNAUTHORIZED")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims stores verified claims on ctx.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	identity := claims.Identity()
	ctx = logging.WithIdentity(ctx, identity.UserID, string(identity.Role))
	return context.WithValue(ctx, UserClaimsKey, claims)
}

// GetClaims returns the claims stored by JWTMiddleware.
func GetClaims(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// IdentityFromContext returns the verified caller.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	claims, ok := GetClaims(ctx)
	if !ok {
		return domain.Identity{}, false
	}
	return claims.Identity(), true
}

// RequireRole rejects callers whose token role is not listed. Services
// still enforce permissions against the stored profile.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized", "UNAUTHORIZED")
				return
			}
			if !slices.Contains(roles, identity.Role) {
				writeJSONError(w, http.StatusForbidden, "Access denied", "FORBIDDEN")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `","code":"` + code + `"}`))
}
