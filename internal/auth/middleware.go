package auth

import (
	"context"
	"net/http"
	"strings"
)

// CookieName is the HttpOnly cookie that carries the session token.
const CookieName = "token"

// contextKey is an unexported type used for context keys in this package.
// Only this package can create a key of this type, so no other package can
// read or shadow the claims stored under it.
type contextKey string

const claimsKey contextKey = "claims"

// Authenticator turns a raw token into verified claims. Implementations must
// check signature, expiry and revocation.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Claims, error)
}

// RequireAdmin guards admin writes.
//
// The token is read from the Authorization header ("Bearer <jwt>") or, when
// absent, from the session cookie. A missing, invalid, expired or revoked
// token yields 401; a valid token without the admin role yields 403.
//
// MIDDLEWARE PATTERN IN GO:
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp.
// Returning without calling next stops the chain.
func RequireAdmin(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(r, authn)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
				return
			}
			if !claims.IsAdmin() {
				writeAuthError(w, http.StatusForbidden, "forbidden", "admin role required")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches claims when a valid token is present but never
// blocks the request. Public routes use it so error responses can tell
// admins and anonymous callers apart.
func OptionalAuth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, err := authenticate(r, authn); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext returns the verified claims of the current request.
// Returns (nil, false) if the request is anonymous.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok && c != nil
}

// WithClaims returns a copy of ctx carrying claims. Used by tests that call
// handlers directly.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// TokenFromRequest extracts the raw token, preferring the Authorization
// header over the cookie. Returns "" when neither is present.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

func authenticate(r *http.Request, authn Authenticator) (*Claims, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return nil, http.ErrNoCookie
	}
	return authn.Authenticate(r.Context(), token)
}

func writeAuthError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + kind + `","message":"` + message + `"}`))
}
