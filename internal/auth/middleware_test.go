package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// tokenAuthenticator validates with a TokenService and rejects a fixed set
// of revoked token ids.
type tokenAuthenticator struct {
	tokens  *TokenService
	revoked map[string]bool
}

func (a *tokenAuthenticator) Authenticate(_ context.Context, token string) (*Claims, error) {
	c, err := a.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	if a.revoked[c.ID] {
		return nil, errors.New("revoked")
	}
	return c, nil
}

func okHandler(t *testing.T, wantUser string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := ClaimsFromContext(r.Context())
		if assert.True(t, ok, "claims should be in context") {
			assert.Equal(t, wantUser, c.Username)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireAdmin(t *testing.T) {
	ts := newTestTokenService(t)
	authn := &tokenAuthenticator{tokens: ts, revoked: map[string]bool{}}

	adminToken, _, _ := ts.Generate(1, "admin", "admin")
	userToken, _, _ := ts.Generate(2, "guest", "user")
	revokedToken, revokedClaims, _ := ts.Generate(1, "admin", "admin")
	authn.revoked[revokedClaims.ID] = true
	expiredToken, _, _ := ts.GenerateWithDuration(1, "admin", "admin", -1)

	h := RequireAdmin(authn)(okHandler(t, "admin"))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+adminToken) }, http.StatusNoContent},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: adminToken}) }, http.StatusNoContent},
		{"no token", func(r *http.Request) {}, http.StatusUnauthorized},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic "+adminToken) }, http.StatusUnauthorized},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"expired", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expiredToken) }, http.StatusUnauthorized},
		{"revoked", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+revokedToken) }, http.StatusUnauthorized},
		{"not admin", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+userToken) }, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/projects", nil)
			tt.setup(req)
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			if tt.status != http.StatusNoContent {
				assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	ts := newTestTokenService(t)
	authn := &tokenAuthenticator{tokens: ts, revoked: map[string]bool{}}
	token, _, _ := ts.Generate(1, "admin", "admin")

	var sawClaims bool
	h := OptionalAuth(authn)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawClaims = ClaimsFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/blogger", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, sawClaims)

	req = httptest.NewRequest(http.MethodGet, "/api/blogger", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, sawClaims)

	req = httptest.NewRequest(http.MethodGet, "/api/blogger", nil)
	req.Header.Set("Authorization", "Bearer broken")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.False(t, sawClaims)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestTokenFromRequest_HeaderWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer from-header")
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "from-cookie"})

	assert.Equal(t, "from-header", TokenFromRequest(req))
}
