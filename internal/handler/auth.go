package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hoangchien/portfolio/internal/apperror"
	"github.com/hoangchien/portfolio/internal/auth"
	"github.com/hoangchien/portfolio/internal/service"
)

// AuthHandler manages admin login and the session cookie.
//
// HANDLER RESPONSIBILITIES:
//   - HandleLogin   → check credentials, issue a JWT in body and HttpOnly cookie
//   - HandleLogout  → revoke the token server-side and clear the cookie
//   - HandleSession → report who the current token belongs to
type AuthHandler struct {
	auth         *service.AuthService
	cookieSecure bool
	logger       *slog.Logger
}

// NewAuthHandler creates an AuthHandler. cookieSecure marks the session
// cookie Secure; turn it off only for plain-HTTP development.
func NewAuthHandler(authSvc *service.AuthService, cookieSecure bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authSvc, cookieSecure: cookieSecure, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResponse struct {
	User      userResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type sessionResponse struct {
	User      userResponse `json:"user"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// HandleLogin checks credentials and starts a session.
//
// HTTP: POST /api/login
// REQUEST BODY: {"username": "...", "password": "..."}
//
// The token is returned in the body for API clients and set as an HttpOnly
// cookie for the browser. Both carry the same expiry.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		MaxAge:   int(time.Until(res.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, loginResponse{
		User: userResponse{
			ID:       res.User.ID,
			Username: res.User.Username,
			Role:     res.User.Role(),
		},
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	})
}

// HandleLogout revokes the current token.
//
// HTTP: POST /api/logout (admin)
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, apperror.Unauthorized("not logged in"))
		return
	}

	if err := h.auth.Logout(r.Context(), claims); err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
}

// HandleSession returns the user of the current token.
//
// HTTP: GET /api/session
// Runs behind OptionalAuth, so an anonymous request reaches this handler
// without claims and gets a 401.
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, apperror.Unauthorized("not logged in"))
		return
	}

	id, err := claims.UserID()
	if err != nil {
		writeError(w, r, apperror.Unauthorized("not logged in"))
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		User:      userResponse{ID: id, Username: claims.Username, Role: claims.Role},
		ExpiresAt: claims.ExpiresAt(),
	})
}
