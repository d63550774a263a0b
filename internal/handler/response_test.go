package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoangchien/portfolio/internal/apperror"
	"github.com/hoangchien/portfolio/internal/auth"
)

// ===== writeError =====

func TestWriteError_MapsSentinels(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantField  string
	}{
		{"validation", apperror.ValidationFailed("title", "title is required"), http.StatusBadRequest, "validation_error", "title"},
		{"unauthorized", apperror.Unauthorized("invalid credentials"), http.StatusUnauthorized, "unauthorized", ""},
		{"forbidden", apperror.Forbidden("admin only"), http.StatusForbidden, "forbidden", ""},
		{"not found", apperror.NotFoundBySlug("blog post", "da-lat"), http.StatusNotFound, "not_found", ""},
		{"conflict", apperror.Conflict("album", "x"), http.StatusConflict, "conflict", ""},
		{"too large", apperror.TooLarge("photos", 1024), http.StatusRequestEntityTooLarge, "payload_too_large", "photos"},
		{"wrapped", fmt.Errorf("service: %w", apperror.NotFound("project", "7")), http.StatusNotFound, "not_found", ""},
		{"plain", errors.New("disk on fire"), http.StatusInternalServerError, "internal_error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body.Error)
			assert.Equal(t, tt.wantField, body.Field)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestWriteError_InternalDetailOnlyForAdmins(t *testing.T) {
	err := errors.New("database is locked")

	tests := []struct {
		name   string
		claims *auth.Claims
		want   string
	}{
		{"anonymous", nil, "An internal error occurred"},
		{"non-admin", &auth.Claims{Username: "viewer", Role: "user"}, "An internal error occurred"},
		{"admin", &auth.Claims{Username: "admin", Role: "admin"}, "database is locked"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.claims != nil {
				req = req.WithContext(auth.WithClaims(req.Context(), tt.claims))
			}
			rr := httptest.NewRecorder()
			writeError(rr, req, err)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body.Message)
		})
	}
}

// ===== decodeJSON =====

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"valid", `{"name":"x"}`, nil},
		{"empty", ``, apperror.ErrValidation},
		{"malformed", `{"name":`, apperror.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := decodeJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "x", dst.Name)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ===== idParam =====

func TestIDParam(t *testing.T) {
	tests := []struct {
		ref     string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"da-lat", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("ref", tt.ref)
			req := httptest.NewRequest(http.MethodDelete, "/", nil)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			id, err := idParam(req)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperror.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}
