package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hifz-hub/hifz-progress-hub/internal/domain/child"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/identity"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/progress"
	"github.com/hifz-hub/hifz-progress-hub/internal/domain/shared"
	"github.com/hifz-hub/hifz-progress-hub/internal/infrastructure/auth"
	"github.com/hifz-hub/hifz-progress-hub/pkg/logger"
)

func testServer() *Server {
	return &Server{
		config: DefaultConfig(),
		logger: logger.Default(),
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) JSONResponse {
	t.Helper()
	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "X-Auth-User", cfg.AuthHeader)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
}

func TestWriteJSON_SuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()

	writeJSON(rec, http.StatusCreated, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, "v1", resp.Meta.Version)
}

func TestWriteJSONError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()

	writeJSONError(rec, http.StatusNotFound, "not_found", "child not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "not_found", resp.Error.Code)
	assert.Equal(t, "child not found", resp.Error.Message)
}

func TestWriteDomainError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unauthenticated", identity.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"forbidden", shared.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"child not found", child.ErrChildNotFound, http.StatusNotFound, "not_found"},
		{"wrapped not found", errors.New("x"), http.StatusInternalServerError, "internal_error"},
		{"parent exists", identity.ErrParentExists, http.StatusConflict, "already_registered"},
		{"child deleted", child.ErrChildDeleted, http.StatusConflict, "child_deleted"},
		{"invalid accuracy", progress.ErrInvalidAccuracy, http.StatusBadRequest, "invalid_request"},
		{"invalid pin", identity.ErrInvalidPIN, http.StatusBadRequest, "invalid_request"},
		{"missing field", errors.New("submit_attempt: child_id is required"), http.StatusBadRequest, "invalid_request"},
	}

	s := testServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)

			s.writeDomainError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestWriteDomainError_WrappedSentinel(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	wrapped := errors.Join(errors.New("get_summary"), child.ErrChildNotFound)
	s.writeDomainError(rec, req, wrapped)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIdentityMiddleware_SetsIdentity(t *testing.T) {
	s := testServer()

	var got identity.Identity
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = auth.IdentityFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Auth-User", "  tg-12345  ")

	s.identityMiddleware(next).ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, ok)
	assert.Equal(t, "tg-12345", got.ExternalID)
}

func TestIdentityMiddleware_NoHeader(t *testing.T) {
	s := testServer()

	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = auth.IdentityFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	s.identityMiddleware(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, ok)
}

func TestRequestIDMiddleware(t *testing.T) {
	s := testServer()

	var fromContext string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromContext = getRequestID(r.Context())
	})

	t.Run("propagates incoming header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Request-ID", "req-abc")
		rec := httptest.NewRecorder()

		s.requestIDMiddleware(next).ServeHTTP(rec, req)

		assert.Equal(t, "req-abc", fromContext)
		assert.Equal(t, "req-abc", rec.Header().Get("X-Request-ID"))
	})

	t.Run("generates when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()

		s.requestIDMiddleware(next).ServeHTTP(rec, req)

		assert.NotEmpty(t, fromContext)
		assert.Equal(t, fromContext, rec.Header().Get("X-Request-ID"))
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	s := testServer()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	require.NotPanics(t, func() {
		s.recoveryMiddleware(next).ServeHTTP(rec, req)
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := newRateLimiter(3, time.Minute)

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))

	// Independent key has its own window
	assert.True(t, rl.Allow("5.6.7.8"))
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	rl := newRateLimiter(1, 10*time.Millisecond)

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "x-forwarded-for first entry",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-real-ip",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "203.0.113.9"},
			want:       "203.0.113.9",
		},
		{
			name:       "remote addr fallback",
			remoteAddr: "192.168.1.5:4321",
			want:       "192.168.1.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}

func TestGetQueryParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test?days=14&fresh=true&bad=abc", nil)

	assert.Equal(t, 14, getQueryParamInt(req, "days", 7))
	assert.Equal(t, 7, getQueryParamInt(req, "missing", 7))
	assert.Equal(t, 7, getQueryParamInt(req, "bad", 7))
	assert.True(t, getQueryParamBool(req, "fresh"))
	assert.False(t, getQueryParamBool(req, "missing"))
}

func TestGetPathInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/surahs/112/verses", nil)
	req.SetPathValue("number", "112")
	assert.Equal(t, 112, getPathInt(req, "number"))

	req.SetPathValue("number", "not-a-number")
	assert.Equal(t, 0, getPathInt(req, "number"))
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, isValidationError(errors.New("sync_attempts: batch is empty")))
	assert.True(t, isValidationError(errors.New("list_children: parent_id is required")))
	assert.False(t, isValidationError(errors.New("connection refused")))
}
