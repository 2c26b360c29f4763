package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough-for-testing"

func newTestManager() *JWTManager {
	return NewJWTManager(testSecret, "floorplan-inventory", "floorplan-inventory", time.Hour)
}

func TestJWTManager_ValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mgr     *JWTManager
		wantErr bool
	}{
		{"valid", newTestManager(), false},
		{"empty secret", NewJWTManager("", "iss", "aud", time.Hour), true},
		{"short secret", NewJWTManager("short", "iss", "aud", time.Hour), true},
		{"empty issuer", NewJWTManager(testSecret, "", "aud", time.Hour), true},
		{"empty audience", NewJWTManager(testSecret, "iss", "", time.Hour), true},
		{"negative expiry", NewJWTManager(testSecret, "iss", "aud", -time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mgr.ValidateConfig()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	mgr := newTestManager()

	token, err := mgr.GenerateToken("alice", "Alice Martin", []string{RoleEditor})
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "Alice Martin", claims.Name)
	assert.Equal(t, []string{RoleEditor}, claims.Roles)
	assert.Equal(t, "floorplan-inventory", claims.Issuer)
	assert.False(t, claims.IsExpiringSoon(time.Minute))
	assert.True(t, claims.IsExpiringSoon(2*time.Hour))
}

func TestJWTManager_GenerateTokenRejectsBadInput(t *testing.T) {
	mgr := newTestManager()

	_, err := mgr.GenerateToken("  ", "", []string{RoleEditor})
	assert.Error(t, err)

	_, err = mgr.GenerateToken("alice", "", nil)
	assert.Error(t, err)
}

func TestJWTManager_ValidateTokenFailures(t *testing.T) {
	mgr := newTestManager()

	other := NewJWTManager(testSecret, "someone-else", "floorplan-inventory", time.Hour)
	foreign, err := other.GenerateToken("alice", "", []string{RoleEditor})
	require.NoError(t, err)
	_, err = mgr.ValidateToken(foreign)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

	wrongKey := NewJWTManager(strings.Repeat("x", 40), "floorplan-inventory", "floorplan-inventory", time.Hour)
	forged, err := wrongKey.GenerateToken("alice", "", []string{RoleEditor})
	require.NoError(t, err)
	_, err = mgr.ValidateToken(forged)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	expired := NewJWTManager(testSecret, "floorplan-inventory", "floorplan-inventory", -time.Minute)
	old, err := expired.GenerateToken("alice", "", []string{RoleEditor})
	require.NoError(t, err)
	_, err = mgr.ValidateToken(old)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = mgr.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestClaims_HasRole(t *testing.T) {
	c := &Claims{Roles: []string{"viewer", RoleEditor}}
	assert.True(t, c.HasRole(RoleEditor))
	assert.True(t, c.HasRole("admin", "viewer"))
	assert.False(t, c.HasRole("admin"))
	assert.False(t, (&Claims{}).HasRole(RoleEditor))
}

func TestClaims_IsExpiringSoon(t *testing.T) {
	soon := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(10 * time.Minute))}}
	assert.True(t, soon.IsExpiringSoon(time.Hour))
	assert.False(t, soon.IsExpiringSoon(time.Minute))

	past := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}}
	assert.True(t, past.IsExpiringSoon(0))

	assert.False(t, (&Claims{}).IsExpiringSoon(time.Hour))
}

func TestContextFunctions(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ClaimsFromContext(ctx))
	assert.Empty(t, SubjectFromContext(ctx))

	claims := &Claims{Roles: []string{RoleEditor}, RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"}}
	ctx = WithClaims(ctx, claims)

	assert.Same(t, claims, ClaimsFromContext(ctx))
	assert.Equal(t, "alice", SubjectFromContext(ctx))
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header   string
		want     string
		wantCode string
	}{
		{"Bearer header.payload.signature", "header.payload.signature", ""},
		{"bearer  header.payload.signature ", "header.payload.signature", ""},
		{"", "", "MISSING_AUTH_HEADER"},
		{"Basic abc", "", "INVALID_AUTH_FORMAT"},
		{"Bearer", "", "MISSING_TOKEN"},
		{"Bearer ", "", "MISSING_TOKEN"},
		{"Bearer header.payload", "", "INVALID_TOKEN_FORMAT"},
		{"Bearer a.b.c.d", "", "INVALID_TOKEN_FORMAT"},
		{"Bearer " + strings.Repeat("a", 9000), "", "INVALID_TOKEN_FORMAT"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		got, rj := bearerToken(req)
		if tt.wantCode == "" {
			assert.Nil(t, rj, tt.header)
			assert.Equal(t, tt.want, got)
			continue
		}
		require.NotNil(t, rj, tt.header)
		assert.Equal(t, tt.wantCode, rj.code)
		assert.Equal(t, http.StatusUnauthorized, rj.status)
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	mgr := newTestManager()
	valid, err := mgr.GenerateToken("alice", "", []string{RoleEditor})
	require.NoError(t, err)
	expired, err := NewJWTManager(testSecret, "floorplan-inventory", "floorplan-inventory", -time.Minute).
		GenerateToken("alice", "", []string{RoleEditor})
	require.NoError(t, err)
	foreign, err := NewJWTManager(testSecret, "someone-else", "floorplan-inventory", time.Hour).
		GenerateToken("alice", "", []string{RoleEditor})
	require.NoError(t, err)
	otherKey, err := NewJWTManager(strings.Repeat("k", 40), "floorplan-inventory", "floorplan-inventory", time.Hour).
		GenerateToken("alice", "", []string{RoleEditor})
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantErr  string
	}{
		{"missing header", "", http.StatusUnauthorized, "MISSING_AUTH_HEADER"},
		{"basic scheme", "Basic abc", http.StatusUnauthorized, "INVALID_AUTH_FORMAT"},
		{"bad format", "Bearer abc", http.StatusUnauthorized, "INVALID_TOKEN_FORMAT"},
		{"garbage token", "Bearer invalid.token.format", http.StatusUnauthorized, "MALFORMED_TOKEN"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"foreign issuer", "Bearer " + foreign, http.StatusUnauthorized, "INVALID_TOKEN_AUDIENCE"},
		{"wrong key", "Bearer " + otherKey, http.StatusUnauthorized, "INVALID_SIGNING_METHOD"},
		{"valid", "Bearer " + valid, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var subject string
			h := AuthMiddleware(mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				subject = SubjectFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(http.MethodPost, "/reload", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, decodeError(t, w).Code)
				assert.Empty(t, subject)
			} else {
				assert.Equal(t, "alice", subject)
			}
		})
	}
}

func TestAuthMiddleware_ExpiryWarningHeader(t *testing.T) {
	serve := func(expiry time.Duration) http.Header {
		mgr := NewJWTManager(testSecret, "floorplan-inventory", "floorplan-inventory", expiry)
		token, err := mgr.GenerateToken("alice", "", []string{RoleEditor})
		require.NoError(t, err)

		h := AuthMiddleware(mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		req := httptest.NewRequest(http.MethodPost, "/reload", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		return w.Header()
	}

	soon := serve(30 * time.Minute)
	assert.NotEmpty(t, soon.Get("X-Token-Expires-At"))
	assert.NotEmpty(t, soon.Get("X-Token-Expires-In"))

	later := serve(ExpiryWarning + time.Hour)
	assert.Empty(t, later.Get("X-Token-Expires-At"))
	assert.Empty(t, later.Get("X-Token-Expires-In"))
}

func TestMustRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name     string
		claims   *Claims
		wantCode int
		wantErr  string
	}{
		{"anonymous", nil, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED"},
		{"viewer", &Claims{Roles: []string{"viewer"}}, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS"},
		{"editor", &Claims{Roles: []string{"viewer", RoleEditor}}, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/items/1/coordinates", nil)
			if tt.claims != nil {
				req = req.WithContext(WithClaims(req.Context(), tt.claims))
			}
			w := httptest.NewRecorder()
			MustRole(RoleEditor)(ok).ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, decodeError(t, w).Code)
			}
		})
	}

	assert.Panics(t, func() { MustRole() })
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusBadRequest, "TEST_ERROR", "Test error")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, ErrorResponse{Error: "Test error", Code: "TEST_ERROR"}, decodeError(t, w))
}
