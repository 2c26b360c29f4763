package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryWarning is how close to expiry a token gets before responses carry
// the X-Token-Expires-* headers.
const ExpiryWarning = time.Hour

const maxTokenSize = 8 << 10

type claimsKey struct{}

// ErrorResponse is the JSON error body used across the API.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// WriteError sends an ErrorResponse with the given status.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code}); err != nil {
		log.Printf("write error response: %v", err)
	}
}

// WithClaims attaches verified claims to ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFromContext returns the verified claims, or nil for anonymous requests.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey{}).(*Claims)
	return c
}

// SubjectFromContext returns the token subject, or "" for anonymous requests.
func SubjectFromContext(ctx context.Context) string {
	if c := ClaimsFromContext(ctx); c != nil {
		return c.Subject
	}
	return ""
}

// rejection is a 401 or 403 answer to a request that failed authentication.
type rejection struct {
	status  int
	code    string
	message string
}

func (rj *rejection) send(w http.ResponseWriter) {
	WriteError(w, rj.status, rj.code, rj.message)
}

func unauthorized(code, message string) *rejection {
	return &rejection{status: http.StatusUnauthorized, code: code, message: message}
}

// bearerToken extracts the token from "Authorization: Bearer <token>". The
// scheme is case-insensitive.
func bearerToken(r *http.Request) (string, *rejection) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", unauthorized("MISSING_AUTH_HEADER", "Authorization header required")
	}
	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", unauthorized("INVALID_AUTH_FORMAT", "Invalid authorization header format. Expected: Bearer <token>")
	}
	token = strings.TrimSpace(token)
	switch {
	case token == "":
		return "", unauthorized("MISSING_TOKEN", "Token is required")
	case len(token) > maxTokenSize:
		return "", unauthorized("INVALID_TOKEN_FORMAT", "Token exceeds the maximum size")
	case strings.Count(token, ".") != 2:
		return "", unauthorized("INVALID_TOKEN_FORMAT", "Token must have three dot-separated parts")
	}
	return token, nil
}

// tokenRejection maps a ValidateToken failure to the answer sent to the client.
func tokenRejection(err error) *rejection {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return unauthorized("TOKEN_EXPIRED", "Token has expired")
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return unauthorized("INVALID_SIGNING_METHOD", "Invalid token signature")
	case errors.Is(err, jwt.ErrTokenMalformed):
		return unauthorized("MALFORMED_TOKEN", "Token is malformed")
	case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
		return unauthorized("INVALID_TOKEN_AUDIENCE", "Token was not issued for this service")
	default:
		return unauthorized("INVALID_TOKEN", "Invalid token")
	}
}

// verify authenticates r and returns its claims.
func verify(m *JWTManager, r *http.Request) (*Claims, *rejection) {
	token, rj := bearerToken(r)
	if rj != nil {
		return nil, rj
	}
	claims, err := m.ValidateToken(token)
	if err != nil {
		return nil, tokenRejection(err)
	}
	if claims.Subject == "" {
		return nil, unauthorized("INVALID_SUBJECT", "Missing subject in token")
	}
	if len(claims.Roles) == 0 {
		return nil, unauthorized("NO_ROLES", "No roles assigned to token")
	}
	return claims, nil
}

// AuthMiddleware requires a valid bearer token issued by m and stores its
// claims in the request context. Tokens within ExpiryWarning of expiring get
// X-Token-Expires-At and X-Token-Expires-In response headers.
func AuthMiddleware(m *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, rj := verify(m, r)
			if rj != nil {
				rj.send(w)
				return
			}
			if claims.IsExpiringSoon(ExpiryWarning) {
				exp := claims.ExpiresAt.Time
				w.Header().Set("X-Token-Expires-At", exp.UTC().Format(time.RFC3339))
				w.Header().Set("X-Token-Expires-In", time.Until(exp).Round(time.Second).String())
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// MustRole admits requests whose claims carry at least one of roles. It must
// run after AuthMiddleware.
func MustRole(roles ...string) func(http.Handler) http.Handler {
	if len(roles) == 0 {
		panic("auth: MustRole needs at least one role")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				WriteError(w, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", "Authentication required")
				return
			}
			if !claims.HasRole(roles...) {
				WriteError(w, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS", "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
