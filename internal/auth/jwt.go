package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleEditor may change placements, filters and the loaded collection.
const RoleEditor = "editor"

// Claims represents the JWT claims structure
type Claims struct {
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT operations
type JWTManager struct {
	secret   string
	issuer   string
	audience string
	expiry   time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret, issuer, audience string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
		expiry:   expiry,
	}
}

// ValidateConfig rejects settings that would issue weak or unusable tokens.
func (j *JWTManager) ValidateConfig() error {
	switch {
	case j.secret == "":
		return errors.New("jwt secret is empty")
	case len(j.secret) < 32:
		return errors.New("jwt secret must be at least 32 characters")
	case j.issuer == "":
		return errors.New("jwt issuer is empty")
	case j.audience == "":
		return errors.New("jwt audience is empty")
	case j.expiry <= 0:
		return errors.New("jwt expiry must be positive")
	}
	return nil
}

// GenerateToken issues a token for subject with the given roles.
func (j *JWTManager) GenerateToken(subject, name string, roles []string) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", errors.New("subject is required")
	}
	if len(roles) == 0 {
		return "", errors.New("at least one role is required")
	}

	now := time.Now()
	claims := &Claims{
		Name:  name,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.issuer,
			Audience:  []string{j.audience},
			Subject:   subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secret))
}

// ValidateToken validates and parses a JWT token
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.secret), nil
	}, jwt.WithIssuer(j.issuer), jwt.WithAudience(j.audience), jwt.WithExpirationRequired())

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// HasRole checks if the user has any of the required roles
func (c *Claims) HasRole(requiredRoles ...string) bool {
	for _, required := range requiredRoles {
		for _, userRole := range c.Roles {
			if userRole == required {
				return true
			}
		}
	}
	return false
}

// IsExpiringSoon reports whether the token expires within d. Expired tokens count.
func (c *Claims) IsExpiringSoon(d time.Duration) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return time.Until(c.ExpiresAt.Time) <= d
}
