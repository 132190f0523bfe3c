package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lorrc/asset-desk-backend/internal/core/domain"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrMissingSubject = errors.New("token has no subject")
)

// Claims is the identity carried by an access token. The user id travels
// in the standard sub claim.
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the caller described by the claims. An unknown role
// degrades to usuario.
func (c *Claims) Identity() domain.Identity {
	role, err := domain.ParseRole(c.Role)
	if err != nil {
		role = domain.RoleUser
	}
	return domain.Identity{UserID: c.Subject, Role: role}
}

type TokenManager struct {
	secretKey []byte
	ttl       time.Duration
	issuer    string
}

// NewTokenManager builds a manager for HS256 tokens. Tokens it issues
// expire after ttl.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secretKey: []byte(secret), ttl: ttl}
}

// WithIssuer makes the manager stamp and require iss.
func (tm *TokenManager) WithIssuer(issuer string) *TokenManager {
	tm.issuer = issuer
	return tm
}

// GenerateToken issues an access token for a user. Production tokens come
// from the identity provider; this is used by tests and local tooling.
func (tm *TokenManager) GenerateToken(userID string, role domain.Role) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    tm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secretKey)
}

// ValidateToken parses and validates the token string
func (tm *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if tm.issuer != "" {
		opts = append(opts, jwt.WithIssuer(tm.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return tm.secretKey, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}

	return claims, nil
}
