package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tradedesk/internal/domain"
)

const issuer = "tradedesk"

// Claims represents the JWT token claims
type Claims struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed bearer tokens. Signature
// validity and expiry are checked as two independent conditions so
// callers can tell a forged token apart from a merely stale one.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a new TokenService. The signing key is
// process-wide and loaded once at startup.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue generates a signed token for the given principal, expiring at
// issue time plus the configured TTL
func (s *TokenService) Issue(userID uuid.UUID, username, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := &Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify checks the token signature first, then expiry. A tampered or
// malformed token yields ErrInvalidSignature regardless of expiry. A
// token whose signature is intact but whose validity has lapsed yields
// ErrTokenExpired together with the decoded claims.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})

	if err != nil {
		// jwt/v5 validates claims only after the signature has been
		// verified, so an expiry error implies an authentic token.
		if errors.Is(err, jwt.ErrTokenExpired) && token != nil {
			if claims, ok := token.Claims.(*Claims); ok {
				return claims, domain.ErrTokenExpired
			}
		}
		return nil, domain.ErrInvalidSignature
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidSignature
	}

	return claims, nil
}

// IsExpiredButAuthentic reports whether the token failed verification
// for expiry alone. It is false for valid tokens and for tokens with a
// broken signature. This is the mechanism that lets the refresh
// endpoint accept a stale token without trusting a forged one.
func (s *TokenService) IsExpiredButAuthentic(tokenString string) bool {
	_, err := s.Verify(tokenString)
	return errors.Is(err, domain.ErrTokenExpired)
}

// ClaimsFromExpired returns the decoded claims of a token already known
// to be expired-but-authentic. Callers must have established that state
// via IsExpiredButAuthentic; any other token yields ErrInvalidSignature.
func (s *TokenService) ClaimsFromExpired(tokenString string) (*Claims, error) {
	claims, err := s.Verify(tokenString)
	if !errors.Is(err, domain.ErrTokenExpired) {
		return nil, domain.ErrInvalidSignature
	}
	return claims, nil
}

// TTL returns the configured token lifetime
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}
