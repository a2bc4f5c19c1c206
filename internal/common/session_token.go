package common

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const revokedTokenPrefix = "revoked_token:"

var ErrTokenRevoked = errors.New("token revoked")

// SessionClaims is what the session cookie carries
type SessionClaims struct {
	SessionID string
	TokenID   string
	ExpiresAt time.Time
}

// SessionTokenSigner signs the session cookie value as an HS256 JWT.
// Revoked token ids are remembered in the cache until they would have expired.
type SessionTokenSigner struct {
	secretKey []byte
	revoked   CacheInterface
}

func NewSessionTokenSigner(secretKey []byte, revoked CacheInterface) *SessionTokenSigner {
	return &SessionTokenSigner{
		secretKey: secretKey,
		revoked:   revoked,
	}
}

func (s *SessionTokenSigner) Sign(sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sid": sessionID,
		"jti": uuid.New().String(),
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (s *SessionTokenSigner) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	sessionID, ok := (*claims)["sid"].(string)
	if !ok || sessionID == "" {
		return nil, errors.New("missing or invalid sid claim")
	}
	tokenID, ok := (*claims)["jti"].(string)
	if !ok {
		return nil, errors.New("missing or invalid jti claim")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.New("missing or invalid exp claim")
	}

	if s.revoked != nil {
		if _, found := s.revoked.Get(revokedTokenPrefix + tokenID); found {
			return nil, ErrTokenRevoked
		}
	}

	return &SessionClaims{
		SessionID: sessionID,
		TokenID:   tokenID,
		ExpiresAt: exp.Time,
	}, nil
}

// Revoke rejects the token from now until its expiry
func (s *SessionTokenSigner) Revoke(claims *SessionClaims) {
	if s.revoked == nil || claims == nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return
	}
	s.revoked.Set(revokedTokenPrefix+claims.TokenID, "1", ttl)
}
