package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenManager handles issuing and validating gateway interaction tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: 15 * time.Minute}
}

// Claims describes the JWT payload the gateway signs for each interaction:
// the acting member, their display name at interaction time, and the
// platform role names they held. Capabilities may be empty, in which case
// the service falls back to the gateway roles API.
type Claims struct {
	ActorID      int64    `json:"actor_id"`
	DisplayName  string   `json:"display_name"`
	Capabilities []string `json:"caps,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken builds and signs a JWT for the actor. Used by tests and by
// local tooling; in production the gateway issues these.
func (tm *TokenManager) GenerateToken(actorID int64, displayName string, capabilities []string) (string, time.Time, error) {
	expiresAt := time.Now().Add(tm.ttl)
	claims := &Claims{
		ActorID:      actorID,
		DisplayName:  displayName,
		Capabilities: capabilities,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.ActorID == 0 {
		return nil, errors.New("token missing actor id")
	}
	return claims, nil
}
