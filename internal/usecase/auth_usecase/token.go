package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// SessionClaims is the payload of a session token. The token is only a
// pointer to the server side session; revoking the session kills it.
type SessionClaims struct {
	SessionID    string `json:"sid"`
	TokenVersion int    `json:"tv"`
	jwt.RegisteredClaims
}

// JWTSessionTokens signs and parses HS256 session tokens.
type JWTSessionTokens struct {
	secret []byte
}

func NewJWTSessionTokens(secret string) *JWTSessionTokens {
	return &JWTSessionTokens{secret: []byte(secret)}
}

func (t *JWTSessionTokens) Issue(sessionID, userID string, tokenVersion int, issuedAt, expiresAt time.Time) (string, error) {
	claims := SessionClaims{
		SessionID:    sessionID,
		TokenVersion: tokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse checks the signature and expiry against now.
func (t *JWTSessionTokens) Parse(raw string, now time.Time) (SessionClaims, error) {
	var claims SessionClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	tok, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil || !tok.Valid {
		return SessionClaims{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.ExpiresAt == nil || !now.Before(claims.ExpiresAt.Time) {
		return SessionClaims{}, fmt.Errorf("%w: token expired", ErrUnauthenticated)
	}
	if claims.SessionID == "" || claims.Subject == "" {
		return SessionClaims{}, fmt.Errorf("%w: missing claims", ErrUnauthenticated)
	}
	return claims, nil
}

// HashToken is what the session store keeps instead of the token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
