// internal/auth/token.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// privateKey and publicKey sign and verify resume tokens.
var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// tokenTTL is how long a resume token stays valid (0 => never expires).
	tokenTTL time.Duration
)

// ErrNotInitialized is returned when no signing key was loaded.
var ErrNotInitialized = errors.New("auth keys not initialized")

// ResumeClaims identify a seat: the player name in a session.
type ResumeClaims struct {
	Session string `json:"ses"` // session name
	jwt.RegisteredClaims
}

// Init generates a fresh ed25519 key pair at runtime. Tokens expire after ttl.
func Init(ttl time.Duration) error {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	publicKey, privateKey, tokenTTL = pub, priv, ttl
	return nil
}

// InitFromPath reads ed25519 private/public keys from file.
func InitFromPath(privatePath, publicPath string, ttl time.Duration) error {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return fmt.Errorf("failed to read public key file: %w", err)
	}
	if len(privateKeyData) != ed25519.PrivateKeySize || len(publicKeyData) != ed25519.PublicKeySize {
		return fmt.Errorf("unexpected ed25519 key sizes %d/%d", len(privateKeyData), len(publicKeyData))
	}

	privateKey = ed25519.PrivateKey(privateKeyData)
	publicKey = ed25519.PublicKey(publicKeyData)
	tokenTTL = ttl
	return nil
}

// CreateResumeToken signs a token with "sub" = player, "ses" = session name and
// "jti" = session id, so a token cannot outlive the session it was issued for.
func CreateResumeToken(sessionID, sessionName, player string) (string, error) {
	if privateKey == nil {
		return "", ErrNotInitialized
	}
	now := time.Now()
	claims := ResumeClaims{
		Session: sessionName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  player,
			ID:       sessionID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if tokenTTL != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(tokenTTL))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// ParseResumeToken verifies tokenString and returns its claims.
func ParseResumeToken(tokenString string) (*ResumeClaims, error) {
	if publicKey == nil {
		return nil, ErrNotInitialized
	}
	claims := &ResumeClaims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Subject == "" || claims.Session == "" {
		return nil, fmt.Errorf("missing seat in token")
	}
	return claims, nil
}
