package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// GatewaySecret checks the shared token the payment gateway presents on
// callbacks against a bcrypt hash.
type GatewaySecret struct {
	hash []byte
}

// NewGatewaySecret returns nil when hash is empty, which disables the check.
func NewGatewaySecret(hash string) (*GatewaySecret, error) {
	if hash == "" {
		return nil, nil
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid gateway token hash: %w", err)
	}
	return &GatewaySecret{hash: []byte(hash)}, nil
}

// HashGatewayToken produces the value to configure for token.
func HashGatewayToken(token string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash gateway token: %w", err)
	}
	return string(hash), nil
}

// Matches reports whether token is the configured gateway token.
func (g *GatewaySecret) Matches(token string) bool {
	if token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(g.hash, []byte(token)) == nil
}
