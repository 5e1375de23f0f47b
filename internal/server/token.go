package server

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	tokenLength   = 32
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// generateToken returns a random alphanumeric token drawn from crypto/rand.
func generateToken() (string, error) {
	b := make([]byte, tokenLength)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating token: %w", err)
		}
		b[i] = tokenAlphabet[n.Int64()]
	}
	return string(b), nil
}
