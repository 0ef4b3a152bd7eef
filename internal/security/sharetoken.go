package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ShareSecretBytes is the amount of randomness in a share link secret.
const ShareSecretBytes = 32

// ErrMalformedShareToken is returned by ParseShareToken for anything not shaped "<uuid>.<hex>".
var ErrMalformedShareToken = errors.New("malformed share token")

// SecretHasher hashes and verifies share-link secrets using bcrypt.
type SecretHasher struct {
	Cost int
}

// NewSecretHasher returns a SecretHasher with the given bcrypt cost, clamped to the valid range.
func NewSecretHasher(cost int) *SecretHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &SecretHasher{Cost: cost}
}

// Hash returns the bcrypt hash of secret.
func (h *SecretHasher) Hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Matches reports whether secret matches hash.
func (h *SecretHasher) Matches(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// NewShareSecret returns ShareSecretBytes random bytes, hex-encoded.
func NewShareSecret() (string, error) {
	b := make([]byte, ShareSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// FormatShareToken joins the token row id and its secret into the public link token.
func FormatShareToken(id, secret string) string {
	return id + "." + secret
}

// ParseShareToken splits a public link token into the row id and the secret.
func ParseShareToken(token string) (id, secret string, err error) {
	id, secret, ok := strings.Cut(token, ".")
	if !ok || secret == "" {
		return "", "", ErrMalformedShareToken
	}
	id, ok = CanonicalUUID(id)
	if !ok {
		return "", "", ErrMalformedShareToken
	}
	if len(secret) != 2*ShareSecretBytes {
		return "", "", ErrMalformedShareToken
	}
	if _, err := hex.DecodeString(secret); err != nil {
		return "", "", ErrMalformedShareToken
	}
	return id, secret, nil
}
