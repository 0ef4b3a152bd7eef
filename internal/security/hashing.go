package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters. Changing any of them invalidates every stored password hash.
const (
	scryptN       = 16384
	scryptR       = 8
	scryptP       = 1
	hashKeyLen    = 64
	saltByteLen   = 16
	hashSeparator = ":"
)

// PasswordHasher hashes and verifies passwords with scrypt. Callers must not log or
// persist plaintext passwords.
type PasswordHasher struct{}

// NewPasswordHasher returns a PasswordHasher.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{}
}

// Hash derives a 64-byte scrypt key from password under a fresh random salt and returns
// "salt:hexDigest". The hex-encoded salt string is the scrypt salt.
func (h *PasswordHasher) Hash(password string) (string, error) {
	b := make([]byte, saltByteLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	salt := hex.EncodeToString(b)
	key, err := derive(password, salt)
	if err != nil {
		return "", err
	}
	return Join(salt, hex.EncodeToString(key)), nil
}

// Verify reports whether password matches saltAndHash. Malformed input returns false.
func (h *PasswordHasher) Verify(password, saltAndHash string) bool {
	salt, digest, ok := Split(saltAndHash)
	if !ok {
		return false
	}
	want, err := hex.DecodeString(digest)
	if err != nil || len(want) != hashKeyLen {
		return false
	}
	got, err := derive(password, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(got, want) == 1
}

// Split separates "salt:hash" into its parts. ok is false when either part is empty.
func Split(saltAndHash string) (salt, hash string, ok bool) {
	salt, hash, found := strings.Cut(saltAndHash, hashSeparator)
	if !found || salt == "" || hash == "" {
		return "", "", false
	}
	return salt, hash, true
}

// Join is the inverse of Split; users store the two parts in separate columns.
func Join(salt, hash string) string {
	return salt + hashSeparator + hash
}

func derive(password, salt string) ([]byte, error) {
	return scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, hashKeyLen)
}
