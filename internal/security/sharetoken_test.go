package security

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestSecretHasher_HashAndMatches(t *testing.T) {
	h := NewSecretHasher(4)
	secret, err := NewShareSecret()
	if err != nil {
		t.Fatalf("NewShareSecret: %v", err)
	}
	if len(secret) != 64 {
		t.Errorf("secret length = %d, want 64", len(secret))
	}
	hash, err := h.Hash(secret)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !h.Matches(hash, secret) {
		t.Fatal("Matches with correct secret should succeed")
	}
	if h.Matches(hash, strings.Repeat("0", 64)) {
		t.Fatal("Matches with wrong secret should fail")
	}
	if h.Matches("not-a-bcrypt-hash", secret) {
		t.Fatal("Matches with invalid hash should fail")
	}
}

func TestNewSecretHasher_Cost(t *testing.T) {
	if h := NewSecretHasher(0); h.Cost < 4 {
		t.Errorf("zero cost should be clamped to at least MinCost, got %d", h.Cost)
	}
	if h := NewSecretHasher(99); h.Cost != 31 {
		t.Errorf("cost 99 should be clamped to MaxCost, got %d", h.Cost)
	}
}

func TestShareToken_FormatAndParse(t *testing.T) {
	id := uuid.NewString()
	secret, err := NewShareSecret()
	if err != nil {
		t.Fatalf("NewShareSecret: %v", err)
	}
	gotID, gotSecret, err := ParseShareToken(FormatShareToken(id, secret))
	if err != nil {
		t.Fatalf("ParseShareToken: %v", err)
	}
	if gotID != id || gotSecret != secret {
		t.Errorf("ParseShareToken = %q, %q", gotID, gotSecret)
	}

	gotID, _, err = ParseShareToken(FormatShareToken(strings.ToUpper(id), secret))
	if err != nil {
		t.Fatalf("ParseShareToken upper-case id: %v", err)
	}
	if gotID != id {
		t.Errorf("id = %q, want lower-cased %q", gotID, id)
	}
}

func TestParseShareToken_Malformed(t *testing.T) {
	id := uuid.NewString()
	testCases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no dot", id},
		{"empty secret", id + "."},
		{"bad id", "abc." + strings.Repeat("a", 64)},
		{"urn id", "urn:uuid:" + id + "." + strings.Repeat("a", 64)},
		{"braced id", "{" + id + "}." + strings.Repeat("a", 64)},
		{"short secret", id + ".abcd"},
		{"non-hex secret", id + "." + strings.Repeat("z", 64)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := ParseShareToken(tc.token); !errors.Is(err, ErrMalformedShareToken) {
				t.Errorf("err = %v, want ErrMalformedShareToken", err)
			}
		})
	}
}
