package security

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, tampered, signed with another
	// algorithm or secret, or carries a payload of the wrong shape.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmptySecret is returned by NewSessionTokenCodec when no signing secret is given.
	ErrEmptySecret = errors.New("session token secret is empty")
)

// SessionPayload is the content of a signed session token.
type SessionPayload struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	OrgID     string `json:"orgId"`
}

// Validate reports whether every field is a well-formed hyphenated uuid.
func (p SessionPayload) Validate() error {
	for _, v := range []string{p.SessionID, p.UserID, p.OrgID} {
		if _, ok := CanonicalUUID(v); !ok {
			return ErrInvalidToken
		}
	}
	return nil
}

type sessionClaims struct {
	SessionPayload
	jwt.RegisteredClaims
}

// SessionTokenCodec signs and verifies HS256 session tokens. Tokens carry no expiry; liveness is
// decided by the session store.
type SessionTokenCodec struct {
	secret []byte
}

// NewSessionTokenCodec returns a codec keyed by secret.
func NewSessionTokenCodec(secret []byte) (*SessionTokenCodec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	s := make([]byte, len(secret))
	copy(s, secret)
	return &SessionTokenCodec{secret: s}, nil
}

// Sign returns the signed token for p. p must pass Validate.
func (c *SessionTokenCodec) Sign(p SessionPayload) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{SessionPayload: p})
	return t.SignedString(c.secret)
}

// Verify checks the signature of token and returns its payload. Every failure, including a
// correctly signed payload of the wrong shape, returns ErrInvalidToken.
func (c *SessionTokenCodec) Verify(token string) (SessionPayload, error) {
	if token == "" {
		return SessionPayload{}, ErrInvalidToken
	}
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return SessionPayload{}, ErrInvalidToken
	}
	if err := claims.SessionPayload.Validate(); err != nil {
		return SessionPayload{}, ErrInvalidToken
	}
	return claims.SessionPayload, nil
}
