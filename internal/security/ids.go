package security

import "github.com/google/uuid"

// CanonicalUUID returns s lower-cased when it is a hyphenated 36-character uuid in either case.
// The urn, braced and unhyphenated forms that uuid.Parse also accepts are rejected.
func CanonicalUUID(s string) (string, bool) {
	if len(s) != 36 {
		return "", false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return u.String(), true
}
