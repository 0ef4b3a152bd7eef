package domain

import "testing"

func TestUser_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		user    User
		wantErr bool
	}{
		{"valid", User{Email: "a@x.com", PasswordHash: "h", Salt: "s"}, false},
		{"missing email", User{PasswordHash: "h", Salt: "s"}, true},
		{"missing hash", User{Email: "a@x.com", Salt: "s"}, true},
		{"missing salt", User{Email: "a@x.com", PasswordHash: "h"}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.user.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  A@X.Com "); got != "a@x.com" {
		t.Errorf("NormalizeEmail = %q, want a@x.com", got)
	}
}
