package domain

import "time"

// SignupInput is the signup form. Email is normalized by the service.
type SignupInput struct {
	OrgName  string `json:"orgName" form:"orgName" validate:"required,max=200"`
	Email    string `json:"email" form:"email" validate:"required,email,max=320"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=200"`
}

// LoginInput is the login form.
type LoginInput struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=320"`
	Password string `json:"password" form:"password" validate:"required,max=200"`
}

// SwitchOrgInput selects another organization the session's user belongs to.
type SwitchOrgInput struct {
	OrgID string `json:"orgId" form:"orgId" validate:"required,uuid"`
}

// Account is the result of a signup: a fresh organization with its first (admin) user.
type Account struct {
	OrgID  string
	UserID string
}

// Issued is a freshly created session together with its signed token.
type Issued struct {
	Token     string
	SessionID string
	UserID    string
	OrgID     string
	ExpiresAt time.Time
}
