// Package service implements signup, login, logout and active-organization switching on top of the
// account, user, membership and session repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"taskhub/backend/internal/audit"
	auditdomain "taskhub/backend/internal/audit/domain"
	"taskhub/backend/internal/identity/domain"
	membershipdomain "taskhub/backend/internal/membership/domain"
	"taskhub/backend/internal/ratelimit"
	"taskhub/backend/internal/security"
	"taskhub/backend/internal/session/resolver"
	userdomain "taskhub/backend/internal/user/domain"
)

// Sentinel errors for the auth service; the HTTP handler maps them to status codes.
var (
	ErrSignupFailed       = errors.New("signup failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoOrganization     = errors.New("user is not part of any organization")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrNotOrgMember       = errors.New("user is not a member of the organization")
	ErrNoSession          = errors.New("no active session")
)

// Login failure reasons recorded in the audit log.
const (
	reasonUserNotFound    = "user_not_found"
	reasonInvalidPassword = "invalid_password"
)

// Login outcomes reported to LoginRecorder.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeThrottled          = "throttled"
	OutcomeError              = "error"
)

// AccountRepo is the minimal account repository needed by the auth service.
type AccountRepo interface {
	CreateAccount(ctx context.Context, orgName, email, passwordHash, salt string) (*domain.Account, error)
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
}

// MembershipRepo is the minimal membership repository needed by the auth service.
type MembershipRepo interface {
	ListForUser(ctx context.Context, userID string) ([]membershipdomain.OrgMembership, error)
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	Create(ctx context.Context, userID string) (string, time.Time, error)
	Delete(ctx context.Context, id string) error
}

// TokenSigner mints session tokens.
type TokenSigner interface {
	Sign(p security.SessionPayload) (string, error)
}

// LoginLimiter throttles login attempts. May be nil.
type LoginLimiter interface {
	Allow(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// LoginRecorder counts login outcomes. May be nil.
type LoginRecorder interface {
	LoginAttempt(ctx context.Context, outcome string)
}

// AuthService implements password signup, login, logout and org switching.
type AuthService struct {
	accounts    AccountRepo
	users       UserRepo
	memberships MembershipRepo
	sessions    SessionRepo
	tokens      TokenSigner
	hasher      *security.PasswordHasher
	limiter     LoginLimiter
	metrics     LoginRecorder
	audit       audit.AuditLogger
	logger      *zap.Logger

	// dummyHash is verified against when the email is unknown so both failure paths cost one scrypt.
	dummyHash string
}

// Deps groups the collaborators of AuthService. Limiter, Metrics, Audit and Logger are optional.
type Deps struct {
	Accounts    AccountRepo
	Users       UserRepo
	Memberships MembershipRepo
	Sessions    SessionRepo
	Tokens      TokenSigner
	Hasher      *security.PasswordHasher
	Limiter     LoginLimiter
	Metrics     LoginRecorder
	Audit       audit.AuditLogger
	Logger      *zap.Logger
}

// NewAuthService returns an AuthService. Nil optional collaborators are replaced with no-ops.
func NewAuthService(d Deps) *AuthService {
	s := &AuthService{
		accounts:    d.Accounts,
		users:       d.Users,
		memberships: d.Memberships,
		sessions:    d.Sessions,
		tokens:      d.Tokens,
		hasher:      d.Hasher,
		limiter:     d.Limiter,
		metrics:     d.Metrics,
		audit:       d.Audit,
		logger:      d.Logger,
	}
	if s.hasher == nil {
		s.hasher = security.NewPasswordHasher()
	}
	if s.audit == nil {
		s.audit = audit.Nop{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if h, err := s.hasher.Hash("taskhub-dummy-password"); err == nil {
		s.dummyHash = h
	}
	return s
}

// Signup creates an organization, its first user as admin and a session for that user. Every
// failure is reported as ErrSignupFailed wrapping the cause.
func (s *AuthService) Signup(ctx context.Context, in domain.SignupInput) (*domain.Issued, error) {
	orgName := strings.TrimSpace(in.OrgName)
	email := userdomain.NormalizeEmail(in.Email)
	if orgName == "" || email == "" || len(in.Password) < 8 {
		return nil, ErrSignupFailed
	}
	saltAndHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignupFailed, err)
	}
	salt, _, _ := security.Split(saltAndHash)

	acct, err := s.accounts.CreateAccount(ctx, orgName, email, saltAndHash, salt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignupFailed, err)
	}
	s.audit.LogEvent(ctx, audit.Event{
		OrgID:      acct.OrgID,
		UserID:     acct.UserID,
		Action:     auditdomain.ActionUserSignup,
		Resource:   "user",
		ResourceID: acct.UserID,
		Details:    map[string]any{"orgName": orgName},
	})

	issued, err := s.issue(ctx, acct.UserID, acct.OrgID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignupFailed, err)
	}
	return issued, nil
}

// Login verifies email and password and opens a session in the user's earliest organization.
// Unknown email and wrong password both return ErrInvalidCredentials; the audit log records which.
func (s *AuthService) Login(ctx context.Context, in domain.LoginInput) (*domain.Issued, error) {
	email := userdomain.NormalizeEmail(in.Email)
	if s.limiter != nil {
		if err := s.limiter.Allow(ctx, email); err != nil {
			if errors.Is(err, ratelimit.ErrRateLimited) {
				s.record(ctx, OutcomeThrottled)
				return nil, ErrTooManyAttempts
			}
			s.logger.Warn("login limiter unavailable, allowing attempt", zap.Error(err))
		}
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.record(ctx, OutcomeError)
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		s.hasher.Verify(in.Password, s.dummyHash)
		s.loginFailed(ctx, "", email, reasonUserNotFound)
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(in.Password, u.PasswordHash) {
		s.loginFailed(ctx, u.ID, email, reasonInvalidPassword)
		return nil, ErrInvalidCredentials
	}

	orgs, err := s.memberships.ListForUser(ctx, u.ID)
	if err != nil {
		s.record(ctx, OutcomeError)
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	if len(orgs) == 0 {
		s.record(ctx, OutcomeError)
		return nil, ErrNoOrganization
	}
	orgID := orgs[0].OrgID

	issued, err := s.issue(ctx, u.ID, orgID)
	if err != nil {
		s.record(ctx, OutcomeError)
		return nil, err
	}
	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.logger.Warn("login limiter reset failed", zap.Error(err))
		}
	}
	s.record(ctx, OutcomeSuccess)
	s.audit.LogEvent(ctx, audit.Event{
		OrgID:      orgID,
		UserID:     u.ID,
		Action:     auditdomain.ActionUserLoginSuccess,
		Resource:   "session",
		ResourceID: issued.SessionID,
	})
	return issued, nil
}

// Logout deletes the session carried by ctx. A request without a live session is a no-op; a store
// failure while resolving it is returned so the session is not left live behind a cleared cookie.
func (s *AuthService) Logout(ctx context.Context) error {
	sess, err := resolver.SessionFromContext(ctx)
	if err != nil {
		return fmt.Errorf("resolve session: %w", err)
	}
	if sess == nil {
		return nil
	}
	s.audit.LogEvent(ctx, audit.Event{
		OrgID:      sess.ActiveOrgID,
		UserID:     sess.User.ID,
		Action:     auditdomain.ActionUserLogout,
		Resource:   "session",
		ResourceID: sess.SessionID,
	})
	if err := s.sessions.Delete(ctx, sess.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// SwitchOrg replaces the current session with one whose active organization is orgID. The user must
// already be a member of orgID.
func (s *AuthService) SwitchOrg(ctx context.Context, orgID string) (*domain.Issued, error) {
	sess, err := resolver.SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}
	if _, ok := sess.Membership(orgID); !ok {
		return nil, ErrNotOrgMember
	}

	issued, err := s.issue(ctx, sess.User.ID, orgID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Delete(ctx, sess.SessionID); err != nil {
		s.logger.Warn("delete previous session", zap.String("session_id", sess.SessionID), zap.Error(err))
	}
	s.audit.LogEvent(ctx, audit.Event{
		OrgID:      orgID,
		UserID:     sess.User.ID,
		Action:     auditdomain.ActionSessionSwitchOrg,
		Resource:   "session",
		ResourceID: issued.SessionID,
		Details:    map[string]any{"fromOrgId": sess.ActiveOrgID},
	})
	return issued, nil
}

// issue inserts a session row for userID and signs a token binding it to orgID.
func (s *AuthService) issue(ctx context.Context, userID, orgID string) (*domain.Issued, error) {
	id, expiresAt, err := s.sessions.Create(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	token, err := s.tokens.Sign(security.SessionPayload{SessionID: id, UserID: userID, OrgID: orgID})
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	return &domain.Issued{Token: token, SessionID: id, UserID: userID, OrgID: orgID, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, userID, email, reason string) {
	s.record(ctx, OutcomeInvalidCredentials)
	s.audit.LogEvent(ctx, audit.Event{
		UserID:   userID,
		Action:   auditdomain.ActionUserLoginFailed,
		Resource: "user",
		Details:  map[string]any{"email": email, "reason": reason},
	})
}

func (s *AuthService) record(ctx context.Context, outcome string) {
	if s.metrics != nil {
		s.metrics.LoginAttempt(ctx, outcome)
	}
}
