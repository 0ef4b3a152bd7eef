package rbac

import (
	"context"
	"errors"
	"testing"

	membershipdomain "taskhub/backend/internal/membership/domain"
	"taskhub/backend/internal/session/domain"
	"taskhub/backend/internal/session/resolver"
)

const (
	orgA = "11111111-1111-1111-1111-111111111111"
	orgB = "22222222-2222-2222-2222-222222222222"
)

func sessionWithRole(role membershipdomain.Role) *domain.Resolved {
	return &domain.Resolved{
		User: domain.SessionUser{
			ID:    "user-1",
			Email: "a@x.com",
			Organizations: []membershipdomain.OrgMembership{
				{OrgID: orgA, OrgName: "A", Role: role},
				{OrgID: orgB, OrgName: "B", Role: membershipdomain.RoleAdmin},
			},
		},
		SessionID:   "session-1",
		ActiveOrgID: orgA,
	}
}

var (
	allActions   = []Action{Create, Read, Update, Delete}
	allResources = []Resource{Project, Task, Comment, Attachment}
)

func TestCheck_AdminAllowsEverything(t *testing.T) {
	sess := sessionWithRole(membershipdomain.RoleAdmin)
	for _, a := range allActions {
		for _, r := range allResources {
			if err := Check(sess, orgA, a, r); err != nil {
				t.Errorf("admin %s %s: %v", a, r, err)
			}
		}
	}
}

func TestCheck_MemberMatrix(t *testing.T) {
	sess := sessionWithRole(membershipdomain.RoleMember)
	testCases := []struct {
		action   Action
		resource Resource
		want     error
	}{
		{Read, Project, nil},
		{Read, Task, nil},
		{Read, Comment, nil},
		{Read, Attachment, nil},
		{Create, Project, ErrPermissionDenied},
		{Update, Project, ErrPermissionDenied},
		{Delete, Project, ErrPermissionDenied},
		{Create, Task, nil},
		{Update, Task, nil},
		{Delete, Task, ErrPermissionDenied},
		{Create, Comment, nil},
		{Update, Comment, nil},
		{Delete, Comment, ErrPermissionDenied},
		{Create, Attachment, nil},
		{Update, Attachment, nil},
		{Delete, Attachment, ErrPermissionDenied},
	}
	for _, tc := range testCases {
		t.Run(tc.action.String()+"_"+tc.resource.String(), func(t *testing.T) {
			err := Check(sess, orgA, tc.action, tc.resource)
			if !errors.Is(err, tc.want) || (tc.want == nil && err != nil) {
				t.Errorf("Check = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCheck_NoSession(t *testing.T) {
	if err := Check(nil, orgA, Read, Project); !errors.Is(err, ErrAuthenticationRequired) {
		t.Errorf("Check(nil) = %v, want ErrAuthenticationRequired", err)
	}
}

func TestCheck_ActiveOrgMismatchIsForbidden(t *testing.T) {
	// The session is an admin of orgB but its active org is orgA.
	for _, role := range []membershipdomain.Role{membershipdomain.RoleAdmin, membershipdomain.RoleMember} {
		sess := sessionWithRole(role)
		for _, a := range allActions {
			for _, r := range allResources {
				if err := Check(sess, orgB, a, r); !errors.Is(err, ErrForbidden) {
					t.Errorf("%s %s %s in other org = %v, want ErrForbidden", role, a, r, err)
				}
			}
		}
	}
	if err := Check(sessionWithRole(membershipdomain.RoleAdmin), "", Read, Project); !errors.Is(err, ErrForbidden) {
		t.Errorf("empty org = %v, want ErrForbidden", err)
	}
}

func TestCheck_NoMembershipIsForbidden(t *testing.T) {
	sess := sessionWithRole(membershipdomain.RoleAdmin)
	sess.User.Organizations = sess.User.Organizations[1:]
	if err := Check(sess, orgA, Read, Project); !errors.Is(err, ErrForbidden) {
		t.Errorf("Check = %v, want ErrForbidden", err)
	}
}

func TestCheck_UnknownRoleDenied(t *testing.T) {
	sess := sessionWithRole(membershipdomain.Role("owner"))
	for _, a := range allActions {
		if err := Check(sess, orgA, a, Project); !errors.Is(err, ErrPermissionDenied) {
			t.Errorf("unknown role %s = %v, want ErrPermissionDenied", a, err)
		}
	}
}

func TestCheck_UnknownEnumDenied(t *testing.T) {
	sess := sessionWithRole(membershipdomain.RoleMember)
	if err := Check(sess, orgA, Action(99), Task); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("unknown action = %v, want ErrPermissionDenied", err)
	}
	if err := Check(sess, orgA, Read, Resource(99)); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("unknown resource = %v, want ErrPermissionDenied", err)
	}
}

func TestRequireAdmin(t *testing.T) {
	if err := RequireAdmin(sessionWithRole(membershipdomain.RoleAdmin), orgA); err != nil {
		t.Errorf("admin: %v", err)
	}
	if err := RequireAdmin(sessionWithRole(membershipdomain.RoleMember), orgA); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("member = %v, want ErrPermissionDenied", err)
	}
	if err := RequireAdmin(nil, orgA); !errors.Is(err, ErrAuthenticationRequired) {
		t.Errorf("nil = %v, want ErrAuthenticationRequired", err)
	}
}

func TestIsDenial(t *testing.T) {
	for _, err := range []error{ErrAuthenticationRequired, ErrForbidden, ErrPermissionDenied} {
		if !IsDenial(err) {
			t.Errorf("IsDenial(%v) = false", err)
		}
	}
	if IsDenial(ErrNotFound) || IsDenial(errors.New("db")) {
		t.Error("IsDenial should only match authorization errors")
	}
}

func TestCheckContext_WithoutRequest(t *testing.T) {
	if err := CheckContext(context.Background(), orgA, Read, Project); !errors.Is(err, ErrAuthenticationRequired) {
		t.Errorf("CheckContext = %v, want ErrAuthenticationRequired", err)
	}
	if _, err := RequireActiveOrg(context.Background(), Read, Project); !errors.Is(err, ErrAuthenticationRequired) {
		t.Errorf("RequireActiveOrg = %v, want ErrAuthenticationRequired", err)
	}
}

func TestCheckContext_NoCookieRequest(t *testing.T) {
	r := resolver.New(nil, nil, nil, nil)
	ctx := resolver.WithRequest(context.Background(), r.NewRequest(""))
	if err := CheckContext(ctx, orgA, Read, Project); !errors.Is(err, ErrAuthenticationRequired) {
		t.Errorf("CheckContext = %v, want ErrAuthenticationRequired", err)
	}
}
