package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"taskhub/backend/internal/identity/domain"
	"taskhub/backend/internal/identity/service"
	"taskhub/backend/internal/platform/httpx"
	"taskhub/backend/internal/server/middleware"
)

type fakeAuth struct {
	signupErr  error
	loginErr   error
	logoutErr  error
	switchErr  error
	logouts    int
	lastLogin  domain.LoginInput
	lastSignup domain.SignupInput
	lastOrg    string
}

func (f *fakeAuth) issued(orgID string) *domain.Issued {
	return &domain.Issued{Token: "signed-token", SessionID: "s1", UserID: "u1", OrgID: orgID, ExpiresAt: time.Now().Add(24 * time.Hour)}
}

func (f *fakeAuth) Signup(ctx context.Context, in domain.SignupInput) (*domain.Issued, error) {
	f.lastSignup = in
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	return f.issued("o1"), nil
}

func (f *fakeAuth) Login(ctx context.Context, in domain.LoginInput) (*domain.Issued, error) {
	f.lastLogin = in
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.issued("o1"), nil
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	f.logouts++
	return f.logoutErr
}

func (f *fakeAuth) SwitchOrg(ctx context.Context, orgID string) (*domain.Issued, error) {
	f.lastOrg = orgID
	if f.switchErr != nil {
		return nil, f.switchErr
	}
	return f.issued(orgID), nil
}

func newTestApp(auth AuthService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(nil)})
	h := NewAuthHandler(auth, httpx.NewBinder(), middleware.NewCookies(false), nil)
	h.Register(app, app.Group("/api"))
	return app
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func errorBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return body["error"]
}

func cookieValue(resp *http.Response) (string, bool) {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c.Value, true
		}
	}
	return "", false
}

func TestLogin(t *testing.T) {
	testCases := []struct {
		name       string
		form       url.Values
		err        error
		wantStatus int
		wantError  string
	}{
		{"success", url.Values{"email": {"a@x.com"}, "password": {"password123"}}, nil, fiber.StatusSeeOther, ""},
		{"invalid credentials", url.Values{"email": {"a@x.com"}, "password": {"nope"}}, service.ErrInvalidCredentials, fiber.StatusUnauthorized, msgInvalidCredentials},
		{"no organization", url.Values{"email": {"a@x.com"}, "password": {"password123"}}, service.ErrNoOrganization, fiber.StatusUnauthorized, msgInvalidCredentials},
		{"throttled", url.Values{"email": {"a@x.com"}, "password": {"password123"}}, service.ErrTooManyAttempts, fiber.StatusTooManyRequests, msgInvalidCredentials},
		{"server error", url.Values{"email": {"a@x.com"}, "password": {"password123"}}, errors.New("db down"), fiber.StatusInternalServerError, middleware.MsgServerError},
		{"bad email", url.Values{"email": {"not-an-email"}, "password": {"x"}}, nil, fiber.StatusBadRequest, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &fakeAuth{loginErr: tc.err}
			resp := postForm(t, newTestApp(auth), "/login", tc.form)
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
			if tc.wantStatus == fiber.StatusSeeOther {
				if resp.Header.Get("Location") != DashboardPath {
					t.Errorf("Location = %q", resp.Header.Get("Location"))
				}
				if v, ok := cookieValue(resp); !ok || v != "signed-token" {
					t.Errorf("session cookie = %q, %v", v, ok)
				}
				return
			}
			if _, ok := cookieValue(resp); ok {
				t.Error("failed login must not set a cookie")
			}
			if tc.wantError != "" {
				if got := errorBody(t, resp); got != tc.wantError {
					t.Errorf("error = %q, want %q", got, tc.wantError)
				}
			}
		})
	}
}

func TestLogin_AcceptsJSON(t *testing.T) {
	auth := &fakeAuth{}
	resp := postJSON(t, newTestApp(auth), "/login", `{"email":"a@x.com","password":"password123"}`)
	if resp.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	if auth.lastLogin.Email != "a@x.com" {
		t.Errorf("login input = %+v", auth.lastLogin)
	}
}

func TestSignup(t *testing.T) {
	testCases := []struct {
		name       string
		form       url.Values
		err        error
		wantStatus int
	}{
		{"success", url.Values{"orgName": {"Acme"}, "email": {"a@x.com"}, "password": {"password123"}}, nil, fiber.StatusSeeOther},
		{"short password", url.Values{"orgName": {"Acme"}, "email": {"a@x.com"}, "password": {"short"}}, nil, fiber.StatusBadRequest},
		{"missing org", url.Values{"email": {"a@x.com"}, "password": {"password123"}}, nil, fiber.StatusBadRequest},
		{"service failure", url.Values{"orgName": {"Acme"}, "email": {"a@x.com"}, "password": {"password123"}}, service.ErrSignupFailed, fiber.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postForm(t, newTestApp(&fakeAuth{signupErr: tc.err}), "/signup", tc.form)
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
			if tc.wantStatus == fiber.StatusBadRequest {
				if got := errorBody(t, resp); got != msgSignupFailed {
					t.Errorf("error = %q, want %q", got, msgSignupFailed)
				}
				return
			}
			if resp.Header.Get("Location") != DashboardPath {
				t.Errorf("Location = %q", resp.Header.Get("Location"))
			}
			if _, ok := cookieValue(resp); !ok {
				t.Error("signup should set the session cookie")
			}
		})
	}
}

func TestLogout(t *testing.T) {
	auth := &fakeAuth{}
	resp := postForm(t, newTestApp(auth), "/logout", nil)
	if resp.StatusCode != fiber.StatusSeeOther || resp.Header.Get("Location") != LoginPath {
		t.Fatalf("status = %d location = %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if v, ok := cookieValue(resp); !ok || v != "" {
		t.Errorf("cookie = %q, %v; want cleared", v, ok)
	}
	if auth.logouts != 1 {
		t.Errorf("logouts = %d, want 1", auth.logouts)
	}
}

func TestLogout_StoreError(t *testing.T) {
	auth := &fakeAuth{logoutErr: errors.New("db down")}
	resp := postForm(t, newTestApp(auth), "/logout", nil)
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if _, ok := cookieValue(resp); ok {
		t.Error("cookie must not be cleared when the session could not be deleted")
	}
}

func TestSession_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	resp, err := newTestApp(&fakeAuth{}).Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestSwitchOrg(t *testing.T) {
	const orgID = "0b8a1c3e-6a55-4d0a-9a57-3c1b9d2c7e11"
	testCases := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"success", `{"orgId":"` + orgID + `"}`, nil, fiber.StatusOK},
		{"not a member", `{"orgId":"` + orgID + `"}`, service.ErrNotOrgMember, fiber.StatusForbidden},
		{"no session", `{"orgId":"` + orgID + `"}`, service.ErrNoSession, fiber.StatusUnauthorized},
		{"upper-case id", `{"orgId":"` + strings.ToUpper(orgID) + `"}`, nil, fiber.StatusOK},
		{"bad id", `{"orgId":"nope"}`, nil, fiber.StatusBadRequest},
		{"urn id", `{"orgId":"urn:uuid:` + orgID + `"}`, nil, fiber.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &fakeAuth{switchErr: tc.err}
			resp := postJSON(t, newTestApp(auth), "/api/session/active-org", tc.body)
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
			if tc.wantStatus != fiber.StatusOK {
				return
			}
			if v, ok := cookieValue(resp); !ok || v != "signed-token" {
				t.Errorf("cookie = %q, %v", v, ok)
			}
			if auth.lastOrg != orgID {
				t.Errorf("org = %q, want %q", auth.lastOrg, orgID)
			}
		})
	}
}
