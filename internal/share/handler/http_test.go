package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"taskhub/backend/internal/platform/httpx"
	"taskhub/backend/internal/platform/rbac"
	"taskhub/backend/internal/server/middleware"
	"taskhub/backend/internal/session/sessiontest"
	"taskhub/backend/internal/share/domain"
	"taskhub/backend/internal/share/service"
	taskdomain "taskhub/backend/internal/task/domain"
)

const (
	orgA    = "11111111-1111-1111-1111-111111111111"
	project = "44444444-4444-4444-4444-444444444444"
)

type fakeShares struct {
	created, revoked []string
	resolveErr       error
}

func (f *fakeShares) Create(ctx context.Context, orgID, userID, projectID string) (*domain.Link, error) {
	f.created = append(f.created, orgID+"/"+projectID)
	return &domain.Link{TokenID: "t1", URL: "http://localhost:3000/share/t1.secret"}, nil
}

func (f *fakeShares) Revoke(ctx context.Context, orgID, userID, projectID string) error {
	f.revoked = append(f.revoked, orgID+"/"+projectID)
	return nil
}

func (f *fakeShares) Resolve(ctx context.Context, token string) (*domain.PublicProject, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return &domain.PublicProject{
		Project: domain.PublicProjectInfo{Name: "Launch"},
		Tasks:   []taskdomain.PublicTask{{ID: "x", Title: "Draft", Status: taskdomain.StatusDone}},
	}, nil
}

func newApp(svc *fakeShares, id *sessiontest.Identity) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(nil)})
	app.Use(sessiontest.Middleware(id))
	NewHandler(svc, rbac.NewGuard(nil), httpx.NewBinder()).Register(app, app.Group("/api"))
	return app
}

func TestCreateAndRevoke_RequireAdmin(t *testing.T) {
	testCases := []struct {
		name       string
		id         *sessiontest.Identity
		method     string
		wantStatus int
	}{
		{"admin create", sessiontest.Admin(orgA), http.MethodPost, fiber.StatusCreated},
		{"member create", sessiontest.Member(orgA), http.MethodPost, fiber.StatusForbidden},
		{"anonymous create", nil, http.MethodPost, fiber.StatusUnauthorized},
		{"admin revoke", sessiontest.Admin(orgA), http.MethodDelete, fiber.StatusNoContent},
		{"member revoke", sessiontest.Member(orgA), http.MethodDelete, fiber.StatusForbidden},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeShares{}
			resp, err := newApp(svc, tc.id).Test(httptest.NewRequest(tc.method, "/api/projects/"+project+"/share", nil))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
			calls := len(svc.created) + len(svc.revoked)
			if wantCall := tc.wantStatus < 400; (calls == 1) != wantCall {
				t.Errorf("service calls = %d", calls)
			}
		})
	}
}

func TestCreate_ReturnsURL(t *testing.T) {
	resp, _ := newApp(&fakeShares{}, sessiontest.Admin(orgA)).Test(httptest.NewRequest(http.MethodPost, "/api/projects/"+project+"/share", nil))
	var link domain.Link
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if link.URL != "http://localhost:3000/share/t1.secret" {
		t.Errorf("link = %+v", link)
	}
}

func TestView(t *testing.T) {
	resp, err := newApp(&fakeShares{}, nil).Test(httptest.NewRequest(http.MethodGet, "/share/abc.def", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["project"].(map[string]any)["name"] != "Launch" || len(body["tasks"].([]any)) != 1 {
		t.Errorf("body = %v", body)
	}

	resp, _ = newApp(&fakeShares{resolveErr: service.ErrShareNotFound}, nil).Test(httptest.NewRequest(http.MethodGet, "/share/abc.def", nil))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("unknown link status = %d, want 404", resp.StatusCode)
	}
	resp, _ = newApp(&fakeShares{resolveErr: errors.New("db down")}, nil).Test(httptest.NewRequest(http.MethodGet, "/share/abc.def", nil))
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("store error status = %d, want 500", resp.StatusCode)
	}
}
