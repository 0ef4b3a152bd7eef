package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"taskhub/backend/internal/audit/audittest"
	auditdomain "taskhub/backend/internal/audit/domain"
	"taskhub/backend/internal/platform/httpx"
	"taskhub/backend/internal/platform/rbac"
	"taskhub/backend/internal/project/domain"
	"taskhub/backend/internal/server/middleware"
	"taskhub/backend/internal/session/sessiontest"
	"taskhub/backend/internal/storage"
)

const (
	orgA = "11111111-1111-1111-1111-111111111111"
	orgB = "22222222-2222-2222-2222-222222222222"
)

type memRepo struct {
	mu       sync.Mutex
	projects map[string]*domain.Project
}

func (m *memRepo) ListByOrg(ctx context.Context, orgID string) ([]*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Project{}
	for _, p := range m.projects {
		if p.OrgID == orgID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memRepo) GetByID(ctx context.Context, orgID, id string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p := m.projects[id]; p != nil && p.OrgID == orgID {
		return p, nil
	}
	return nil, nil
}

func (m *memRepo) Create(ctx context.Context, p *domain.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	m.projects[p.ID] = p
	return nil
}

func (m *memRepo) Delete(ctx context.Context, orgID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p := m.projects[id]; p != nil && p.OrgID == orgID {
		delete(m.projects, id)
		return true, nil
	}
	return false, nil
}

type staticKeys []string

func (k staticKeys) StoragePathsByProject(ctx context.Context, orgID, projectID string) ([]string, error) {
	return k, nil
}

type fixture struct {
	repo  *memRepo
	blobs *storage.DiskStore
	audit *audittest.Recorder
	seed  *domain.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	blobs, err := storage.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	seed := &domain.Project{ID: uuid.NewString(), OrgID: orgA, Name: "Seeded"}
	return &fixture{
		repo:  &memRepo{projects: map[string]*domain.Project{seed.ID: seed}},
		blobs: blobs,
		audit: &audittest.Recorder{},
		seed:  seed,
	}
}

func (f *fixture) app(id *sessiontest.Identity) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(nil)})
	app.Use(sessiontest.Middleware(id))
	h := NewHandler(f.repo, staticKeys{"blob-1"}, f.blobs, rbac.NewGuard(nil), f.audit, httpx.NewBinder(), nil)
	h.Register(app.Group("/api"))
	app.Get("/dashboard", h.Dashboard)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestCreate(t *testing.T) {
	testCases := []struct {
		name       string
		id         *sessiontest.Identity
		body       string
		wantStatus int
	}{
		{"admin", sessiontest.Admin(orgA), `{"name":"Launch"}`, fiber.StatusCreated},
		{"member denied", sessiontest.Member(orgA), `{"name":"Launch"}`, fiber.StatusForbidden},
		{"anonymous", nil, `{"name":"Launch"}`, fiber.StatusUnauthorized},
		{"missing name", sessiontest.Admin(orgA), `{}`, fiber.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			resp := do(t, f.app(tc.id), http.MethodPost, "/api/projects", tc.body)
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
			if tc.wantStatus != fiber.StatusCreated {
				if len(f.audit.Events()) != 0 {
					t.Error("rejected create must not be audited")
				}
				return
			}
			var p domain.Project
			if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if p.OrgID != orgA || p.CreatedBy != tc.id.UserID {
				t.Errorf("project = %+v", p)
			}
			events := f.audit.Events()
			if len(events) != 1 || events[0].Action != auditdomain.ActionProjectCreate || events[0].Details["name"] != "Launch" {
				t.Errorf("audit = %+v", events)
			}
		})
	}
}

func TestGet_CrossTenantIsNotFound(t *testing.T) {
	f := newFixture(t)
	if resp := do(t, f.app(sessiontest.Member(orgA)), http.MethodGet, "/api/projects/"+f.seed.ID, ""); resp.StatusCode != fiber.StatusOK {
		t.Errorf("same org status = %d, want 200", resp.StatusCode)
	}
	if resp := do(t, f.app(sessiontest.Admin(orgB)), http.MethodGet, "/api/projects/"+f.seed.ID, ""); resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("other org status = %d, want 404", resp.StatusCode)
	}
	if resp := do(t, f.app(sessiontest.Admin(orgA)), http.MethodGet, "/api/projects/not-a-uuid", ""); resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", resp.StatusCode)
	}
}

func TestList(t *testing.T) {
	f := newFixture(t)
	resp := do(t, f.app(sessiontest.Member(orgB)), http.MethodGet, "/api/projects", "")
	var list []domain.Project
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("other org sees %d projects, want 0", len(list))
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	if _, err := f.blobs.Put(context.Background(), "blob-1", strings.NewReader("x")); err != nil {
		t.Fatal(err)
	}

	if resp := do(t, f.app(sessiontest.Member(orgA)), http.MethodDelete, "/api/projects/"+f.seed.ID, ""); resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("member delete status = %d, want 403", resp.StatusCode)
	}
	if resp := do(t, f.app(sessiontest.Admin(orgB)), http.MethodDelete, "/api/projects/"+f.seed.ID, ""); resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("other org delete status = %d, want 404", resp.StatusCode)
	}
	if resp := do(t, f.app(sessiontest.Admin(orgA)), http.MethodDelete, "/api/projects/"+f.seed.ID, ""); resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("admin delete status = %d, want 204", resp.StatusCode)
	}
	if _, err := f.blobs.Open(context.Background(), "blob-1"); err == nil {
		t.Error("attachment blob should be removed")
	}
	if got := f.audit.Actions(); len(got) != 1 || got[0] != auditdomain.ActionProjectDelete {
		t.Errorf("audit actions = %v", got)
	}
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	resp := do(t, f.app(sessiontest.Member(orgA)), http.MethodGet, "/dashboard", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		ActiveOrg struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"activeOrg"`
		Projects []domain.Project `json:"projects"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ActiveOrg.ID != orgA || body.ActiveOrg.Role != "member" || len(body.Projects) != 1 {
		t.Errorf("dashboard = %+v", body)
	}
}
