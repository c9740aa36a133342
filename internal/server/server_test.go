package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matzehuels/repoman/pkg/constraint"
	rperrors "github.com/matzehuels/repoman/pkg/errors"
	"github.com/matzehuels/repoman/pkg/integrations"
	"github.com/matzehuels/repoman/pkg/observability"
	"github.com/matzehuels/repoman/pkg/repository"
	"github.com/matzehuels/repoman/pkg/repository/memory"
)

type failingRepo struct{ err error }

func (f failingRepo) FindPackage(context.Context, string, constraint.Constraint) (*repository.Package, error) {
	return nil, f.err
}

func (f failingRepo) FindPackages(context.Context, string, constraint.Constraint) ([]repository.Package, error) {
	return nil, f.err
}

func newTestServer(t *testing.T, repos ...repository.Repository) *httptest.Server {
	t.Helper()
	m := repository.NewManager(repository.Env{})
	for _, r := range repos {
		m.AddRepository(r)
	}
	m.SetLocalRepository(memory.NewWritableRepository(repository.Package{Name: "acme/installed", Version: "1.0.0"}))
	m.SetRepositoryClass(memory.Type, memory.Class)

	srv := httptest.NewServer(New(m, nil))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, memory.NewArrayRepository())
	var body map[string]any
	if code := get(t, srv.URL+"/healthz", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["status"] != "ok" || body["repositories"] != float64(1) {
		t.Errorf("body = %v", body)
	}
}

func TestHealthStats(t *testing.T) {
	var stats observability.Stats
	stats.OnQuery(context.Background(), "find_packages", "acme/a", 1, 0, nil)

	srv := httptest.NewServer(New(repository.NewManager(repository.Env{}), nil, WithStats(&stats)))
	defer srv.Close()

	var body struct {
		Stats observability.StatsSnapshot `json:"stats"`
	}
	if code := get(t, srv.URL+"/healthz", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body.Stats.Queries != 1 {
		t.Errorf("stats = %+v, want one query", body.Stats)
	}
}

func TestPackages(t *testing.T) {
	srv := newTestServer(t,
		memory.NewArrayRepository(
			repository.Package{Name: "acme/a", Version: "1.0.0"},
			repository.Package{Name: "acme/a", Version: "2.0.0"},
		),
		memory.NewArrayRepository(repository.Package{Name: "acme/a", Version: "1.0.0"}),
	)

	tests := []struct {
		name  string
		path  string
		code  int
		count int
	}{
		{"all versions", "/packages/acme/a", http.StatusOK, 3},
		{"constrained", "/packages/acme/a?constraint=%5E1.0", http.StatusOK, 2},
		{"unknown package", "/packages/acme/zzz", http.StatusOK, 0},
		{"bad constraint", "/packages/acme/a?constraint=%5Efoo", http.StatusBadRequest, -1},
		{"bad name", "/packages/ACME!/a", http.StatusBadRequest, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				Packages []repository.Package `json:"packages"`
				Code     string               `json:"code"`
			}
			code := get(t, srv.URL+tt.path, &body)
			if code != tt.code {
				t.Fatalf("status = %d, want %d (%s)", code, tt.code, body.Code)
			}
			if tt.count >= 0 && len(body.Packages) != tt.count {
				t.Errorf("packages = %d, want %d", len(body.Packages), tt.count)
			}
		})
	}
}

func TestFirst(t *testing.T) {
	srv := newTestServer(t,
		memory.NewArrayRepository(repository.Package{Name: "acme/a", Version: "2.0.0"}),
		memory.NewArrayRepository(repository.Package{Name: "acme/a", Version: "1.0.0"}),
	)

	var p repository.Package
	if code := get(t, srv.URL+"/packages/acme/a/first", &p); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if p.Version != "2.0.0" {
		t.Errorf("first = %v, want the first registered repository's package", p)
	}

	if code := get(t, srv.URL+"/packages/acme/a/first?constraint=3.0.0", nil); code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
}

func TestRepositoryFailure(t *testing.T) {
	srv := newTestServer(t, failingRepo{err: integrations.ErrNetwork})
	if code := get(t, srv.URL+"/packages/acme/a", nil); code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", code)
	}

	srv = newTestServer(t, failingRepo{err: errors.New("boom")})
	var body map[string]string
	if code := get(t, srv.URL+"/packages/acme/a", &body); code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", code)
	}
	if body["code"] != "INTERNAL_ERROR" {
		t.Errorf("code = %q", body["code"])
	}
}

func TestRepositoriesAndInstalled(t *testing.T) {
	srv := newTestServer(t, memory.NewArrayRepository())

	var repos struct {
		Repositories []repoInfo `json:"repositories"`
		Types        []string   `json:"types"`
	}
	if code := get(t, srv.URL+"/repositories", &repos); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(repos.Repositories) != 1 || len(repos.Types) != 1 || repos.Types[0] != "package" {
		t.Errorf("repositories = %+v", repos)
	}

	var inst struct {
		Packages []repository.Package `json:"packages"`
	}
	if code := get(t, srv.URL+"/installed", &inst); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(inst.Packages) != 1 || inst.Packages[0].Name != "acme/installed" {
		t.Errorf("installed = %+v", inst)
	}
}

func TestInstalledWithoutLocal(t *testing.T) {
	srv := httptest.NewServer(New(repository.NewManager(repository.Env{}), nil))
	defer srv.Close()
	if code := get(t, srv.URL+"/installed", nil); code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	s := New(repository.NewManager(repository.Env{}), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	if err := <-done; err != nil {
		t.Errorf("ListenAndServe() = %v, want nil after cancel", err)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid constraint", rperrors.New(rperrors.ErrCodeInvalidConstraint, "x"), http.StatusBadRequest},
		{"package not found", rperrors.New(rperrors.ErrCodePackageNotFound, "x"), http.StatusNotFound},
		{"rate limited", fmt.Errorf("%w: %w", integrations.ErrNetwork, &rperrors.RateLimitedError{Host: "repo.example"}), http.StatusTooManyRequests},
		{"network sentinel", fmt.Errorf("repository x: %w", integrations.ErrNetwork), http.StatusBadGateway},
		{"deadline", fmt.Errorf("repository x: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err, rperrors.GetCode(tt.err)); got != tt.want {
				t.Errorf("statusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}
