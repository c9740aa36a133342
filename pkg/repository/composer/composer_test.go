package composer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/repoman/pkg/cache"
	"github.com/matzehuels/repoman/pkg/constraint"
	rperrors "github.com/matzehuels/repoman/pkg/errors"
	"github.com/matzehuels/repoman/pkg/events"
	"github.com/matzehuels/repoman/pkg/integrations"
	"github.com/matzehuels/repoman/pkg/repository"
)

const doc = `{"minified":"composer/2.0","packages":{"acme/logger":[
  {"name":"acme/logger","version":"2.1.0","require":{"psr/log":"^3.0"}},
  {"version":"2.0.0"},
  {"version":"1.4.2"}
]}}`

func newFetcher(t *testing.T) (*integrations.Client, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/p2/acme/logger.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(doc))
	}))
	t.Cleanup(srv.Close)

	f := integrations.NewClient(cache.NewNullCache(), "http", time.Hour, nil)
	f.SetHTTPClient(srv.Client())
	return f, srv.URL
}

func TestNewRequiresFetcher(t *testing.T) {
	_, err := New(repository.Config{"url": "https://example.org"}, repository.Env{})
	if !rperrors.Is(err, rperrors.ErrCodeInvalidConfig) {
		t.Errorf("New() error = %v, want INVALID_CONFIG", err)
	}
}

func TestFind(t *testing.T) {
	fetcher, url := newFetcher(t)
	r, err := New(repository.Config{"url": url}, repository.Env{Fetcher: fetcher})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx := context.Background()

	p, err := r.FindPackage(ctx, "acme/logger", constraint.MustParse("^2.0"))
	if err != nil || p == nil || p.Version != "2.1.0" {
		t.Errorf("FindPackage(^2.0) = %v, %v", p, err)
	}

	all, err := r.FindPackages(ctx, "acme/logger", constraint.MustParse("<2.1"))
	if err != nil || len(all) != 2 {
		t.Errorf("FindPackages(<2.1) = %v, %v", all, err)
	}
	// Inherited from the first minified entry.
	if len(all) > 0 && all[0].Require["psr/log"] != "^3.0" {
		t.Errorf("require not inherited: %v", all[0].Require)
	}
}

func TestMissingPackageIsNoResult(t *testing.T) {
	fetcher, url := newFetcher(t)
	r, _ := New(repository.Config{"url": url}, repository.Env{Fetcher: fetcher})

	p, err := r.FindPackage(context.Background(), "acme/missing", nil)
	if err != nil || p != nil {
		t.Errorf("FindPackage(missing) = %v, %v; want nil, nil", p, err)
	}
	all, err := r.FindPackages(context.Background(), "acme/missing", nil)
	if err != nil || len(all) != 0 {
		t.Errorf("FindPackages(missing) = %v, %v", all, err)
	}
}

func TestFetchEvents(t *testing.T) {
	fetcher, url := newFetcher(t)
	bus := events.NewBus()
	var names []string
	record := func(_ context.Context, e events.Event) error {
		names = append(names, e.Name)
		return nil
	}
	bus.On(events.PreFetch, record)
	bus.On(events.PostFetch, record)

	r, _ := New(repository.Config{"url": url}, repository.Env{Fetcher: fetcher, Dispatcher: bus})
	if _, err := r.FindPackages(context.Background(), "acme/logger", nil); err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != events.PreFetch || names[1] != events.PostFetch {
		t.Errorf("events = %v", names)
	}
}

func TestPreFetchListenerAborts(t *testing.T) {
	fetcher, url := newFetcher(t)
	bus := events.NewBus()
	bus.On(events.PreFetch, func(context.Context, events.Event) error {
		return rperrors.New(rperrors.ErrCodeUnsupported, "offline")
	})

	r, _ := New(repository.Config{"url": url}, repository.Env{Fetcher: fetcher, Dispatcher: bus})
	if _, err := r.FindPackage(context.Background(), "acme/logger", nil); !rperrors.Is(err, rperrors.ErrCodeUnsupported) {
		t.Errorf("FindPackage() error = %v, want listener error", err)
	}
}

func TestCreatedThroughManager(t *testing.T) {
	fetcher, url := newFetcher(t)
	m := repository.NewManager(repository.Env{Fetcher: fetcher})
	m.SetRepositoryClass(Type, Class)

	r, err := m.CreateRepository(context.Background(), Type, repository.Config{"type": Type, "url": url})
	if err != nil {
		t.Fatalf("CreateRepository() error: %v", err)
	}
	if got := r.(*Repository).URL(); got != url {
		t.Errorf("URL() = %q, want %q", got, url)
	}
}
