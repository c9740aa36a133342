package cli

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/repoman/pkg/cache"
)

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg-cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirHome(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheClearAndPath(t *testing.T) {
	env := newTestEnv(t, "")
	dir := filepath.Join(env.cacheHome, appName)

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := fc.Set(context.Background(), k, []byte(`"x"`), time.Hour); err != nil {
			t.Fatal(err)
		}
	}
	fc.Close()

	out, err := env.run("cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", out, dir)
	}

	out, err = env.run("cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, "Cleared 3 cached entries") {
		t.Errorf("cache clear output = %q", out)
	}
}

func TestCacheClearExpired(t *testing.T) {
	env := newTestEnv(t, "")
	dir := filepath.Join(env.cacheHome, appName)

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := fc.Set(ctx, "live", []byte(`"x"`), time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(ctx, "stale", []byte(`"x"`), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	fc.Close()
	time.Sleep(5 * time.Millisecond)

	out, err := env.run("cache", "clear", "--expired")
	if err != nil {
		t.Fatalf("cache clear --expired: %v", err)
	}
	if !strings.Contains(out, "Cleared 1 expired entries") {
		t.Errorf("output = %q", out)
	}

	fc, err = cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer fc.Close()
	if _, ok, _ := fc.Get(ctx, "live"); !ok {
		t.Error("live entry was pruned")
	}
}

func TestCacheClearPackages(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/p2/acme/remote.json" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		w.Write([]byte(`{"packages":{"acme/remote":[{"name":"acme/remote","version":"3.0.0"}]}}`))
	}))
	defer srv.Close()

	env := newTestEnv(t, fmt.Sprintf(`
[[repositories]]
type = "composer"
url = %q
`, srv.URL))

	for range 2 {
		out, err := env.run("search", "acme/remote")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "3.0.0") {
			t.Fatalf("search output:\n%s", out)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("upstream hits = %d, want 1 (second search cached)", n)
	}

	out, err := env.run("cache", "clear", "acme/remote")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Dropped acme/remote from 1 repositories") {
		t.Errorf("cache clear output = %q", out)
	}

	if _, err := env.run("search", "acme/remote"); err != nil {
		t.Fatal(err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("upstream hits after clear = %d, want 2", n)
	}
}

func TestCacheClearPackagesWithoutRemotes(t *testing.T) {
	env := newTestEnv(t, "")
	out, err := env.run("cache", "clear", "acme/tool")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "nothing is cached") {
		t.Errorf("output = %q", out)
	}

	if _, err := env.run("cache", "clear", "not-a-package"); err == nil {
		t.Error("invalid package name accepted")
	}
}
