package path

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/repoman/pkg/constraint"
	"github.com/matzehuels/repoman/pkg/errors"
	"github.com/matzehuels/repoman/pkg/repository"
)

func writeManifest(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "composer.json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindGlob(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "packages", "tool"), `{"name":"Acme/Tool","version":"1.2.0"}`)
	writeManifest(t, filepath.Join(root, "packages", "lib"), `{"name":"acme/lib"}`)
	writeManifest(t, filepath.Join(root, "packages", "nested", "extra"), `{"name":"acme/extra"}`)
	os.MkdirAll(filepath.Join(root, "packages", "empty"), 0o755)

	r, err := New(repository.Config{
		"url": filepath.Join(root, "packages", "*"),
		"options": map[string]any{
			"versions": map[string]any{"acme/lib": "0.3.0"},
		},
	}, repository.Env{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx := context.Background()

	p, err := r.FindPackage(ctx, "acme/tool", constraint.MustParse("^1.0"))
	if err != nil || p == nil {
		t.Fatalf("FindPackage(acme/tool) = %v, %v", p, err)
	}
	if p.Dist == nil || p.Dist.Type != "path" || filepath.Base(p.Dist.URL) != "tool" {
		t.Errorf("dist = %+v", p.Dist)
	}

	p, _ = r.FindPackage(ctx, "acme/lib", nil)
	if p == nil || p.Version != "0.3.0" {
		t.Errorf("acme/lib version = %v, want options.versions value", p)
	}

	// Single-level glob does not descend into nested/extra.
	if p, _ := r.FindPackage(ctx, "acme/extra", nil); p != nil {
		t.Errorf("acme/extra matched by single-level glob: %v", p)
	}

	all, err := r.(*Repository).Packages(ctx)
	if err != nil || len(all) != 2 {
		t.Errorf("Packages() = %v, %v", all, err)
	}
}

func TestFindDoubleStar(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "a", "b", "c"), `{"name":"acme/deep"}`)

	r, err := New(repository.Config{"url": filepath.Join(root, "**")}, repository.Env{})
	if err != nil {
		t.Fatal(err)
	}
	p, err := r.FindPackage(context.Background(), "acme/deep", constraint.Exact(DefaultVersion))
	if err != nil || p == nil {
		t.Errorf("FindPackage(acme/deep) = %v, %v", p, err)
	}
}

func TestNewInvalidConfig(t *testing.T) {
	if _, err := New(repository.Config{}, repository.Env{}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("New(no url) error = %v", err)
	}
	if _, err := New(repository.Config{"url": "packages/[a"}, repository.Env{}); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("New(bad glob) error = %v", err)
	}
}

func TestBadManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "broken"), `{"name":`)

	r, _ := New(repository.Config{"url": filepath.Join(root, "*")}, repository.Env{})
	_, err := r.FindPackages(context.Background(), "acme/x", nil)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("FindPackages() error = %v, want INVALID_INPUT", err)
	}
}

func TestMissingName(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "anon"), `{"description":"no name"}`)

	r, _ := New(repository.Config{"url": filepath.Join(root, "*")}, repository.Env{})
	_, err := r.FindPackages(context.Background(), "acme/x", nil)
	if !errors.Is(err, errors.ErrCodeInvalidPackage) {
		t.Errorf("FindPackages() error = %v, want INVALID_PACKAGE", err)
	}
}
