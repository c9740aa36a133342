package memory

import (
	"context"
	"testing"

	"github.com/matzehuels/repoman/pkg/constraint"
	"github.com/matzehuels/repoman/pkg/errors"
	"github.com/matzehuels/repoman/pkg/repository"
)

func TestArrayRepositoryFind(t *testing.T) {
	ctx := context.Background()
	r := NewArrayRepository(
		repository.Package{Name: "acme/a", Version: "1.0.0"},
		repository.Package{Name: "acme/a", Version: "1.5.0"},
		repository.Package{Name: "acme/b", Version: "2.0.0"},
	)

	p, err := r.FindPackage(ctx, "acme/a", constraint.MustParse("^1.2"))
	if err != nil || p == nil || p.Version != "1.5.0" {
		t.Errorf("FindPackage(^1.2) = %v, %v", p, err)
	}

	all, err := r.FindPackages(ctx, "ACME/A", nil)
	if err != nil || len(all) != 2 {
		t.Errorf("FindPackages(nil) = %v, %v", all, err)
	}

	p, err = r.FindPackage(ctx, "acme/c", nil)
	if err != nil || p != nil {
		t.Errorf("FindPackage(missing) = %v, %v", p, err)
	}
	if r.Count() != 3 {
		t.Errorf("Count() = %d", r.Count())
	}
}

func TestArrayRepositoryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewArrayRepository(repository.Package{Name: "acme/a", Version: "1.0.0"})
	if _, err := r.FindPackages(ctx, "acme/a", nil); err == nil {
		t.Error("FindPackages() with cancelled context should fail")
	}
}

func TestWritableRepository(t *testing.T) {
	r := NewWritableRepository()

	if err := r.AddPackage(repository.Package{Name: "acme/a", Version: "1.0.0", Description: "old"}); err != nil {
		t.Fatal(err)
	}
	if err := r.AddPackage(repository.Package{Name: "acme/a", Version: "v1.0.0", Description: "new"}); err != nil {
		t.Fatal(err)
	}
	if r.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 after replacing", r.Count())
	}
	if got := r.Packages()[0].Description; got != "new" {
		t.Errorf("Description = %q, want replaced value", got)
	}
	if !r.HasPackage("acme/a", "1.0.0") {
		t.Error("HasPackage() = false")
	}

	if err := r.AddPackage(repository.Package{}); !errors.Is(err, errors.ErrCodeInvalidPackage) {
		t.Errorf("AddPackage(empty) error = %v", err)
	}

	if err := r.RemovePackage("acme/a", "1.0.0"); err != nil {
		t.Fatalf("RemovePackage() error: %v", err)
	}
	if r.HasPackage("acme/a", "1.0.0") {
		t.Error("package still present after removal")
	}
	if err := r.RemovePackage("acme/a", "1.0.0"); !errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("RemovePackage(missing) error = %v", err)
	}
}

func TestPackagesIsCopy(t *testing.T) {
	r := NewArrayRepository(repository.Package{Name: "acme/a", Version: "1.0.0"})
	pkgs := r.Packages()
	pkgs[0].Name = "changed"
	if r.Packages()[0].Name != "acme/a" {
		t.Error("Packages() exposes internal slice")
	}
}

func TestNewFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     repository.Config
		want    int
		wantErr bool
	}{
		{
			name: "list",
			cfg: repository.Config{"type": "package", "package": []map[string]any{
				{"name": "Acme/Tool", "version": "1.2.0", "dist": map[string]any{"type": "zip", "url": "https://acme.example/t.zip"}},
				{"name": "acme/tool", "version": "1.3.0"},
			}},
			want: 2,
		},
		{
			name: "single table",
			cfg:  repository.Config{"package": map[string]any{"name": "acme/tool", "version": "1.0.0"}},
			want: 1,
		},
		{name: "missing key", cfg: repository.Config{"type": "package"}, wantErr: true},
		{name: "missing version", cfg: repository.Config{"package": map[string]any{"name": "acme/tool"}}, wantErr: true},
		{name: "wrong shape", cfg: repository.Config{"package": "acme/tool"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.cfg, repository.Env{})
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidConfig) {
					t.Errorf("New() error = %v, want INVALID_CONFIG", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			arr := r.(*ArrayRepository)
			if arr.Count() != tt.want {
				t.Errorf("Count() = %d, want %d", arr.Count(), tt.want)
			}
			if arr.Packages()[0].Name != "acme/tool" {
				t.Errorf("name not normalized: %q", arr.Packages()[0].Name)
			}
		})
	}
}

func TestClassThroughManager(t *testing.T) {
	m := repository.NewManager(repository.Env{})
	m.SetRepositoryClass(Type, Class)

	r, err := m.CreateRepository(context.Background(), Type, repository.Config{
		"package": map[string]any{"name": "acme/tool", "version": "1.0.0"},
	})
	if err != nil {
		t.Fatal(err)
	}
	m.AddRepository(r)

	p, err := m.FindPackage(context.Background(), "acme/tool", constraint.Exact("1.0.0"))
	if err != nil || p == nil {
		t.Errorf("FindPackage() = %v, %v", p, err)
	}
}
