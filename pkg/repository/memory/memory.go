// Package memory provides repositories that keep their packages in memory.
//
// [ArrayRepository] is read-only after construction and backs the "package"
// repository type, which declares packages inline in the config file:
//
//	[[repositories]]
//	type = "package"
//	package = [
//	    { name = "acme/tool", version = "1.2.0", dist = { type = "zip", url = "https://acme.example/tool-1.2.0.zip" } },
//	]
//
// [WritableRepository] adds mutation and is useful as a local repository in
// tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/matzehuels/repoman/pkg/constraint"
	"github.com/matzehuels/repoman/pkg/errors"
	"github.com/matzehuels/repoman/pkg/repository"
)

// Type is the repository type identifier served by [New].
const Type = "package"

// ArrayRepository serves a fixed list of packages in insertion order.
// It is safe for concurrent use.
type ArrayRepository struct {
	mu   sync.RWMutex
	pkgs []repository.Package
}

// NewArrayRepository returns a repository holding pkgs.
func NewArrayRepository(pkgs ...repository.Package) *ArrayRepository {
	return &ArrayRepository{pkgs: append([]repository.Package(nil), pkgs...)}
}

// FindPackage implements [repository.Repository].
func (r *ArrayRepository) FindPackage(ctx context.Context, name string, c constraint.Constraint) (*repository.Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return repository.First(r.pkgs, name, c), nil
}

// FindPackages implements [repository.Repository].
func (r *ArrayRepository) FindPackages(ctx context.Context, name string, c constraint.Constraint) ([]repository.Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return repository.Filter(r.pkgs, name, c), nil
}

// Packages returns a copy of every package.
func (r *ArrayRepository) Packages() []repository.Package {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]repository.Package(nil), r.pkgs...)
}

// Count returns the number of packages.
func (r *ArrayRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pkgs)
}

func (r *ArrayRepository) String() string {
	return fmt.Sprintf("package repository (%d packages)", r.Count())
}

// WritableRepository is an ArrayRepository whose contents can change.
type WritableRepository struct {
	ArrayRepository
}

// NewWritableRepository returns a writable repository holding pkgs.
func NewWritableRepository(pkgs ...repository.Package) *WritableRepository {
	return &WritableRepository{ArrayRepository{pkgs: append([]repository.Package(nil), pkgs...)}}
}

// AddPackage appends p, replacing any package with the same name and version.
func (r *WritableRepository) AddPackage(p repository.Package) error {
	if p.Name == "" {
		return errors.New(errors.ErrCodeInvalidPackage, "package name cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := index(r.pkgs, p.Name, p.Version); i >= 0 {
		r.pkgs[i] = p
		return nil
	}
	r.pkgs = append(r.pkgs, p)
	return nil
}

// RemovePackage deletes the package with the given name and version.
func (r *WritableRepository) RemovePackage(name, version string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := index(r.pkgs, name, version)
	if i < 0 {
		return errors.New(errors.ErrCodePackageNotFound, "package %s %s is not in the repository", name, version)
	}
	r.pkgs = append(r.pkgs[:i], r.pkgs[i+1:]...)
	return nil
}

// Reset replaces the entire package set.
func (r *WritableRepository) Reset(pkgs ...repository.Package) {
	r.mu.Lock()
	r.pkgs = append([]repository.Package(nil), pkgs...)
	r.mu.Unlock()
}

// HasPackage reports whether the name/version pair is present.
func (r *WritableRepository) HasPackage(name, version string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return index(r.pkgs, name, version) >= 0
}

func (r *WritableRepository) String() string {
	return fmt.Sprintf("memory repository (%d packages)", r.Count())
}

func index(pkgs []repository.Package, name, version string) int {
	for i, p := range pkgs {
		if strings.EqualFold(p.Name, name) && constraint.Normalize(p.Version) == constraint.Normalize(version) {
			return i
		}
	}
	return -1
}

// New builds an ArrayRepository from a "package" repository config. The
// "package" key holds one package table or a list of them; each needs a
// name and a version.
func New(cfg repository.Config, env repository.Env) (repository.Repository, error) {
	raw, ok := cfg["package"]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "package repository needs a \"package\" entry")
	}
	if _, single := raw.(map[string]any); single {
		raw = []any{raw}
	}

	var pkgs []repository.Package
	if err := (repository.Config{"package": raw}).Decode(&struct {
		Package *[]repository.Package `json:"package"`
	}{&pkgs}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "package repository")
	}

	for i, p := range pkgs {
		if p.Name == "" || p.Version == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "package[%d]: name and version are required", i)
		}
		pkgs[i].Name = strings.ToLower(p.Name)
	}
	env.Logger().Debug("Loaded inline packages", "count", len(pkgs))
	return NewArrayRepository(pkgs...), nil
}

// Class is the registration descriptor for the "package" type.
var Class = repository.NewClass(New)

var (
	_ repository.Repository         = (*ArrayRepository)(nil)
	_ repository.WritableRepository = (*WritableRepository)(nil)
)
