package repository

import (
	"context"
	"fmt"

	"github.com/matzehuels/repoman/pkg/constraint"
)

// Repository is a queryable source of package metadata.
//
// A nil constraint matches every version. Implementations decide how to
// honor ctx; a missing package is a nil result, not an error.
type Repository interface {
	// FindPackage returns the first package named name that satisfies c,
	// or nil if there is none.
	FindPackage(ctx context.Context, name string, c constraint.Constraint) (*Package, error)

	// FindPackages returns every package named name that satisfies c in
	// the repository's own order. The result may be empty.
	FindPackages(ctx context.Context, name string, c constraint.Constraint) ([]Package, error)
}

// WritableRepository is a Repository whose package set can be changed.
// The local repository of installed packages is the canonical example.
type WritableRepository interface {
	Repository

	// AddPackage records p. Adding a name/version pair already present
	// replaces the stored package.
	AddPackage(p Package) error

	// RemovePackage deletes the package with the given name and version.
	// It returns an error wrapping errors.ErrCodePackageNotFound if absent.
	RemovePackage(name, version string) error

	// HasPackage reports whether the name/version pair is present.
	HasPackage(name, version string) bool

	// Packages returns a copy of every stored package.
	Packages() []Package
}

// Package is one version of a package as described by Composer metadata.
// The JSON tags follow Composer's schema, so the same struct decodes
// composer.json, Packagist p2 entries and installed.json.
type Package struct {
	Name        string            `json:"name"`
	Version     string            `json:"version,omitempty"`
	Type        string            `json:"type,omitempty"`
	Description string            `json:"description,omitempty"`
	Homepage    string            `json:"homepage,omitempty"`
	License     Licenses          `json:"license,omitempty"`
	Authors     []Author          `json:"authors,omitempty"`
	Source      *Source           `json:"source,omitempty"`
	Dist        *Dist             `json:"dist,omitempty"`
	Require     map[string]string `json:"require,omitempty"`
	RequireDev  map[string]string `json:"require-dev,omitempty"`
	Time        string            `json:"time,omitempty"`
}

// String returns "name version".
func (p Package) String() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + " " + p.Version
}

// Author is a package author entry.
type Author struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Homepage string `json:"homepage,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Source locates the package's version-control checkout.
type Source struct {
	Type      string `json:"type"`
	URL       string `json:"url"`
	Reference string `json:"reference,omitempty"`
}

// Dist locates the package's distributable archive.
type Dist struct {
	Type      string `json:"type"`
	URL       string `json:"url"`
	Reference string `json:"reference,omitempty"`
	Shasum    string `json:"shasum,omitempty"`
}

// Describe names a repository for error messages and logs: its String
// method when it has one, its Go type otherwise.
func Describe(r Repository) string {
	if s, ok := r.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", r)
}
