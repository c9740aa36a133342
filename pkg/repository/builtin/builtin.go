// Package builtin registers the repository types that ship with repoman.
package builtin

import (
	"github.com/matzehuels/repoman/pkg/repository"
	"github.com/matzehuels/repoman/pkg/repository/composer"
	"github.com/matzehuels/repoman/pkg/repository/memory"
	pathrepo "github.com/matzehuels/repoman/pkg/repository/path"
)

// Classes returns the built-in type bindings keyed by type identifier.
func Classes() map[string]repository.Class {
	return map[string]repository.Class{
		composer.Type: composer.Class,
		memory.Type:   memory.Class,
		pathrepo.Type: pathrepo.Class,
	}
}

// Register binds every built-in type on m, replacing earlier bindings.
func Register(m *repository.Manager) {
	for typ, class := range Classes() {
		m.SetRepositoryClass(typ, class)
	}
}
