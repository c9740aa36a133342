package repository

import (
	"strings"

	"github.com/matzehuels/repoman/pkg/constraint"
)

// Filter returns the packages in pkgs named name (case-insensitively)
// whose version satisfies c, preserving order. The result is never nil.
func Filter(pkgs []Package, name string, c constraint.Constraint) []Package {
	out := []Package{}
	for _, p := range pkgs {
		if strings.EqualFold(p.Name, name) && constraint.Match(c, p.Version) {
			out = append(out, p)
		}
	}
	return out
}

// First returns a pointer to a copy of the first package Filter would
// return, or nil.
func First(pkgs []Package, name string, c constraint.Constraint) *Package {
	for _, p := range pkgs {
		if strings.EqualFold(p.Name, name) && constraint.Match(c, p.Version) {
			return &p
		}
	}
	return nil
}
