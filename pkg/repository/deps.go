package repository

import (
	"slices"
	"strings"
)

// Dependencies returns the sorted names of the packages p requires,
// excluding platform requirements: php, PHP extensions (ext-*), system
// libraries (lib-*) and Composer's own API packages.
func (p Package) Dependencies() []string {
	var deps []string
	for name := range p.Require {
		if !IsPlatform(name) {
			deps = append(deps, strings.ToLower(name))
		}
	}
	slices.Sort(deps)
	return deps
}

// IsPlatform reports whether name is a platform requirement rather than an
// installable package.
func IsPlatform(name string) bool {
	ln := strings.ToLower(name)
	switch {
	case ln == "php" || ln == "php-64bit" || ln == "hhvm":
		return true
	case ln == "composer" || ln == "composer-plugin-api" || ln == "composer-runtime-api":
		return true
	case strings.HasPrefix(ln, "ext-") || strings.HasPrefix(ln, "lib-"):
		return true
	}
	return !strings.Contains(ln, "/")
}
