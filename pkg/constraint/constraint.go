// Package constraint provides the version predicates used to query
// repositories.
//
// A [Constraint] is opaque to the repository manager: repositories call
// [Constraint.Matches] for each candidate version and keep the ones that
// match. Three implementations ship with the package:
//
//   - [Any] matches every version, including dev branches
//   - [Exact] matches a single literal version
//   - semver ranges built by [Parse] ("^1.2", ">=2.0 <3.0", "~1.4 || ^2")
package constraint

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/repoman/pkg/errors"
)

// Constraint is a version predicate.
type Constraint interface {
	// Matches reports whether version satisfies the constraint.
	Matches(version string) bool
	// String returns the constraint in its textual form.
	String() string
}

// Any returns a constraint that matches every version.
func Any() Constraint { return anyConstraint{} }

type anyConstraint struct{}

func (anyConstraint) Matches(string) bool { return true }
func (anyConstraint) String() string      { return "*" }

// Exact returns a constraint matching exactly one version. Comparison
// ignores a leading "v" and letter case, so "v1.0.0" matches "1.0.0".
func Exact(version string) Constraint {
	return exact{raw: version, norm: Normalize(version)}
}

type exact struct {
	raw  string
	norm string
}

func (e exact) Matches(version string) bool {
	if e.norm == Normalize(version) {
		return true
	}
	// 1.2 and 1.2.0 name the same release.
	want, err := semver.NewVersion(e.norm)
	if err != nil {
		return false
	}
	got, err := semver.NewVersion(Normalize(version))
	if err != nil {
		return false
	}
	return want.Equal(got)
}

func (e exact) String() string { return e.raw }

type rangeConstraint struct {
	raw string
	c   *semver.Constraints
}

func (r rangeConstraint) Matches(version string) bool {
	v, err := semver.NewVersion(Normalize(version))
	if err != nil {
		return false
	}
	return r.c.Check(v)
}

func (r rangeConstraint) String() string { return r.raw }

// Parse converts a textual constraint into a [Constraint].
//
// The empty string and "*" yield [Any]. Plain versions, including dev
// branches such as "dev-main", yield [Exact]. Anything containing range
// operators is parsed as a semantic version range; Composer's "|" and ","
// separators are accepted alongside "||" and spaces.
func Parse(s string) (Constraint, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || s == "*":
		return Any(), nil
	case strings.HasPrefix(strings.ToLower(s), "dev-"):
		return Exact(s), nil
	case !strings.ContainsAny(s, "^~<>=!*xX|, "):
		if _, err := semver.NewVersion(Normalize(s)); err == nil {
			return Exact(s), nil
		}
	}

	c, err := semver.NewConstraint(composerSyntax(s))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConstraint, err, "parse constraint %q", s)
	}
	return rangeConstraint{raw: s, c: c}, nil
}

// MustParse is like [Parse] but panics on error. Intended for tests and
// package-level variables.
func MustParse(s string) Constraint {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Normalize strips surrounding whitespace and a leading "v" and lowercases
// the version string.
func Normalize(version string) string {
	v := strings.ToLower(strings.TrimSpace(version))
	if len(v) > 1 && v[0] == 'v' && v[1] >= '0' && v[1] <= '9' {
		v = v[1:]
	}
	return v
}

// composerSyntax rewrites Composer-only separators into the semver library's
// dialect: a single "|" becomes "||".
func composerSyntax(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '|' {
			b.WriteString("||")
			if i+1 < len(s) && s[i+1] == '|' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Match reports whether version satisfies c. A nil constraint matches every
// version, so callers may pass nil instead of [Any].
func Match(c Constraint, version string) bool {
	return c == nil || c.Matches(version)
}
