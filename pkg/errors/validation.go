package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// composerName matches the Composer "vendor/package" naming rule.
var composerName = regexp.MustCompile(`^[a-z0-9]([_.-]?[a-z0-9]+)*/[a-z0-9](([_.]|-{1,2})?[a-z0-9]+)*$`)

// ValidatePackageName validates a package name for safety and correctness.
// It rejects names that could be used for path traversal or injection attacks
// before they reach a repository implementation.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - Maximum length of 256 characters
//
// Use [ValidateComposerName] for the stricter vendor/package form.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateComposerName checks that name is a lowercase "vendor/package" pair.
func ValidateComposerName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}
	if !composerName.MatchString(name) {
		return New(ErrCodeInvalidPackage, "package name %q must be in vendor/package form", name)
	}
	return nil
}

// ValidateRepositoryType checks a repository type identifier.
// Types are short lowercase words such as "composer" or "path".
func ValidateRepositoryType(typ string) error {
	if typ == "" {
		return New(ErrCodeInvalidConfig, "repository type cannot be empty")
	}
	for _, r := range typ {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '-' && r != '_' {
			return New(ErrCodeInvalidConfig, "repository type %q contains invalid character %q", typ, r)
		}
	}
	return nil
}
