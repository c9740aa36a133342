package errors

import (
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid composer", "symfony/console", false},
		{"valid with dash", "my-vendor/my-package", false},
		{"valid platform", "php", false},
		{"valid extension", "ext-json", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal ..", "foo/../bar", true},
		{"path traversal //", "foo//bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateComposerName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "monolog/monolog", false},
		{"dots and dashes", "doctrine/dbal-2.x", false},
		{"double dash", "acme/foo--bar", false},

		{"no vendor", "monolog", true},
		{"uppercase", "Monolog/Monolog", true},
		{"trailing slash", "monolog/", true},
		{"three segments", "a/b/c", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateComposerName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateComposerName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPackage) {
				t.Errorf("ValidateComposerName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPackage)
			}
		})
	}
}

func TestValidateRepositoryType(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"composer", false},
		{"path", false},
		{"git-bitbucket", false},
		{"", true},
		{"Composer", true},
		{"vcs repo", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateRepositoryType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRepositoryType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
