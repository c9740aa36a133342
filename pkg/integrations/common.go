package integrations

import (
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/repoman/pkg/buildinfo"
	"github.com/matzehuels/repoman/pkg/cache"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a package or resource doesn't exist in the registry.
	ErrNotFound = cache.ErrNotFound

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = cache.ErrNetwork
)

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// UserAgent is sent with every request unless overridden by headers.
func UserAgent() string {
	return "repoman/" + buildinfo.Version
}

// NormalizePkgName converts a package name to its canonical form: trimmed
// and lowercased. Composer package names are case-insensitive.
func NormalizePkgName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// sshHosts rewrites the SSH and git:// forms of well-known forges to HTTPS.
var sshHosts = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git://github.com/", "https://github.com/",
	"git@gitlab.com:", "https://gitlab.com/",
	"git@bitbucket.org:", "https://bitbucket.org/",
)

// SourceWebURL returns the browsable address of a package's VCS source,
// e.g. "git@github.com:acme/tool.git" becomes "https://github.com/acme/tool".
// It returns "" when raw has no web form (local paths, svn, unknown SSH hosts).
func SourceWebURL(raw string) string {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "git+")
	s = sshHosts.Replace(s)
	if !strings.HasPrefix(s, "https://") && !strings.HasPrefix(s, "http://") {
		return ""
	}
	return strings.TrimSuffix(s, ".git")
}
