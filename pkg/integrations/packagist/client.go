package packagist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/matzehuels/repoman/pkg/integrations"
	"github.com/matzehuels/repoman/pkg/repository"
)

// DefaultURL is the public Packagist repository.
const DefaultURL = "https://repo.packagist.org"

const (
	minifiedFormat = "composer/2.0"
	unsetMarker    = "__unset"
)

// Client provides access to a Packagist-compatible metadata API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
	dev     bool
}

// Option configures a Client.
type Option func(*Client)

// WithDevVersions makes Versions include branch versions ("dev-main").
func WithDevVersions() Option {
	return func(c *Client) { c.dev = true }
}

// NewClient returns a client for the repository at baseURL. An empty
// baseURL means [DefaultURL]. Cache entries are namespaced by baseURL and
// by whether branch versions are listed, so several repositories can share
// one backend.
func NewClient(base *integrations.Client, baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c := &Client{baseURL: baseURL}
	for _, opt := range opts {
		opt(c)
	}
	c.Client = base.Namespace(c.namespace())
	return c
}

func (c *Client) namespace() string {
	ns := "packagist:" + c.baseURL
	if c.dev {
		ns += "#dev"
	}
	return ns
}

// BaseURL returns the repository root the client queries.
func (c *Client) BaseURL() string { return c.baseURL }

// Forget drops the cached metadata of pkg.
func (c *Client) Forget(ctx context.Context, pkg string) error {
	return c.Invalidate(ctx, integrations.NormalizePkgName(pkg))
}

// Versions returns every version of pkg the repository lists.
//
// The package name is normalized to lowercase. If refresh is true the
// cache is bypassed. A package the repository does not know yields an
// error matching [integrations.ErrNotFound].
func (c *Client) Versions(ctx context.Context, pkg string, refresh bool) ([]repository.Package, error) {
	pkg = integrations.NormalizePkgName(pkg)
	if !strings.Contains(pkg, "/") {
		return nil, fmt.Errorf("%w: %q is not a vendor/name package", integrations.ErrNotFound, pkg)
	}

	var versions []repository.Package
	err := c.Cached(ctx, pkg, refresh, &versions, func() error {
		stable, err := c.fetch(ctx, pkg, pkg)
		if err != nil {
			return err
		}
		versions = stable
		if !c.dev {
			return nil
		}
		dev, err := c.fetch(ctx, pkg, pkg+"~dev")
		switch {
		case errors.Is(err, integrations.ErrNotFound):
		case err != nil:
			return err
		default:
			versions = append(versions, dev...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return versions, nil
}

func (c *Client) fetch(ctx context.Context, pkg, file string) ([]repository.Package, error) {
	var data p2Response
	if err := c.Get(ctx, fmt.Sprintf("%s/p2/%s.json", c.baseURL, file), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: packagist package %s", err, pkg)
		}
		return nil, err
	}

	entries := data.Packages[pkg]
	if data.Minified == minifiedFormat {
		entries = expand(entries)
	}

	out := make([]repository.Package, 0, len(entries))
	for _, e := range entries {
		p, err := decodeVersion(e)
		if err != nil {
			return nil, fmt.Errorf("decode %s metadata: %w", pkg, err)
		}
		if p.Name == "" {
			p.Name = pkg
		}
		out = append(out, p)
	}
	return out, nil
}

type p2Response struct {
	Minified string                                  `json:"minified"`
	Packages map[string][]map[string]json.RawMessage `json:"packages"`
}

// expand undoes composer/2.0 minification. Each entry starts from a copy of
// the previous expanded entry; "__unset" deletes the inherited key.
func expand(entries []map[string]json.RawMessage) []map[string]json.RawMessage {
	out := make([]map[string]json.RawMessage, 0, len(entries))
	var prev map[string]json.RawMessage
	for _, e := range entries {
		cur := make(map[string]json.RawMessage, len(prev)+len(e))
		maps.Copy(cur, prev)
		for k, v := range e {
			if isUnset(v) {
				delete(cur, k)
				continue
			}
			cur[k] = v
		}
		out = append(out, cur)
		prev = cur
	}
	return out
}

func isUnset(v json.RawMessage) bool {
	var s string
	return json.Unmarshal(v, &s) == nil && s == unsetMarker
}

// mapFields are objects in Composer's schema that PHP serializes as [] when
// empty.
var mapFields = []string{"require", "require-dev", "conflict", "replace", "provide", "suggest"}

func decodeVersion(e map[string]json.RawMessage) (repository.Package, error) {
	for _, k := range mapFields {
		if v, ok := e[k]; ok && !isObject(v) {
			delete(e, k)
		}
	}
	data, err := json.Marshal(e)
	if err != nil {
		return repository.Package{}, err
	}
	var p repository.Package
	err = json.Unmarshal(data, &p)
	return p, err
}

func isObject(v json.RawMessage) bool {
	s := strings.TrimSpace(string(v))
	return strings.HasPrefix(s, "{")
}
