// Package composer implements the "composer" repository type: a remote
// repository serving the Packagist p2 metadata API.
//
//	[[repositories]]
//	type = "composer"
//	url = "https://repo.packagist.org"
//	dev = true          # include branch versions
//
// The repository needs the manager's network-fetch client, so its [Class]
// is registered with AcceptsFetcher set. When an event dispatcher is
// present, every remote lookup is bracketed by "pre-fetch" and
// "post-fetch" events.
package composer

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/repoman/pkg/constraint"
	"github.com/matzehuels/repoman/pkg/events"
	rperrors "github.com/matzehuels/repoman/pkg/errors"
	"github.com/matzehuels/repoman/pkg/integrations"
	"github.com/matzehuels/repoman/pkg/integrations/packagist"
	"github.com/matzehuels/repoman/pkg/repository"
)

// Type is the repository type identifier served by [New].
const Type = "composer"

// Options is the decoded repository configuration.
type Options struct {
	URL string `json:"url"`
	Dev bool   `json:"dev"`
	// Refresh bypasses the response cache.
	Refresh bool `json:"refresh"`
}

// Repository queries a remote Composer repository.
type Repository struct {
	client     *packagist.Client
	dispatcher events.Dispatcher
	logger     *log.Logger
	refresh    bool
}

// New builds a Repository from cfg. It fails if env carries no fetch client.
func New(cfg repository.Config, env repository.Env) (repository.Repository, error) {
	if env.Fetcher == nil {
		return nil, rperrors.New(rperrors.ErrCodeInvalidConfig, "composer repository needs a network-fetch client")
	}

	var opts Options
	if err := cfg.Decode(&opts); err != nil {
		return nil, rperrors.Wrap(rperrors.ErrCodeInvalidConfig, err, "composer repository")
	}

	var popts []packagist.Option
	if opts.Dev {
		popts = append(popts, packagist.WithDevVersions())
	}
	return &Repository{
		client:     packagist.NewClient(env.Fetcher, opts.URL, popts...),
		dispatcher: env.Dispatcher,
		logger:     env.Logger(),
		refresh:    opts.Refresh,
	}, nil
}

// Class is the registration descriptor for the "composer" type.
var Class = repository.NewFetchingClass(New)

// URL returns the repository root.
func (r *Repository) URL() string { return r.client.BaseURL() }

func (r *Repository) String() string { return "composer repository " + r.URL() }

// FindPackage returns the first listed version of name matching c. The
// server lists versions newest first.
func (r *Repository) FindPackage(ctx context.Context, name string, c constraint.Constraint) (*repository.Package, error) {
	versions, err := r.versions(ctx, name)
	if err != nil {
		return nil, err
	}
	return repository.First(versions, name, c), nil
}

// FindPackages returns every listed version of name matching c.
func (r *Repository) FindPackages(ctx context.Context, name string, c constraint.Constraint) ([]repository.Package, error) {
	versions, err := r.versions(ctx, name)
	if err != nil {
		return nil, err
	}
	return repository.Filter(versions, name, c), nil
}

// Forget drops name's cached metadata so the next lookup refetches it.
func (r *Repository) Forget(ctx context.Context, name string) error {
	return r.client.Forget(ctx, name)
}

func (r *Repository) versions(ctx context.Context, name string) ([]repository.Package, error) {
	payload := map[string]any{"repository": r.URL(), "package": name}
	if err := events.Dispatch(ctx, r.dispatcher, events.PreFetch, payload); err != nil {
		return nil, err
	}

	start := time.Now()
	versions, err := r.client.Versions(ctx, name, r.refresh)
	if errors.Is(err, integrations.ErrNotFound) {
		r.logger.Debug("Package not in repository", "repo", r.URL(), "package", name)
		versions, err = nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Fetched versions", "repo", r.URL(), "package", name, "count", len(versions), "took", time.Since(start))

	payload = map[string]any{"repository": r.URL(), "package": name, "versions": len(versions)}
	if err := events.Dispatch(ctx, r.dispatcher, events.PostFetch, payload); err != nil {
		return nil, err
	}
	return versions, nil
}
