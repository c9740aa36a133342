package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/matzehuels/repoman/pkg/constraint"
	"github.com/matzehuels/repoman/pkg/events"
	"github.com/matzehuels/repoman/pkg/observability"
)

// Manager is the registry of repositories a package manager queries.
//
// The pool is append-only and its order is query precedence. The local
// repository lives in a separate slot and is never part of the pool unless
// the caller adds it explicitly. The zero value is not usable; call
// [NewManager].
type Manager struct {
	mu      sync.RWMutex
	repos   []Repository
	local   WritableRepository
	classes map[string]Class

	env     Env
	onError func(Repository, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithErrorHandler makes queries skip repositories that fail instead of
// aborting. fn receives each failing repository and its error.
func WithErrorHandler(fn func(Repository, error)) Option {
	return func(m *Manager) { m.onError = fn }
}

// NewManager returns an empty Manager that passes env to every repository
// it constructs. A nil env.IO is replaced with a discarding logger.
func NewManager(env Env, opts ...Option) *Manager {
	env.IO = env.Logger()
	m := &Manager{
		classes: make(map[string]Class),
		env:     env,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Env returns the collaborators the Manager was built with.
func (m *Manager) Env() Env { return m.env }

// FindPackage returns the first match from the pool in insertion order, or
// nil if no repository has one. Earlier repositories take precedence.
func (m *Manager) FindPackage(ctx context.Context, name string, c constraint.Constraint) (pkg *Package, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if pkg != nil {
			n = 1
		}
		observability.Manager().OnQuery(ctx, "find_package", name, n, time.Since(start), err)
	}()

	for _, r := range m.snapshot() {
		p, err := r.FindPackage(ctx, name, c)
		if err != nil {
			if err = m.fail(r, err); err != nil {
				return nil, err
			}
			continue
		}
		if p != nil {
			return p, nil
		}
	}
	return nil, nil
}

// FindPackages concatenates every repository's matches in registration
// order, then each repository's own order. Duplicates across repositories
// are kept. The result is never nil.
func (m *Manager) FindPackages(ctx context.Context, name string, c constraint.Constraint) (pkgs []Package, err error) {
	start := time.Now()
	defer func() {
		observability.Manager().OnQuery(ctx, "find_packages", name, len(pkgs), time.Since(start), err)
	}()

	out := []Package{}
	for _, r := range m.snapshot() {
		found, err := r.FindPackages(ctx, name, c)
		if err != nil {
			if err = m.fail(r, err); err != nil {
				return nil, err
			}
			continue
		}
		out = append(out, found...)
	}
	return out, nil
}

// AddRepository appends r to the pool. Adding the same repository twice
// yields duplicate query results.
func (m *Manager) AddRepository(r Repository) {
	m.mu.Lock()
	m.repos = append(m.repos, r)
	m.mu.Unlock()
	m.env.IO.Debug("Added repository", "repo", Describe(r))
}

// SetRepositoryClass binds typ to class, replacing any earlier binding.
// Nothing is constructed.
func (m *Manager) SetRepositoryClass(typ string, class Class) {
	m.mu.Lock()
	m.classes[typ] = class
	m.mu.Unlock()
	m.env.IO.Debug("Registered repository type", "type", typ, "fetcher", class.AcceptsFetcher)
}

// CreateRepository builds a repository of type typ from cfg. It fails with
// [*UnregisteredTypeError] if typ has no class. The class's factory is
// called exactly once and receives the network-fetch client only if the
// class accepts one. The result is not added to the pool.
func (m *Manager) CreateRepository(ctx context.Context, typ string, cfg Config) (repo Repository, err error) {
	defer func() { observability.Manager().OnCreate(ctx, typ, err) }()

	m.mu.RLock()
	class, ok := m.classes[typ]
	m.mu.RUnlock()
	if !ok || class.New == nil {
		return nil, &UnregisteredTypeError{Type: typ}
	}

	env := m.env
	if !class.AcceptsFetcher {
		env.Fetcher = nil
	}

	repo, err = class.New(cfg, env)
	if err != nil {
		return nil, fmt.Errorf("create %s repository: %w", typ, err)
	}
	m.env.IO.Debug("Created repository", "type", typ, "repo", Describe(repo))

	payload := map[string]any{"type": typ, "repository": Describe(repo)}
	if err := events.Dispatch(ctx, m.env.Dispatcher, events.RepositoryCreated, payload); err != nil {
		m.env.IO.Warn("repository-created listener failed", "type", typ, "error", err)
	}
	return repo, nil
}

// Repositories returns a copy of the pool. The local repository is not
// included unless it was added with AddRepository.
func (m *Manager) Repositories() []Repository {
	return m.snapshot()
}

// SetLocalRepository replaces the local repository. The pool is untouched.
func (m *Manager) SetLocalRepository(r WritableRepository) {
	m.mu.Lock()
	m.local = r
	m.mu.Unlock()
}

// LocalRepository returns the last repository passed to
// SetLocalRepository, or nil.
func (m *Manager) LocalRepository() WritableRepository {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.local
}

// Types returns the registered type identifiers in sorted order.
func (m *Manager) Types() []string {
	m.mu.RLock()
	types := make([]string, 0, len(m.classes))
	for t := range m.classes {
		types = append(types, t)
	}
	m.mu.RUnlock()
	sort.Strings(types)
	return types
}

func (m *Manager) snapshot() []Repository {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.repos)
}

// fail applies the error policy to a failing repository. It returns the
// error to abort with, or nil to skip the repository.
func (m *Manager) fail(r Repository, err error) error {
	if m.onError == nil {
		return &QueryError{Repo: Describe(r), Err: err}
	}
	m.env.IO.Debug("Skipping failed repository", "repo", Describe(r), "error", err)
	m.onError(r, err)
	return nil
}
