// Package path implements the "path" repository type: packages read from
// composer.json files in local directories.
//
//	[[repositories]]
//	type = "path"
//	url = "packages/**"
//	options = { versions = { "acme/tool" = "1.4.0" } }
//
// The url is a doublestar glob; every matched directory holding a
// composer.json contributes one package. The version comes from the
// composer.json "version" field, then options.versions, then "dev-main".
package path

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/repoman/pkg/constraint"
	"github.com/matzehuels/repoman/pkg/errors"
	"github.com/matzehuels/repoman/pkg/repository"
)

const (
	// Type is the repository type identifier served by [New].
	Type = "path"

	// DefaultVersion is assigned to packages with no declared version.
	DefaultVersion = "dev-main"

	manifest = "composer.json"
)

// Options is the decoded repository configuration.
type Options struct {
	URL     string `json:"url"`
	Options struct {
		Versions map[string]string `json:"versions"`
	} `json:"options"`
}

// Repository serves packages found under a glob. Directories are scanned
// once, on the first query.
type Repository struct {
	pattern  string
	versions map[string]string
	logger   *log.Logger

	once sync.Once
	pkgs []repository.Package
	err  error
}

// New builds a Repository from cfg.
func New(cfg repository.Config, env repository.Env) (repository.Repository, error) {
	var opts Options
	if err := cfg.Decode(&opts); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "path repository")
	}
	if opts.URL == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "path repository needs a url")
	}
	if !doublestar.ValidatePathPattern(opts.URL) {
		return nil, errors.New(errors.ErrCodeInvalidPath, "invalid path pattern %q", opts.URL)
	}

	versions := make(map[string]string, len(opts.Options.Versions))
	for name, v := range opts.Options.Versions {
		versions[strings.ToLower(name)] = v
	}
	return &Repository{
		pattern:  filepath.Clean(opts.URL),
		versions: versions,
		logger:   env.Logger(),
	}, nil
}

// Class is the registration descriptor for the "path" type.
var Class = repository.NewClass(New)

func (r *Repository) String() string { return "path repository " + r.pattern }

// FindPackage implements [repository.Repository].
func (r *Repository) FindPackage(ctx context.Context, name string, c constraint.Constraint) (*repository.Package, error) {
	pkgs, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return repository.First(pkgs, name, c), nil
}

// FindPackages implements [repository.Repository].
func (r *Repository) FindPackages(ctx context.Context, name string, c constraint.Constraint) ([]repository.Package, error) {
	pkgs, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return repository.Filter(pkgs, name, c), nil
}

// Packages returns every package found under the pattern.
func (r *Repository) Packages(ctx context.Context) ([]repository.Package, error) {
	pkgs, err := r.load(ctx)
	return append([]repository.Package(nil), pkgs...), err
}

func (r *Repository) load(ctx context.Context) ([]repository.Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.once.Do(func() { r.pkgs, r.err = r.scan() })
	return r.pkgs, r.err
}

func (r *Repository) scan() ([]repository.Package, error) {
	pattern := r.pattern
	if filepath.Base(pattern) != manifest {
		pattern = filepath.Join(pattern, manifest)
	}
	files, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "glob %s", pattern)
	}

	var pkgs []repository.Package
	for _, file := range files {
		p, err := r.read(file)
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, p)
	}
	r.logger.Debug("Scanned path repository", "pattern", r.pattern, "packages", len(pkgs))
	return pkgs, nil
}

func (r *Repository) read(file string) (repository.Package, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return repository.Package{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", file)
	}
	var p repository.Package
	if err := json.Unmarshal(data, &p); err != nil {
		return repository.Package{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", file)
	}
	if p.Name == "" {
		return repository.Package{}, errors.New(errors.ErrCodeInvalidPackage, "%s has no name", file)
	}
	p.Name = strings.ToLower(p.Name)

	if p.Version == "" {
		p.Version = r.versions[p.Name]
	}
	if p.Version == "" {
		p.Version = DefaultVersion
	}

	dir := filepath.Dir(file)
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	p.Dist = &repository.Dist{Type: "path", URL: abs}
	return p, nil
}

var _ repository.Repository = (*Repository)(nil)
