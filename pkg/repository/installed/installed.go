// Package installed implements the local repository: the packages
// currently installed in a project, persisted as Composer's installed.json.
//
// The file is read in either layout Composer has used:
//
//	{"packages": [...], "dev": true, "dev-package-names": ["phpunit/phpunit"]}
//	[...]
//
// and always written in the first.
package installed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/repoman/pkg/errors"
	"github.com/matzehuels/repoman/pkg/repository"
	"github.com/matzehuels/repoman/pkg/repository/memory"
)

// Repository is a writable repository backed by an installed.json file.
// Changes stay in memory until [Repository.Write]. Safe for concurrent use.
type Repository struct {
	*memory.WritableRepository

	path   string
	logger *log.Logger

	mu       sync.Mutex
	dev      bool
	devNames []string
}

type document struct {
	Packages        []repository.Package `json:"packages"`
	Dev             bool                 `json:"dev"`
	DevPackageNames []string             `json:"dev-package-names"`
}

// New returns an empty repository that reads and writes path. Call
// [Repository.Load] to read the existing file.
func New(path string, logger *log.Logger) *Repository {
	return &Repository{
		WritableRepository: memory.NewWritableRepository(),
		path:               path,
		logger:             repository.Env{IO: logger}.Logger(),
		dev:                true,
	}
}

// Open is New followed by Load.
func Open(path string, logger *log.Logger) (*Repository, error) {
	r := New(path, logger)
	if err := r.Load(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the backing file.
func (r *Repository) Path() string { return r.path }

// Load replaces the in-memory state with the file's contents. A missing
// file leaves the repository empty.
func (r *Repository) Load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		r.logger.Debug("No installed.json, starting empty", "path", r.path)
		r.Reset()
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", r.path)
	}

	doc, err := decode(data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", r.path)
	}

	r.Reset(doc.Packages...)
	r.mu.Lock()
	r.dev = doc.Dev
	r.devNames = doc.DevPackageNames
	r.mu.Unlock()
	r.logger.Debug("Loaded installed packages", "path", r.path, "count", len(doc.Packages))
	return nil
}

func decode(data []byte) (document, error) {
	var doc document
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		err := json.Unmarshal(data, &doc.Packages)
		doc.Dev = true
		return doc, err
	}
	err := json.Unmarshal(data, &doc)
	return doc, err
}

// Write persists the repository. The file is replaced atomically.
func (r *Repository) Write(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pkgs := r.Packages()
	r.mu.Lock()
	doc := document{
		Packages:        pkgs,
		Dev:             r.dev,
		DevPackageNames: r.liveDevNames(pkgs),
	}
	r.mu.Unlock()
	if doc.Packages == nil {
		doc.Packages = []repository.Package{}
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".installed-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	r.logger.Debug("Wrote installed packages", "path", r.path, "count", len(doc.Packages))
	return nil
}

// MarkDev records name as a dev-only requirement.
func (r *Repository) MarkDev(name string) {
	name = strings.ToLower(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if !slices.Contains(r.devNames, name) {
		r.devNames = append(r.devNames, name)
		slices.Sort(r.devNames)
	}
}

// IsDev reports whether name was installed as a dev requirement.
func (r *Repository) IsDev(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.devNames, strings.ToLower(name))
}

// DevMode reports whether dev requirements were installed.
func (r *Repository) DevMode() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dev
}

// SetDevMode records whether dev requirements are installed.
func (r *Repository) SetDevMode(dev bool) {
	r.mu.Lock()
	r.dev = dev
	r.mu.Unlock()
}

// liveDevNames drops dev names whose package is no longer installed.
// Callers hold r.mu.
func (r *Repository) liveDevNames(pkgs []repository.Package) []string {
	names := []string{}
	for _, n := range r.devNames {
		if repository.First(pkgs, n, nil) != nil {
			names = append(names, n)
		}
	}
	return names
}

func (r *Repository) String() string {
	return fmt.Sprintf("installed repository %s", r.path)
}

var _ repository.WritableRepository = (*Repository)(nil)
