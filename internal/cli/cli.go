// Package cli implements the repoman command-line interface.
//
// # Commands
//
//   - search: List every version of a package across all repositories
//   - show: Print the first matching version and its metadata
//   - repos, types: Inspect the configured repositories and registered types
//   - installed: List the packages in the local repository
//   - serve: Expose the repository manager over HTTP
//   - cache: Manage the HTTP response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/repoman/pkg/buildinfo"
	"github.com/matzehuels/repoman/pkg/cache"
	"github.com/matzehuels/repoman/pkg/config"
	"github.com/matzehuels/repoman/pkg/events"
	"github.com/matzehuels/repoman/pkg/integrations"
	"github.com/matzehuels/repoman/pkg/observability"
	"github.com/matzehuels/repoman/pkg/repository"
	"github.com/matzehuels/repoman/pkg/repository/builtin"
	"github.com/matzehuels/repoman/pkg/repository/installed"
)

// appName is the application name used for directories and display.
const appName = "repoman"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	noCache    bool
	strict     bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "repoman queries the repositories a Composer project installs from",
		Long:          `repoman manages an ordered set of package repositories (Packagist, path and inline repositories) plus the local installed.json, and answers package queries against them.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "config file (default: $"+config.EnvConfig+", ./"+config.FileName+")")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.BoolVar(&c.noCache, "no-cache", false, "bypass the HTTP response cache")
	flags.BoolVar(&c.strict, "strict", false, "abort queries when any repository fails instead of skipping it")

	root.AddCommand(c.searchCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.reposCommand())
	root.AddCommand(c.typesCommand())
	root.AddCommand(c.installedCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Session - Manager Construction
// =============================================================================

// session is a Manager built from the config file plus the resources it owns.
type session struct {
	cfg     *config.Config
	manager *repository.Manager
	cache   cache.Cache
	stats   *observability.Stats
}

// Close releases the cache backend.
func (s *session) Close() error { return s.cache.Close() }

// loadConfig finds and reads the config file, falling back to defaults.
func (c *CLI) loadConfig() (*config.Config, error) {
	path := config.Discover(c.configPath)
	if path == "" {
		c.Logger.Debug("No config file, using defaults")
		return config.Default(), nil
	}
	c.Logger.Debug("Loading config", "path", path)
	return config.Load(path)
}

// openSession builds the Manager: built-in types, every configured
// repository in file order, and the local repository. Failing repositories
// are reported on the terminal.
func (c *CLI) openSession(ctx context.Context) (*session, error) {
	return c.newSession(ctx, false)
}

// skipHandler reports a repository skipped during a query. A server logs
// it; interactive commands print a warning.
func (c *CLI) skipHandler(serving bool) func(repository.Repository, error) {
	if serving {
		return func(r repository.Repository, err error) {
			c.Logger.Warn("Skipping failed repository", "repo", repository.Describe(r), "error", err)
		}
	}
	return func(r repository.Repository, err error) {
		printWarning("Skipping %s: %v", repository.Describe(r), err)
	}
}

func (c *CLI) newSession(ctx context.Context, serving bool) (*session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	cc, err := c.openCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	fetcher := integrations.NewClient(cc, "http", cfg.Cache.TTL.Duration, fetchHeaders(cfg))
	fetcher.SetTimeout(cfg.Fetch.Timeout.Duration)
	fetcher.SetKeyer(cfg.CacheOptions("").Keyer())

	bus := events.NewBus()
	logFetchEvents(bus, c.Logger)
	stats := installLogHooks(c.Logger)

	var opts []repository.Option
	if !c.strict {
		opts = append(opts, repository.WithErrorHandler(c.skipHandler(serving)))
	}
	m := repository.NewManager(repository.Env{
		IO:         c.Logger,
		Config:     cfg,
		Dispatcher: bus,
		Fetcher:    fetcher,
	}, opts...)
	builtin.Register(m)

	for i, rc := range cfg.Repositories {
		rcfg := repository.Config(rc)
		r, err := m.CreateRepository(ctx, rcfg.Type(), rcfg)
		if err != nil {
			cc.Close()
			return nil, fmt.Errorf("repositories[%d]: %w", i, err)
		}
		m.AddRepository(r)
	}

	local, err := installed.Open(cfg.Local.Path, c.Logger)
	if err != nil {
		cc.Close()
		return nil, err
	}
	m.SetLocalRepository(local)

	return &session{cfg: cfg, manager: m, cache: cc, stats: stats}, nil
}

func (c *CLI) openCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("No cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, cfg.CacheOptions(dir))
}

func fetchHeaders(cfg *config.Config) map[string]string {
	headers := maps.Clone(cfg.Fetch.Headers)
	if headers == nil {
		headers = make(map[string]string, 1)
	}
	if cfg.Fetch.UserAgent != "" {
		headers["User-Agent"] = cfg.Fetch.UserAgent
	}
	return headers
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/repoman/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
