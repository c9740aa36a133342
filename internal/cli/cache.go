package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/repoman/pkg/cache"
	"github.com/matzehuels/repoman/pkg/config"
	"github.com/matzehuels/repoman/pkg/errors"
)

// forgetter is implemented by repositories that cache remote metadata.
type forgetter interface {
	Forget(ctx context.Context, name string) error
}

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the HTTP response cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	return cmd
}

// fileCacheDir returns the file cache directory for cfg.
func fileCacheDir(cfg *config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cacheDir()
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	var expired bool

	cmd := &cobra.Command{
		Use:   "clear [vendor/name...]",
		Short: "Drop cached repository metadata",
		Long: `Without arguments, delete every entry of the file cache.

With --expired, delete only file cache entries past their TTL.

With package names, drop just those packages' metadata from every remote
repository in the config. This works with every cache backend.`,
		Example: `  repoman cache clear
  repoman cache clear --expired
  repoman cache clear monolog/monolog psr/log`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return c.forgetPackages(cmd.Context(), args)
			}
			return c.clearFileCache(expired)
		},
	}

	cmd.Flags().BoolVar(&expired, "expired", false, "only delete expired entries")
	return cmd
}

func (c *CLI) clearFileCache(expiredOnly bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Cache.Backend != config.BackendFile {
		printWarning("The %s backend expires entries by TTL; pass package names to drop specific entries", cfg.Cache.Backend)
		return nil
	}

	dir, err := fileCacheDir(cfg)
	if err != nil {
		return fmt.Errorf("get cache dir: %w", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil
	}

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	remove, what := fc.Clear, "cached"
	if expiredOnly {
		remove, what = fc.Prune, "expired"
	}
	count, err := remove()
	if err != nil {
		return err
	}
	printSuccess("Cleared %d %s entries", count, what)
	printDetail("Directory: %s", dir)
	return nil
}

func (c *CLI) forgetPackages(ctx context.Context, names []string) error {
	for i, name := range names {
		names[i] = strings.ToLower(name)
		if err := errors.ValidateComposerName(names[i]); err != nil {
			return err
		}
	}

	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	remotes := 0
	for _, r := range s.manager.Repositories() {
		f, ok := r.(forgetter)
		if !ok {
			continue
		}
		remotes++
		for _, name := range names {
			if err := f.Forget(ctx, name); err != nil {
				return fmt.Errorf("forget %s in %v: %w", name, r, err)
			}
		}
	}
	if remotes == 0 {
		printInfo("No remote repositories configured; nothing is cached")
		return nil
	}
	printSuccess("Dropped %s from %d repositories", joinList(names), remotes)
	return nil
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			dir, err := fileCacheDir(cfg)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}
