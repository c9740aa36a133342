package cli

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/repoman/internal/server"
	"github.com/matzehuels/repoman/pkg/repository"
)

const warmConcurrency = 4

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr string
		warm []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve package queries over HTTP",
		Long: `Serve a read-only JSON API over the configured repositories.

  GET /healthz
  GET /repositories
  GET /packages/{vendor}/{name}?constraint=^1.0
  GET /packages/{vendor}/{name}/first?constraint=^1.0
  GET /installed`,
		Example: `  repoman serve --addr :8080
  repoman serve --warm monolog/monolog --warm psr/log`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.newSession(ctx, true)
			if err != nil {
				return err
			}
			defer s.Close()

			if len(warm) > 0 {
				spin := c.spinner(cmd, fmt.Sprintf("Warming %d packages...", len(warm)))
				var warmed atomic.Int32
				err = warmPackages(ctx, s.manager, warm, func(string) {
					spin.Update(fmt.Sprintf("Warming packages %d/%d...", warmed.Add(1), len(warm)))
				})
				if err != nil {
					spin.StopWithError("Cache warm-up failed")
					return err
				}
				spin.StopWithSuccess(fmt.Sprintf("Warmed %d packages", len(warm)))
			}

			return server.New(s.manager, c.Logger, server.WithStats(s.stats)).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringSliceVar(&warm, "warm", nil, "packages to fetch into the cache before serving")
	return cmd
}

// warmPackages queries every name concurrently so later requests hit the
// cache. onDone, if set, is called after each successful query.
func warmPackages(ctx context.Context, m *repository.Manager, names []string, onDone func(name string)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)
	for _, name := range names {
		g.Go(func() error {
			if _, err := m.FindPackages(gctx, name, nil); err != nil {
				return fmt.Errorf("warm %s: %w", name, err)
			}
			if onDone != nil {
				onDone(name)
			}
			return nil
		})
	}
	return g.Wait()
}
