package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/repoman/pkg/repository"
	"github.com/matzehuels/repoman/pkg/repository/builtin"
)

// reposCommand creates the repos command.
func (c *CLI) reposCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repos",
		Short: "List configured repositories in query order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if path := s.cfg.Path(); path != "" {
				printInfo("Config: %s", path)
			} else {
				printInfo("Config: built-in defaults")
			}
			for i, r := range s.manager.Repositories() {
				fmt.Fprintf(stdout, "  %s %v\n", StyleDim.Render(fmt.Sprintf("%d.", i+1)), r)
			}
			if local := s.manager.LocalRepository(); local != nil {
				printDetail("local: %v (%d packages)", local, len(local.Packages()))
			}
			return nil
		},
	}
}

// typesCommand creates the types command.
func (c *CLI) typesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List registered repository types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := repository.NewManager(repository.Env{IO: c.Logger})
			builtin.Register(m)

			classes := builtin.Classes()
			for _, typ := range m.Types() {
				note := ""
				if classes[typ].AcceptsFetcher {
					note = StyleDim.Render(" (network)")
				}
				fmt.Fprintln(stdout, "  "+StyleHighlight.Render(typ)+note)
			}
			return nil
		},
	}
}

// devTracker is implemented by local repositories that record which
// packages were installed as dev requirements.
type devTracker interface {
	IsDev(name string) bool
	DevMode() bool
}

// installedCommand creates the installed command.
func (c *CLI) installedCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "installed",
		Short: "List packages in the local repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			local := s.manager.LocalRepository()
			pkgs := local.Packages()
			if asJSON {
				if pkgs == nil {
					pkgs = []repository.Package{}
				}
				return writeJSON(pkgs)
			}
			if len(pkgs) == 0 {
				printInfo("No packages installed (%s)", s.cfg.Local.Path)
				return nil
			}
			dev, _ := local.(devTracker)
			title := fmt.Sprintf("%d installed packages", len(pkgs))
			if dev != nil && !dev.DevMode() {
				title += " (no dev requirements)"
			}
			printTitle(title)
			for _, p := range pkgs {
				label := ""
				if dev != nil && dev.IsDev(p.Name) {
					label = "dev"
				}
				printVersionLine(p.Name, p.Version, label, false)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print packages as JSON")
	return cmd
}
