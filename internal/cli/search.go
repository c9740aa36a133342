package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/repoman/pkg/constraint"
	"github.com/matzehuels/repoman/pkg/errors"
	"github.com/matzehuels/repoman/pkg/integrations"
	"github.com/matzehuels/repoman/pkg/repository"
)

// queryArgs parses "<vendor/name> [constraint]".
func queryArgs(args []string) (string, constraint.Constraint, error) {
	name := strings.ToLower(strings.TrimSpace(args[0]))
	if err := errors.ValidateComposerName(name); err != nil {
		return "", nil, err
	}
	c := constraint.Any()
	if len(args) > 1 {
		var err error
		if c, err = constraint.Parse(strings.Join(args[1:], " ")); err != nil {
			return "", nil, err
		}
	}
	return name, c, nil
}

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <vendor/name> [constraint]",
		Short: "List matching versions from every repository",
		Long: `List every version of a package that satisfies the constraint, from all
configured repositories in their configured order. Duplicates across
repositories are listed once per repository.`,
		Example: `  repoman search monolog/monolog
  repoman search monolog/monolog "^3.0"
  repoman search symfony/console ">=6.0 <7.0" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, con, err := queryArgs(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			prog := newProgress(loggerFromContext(ctx))
			spin := c.spinner(cmd, fmt.Sprintf("Searching %d repositories...", len(s.manager.Repositories())))
			pkgs, err := s.manager.FindPackages(ctx, name, con)
			spin.Stop()
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(pkgs)
			}
			if len(pkgs) == 0 {
				printWarning("No versions of %s match %s", name, con)
				return nil
			}

			local := s.manager.LocalRepository()
			printTitle(name)
			for _, p := range pkgs {
				printVersionLine(p.Name, p.Version, distLabel(p), local != nil && local.HasPackage(p.Name, p.Version))
			}
			prog.done(fmt.Sprintf("Found %d versions", len(pkgs)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print packages as JSON")
	return cmd
}

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <vendor/name> [constraint]",
		Short: "Show the first matching version",
		Long: `Show the package the first repository with a match returns. Repositories
listed earlier in the config take precedence.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, con, err := queryArgs(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			spin := c.spinner(cmd, "Resolving "+name+"...")
			p, err := s.manager.FindPackage(ctx, name, con)
			spin.Stop()
			if err != nil {
				return err
			}
			if p == nil {
				return errors.New(errors.ErrCodePackageNotFound, "no repository has %s matching %s", name, con)
			}

			if asJSON {
				return writeJSON(p)
			}
			printPackage(*p)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the package as JSON")
	return cmd
}

func printPackage(p repository.Package) {
	printTitle(p.Name + " " + p.Version)
	printKeyValue("description", p.Description)
	printKeyValue("type", p.Type)
	printKeyValue("license", joinList(p.License))
	printKeyLink("homepage", p.Homepage)
	printKeyValue("released", p.Time)
	if p.Source != nil {
		printKeyValue("source", fmt.Sprintf("[%s] %s %s", p.Source.Type, p.Source.URL, p.Source.Reference))
		if web := integrations.SourceWebURL(p.Source.URL); web != "" && web != p.Homepage {
			printKeyLink("repository", web)
		}
	}
	if p.Dist != nil {
		printKeyValue("dist", fmt.Sprintf("[%s] %s", p.Dist.Type, p.Dist.URL))
	}
	var authors []string
	for _, a := range p.Authors {
		authors = append(authors, a.Name)
	}
	printKeyValue("authors", joinList(authors))
	printKeyValue("requires", joinList(p.Dependencies()))
}

func distLabel(p repository.Package) string {
	if p.Dist != nil && p.Dist.Type == "path" {
		return p.Dist.URL
	}
	return ""
}

func writeJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// spinner starts a spinner unless verbose logging would interleave with it.
func (c *CLI) spinner(cmd *cobra.Command, msg string) *Spinner {
	s := newSpinnerWithContext(cmd.Context(), msg)
	if c.verbose {
		s.quiet = true
	}
	s.Start()
	return s
}
