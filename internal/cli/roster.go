package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/devplan/devplan/internal/config"
	"github.com/devplan/devplan/internal/ctxutil"
	devplanerrors "github.com/devplan/devplan/internal/errors"
	"github.com/devplan/devplan/internal/roster"
)

// AddRosterCommand adds the roster command to the root command.
func AddRosterCommand(parent *cobra.Command, flags *GlobalFlags) {
	var pathFlag string

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Show the team roster with availability",
		Long: `Display the configured team roster with derived availability.

Availability is recomputed from each member's load and capacity every
time the roster is read: idle when at least half the capacity is free,
busy when some is free, overloaded otherwise.

Examples:
  devplan roster
  devplan roster --path ./team.yaml --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoster(cmd.Context(), pathFlag, flags, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&pathFlag, "path", "p", "", "roster YAML file (overrides roster.path config)")

	parent.AddCommand(cmd)
}

// runRoster executes the roster command.
func runRoster(ctx context.Context, pathFlag string, flags *GlobalFlags, w io.Writer) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	path := pathFlag
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		path = cfg.Roster.Path
	}
	if path == "" {
		return devplanerrors.Wrap(devplanerrors.ErrEmptyValue,
			"no roster configured; set roster.path or pass --path")
	}

	members, err := roster.Load(path)
	if err != nil {
		return err
	}

	if flags.Output == OutputJSON {
		return outputJSON(w, members)
	}
	renderRoster(w, members)
	return nil
}
