package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/devplan/devplan/internal/ctxutil"
)

// AddReposCommand adds the repos command to the root command.
func AddReposCommand(parent *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "repos",
		Short: "List repositories visible to the configured token",
		Long: `List the repositories the configured GitHub token can see,
most recently updated first. Useful for finding the owner/name values
to pass to 'devplan analyze --repo'.

Examples:
  devplan repos
  devplan repos --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepos(cmd.Context(), flags, os.Stdout)
		},
	}

	parent.AddCommand(cmd)
}

// runRepos executes the repos command.
func runRepos(ctx context.Context, flags *GlobalFlags, w io.Writer) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	logger := GetLogger()

	app, err := buildApp(ctx, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	repos, err := app.host.ListRepos(ctx)
	if err != nil {
		return err
	}

	if len(repos) == 0 {
		if flags.Output == OutputJSON {
			_, _ = fmt.Fprintln(w, "[]")
		} else {
			_, _ = fmt.Fprintln(w, "No repositories visible. Check DEVPLAN_GITHUB_TOKEN.")
		}
		return nil
	}

	if flags.Output == OutputJSON {
		return outputJSON(w, repos)
	}
	renderRepoList(w, repos)
	return nil
}
