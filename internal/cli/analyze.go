package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/devplan/devplan/internal/ctxutil"
	"github.com/devplan/devplan/internal/domain"
)

// AddAnalyzeCommand adds the analyze command to the root command.
func AddAnalyzeCommand(parent *cobra.Command, flags *GlobalFlags) {
	var repoFlags []string

	cmd := &cobra.Command{
		Use:   "analyze \"task description\"",
		Short: "Analyze a task against one or more repositories",
		Long: `Analyze a natural-language work item against the given repositories.

The task is classified as new functionality, an update to existing
functionality, or both. Ambiguous tasks produce clarification questions;
answer them with 'devplan plan --answer'.

Examples:
  devplan analyze "Add CSV export to the reports page" --repo octocat/hello-world
  devplan analyze "Rework auth" --repo acme/api --repo acme/web --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), args[0], repoFlags, flags, os.Stdout)
		},
	}

	cmd.Flags().StringArrayVarP(&repoFlags, "repo", "r", nil, "repository as owner/name (repeatable)")
	_ = cmd.MarkFlagRequired("repo")

	parent.AddCommand(cmd)
}

// runAnalyze executes the analyze command.
func runAnalyze(ctx context.Context, taskText string, repoFlags []string, flags *GlobalFlags, w io.Writer) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	logger := GetLogger()

	repos := make([]domain.RepoRef, 0, len(repoFlags))
	for _, raw := range repoFlags {
		ref, err := domain.ParseRepoRef(raw)
		if err != nil {
			return err
		}
		repos = append(repos, ref)
	}

	app, err := buildApp(ctx, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.engine.AnalyzeTask(ctx, taskText, repos)
	if err != nil {
		return err
	}

	if flags.Output == OutputJSON {
		return outputJSON(w, result.Session)
	}

	renderSession(w, result.Session)
	if result.Session.State == domain.StatePlanReady {
		_, _ = fmt.Fprintf(w, "\nGenerate the plan with: devplan plan --session %s\n", result.Session.ID)
	}
	return nil
}
