package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devplan/devplan/internal/ctxutil"
	devplanerrors "github.com/devplan/devplan/internal/errors"
)

// AddPlanCommand adds the plan command to the root command.
func AddPlanCommand(parent *cobra.Command, flags *GlobalFlags) {
	var (
		sessionID   string
		answerFlags []string
	)

	cmd := &cobra.Command{
		Use:   "plan --session <id>",
		Short: "Generate an execution plan for an analyzed task",
		Long: `Generate a decomposed execution plan for a previously analyzed task.

Sessions waiting on clarification questions need answers first, supplied
as repeatable --answer "<question>=<answer>" flags. The plan includes
deadlines, dependencies, effort estimates, and team assignments when a
roster is configured.

Examples:
  devplan plan --session f1c9a2
  devplan plan --session f1c9a2 --answer "Which format?=RFC 4180 CSV"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd.Context(), sessionID, answerFlags, flags, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "session id from a previous analyze run")
	cmd.Flags().StringArrayVarP(&answerFlags, "answer", "a", nil, "clarification answer as \"question=answer\" (repeatable)")
	_ = cmd.MarkFlagRequired("session")

	parent.AddCommand(cmd)
}

// runPlan executes the plan command.
func runPlan(ctx context.Context, sessionID string, answerFlags []string, flags *GlobalFlags, w io.Writer) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	logger := GetLogger()

	answers, err := parseAnswers(answerFlags)
	if err != nil {
		return err
	}

	app, err := buildApp(ctx, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	roster, err := app.loadRoster()
	if err != nil {
		return err
	}

	outcome, err := app.engine.GeneratePlan(ctx, sessionID, answers, roster)
	if err != nil {
		return err
	}

	if flags.Output == OutputJSON {
		return outputJSON(w, outcome.Result)
	}
	renderPlan(w, outcome.Result.Plan, outcome.Result.Matches)
	return nil
}

// parseAnswers parses repeated "question=answer" flags into a map.
func parseAnswers(answerFlags []string) (map[string]string, error) {
	if len(answerFlags) == 0 {
		return nil, nil
	}
	answers := make(map[string]string, len(answerFlags))
	for _, raw := range answerFlags {
		question, answer, found := strings.Cut(raw, "=")
		question = strings.TrimSpace(question)
		answer = strings.TrimSpace(answer)
		if !found || question == "" || answer == "" {
			return nil, devplanerrors.Wrapf(devplanerrors.ErrInvalidArgument,
				"answer %q is not in \"question=answer\" form", raw)
		}
		answers[question] = answer
	}
	return answers, nil
}
