package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/devplan/devplan/internal/clock"
	"github.com/devplan/devplan/internal/config"
	"github.com/devplan/devplan/internal/ctxutil"
	"github.com/devplan/devplan/internal/followup"
	"github.com/devplan/devplan/internal/store"
)

// AddFollowUpCommand adds the followup command to the root command.
func AddFollowUpCommand(parent *cobra.Command, _ *GlobalFlags) {
	var intervalFlag time.Duration

	cmd := &cobra.Command{
		Use:   "followup",
		Short: "Remind about sessions waiting on clarification answers",
		Long: `Run the follow-up scheduler in the foreground.

Every sweep interval, sessions parked on unanswered clarification
questions get a one-line terminal reminder. Each session is reminded at
most once per interval. Stop with Ctrl-C.

Examples:
  devplan followup
  devplan followup --interval 5m`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFollowUp(cmd.Context(), intervalFlag, os.Stdout)
		},
	}

	cmd.Flags().DurationVarP(&intervalFlag, "interval", "i", 0, "sweep interval (overrides followup.interval config)")

	parent.AddCommand(cmd)
}

// runFollowUp executes the followup command.
func runFollowUp(ctx context.Context, intervalFlag time.Duration, w io.Writer) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	logger := GetLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	interval := cfg.FollowUp.Interval
	if intervalFlag > 0 {
		interval = intervalFlag
	}

	home, err := getDevplanHome()
	if err != nil {
		return err
	}
	sessions, err := store.NewFileSessionStore(home)
	if err != nil {
		return err
	}

	notifier := followup.NewWriterNotifierWithWriter(w, cfg.FollowUp.Bell)
	scheduler := followup.NewScheduler(sessions, notifier, interval, clock.NewRealClock(), &logger)

	_, _ = fmt.Fprintf(w, "Watching for unanswered sessions every %s. Press Ctrl-C to stop.\n", interval)

	err = scheduler.Run(ctx)
	if stderrors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
