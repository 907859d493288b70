package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/devplan/devplan/internal/ctxutil"
	"github.com/devplan/devplan/internal/store"
)

// AddSessionsCommand adds the sessions command to the root command.
func AddSessionsCommand(parent *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List classification sessions",
		Long: `Display all stored classification sessions with their state.

Sessions in the awaiting_answers state are blocked on clarification
questions; answer them with 'devplan plan --answer'.

Examples:
  devplan sessions
  devplan sessions --output json`,
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSessions(cmd.Context(), flags, os.Stdout)
		},
	}

	parent.AddCommand(cmd)
}

// runSessions executes the sessions command.
func runSessions(ctx context.Context, flags *GlobalFlags, w io.Writer) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	home, err := getDevplanHome()
	if err != nil {
		return err
	}
	sessions, err := store.NewFileSessionStore(home)
	if err != nil {
		return err
	}

	all, err := sessions.List(ctx)
	if err != nil {
		return err
	}

	// Most recently updated first.
	sort.Slice(all, func(i, j int) bool {
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})

	if len(all) == 0 {
		if flags.Output == OutputJSON {
			_, _ = fmt.Fprintln(w, "[]")
		} else {
			_, _ = fmt.Fprintln(w, "No sessions. Run 'devplan analyze' to create one.")
		}
		return nil
	}

	if flags.Output == OutputJSON {
		return outputJSON(w, all)
	}
	renderSessionList(w, all)
	return nil
}
