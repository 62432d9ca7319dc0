package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ptyrec/ptyrec/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded sessions",
	Long:  `List saved session records with shell, end reason, and traffic totals.`,
	RunE:  runSessions,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	store, err := session.NewStore()
	if err != nil {
		return fmt.Errorf("failed to access session store: %w", err)
	}

	sessions, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No recorded sessions.")
		return nil
	}

	// Create tabwriter for aligned output
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSHELL\tSTARTED\tEND REASON\tEXIT\tIN\tOUT")
	_, _ = fmt.Fprintln(w, "--\t-----\t-------\t----------\t----\t--\t---")

	for _, sess := range sessions {
		started := sess.StartedAt.Format("2006-01-02 15:04:05")
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			sess.ID,
			sess.Shell,
			started,
			sess.EndReason,
			sess.ExitCode,
			sess.BytesIn,
			sess.BytesOut,
		)
	}

	_ = w.Flush()
	return nil
}
