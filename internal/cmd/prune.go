package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ptyrec/ptyrec/internal/session"
)

var pruneAll bool

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove stopped session records",
	Long: `Remove saved session records.

By default only stopped sessions are removed. The capture files (structured
log and raw archives) are left in place; they span sessions.`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
	pruneCmd.Flags().BoolVarP(&pruneAll, "all", "a", false, "remove all session records")
}

func runPrune(cmd *cobra.Command, args []string) error {
	store, err := session.NewStore()
	if err != nil {
		return fmt.Errorf("failed to access session store: %w", err)
	}

	sessions, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	removedCount := 0
	for _, sess := range sessions {
		if pruneAll || sess.Status == "stopped" {
			if err := store.Delete(sess.ID); err != nil {
				fmt.Printf("Warning: failed to delete session %s: %v\n", sess.ID, err)
			} else {
				fmt.Printf("Removed session: %s\n", sess.ID)
				removedCount++
			}
		}
	}

	if removedCount == 0 {
		fmt.Println("No sessions to remove.")
	} else {
		fmt.Printf("Removed %d session(s).\n", removedCount)
	}

	return nil
}
