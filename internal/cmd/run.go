package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ptyrec/ptyrec/internal/config"
	"github.com/ptyrec/ptyrec/internal/ptysh"
	"github.com/ptyrec/ptyrec/internal/session"
	"github.com/ptyrec/ptyrec/internal/supervisor"
)

var (
	runShell      string
	runNoCommands bool
	runNoData     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a recorded shell session",
	Long: `Start a shell inside a pseudo-terminal and record the session.

The shell runs with a distinguishing [PTY] prompt. Everything you type and
everything the shell prints is relayed unmodified and captured to
~/.ptyrec/log: a structured event log plus raw byte archives suitable for
replay.

Inside the session, whole-line commands like pty_info and pty_help are
handled by the session host instead of the shell (see pty_help).

Examples:
  ptyrec run
  ptyrec run --shell /bin/zsh
  ptyrec run --no-commands`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runShell, "shell", "s", "", "shell to run (default: $SHELL)")
	runCmd.Flags().BoolVar(&runNoCommands, "no-commands", false, "disable reserved pty_* command interception")
	runCmd.Flags().BoolVar(&runNoData, "no-data", false, "omit payload bytes from the structured log")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	Debug("Config loaded successfully")

	if runShell != "" {
		cfg.Shell = runShell
	}
	if runNoCommands {
		disabled := false
		cfg.Commands.Enabled = &disabled
	}
	if runNoData {
		noData := false
		cfg.Capture.LogData = &noData
	}

	shell := cfg.Shell
	if shell == "" {
		shell = ptysh.DefaultShell()
	}
	if _, err := os.Stat(shell); err != nil {
		return fmt.Errorf("shell not found: %s", shell)
	}

	store, err := session.NewStore()
	if err != nil {
		return fmt.Errorf("failed to access session store: %w", err)
	}

	fmt.Printf("Starting recorded session: %s\n", shell)
	fmt.Printf("Capture directory: %s\n", cfg.LogDir)
	fmt.Println("Type 'exit' or press Ctrl+D to end the session.")
	fmt.Println()

	sup := supervisor.New(supervisor.Options{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Config: cfg,
		Store:  store,
	})
	result, runErr := sup.Run()

	// The terminal is restored by the time Run returns; it is safe to
	// print again.
	if result != nil {
		sess := result.Session
		fmt.Println()
		fmt.Printf("Session %s ended: %s (exit code %d)\n", sess.ID, sess.EndReason, sess.ExitCode)
		fmt.Printf("  %d bytes in, %d bytes out\n", sess.BytesIn, sess.BytesOut)
		fmt.Printf("  log:     %s\n", sess.LogPath)
		fmt.Printf("  archive: %s\n", sess.ArchivePath)
		sessionExitCode = result.ExitCode
	}
	if runErr != nil {
		return fmt.Errorf("session failed: %w", runErr)
	}
	return nil
}
