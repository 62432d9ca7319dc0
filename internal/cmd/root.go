package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool

	// sessionExitCode mirrors the child shell's exit status so the host
	// process can reflect it.
	sessionExitCode int
)

// Debug prints a message if debug mode is enabled
func Debug(format string, args ...interface{}) {
	if debug {
		fmt.Printf("[DEBUG] "+format+"\n", args...)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ptyrec",
	Short: "ptyrec - recorded PTY shell sessions",
	Long: `ptyrec hosts a shell inside a pseudo-terminal, relays your keystrokes
and the shell's output, and records the raw byte stream for later replay.

Start a recorded session:
  ptyrec run
  ptyrec run --shell /bin/zsh

Inspect past sessions:
  ptyrec sessions
  ptyrec log
  ptyrec rawlog

Clean up session records:
  ptyrec prune`,
}

// Execute runs the root command and returns the exit code the host process
// should use: the child shell's exit status when a session ran.
func Execute() (int, error) {
	if err := rootCmd.Execute(); err != nil {
		return 1, err
	}
	return sessionExitCode, nil
}

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.ptyrec/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func initConfig() {
	// Config is loaded on-demand in subcommands
}
