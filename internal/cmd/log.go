package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ptyrec/ptyrec/internal/capture"
	"github.com/ptyrec/ptyrec/internal/config"
)

var logLines int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent structured log entries",
	Long:  `Print the tail of the structured session event log.`,
	RunE:  runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().IntVarP(&logLines, "lines", "n", 20, "number of entries to show")
}

func runLog(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	path := filepath.Join(cfg.LogDir, capture.LogFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No log yet. Run a session first: ptyrec run")
			return nil
		}
		return fmt.Errorf("failed to read log: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > logLines {
		lines = lines[len(lines)-logLines:]
	}
	for _, l := range lines {
		fmt.Println(l)
	}
	return nil
}
