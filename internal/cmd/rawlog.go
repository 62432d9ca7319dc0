package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ptyrec/ptyrec/internal/capture"
	"github.com/ptyrec/ptyrec/internal/config"
)

var rawlogBytes int

var rawlogCmd = &cobra.Command{
	Use:   "rawlog",
	Short: "Hexdump the raw output archive",
	Long: `Print a hexdump of the tail of the raw output archive.

The archive is the byte-exact concatenation of everything the session shells
wrote, ANSI escapes included; this is the stream the offline recorder
replays.`,
	RunE: runRawlog,
}

func init() {
	rootCmd.AddCommand(rawlogCmd)
	rawlogCmd.Flags().IntVarP(&rawlogBytes, "bytes", "n", 256, "number of bytes to show")
}

func runRawlog(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	path := filepath.Join(cfg.LogDir, capture.OutputArchiveName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No archive yet. Run a session first: ptyrec run")
			return nil
		}
		return fmt.Errorf("failed to read archive: %w", err)
	}

	start := 0
	if len(data) > rawlogBytes {
		start = len(data) - rawlogBytes
	}
	fmt.Printf("%s: last %d of %d bytes\n\n", path, len(data)-start, len(data))
	fmt.Print(hex.Dump(data[start:]))
	return nil
}
