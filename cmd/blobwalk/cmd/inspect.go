package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/valkyriedb/bloblog/pkg/bloblog"
	"github.com/valkyriedb/bloblog/pkg/config"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>...",
	Short: "Print a summary of one or more blob log files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recovery, err := config.ParseRecoveryMode(cfg.Recovery)
		if err != nil {
			return err
		}
		for _, path := range args {
			if err := runInspect(cmd.OutOrStdout(), path, recovery); err != nil {
				return err
			}
		}
		return nil
	},
}

func runInspect(out io.Writer, path string, recovery bloblog.RecoveryMode) error {
	res, err := bloblog.ScanFile(path, bloblog.ScanOptions{
		Level:    bloblog.ReadLevelHeaderFooter,
		Recovery: recovery,
	}, nil)
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", path, err)
	}

	fmt.Fprintf(out, "%s:\n", path)
	if ttl, ok := res.Header.TTLGuess(); ok {
		fmt.Fprintf(out, "  ttl guess:      [%d, %d]\n", ttl.Min, ttl.Max)
	}
	if ts, ok := res.Header.TimestampGuess(); ok {
		fmt.Fprintf(out, "  ts guess:       [%d, %d]\n", ts.Min, ts.Max)
	}
	fmt.Fprintf(out, "  records:        %d\n", res.Records)
	fmt.Fprintf(out, "  bytes:          %d\n", res.BytesScanned)
	if res.Footer != nil {
		fmt.Fprintf(out, "  footer:         %s\n", res.Footer)
	} else {
		fmt.Fprintf(out, "  footer:         absent (file not sealed)\n")
	}
	if res.Truncated {
		fmt.Fprintf(out, "  truncated tail: at offset %d\n", res.TruncationOffset)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
