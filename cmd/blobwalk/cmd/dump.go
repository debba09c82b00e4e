package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/valkyriedb/bloblog/pkg/bloblog"
	"github.com/valkyriedb/bloblog/pkg/config"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print the records of a blob log file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		levelName, _ := cmd.Flags().GetString("level")
		if levelName == "" {
			levelName = cfg.ReadLevel
		}
		level, err := config.ParseReadLevel(levelName)
		if err != nil {
			return err
		}
		recovery, err := config.ParseRecoveryMode(cfg.Recovery)
		if err != nil {
			return err
		}
		preview := cfg.PreviewBytes
		if cmd.Flags().Changed("preview-bytes") {
			preview, _ = cmd.Flags().GetInt("preview-bytes")
		}
		return runDump(cmd.OutOrStdout(), args[0], level, recovery, preview)
	},
}

func runDump(out io.Writer, path string, level bloblog.ReadLevel, recovery bloblog.RecoveryMode, preview int) error {
	i := 0
	res, err := bloblog.ScanFile(path, bloblog.ScanOptions{
		Level:    level,
		Recovery: recovery,
	}, func(rec *bloblog.Record) error {
		fmt.Fprintf(out, "record %d: sn=%d subtype=%s key_size=%d blob_size=%d",
			i, rec.SequenceNumber(), subTypeName(rec.SubType()), rec.KeySize(), rec.BlobSize())
		switch rec.SubType() {
		case bloblog.TTLType:
			fmt.Fprintf(out, " ttl=%d", rec.TTL())
		case bloblog.TimestampType:
			fmt.Fprintf(out, " ts=%d", rec.Timestamp())
		}
		if key := rec.Key(); key != nil {
			fmt.Fprintf(out, " key=%q", key)
		}
		if blob := rec.Blob(); blob != nil {
			if len(blob) > preview {
				fmt.Fprintf(out, " blob=%q...", blob[:preview])
			} else {
				fmt.Fprintf(out, " blob=%q", blob)
			}
		}
		fmt.Fprintln(out)
		i++
		return nil
	})
	if err != nil {
		return fmt.Errorf("dumping %s: %w", path, err)
	}
	if res.Truncated {
		fmt.Fprintf(out, "truncated tail at offset %d\n", res.TruncationOffset)
	}
	return nil
}

func subTypeName(st bloblog.RecordSubType) string {
	switch st {
	case bloblog.RegularType:
		return "regular"
	case bloblog.TTLType:
		return "ttl"
	case bloblog.TimestampType:
		return "timestamp"
	default:
		return fmt.Sprintf("unknown(%d)", st)
	}
}

func init() {
	dumpCmd.Flags().String("level", "", "Read level: headers, keys, or full (default from config)")
	dumpCmd.Flags().Int("preview-bytes", 0, "Blob bytes to print per record (default from config)")
	rootCmd.AddCommand(dumpCmd)
}
