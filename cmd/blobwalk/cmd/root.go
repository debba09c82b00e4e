package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/valkyriedb/bloblog/pkg/config"
)

// cfg holds the resolved configuration for the invocation; flags on the
// subcommands override individual fields.
var cfg *config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blobwalk",
	Short: "blobwalk - inspect blob log files",
	Long: `blobwalk reads the append-only blob files a key-value store keeps
large values in: it prints file summaries, dumps records, and verifies
checksums, including files left unsealed by a crash.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if configPath != "" {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = loaded
			return nil
		}
		if defaultPath := config.GetDefaultConfigPath(); config.ConfigExists(defaultPath) {
			loaded, err := config.LoadConfig(defaultPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = loaded
			return nil
		}
		cfg = config.DefaultConfig()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file")
}
