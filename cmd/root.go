package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/trade-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "trade-cli",
	Short: "USITC trade data consolidation and validation",
	Long:  "Consolidates monthly USITC DataWeb spreadsheet exports into a master table, cross-checks it against the official summary, and fetches fresh data from the DataWeb API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
