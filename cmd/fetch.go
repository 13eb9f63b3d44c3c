package main

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/trade-cli/internal/canonical"
	"github.com/sells-group/trade-cli/internal/dataweb"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download import statistics from the USITC DataWeb API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.Dataweb.APIKey == "" {
			return eris.New("dataweb API key is required (TRADE_DATAWEB_API_KEY)")
		}
		from, err := canonical.ParseYearMonth(cfg.Consolidate.MonthsFrom)
		if err != nil {
			return err
		}
		to, err := canonical.ParseYearMonth(cfg.Consolidate.MonthsTo)
		if err != nil {
			return err
		}

		cp, err := dataweb.OpenCheckpoint(filepath.Join(cfg.Data.BaseDir, cfg.Dataweb.CheckpointDB))
		if err != nil {
			return err
		}
		defer cp.Close()

		client := dataweb.NewClient(cfg.Dataweb)
		outputFile := filepath.Join(cfg.Data.BaseDir, cfg.Dataweb.OutputFile)
		return dataweb.NewFetcher(client, cp, outputFile, from, to).Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
