package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/trade-cli/internal/report"
)

var summaryOut string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Write the per-country pivoted summary workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		recs, err := loadYourData()
		if err != nil {
			return err
		}

		out := summaryOut
		if out == "" {
			out = filepath.Join(cfg.Consolidate.OutDir, "country_summary.xlsx")
		}
		if err := report.WriteSummary(out, recs); err != nil {
			return err
		}
		zap.L().Info("summary complete", zap.String("path", out))
		return nil
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryOut, "out", "", "output workbook path (default <out_dir>/country_summary.xlsx)")
	rootCmd.AddCommand(summaryCmd)
}
