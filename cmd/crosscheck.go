package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/trade-cli/internal/canonical"
	"github.com/sells-group/trade-cli/internal/compare"
	"github.com/sells-group/trade-cli/internal/config"
	"github.com/sells-group/trade-cli/internal/official"
	"github.com/sells-group/trade-cli/internal/report"
)

var (
	crosscheckRebuild   bool
	crosscheckTolerance float64
)

var crosscheckCmd = &cobra.Command{
	Use:   "crosscheck",
	Short: "Validate the consolidated master against the official summary",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat, err := config.LoadCatalog(cfg.Data.CatalogFile)
		if err != nil {
			return err
		}
		tolerance := cfg.Crosscheck.Tolerance
		if cmd.Flags().Changed("tolerance") {
			tolerance = crosscheckTolerance
		}

		yours, err := loadYourData()
		if err != nil {
			return err
		}

		officialRecs, err := official.Load(
			filepath.Join(cfg.Data.BaseDir, cfg.Crosscheck.OfficialFile), cat)
		if err != nil {
			return err
		}
		processedPath := filepath.Join(cfg.Consolidate.OutDir, cfg.Crosscheck.ProcessedFile)
		if err := report.WriteCanonicalCSV(processedPath, officialRecs); err != nil {
			zap.L().Warn("could not write processed official table", zap.Error(err))
		}

		entries := compare.Compare(yours, officialRecs)
		rep := compare.BuildReport(entries, tolerance)

		for i, e := range rep.Mismatches {
			if i >= cfg.Crosscheck.TopMismatchesShow {
				break
			}
			zap.L().Info("mismatch",
				zap.Int("rank", i+1),
				zap.String("finding", e.Summary()),
			)
		}

		reportPath := filepath.Join(cfg.Consolidate.OutDir, cfg.Crosscheck.ReportFile)
		if err := report.WriteValidation(reportPath, rep); err != nil {
			return err
		}

		if rep.Clean() {
			zap.L().Info("validation passed, data matches official summary",
				zap.Float64("tolerance", tolerance),
				zap.Int("records", rep.Total),
			)
		}
		return nil
	},
}

// loadYourData returns the canonical form of the consolidated master table,
// served from the Parquet cache unless --rebuild is set or the cache is
// unreadable.
func loadYourData() ([]canonical.Record, error) {
	cachePath := filepath.Join(cfg.Consolidate.OutDir, cfg.Crosscheck.CacheFile)
	if !crosscheckRebuild {
		recs, err := canonical.ReadCache(cachePath)
		if err == nil {
			return recs, nil
		}
		zap.L().Warn("cache unavailable, rebuilding from master table",
			zap.String("path", cachePath),
			zap.Error(err),
		)
	}

	masterPath := filepath.Join(cfg.Consolidate.OutDir, report.MasterBase+".csv")
	table, err := report.ReadMasterCSV(masterPath, cfg.Data.KeyColumns)
	if err != nil {
		return nil, err
	}
	recs, _ := canonical.MeltMaster(table)

	if err := canonical.WriteCache(cachePath, recs); err != nil {
		zap.L().Warn("could not write cache", zap.String("path", cachePath), zap.Error(err))
	}
	return recs, nil
}

func init() {
	crosscheckCmd.Flags().BoolVar(&crosscheckRebuild, "rebuild", false, "ignore the cache and re-aggregate from the master table")
	crosscheckCmd.Flags().Float64Var(&crosscheckTolerance, "tolerance", 1.0, "absolute difference above which a record is flagged")
	rootCmd.AddCommand(crosscheckCmd)
}
