package main

import (
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/trade-cli/internal/canonical"
	"github.com/sells-group/trade-cli/internal/config"
	"github.com/sells-group/trade-cli/internal/monthly"
	"github.com/sells-group/trade-cli/internal/report"
	"github.com/sells-group/trade-cli/internal/wide"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Consolidate monthly source spreadsheets into the master table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cat, err := config.LoadCatalog(cfg.Data.CatalogFile)
		if err != nil {
			return err
		}
		expected, err := expectedMonths()
		if err != nil {
			return err
		}
		params := monthly.Params{
			Anchor:     cfg.Data.AnchorColumn,
			KeyColumns: cfg.Data.KeyColumns,
			ScanRows:   cfg.Consolidate.HeaderScanRows,
		}

		var tables []*wide.Table
		for _, v := range cat.Variables {
			var batches []monthly.Batch
			for _, order := range cfg.Consolidate.BatchOrder {
				folder := v.Folder + " " + order
				paths, err := sourceFiles(filepath.Join(cfg.Data.BaseDir, folder))
				if err != nil {
					return err
				}
				results := monthly.NormalizeAll(ctx, paths, v, params)
				batch := monthly.CollectBatch(folder, results)
				if err := monthly.ValidateCoverage(folder, batch.Files, expected); err != nil {
					return err
				}
				batches = append(batches, batch)
			}
			tables = append(tables, monthly.Consolidate(v, batches, cfg.Data.KeyColumns))
		}

		master := monthly.MergeVariables(cfg.Data.KeyColumns, tables...)
		if err := report.WriteMaster(master, cfg.Consolidate.OutDir); err != nil {
			return err
		}
		zap.L().Info("consolidation complete",
			zap.Int("variables", len(tables)),
			zap.Int("rows", master.NumRows()),
			zap.Int("months", len(expected)),
		)
		return nil
	},
}

func expectedMonths() ([]canonical.YearMonth, error) {
	from, err := canonical.ParseYearMonth(cfg.Consolidate.MonthsFrom)
	if err != nil {
		return nil, err
	}
	to, err := canonical.ParseYearMonth(cfg.Consolidate.MonthsTo)
	if err != nil {
		return nil, err
	}
	return canonical.MonthRange(from, to)
}

func sourceFiles(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	if err != nil {
		return nil, eris.Wrapf(err, "glob %s", dir)
	}
	if len(paths) == 0 {
		return nil, eris.Errorf("no .xlsx files in %s", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

func init() {
	rootCmd.AddCommand(consolidateCmd)
}
