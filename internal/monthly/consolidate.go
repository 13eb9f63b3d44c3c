package monthly

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/trade-cli/internal/canonical"
	"github.com/sells-group/trade-cli/internal/config"
	"github.com/sells-group/trade-cli/internal/wide"
)

// Batch is one normalized file batch ("ascending" or "descending") for one
// variable.
type Batch struct {
	Folder string
	Files  []*MonthFile
}

// CollectBatch gathers the usable files out of a batch's results, resolving
// quantity unit conflicts on each.
func CollectBatch(folder string, results []FileResult) Batch {
	b := Batch{Folder: folder}
	for _, r := range results {
		if !r.OK() {
			continue
		}
		b.Files = append(b.Files, ResolveUnits(r.File))
	}
	return b
}

// BuildBatchTable outer-joins a batch's monthly tables on the entity key into
// one wide table, one value column per month (plus a unit column per month
// for the quantity variable). Columns are ordered chronologically.
func BuildBatchTable(b Batch, v config.Variable, keyCols []string) *wide.Table {
	files := make([]*MonthFile, len(b.Files))
	copy(files, b.Files)
	sort.Slice(files, func(i, j int) bool {
		return files[i].Period().Index() < files[j].Period().Index()
	})

	t := wide.New(keyCols...)
	for _, f := range files {
		valueCol := canonical.MasterColumn(v.Prefix, f.Month, f.Year)
		unitCol := ""
		if v.Quantity {
			unitCol = canonical.MasterColumn(v.UnitPrefix(), f.Month, f.Year)
		}
		for _, row := range f.Rows {
			t.Set(row.Key, valueCol, row.Value)
			if unitCol != "" {
				t.Set(row.Key, unitCol, row.Unit)
			}
		}
	}
	return t
}

// Consolidate stacks a variable's batch tables in the configured batch
// order: for every key and month, the first batch that has a value wins.
func Consolidate(v config.Variable, batches []Batch, keyCols []string) *wide.Table {
	tables := make([]*wide.Table, len(batches))
	for i, b := range batches {
		tables[i] = BuildBatchTable(b, v, keyCols)
	}
	out := wide.StackFirst(tables...)
	zap.L().Info("consolidated variable",
		zap.String("variable", v.Name),
		zap.Int("batches", len(batches)),
		zap.Int("rows", out.NumRows()),
		zap.Int("columns", len(out.Columns())),
	)
	return out
}

// MergeVariables outer-joins the per-variable wide tables on the entity key
// into the master table. Unit columns are excluded, and missing numeric
// cells are filled with 0; key columns are never fill-defaulted.
func MergeVariables(keyCols []string, tables ...*wide.Table) *wide.Table {
	if len(tables) == 0 {
		return wide.New(keyCols...)
	}
	master := wide.StackFirst(tables...)
	master.Drop(canonical.IsUnitColumn)
	master.Fill("0")
	zap.L().Info("merged variables into master table",
		zap.Int("variables", len(tables)),
		zap.Int("rows", master.NumRows()),
		zap.Int("columns", len(master.Columns())),
	)
	return master
}
