// Package monthly turns one source spreadsheet per (variable, month) into a
// normalized table, resolves quantity unit-of-measure conflicts, validates
// month coverage per batch, and consolidates batches into wide tables.
package monthly

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/trade-cli/internal/canonical"
	"github.com/sells-group/trade-cli/internal/config"
	"github.com/sells-group/trade-cli/internal/sheet"
)

// Quantity data sheets carry a discardable intermediate in column E; it is
// skipped at read time rather than loaded and dropped.
const quantitySkipCol = 4

// Row is one normalized observation at the fine grain.
type Row struct {
	Key   []string // values aligned with the configured key columns
	Value string   // raw cell, coerced to numeric only at canonicalization
	Unit  string   // unit of measure, quantity files only
}

// MonthFile is the normalized form of one source spreadsheet: one reporting
// month of one variable.
type MonthFile struct {
	Variable config.Variable
	Year     int
	Month    canonical.Month
	Path     string
	Rows     []Row
}

// Period returns the file's reporting period.
func (f *MonthFile) Period() canonical.YearMonth {
	return canonical.YearMonth{Year: f.Year, Month: f.Month}
}

// Params carries the normalization knobs from configuration.
type Params struct {
	Anchor     string
	KeyColumns []string
	ScanRows   int
}

// FileResult is the structured outcome of normalizing one file. Exactly one
// of File, SkipReason, Err is meaningful: a parsed table, a recognized
// skip condition, or a read failure. Skips and failures both exclude the
// file from the merge, but they stay distinguishable in logs and counts.
type FileResult struct {
	Path       string
	File       *MonthFile
	SkipReason string
	Err        error
}

// OK reports whether the file produced a usable table.
func (r FileResult) OK() bool { return r.File != nil }

func skip(path, reason string) FileResult {
	return FileResult{Path: path, SkipReason: reason}
}

// Normalize parses one source spreadsheet: metadata from sheet 0 names the
// variable, year and start month; sheet 1 holds the data block whose header
// row is located by the anchor column. The value column is renamed into the
// master grammar; quantity files yield a (value, unit) column pair.
func Normalize(path string, v config.Variable, p Params) FileResult {
	md, err := sheet.ReadMetadata(path)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}

	year, _ := strconv.Atoi(md.Get("Years"))
	monthNum, _ := strconv.Atoi(md.Get("Start Month"))
	month := canonical.Month(monthNum)
	if year == 0 || !month.Valid() {
		return skip(path, fmt.Sprintf("metadata has no usable Years/Start Month (%q, %q)",
			md.Get("Years"), md.Get("Start Month")))
	}

	if reported := md.Get("Data To Report"); reported != "" &&
		!strings.EqualFold(firstWord(reported), firstWord(v.Folder)) {
		zap.L().Warn("metadata variable does not match folder",
			zap.String("path", path),
			zap.String("reported", reported),
			zap.String("folder", v.Folder),
		)
	}

	opts := sheet.Options{SheetIndex: 1}
	if v.Quantity {
		opts.SkipCols = []int{quantitySkipCol}
	}
	rows, err := sheet.Read(path, opts)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	if len(rows) == 0 {
		return skip(path, "data sheet is empty")
	}

	headerIdx := sheet.FindHeader(rows, p.Anchor, p.ScanRows)
	if headerIdx == -1 {
		return skip(path, fmt.Sprintf("header anchor %q not found in first %d rows", p.Anchor, p.ScanRows))
	}
	header, data := sheet.Promote(rows, headerIdx)
	colIdx := sheet.ColumnIndex(header)

	keyPos := make([]int, len(p.KeyColumns))
	for i, kc := range p.KeyColumns {
		pos, ok := colIdx[kc]
		if !ok {
			return skip(path, fmt.Sprintf("key column %q missing from header", kc))
		}
		keyPos[i] = pos
	}

	valuePos, unitPos, reason := valueColumns(header, v)
	if reason != "" {
		return skip(path, reason)
	}

	mf := &MonthFile{Variable: v, Year: year, Month: month, Path: path}
	for _, raw := range data {
		key := make([]string, len(keyPos))
		empty := true
		for i, pos := range keyPos {
			key[i] = sheet.Cell(raw, pos)
			if key[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		row := Row{Key: key, Value: sheet.Cell(raw, valuePos)}
		if unitPos >= 0 {
			row.Unit = sheet.Cell(raw, unitPos)
		}
		mf.Rows = append(mf.Rows, row)
	}

	return FileResult{Path: path, File: mf}
}

// valueColumns picks the value (and for quantity, unit) column positions.
// Quantity sheets name their value column with a "_to_" period span and ship
// suppressed companions that are ignored; other variables report a single
// month, whose value sits in the last named column.
func valueColumns(header []string, v config.Variable) (valuePos, unitPos int, skipReason string) {
	if !v.Quantity {
		for i := len(header) - 1; i >= 0; i-- {
			if header[i] != "" {
				return i, -1, ""
			}
		}
		return 0, -1, "no value column found"
	}

	valuePos, unitPos = -1, -1
	for i, name := range header {
		if strings.HasSuffix(name, "_Suppressed") {
			continue
		}
		lower := strings.ToLower(name)
		if valuePos == -1 && strings.Contains(name, "_to_") {
			valuePos = i
		}
		if unitPos == -1 && strings.Contains(lower, "unit") {
			unitPos = i
		}
	}
	if valuePos == -1 {
		return 0, -1, "quantity value column (containing \"_to_\") not found"
	}
	if unitPos == -1 {
		return 0, -1, "unit of measure column not found"
	}
	return valuePos, unitPos, ""
}

func firstWord(s string) string {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
