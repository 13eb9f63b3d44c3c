// Package report writes the pipeline's artifacts: the consolidated master
// table in three formats, the per-variable summary workbook, the processed
// canonical CSVs, and the validation workbook.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/zap"

	"github.com/sells-group/trade-cli/internal/wide"
)

// MasterBase is the artifact base name of the consolidated master table.
const MasterBase = "master_trade_data_final"

// WriteMaster writes the master table to outDir as Parquet, XLSX and CSV.
// Formats fail independently: a locked spreadsheet must not take down the
// Parquet export. An error comes back only when every format failed.
func WriteMaster(t *wide.Table, outDir string) error {
	type format struct {
		name  string
		path  string
		write func(*wide.Table, string) error
	}
	formats := []format{
		{"parquet", filepath.Join(outDir, MasterBase+".parquet"), writeMasterParquet},
		{"xlsx", filepath.Join(outDir, MasterBase+".xlsx"), writeMasterXLSX},
		{"csv", filepath.Join(outDir, MasterBase+".csv"), WriteMasterCSV},
	}

	failed := 0
	for _, f := range formats {
		if err := f.write(t, f.path); err != nil {
			failed++
			zap.L().Warn("failed to write master format",
				zap.String("format", f.name),
				zap.String("path", f.path),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("wrote master table",
			zap.String("format", f.name),
			zap.String("path", f.path),
			zap.Int("rows", t.NumRows()),
			zap.Int("columns", len(t.KeyCols)+len(t.Columns())),
		)
	}
	if failed == len(formats) {
		return eris.Errorf("report: all master formats failed to write to %s", outDir)
	}
	return nil
}

func headerOf(t *wide.Table) []string {
	return append(append([]string{}, t.KeyCols...), t.Columns()...)
}

func recordOf(t *wide.Table, r *wide.Row) []string {
	rec := make([]string, 0, len(t.KeyCols)+len(t.Columns()))
	rec = append(rec, r.Key...)
	for _, col := range t.Columns() {
		v, _ := r.Get(col)
		rec = append(rec, v)
	}
	return rec
}

// writeMasterParquet writes the table with a schema derived from its header,
// every column a UTF8 string. The master's column set varies with the
// configured month range, so the schema cannot be a fixed struct.
func writeMasterParquet(t *wide.Table, path string) error {
	header := headerOf(t)
	md := make([]string, len(header))
	for i, col := range header {
		md[i] = fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8", sanitizeParquetName(col))
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	pw, err := writer.NewCSVWriter(md, fw, 2)
	if err != nil {
		_ = fw.Close()
		return eris.Wrap(err, "report: create parquet writer")
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, r := range t.SortedRows() {
		rec := recordOf(t, r)
		ptrs := make([]*string, len(rec))
		for i := range rec {
			ptrs[i] = &rec[i]
		}
		if err := pw.WriteString(ptrs); err != nil {
			_ = fw.Close()
			return eris.Wrap(err, "report: write parquet row")
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return eris.Wrap(err, "report: finalize parquet")
	}
	return eris.Wrapf(fw.Close(), "report: close %s", path)
}

// Parquet column names reject spaces; the CSV and XLSX artifacts keep the
// original header verbatim.
func sanitizeParquetName(col string) string {
	return strings.ReplaceAll(col, " ", "_")
}

func writeMasterXLSX(t *wide.Table, path string) error {
	f := xlsx.NewFile()
	sh, err := f.AddSheet("Master")
	if err != nil {
		return eris.Wrap(err, "report: add master sheet")
	}
	writeRow(sh, headerOf(t))
	for _, r := range t.SortedRows() {
		writeRow(sh, recordOf(t, r))
	}
	return eris.Wrapf(f.Save(path), "report: save %s", path)
}

func writeRow(sh *xlsx.Sheet, cells []string) {
	row := sh.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

// WriteMasterCSV writes the table as CSV with key columns first.
func WriteMasterCSV(t *wide.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	w := csv.NewWriter(f)
	if err := w.Write(headerOf(t)); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "report: write csv header")
	}
	for _, r := range t.SortedRows() {
		if err := w.Write(recordOf(t, r)); err != nil {
			_ = f.Close()
			return eris.Wrap(err, "report: write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "report: flush csv")
	}
	return eris.Wrapf(f.Close(), "report: close %s", path)
}

// ReadMasterCSV reads a master CSV back into a wide table. Every configured
// key column must be present in the header; all other columns load as value
// columns.
func ReadMasterCSV(path string, keyCols []string) (*wide.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "report: open %s", path)
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = -1
	rows, err := rd.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "report: read %s", path)
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("report: %s is empty", path)
	}

	header := rows[0]
	keyPos := make([]int, len(keyCols))
	isKey := make(map[int]bool, len(keyCols))
	for i, kc := range keyCols {
		pos := -1
		for j, col := range header {
			if col == kc {
				pos = j
				break
			}
		}
		if pos == -1 {
			return nil, eris.Errorf("report: %s has no key column %q", path, kc)
		}
		keyPos[i] = pos
		isKey[pos] = true
	}

	t := wide.New(keyCols...)
	for _, rec := range rows[1:] {
		key := make([]string, len(keyPos))
		for i, pos := range keyPos {
			if pos < len(rec) {
				key[i] = rec[pos]
			}
		}
		for j, col := range header {
			if isKey[j] || j >= len(rec) {
				continue
			}
			t.Set(key, col, rec[j])
		}
	}
	return t, nil
}
