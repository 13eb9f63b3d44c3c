// Package sheet provides the spreadsheet access layer: raw sheet reads,
// key/value metadata sheets, and header-row detection for data sheets whose
// real header sits below a variable number of junk rows.
package sheet

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Options configures a sheet read.
type Options struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipCols   []int  // zero-based column indexes dropped at read time
}

// Read reads one sheet of an XLSX file into string rows.
func Read(path string, opts Options) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sheet: open %s", path)
	}
	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	skip := make(map[int]struct{}, len(opts.SkipCols))
	for _, c := range opts.SkipCols {
		skip[c] = struct{}{}
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, 0, len(row.Cells))
		for j, cell := range row.Cells {
			if _, drop := skip[j]; drop {
				continue
			}
			cells = append(cells, cell.String())
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// SheetNames returns the workbook's sheet names in file order.
func SheetNames(path string) ([]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sheet: open %s", path)
	}
	names := make([]string, len(f.Sheets))
	for i, s := range f.Sheets {
		names[i] = s.Name
	}
	return names, nil
}

func getSheet(f *xlsx.File, opts Options) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("sheet: %q not found", opts.SheetName)
		}
		return sheet, nil
	}
	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("sheet: index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

// Metadata is the key/value block from a metadata sheet: column A holds keys,
// column B values.
type Metadata map[string]string

// ReadMetadata reads sheet 0 of the file as a key/value metadata block.
func ReadMetadata(path string) (Metadata, error) {
	rows, err := Read(path, Options{SheetIndex: 0})
	if err != nil {
		return nil, err
	}
	md := make(Metadata, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		key := strings.TrimSpace(row[0])
		if key == "" {
			continue
		}
		md[key] = strings.TrimSpace(row[1])
	}
	return md, nil
}

// Get returns the trimmed value for key, or "" when absent.
func (m Metadata) Get(key string) string { return m[key] }

// FindHeader scans the first scanRows rows for one containing the anchor
// column name (substring match, case- and whitespace-insensitive) and
// returns its index. Returns -1 when the anchor is never found; that is a
// per-file skip condition for callers, not an error.
func FindHeader(rows [][]string, anchor string, scanRows int) int {
	anchor = strings.ToLower(strings.TrimSpace(anchor))
	if scanRows > len(rows) {
		scanRows = len(rows)
	}
	for i := 0; i < scanRows; i++ {
		for _, cell := range rows[i] {
			if strings.Contains(strings.ToLower(strings.TrimSpace(cell)), anchor) {
				return i
			}
		}
	}
	return -1
}

// Promote turns rows[headerIdx] into trimmed column names and returns them
// with the data rows below it.
func Promote(rows [][]string, headerIdx int) (header []string, data [][]string) {
	header = make([]string, len(rows[headerIdx]))
	for i, cell := range rows[headerIdx] {
		header[i] = strings.TrimSpace(cell)
	}
	return header, rows[headerIdx+1:]
}

// ColumnIndex maps trimmed column names to positions. Later duplicates do
// not displace earlier columns.
func ColumnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	return idx
}

// Cell returns the trimmed cell at col, tolerating ragged rows.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
