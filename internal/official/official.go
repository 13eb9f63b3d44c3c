// Package official loads the official summary workbook: a metadata sheet
// naming the data sheets, then one sheet per variable with country rows and
// one column per month. The output is the same canonical long form the local
// master data melts into, so the comparator sees both sides identically.
package official

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/trade-cli/internal/canonical"
	"github.com/sells-group/trade-cli/internal/config"
	"github.com/sells-group/trade-cli/internal/sheet"
)

// The data block header sits on the third row of every data sheet.
const headerRow = 2

// Descriptive columns that carry no monthly values.
var droppedColumns = []string{"Quantity Description", "Data Type"}

// Load reads the official workbook at path and returns aggregated canonical
// records. Sheet names come from the metadata sheet's "Data To Report" entry,
// comma-separated; each listed sheet must exist. Sheets whose name is not in
// the catalog are kept under the variable name "unknown" so they surface in
// the comparison instead of disappearing.
func Load(path string, cat config.Catalog) ([]canonical.Record, error) {
	md, err := sheet.ReadMetadata(path)
	if err != nil {
		return nil, err
	}
	reported := md.Get("Data To Report")
	if reported == "" {
		return nil, eris.Errorf("official: %s metadata has no \"Data To Report\" entry", path)
	}

	var sheetNames []string
	for _, name := range strings.Split(reported, ",") {
		if name = strings.TrimSpace(name); name != "" {
			sheetNames = append(sheetNames, name)
		}
	}
	zap.L().Info("loading official workbook",
		zap.String("path", path),
		zap.Strings("sheets", sheetNames),
	)

	var recs []canonical.Record
	for _, name := range sheetNames {
		sheetRecs, err := loadSheet(path, name, cat)
		if err != nil {
			return nil, err
		}
		recs = append(recs, sheetRecs...)
	}

	out := canonical.Aggregate(recs)
	zap.L().Info("loaded official data",
		zap.Int("records", len(out)),
		zap.Int("sheets", len(sheetNames)),
	)
	return out, nil
}

func loadSheet(path, name string, cat config.Catalog) ([]canonical.Record, error) {
	rows, err := sheet.Read(path, sheet.Options{SheetName: name})
	if err != nil {
		return nil, err
	}
	if len(rows) <= headerRow {
		return nil, eris.Errorf("official: sheet %q has no header row", name)
	}
	header, data := sheet.Promote(rows, headerRow)
	colIdx := sheet.ColumnIndex(header)

	countryPos, ok := colIdx["Country"]
	if !ok {
		return nil, eris.Errorf("official: sheet %q has no Country column", name)
	}
	yearPos, ok := colIdx["Year"]
	if !ok {
		return nil, eris.Errorf("official: sheet %q has no Year column", name)
	}

	variable := "unknown"
	if v, ok := cat.ByOfficialSheet(name); ok {
		variable = v.Name
	} else {
		zap.L().Warn("official sheet not in variable catalog",
			zap.String("sheet", name),
		)
	}

	// Every column that is not an id column and parses as a month name is a
	// value column. The export uses full month names.
	type monthCol struct {
		pos   int
		month canonical.Month
	}
	var monthCols []monthCol
	for pos, colName := range header {
		if pos == countryPos || pos == yearPos || colName == "" || isDropped(colName) {
			continue
		}
		m, ok := canonical.ParseMonth(colName)
		if !ok {
			zap.L().Warn("skipping unrecognized official column",
				zap.String("sheet", name),
				zap.String("column", colName),
			)
			continue
		}
		monthCols = append(monthCols, monthCol{pos: pos, month: m})
	}
	if len(monthCols) == 0 {
		return nil, eris.Errorf("official: sheet %q has no month columns", name)
	}

	var recs []canonical.Record
	dropped := 0
	for _, raw := range data {
		country := canonical.NormalizeCountry(sheet.Cell(raw, countryPos))
		year, yerr := strconv.Atoi(sheet.Cell(raw, yearPos))
		if country == "" || yerr != nil {
			dropped++
			continue
		}
		for _, mc := range monthCols {
			value, _ := strconv.ParseFloat(sheet.Cell(raw, mc.pos), 64)
			recs = append(recs, canonical.Record{
				Country:  country,
				Year:     int32(year),
				Month:    mc.month.Abbr(),
				Variable: variable,
				Value:    value,
			})
		}
	}
	if dropped > 0 {
		zap.L().Warn("dropped official rows with missing key fields",
			zap.String("sheet", name),
			zap.Int("rows", dropped),
		)
	}
	return recs, nil
}

func isDropped(colName string) bool {
	for _, d := range droppedColumns {
		if strings.EqualFold(colName, d) {
			return true
		}
	}
	return false
}
