package report

import (
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/trade-cli/internal/canonical"
)

// WriteSummary writes the per-country pivoted summary workbook: one sheet
// per variable, one row per (country, year), one column per month. Input is
// the aggregated canonical long form, so cell values are already summed.
func WriteSummary(path string, recs []canonical.Record) error {
	byVariable := make(map[string][]canonical.Record)
	var variables []string
	for _, r := range recs {
		if _, seen := byVariable[r.Variable]; !seen {
			variables = append(variables, r.Variable)
		}
		byVariable[r.Variable] = append(byVariable[r.Variable], r)
	}
	sort.Strings(variables)
	if len(variables) == 0 {
		return eris.New("report: no records to summarize")
	}

	f := xlsx.NewFile()
	for _, v := range variables {
		if err := addSummarySheet(f, v, byVariable[v]); err != nil {
			return err
		}
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	zap.L().Info("wrote summary workbook",
		zap.String("path", path),
		zap.Int("variables", len(variables)),
		zap.Int("records", len(recs)),
	)
	return nil
}

func addSummarySheet(f *xlsx.File, variable string, recs []canonical.Record) error {
	sh, err := f.AddSheet(variable)
	if err != nil {
		return eris.Wrapf(err, "report: add summary sheet %q", variable)
	}

	type pivotKey struct {
		Country string
		Year    int32
	}
	cells := make(map[pivotKey]map[string]float64)
	var keys []pivotKey
	for _, r := range recs {
		pk := pivotKey{Country: r.Country, Year: r.Year}
		row, ok := cells[pk]
		if !ok {
			row = make(map[string]float64)
			cells[pk] = row
			keys = append(keys, pk)
		}
		row[r.Month] += r.Value
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Country != keys[j].Country {
			return keys[i].Country < keys[j].Country
		}
		return keys[i].Year < keys[j].Year
	})

	header := []string{"Country", "Year"}
	for m := canonical.Month(1); m <= 12; m++ {
		header = append(header, m.Abbr())
	}
	writeRow(sh, header)

	for _, pk := range keys {
		row := sh.AddRow()
		row.AddCell().SetString(pk.Country)
		row.AddCell().SetString(strconv.Itoa(int(pk.Year)))
		for m := canonical.Month(1); m <= 12; m++ {
			row.AddCell().SetFloat(cells[pk][m.Abbr()])
		}
	}
	return nil
}
