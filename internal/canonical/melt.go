package canonical

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/trade-cli/internal/wide"
)

// MeltStats reports what the melt kept and dropped.
type MeltStats struct {
	Columns        int // value columns melted
	SkippedColumns int // column names outside the grammar (incl. unit columns)
	Cells          int // cells contributing to the aggregation
	DroppedRows    int // rows dropped for a missing key component
}

// MeltMaster reshapes a master-grammar wide table into the canonical long
// form: parse (variable, month, year) out of each column name, coerce values
// to numbers (non-parseable → 0), normalize the country, drop rows missing
// any key component, then sum over (Country, Year, Month, Variable).
func MeltMaster(t *wide.Table) ([]Record, MeltStats) {
	log := zap.L().With(zap.String("grammar", GrammarMaster))

	countryIdx := 0
	for i, kc := range t.KeyCols {
		if strings.EqualFold(kc, "Country") {
			countryIdx = i
			break
		}
	}

	var stats MeltStats
	type col struct {
		name string
		t    Triple
	}
	var cols []col
	for _, name := range t.Columns() {
		if IsUnitColumn(name) {
			stats.SkippedColumns++
			continue
		}
		triple, ok := ParseMasterColumn(name)
		if !ok {
			stats.SkippedColumns++
			log.Warn("column name outside master grammar, skipping", zap.String("column", name))
			continue
		}
		cols = append(cols, col{name: name, t: triple})
	}
	stats.Columns = len(cols)

	var recs []Record
	for _, row := range t.Rows() {
		country := NormalizeCountry(row.Key[countryIdx])
		if country == "" {
			stats.DroppedRows++
			continue
		}
		for _, c := range cols {
			raw, ok := row.Get(c.name)
			if !ok {
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				value = 0
			}
			recs = append(recs, Record{
				Country:  country,
				Year:     int32(c.t.Year),
				Month:    c.t.Month.Abbr(),
				Variable: c.t.Variable,
				Value:    value,
			})
			stats.Cells++
		}
	}

	out := Aggregate(recs)
	log.Info("melted wide table to canonical form",
		zap.Int("columns", stats.Columns),
		zap.Int("skipped_columns", stats.SkippedColumns),
		zap.Int("cells", stats.Cells),
		zap.Int("dropped_rows", stats.DroppedRows),
		zap.Int("records", len(out)),
	)
	return out, stats
}
