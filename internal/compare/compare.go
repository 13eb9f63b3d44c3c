// Package compare joins the local and official canonical datasets, measures
// their disagreement, and distills the result into a discrepancy report.
package compare

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/trade-cli/internal/canonical"
)

// Membership of a comparison entry in the two datasets.
const (
	TagBoth         = "both"
	TagOfficialOnly = "official_only"
	TagYoursOnly    = "yours_only"
)

// Entry is one fully outer-joined comparison cell. A side that lacks the key
// contributes 0 to the arithmetic but keeps its membership tag, so a missing
// record and a genuine zero stay distinguishable.
type Entry struct {
	Country  string
	Year     int32
	Month    string
	Variable string
	Official float64
	Yours    float64
	Diff     float64 // Yours - Official
	AbsDiff  float64
	PctDiff  float64 // NaN when Official is 0
	Tag      string
}

// Summary renders the entry as a one-line human-readable finding.
func (e Entry) Summary() string {
	switch e.Tag {
	case TagOfficialOnly:
		return fmt.Sprintf("[MISSING] %s %s %d %s: Official has %.2f but your data is missing",
			e.Country, e.Month, e.Year, e.Variable, e.Official)
	case TagYoursOnly:
		return fmt.Sprintf("[EXTRA] %s %s %d %s: You have %.2f but official data is missing",
			e.Country, e.Month, e.Year, e.Variable, e.Yours)
	default:
		return fmt.Sprintf("%s %s %d %s: Official=%.2f, Yours=%.2f, Diff=%.2f",
			e.Country, e.Month, e.Year, e.Variable, e.Official, e.Yours, e.Diff)
	}
}

type joinCell struct {
	official, yours     float64
	inOfficial, inYours bool
}

// Compare full-outer-joins the two datasets on the canonical key. Both inputs
// are aggregated long forms, so each key appears at most once per side; any
// residual duplicates sum.
func Compare(yours, official []canonical.Record) []Entry {
	cells := make(map[canonical.Key]*joinCell, len(official))
	get := func(k canonical.Key) *joinCell {
		c, ok := cells[k]
		if !ok {
			c = &joinCell{}
			cells[k] = c
		}
		return c
	}
	for _, r := range official {
		c := get(r.Key())
		c.official += r.Value
		c.inOfficial = true
	}
	for _, r := range yours {
		c := get(r.Key())
		c.yours += r.Value
		c.inYours = true
	}

	entries := make([]Entry, 0, len(cells))
	for k, c := range cells {
		e := Entry{
			Country:  k.Country,
			Year:     k.Year,
			Month:    k.Month,
			Variable: k.Variable,
			Official: c.official,
			Yours:    c.yours,
			Diff:     c.yours - c.official,
			Tag:      membership(c),
		}
		e.AbsDiff = math.Abs(e.Diff)
		e.PctDiff = math.NaN()
		if e.Official != 0 {
			e.PctDiff = e.Diff / e.Official * 100
		}
		entries = append(entries, e)
	}
	sortByKey(entries)

	var both, officialOnly, yoursOnly int
	for _, e := range entries {
		switch e.Tag {
		case TagBoth:
			both++
		case TagOfficialOnly:
			officialOnly++
		case TagYoursOnly:
			yoursOnly++
		}
	}
	zap.L().Info("compared datasets",
		zap.Int("entries", len(entries)),
		zap.Int("in_both", both),
		zap.Int("official_only", officialOnly),
		zap.Int("yours_only", yoursOnly),
	)
	return entries
}

func membership(c *joinCell) string {
	switch {
	case c.inOfficial && c.inYours:
		return TagBoth
	case c.inOfficial:
		return TagOfficialOnly
	default:
		return TagYoursOnly
	}
}

func sortByKey(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if mi, mj := canonical.MonthIndex(a.Month), canonical.MonthIndex(b.Month); mi != mj {
			return mi < mj
		}
		return a.Variable < b.Variable
	})
}
