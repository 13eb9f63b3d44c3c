package compare

import (
	"sort"

	"go.uber.org/zap"
)

// Stats summarizes the absolute differences of the flagged mismatches.
type Stats struct {
	Mean   float64
	Median float64
	Max    float64
}

// VariableBreakdown aggregates mismatches of one variable.
type VariableBreakdown struct {
	Variable    string
	Count       int
	SumDiff     float64
	MeanDiff    float64
	MeanAbsDiff float64
	MaxAbsDiff  float64
}

// CountryBreakdown aggregates mismatches of one country.
type CountryBreakdown struct {
	Country     string
	Count       int
	SumDiff     float64
	MeanAbsDiff float64
}

// Report is the distilled outcome of a comparison run under one tolerance.
type Report struct {
	Tolerance  float64
	Total      int // entries compared
	Mismatches []Entry
	Stats      Stats
	ByVariable []VariableBreakdown
	ByCountry  []CountryBreakdown

	OfficialOnly int
	YoursOnly    int
}

// Clean reports whether the run found no discrepancies above tolerance.
func (r *Report) Clean() bool { return len(r.Mismatches) == 0 }

// Matches returns the number of entries within tolerance.
func (r *Report) Matches() int { return r.Total - len(r.Mismatches) }

// BuildReport filters entries to those whose absolute difference strictly
// exceeds tolerance and aggregates them. An entry exactly at tolerance is a
// match. Mismatches come back largest first; ties fall back to key order so
// the report is stable run to run.
func BuildReport(entries []Entry, tolerance float64) *Report {
	r := &Report{Tolerance: tolerance, Total: len(entries)}
	for _, e := range entries {
		if e.AbsDiff > tolerance {
			r.Mismatches = append(r.Mismatches, e)
		}
		switch e.Tag {
		case TagOfficialOnly:
			r.OfficialOnly++
		case TagYoursOnly:
			r.YoursOnly++
		}
	}
	sort.SliceStable(r.Mismatches, func(i, j int) bool {
		return r.Mismatches[i].AbsDiff > r.Mismatches[j].AbsDiff
	})

	if len(r.Mismatches) == 0 {
		zap.L().Info("no discrepancies above tolerance",
			zap.Float64("tolerance", tolerance),
			zap.Int("entries", r.Total),
		)
		return r
	}

	r.Stats = absStats(r.Mismatches)
	r.ByVariable = byVariable(r.Mismatches)
	r.ByCountry = byCountry(r.Mismatches)

	zap.L().Info("built validation report",
		zap.Float64("tolerance", tolerance),
		zap.Int("entries", r.Total),
		zap.Int("mismatches", len(r.Mismatches)),
		zap.Float64("max_abs_diff", r.Stats.Max),
	)
	return r
}

func absStats(mismatches []Entry) Stats {
	// Sorted descending by AbsDiff already.
	var sum float64
	for _, e := range mismatches {
		sum += e.AbsDiff
	}
	n := len(mismatches)
	median := mismatches[n/2].AbsDiff
	if n%2 == 0 {
		median = (mismatches[n/2-1].AbsDiff + mismatches[n/2].AbsDiff) / 2
	}
	return Stats{
		Mean:   sum / float64(n),
		Median: median,
		Max:    mismatches[0].AbsDiff,
	}
}

func byVariable(mismatches []Entry) []VariableBreakdown {
	agg := make(map[string]*VariableBreakdown)
	var order []string
	for _, e := range mismatches {
		b, ok := agg[e.Variable]
		if !ok {
			b = &VariableBreakdown{Variable: e.Variable}
			agg[e.Variable] = b
			order = append(order, e.Variable)
		}
		b.Count++
		b.SumDiff += e.Diff
		b.MeanAbsDiff += e.AbsDiff
		if e.AbsDiff > b.MaxAbsDiff {
			b.MaxAbsDiff = e.AbsDiff
		}
	}
	sort.Strings(order)
	out := make([]VariableBreakdown, 0, len(order))
	for _, v := range order {
		b := agg[v]
		b.MeanDiff = b.SumDiff / float64(b.Count)
		b.MeanAbsDiff /= float64(b.Count)
		out = append(out, *b)
	}
	return out
}

func byCountry(mismatches []Entry) []CountryBreakdown {
	agg := make(map[string]*CountryBreakdown)
	var order []string
	for _, e := range mismatches {
		b, ok := agg[e.Country]
		if !ok {
			b = &CountryBreakdown{Country: e.Country}
			agg[e.Country] = b
			order = append(order, e.Country)
		}
		b.Count++
		b.SumDiff += e.Diff
		b.MeanAbsDiff += e.AbsDiff
	}
	out := make([]CountryBreakdown, 0, len(order))
	for _, c := range order {
		b := agg[c]
		b.MeanAbsDiff /= float64(b.Count)
		out = append(out, *b)
	}
	// Most mismatched countries first.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Country < out[j].Country
	})
	return out
}
