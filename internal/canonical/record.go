// Package canonical implements the canonical long form: one row per
// (Country, Year, Month, Variable) with a single aggregated numeric value.
// This is the atomic unit the comparator operates on, for both locally
// consolidated data and the official reference export.
package canonical

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Record is one canonical observation. Month holds the three-letter
// abbreviation. The struct doubles as the serialization schema for the
// Parquet cache and CSV exports.
type Record struct {
	Country  string  `csv:"Country" parquet:"name=country, type=BYTE_ARRAY, convertedtype=UTF8"`
	Year     int32   `csv:"Year" parquet:"name=year, type=INT32"`
	Month    string  `csv:"Month" parquet:"name=month, type=BYTE_ARRAY, convertedtype=UTF8"`
	Variable string  `csv:"Variable" parquet:"name=variable, type=BYTE_ARRAY, convertedtype=UTF8"`
	Value    float64 `csv:"Value" parquet:"name=value, type=DOUBLE"`
}

// Key identifies the canonical grain of r.
type Key struct {
	Country  string
	Year     int32
	Month    string
	Variable string
}

// Key returns the canonical key of r.
func (r Record) Key() Key {
	return Key{Country: r.Country, Year: r.Year, Month: r.Month, Variable: r.Variable}
}

var titleCaser = cases.Title(language.English)

// NormalizeCountry trims and title-cases a country name so the two data
// sources key identically ("INDIA " and "india" both become "India").
func NormalizeCountry(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return titleCaser.String(s)
}

// Aggregate sums duplicate canonical keys and returns records sorted by
// (Country, Year, Month, Variable). Summation makes the result independent
// of input order and collapses any residual fine-grain duplication, e.g.
// multiple HTS codes under one country-month-variable.
func Aggregate(recs []Record) []Record {
	sums := make(map[Key]float64, len(recs))
	for _, r := range recs {
		sums[r.Key()] += r.Value
	}

	out := make([]Record, 0, len(sums))
	for k, v := range sums {
		out = append(out, Record{
			Country:  k.Country,
			Year:     k.Year,
			Month:    k.Month,
			Variable: k.Variable,
			Value:    v,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if mi, mj := MonthIndex(a.Month), MonthIndex(b.Month); mi != mj {
			return mi < mj
		}
		return a.Variable < b.Variable
	})
	return out
}
