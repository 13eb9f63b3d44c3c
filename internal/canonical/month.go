package canonical

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Month is a calendar month, 1..12. The canonical string form is the
// three-letter English abbreviation ("Jan").
type Month int

var monthAbbrs = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

var monthFull = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Valid reports whether m is in 1..12.
func (m Month) Valid() bool { return m >= 1 && m <= 12 }

// Abbr returns the three-letter abbreviation, or "Unk" for invalid months.
func (m Month) Abbr() string {
	if !m.Valid() {
		return "Unk"
	}
	return monthAbbrs[m-1]
}

func (m Month) String() string { return m.Abbr() }

// ParseMonth parses a month name, accepting full names and abbreviations in
// any case. The official export uses full names; the master grammar uses
// abbreviations.
func ParseMonth(s string) (Month, bool) {
	s = strings.TrimSpace(s)
	for i := range monthAbbrs {
		if strings.EqualFold(s, monthAbbrs[i]) || strings.EqualFold(s, monthFull[i]) {
			return Month(i + 1), true
		}
	}
	return 0, false
}

// MonthIndex returns the 1..12 ordinal of a month name for sorting.
// Unrecognized names return 0 and sort first.
func MonthIndex(s string) int {
	if m, ok := ParseMonth(s); ok {
		return int(m)
	}
	return 0
}

// YearMonth is one reporting period.
type YearMonth struct {
	Year  int
	Month Month
}

func (ym YearMonth) String() string {
	return strconv.Itoa(ym.Year) + "-" + ym.Month.Abbr()
}

// Index returns a totally ordered period index for sorting and range math.
func (ym YearMonth) Index() int { return ym.Year*12 + int(ym.Month) - 1 }

// ParseYearMonth parses the configuration form "YYYY-MM".
func ParseYearMonth(s string) (YearMonth, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return YearMonth{}, eris.Errorf("canonical: bad period %q, want YYYY-MM", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return YearMonth{}, eris.Errorf("canonical: bad year in period %q", s)
	}
	mn, err := strconv.Atoi(parts[1])
	if err != nil || !Month(mn).Valid() {
		return YearMonth{}, eris.Errorf("canonical: bad month in period %q", s)
	}
	return YearMonth{Year: year, Month: Month(mn)}, nil
}

// MonthRange expands the inclusive contiguous range from..to.
func MonthRange(from, to YearMonth) ([]YearMonth, error) {
	if from.Index() > to.Index() {
		return nil, eris.Errorf("canonical: period range %s..%s is inverted", from, to)
	}
	var out []YearMonth
	for i := from.Index(); i <= to.Index(); i++ {
		out = append(out, YearMonth{Year: i / 12, Month: Month(i%12 + 1)})
	}
	return out, nil
}
