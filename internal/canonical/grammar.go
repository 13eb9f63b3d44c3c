package canonical

import (
	"fmt"
	"strconv"
	"strings"
)

// The master wide table encodes (variable, month, year) in its column names.
// The grammar is versioned so a future layout change is a new parser, not an
// edit to string-splitting scattered through the pipeline.
//
// GrammarMaster ("master/v1"): <Variable>_<Mon3>_<Year>, where Variable may
// itself contain underscores (Quantity_Value). The parsed variable is the
// leading tokens joined back with underscores and lower-cased, so
// "Quantity_Value_Jan_2024" → ("quantity_value", Jan, 2024).
const GrammarMaster = "master/v1"

// Triple is the (variable, month, year) encoded in a master column name.
type Triple struct {
	Variable string
	Month    Month
	Year     int
}

// ParseMasterColumn parses a master-grammar column name. It returns ok=false
// for names that do not follow the grammar (key columns, stray headers);
// callers count and skip those rather than failing.
func ParseMasterColumn(name string) (Triple, bool) {
	parts := strings.Split(strings.TrimSpace(name), "_")
	if len(parts) < 3 {
		return Triple{}, false
	}
	year, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil || year < 1000 {
		return Triple{}, false
	}
	month, ok := ParseMonth(parts[len(parts)-2])
	if !ok {
		return Triple{}, false
	}
	variable := strings.ToLower(strings.Join(parts[:len(parts)-2], "_"))
	if variable == "" {
		return Triple{}, false
	}
	return Triple{Variable: variable, Month: month, Year: year}, true
}

// MasterColumn renders a master-grammar column name.
func MasterColumn(prefix string, m Month, year int) string {
	return fmt.Sprintf("%s_%s_%d", prefix, m.Abbr(), year)
}

// IsUnitColumn reports whether a master column carries a unit-of-measure
// rather than a value. Unit columns ride along for conflict auditing but are
// excluded from the master table and the melt.
func IsUnitColumn(name string) bool {
	t, ok := ParseMasterColumn(name)
	return ok && strings.HasSuffix(t.Variable, "_unit")
}
