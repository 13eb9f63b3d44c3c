package monthly

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// unitPriority is the fixed unit-of-measure preference for quantity
// conflicts. Units outside the list rank below every listed unit.
var unitPriority = []string{"number", "kilograms"}

// ResolveUnits collapses same-key rows that disagree on unit of measure into
// exactly one row per key. The policy is deterministic:
//
//  1. rows with a non-zero value are preferred; the full group is the
//     candidate pool only when every row is zero,
//  2. within the pool, the highest-priority unit wins ("number", then
//     "kilograms"),
//  3. otherwise the pool's first row in source order wins.
//
// Source row order is preserved throughout, so re-running on the output
// (one row per key) returns it unchanged. Discarded alternatives are logged
// for audit. Non-quantity files pass through untouched.
func ResolveUnits(mf *MonthFile) *MonthFile {
	if !mf.Variable.Quantity || len(mf.Rows) == 0 {
		return mf
	}
	log := zap.L().With(
		zap.String("variable", mf.Variable.Name),
		zap.String("period", mf.Period().String()),
	)

	groups := make(map[string][]Row)
	var order []string
	for _, row := range mf.Rows {
		id := strings.Join(row.Key, "\x1f")
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], row)
	}

	out := &MonthFile{
		Variable: mf.Variable,
		Year:     mf.Year,
		Month:    mf.Month,
		Path:     mf.Path,
		Rows:     make([]Row, 0, len(order)),
	}
	conflicts := 0
	for _, id := range order {
		group := groups[id]
		if len(group) == 1 {
			out.Rows = append(out.Rows, group[0])
			continue
		}
		conflicts++
		win := pickUnitRow(group)
		out.Rows = append(out.Rows, group[win])
		for i, row := range group {
			if i != win {
				log.Info("discarded conflicting unit row",
					zap.Strings("key", row.Key),
					zap.String("unit", row.Unit),
					zap.String("value", row.Value),
					zap.String("kept_unit", group[win].Unit),
				)
			}
		}
	}
	if conflicts > 0 {
		log.Info("resolved unit-of-measure conflicts", zap.Int("keys", conflicts))
	}
	return out
}

// pickUnitRow returns the index within group of the winning row.
func pickUnitRow(group []Row) int {
	pool := make([]int, 0, len(group))
	for i, row := range group {
		if v, err := strconv.ParseFloat(strings.TrimSpace(row.Value), 64); err == nil && v != 0 {
			pool = append(pool, i)
		}
	}
	if len(pool) == 0 {
		for i := range group {
			pool = append(pool, i)
		}
	}

	for _, unit := range unitPriority {
		for _, i := range pool {
			if strings.EqualFold(strings.TrimSpace(group[i].Unit), unit) {
				return i
			}
		}
	}
	return pool[0]
}
