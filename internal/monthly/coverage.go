package monthly

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/trade-cli/internal/canonical"
)

// ValidateCoverage checks that the periods carried by a batch's files are
// duplicate-free and exactly cover the expected contiguous month range.
// A violation is a structural failure of the source folder: the returned
// error names the folder and every missing, duplicated and unexpected
// month, and the caller must abort the whole run.
func ValidateCoverage(folder string, files []*MonthFile, expected []canonical.YearMonth) error {
	got := make(map[canonical.YearMonth]int, len(files))
	for _, f := range files {
		got[f.Period()]++
	}

	var missing, duplicate, unexpected []canonical.YearMonth
	want := make(map[canonical.YearMonth]struct{}, len(expected))
	for _, ym := range expected {
		want[ym] = struct{}{}
		if got[ym] == 0 {
			missing = append(missing, ym)
		}
	}
	for ym, n := range got {
		if n > 1 {
			duplicate = append(duplicate, ym)
		}
		if _, ok := want[ym]; !ok {
			unexpected = append(unexpected, ym)
		}
	}

	if len(missing) == 0 && len(duplicate) == 0 && len(unexpected) == 0 {
		return nil
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing "+formatPeriods(missing))
	}
	if len(duplicate) > 0 {
		parts = append(parts, "duplicate "+formatPeriods(duplicate))
	}
	if len(unexpected) > 0 {
		parts = append(parts, "unexpected "+formatPeriods(unexpected))
	}
	return eris.Errorf("monthly: folder %q fails month coverage: %s", folder, strings.Join(parts, "; "))
}

func formatPeriods(periods []canonical.YearMonth) string {
	sort.Slice(periods, func(i, j int) bool { return periods[i].Index() < periods[j].Index() })
	names := make([]string, len(periods))
	for i, ym := range periods {
		names[i] = ym.String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}
