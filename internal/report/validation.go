package report

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/trade-cli/internal/compare"
)

// WriteValidation writes the validation workbook: a Summary sheet with run
// identification and headline counts, every flagged mismatch, and the
// per-variable and per-country breakdowns. A clean run still produces the
// workbook so downstream consumers always find one.
func WriteValidation(path string, r *compare.Report) error {
	runID := uuid.NewString()
	f := xlsx.NewFile()

	if err := addValidationSummary(f, r, runID); err != nil {
		return err
	}
	if err := addMismatchSheet(f, r); err != nil {
		return err
	}
	if err := addByVariableSheet(f, r); err != nil {
		return err
	}
	if err := addByCountrySheet(f, r); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	zap.L().Info("wrote validation workbook",
		zap.String("path", path),
		zap.String("run_id", runID),
		zap.Int("mismatches", len(r.Mismatches)),
	)
	return nil
}

func addValidationSummary(f *xlsx.File, r *compare.Report, runID string) error {
	sh, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}
	writeRow(sh, []string{"Metric", "Value"})
	rows := [][2]string{
		{"Run ID", runID},
		{"Run Time", time.Now().Format(time.RFC3339)},
		{"Tolerance", fmt.Sprintf("%.2f", r.Tolerance)},
		{"Total Records Compared", strconv.Itoa(r.Total)},
		{"Perfect Matches", strconv.Itoa(r.Matches())},
		{fmt.Sprintf("Mismatches (> $%v)", r.Tolerance), strconv.Itoa(len(r.Mismatches))},
		{"Records Only in Official", strconv.Itoa(r.OfficialOnly)},
		{"Records Only in Yours", strconv.Itoa(r.YoursOnly)},
	}
	if !r.Clean() {
		rows = append(rows,
			[2]string{"Average Abs Difference", fmt.Sprintf("%.2f", r.Stats.Mean)},
			[2]string{"Median Abs Difference", fmt.Sprintf("%.2f", r.Stats.Median)},
			[2]string{"Maximum Difference", fmt.Sprintf("%.2f", r.Stats.Max)},
		)
	}
	for _, kv := range rows {
		writeRow(sh, kv[:])
	}
	return nil
}

func addMismatchSheet(f *xlsx.File, r *compare.Report) error {
	sh, err := f.AddSheet("All Mismatches")
	if err != nil {
		return eris.Wrap(err, "report: add mismatch sheet")
	}
	writeRow(sh, []string{
		"Summary", "Country", "Year", "Month", "Variable",
		"Official_Value", "Your_Value", "Difference", "Percent_Diff", "Source",
	})
	for _, e := range r.Mismatches {
		row := sh.AddRow()
		row.AddCell().SetString(e.Summary())
		row.AddCell().SetString(e.Country)
		row.AddCell().SetInt(int(e.Year))
		row.AddCell().SetString(e.Month)
		row.AddCell().SetString(e.Variable)
		row.AddCell().SetFloat(e.Official)
		row.AddCell().SetFloat(e.Yours)
		row.AddCell().SetFloat(e.Diff)
		// NaN marks an undefined percentage; render it empty.
		if math.IsNaN(e.PctDiff) {
			row.AddCell().SetString("")
		} else {
			row.AddCell().SetFloat(e.PctDiff)
		}
		row.AddCell().SetString(e.Tag)
	}
	return nil
}

func addByVariableSheet(f *xlsx.File, r *compare.Report) error {
	sh, err := f.AddSheet("By Variable")
	if err != nil {
		return eris.Wrap(err, "report: add by-variable sheet")
	}
	writeRow(sh, []string{
		"Variable", "Mismatch_Count", "Total_Difference", "Mean_Difference",
		"Avg_Abs_Difference", "Max_Abs_Difference",
	})
	for _, b := range r.ByVariable {
		row := sh.AddRow()
		row.AddCell().SetString(b.Variable)
		row.AddCell().SetInt(b.Count)
		row.AddCell().SetFloat(b.SumDiff)
		row.AddCell().SetFloat(b.MeanDiff)
		row.AddCell().SetFloat(b.MeanAbsDiff)
		row.AddCell().SetFloat(b.MaxAbsDiff)
	}
	return nil
}

func addByCountrySheet(f *xlsx.File, r *compare.Report) error {
	sh, err := f.AddSheet("By Country")
	if err != nil {
		return eris.Wrap(err, "report: add by-country sheet")
	}
	writeRow(sh, []string{"Country", "Mismatch_Count", "Total_Difference", "Avg_Abs_Difference"})
	for _, b := range r.ByCountry {
		row := sh.AddRow()
		row.AddCell().SetString(b.Country)
		row.AddCell().SetInt(b.Count)
		row.AddCell().SetFloat(b.SumDiff)
		row.AddCell().SetFloat(b.MeanAbsDiff)
	}
	return nil
}
