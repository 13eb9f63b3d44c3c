package monthly

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/trade-cli/internal/wide"
)

var testKeyCols = []string{"Country", "HTS Number"}

func cellAt(tbl *wide.Table, key []string, col string) (string, bool) {
	row, ok := tbl.Lookup(key)
	if !ok {
		return "", false
	}
	return row.Get(col)
}

func TestNormalizeAll_MixedOutcomes(t *testing.T) {
	good := writeSourceFile(t, customsMeta("2024", "1"), [][]string{
		{"Country", "HTS Number", "Customs Value"},
		{"India", "0101", "100"},
	})
	skipped := writeSourceFile(t, customsMeta("", ""), [][]string{
		{"Country", "HTS Number", "Customs Value"},
	})

	results := NormalizeAll(context.Background(), []string{good, skipped, "missing.xlsx"}, customsVar(), testParams)
	require.Len(t, results, 3)

	assert.True(t, results[0].OK())
	assert.False(t, results[1].OK())
	assert.NotEmpty(t, results[1].SkipReason)
	assert.Error(t, results[2].Err)
}

func TestCollectBatch_KeepsOnlyUsableFiles(t *testing.T) {
	mf := quantityFile(
		Row{Key: []string{"India", "0101"}, Value: "0", Unit: "kilograms"},
		Row{Key: []string{"India", "0101"}, Value: "500", Unit: "number"},
	)
	results := []FileResult{
		{Path: "a.xlsx", File: mf},
		{Path: "b.xlsx", SkipReason: "data sheet is empty"},
		{Path: "c.xlsx", Err: assert.AnError},
	}

	b := CollectBatch("quantity 24-25 ascending", results)
	require.Len(t, b.Files, 1)
	// Unit conflicts are resolved on the way in.
	require.Len(t, b.Files[0].Rows, 1)
	assert.Equal(t, "number", b.Files[0].Rows[0].Unit)
}

func TestBuildBatchTable_ChronologicalColumns(t *testing.T) {
	feb := &MonthFile{Variable: customsVar(), Year: 2024, Month: 2, Rows: []Row{
		{Key: []string{"India", "0101"}, Value: "200"},
	}}
	jan := &MonthFile{Variable: customsVar(), Year: 2024, Month: 1, Rows: []Row{
		{Key: []string{"India", "0101"}, Value: "100"},
		{Key: []string{"China", "0102"}, Value: "50"},
	}}

	tbl := BuildBatchTable(Batch{Files: []*MonthFile{feb, jan}}, customsVar(), testKeyCols)
	assert.Equal(t, []string{"Customs_Jan_2024", "Customs_Feb_2024"}, tbl.Columns())
	assert.Equal(t, 2, tbl.NumRows())

	v, ok := cellAt(tbl, []string{"India", "0101"}, "Customs_Feb_2024")
	require.True(t, ok)
	assert.Equal(t, "200", v)
	_, ok = cellAt(tbl, []string{"China", "0102"}, "Customs_Feb_2024")
	assert.False(t, ok)
}

func TestBuildBatchTable_QuantityUnitColumns(t *testing.T) {
	jan := &MonthFile{Variable: quantityVar(), Year: 2024, Month: 1, Rows: []Row{
		{Key: []string{"India", "0101"}, Value: "500", Unit: "number"},
	}}

	tbl := BuildBatchTable(Batch{Files: []*MonthFile{jan}}, quantityVar(), testKeyCols)
	assert.Equal(t, []string{"Quantity_Value_Jan_2024", "Quantity_Unit_Jan_2024"}, tbl.Columns())

	u, ok := cellAt(tbl, []string{"India", "0101"}, "Quantity_Unit_Jan_2024")
	require.True(t, ok)
	assert.Equal(t, "number", u)
}

func TestConsolidate_FirstBatchWinsPerCell(t *testing.T) {
	asc := Batch{Folder: "Customs value 24-25 ascending", Files: []*MonthFile{
		{Variable: customsVar(), Year: 2024, Month: 1, Rows: []Row{
			{Key: []string{"India", "0101"}, Value: "100"},
		}},
	}}
	desc := Batch{Folder: "Customs value 24-25 descending", Files: []*MonthFile{
		{Variable: customsVar(), Year: 2024, Month: 1, Rows: []Row{
			{Key: []string{"India", "0101"}, Value: "999"},
		}},
		{Variable: customsVar(), Year: 2024, Month: 2, Rows: []Row{
			{Key: []string{"India", "0101"}, Value: "200"},
		}},
	}}

	out := Consolidate(customsVar(), []Batch{asc, desc}, testKeyCols)

	jan, ok := cellAt(out, []string{"India", "0101"}, "Customs_Jan_2024")
	require.True(t, ok)
	assert.Equal(t, "100", jan, "ascending batch wins the cell it covers")

	feb, ok := cellAt(out, []string{"India", "0101"}, "Customs_Feb_2024")
	require.True(t, ok)
	assert.Equal(t, "200", feb, "descending batch fills the gap")
}

func TestMergeVariables_DropsUnitsAndFillsZero(t *testing.T) {
	customs := wide.New(testKeyCols...)
	customs.Set([]string{"India", "0101"}, "Customs_Jan_2024", "100")
	customs.Set([]string{"China", "0102"}, "Customs_Jan_2024", "50")

	quantity := wide.New(testKeyCols...)
	quantity.Set([]string{"India", "0101"}, "Quantity_Value_Jan_2024", "500")
	quantity.Set([]string{"India", "0101"}, "Quantity_Unit_Jan_2024", "number")

	master := MergeVariables(testKeyCols, customs, quantity)

	assert.Equal(t, []string{"Customs_Jan_2024", "Quantity_Value_Jan_2024"}, master.Columns())
	assert.Equal(t, 2, master.NumRows())

	q, ok := cellAt(master, []string{"China", "0102"}, "Quantity_Value_Jan_2024")
	require.True(t, ok)
	assert.Equal(t, "0", q)
}

func TestMergeVariables_NoTables(t *testing.T) {
	master := MergeVariables(testKeyCols)
	assert.Equal(t, 0, master.NumRows())
	assert.Empty(t, master.Columns())
}
