package monthly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quantityFile(rows ...Row) *MonthFile {
	return &MonthFile{Variable: quantityVar(), Year: 2024, Month: 1, Rows: rows}
}

func TestResolveUnits_NonZeroBeatsZero(t *testing.T) {
	mf := quantityFile(
		Row{Key: []string{"India", "0101"}, Value: "0", Unit: "kilograms"},
		Row{Key: []string{"India", "0101"}, Value: "500", Unit: "number"},
	)

	out := ResolveUnits(mf)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "500", out.Rows[0].Value)
	assert.Equal(t, "number", out.Rows[0].Unit)
}

func TestResolveUnits_PriorityBreaksNonZeroTie(t *testing.T) {
	mf := quantityFile(
		Row{Key: []string{"India", "0101"}, Value: "3", Unit: "kilograms"},
		Row{Key: []string{"India", "0101"}, Value: "7", Unit: "number"},
	)

	out := ResolveUnits(mf)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "number", out.Rows[0].Unit)
	assert.Equal(t, "7", out.Rows[0].Value)
}

func TestResolveUnits_AllZeroFallsBackToPriority(t *testing.T) {
	mf := quantityFile(
		Row{Key: []string{"India", "0101"}, Value: "0", Unit: "liters"},
		Row{Key: []string{"India", "0101"}, Value: "0", Unit: "kilograms"},
	)

	out := ResolveUnits(mf)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "kilograms", out.Rows[0].Unit)
}

func TestResolveUnits_UnlistedUnitsKeepSourceOrder(t *testing.T) {
	mf := quantityFile(
		Row{Key: []string{"India", "0101"}, Value: "4", Unit: "liters"},
		Row{Key: []string{"India", "0101"}, Value: "9", Unit: "dozens"},
	)

	out := ResolveUnits(mf)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "liters", out.Rows[0].Unit)
}

func TestResolveUnits_PreservesKeyOrderAndUntouchedRows(t *testing.T) {
	mf := quantityFile(
		Row{Key: []string{"China", "0102"}, Value: "10", Unit: "number"},
		Row{Key: []string{"India", "0101"}, Value: "0", Unit: "kilograms"},
		Row{Key: []string{"India", "0101"}, Value: "5", Unit: "number"},
		Row{Key: []string{"Brazil", "0103"}, Value: "2", Unit: "kilograms"},
	)

	out := ResolveUnits(mf)
	require.Len(t, out.Rows, 3)
	assert.Equal(t, []string{"China", "0102"}, out.Rows[0].Key)
	assert.Equal(t, []string{"India", "0101"}, out.Rows[1].Key)
	assert.Equal(t, []string{"Brazil", "0103"}, out.Rows[2].Key)
	assert.Equal(t, "5", out.Rows[1].Value)
}

func TestResolveUnits_Idempotent(t *testing.T) {
	mf := quantityFile(
		Row{Key: []string{"India", "0101"}, Value: "500", Unit: "number"},
		Row{Key: []string{"India", "0101"}, Value: "0", Unit: "kilograms"},
		Row{Key: []string{"China", "0102"}, Value: "8", Unit: "kilograms"},
	)

	once := ResolveUnits(mf)
	twice := ResolveUnits(once)
	assert.Equal(t, once.Rows, twice.Rows)
}

func TestResolveUnits_NonQuantityPassThrough(t *testing.T) {
	mf := &MonthFile{
		Variable: customsVar(),
		Year:     2024,
		Month:    1,
		Rows: []Row{
			{Key: []string{"India", "0101"}, Value: "100"},
			{Key: []string{"India", "0101"}, Value: "200"},
		},
	}

	out := ResolveUnits(mf)
	assert.Len(t, out.Rows, 2)
}
