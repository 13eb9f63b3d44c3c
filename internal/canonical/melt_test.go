package canonical

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/trade-cli/internal/wide"
)

func masterFixture() *wide.Table {
	t := wide.New("Country", "HTS Number")
	t.Set([]string{"india", "0101"}, "Customs_Jan_2024", "100")
	t.Set([]string{"india", "0102"}, "Customs_Jan_2024", "50")
	t.Set([]string{"India ", "0101"}, "Customs_Feb_2024", "25")
	t.Set([]string{"china", "0101"}, "Customs_Jan_2024", "not-a-number")
	t.Set([]string{"china", "0101"}, "Quantity_Value_Jan_2024", "7")
	t.Set([]string{"china", "0101"}, "Quantity_Unit_Jan_2024", "number")
	return t
}

func TestMeltMaster_AggregatesOverHTS(t *testing.T) {
	recs, stats := MeltMaster(masterFixture())

	// Unit column skipped, three value columns melted.
	assert.Equal(t, 3, stats.Columns)
	assert.Equal(t, 1, stats.SkippedColumns)

	byKey := make(map[Key]float64)
	for _, r := range recs {
		byKey[r.Key()] = r.Value
	}

	// Two HTS codes summed under one country-month-variable.
	assert.Equal(t, 150.0, byKey[Key{"India", 2024, "Jan", "customs"}])
	assert.Equal(t, 25.0, byKey[Key{"India", 2024, "Feb", "customs"}])
	// Non-parseable value coerced to zero, not dropped.
	assert.Equal(t, 0.0, byKey[Key{"China", 2024, "Jan", "customs"}])
	assert.Equal(t, 7.0, byKey[Key{"China", 2024, "Jan", "quantity_value"}])
}

func TestMeltMaster_DropsEmptyCountry(t *testing.T) {
	tbl := wide.New("Country", "HTS Number")
	tbl.Set([]string{"  ", "0101"}, "Customs_Jan_2024", "100")
	tbl.Set([]string{"India", "0101"}, "Customs_Jan_2024", "1")

	recs, stats := MeltMaster(tbl)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, stats.DroppedRows)
	assert.Equal(t, "India", recs[0].Country)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	base := []Record{
		{"India", 2024, "Jan", "customs", 10},
		{"India", 2024, "Jan", "customs", 5},
		{"India", 2024, "Feb", "customs", 3},
		{"China", 2024, "Jan", "customs", 7},
		{"China", 2025, "Jan", "quantity_value", 2},
	}

	want := Aggregate(base)

	shuffled := make([]Record, len(base))
	copy(shuffled, base)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, want, Aggregate(shuffled))
	}
}

func TestAggregate_SortsByMonthOrder(t *testing.T) {
	recs := Aggregate([]Record{
		{"India", 2024, "Dec", "customs", 1},
		{"India", 2024, "Feb", "customs", 1},
		{"India", 2024, "Jan", "customs", 1},
	})
	require.Len(t, recs, 3)
	assert.Equal(t, "Jan", recs[0].Month)
	assert.Equal(t, "Feb", recs[1].Month)
	assert.Equal(t, "Dec", recs[2].Month)
}

func TestNormalizeCountry(t *testing.T) {
	assert.Equal(t, "India", NormalizeCountry("  india "))
	assert.Equal(t, "United Kingdom", NormalizeCountry("UNITED KINGDOM"))
	assert.Equal(t, "", NormalizeCountry("   "))
}

func TestCacheRoundTrip(t *testing.T) {
	path := t.TempDir() + "/cache.parquet"
	recs := []Record{
		{"India", 2024, "Jan", "customs", 150},
		{"China", 2024, "Jan", "quantity_value", 7},
	}

	require.NoError(t, WriteCache(path, recs))

	got, err := ReadCache(path)
	require.NoError(t, err)
	assert.Equal(t, recs, got)
}

func TestReadCache_Missing(t *testing.T) {
	_, err := ReadCache(t.TempDir() + "/nope.parquet")
	assert.Error(t, err)
}
