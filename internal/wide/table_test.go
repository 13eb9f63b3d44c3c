package wide

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndLookup(t *testing.T) {
	tbl := New("Country", "HTS Number")
	tbl.Set([]string{"India", "0101"}, "Customs_Jan_2024", "100")
	tbl.Set([]string{"India", "0101"}, "Customs_Feb_2024", "200")
	tbl.Set([]string{"China", "0101"}, "Customs_Jan_2024", "50")

	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, []string{"Customs_Jan_2024", "Customs_Feb_2024"}, tbl.Columns())

	r, ok := tbl.Lookup([]string{"India", "0101"})
	require.True(t, ok)
	v, ok := r.Get("Customs_Feb_2024")
	require.True(t, ok)
	assert.Equal(t, "200", v)

	_, ok = r.Get("Customs_Mar_2024")
	assert.False(t, ok)
}

func TestKeysStayUnique(t *testing.T) {
	tbl := New("Country", "HTS Number")
	tbl.Set([]string{"India", "0101"}, "c1", "1")
	tbl.Set([]string{"India", "0101"}, "c1", "2") // overwrite, not a new row

	assert.Equal(t, 1, tbl.NumRows())
	r, _ := tbl.Lookup([]string{"India", "0101"})
	v, _ := r.Get("c1")
	assert.Equal(t, "2", v)
}

func TestStackFirst_CellWise(t *testing.T) {
	asc := New("Country")
	asc.Set([]string{"India"}, "Jan", "10")
	// Feb missing in ascending batch for India.
	asc.Set([]string{"China"}, "Jan", "1")
	asc.Set([]string{"China"}, "Feb", "2")

	desc := New("Country")
	desc.Set([]string{"India"}, "Jan", "99") // loses: ascending listed first
	desc.Set([]string{"India"}, "Feb", "20") // wins: missing in ascending
	desc.Set([]string{"Brazil"}, "Jan", "7") // new key, carried over

	out := StackFirst(asc, desc)
	assert.Equal(t, 3, out.NumRows())

	india, ok := out.Lookup([]string{"India"})
	require.True(t, ok)
	v, _ := india.Get("Jan")
	assert.Equal(t, "10", v)
	v, _ = india.Get("Feb")
	assert.Equal(t, "20", v)

	brazil, ok := out.Lookup([]string{"Brazil"})
	require.True(t, ok)
	v, _ = brazil.Get("Jan")
	assert.Equal(t, "7", v)
}

func TestStackFirst_Empty(t *testing.T) {
	out := StackFirst()
	assert.Equal(t, 0, out.NumRows())
}

func TestFill(t *testing.T) {
	tbl := New("Country")
	tbl.Set([]string{"India"}, "Jan", "10")
	tbl.Set([]string{"China"}, "Feb", "5")

	tbl.Fill("0")

	india, _ := tbl.Lookup([]string{"India"})
	v, ok := india.Get("Feb")
	require.True(t, ok)
	assert.Equal(t, "0", v)

	china, _ := tbl.Lookup([]string{"China"})
	v, ok = china.Get("Jan")
	require.True(t, ok)
	assert.Equal(t, "0", v)
}

func TestDrop(t *testing.T) {
	tbl := New("Country")
	tbl.Set([]string{"India"}, "Quantity_Value_Jan_2024", "10")
	tbl.Set([]string{"India"}, "Quantity_Unit_Jan_2024", "number")

	tbl.Drop(func(col string) bool { return col == "Quantity_Unit_Jan_2024" })

	assert.Equal(t, []string{"Quantity_Value_Jan_2024"}, tbl.Columns())
	india, _ := tbl.Lookup([]string{"India"})
	_, ok := india.Get("Quantity_Unit_Jan_2024")
	assert.False(t, ok)
}

func TestSortedRows(t *testing.T) {
	tbl := New("Country")
	tbl.Set([]string{"India"}, "Jan", "1")
	tbl.Set([]string{"Brazil"}, "Jan", "2")
	tbl.Set([]string{"China"}, "Jan", "3")

	rows := tbl.SortedRows()
	require.Len(t, rows, 3)
	assert.Equal(t, "Brazil", rows[0].Key[0])
	assert.Equal(t, "China", rows[1].Key[0])
	assert.Equal(t, "India", rows[2].Key[0])
}
