package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/trade-cli/internal/sheet"
	"github.com/sells-group/trade-cli/internal/wide"
)

var masterKeyCols = []string{"Country", "HTS Number"}

func sampleMaster() *wide.Table {
	t := wide.New(masterKeyCols...)
	t.Set([]string{"India", "0101.21.00"}, "Customs_Jan_2024", "100")
	t.Set([]string{"India", "0101.21.00"}, "Customs_Feb_2024", "200")
	t.Set([]string{"China", "0102.29.40"}, "Customs_Jan_2024", "50")
	t.Fill("0")
	return t
}

func TestMasterCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.csv")
	require.NoError(t, WriteMasterCSV(sampleMaster(), path))

	got, err := ReadMasterCSV(path, masterKeyCols)
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumRows())
	assert.Equal(t, []string{"Customs_Jan_2024", "Customs_Feb_2024"}, got.Columns())

	row, ok := got.Lookup([]string{"China", "0102.29.40"})
	require.True(t, ok)
	feb, _ := row.Get("Customs_Feb_2024")
	assert.Equal(t, "0", feb)
}

func TestReadMasterCSV_MissingKeyColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.csv")
	require.NoError(t, os.WriteFile(path, []byte("Country,Customs_Jan_2024\nIndia,1\n"), 0o644))

	_, err := ReadMasterCSV(path, masterKeyCols)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"HTS Number"`)
}

func TestWriteMaster_AllFormats(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteMaster(sampleMaster(), dir))

	for _, ext := range []string{".parquet", ".xlsx", ".csv"} {
		info, err := os.Stat(filepath.Join(dir, MasterBase+ext))
		require.NoError(t, err, ext)
		assert.Positive(t, info.Size(), ext)
	}

	rows, err := sheet.Read(filepath.Join(dir, MasterBase+".xlsx"), sheet.Options{})
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"Country", "HTS Number", "Customs_Jan_2024", "Customs_Feb_2024"}, rows[0])
}

func TestWriteMaster_AllFormatsFail(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does", "not", "exist")
	err := WriteMaster(sampleMaster(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all master formats failed")
}
