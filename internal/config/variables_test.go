package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	cat := DefaultCatalog()
	require.Len(t, cat.Variables, 3)

	names := make([]string, len(cat.Variables))
	quantity := 0
	for i, v := range cat.Variables {
		names[i] = v.Name
		if v.Quantity {
			quantity++
		}
	}
	assert.Equal(t, []string{"customs", "calculated", "quantity_value"}, names)
	assert.Equal(t, 1, quantity)
}

func TestVariableUnitPrefix(t *testing.T) {
	assert.Equal(t, "Quantity_Unit", Variable{Prefix: "Quantity_Value"}.UnitPrefix())
	assert.Equal(t, "Customs_Unit", Variable{Prefix: "Customs"}.UnitPrefix())
}

func TestByOfficialSheet(t *testing.T) {
	cat := DefaultCatalog()

	v, ok := cat.ByOfficialSheet("Customs Value")
	require.True(t, ok)
	assert.Equal(t, "customs", v.Name)

	v, ok = cat.ByOfficialSheet("  first unit of quantity ")
	require.True(t, ok)
	assert.Equal(t, "quantity_value", v.Name)

	_, ok = cat.ByOfficialSheet("Mystery Metric")
	assert.False(t, ok)
}

func TestLoadCatalog_MissingFileUsesDefaults(t *testing.T) {
	cat, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog(), cat)
}

func TestLoadCatalog_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "variables.yaml")
	yaml := `
variables:
  - name: customs
    folder: "Customs value 24-25"
    prefix: Customs
    official_sheet: "Customs Value"
  - name: weight
    folder: "weight 24-25"
    prefix: Weight_Value
    official_sheet: "Net Weight"
    quantity: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cat, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, cat.Variables, 2)
	assert.Equal(t, "weight", cat.Variables[1].Name)
	assert.True(t, cat.Variables[1].Quantity)
	assert.Equal(t, "Weight_Unit", cat.Variables[1].UnitPrefix())
}

func TestLoadCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no variables", "variables: []\n"},
		{"missing prefix", "variables:\n  - name: customs\n    folder: f\n"},
		{"bad yaml", "variables: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "variables.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))
			_, err := LoadCatalog(path)
			require.Error(t, err)
		})
	}
}
