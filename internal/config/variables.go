package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Variable describes one measured trade variable: where its monthly source
// folders live, how its wide-table columns are named, and which sheet of the
// official export it corresponds to.
type Variable struct {
	// Name is the canonical lower-case variable name used in the long form,
	// e.g. "customs" or "quantity_value".
	Name string `yaml:"name"`
	// Folder is the source folder prefix; batch folders are named
	// "<Folder> <batch>", e.g. "Customs value 24-25 ascending".
	Folder string `yaml:"folder"`
	// Prefix is the wide-table column prefix, e.g. "Customs" yields
	// columns like Customs_Jan_2024.
	Prefix string `yaml:"prefix"`
	// OfficialSheet is the sheet name in the official summary workbook.
	OfficialSheet string `yaml:"official_sheet"`
	// Quantity marks the variable that carries a unit-of-measure dimension.
	Quantity bool `yaml:"quantity"`
}

// UnitPrefix returns the wide-table column prefix for the unit-of-measure
// companion column of a quantity variable ("Quantity_Value" → "Quantity_Unit").
func (v Variable) UnitPrefix() string {
	return strings.TrimSuffix(v.Prefix, "_Value") + "_Unit"
}

// Catalog is the fixed set of recognized variables.
type Catalog struct {
	Variables []Variable `yaml:"variables"`
}

// ByOfficialSheet returns the variable whose official sheet name matches,
// case-insensitively after trimming.
func (c Catalog) ByOfficialSheet(sheet string) (Variable, bool) {
	want := strings.ToLower(strings.TrimSpace(sheet))
	for _, v := range c.Variables {
		if strings.ToLower(v.OfficialSheet) == want {
			return v, true
		}
	}
	return Variable{}, false
}

// DefaultCatalog returns the compiled-in variable set.
func DefaultCatalog() Catalog {
	return Catalog{Variables: []Variable{
		{
			Name:          "customs",
			Folder:        "Customs value 24-25",
			Prefix:        "Customs",
			OfficialSheet: "Customs Value",
		},
		{
			Name:          "calculated",
			Folder:        "Calculated duties 24-25",
			Prefix:        "Calculated",
			OfficialSheet: "Calculated Duties",
		},
		{
			Name:          "quantity_value",
			Folder:        "quantity 24-25",
			Prefix:        "Quantity_Value",
			OfficialSheet: "First Unit of Quantity",
			Quantity:      true,
		},
	}}
}

// LoadCatalog reads the variable catalog from a YAML file. A missing file is
// not an error: the compiled-in defaults are returned instead.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultCatalog(), nil
		}
		return Catalog{}, eris.Wrapf(err, "config: read catalog %s", path)
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return Catalog{}, eris.Wrapf(err, "config: parse catalog %s", path)
	}
	if len(cat.Variables) == 0 {
		return Catalog{}, eris.Errorf("config: catalog %s defines no variables", path)
	}
	for i, v := range cat.Variables {
		if v.Name == "" || v.Folder == "" || v.Prefix == "" {
			return Catalog{}, eris.Errorf("config: catalog %s entry %d missing name, folder or prefix", path, i)
		}
	}
	return cat, nil
}
