package dataweb

import "encoding/json"

// Columns flattens the table's nested column groups into header labels in
// declaration order. A group node either carries nested "columns", a leaf
// "label", or is itself an array of nodes.
func (t *ReportTable) Columns() []string {
	var labels []string
	for _, raw := range t.ColumnGroups {
		labels = collectColumns(raw, labels)
	}
	return labels
}

func collectColumns(raw json.RawMessage, labels []string) []string {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			labels = collectColumns(item, labels)
		}
		return labels
	}

	var node struct {
		Columns []json.RawMessage `json:"columns"`
		Label   string            `json:"label"`
	}
	if err := json.Unmarshal(raw, &node); err != nil {
		return labels
	}
	if len(node.Columns) > 0 {
		for _, item := range node.Columns {
			labels = collectColumns(item, labels)
		}
		return labels
	}
	if node.Label != "" {
		labels = append(labels, node.Label)
	}
	return labels
}
