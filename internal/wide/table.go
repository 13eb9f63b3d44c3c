// Package wide implements the wide tabular form shared by the consolidation
// steps: one row per entity key, one named column per value. Cells are raw
// strings; the empty string means missing. Row keys are unique by
// construction, which is the invariant the downstream merges rely on.
package wide

import (
	"sort"
	"strings"
)

const keySep = "\x1f"

// Table is a wide table keyed by an ordered tuple of key columns.
type Table struct {
	KeyCols []string

	cols   []string
	colSet map[string]struct{}
	rows   map[string]*Row
	order  []string
}

// Row is one entity-key row. Cell access goes through Get so missing and
// empty are distinguishable from present values.
type Row struct {
	Key   []string
	cells map[string]string
}

// New creates an empty table with the given key columns.
func New(keyCols ...string) *Table {
	return &Table{
		KeyCols: keyCols,
		colSet:  make(map[string]struct{}),
		rows:    make(map[string]*Row),
	}
}

// Columns returns the value column names in first-seen order.
func (t *Table) Columns() []string { return t.cols }

// NumRows returns the row count.
func (t *Table) NumRows() int { return len(t.rows) }

// Get returns the cell for col and whether it is present.
func (r *Row) Get(col string) (string, bool) {
	v, ok := r.cells[col]
	return v, ok
}

func keyID(key []string) string { return strings.Join(key, keySep) }

func (t *Table) addCol(col string) {
	if _, ok := t.colSet[col]; ok {
		return
	}
	t.colSet[col] = struct{}{}
	t.cols = append(t.cols, col)
}

func (t *Table) row(key []string) *Row {
	id := keyID(key)
	if r, ok := t.rows[id]; ok {
		return r
	}
	k := make([]string, len(key))
	copy(k, key)
	r := &Row{Key: k, cells: make(map[string]string)}
	t.rows[id] = r
	t.order = append(t.order, id)
	return r
}

// Set writes one cell, creating the row and column as needed. A later Set on
// the same (key, col) overwrites.
func (t *Table) Set(key []string, col, val string) {
	t.addCol(col)
	t.row(key).cells[col] = val
}

// Lookup returns the row for key, if any.
func (t *Table) Lookup(key []string) (*Row, bool) {
	r, ok := t.rows[keyID(key)]
	return r, ok
}

// Rows returns rows in insertion order.
func (t *Table) Rows() []*Row {
	out := make([]*Row, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

// SortedRows returns rows ordered by key tuple, for deterministic output.
func (t *Table) SortedRows() []*Row {
	out := t.Rows()
	sort.Slice(out, func(i, j int) bool {
		return keyID(out[i].Key) < keyID(out[j].Key)
	})
	return out
}

// StackFirst collapses tables cell-wise into one: for each key and column,
// the first non-missing value in table order wins. Table order is the caller's
// declared precedence policy (batch order for the cross-batch stack); this
// replaces the source's reliance on incidental row iteration order.
func StackFirst(tables ...*Table) *Table {
	if len(tables) == 0 {
		return New()
	}
	out := New(tables[0].KeyCols...)
	for _, t := range tables {
		for _, col := range t.cols {
			out.addCol(col)
		}
		for _, r := range t.Rows() {
			dst := out.row(r.Key)
			for col, v := range r.cells {
				if _, taken := dst.cells[col]; !taken {
					dst.cells[col] = v
				}
			}
		}
	}
	return out
}

// Fill sets every missing cell of every known column to val.
func (t *Table) Fill(val string) {
	for _, r := range t.rows {
		for _, col := range t.cols {
			if _, ok := r.cells[col]; !ok {
				r.cells[col] = val
			}
		}
	}
}

// Drop removes all columns matching pred, including their cells.
func (t *Table) Drop(pred func(col string) bool) {
	kept := t.cols[:0]
	for _, col := range t.cols {
		if pred(col) {
			delete(t.colSet, col)
			for _, r := range t.rows {
				delete(r.cells, col)
			}
			continue
		}
		kept = append(kept, col)
	}
	t.cols = kept
}
