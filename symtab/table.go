// Package symtab provides the insertion-ordered symbol table backing a namespace.
package symtab

import (
	"iter"

	"github.com/speakeasy-api/openapi/sequencedmap"
)

// Table maps names to values in definition order.
//
// A Table is shared by reference: a raw unit and the namespace wrapping it see
// the same Table. Shape counts additions and removals of names (not value
// updates) so holders of derived data can detect structural change without
// being told about every write.
type Table struct {
	entries *sequencedmap.Map[string, any]
	shape   uint64
}

// New creates an empty table.
func New() *Table {
	return &Table{entries: sequencedmap.New[string, any]()}
}

// FromMap builds a table from m. Go maps are unordered, so names are inserted
// in the order given by keys; names missing from keys are appended afterwards
// in unspecified order.
func FromMap(m map[string]any, keys ...string) *Table {
	t := New()
	for _, k := range keys {
		if v, ok := m[k]; ok {
			t.Set(k, v)
		}
	}
	for k, v := range m {
		if !t.Has(k) {
			t.Set(k, v)
		}
	}
	return t
}

func (t *Table) Get(name string) (any, bool) {
	return t.entries.Get(name)
}

func (t *Table) Has(name string) bool {
	_, ok := t.entries.Get(name)
	return ok
}

// Set binds name to v, appending name if it is new.
func (t *Table) Set(name string, v any) {
	if !t.Has(name) {
		t.shape++
	}
	t.entries.Set(name, v)
}

// Delete removes name and reports whether it was present.
func (t *Table) Delete(name string) bool {
	if !t.Has(name) {
		return false
	}
	t.entries.Delete(name)
	t.shape++
	return true
}

func (t *Table) Len() int {
	return t.entries.Len()
}

// Keys returns the names in definition order.
func (t *Table) Keys() []string {
	keys := make([]string, 0, t.entries.Len())
	for k := range t.entries.All() {
		keys = append(keys, k)
	}
	return keys
}

// All iterates over names and values in definition order.
func (t *Table) All() iter.Seq2[string, any] {
	return t.entries.All()
}

// Shape returns a counter that changes whenever a name is added or removed.
func (t *Table) Shape() uint64 {
	return t.shape
}

// Clone returns a new table binding the same names to the same values.
// Values are not copied: reference values stay shared with t.
func (t *Table) Clone() *Table {
	c := New()
	for k, v := range t.entries.All() {
		c.Set(k, v)
	}
	return c
}
