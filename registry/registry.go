// Package registry provides the default in-memory host registry mapping unit
// identities to raw units or namespaces.
package registry

import (
	"fmt"

	memdb "github.com/hashicorp/go-memdb"

	"github.com/on-the-ground/modkit_go/namespace"
)

const (
	tableEntries = "entries"
	indexID      = "id"
)

var _ namespace.Registry = (*MemDB)(nil)

// record is the memdb row for one registry entry.
type record struct {
	Identity string
	Entry    namespace.Entry
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableEntries: {
				Name: tableEntries,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Identity"},
					},
				},
			},
		},
	}
}

// MemDB is a Registry backed by go-memdb.
type MemDB struct {
	db *memdb.MemDB
}

// New creates an empty registry.
func New() (*MemDB, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	return &MemDB{db: db}, nil
}

func (m *MemDB) Lookup(identity string) (namespace.Entry, bool) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tableEntries, indexID, identity)
	if err != nil || raw == nil {
		return nil, false
	}
	return raw.(*record).Entry, true
}

func (m *MemDB) Replace(entry namespace.Entry) error {
	if entry == nil || entry.Identity() == "" {
		return fmt.Errorf("registry: entry without identity")
	}
	txn := m.db.Txn(true)
	defer txn.Abort()

	if err := txn.Insert(tableEntries, &record{Identity: entry.Identity(), Entry: entry}); err != nil {
		return fmt.Errorf("registry: replace %s: %w", entry.Identity(), err)
	}
	txn.Commit()
	return nil
}

func (m *MemDB) Remove(identity string) bool {
	txn := m.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tableEntries, indexID, identity)
	if err != nil || raw == nil {
		return false
	}
	if err := txn.Delete(tableEntries, raw); err != nil {
		return false
	}
	txn.Commit()
	return true
}

// Identities lists registered identities in lexical order.
func (m *MemDB) Identities() []string {
	return m.scan("")
}

// Children lists the identities registered below parent ("parent.x",
// "parent.x.y", ...), in lexical order.
func (m *MemDB) Children(parent string) []string {
	return m.scan(parent + ".")
}

func (m *MemDB) scan(prefix string) []string {
	txn := m.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableEntries, indexID+"_prefix", prefix)
	if err != nil {
		return nil
	}
	var ids []string
	for raw := it.Next(); raw != nil; raw = it.Next() {
		ids = append(ids, raw.(*record).Identity)
	}
	return ids
}
