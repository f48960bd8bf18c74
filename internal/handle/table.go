// Package handle tracks the guest-issued handles that are currently open and
// the descriptor each one resolves to.
package handle

import (
	"context"
	"sort"

	"github.com/hashicorp/go-memdb"
)

const tableName = "handle"

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tableName: {
			Name: tableName,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.UintFieldIndex{Field: "Handle"},
				},
				"descriptor": {
					Name:    "descriptor",
					Indexer: &memdb.UintFieldIndex{Field: "Descriptor"},
				},
			},
		},
	},
}

// Closer releases guest-side state for a handle.
type Closer interface {
	Close(ctx context.Context, handle uint32) error
}

// Entry is one open handle.
type Entry struct {
	Handle     uint32
	Descriptor uint32
	Mode       uint32

	// Guest is the module that issued Handle.
	Guest Closer
}

// Table maps handles to descriptors. It is indexed both ways, so the handles
// open on a descriptor can be counted without a scan.
type Table struct {
	db *memdb.MemDB
}

// New returns an empty table.
func New() (*Table, error) {
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, err
	}
	return &Table{db: db}, nil
}

// Insert records e, replacing any entry with the same handle.
func (t *Table) Insert(e Entry) error {
	txn := t.db.Txn(true)
	defer txn.Abort()

	if err := txn.Insert(tableName, &e); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// Lookup returns the entry for handle h.
func (t *Table) Lookup(h uint32) (Entry, bool) {
	txn := t.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tableName, "id", h)
	if err != nil || raw == nil {
		return Entry{}, false
	}
	return *raw.(*Entry), true
}

// Remove deletes the entry for handle h and returns it. The boolean is false
// if h was not in the table.
func (t *Table) Remove(h uint32) (Entry, bool) {
	txn := t.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tableName, "id", h)
	if err != nil || raw == nil {
		return Entry{}, false
	}
	if err = txn.Delete(tableName, raw); err != nil {
		return Entry{}, false
	}
	txn.Commit()
	return *raw.(*Entry), true
}

// Count returns the number of handles open on descriptor d.
func (t *Table) Count(d uint32) (n int) {
	txn := t.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableName, "descriptor", d)
	if err != nil {
		return 0
	}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		n++
	}
	return n
}

// All returns every open entry in ascending handle order.
func (t *Table) All() []Entry {
	txn := t.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableName, "id")
	if err != nil {
		return nil
	}
	var entries []Entry
	for obj := it.Next(); obj != nil; obj = it.Next() {
		entries = append(entries, *obj.(*Entry))
	}
	// The index orders by varint encoding, not by value.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Handle < entries[j].Handle
	})
	return entries
}

// Reset removes every entry.
func (t *Table) Reset() error {
	txn := t.db.Txn(true)
	defer txn.Abort()

	if _, err := txn.DeleteAll(tableName, "id"); err != nil {
		return err
	}
	txn.Commit()
	return nil
}
