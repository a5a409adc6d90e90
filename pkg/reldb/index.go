package reldb

import (
	"strings"

	natomic "github.com/natefinch/atomic"
)

// IndexManager owns the lifetime of secondary indexes: building a new
// index from a full table scan, keeping it current via
// [StorageManager] insert/delete callbacks, and serving equality and
// range lookups. Only INT columns may be indexed.
//
// Each index's in-memory tree is never persisted; Path is written as
// an empty marker file purely so an index's existence survives a
// directory listing the way a table's heap file does. Rebuilding the
// tree from a full scan on startup is out of scope - indexes live only
// as long as the process that created them.
type IndexManager struct {
	storage *StorageManager
	catalog *Catalog
	order   int

	// trees is keyed by index name.
	trees map[string]*indexEntry
}

type indexEntry struct {
	schema IndexSchema
	tree   *bTree
}

// NewIndexManager constructs an index manager backed by storage and
// catalog, building new trees at the given B+ tree order.
func NewIndexManager(storage *StorageManager, catalog *Catalog, order int) *IndexManager {
	return &IndexManager{
		storage: storage,
		catalog: catalog,
		order:   order,
		trees:   make(map[string]*indexEntry),
	}
}

// CreateIndex registers an index on table.column, builds its tree by a
// full table scan, and writes an empty marker file at path. Fails with
// [KindSchema] if column is not an INT column of table, or if name is
// already registered.
func (im *IndexManager) CreateIndex(name, table, column, path string) error {
	schema, err := im.catalog.Table(table)
	if err != nil {
		return err
	}

	col, ok := schema.Column(column)
	if !ok {
		return newSchemaError("table %q has no column %q", table, column).withTable(table).withColumn(column)
	}

	if col.Type != TypeInt {
		return newSchemaError("column %q is %s, only INT columns may be indexed", column, col.Type).withTable(table).withColumn(column)
	}

	indexSchema := IndexSchema{Name: name, Table: table, Column: column, Path: path}
	if err := im.catalog.RegisterIndex(indexSchema); err != nil {
		return err
	}

	tree := newBTree(im.order)

	colIdx := schema.ColumnIndex(column)

	scanErr := im.storage.Scan(table, func(rid RID, record Record) error {
		tree.insert(record.Values[colIdx].Int, rid)
		return nil
	})
	if scanErr != nil {
		return scanErr
	}

	if err := natomic.WriteFile(path, strings.NewReader("")); err != nil {
		return newIOError(err, "create index marker file %s", path)
	}

	im.trees[name] = &indexEntry{schema: indexSchema, tree: tree}

	return nil
}

// Lookup returns the RIDs stored under key in the named index, in
// insertion order. Fails with [ErrNotFound] if name is not a built
// index.
func (im *IndexManager) Lookup(name string, key int32) ([]RID, error) {
	entry, err := im.entry(name)
	if err != nil {
		return nil, err
	}

	return entry.tree.search(key), nil
}

// RangeLookup returns the RIDs stored under keys in [lo, hi], ordered
// ascending by key and by insertion order within a key. Fails with
// [ErrNotFound] if name is not a built index.
func (im *IndexManager) RangeLookup(name string, lo, hi int32) ([]RID, error) {
	entry, err := im.entry(name)
	if err != nil {
		return nil, err
	}

	return entry.tree.rangeSearch(lo, hi), nil
}

// LookupRecords returns the hydrated records stored under key in the
// named index, fetching each via [StorageManager.Read]. Fails with
// [ErrNotFound] if name is not a built index.
func (im *IndexManager) LookupRecords(name string, key int32) ([]Record, error) {
	entry, err := im.entry(name)
	if err != nil {
		return nil, err
	}

	return im.hydrate(entry, entry.tree.search(key))
}

// RangeLookupRecords returns the hydrated records stored under keys in
// [lo, hi], ordered ascending by key and by insertion order within a
// key, fetching each via [StorageManager.Read]. Fails with
// [ErrNotFound] if name is not a built index.
func (im *IndexManager) RangeLookupRecords(name string, lo, hi int32) ([]Record, error) {
	entry, err := im.entry(name)
	if err != nil {
		return nil, err
	}

	return im.hydrate(entry, entry.tree.rangeSearch(lo, hi))
}

// hydrate fetches the record at each rid from entry's table via
// storage, in rid order.
func (im *IndexManager) hydrate(entry *indexEntry, rids []RID) ([]Record, error) {
	records := make([]Record, 0, len(rids))

	for _, rid := range rids {
		record, err := im.storage.Read(entry.schema.Table, rid)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}

// IndexFor returns the built index schema on table.column, if any, and
// true. Used by the planner to recognize index-scan opportunities.
func (im *IndexManager) IndexFor(table, column string) (IndexSchema, bool) {
	for _, entry := range im.trees {
		if entry.schema.Table == table && entry.schema.Column == column {
			return entry.schema, true
		}
	}

	return IndexSchema{}, false
}

func (im *IndexManager) entry(name string) (*indexEntry, error) {
	entry, ok := im.trees[name]
	if !ok {
		return nil, newNotFoundError("unknown index %q", name).withIndex(name)
	}

	return entry, nil
}

// onInsert implements [indexNotifier]: every built index on table gets
// rid filed under the inserted record's value for its column.
func (im *IndexManager) onInsert(table string, rid RID, record Record) error {
	schema, err := im.catalog.Table(table)
	if err != nil {
		return err
	}

	for _, entry := range im.trees {
		if entry.schema.Table != table {
			continue
		}

		colIdx := schema.ColumnIndex(entry.schema.Column)
		entry.tree.insert(record.Values[colIdx].Int, rid)
	}

	return nil
}

// onDelete implements [indexNotifier]: every built index on table has
// rid removed from under the deleted record's former value for its
// column.
func (im *IndexManager) onDelete(table string, rid RID, record Record) error {
	schema, err := im.catalog.Table(table)
	if err != nil {
		return err
	}

	for _, entry := range im.trees {
		if entry.schema.Table != table {
			continue
		}

		colIdx := schema.ColumnIndex(entry.schema.Column)
		entry.tree.delete(record.Values[colIdx].Int, rid)
	}

	return nil
}
