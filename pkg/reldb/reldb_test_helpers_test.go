package reldb

import (
	"path/filepath"
	"testing"
)

// studentsSchema returns a representative three-column table schema
// used across this package's tests.
func studentsSchema(path string) TableSchema {
	return TableSchema{
		Name: "students",
		Columns: []ColumnSchema{
			{Name: "id", Type: TypeInt},
			{Name: "name", Type: TypeVarchar, Length: 20},
			{Name: "active", Type: TypeBoolean},
		},
		Path: path,
	}
}

// teachersSchema returns a two-column table used as the right side of
// join tests.
func teachersSchema(path string) TableSchema {
	return TableSchema{
		Name: "teachers",
		Columns: []ColumnSchema{
			{Name: "teacher_id", Type: TypeInt},
			{Name: "subject", Type: TypeVarchar, Length: 20},
		},
		Path: path,
	}
}

// newTestEngine wires a catalog, storage manager, and index manager
// over a temp-dir table file, the way callers are expected to per
// [Package doc].
func newTestEngine(t *testing.T) (*Catalog, *StorageManager, *IndexManager) {
	t.Helper()

	cfg := DefaultEngineConfig()
	cfg.DisableLocking = true

	cat := NewCatalog()
	sm := NewStorageManager(cat, cfg)
	im := NewIndexManager(sm, cat, cfg.BTreeOrder)
	sm.SetIndexManager(im)

	return cat, sm, im
}

func tablePath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name+".tbl")
}

// closeTrackingOperator wraps an [Operator], recording whether Close
// was called, so tests can assert an operator closes its child on an
// error path.
type closeTrackingOperator struct {
	Operator
	closed bool
}

func (o *closeTrackingOperator) Close() error {
	o.closed = true
	return o.Operator.Close()
}
