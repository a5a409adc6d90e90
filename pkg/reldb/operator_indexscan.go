package reldb

// IndexScanOperator fetches records by RID from an index's tree,
// either in equality mode (a single key) or range mode ([low, high]).
type IndexScanOperator struct {
	storage *StorageManager
	index   *IndexManager
	name    string

	// Exactly one of equality mode or range mode applies; ranged is
	// true for range mode.
	ranged    bool
	key       int32
	low, high int32

	table  string
	schema []ColumnSchema
	rids   []RID
	pos    int
}

// NewEqualityIndexScan constructs an index scan for a single key.
func NewEqualityIndexScan(storage *StorageManager, index *IndexManager, name string, key int32) *IndexScanOperator {
	return &IndexScanOperator{storage: storage, index: index, name: name, key: key}
}

// NewRangeIndexScan constructs an index scan over [low, high].
func NewRangeIndexScan(storage *StorageManager, index *IndexManager, name string, low, high int32) *IndexScanOperator {
	return &IndexScanOperator{storage: storage, index: index, name: name, ranged: true, low: low, high: high}
}

// Open resolves the index's table schema and fetches the candidate
// RID set from its tree.
func (op *IndexScanOperator) Open() error {
	indexSchema, err := op.storage.catalog.Index(op.name)
	if err != nil {
		return err
	}

	op.table = indexSchema.Table

	tableSchema, err := op.storage.catalog.Table(op.table)
	if err != nil {
		return err
	}

	op.schema = tableSchema.Columns

	if op.ranged {
		op.rids, err = op.index.RangeLookup(op.name, op.low, op.high)
	} else {
		op.rids, err = op.index.Lookup(op.name, op.key)
	}

	return err
}

// Next implements [Operator].
func (op *IndexScanOperator) Next() (Row, bool, error) {
	for op.pos < len(op.rids) {
		rid := op.rids[op.pos]
		op.pos++

		record, err := op.storage.Read(op.table, rid)
		if err != nil {
			if isNotFound(err) {
				continue
			}

			return Row{}, false, err
		}

		return Row{Record: record, RID: rid, Schema: op.schema}, true, nil
	}

	return Row{}, false, nil
}

// Close implements [Operator].
func (op *IndexScanOperator) Close() error {
	return nil
}

// Schema implements [Operator].
func (op *IndexScanOperator) Schema() []ColumnSchema {
	return op.schema
}

func isNotFound(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == KindNotFound
}
