package reldb

// RowIterator is a lazy pull interface over query results: Open is
// deferred to the first call to Next, and the underlying operator
// tree is closed exactly once, whether by exhaustion or by an early
// call to Close.
type RowIterator interface {
	Next() (row Row, ok bool, err error)
	Close() error
}

// operatorIterator adapts an [Operator] tree to [RowIterator]'s
// open-on-first-pull semantics.
type operatorIterator struct {
	op     Operator
	opened bool
	closed bool
}

func newOperatorIterator(op Operator) *operatorIterator {
	return &operatorIterator{op: op}
}

func (it *operatorIterator) Next() (Row, bool, error) {
	if it.closed {
		return Row{}, false, nil
	}

	if !it.opened {
		if err := it.op.Open(); err != nil {
			it.closed = true
			return Row{}, false, err
		}

		it.opened = true
	}

	row, ok, err := it.op.Next()
	if err != nil {
		_ = it.Close()
		return Row{}, false, err
	}

	if !ok {
		_ = it.Close()
		return Row{}, false, nil
	}

	return row, true, nil
}

func (it *operatorIterator) Close() error {
	if it.closed {
		return nil
	}

	it.closed = true

	if !it.opened {
		return nil
	}

	return it.op.Close()
}

// sliceIterator serves pre-computed rows, used for the diagnostic
// single-row results of INSERT and DELETE.
type sliceIterator struct {
	rows []Row
	pos  int
}

func newSliceIterator(rows ...Row) *sliceIterator {
	return &sliceIterator{rows: rows}
}

func (it *sliceIterator) Next() (Row, bool, error) {
	if it.pos >= len(it.rows) {
		return Row{}, false, nil
	}

	row := it.rows[it.pos]
	it.pos++

	return row, true, nil
}

func (it *sliceIterator) Close() error { return nil }

var diagnosticSchema = []ColumnSchema{
	{Name: "op", Type: TypeVarchar, Length: 16},
	{Name: "arg0", Type: TypeInt},
	{Name: "arg1", Type: TypeInt},
}

// Executor is the unified query entry point: it maps a logical query
// onto an operator tree or a direct storage mutation and returns a
// lazy [RowIterator] over the result.
type Executor struct {
	storage *StorageManager
	index   *IndexManager
	catalog *Catalog
	planner *Planner
}

// NewExecutor constructs an executor over storage, index, and catalog,
// building its own [Planner].
func NewExecutor(storage *StorageManager, index *IndexManager, catalog *Catalog) *Executor {
	return &Executor{
		storage: storage,
		index:   index,
		catalog: catalog,
		planner: NewPlanner(storage, index, catalog),
	}
}

// ExecuteSelect compiles q and returns a streaming row iterator.
func (e *Executor) ExecuteSelect(q SelectQuery) (RowIterator, error) {
	op, err := e.planner.Plan(q)
	if err != nil {
		return nil, err
	}

	return newOperatorIterator(op), nil
}

// ExecuteInsert maps q's columns to schema positions, verifies every
// column is supplied, inserts the record, and returns a single-row
// diagnostic iterator of ("INSERT", page_id, slot_id).
func (e *Executor) ExecuteInsert(q InsertQuery) (RowIterator, error) {
	schema, err := e.catalog.Table(q.Table)
	if err != nil {
		return nil, err
	}

	if len(q.Columns) != len(q.Values) {
		return nil, newValueError("insert: %d columns but %d values", len(q.Columns), len(q.Values)).withTable(q.Table)
	}

	if len(q.Columns) != len(schema.Columns) {
		return nil, newValueError("insert: table %q has %d columns, %d supplied", q.Table, len(schema.Columns), len(q.Columns)).withTable(q.Table)
	}

	values := make([]Value, len(schema.Columns))
	assigned := make([]bool, len(schema.Columns))

	for i, name := range q.Columns {
		idx := schema.ColumnIndex(name)
		if idx < 0 {
			return nil, newSchemaError("insert: unknown column %q", name).withTable(q.Table).withColumn(name)
		}

		values[idx] = q.Values[i]
		assigned[idx] = true
	}

	for i, ok := range assigned {
		if !ok {
			return nil, newValueError("insert: column %q not supplied", schema.Columns[i].Name).withTable(q.Table).withColumn(schema.Columns[i].Name)
		}
	}

	record := Record{Values: values}

	rid, err := e.storage.Insert(q.Table, record)
	if err != nil {
		return nil, err
	}

	diagRow := Row{
		Record: Record{Values: []Value{
			VarcharValue("INSERT"),
			IntValue(int32(rid.PageID)),
			IntValue(int32(rid.SlotID)),
		}},
		RID:    rid,
		Schema: diagnosticSchema,
	}

	return newSliceIterator(diagRow), nil
}

// ExecuteDelete compiles q's optional WHERE against the table's
// schema, scans the table, deletes every matching RID, and returns a
// single-row diagnostic iterator of ("DELETE", count).
func (e *Executor) ExecuteDelete(q DeleteQuery) (RowIterator, error) {
	schema, err := e.catalog.Table(q.Table)
	if err != nil {
		return nil, err
	}

	var predicate Predicate

	if q.Where != nil {
		predicate, err = compileWhere(*q.Where)
		if err != nil {
			return nil, err
		}
	}

	var toDelete []RID

	scanErr := e.storage.Scan(q.Table, func(rid RID, record Record) error {
		row := Row{Record: record, RID: rid, Schema: schema.Columns}

		if predicate == nil {
			toDelete = append(toDelete, rid)
			return nil
		}

		pass, err := predicate.Eval(row)
		if err != nil {
			return err
		}

		if pass {
			toDelete = append(toDelete, rid)
		}

		return nil
	})
	if scanErr != nil {
		return nil, scanErr
	}

	count := 0

	for _, rid := range toDelete {
		deleted, err := e.storage.Delete(q.Table, rid)
		if err != nil {
			return nil, err
		}

		if deleted {
			count++
		}
	}

	diagRow := Row{
		Record: Record{Values: []Value{
			VarcharValue("DELETE"),
			IntValue(int32(count)),
		}},
		Schema: diagnosticSchema[:2],
	}

	return newSliceIterator(diagRow), nil
}
