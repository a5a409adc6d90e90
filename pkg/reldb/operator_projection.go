package reldb

// ProjectionOperator rebuilds each child row holding only the
// configured columns, in the given order.
type ProjectionOperator struct {
	child   Operator
	columns []string

	schema  []ColumnSchema
	indices []int
}

// NewProjectionOperator wraps child, projecting to columns. Resolution
// of column names against child's schema happens in Open.
func NewProjectionOperator(child Operator, columns []string) *ProjectionOperator {
	return &ProjectionOperator{child: child, columns: columns}
}

// Open resolves each projected column against the child's schema.
// Fails with [KindSchema] if a column is not present.
func (op *ProjectionOperator) Open() error {
	if err := op.child.Open(); err != nil {
		return err
	}

	childSchema := op.child.Schema()

	op.indices = make([]int, len(op.columns))
	op.schema = make([]ColumnSchema, len(op.columns))

	for i, name := range op.columns {
		idx := -1

		for j, c := range childSchema {
			if c.Name == name {
				idx = j
				break
			}
		}

		if idx < 0 {
			_ = op.child.Close()
			return newSchemaError("projection column %q not present in input schema", name).withColumn(name)
		}

		op.indices[i] = idx
		op.schema[i] = childSchema[idx]
	}

	return nil
}

// Next implements [Operator].
func (op *ProjectionOperator) Next() (Row, bool, error) {
	row, ok, err := op.child.Next()
	if err != nil || !ok {
		return Row{}, false, err
	}

	values := make([]Value, len(op.indices))
	for i, idx := range op.indices {
		values[i] = row.Record.Values[idx]
	}

	return Row{Record: Record{Values: values}, RID: row.RID, Schema: op.schema}, true, nil
}

// Close implements [Operator].
func (op *ProjectionOperator) Close() error {
	return op.child.Close()
}

// Schema implements [Operator].
func (op *ProjectionOperator) Schema() []ColumnSchema {
	return op.schema
}
