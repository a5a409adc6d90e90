package reldb

// FilterOperator yields only the rows from its child for which
// predicate holds.
type FilterOperator struct {
	child     Operator
	predicate Predicate
}

// NewFilterOperator wraps child, keeping only rows predicate accepts.
func NewFilterOperator(child Operator, predicate Predicate) *FilterOperator {
	return &FilterOperator{child: child, predicate: predicate}
}

// Open implements [Operator].
func (op *FilterOperator) Open() error {
	return op.child.Open()
}

// Next implements [Operator].
func (op *FilterOperator) Next() (Row, bool, error) {
	for {
		row, ok, err := op.child.Next()
		if err != nil || !ok {
			return Row{}, false, err
		}

		pass, err := op.predicate.Eval(row)
		if err != nil {
			return Row{}, false, err
		}

		if pass {
			return row, true, nil
		}
	}
}

// Close implements [Operator].
func (op *FilterOperator) Close() error {
	return op.child.Close()
}

// Schema implements [Operator].
func (op *FilterOperator) Schema() []ColumnSchema {
	return op.child.Schema()
}
