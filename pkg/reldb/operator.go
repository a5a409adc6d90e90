package reldb

// Operator is a node in the pull-based pipeline. Every
// operator must have Close called exactly once after Open succeeds,
// whether the tree was drained or abandoned early.
type Operator interface {
	// Open prepares the operator's state (opening the underlying table,
	// priming a child, etc).
	Open() error
	// Next returns the next output row. ok is false once exhausted; no
	// further calls to Next are made after that.
	Next() (row Row, ok bool, err error)
	// Close releases any resources acquired by Open.
	Close() error
	// Schema describes the columns of rows this operator emits.
	Schema() []ColumnSchema
}

// closeAll closes every already-opened operator in order, preferring
// the first error encountered but still attempting every Close (spec
// §4.10, "aborts the pipeline after close is called on already-opened
// children").
func closeAll(ops ...Operator) error {
	var first error

	for _, op := range ops {
		if op == nil {
			continue
		}

		if err := op.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}
