package reldb

// JoinOperator is an inner equi-join on left.LeftColumn =
// right.RightColumn, implemented as a hash join: the right child is
// drained fully into a hash map on Open, then closed.
//
// Emitted rows concatenate left then right values and schema; their
// RID is the originating left row's RID and must not be relied on by
// downstream mutations — this engine never deletes join output.
type JoinOperator struct {
	left, right           Operator
	leftColumn, rightColumn string

	schema     []ColumnSchema
	leftColIdx int

	buckets map[Value][]Row

	rightOpened bool
	currentLeft Row
	matches     []Row
	matchPos    int
	haveLeft    bool
}

// NewJoinOperator constructs an inner equi-join between left and
// right on leftColumn = rightColumn.
func NewJoinOperator(left, right Operator, leftColumn, rightColumn string) *JoinOperator {
	return &JoinOperator{left: left, right: right, leftColumn: leftColumn, rightColumn: rightColumn}
}

// Open drains right into a hash map keyed by its join column, closes
// right, then opens left.
func (op *JoinOperator) Open() error {
	if err := op.right.Open(); err != nil {
		return err
	}

	op.rightOpened = true

	rightSchema := op.right.Schema()

	rightIdx := -1

	for i, c := range rightSchema {
		if c.Name == op.rightColumn {
			rightIdx = i
			break
		}
	}

	if rightIdx < 0 {
		_ = op.right.Close()
		return newSchemaError("join: unknown right column %q", op.rightColumn).withColumn(op.rightColumn)
	}

	op.buckets = make(map[Value][]Row)

	for {
		row, ok, err := op.right.Next()
		if err != nil {
			_ = op.right.Close()
			return err
		}

		if !ok {
			break
		}

		key := row.Record.Values[rightIdx]
		op.buckets[key] = append(op.buckets[key], row)
	}

	if err := op.right.Close(); err != nil {
		return err
	}

	op.rightOpened = false

	if err := op.left.Open(); err != nil {
		return err
	}

	leftSchema := op.left.Schema()

	op.leftColIdx = -1

	for i, c := range leftSchema {
		if c.Name == op.leftColumn {
			op.leftColIdx = i
			break
		}
	}

	if op.leftColIdx < 0 {
		_ = op.left.Close()
		return newSchemaError("join: unknown left column %q", op.leftColumn).withColumn(op.leftColumn)
	}

	op.schema = append(append([]ColumnSchema(nil), leftSchema...), rightSchema...)

	return nil
}

// Next implements [Operator].
func (op *JoinOperator) Next() (Row, bool, error) {
	for {
		if op.matchPos < len(op.matches) {
			right := op.matches[op.matchPos]
			op.matchPos++

			values := append(append([]Value(nil), op.currentLeft.Record.Values...), right.Record.Values...)

			return Row{Record: Record{Values: values}, RID: op.currentLeft.RID, Schema: op.schema}, true, nil
		}

		row, ok, err := op.left.Next()
		if err != nil || !ok {
			return Row{}, false, err
		}

		op.currentLeft = row
		key := row.Record.Values[op.leftColIdx]
		op.matches = op.buckets[key]
		op.matchPos = 0
	}
}

// Close implements [Operator].
func (op *JoinOperator) Close() error {
	if op.rightOpened {
		_ = op.right.Close()
	}

	return op.left.Close()
}

// Schema implements [Operator].
func (op *JoinOperator) Schema() []ColumnSchema {
	return op.schema
}
