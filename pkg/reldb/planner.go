package reldb

import "math"

// Planner maps a [SelectQuery] into an [Operator] tree, recognizing
// single-column INT-indexed equality and range opportunities (spec
// §4.9).
type Planner struct {
	storage *StorageManager
	index   *IndexManager
	catalog *Catalog
}

// NewPlanner constructs a planner over the given storage, index, and
// catalog.
func NewPlanner(storage *StorageManager, index *IndexManager, catalog *Catalog) *Planner {
	return &Planner{storage: storage, index: index, catalog: catalog}
}

// Plan builds the operator tree for q.
func (p *Planner) Plan(q SelectQuery) (Operator, error) {
	var (
		root Operator
		err  error
	)

	if q.Join != nil {
		root, err = p.planJoin(q)
	} else {
		root, err = p.planSingleTable(q)
	}

	if err != nil {
		return nil, err
	}

	if len(q.Columns) > 0 {
		root = NewProjectionOperator(root, q.Columns)
	}

	return root, nil
}

func (p *Planner) planJoin(q SelectQuery) (Operator, error) {
	left := NewSeqScanOperator(p.storage, q.Table)
	right := NewSeqScanOperator(p.storage, q.Join.RightTable)

	join := NewJoinOperator(left, right, q.Join.LeftColumn, q.Join.RightColumn)

	if q.Where == nil {
		return join, nil
	}

	predicate, err := compileWhere(*q.Where)
	if err != nil {
		return nil, err
	}

	return NewFilterOperator(join, predicate), nil
}

func (p *Planner) planSingleTable(q SelectQuery) (Operator, error) {
	if q.Where != nil {
		if op, ok, err := p.planRange(q.Table, *q.Where); err != nil {
			return nil, err
		} else if ok {
			return op, nil
		}

		if op, ok, err := p.planEquality(q.Table, *q.Where); err != nil {
			return nil, err
		} else if ok {
			return op, nil
		}
	}

	scan := Operator(NewSeqScanOperator(p.storage, q.Table))

	if q.Where == nil {
		return scan, nil
	}

	predicate, err := compileWhere(*q.Where)
	if err != nil {
		return nil, err
	}

	return NewFilterOperator(scan, predicate), nil
}

// planEquality recognizes a single, non-negated EQ against an
// INT-indexed column with an integer literal.
func (p *Planner) planEquality(table string, where WhereClause) (Operator, bool, error) {
	if len(where.Conditions) != 1 {
		return nil, false, nil
	}

	cond := where.Conditions[0]
	if cond.Negated || cond.Op != OpEqual || cond.Literal.Type != TypeInt {
		return nil, false, nil
	}

	indexSchema, ok := p.index.IndexFor(table, cond.Column)
	if !ok {
		return nil, false, nil
	}

	return NewEqualityIndexScan(p.storage, p.index, indexSchema.Name, cond.Literal.Int), true, nil
}

// planRange recognizes a flat AND-only chain of non-negated
// conditions over the same INT-indexed column with integer literals.
func (p *Planner) planRange(table string, where WhereClause) (Operator, bool, error) {
	if len(where.Conditions) == 0 {
		return nil, false, nil
	}

	for _, c := range where.Connectors {
		if c != ConnAnd {
			return nil, false, nil
		}
	}

	column := where.Conditions[0].Column

	low := int64(math.MinInt32)
	high := int64(math.MaxInt32)
	haveLow, haveHigh := false, false

	for _, cond := range where.Conditions {
		if cond.Negated || cond.Column != column || cond.Literal.Type != TypeInt {
			return nil, false, nil
		}

		v := int64(cond.Literal.Int)

		switch cond.Op {
		case OpGreater:
			low, haveLow = maxInt64(low, v+1), true
		case OpGreaterEqual:
			low, haveLow = maxInt64(low, v), true
		case OpLess:
			high, haveHigh = minInt64(high, v-1), true
		case OpLessEqual:
			high, haveHigh = minInt64(high, v), true
		case OpEqual:
			low, haveLow = maxInt64(low, v), true
			high, haveHigh = minInt64(high, v), true
		default:
			return nil, false, nil
		}
	}

	if !haveLow && !haveHigh {
		return nil, false, nil
	}

	if haveLow && haveHigh && low == high {
		return nil, false, nil
	}

	indexSchema, ok := p.index.IndexFor(table, column)
	if !ok {
		return nil, false, nil
	}

	if low > high {
		return NewRangeIndexScan(p.storage, p.index, indexSchema.Name, 1, 0), true, nil
	}

	return NewRangeIndexScan(p.storage, p.index, indexSchema.Name, int32(low), int32(high)), true, nil
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}

	return b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}

	return b
}

// compileWhere builds a [Predicate] from where, applying NOT per
// condition and combining by precedence: contiguous AND runs become
// nested AND groups; the resulting groups are OR-ed together (spec
// §4.9).
func compileWhere(where WhereClause) (Predicate, error) {
	var (
		groups  []Predicate
		current []Predicate
	)

	flush := func() {
		switch len(current) {
		case 0:
			return
		case 1:
			groups = append(groups, current[0])
		default:
			groups = append(groups, &AndPredicate{Operands: append([]Predicate(nil), current...)})
		}

		current = nil
	}

	for i, cond := range where.Conditions {
		predicate, err := compileCondition(cond)
		if err != nil {
			return nil, err
		}

		if i == 0 {
			current = append(current, predicate)
			continue
		}

		switch where.Connectors[i-1] {
		case ConnAnd:
			current = append(current, predicate)
		case ConnOr:
			flush()
			current = append(current, predicate)
		}
	}

	flush()

	if len(groups) == 1 {
		return groups[0], nil
	}

	return &OrPredicate{Operands: groups}, nil
}

func compileCondition(cond Condition) (Predicate, error) {
	predicate, err := NewComparisonPredicate(cond.Column, cond.Op, cond.Literal)
	if err != nil {
		return nil, err
	}

	if cond.Negated {
		return &NotPredicate{Operand: predicate}, nil
	}

	return predicate, nil
}
