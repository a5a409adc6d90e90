package reldb

import "fmt"

// DataType is the tag identifying a [Value]'s runtime type.
type DataType uint8

// Supported data types.
const (
	TypeInt DataType = iota
	TypeBoolean
	TypeVarchar
)

func (t DataType) String() string {
	switch t {
	case TypeInt:
		return "INT"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeVarchar:
		return "VARCHAR"
	default:
		return "UNKNOWN"
	}
}

// Value is one of: signed 32-bit integer, boolean, or UTF-8 string.
//
// The zero Value is an Int of 0; use the constructors below rather
// than composite literals to keep Type and the payload field in sync.
type Value struct {
	Type DataType
	Int  int32
	Bool bool
	Str  string
}

// IntValue constructs an INT value.
func IntValue(v int32) Value { return Value{Type: TypeInt, Int: v} }

// BoolValue constructs a BOOLEAN value.
func BoolValue(v bool) Value { return Value{Type: TypeBoolean, Bool: v} }

// VarcharValue constructs a VARCHAR value.
func VarcharValue(v string) Value { return Value{Type: TypeVarchar, Str: v} }

// Equal reports whether v and other have the same type and payload.
func (v Value) Equal(other Value) bool {
	if v.Type != other.Type {
		return false
	}

	switch v.Type {
	case TypeInt:
		return v.Int == other.Int
	case TypeBoolean:
		return v.Bool == other.Bool
	case TypeVarchar:
		return v.Str == other.Str
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Type {
	case TypeInt:
		return fmt.Sprintf("%d", v.Int)
	case TypeBoolean:
		return fmt.Sprintf("%t", v.Bool)
	case TypeVarchar:
		return v.Str
	default:
		return "<invalid>"
	}
}

// ColumnSchema describes one column of a table.
type ColumnSchema struct {
	// Name is the column identifier. Must be non-empty.
	Name string
	// Type is the column's data type.
	Type DataType
	// Length is the byte-length constraint. Must be >0 for VARCHAR
	// columns (a VARCHAR value's UTF-8 byte length must not exceed
	// it), and 0 for every other type.
	Length int
}

// TableSchema describes a table: its unique name, ordered columns,
// and backing file path. Immutable once registered with a [Catalog].
type TableSchema struct {
	Name    string
	Columns []ColumnSchema
	Path    string
}

// ColumnIndex returns the position of the named column, or -1 if the
// table has no such column.
func (t TableSchema) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}

	return -1
}

// Column returns the named column and true, or the zero value and
// false if the table has no such column.
func (t TableSchema) Column(name string) (ColumnSchema, bool) {
	i := t.ColumnIndex(name)
	if i < 0 {
		return ColumnSchema{}, false
	}

	return t.Columns[i], true
}

// IndexSchema describes a secondary index on one column of one table.
// Only INT columns may be indexed.
type IndexSchema struct {
	Name   string
	Table  string
	Column string
	// Path is a backing-file marker; this core keeps no on-disk tree.
	Path string
}

// Record is an ordered tuple of values. Its length and per-position
// types must match a [TableSchema]'s columns in order.
type Record struct {
	Values []Value
}

// Equal reports whether r and other have the same values in the same
// order.
func (r Record) Equal(other Record) bool {
	if len(r.Values) != len(other.Values) {
		return false
	}

	for i := range r.Values {
		if !r.Values[i].Equal(other.Values[i]) {
			return false
		}
	}

	return true
}

// RID (row identifier) is a (page id, slot id) pair uniquely
// addressing a live or tombstoned slot within a table's heap file.
// RIDs are stable: once assigned to a live record, a RID never comes
// to refer to a different record, and a tombstoned RID never becomes
// live again.
type RID struct {
	PageID int
	SlotID int
}

func (r RID) String() string {
	return fmt.Sprintf("(%d,%d)", r.PageID, r.SlotID)
}

// Row is a pipeline unit flowing through the operator tree: a record,
// the RID it was read from (implementation-defined for join output -
// see [JoinOperator]), and the column schema describing the record's
// current layout (nil if the producing operator has none, though in
// practice every operator in this core provides one).
type Row struct {
	Record Record
	RID    RID
	Schema []ColumnSchema
}

// ColumnIndex returns the position of name within the row's schema,
// or -1 if not present (or the row carries no schema).
func (r Row) ColumnIndex(name string) int {
	for i, c := range r.Schema {
		if c.Name == name {
			return i
		}
	}

	return -1
}
