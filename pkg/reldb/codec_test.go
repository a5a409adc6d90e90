package reldb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_SerializeRecord_Then_Deserialize_Roundtrips(t *testing.T) {
	t.Parallel()

	schema := studentsSchema("").Columns
	record := Record{Values: []Value{IntValue(42), VarcharValue("Alice"), BoolValue(true)}}

	buf := serializeRecord(record, schema)
	require.Len(t, buf, serializedSize(record, schema))

	got, err := deserializeRecord(buf, schema)
	require.NoError(t, err)
	require.True(t, got.Equal(record), "got %+v, want %+v", got, record)
}

func Test_SerializeRecord_Handles_Empty_Varchar(t *testing.T) {
	t.Parallel()

	schema := studentsSchema("").Columns
	record := Record{Values: []Value{IntValue(1), VarcharValue(""), BoolValue(false)}}

	buf := serializeRecord(record, schema)

	got, err := deserializeRecord(buf, schema)
	require.NoError(t, err)
	require.True(t, got.Equal(record))
}

func Test_DeserializeRecord_Fails_When_Buffer_Truncated(t *testing.T) {
	t.Parallel()

	schema := studentsSchema("").Columns
	record := Record{Values: []Value{IntValue(1), VarcharValue("hi"), BoolValue(true)}}
	buf := serializeRecord(record, schema)

	_, err := deserializeRecord(buf[:len(buf)-1], schema)
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, KindDecode, e.Kind)
}

func Test_DeserializeRecord_Fails_On_Negative_Varchar_Length(t *testing.T) {
	t.Parallel()

	schema := []ColumnSchema{{Name: "s", Type: TypeVarchar, Length: 10}}
	buf := []byte{0xFF, 0xFF, 0xFF, 0xFF} // -1 as int32 big-endian

	_, err := deserializeRecord(buf, schema)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrDecode)
}

func Test_DeserializeRecord_Fails_On_Invalid_UTF8(t *testing.T) {
	t.Parallel()

	schema := []ColumnSchema{{Name: "s", Type: TypeVarchar, Length: 10}}
	buf := []byte{0, 0, 0, 2, 0xFF, 0xFE}

	_, err := deserializeRecord(buf, schema)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrDecode)
}

func Test_ValidateRecord_Fails_On_Arity_Mismatch(t *testing.T) {
	t.Parallel()

	schema := studentsSchema("").Columns
	record := Record{Values: []Value{IntValue(1), VarcharValue("x")}}

	err := validateRecord(record, schema)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrValue)
}

func Test_ValidateRecord_Fails_On_Type_Mismatch(t *testing.T) {
	t.Parallel()

	schema := studentsSchema("").Columns
	record := Record{Values: []Value{VarcharValue("wrong"), VarcharValue("x"), BoolValue(true)}}

	err := validateRecord(record, schema)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrValue)
}

func Test_ValidateRecord_Fails_When_Varchar_Exceeds_Length(t *testing.T) {
	t.Parallel()

	schema := studentsSchema("").Columns
	record := Record{Values: []Value{IntValue(1), VarcharValue("this name is far too long"), BoolValue(true)}}

	err := validateRecord(record, schema)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrValue)
}
