package reldb

import (
	"encoding/binary"
	"unicode/utf8"
)

// Record codec. Serialization walks the column schema in order; the
// byte stream carries no self-describing type tags, so deserialization
// must be driven by the same schema used to encode.
//
// Per-value layout:
//   - INT: 4 bytes, big-endian two's complement.
//   - BOOLEAN: 1 byte (0 or 1).
//   - VARCHAR: 4-byte big-endian unsigned length, then that many
//     UTF-8 bytes.

// serializedSize returns the exact byte length [serializeRecord]
// would produce for r under schema, without allocating.
//
// serializedSize and serializeRecord must agree byte-exactly (spec
// §8's "size law").
func serializedSize(r Record, schema []ColumnSchema) int {
	n := 0

	for i, col := range schema {
		switch col.Type {
		case TypeInt:
			n += 4
		case TypeBoolean:
			n += 1
		case TypeVarchar:
			n += 4 + len(r.Values[i].Str)
		}
	}

	return n
}

// serializeRecord encodes r according to schema. The caller must have
// already validated r against schema (see [validateRecord]); this
// function does not re-check arity or value types.
func serializeRecord(r Record, schema []ColumnSchema) []byte {
	buf := make([]byte, serializedSize(r, schema))
	off := 0

	for i, col := range schema {
		v := r.Values[i]

		switch col.Type {
		case TypeInt:
			binary.BigEndian.PutUint32(buf[off:], uint32(v.Int))
			off += 4
		case TypeBoolean:
			if v.Bool {
				buf[off] = 1
			} else {
				buf[off] = 0
			}
			off++
		case TypeVarchar:
			b := []byte(v.Str)
			binary.BigEndian.PutUint32(buf[off:], uint32(len(b)))
			off += 4
			copy(buf[off:], b)
			off += len(b)
		}
	}

	return buf
}

// deserializeRecord decodes buf according to schema, the inverse of
// [serializeRecord]. Returns a [KindDecode] error on buffer underflow,
// a negative/oversized declared VARCHAR length, or invalid UTF-8.
func deserializeRecord(buf []byte, schema []ColumnSchema) (Record, error) {
	values := make([]Value, len(schema))
	off := 0

	for i, col := range schema {
		switch col.Type {
		case TypeInt:
			if off+4 > len(buf) {
				return Record{}, newDecodeError("buffer underflow decoding INT column %q", col.Name)
			}

			values[i] = IntValue(int32(binary.BigEndian.Uint32(buf[off:])))
			off += 4

		case TypeBoolean:
			if off+1 > len(buf) {
				return Record{}, newDecodeError("buffer underflow decoding BOOLEAN column %q", col.Name)
			}

			values[i] = BoolValue(buf[off] != 0)
			off++

		case TypeVarchar:
			if off+4 > len(buf) {
				return Record{}, newDecodeError("buffer underflow decoding VARCHAR length for column %q", col.Name)
			}

			length := int32(binary.BigEndian.Uint32(buf[off:]))
			off += 4

			if length < 0 {
				return Record{}, newDecodeError("negative declared length %d for column %q", length, col.Name)
			}

			if off+int(length) > len(buf) {
				return Record{}, newDecodeError("buffer underflow decoding VARCHAR column %q", col.Name)
			}

			raw := buf[off : off+int(length)]
			if !utf8.Valid(raw) {
				return Record{}, newDecodeError("invalid UTF-8 in column %q", col.Name)
			}

			values[i] = VarcharValue(string(raw))
			off += int(length)
		}
	}

	return Record{Values: values}, nil
}

// validateRecord checks r's arity and per-column types against
// schema, and VARCHAR byte-length constraints. Returns a [KindValue]
// error describing the first violation found.
func validateRecord(r Record, schema []ColumnSchema) error {
	if len(r.Values) != len(schema) {
		return newValueError("arity mismatch: want %d values, got %d", len(schema), len(r.Values))
	}

	for i, col := range schema {
		v := r.Values[i]

		if v.Type != col.Type {
			return newValueError("column %q: want type %s, got %s", col.Name, col.Type, v.Type).withColumn(col.Name)
		}

		if col.Type == TypeVarchar && col.Length > 0 {
			if n := len(v.Str); n > col.Length {
				return newValueError(
					"column %q: VARCHAR byte length %d exceeds limit %d", col.Name, n, col.Length,
				).withColumn(col.Name)
			}
		}
	}

	return nil
}
