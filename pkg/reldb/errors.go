package reldb

import (
	"errors"
	"fmt"
)

// Kind classifies the failure represented by an [*Error].
//
// Callers should generally not switch on Kind directly; prefer
// [errors.Is] against the sentinel values below, which is stable
// even if additional context is wrapped in later.
type Kind uint8

// Error kinds the core distinguishes.
const (
	// KindSchema covers unknown table/column/index, duplicate
	// table/index names, unresolved projection columns, and predicate
	// type errors (an ordering operator on a non-INT literal, or a
	// literal whose type differs from its column's).
	KindSchema Kind = iota
	// KindValue covers record validation failures: arity mismatches,
	// record value/column type mismatches, and VARCHAR length overruns.
	KindValue
	// KindDecode covers malformed record bytes: negative lengths,
	// invalid UTF-8, buffer underflow.
	KindDecode
	// KindPageFull covers a record that cannot be placed even in a
	// fresh page.
	KindPageFull
	// KindNotFound covers reads of out-of-range/tombstoned slots and
	// lookups of unknown indexes.
	KindNotFound
	// KindIO covers underlying file I/O failures.
	KindIO
	// KindInvariant covers internal tree/page invariant violations.
	// These should never surface from a correct implementation.
	KindInvariant
)

func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "schema"
	case KindValue:
		return "value"
	case KindDecode:
		return "decode"
	case KindPageFull:
		return "page_full"
	case KindNotFound:
		return "not_found"
	case KindIO:
		return "io"
	case KindInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// Sentinel errors for [errors.Is] classification. Every [*Error] this
// package returns has an Unwrap chain ending in exactly one of these,
// matching its Kind.
var (
	ErrSchema    = errors.New("reldb: schema error")
	ErrValue     = errors.New("reldb: value error")
	ErrDecode    = errors.New("reldb: decode error")
	ErrPageFull  = errors.New("reldb: page full")
	ErrNotFound  = errors.New("reldb: not found")
	ErrIO        = errors.New("reldb: io error")
	ErrInvariant = errors.New("reldb: invariant violated")
)

func sentinelFor(k Kind) error {
	switch k {
	case KindSchema:
		return ErrSchema
	case KindValue:
		return ErrValue
	case KindDecode:
		return ErrDecode
	case KindPageFull:
		return ErrPageFull
	case KindNotFound:
		return ErrNotFound
	case KindIO:
		return ErrIO
	case KindInvariant:
		return ErrInvariant
	default:
		return ErrInvariant
	}
}

// Error is the uniform error type returned by the public reldb APIs
// (a table-lock acquisition timeout is the one plain wrapped error).
//
// It carries structured context (table, column, index name, RID)
// appended to the message, in the form:
//
//	arity mismatch: want 3 values, got 2 (table=students)
//
// Use [errors.As] to extract the structured fields, and [errors.Is]
// against the Err* sentinels (or [ErrSchema] etc.) to classify.
type Error struct {
	Kind  Kind
	Table string
	Column string
	Index string
	RID   *RID
	Err   error
}

// Error formats the message followed by "(key=value ...)" context.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}

	suffix := e.suffix()
	if suffix == "" {
		return msg
	}

	if msg == "" {
		return suffix
	}

	return msg + " " + suffix
}

func (e *Error) suffix() string {
	var parts []string

	if e.Table != "" {
		parts = append(parts, "table="+e.Table)
	}

	if e.Column != "" {
		parts = append(parts, "column="+e.Column)
	}

	if e.Index != "" {
		parts = append(parts, "index="+e.Index)
	}

	if e.RID != nil {
		parts = append(parts, fmt.Sprintf("rid=(%d,%d)", e.RID.PageID, e.RID.SlotID))
	}

	if len(parts) == 0 {
		return ""
	}

	out := "("
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}

	return out + ")"
}

// Unwrap returns the sentinel matching e.Kind, so [errors.Is] against
// ErrNotFound/ErrPageFull/etc. classifies any *Error regardless of its
// specific message or context.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	if e.Err != nil {
		if errors.Is(e.Err, sentinelFor(e.Kind)) {
			return e.Err
		}
	}

	return sentinelFor(e.Kind)
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func newSchemaError(format string, args ...any) *Error {
	return newError(KindSchema, format, args...)
}

func newValueError(format string, args ...any) *Error {
	return newError(KindValue, format, args...)
}

func newDecodeError(format string, args ...any) *Error {
	return newError(KindDecode, format, args...)
}

func newPageFullError(format string, args ...any) *Error {
	return newError(KindPageFull, format, args...)
}

func newNotFoundError(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func newIOError(err error, format string, args ...any) *Error {
	wrapped := fmt.Errorf(format+": %w", append(args, err)...)
	return &Error{Kind: KindIO, Err: wrapped}
}

func newInvariantError(format string, args ...any) *Error {
	return newError(KindInvariant, format, args...)
}

// withTable returns e with Table set, for fluent construction.
func (e *Error) withTable(table string) *Error {
	e.Table = table
	return e
}

func (e *Error) withColumn(col string) *Error {
	e.Column = col
	return e
}

func (e *Error) withIndex(idx string) *Error {
	e.Index = idx
	return e
}

func (e *Error) withRID(rid RID) *Error {
	e.RID = &rid
	return e
}
