package reldb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Error_Formats_Message_With_Context_Suffix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "bare",
			err:  newNotFoundError("unknown table %q", "ghost"),
			want: `unknown table "ghost"`,
		},
		{
			name: "with table",
			err:  newNotFoundError("unknown table %q", "ghost").withTable("ghost"),
			want: `unknown table "ghost" (table=ghost)`,
		},
		{
			name: "with table and column",
			err:  newSchemaError("type mismatch").withTable("students").withColumn("id"),
			want: "type mismatch (table=students column=id)",
		},
		{
			name: "with rid",
			err:  newNotFoundError("tombstoned").withRID(RID{PageID: 1, SlotID: 2}),
			want: "tombstoned (rid=(1,2))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func Test_Error_Unwrap_Classifies_Via_ErrorsIs(t *testing.T) {
	t.Parallel()

	err := newPageFullError("record too large")

	require.ErrorIs(t, err, ErrPageFull)
	require.False(t, errors.Is(err, ErrNotFound))
}

func Test_Error_As_Extracts_Structured_Fields(t *testing.T) {
	t.Parallel()

	rid := RID{PageID: 3, SlotID: 1}
	err := error(newNotFoundError("gone").withTable("students").withRID(rid))

	var e *Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, "students", e.Table)
	require.Equal(t, rid, *e.RID)
}
