package reldb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_StorageManager_Insert_Then_Read_Roundtrips(t *testing.T) {
	t.Parallel()

	_, sm, _ := newTestEngine(t)
	schema := studentsSchema(tablePath(t, "students"))
	require.NoError(t, sm.CreateTable(schema))

	record := Record{Values: []Value{IntValue(1), VarcharValue("Alice"), BoolValue(true)}}

	rid, err := sm.Insert("students", record)
	require.NoError(t, err)
	require.Equal(t, RID{PageID: 0, SlotID: 0}, rid)

	got, err := sm.Read("students", rid)
	require.NoError(t, err)
	require.True(t, got.Equal(record))
}

func Test_StorageManager_Insert_Rejects_Invalid_Record(t *testing.T) {
	t.Parallel()

	_, sm, _ := newTestEngine(t)
	schema := studentsSchema(tablePath(t, "students"))
	require.NoError(t, sm.CreateTable(schema))

	_, err := sm.Insert("students", Record{Values: []Value{IntValue(1)}})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrValue)
}

func Test_StorageManager_Delete_Tombstones_And_Read_Fails_Afterward(t *testing.T) {
	t.Parallel()

	_, sm, _ := newTestEngine(t)
	schema := studentsSchema(tablePath(t, "students"))
	require.NoError(t, sm.CreateTable(schema))

	record := Record{Values: []Value{IntValue(1), VarcharValue("Alice"), BoolValue(true)}}
	rid, err := sm.Insert("students", record)
	require.NoError(t, err)

	ok, err := sm.Delete("students", rid)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = sm.Read("students", rid)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNotFound)
}

func Test_StorageManager_Delete_On_Absent_Rid_Returns_False_Not_Error(t *testing.T) {
	t.Parallel()

	_, sm, _ := newTestEngine(t)
	schema := studentsSchema(tablePath(t, "students"))
	require.NoError(t, sm.CreateTable(schema))

	ok, err := sm.Delete("students", RID{PageID: 0, SlotID: 0})
	require.NoError(t, err)
	require.False(t, ok)
}

func Test_StorageManager_Scan_Visits_Live_Records_In_Order_Across_Pages(t *testing.T) {
	t.Parallel()

	_, sm, _ := newTestEngine(t)
	schema := studentsSchema(tablePath(t, "students"))
	require.NoError(t, sm.CreateTable(schema))

	const n = 200

	var rids []RID

	for i := 0; i < n; i++ {
		rid, err := sm.Insert("students", Record{Values: []Value{
			IntValue(int32(i)), VarcharValue("student"), BoolValue(i%2 == 0),
		}})
		require.NoError(t, err)
		rids = append(rids, rid)
	}

	// delete every third record
	for i := 0; i < n; i += 3 {
		_, err := sm.Delete("students", rids[i])
		require.NoError(t, err)
	}

	deletedCount := 0
	for i := 0; i < n; i += 3 {
		deletedCount++
	}

	var seen []int32

	lastPageID := -1

	err := sm.Scan("students", func(rid RID, record Record) error {
		require.GreaterOrEqual(t, rid.PageID, lastPageID)
		lastPageID = rid.PageID
		seen = append(seen, record.Values[0].Int)

		return nil
	})
	require.NoError(t, err)

	require.Len(t, seen, n-deletedCount)
}

func Test_StorageManager_Scan_On_Empty_Table_Visits_Nothing(t *testing.T) {
	t.Parallel()

	_, sm, _ := newTestEngine(t)
	schema := studentsSchema(tablePath(t, "students"))
	require.NoError(t, sm.CreateTable(schema))

	calls := 0

	err := sm.Scan("students", func(RID, Record) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	require.Zero(t, calls)
}

func Test_StorageManager_Insert_Notifies_Installed_Index(t *testing.T) {
	t.Parallel()

	_, sm, im := newTestEngine(t)
	schema := studentsSchema(tablePath(t, "students"))
	require.NoError(t, sm.CreateTable(schema))
	require.NoError(t, im.CreateIndex("idx_id", "students", "id", tablePath(t, "idx_id")))

	rid, err := sm.Insert("students", Record{Values: []Value{IntValue(7), VarcharValue("Bob"), BoolValue(false)}})
	require.NoError(t, err)

	rids, err := im.Lookup("idx_id", 7)
	require.NoError(t, err)
	require.Equal(t, []RID{rid}, rids)
}
