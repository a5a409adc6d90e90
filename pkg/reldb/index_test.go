package reldb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func seedStudents(t *testing.T, sm *StorageManager, n int) []RID {
	t.Helper()

	var rids []RID

	for i := 0; i < n; i++ {
		rid, err := sm.Insert("students", Record{Values: []Value{
			IntValue(int32(i)), VarcharValue("student"), BoolValue(i%2 == 0),
		}})
		require.NoError(t, err)

		rids = append(rids, rid)
	}

	return rids
}

func Test_IndexManager_CreateIndex_Rejects_Non_Int_Column(t *testing.T) {
	t.Parallel()

	_, sm, im := newTestEngine(t)
	schema := studentsSchema(tablePath(t, "students"))
	require.NoError(t, sm.CreateTable(schema))

	err := im.CreateIndex("idx_name", "students", "name", tablePath(t, "idx_name"))
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSchema)
}

func Test_IndexManager_CreateIndex_Builds_From_Existing_Rows(t *testing.T) {
	t.Parallel()

	_, sm, im := newTestEngine(t)
	schema := studentsSchema(tablePath(t, "students"))
	require.NoError(t, sm.CreateTable(schema))

	rids := seedStudents(t, sm, 10)

	require.NoError(t, im.CreateIndex("idx_id", "students", "id", tablePath(t, "idx_id")))

	got, err := im.Lookup("idx_id", 3)
	require.NoError(t, err)
	require.Equal(t, []RID{rids[3]}, got)
}

func Test_IndexManager_OnDelete_Removes_Rid_From_Tree(t *testing.T) {
	t.Parallel()

	_, sm, im := newTestEngine(t)
	schema := studentsSchema(tablePath(t, "students"))
	require.NoError(t, sm.CreateTable(schema))

	rids := seedStudents(t, sm, 5)
	require.NoError(t, im.CreateIndex("idx_id", "students", "id", tablePath(t, "idx_id")))

	ok, err := sm.Delete("students", rids[2])
	require.NoError(t, err)
	require.True(t, ok)

	got, err := im.Lookup("idx_id", 2)
	require.NoError(t, err)
	require.Nil(t, got)
}

func Test_IndexManager_RangeLookup_Returns_Rids_In_Bounds(t *testing.T) {
	t.Parallel()

	_, sm, im := newTestEngine(t)
	schema := studentsSchema(tablePath(t, "students"))
	require.NoError(t, sm.CreateTable(schema))

	rids := seedStudents(t, sm, 20)
	require.NoError(t, im.CreateIndex("idx_id", "students", "id", tablePath(t, "idx_id")))

	got, err := im.RangeLookup("idx_id", 5, 9)
	require.NoError(t, err)
	require.Equal(t, rids[5:10], got)
}

func Test_IndexManager_Lookup_Fails_When_Index_Unknown(t *testing.T) {
	t.Parallel()

	_, _, im := newTestEngine(t)

	_, err := im.Lookup("ghost", 1)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNotFound)
}

func Test_IndexManager_LookupRecords_Returns_Hydrated_Records(t *testing.T) {
	t.Parallel()

	_, sm, im := newTestEngine(t)
	schema := studentsSchema(tablePath(t, "students"))
	require.NoError(t, sm.CreateTable(schema))

	seedStudents(t, sm, 10)
	require.NoError(t, im.CreateIndex("idx_id", "students", "id", tablePath(t, "idx_id")))

	got, err := im.LookupRecords("idx_id", 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int32(3), got[0].Values[0].Int)
	require.Equal(t, "student", got[0].Values[1].Str)
}

func Test_IndexManager_RangeLookupRecords_Returns_Hydrated_Records_In_Bounds(t *testing.T) {
	t.Parallel()

	_, sm, im := newTestEngine(t)
	schema := studentsSchema(tablePath(t, "students"))
	require.NoError(t, sm.CreateTable(schema))

	seedStudents(t, sm, 20)
	require.NoError(t, im.CreateIndex("idx_id", "students", "id", tablePath(t, "idx_id")))

	got, err := im.RangeLookupRecords("idx_id", 5, 9)
	require.NoError(t, err)
	require.Len(t, got, 5)

	for i, record := range got {
		require.Equal(t, int32(5+i), record.Values[0].Int)
	}
}

func Test_IndexManager_LookupRecords_Fails_When_Index_Unknown(t *testing.T) {
	t.Parallel()

	_, _, im := newTestEngine(t)

	_, err := im.LookupRecords("ghost", 1)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNotFound)
}
