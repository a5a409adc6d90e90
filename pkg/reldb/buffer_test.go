package reldb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_BufferCache_GetPage_Returns_Zeroed_Buffer_When_File_Missing(t *testing.T) {
	t.Parallel()

	cache := newBufferCache(4, 4096)

	buf, err := cache.getPage(filepath.Join(t.TempDir(), "missing.tbl"), 0)
	require.NoError(t, err)
	require.Len(t, buf, 4096)

	for _, b := range buf {
		require.Zero(t, b)
	}
}

func Test_BufferCache_GetPage_Reads_Page_Aligned_Offset(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "t.tbl")

	data := make([]byte, 4096*2)
	data[4096] = 0xAB // first byte of page 1

	require.NoError(t, os.WriteFile(path, data, 0o644))

	cache := newBufferCache(4, 4096)

	page1, err := cache.getPage(path, 1)
	require.NoError(t, err)
	require.Equal(t, byte(0xAB), page1[0])
}

func Test_BufferCache_Evicts_Least_Recently_Used(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "t.tbl")
	require.NoError(t, os.WriteFile(path, make([]byte, 4096*3), 0o644))

	cache := newBufferCache(2, 4096)

	_, err := cache.getPage(path, 0)
	require.NoError(t, err)
	_, err = cache.getPage(path, 1)
	require.NoError(t, err)

	// touch page 0 again, making page 1 the LRU victim
	_, err = cache.getPage(path, 0)
	require.NoError(t, err)

	_, err = cache.getPage(path, 2)
	require.NoError(t, err)

	_, stillCached := cache.items[bufferKey{path: path, pageID: 1}]
	require.False(t, stillCached, "page 1 should have been evicted")

	_, cached0 := cache.items[bufferKey{path: path, pageID: 0}]
	require.True(t, cached0, "page 0 should still be cached")
}

func Test_BufferCache_Invalidate_Forces_Reload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "t.tbl")
	require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0o644))

	cache := newBufferCache(4, 4096)

	buf, err := cache.getPage(path, 0)
	require.NoError(t, err)
	buf[0] = 0x42 // mutate the cache's own buffer without writing through

	cache.invalidate(path, 0)

	reloaded, err := cache.getPage(path, 0)
	require.NoError(t, err)
	require.Equal(t, byte(0), reloaded[0], "invalidated page must reload from disk, not reuse the mutated buffer")
}
