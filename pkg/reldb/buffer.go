package reldb

import (
	"container/list"
	"io"
	"os"

	"github.com/KDimitrov333/rel-db-engine/pkg/fs"
)

// bufferKey identifies a cached page by its owning file and page id.
type bufferKey struct {
	path   string
	pageID int
}

// bufferCache is a fixed-capacity page cache keyed by (file, page id)
// with LRU eviction. It is the only long-lived mutable shared state in
// the engine; writers bypass it for durability and invalidate the
// entry afterward.
//
// bufferCache is not safe for concurrent use - the core assumes
// sequential access within a process, with [tableLock] only guarding
// against other processes.
type bufferCache struct {
	capacity int
	pageSize int
	fsys     fs.FS

	ll    *list.List // front = most recently used
	items map[bufferKey]*list.Element
}

type bufferEntry struct {
	key  bufferKey
	data []byte
}

// newBufferCache creates a cache holding up to capacity pages of
// pageSize bytes each.
func newBufferCache(capacity, pageSize int) *bufferCache {
	return &bufferCache{
		capacity: capacity,
		pageSize: pageSize,
		fsys:     fs.NewReal(),
		ll:       list.New(),
		items:    make(map[bufferKey]*list.Element),
	}
}

// getPage returns the page-sized buffer for (path, pageID), loading it
// from disk on a cache miss. If the page's byte range lies at or past
// end-of-file, a freshly zeroed buffer is returned (not yet
// persisted). On a partial read at end-of-file, the tail of the
// returned buffer is zero.
//
// The returned slice is the cache's own backing buffer; callers that
// mutate a page must write it back to disk and then call [bufferCache.invalidate].
func (c *bufferCache) getPage(path string, pageID int) ([]byte, error) {
	key := bufferKey{path: path, pageID: pageID}

	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		return el.Value.(*bufferEntry).data, nil
	}

	data, err := c.loadPage(path, pageID)
	if err != nil {
		return nil, err
	}

	c.insert(key, data)

	return data, nil
}

func (c *bufferCache) loadPage(path string, pageID int) ([]byte, error) {
	buf := make([]byte, c.pageSize)

	f, err := c.fsys.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return buf, nil
		}

		return nil, newIOError(err, "open %s", path)
	}
	defer f.Close()

	n, err := f.ReadAt(buf, int64(pageID)*int64(c.pageSize))
	if err != nil && err != io.EOF {
		return nil, newIOError(err, "read page %d of %s", pageID, path)
	}

	_ = n // tail beyond n is already zero in the freshly allocated buf

	return buf, nil
}

func (c *bufferCache) insert(key bufferKey, data []byte) {
	el := c.ll.PushFront(&bufferEntry{key: key, data: data})
	c.items[key] = el

	for c.ll.Len() > c.capacity {
		back := c.ll.Back()
		if back == nil {
			break
		}

		c.ll.Remove(back)
		delete(c.items, back.Value.(*bufferEntry).key)
	}
}

// invalidate removes the cached entry for (path, pageID), if present.
func (c *bufferCache) invalidate(path string, pageID int) {
	key := bufferKey{path: path, pageID: pageID}

	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// invalidateRange removes all cached entries for path with page ids
// in [0, pageCount).
func (c *bufferCache) invalidateRange(path string, pageCount int) {
	for pid := 0; pid < pageCount; pid++ {
		c.invalidate(path, pid)
	}
}
