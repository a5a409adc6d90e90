package reldb

import (
	"os"
	"path/filepath"
	"strings"

	natomic "github.com/natefinch/atomic"

	"github.com/KDimitrov333/rel-db-engine/pkg/fs"
)

// ScanVisitor is called once per live record encountered by
// [StorageManager.Scan], in insertion order within a page and
// ascending page-id order across pages.
type ScanVisitor func(rid RID, record Record) error

// indexNotifier is the subset of [IndexManager] the storage manager
// calls back into on mutation. It is installed after construction,
// since an index manager needs a storage manager to build its first
// tree from but a storage manager outlives any particular set of
// indexes built against it.
type indexNotifier interface {
	onInsert(table string, rid RID, record Record) error
	onDelete(table string, rid RID, record Record) error
}

// StorageManager owns heap-file creation and the page-I/O protocol:
// choosing a target page for insert, reading/deleting by RID, and
// sequential scan. All page mutations go through the buffer cache for
// reads but bypass it for writes, invalidating afterward.
type StorageManager struct {
	catalog *Catalog
	cache   *bufferCache
	cfg     EngineConfig
	index   indexNotifier
	fsys    fs.FS
}

// NewStorageManager constructs a storage manager backed by catalog,
// using cfg's page size and buffer cache capacity.
func NewStorageManager(catalog *Catalog, cfg EngineConfig) *StorageManager {
	return &StorageManager{
		catalog: catalog,
		cache:   newBufferCache(cfg.BufferCacheCapacity, cfg.PageSize),
		cfg:     cfg,
		fsys:    fs.NewReal(),
	}
}

// SetIndexManager installs the index manager that receives on_insert/
// on_delete callbacks for every mutation. Callbacks only update indexes
// that are already built, so it must be installed before any
// insert/delete that those indexes should reflect; an index built later
// with CreateIndex picks up existing rows from its own full scan.
func (sm *StorageManager) SetIndexManager(im indexNotifier) {
	sm.index = im
}

// CreateTable registers schema in the catalog and creates its backing
// file (and any missing parent directories).
func (sm *StorageManager) CreateTable(schema TableSchema) error {
	if err := sm.catalog.RegisterTable(schema); err != nil {
		return err
	}

	dir := filepath.Dir(schema.Path)
	if dir != "" && dir != "." {
		if err := sm.fsys.MkdirAll(dir, 0o755); err != nil {
			return newIOError(err, "create directory %s", dir)
		}
	}

	if err := natomic.WriteFile(schema.Path, strings.NewReader("")); err != nil {
		return newIOError(err, "create table file %s", schema.Path)
	}

	return nil
}

// Insert validates and places record into table's heap file, returning
// its RID.
func (sm *StorageManager) Insert(table string, record Record) (RID, error) {
	schema, err := sm.catalog.Table(table)
	if err != nil {
		return RID{}, err
	}

	if err := validateRecord(record, schema.Columns); err != nil {
		return RID{}, err
	}

	data := serializeRecord(record, schema.Columns)
	if len(data) > maxRecordLen {
		return RID{}, newPageFullError("serialized record of %d bytes exceeds %d byte limit", len(data), maxRecordLen).withTable(table)
	}

	lock, err := sm.acquireLock(schema.Path)
	if err != nil {
		return RID{}, err
	}
	defer sm.releaseLock(lock)

	fileLen, err := sm.fileSize(schema.Path)
	if err != nil {
		return RID{}, err
	}

	pageID := sm.lastPageID(fileLen)

	buf, err := sm.cache.getPage(schema.Path, pageID)
	if err != nil {
		return RID{}, err
	}

	page := wrapHeapPage(append([]byte(nil), buf...), pageID)

	if !page.canFit(len(data)) {
		pageID++
		page = wrapHeapPage(make([]byte, sm.cfg.PageSize), pageID)
	}

	slotID, err := page.insert(data)
	if err != nil {
		return RID{}, err
	}

	if err := sm.writePage(schema.Path, page); err != nil {
		return RID{}, err
	}

	rid := RID{PageID: pageID, SlotID: slotID}

	if sm.index != nil {
		if err := sm.index.onInsert(table, rid, record); err != nil {
			return RID{}, err
		}
	}

	return rid, nil
}

// Read fetches and deserializes the record at rid. Fails with
// [ErrNotFound] if rid is out of range or tombstoned.
func (sm *StorageManager) Read(table string, rid RID) (Record, error) {
	schema, err := sm.catalog.Table(table)
	if err != nil {
		return Record{}, err
	}

	buf, err := sm.cache.getPage(schema.Path, rid.PageID)
	if err != nil {
		return Record{}, err
	}

	page := wrapHeapPage(buf, rid.PageID)

	raw, err := page.read(rid.SlotID)
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.withTable(table).withRID(rid)
		}

		return Record{}, err
	}

	return deserializeRecord(raw, schema.Columns)
}

// Delete tombstones the slot at rid, if live, writing the page back
// and invalidating the cache and notifying the index manager. Returns
// true iff a live record was tombstoned; deleting an already-absent
// RID returns (false, nil).
func (sm *StorageManager) Delete(table string, rid RID) (bool, error) {
	schema, err := sm.catalog.Table(table)
	if err != nil {
		return false, err
	}

	lock, err := sm.acquireLock(schema.Path)
	if err != nil {
		return false, err
	}
	defer sm.releaseLock(lock)

	buf, err := sm.cache.getPage(schema.Path, rid.PageID)
	if err != nil {
		return false, err
	}

	page := wrapHeapPage(append([]byte(nil), buf...), rid.PageID)

	raw, err := page.read(rid.SlotID)
	if err != nil {
		return false, nil
	}

	oldRecord, err := deserializeRecord(raw, schema.Columns)
	if err != nil {
		return false, err
	}

	page.delete(rid.SlotID)

	if err := sm.writePage(schema.Path, page); err != nil {
		return false, err
	}

	if sm.index != nil {
		if err := sm.index.onDelete(table, rid, oldRecord); err != nil {
			return false, err
		}
	}

	return true, nil
}

// Scan visits every live record of table, in ascending slot order
// within each page and ascending page-id order across pages.
func (sm *StorageManager) Scan(table string, visit ScanVisitor) error {
	schema, err := sm.catalog.Table(table)
	if err != nil {
		return err
	}

	count, err := sm.pageCount(schema.Path)
	if err != nil {
		return err
	}

	for pid := 0; pid < count; pid++ {
		records, err := sm.scanPage(schema, pid)
		if err != nil {
			return err
		}

		for _, row := range records {
			if err := visit(row.RID, row.Record); err != nil {
				return err
			}
		}
	}

	return nil
}

// pageCount returns the number of pages a heap file at path currently
// spans, 0 if it does not exist or is empty.
func (sm *StorageManager) pageCount(path string) (int, error) {
	fileLen, err := sm.fileSize(path)
	if err != nil {
		return 0, err
	}

	if fileLen == 0 {
		return 0, nil
	}

	return int((fileLen + int64(sm.cfg.PageSize) - 1) / int64(sm.cfg.PageSize)), nil
}

// scanPage loads page pid of schema's table and returns every live
// record it holds, in ascending slot order. Used both by [Scan]'s
// full-table visitor and by [SeqScanOperator]'s lazy per-page cursor.
func (sm *StorageManager) scanPage(schema TableSchema, pid int) ([]Row, error) {
	buf, err := sm.cache.getPage(schema.Path, pid)
	if err != nil {
		return nil, err
	}

	page := wrapHeapPage(buf, pid)

	var rows []Row

	for _, slotID := range page.liveSlotIDs() {
		raw, err := page.read(slotID)
		if err != nil {
			continue
		}

		record, err := deserializeRecord(raw, schema.Columns)
		if err != nil {
			return nil, err
		}

		rows = append(rows, Row{Record: record, RID: RID{PageID: pid, SlotID: slotID}, Schema: schema.Columns})
	}

	return rows, nil
}

func (sm *StorageManager) fileSize(path string) (int64, error) {
	info, err := sm.fsys.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}

		return 0, newIOError(err, "stat %s", path)
	}

	return info.Size(), nil
}

// lastPageID returns the page a new insert should target: 0 if the
// file is empty, otherwise the last page-aligned page in the file.
func (sm *StorageManager) lastPageID(fileLen int64) int {
	if fileLen == 0 {
		return 0
	}

	ps := int64(sm.cfg.PageSize)
	if fileLen%ps == 0 {
		return int(fileLen/ps) - 1
	}

	return int(fileLen / ps)
}

// writePage writes the full page bytes to disk at their page-aligned
// offset and invalidates the cache entry, following a write-then-
// invalidate protocol so the next read repopulates from disk.
func (sm *StorageManager) writePage(path string, page *heapPage) error {
	f, err := sm.fsys.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return newIOError(err, "open %s for write", path)
	}
	defer f.Close()

	offset := int64(page.pageID) * int64(sm.cfg.PageSize)

	if _, err := f.WriteAt(page.buf, offset); err != nil {
		return newIOError(err, "write page %d of %s", page.pageID, path)
	}

	sm.cache.invalidate(path, page.pageID)

	return nil
}

func (sm *StorageManager) acquireLock(path string) (*tableLock, error) {
	if sm.cfg.DisableLocking {
		return nil, nil
	}

	return lockTableFile(path, sm.cfg.LockTimeout)
}

func (sm *StorageManager) releaseLock(lock *tableLock) {
	_ = lock.unlock()
}
