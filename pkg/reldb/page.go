package reldb

import "encoding/binary"

// Heap page layout:
//
//	[0:4]   free-space pointer (uint32, big-endian)
//	[4:6]   slot count (uint16, big-endian)
//	[6:8]   reserved
//	[8:..]  record data area, growing forward from header end
//	[..:N]  slot directory, growing backward from page end; each
//	        entry is 4 bytes: offset (int16) then length (uint16).
//	        offset == -1 marks a tombstoned slot.
const (
	pageHeaderSize   = 8
	slotEntrySize    = 4
	tombstoneOffset  = -1
	maxRecordLen     = 65535
)

// heapPage wraps a page-sized byte buffer and provides slot-level
// operations over it. The zero value is not usable; use [wrapHeapPage].
type heapPage struct {
	buf    []byte
	pageID int
}

// wrapHeapPage interprets buf (which must be exactly the configured
// page size) as a heap page. If both header fields are zero - a fresh
// all-zero buffer - it is initialized: free-space pointer set to the
// header size, slot count to 0.
func wrapHeapPage(buf []byte, pageID int) *heapPage {
	p := &heapPage{buf: buf, pageID: pageID}

	if p.freeSpacePtr() == 0 && p.slotCount() == 0 {
		p.setFreeSpacePtr(pageHeaderSize)
		p.setSlotCount(0)
	}

	return p
}

func (p *heapPage) freeSpacePtr() int {
	return int(binary.BigEndian.Uint32(p.buf[0:4]))
}

func (p *heapPage) setFreeSpacePtr(v int) {
	binary.BigEndian.PutUint32(p.buf[0:4], uint32(v))
}

func (p *heapPage) slotCount() int {
	return int(binary.BigEndian.Uint16(p.buf[4:6]))
}

func (p *heapPage) setSlotCount(v int) {
	binary.BigEndian.PutUint16(p.buf[4:6], uint16(v))
}

func (p *heapPage) slotDirEntryOffset(slotID int) int {
	return len(p.buf) - (slotID+1)*slotEntrySize
}

func (p *heapPage) slotEntry(slotID int) (offset int, length int) {
	off := p.slotDirEntryOffset(slotID)
	return int(int16(binary.BigEndian.Uint16(p.buf[off : off+2]))), int(binary.BigEndian.Uint16(p.buf[off+2 : off+4]))
}

func (p *heapPage) setSlotEntry(slotID, offset, length int) {
	off := p.slotDirEntryOffset(slotID)
	binary.BigEndian.PutUint16(p.buf[off:off+2], uint16(int16(offset)))
	binary.BigEndian.PutUint16(p.buf[off+2:off+4], uint16(length))
}

// freeBytes returns the space currently available between the data
// area and the slot directory.
func (p *heapPage) freeBytes() int {
	slotDirStart := len(p.buf) - p.slotCount()*slotEntrySize
	return slotDirStart - p.freeSpacePtr()
}

// canFit reports whether a record of length n (plus the new slot
// directory entry it would require) fits in the page's current free
// space, and that n itself does not exceed the per-record limit.
func (p *heapPage) canFit(n int) bool {
	if n > maxRecordLen {
		return false
	}

	return n+slotEntrySize <= p.freeBytes()
}

// insert copies data into the page's free space and appends a slot
// directory entry for it, returning the new slot id (the previous
// slot count). Fails with [ErrPageFull] if canFit(len(data)) is false.
func (p *heapPage) insert(data []byte) (int, error) {
	if !p.canFit(len(data)) {
		return 0, newPageFullError("record of %d bytes does not fit in page", len(data))
	}

	off := p.freeSpacePtr()
	copy(p.buf[off:off+len(data)], data)

	slotID := p.slotCount()
	p.setSlotEntry(slotID, off, len(data))
	p.setFreeSpacePtr(off + len(data))
	p.setSlotCount(slotID + 1)

	return slotID, nil
}

// read returns a copy of the bytes stored at slotID. Fails with
// [ErrNotFound] if slotID is out of range or tombstoned.
func (p *heapPage) read(slotID int) ([]byte, error) {
	if slotID < 0 || slotID >= p.slotCount() {
		return nil, newNotFoundError("slot %d out of range (page has %d slots)", slotID, p.slotCount())
	}

	off, length := p.slotEntry(slotID)
	if off == tombstoneOffset {
		return nil, newNotFoundError("slot %d is tombstoned", slotID)
	}

	out := make([]byte, length)
	copy(out, p.buf[off:off+length])

	return out, nil
}

// delete tombstones slotID (sets offset to -1, length to 0). Space is
// not reclaimed. Out-of-range slotIDs are ignored silently.
func (p *heapPage) delete(slotID int) {
	if slotID < 0 || slotID >= p.slotCount() {
		return
	}

	p.setSlotEntry(slotID, tombstoneOffset, 0)
}

// liveSlotIDs returns the ascending list of slot ids whose offset is
// not the tombstone sentinel and whose length is positive.
func (p *heapPage) liveSlotIDs() []int {
	var ids []int

	for i := 0; i < p.slotCount(); i++ {
		off, length := p.slotEntry(i)
		if off != tombstoneOffset && length > 0 {
			ids = append(ids, i)
		}
	}

	return ids
}
