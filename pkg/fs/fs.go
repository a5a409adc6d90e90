// Package fs provides the filesystem abstraction the storage manager
// and buffer cache open heap files through.
//
// The main types are:
//   - [FS]: interface for the handful of filesystem operations the
//     storage layer needs
//   - [File]: interface for an open file, trimmed to the offset I/O
//     a heap page read/write actually performs
//   - [Real]: production implementation backed by the [os] package
//
// Example usage:
//
//	fsys := fs.NewReal()
//	f, err := fsys.OpenFile("table.tbl", os.O_RDWR|os.O_CREATE, 0o644)
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//	_, err = f.WriteAt(page, offset)
package fs

import (
	"io"
	"os"
)

// File represents an open, offset-addressable file descriptor.
//
// This interface is satisfied by [os.File]. Heap pages are always
// read and written at a page-aligned offset, never streamed
// sequentially, so File only needs [io.ReaderAt], [io.WriterAt], and
// [io.Closer] - unlike a general-purpose file abstraction, it does
// not expose Read/Write/Seek.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type File interface {
	io.ReaderAt
	io.WriterAt
	io.Closer
}

// FS defines the filesystem operations the storage layer needs: open
// a heap file for offset I/O, ensure its parent directory exists, and
// stat it to compute its current page count.
//
// Implementations in this package include:
//   - [Real]: production use, wraps [os] package
//
// Paths use OS semantics (like the os package and path/filepath), not
// the slash-separated paths used by the standard library io/fs
// package.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type FS interface {
	// Open opens a file for reading. See [os.Open].
	Open(path string) (File, error)

	// OpenFile opens a file with specified flags and permissions. See
	// [os.OpenFile]. Use this for fine-grained control (read-write,
	// create-if-missing).
	OpenFile(path string, flag int, perm os.FileMode) (File, error)

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	// No error if the directory already exists.
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat]. Returns
	// [os.ErrNotExist] if the file doesn't exist.
	Stat(path string) (os.FileInfo, error)
}

// Compile-time interface check.
var _ File = (*os.File)(nil)
