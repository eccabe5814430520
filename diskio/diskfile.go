// Package diskio implements the paged disk file abstraction of spec.md
// §4.1: one OS file split into fixed-size pages, with range read/write
// and grow/shrink. Adapted from the teacher's disk.DiskManager, but
// collapsed from a sharded multi-file pool (Data0.bin, Data1.bin, ...)
// down to one growable file per FileKind, since spec.md §6 names exactly
// four files rather than an open-ended shard count.
package diskio

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/jgodjo/pagegraph/gerr"
)

// MaxPageNo bounds the file at a large implementation limit (spec.md §4.1).
const MaxPageNo = 1 << 40

// DiskFile is one OS file addressed in fixed-size pages.
type DiskFile struct {
	f        *os.File
	pageSize int
	numPages int64
}

// Create opens or creates path in read/write mode and derives the page
// count from the file's current length.
func Create(path string, pageSize int) (*DiskFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, gerr.Wrapf(gerr.IoError, err, "open %s", path)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, gerr.Wrapf(gerr.IoError, err, "stat %s", path)
	}
	if stat.Size()%int64(pageSize) != 0 {
		f.Close()
		return nil, gerr.Newf(gerr.IoError, "%s: length %d is not a multiple of page size %d", path, stat.Size(), pageSize)
	}
	return &DiskFile{f: f, pageSize: pageSize, numPages: stat.Size() / int64(pageSize)}, nil
}

// NumPages returns the file's current page count.
func (d *DiskFile) NumPages() int64 { return d.numPages }

// PageSize returns the fixed page size this file was opened with.
func (d *DiskFile) PageSize() int { return d.pageSize }

func (d *DiskFile) checkRange(first, last int64) error {
	if first > last {
		return gerr.Newf(gerr.ArgumentError, "first %d > last %d", first, last)
	}
	if first < 0 || last >= d.numPages {
		return gerr.Newf(gerr.ArgumentError, "page range [%d,%d] out of bounds (numPages=%d)", first, last, d.numPages)
	}
	return nil
}

// ReadPages copies (last-first+1)*PageSize bytes starting at page first
// into buf.
func (d *DiskFile) ReadPages(first, last int64, buf []byte) error {
	if err := d.checkRange(first, last); err != nil {
		return err
	}
	want := int((last - first + 1)) * d.pageSize
	if len(buf) < want {
		return gerr.Newf(gerr.ArgumentError, "buf too small: have %d want %d", len(buf), want)
	}
	off := first * int64(d.pageSize)
	n, err := d.f.ReadAt(buf[:want], off)
	if err != nil && !errors.Is(err, io.EOF) {
		return gerr.Wrapf(gerr.IoError, err, "read pages [%d,%d]", first, last)
	}
	for i := n; i < want; i++ {
		buf[i] = 0
	}
	return nil
}

// WritePages writes buf's first (last-first+1)*PageSize bytes at page
// first, growing the file (zero-filled) if last >= numPages.
func (d *DiskFile) WritePages(first, last int64, buf []byte) error {
	if first > last {
		return gerr.Newf(gerr.ArgumentError, "first %d > last %d", first, last)
	}
	if first < 0 {
		return gerr.Newf(gerr.ArgumentError, "negative page index %d", first)
	}
	if last >= MaxPageNo {
		return gerr.Newf(gerr.ArgumentError, "page %d exceeds MaxPageNo", last)
	}
	if last >= d.numPages {
		if err := d.Grow(last - d.numPages + 1); err != nil {
			return err
		}
	}
	want := int((last - first + 1)) * d.pageSize
	if len(buf) < want {
		return gerr.Newf(gerr.ArgumentError, "buf too small: have %d want %d", len(buf), want)
	}
	off := first * int64(d.pageSize)
	if _, err := d.f.WriteAt(buf[:want], off); err != nil {
		return gerr.Wrapf(gerr.IoError, err, "write pages [%d,%d]", first, last)
	}
	return nil
}

// Grow appends n zeroed pages.
func (d *DiskFile) Grow(n int64) error {
	if n <= 0 {
		return gerr.Newf(gerr.ArgumentError, "grow count must be positive, got %d", n)
	}
	if d.numPages+n > MaxPageNo {
		return gerr.Newf(gerr.CapacityError, "growing by %d would exceed MaxPageNo", n)
	}
	zero := make([]byte, int(n)*d.pageSize)
	off := d.numPages * int64(d.pageSize)
	if _, err := d.f.WriteAt(zero, off); err != nil {
		return gerr.Wrapf(gerr.IoError, err, "grow by %d pages", n)
	}
	d.numPages += n
	return nil
}

// Shrink truncates n pages from the tail. The caller is responsible for
// having migrated any live records off them first. Fixes the Open
// Question of spec.md §9: the guard is by <= numPages, not an
// always-true unsigned-wraparound check.
func (d *DiskFile) Shrink(n int64) error {
	if n < 0 {
		return gerr.Newf(gerr.ArgumentError, "shrink count must be non-negative, got %d", n)
	}
	if n > d.numPages {
		return gerr.Newf(gerr.ArgumentError, "cannot shrink by %d pages, file only has %d", n, d.numPages)
	}
	newPages := d.numPages - n
	if err := d.f.Truncate(newPages * int64(d.pageSize)); err != nil {
		return gerr.Wrapf(gerr.IoError, err, "shrink by %d pages", n)
	}
	d.numPages = newPages
	return nil
}

// ClearPage overwrites page i with zeros.
func (d *DiskFile) ClearPage(i int64) error {
	if i < 0 || i >= d.numPages {
		return gerr.Newf(gerr.ArgumentError, "page %d out of bounds (numPages=%d)", i, d.numPages)
	}
	zero := make([]byte, d.pageSize)
	if _, err := d.f.WriteAt(zero, i*int64(d.pageSize)); err != nil {
		return gerr.Wrapf(gerr.IoError, err, "clear page %d", i)
	}
	return nil
}

// Sync flushes OS-buffered writes to stable storage.
func (d *DiskFile) Sync() error {
	if err := d.f.Sync(); err != nil {
		return gerr.Wrap(gerr.IoError, err, "sync")
	}
	return nil
}

// Close closes the underlying OS file.
func (d *DiskFile) Close() error {
	if err := d.f.Close(); err != nil {
		return gerr.Wrap(gerr.IoError, err, "close")
	}
	return nil
}
