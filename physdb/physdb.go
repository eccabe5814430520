// Package physdb owns one DiskFile per FileKind and the per-kind
// read/write counters spec.md §4.2 asks for (the teacher has no
// counters; spec.md's Design Notes call for "an explicit metrics struct
// owned by each component" in place of the source's ambient globals).
package physdb

import (
	"path/filepath"

	"github.com/jgodjo/pagegraph/diskio"
	"github.com/jgodjo/pagegraph/gerr"
	"github.com/jgodjo/pagegraph/model"
)

// Metrics are the cumulative read/write counters for one FileKind.
type Metrics struct {
	Reads  uint64
	Writes uint64
}

// PhysicalDatabase holds one DiskFile per FileKind plus per-kind metrics.
// It exclusively owns its DiskFiles (spec.md §3 Ownership).
type PhysicalDatabase struct {
	pageSize int
	files    map[model.FileKind]*diskio.DiskFile
	metrics  map[model.FileKind]*Metrics
}

var fileSuffix = map[model.FileKind]string{
	model.NodeRecords:          ".nodes",
	model.NodeHeader:           ".nodes_hdr",
	model.RelationshipRecords:  ".rels",
	model.RelationshipHeader:   ".rels_hdr",
}

// Create opens (or creates) the four on-disk files rooted at dbPath,
// e.g. dbPath+".nodes", dbPath+".nodes_hdr", and so on (spec.md §6).
func Create(dbPath string, pageSize int) (*PhysicalDatabase, error) {
	pd := &PhysicalDatabase{
		pageSize: pageSize,
		files:    make(map[model.FileKind]*diskio.DiskFile),
		metrics:  make(map[model.FileKind]*Metrics),
	}
	for kind, suffix := range fileSuffix {
		path := filepath.Clean(dbPath + suffix)
		df, err := diskio.Create(path, pageSize)
		if err != nil {
			pd.Close()
			return nil, err
		}
		pd.files[kind] = df
		pd.metrics[kind] = &Metrics{}
	}
	return pd, nil
}

// PageSize returns the fixed page size every owned file shares.
func (pd *PhysicalDatabase) PageSize() int { return pd.pageSize }

// File returns the DiskFile for kind, or an ArgumentError if kind is unknown.
func (pd *PhysicalDatabase) File(kind model.FileKind) (*diskio.DiskFile, error) {
	df, ok := pd.files[kind]
	if !ok {
		return nil, gerr.Newf(gerr.ArgumentError, "unknown file kind %v", kind)
	}
	return df, nil
}

// ReadPage reads one page of kind and bumps its read counter.
func (pd *PhysicalDatabase) ReadPage(kind model.FileKind, pageNo int64, buf []byte) error {
	df, err := pd.File(kind)
	if err != nil {
		return err
	}
	if err := df.ReadPages(pageNo, pageNo, buf); err != nil {
		return err
	}
	pd.metrics[kind].Reads++
	return nil
}

// WritePage writes one page of kind and bumps its write counter.
func (pd *PhysicalDatabase) WritePage(kind model.FileKind, pageNo int64, buf []byte) error {
	df, err := pd.File(kind)
	if err != nil {
		return err
	}
	if err := df.WritePages(pageNo, pageNo, buf); err != nil {
		return err
	}
	pd.metrics[kind].Writes++
	return nil
}

// NumPages reports kind's current page count.
func (pd *PhysicalDatabase) NumPages(kind model.FileKind) (int64, error) {
	df, err := pd.File(kind)
	if err != nil {
		return 0, err
	}
	return df.NumPages(), nil
}

// Grow grows kind's file by n pages.
func (pd *PhysicalDatabase) Grow(kind model.FileKind, n int64) error {
	df, err := pd.File(kind)
	if err != nil {
		return err
	}
	return df.Grow(n)
}

// Metrics returns a copy of kind's read/write counters.
func (pd *PhysicalDatabase) Metrics(kind model.FileKind) Metrics {
	if m, ok := pd.metrics[kind]; ok {
		return *m
	}
	return Metrics{}
}

// Close closes every owned DiskFile, continuing past individual errors
// and returning the first one encountered (spec.md §5: "closing open
// files on shutdown" is the only cleanup a fatal abort attempts).
func (pd *PhysicalDatabase) Close() error {
	var first error
	for _, df := range pd.files {
		if err := df.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
