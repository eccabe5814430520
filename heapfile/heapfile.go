// Package heapfile implements the slotted heap file of spec.md §4.3: a
// fixed-width record store whose free slots are tracked by a bitmap in a
// companion header file, with a rotating allocation hint so CreateNode/
// CreateRelationship don't always scan from slot zero. Adapted from the
// teacher's relation.Manager (InsertRecord/DeleteRecord + header
// bookkeeping), but replaces its per-page with-space/full linked lists
// with the flat file-wide bitmap spec.md §9's Open Question mandates.
package heapfile

import (
	"github.com/jgodjo/pagegraph/gerr"
	"github.com/jgodjo/pagegraph/model"
	"github.com/jgodjo/pagegraph/pagecache"
)

// Heap is a slotted, fixed-width record store of T, generic over the
// record's on-disk encoding so node and relationship records share one
// allocator implementation.
type Heap[T any] struct {
	pc      *pagecache.PageCache
	recKind model.FileKind
	hdrKind model.FileKind

	recSize     int
	recsPerPage int
	bitsPerPage int

	encode func(buf []byte, off int, rec T)
	decode func(buf []byte, off int) T

	hint int64 // last_alloc_slot: rotating allocation hint
}

func newHeap[T any](pc *pagecache.PageCache, recKind, hdrKind model.FileKind, recSize int,
	encode func([]byte, int, T), decode func([]byte, int) T) *Heap[T] {
	ps := pc.PageSize()
	return &Heap[T]{
		pc:          pc,
		recKind:     recKind,
		hdrKind:     hdrKind,
		recSize:     recSize,
		recsPerPage: ps / recSize,
		bitsPerPage: ps * 8,
		encode:      encode,
		decode:      decode,
	}
}

func (h *Heap[T]) slotLocation(slot int64) (pageNo int64, offset int) {
	return slot / int64(h.recsPerPage), int(slot%int64(h.recsPerPage)) * h.recSize
}

func (h *Heap[T]) bitLocation(slot int64) (pageNo int64, bitIdx int) {
	return slot / int64(h.bitsPerPage), int(slot % int64(h.bitsPerPage))
}

func getBit(buf []byte, idx int) bool { return buf[idx/8]&(1<<uint(idx%8)) != 0 }

func setBit(buf []byte, idx int, v bool) {
	if v {
		buf[idx/8] |= 1 << uint(idx%8)
	} else {
		buf[idx/8] &^= 1 << uint(idx%8)
	}
}

// capacitySlots is how many record slots the records file currently has
// room for.
func (h *Heap[T]) capacitySlots() (int64, error) {
	n, err := h.pc.NumPages(h.recKind)
	if err != nil {
		return 0, err
	}
	return n * int64(h.recsPerPage), nil
}

func (h *Heap[T]) headerCapacitySlots() (int64, error) {
	n, err := h.pc.NumPages(h.hdrKind)
	if err != nil {
		return 0, err
	}
	return n * int64(h.bitsPerPage), nil
}

// ensureHeaderCapacity grows the header file until its bitmap can
// address at least wantSlots slots.
func (h *Heap[T]) ensureHeaderCapacity(wantSlots int64) error {
	avail, err := h.headerCapacitySlots()
	if err != nil {
		return err
	}
	for avail < wantSlots {
		if err := h.pc.GrowFile(h.hdrKind, 1); err != nil {
			return err
		}
		avail += int64(h.bitsPerPage)
	}
	return nil
}

func (h *Heap[T]) readBit(slot int64) (bool, error) {
	pageNo, bitIdx := h.bitLocation(slot)
	pg, err := h.pc.PinPage(h.hdrKind, pageNo)
	if err != nil {
		return false, err
	}
	v := getBit(pg.Data, bitIdx)
	if err := h.pc.UnpinPage(h.hdrKind, pageNo, false); err != nil {
		return false, err
	}
	return v, nil
}

func (h *Heap[T]) writeBit(slot int64, v bool) error {
	pageNo, bitIdx := h.bitLocation(slot)
	pg, err := h.pc.PinPage(h.hdrKind, pageNo)
	if err != nil {
		return err
	}
	setBit(pg.Data, bitIdx, v)
	return h.pc.UnpinPage(h.hdrKind, pageNo, true)
}

// Allocate reserves a slot, growing the records (and if needed header)
// file when every existing slot is taken, and returns its id. Implements
// spec.md §9's mandated slot-reuse-via-bitmap-plus-rotating-hint policy.
func (h *Heap[T]) Allocate() (model.ID, error) {
	total, err := h.capacitySlots()
	if err != nil {
		return 0, err
	}
	if total > 0 {
		start := h.hint % total
		for i := int64(0); i < total; i++ {
			slot := (start + i) % total
			used, err := h.readBit(slot)
			if err != nil {
				return 0, err
			}
			if !used {
				if err := h.writeBit(slot, true); err != nil {
					return 0, err
				}
				h.hint = slot
				return model.ID(slot), nil
			}
		}
	}
	// no free slot: grow the records file by one page of fresh slots.
	newTotal := total + int64(h.recsPerPage)
	if err := h.ensureHeaderCapacity(newTotal); err != nil {
		return 0, err
	}
	if err := h.pc.GrowFile(h.recKind, 1); err != nil {
		return 0, err
	}
	slot := total
	if err := h.writeBit(slot, true); err != nil {
		return 0, err
	}
	h.hint = slot
	return model.ID(slot), nil
}

// Free clears id's allocation bit. The caller is responsible for having
// already unlinked any incidence-list pointers into it.
func (h *Heap[T]) Free(id model.ID) error {
	return h.writeBit(int64(id), false)
}

// IsAllocated reports whether id's bitmap bit is set.
func (h *Heap[T]) IsAllocated(id model.ID) (bool, error) {
	total, err := h.capacitySlots()
	if err != nil {
		return false, err
	}
	if int64(id) >= total {
		return false, nil
	}
	return h.readBit(int64(id))
}

// Get reads the record stored at id, without checking the allocation bitmap.
func (h *Heap[T]) Get(id model.ID) (T, error) {
	var zero T
	total, err := h.capacitySlots()
	if err != nil {
		return zero, err
	}
	if int64(id) >= total {
		return zero, gerr.Newf(gerr.NotFound, "slot %d out of range", id)
	}
	pageNo, off := h.slotLocation(int64(id))
	pg, err := h.pc.PinPage(h.recKind, pageNo)
	if err != nil {
		return zero, err
	}
	rec := h.decode(pg.Data, off)
	if err := h.pc.UnpinPage(h.recKind, pageNo, false); err != nil {
		return zero, err
	}
	return rec, nil
}

// Put writes rec at id.
func (h *Heap[T]) Put(id model.ID, rec T) error {
	pageNo, off := h.slotLocation(int64(id))
	pg, err := h.pc.PinPage(h.recKind, pageNo)
	if err != nil {
		return err
	}
	h.encode(pg.Data, off, rec)
	return h.pc.UnpinPage(h.recKind, pageNo, true)
}

// CapacitySlots exposes the current number of addressable slots, used by
// consistency checks (spec.md §8's P3).
func (h *Heap[T]) CapacitySlots() (int64, error) { return h.capacitySlots() }

// ForEachAllocated calls fn for every slot whose bitmap bit is set.
func (h *Heap[T]) ForEachAllocated(fn func(model.ID) error) error {
	total, err := h.capacitySlots()
	if err != nil {
		return err
	}
	for slot := int64(0); slot < total; slot++ {
		used, err := h.readBit(slot)
		if err != nil {
			return err
		}
		if !used {
			continue
		}
		if err := fn(model.ID(slot)); err != nil {
			return err
		}
	}
	return nil
}
