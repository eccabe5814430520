package heapfile

import (
	"github.com/jgodjo/pagegraph/gerr"
	"github.com/jgodjo/pagegraph/model"
	"github.com/jgodjo/pagegraph/pagecache"
)

// NodeStore is the slotted node-record heap (spec.md §4.3/§4.4).
type NodeStore struct {
	heap *Heap[model.NodeRecord]
}

// NewNodeStore builds a NodeStore backed by pc.
func NewNodeStore(pc *pagecache.PageCache) *NodeStore {
	return &NodeStore{heap: newHeap[model.NodeRecord](pc, model.NodeRecords, model.NodeHeader, model.NodeRecordSize, model.EncodeNode, model.DecodeNode)}
}

// CreateNode allocates a fresh node record with an empty incidence list.
func (s *NodeStore) CreateNode(label uint64) (model.ID, error) {
	id, err := s.heap.Allocate()
	if err != nil {
		return 0, err
	}
	rec := model.NodeRecord{ID: id, Label: label, FirstRelationship: model.Sentinel}
	rec.SetInUse(true)
	if err := s.heap.Put(id, rec); err != nil {
		return 0, err
	}
	return id, nil
}

// Get reads node id, failing with NotFound if its slot isn't allocated.
func (s *NodeStore) Get(id model.ID) (model.NodeRecord, error) {
	allocated, err := s.heap.IsAllocated(id)
	if err != nil {
		return model.NodeRecord{}, err
	}
	if !allocated {
		return model.NodeRecord{}, gerr.Newf(gerr.NotFound, "node %d not found", id)
	}
	return s.heap.Get(id)
}

// Exists reports whether id names a currently-allocated node slot.
func (s *NodeStore) Exists(id model.ID) (bool, error) { return s.heap.IsAllocated(id) }

// put persists rec without touching the allocation bitmap; used
// internally by incidence-list maintenance.
func (s *NodeStore) put(id model.ID, rec model.NodeRecord) error { return s.heap.Put(id, rec) }

// Overwrite rewrites an already-allocated node record in place, for
// callers (graphdb's record-move support) that maintain incidence
// pointers themselves.
func (s *NodeStore) Overwrite(id model.ID, rec model.NodeRecord) error { return s.heap.Put(id, rec) }

// SetLabel rewrites node id's label in place.
func (s *NodeStore) SetLabel(id model.ID, label uint64) error {
	rec, err := s.Get(id)
	if err != nil {
		return err
	}
	rec.Label = label
	return s.heap.Put(id, rec)
}

// DeleteNode frees node id's slot. The caller (graphdb.Engine) must have
// already removed every incident relationship first (spec.md §4.4's "no
// dangling incidence pointer" invariant, checked as property P4).
func (s *NodeStore) DeleteNode(id model.ID) error {
	rec, err := s.Get(id)
	if err != nil {
		return err
	}
	if rec.FirstRelationship.Valid() {
		return gerr.Newf(gerr.InvariantViolation, "delete node %d: incidence list not empty", id)
	}
	rec.SetInUse(false)
	if err := s.heap.Put(id, rec); err != nil {
		return err
	}
	return s.heap.Free(id)
}

// ForEach visits every allocated node.
func (s *NodeStore) ForEach(fn func(model.ID, model.NodeRecord) error) error {
	return s.heap.ForEachAllocated(func(id model.ID) error {
		rec, err := s.heap.Get(id)
		if err != nil {
			return err
		}
		return fn(id, rec)
	})
}

// CapacitySlots exposes the node heap's slot count, for P3 checks.
func (s *NodeStore) CapacitySlots() (int64, error) { return s.heap.CapacitySlots() }

// RelStore is the slotted relationship-record heap, maintaining the
// circular doubly-linked incidence lists threaded through each node's
// first_relationship pointer (spec.md §4.4).
type RelStore struct {
	heap  *Heap[model.RelRecord]
	nodes *NodeStore
}

// NewRelStore builds a RelStore backed by pc, referencing nodes to
// splice incidence lists through node records.
func NewRelStore(pc *pagecache.PageCache, nodes *NodeStore) *RelStore {
	return &RelStore{heap: newHeap[model.RelRecord](pc, model.RelationshipRecords, model.RelationshipHeader, model.RelRecordSize, model.EncodeRel, model.DecodeRel), nodes: nodes}
}

// Get reads relationship id, failing with NotFound if unallocated.
func (s *RelStore) Get(id model.ID) (model.RelRecord, error) {
	allocated, err := s.heap.IsAllocated(id)
	if err != nil {
		return model.RelRecord{}, err
	}
	if !allocated {
		return model.RelRecord{}, gerr.Newf(gerr.NotFound, "relationship %d not found", id)
	}
	return s.heap.Get(id)
}

// Exists reports whether id names a currently-allocated relationship slot.
func (s *RelStore) Exists(id model.ID) (bool, error) { return s.heap.IsAllocated(id) }

// Overwrite rewrites an already-allocated relationship record in place,
// for callers (graphdb's record-move support) that maintain incidence
// pointers themselves.
func (s *RelStore) Overwrite(id model.ID, rel model.RelRecord) error { return s.heap.Put(id, rel) }

// CapacitySlots exposes the relationship heap's slot count, for P3 checks.
func (s *RelStore) CapacitySlots() (int64, error) { return s.heap.CapacitySlots() }

// ForEach visits every allocated relationship.
func (s *RelStore) ForEach(fn func(model.ID, model.RelRecord) error) error {
	return s.heap.ForEachAllocated(func(id model.ID) error {
		rec, err := s.heap.Get(id)
		if err != nil {
			return err
		}
		return fn(id, rec)
	})
}

func getNext(rel model.RelRecord, side model.Side) model.ID {
	if model.SideTouchesTarget(side) {
		return rel.NextRelTarget
	}
	return rel.NextRelSource
}

func getPrev(rel model.RelRecord, side model.Side) model.ID {
	if model.SideTouchesTarget(side) {
		return rel.PrevRelTarget
	}
	return rel.PrevRelSource
}

func setNext(rel *model.RelRecord, side model.Side, id model.ID) {
	if model.SideTouchesSource(side) {
		rel.NextRelSource = id
	}
	if model.SideTouchesTarget(side) {
		rel.NextRelTarget = id
	}
}

func setPrev(rel *model.RelRecord, side model.Side, id model.ID) {
	if model.SideTouchesSource(side) {
		rel.PrevRelSource = id
	}
	if model.SideTouchesTarget(side) {
		rel.PrevRelTarget = id
	}
}

func setHead(rel *model.RelRecord, side model.Side, v bool) {
	if model.SideTouchesSource(side) {
		rel.SetSourceHead(v)
	}
	if model.SideTouchesTarget(side) {
		rel.SetTargetHead(v)
	}
}

// CreateRelationship allocates a new relationship between src and tgt
// and splices it into both endpoints' incidence lists (spec.md §4.4).
// Wires the new relationship's own pointers first, then its up-to-four
// neighbors (its predecessor/successor on each endpoint's chain).
func (s *RelStore) CreateRelationship(src, tgt model.ID, label uint64, weight float64) (model.ID, error) {
	if ok, err := s.nodes.Exists(src); err != nil {
		return 0, err
	} else if !ok {
		return 0, gerr.Newf(gerr.NotFound, "source node %d not found", src)
	}
	if ok, err := s.nodes.Exists(tgt); err != nil {
		return 0, err
	} else if !ok {
		return 0, gerr.Newf(gerr.NotFound, "target node %d not found", tgt)
	}

	id, err := s.heap.Allocate()
	if err != nil {
		return 0, err
	}
	rel := model.RelRecord{ID: id, SourceNode: src, TargetNode: tgt, Label: label, Weight: weight}
	rel.SetInUse(true)

	if err := s.linkInto(&rel, src, model.SideSource); err != nil {
		return 0, err
	}
	if src == tgt {
		rel.PrevRelTarget = rel.PrevRelSource
		rel.NextRelTarget = rel.NextRelSource
		rel.SetTargetHead(rel.IsSourceHead())
	} else if err := s.linkInto(&rel, tgt, model.SideTarget); err != nil {
		return 0, err
	}

	if err := s.heap.Put(id, rel); err != nil {
		return 0, err
	}
	return id, nil
}

// linkInto splices rel into node's incidence list on the given side,
// without yet persisting rel itself (the caller does that once both
// sides are wired).
func (s *RelStore) linkInto(rel *model.RelRecord, node model.ID, side model.Side) error {
	nrec, err := s.nodes.Get(node)
	if err != nil {
		return gerr.Wrapf(gerr.IoError, err, "link_into %d: read node %d", rel.ID, node)
	}
	if !nrec.FirstRelationship.Valid() {
		setNext(rel, side, rel.ID)
		setPrev(rel, side, rel.ID)
		setHead(rel, side, true)
		nrec.FirstRelationship = rel.ID
		if err := s.nodes.put(node, nrec); err != nil {
			return gerr.Wrapf(gerr.IoError, err, "link_into %d: write node %d as sole chain entry", rel.ID, node)
		}
		return nil
	}

	head := nrec.FirstRelationship
	headRec, err := s.heap.Get(head)
	if err != nil {
		return gerr.Wrapf(gerr.IoError, err, "link_into %d: read chain head %d", rel.ID, head)
	}
	headSide := model.SideOf(headRec, node)
	tailID := getPrev(headRec, headSide)
	sameRecord := tailID == head

	setPrev(rel, side, tailID)
	setNext(rel, side, head)
	setHead(rel, side, false)
	setPrev(&headRec, headSide, rel.ID)

	if sameRecord {
		setNext(&headRec, headSide, rel.ID)
		if err := s.heap.Put(head, headRec); err != nil {
			return gerr.Wrapf(gerr.IoError, err, "link_into %d: write chain head %d (single-entry chain)", rel.ID, head)
		}
		return nil
	}

	tailRec, err := s.heap.Get(tailID)
	if err != nil {
		return gerr.Wrapf(gerr.IoError, err, "link_into %d: read chain tail %d", rel.ID, tailID)
	}
	tailSide := model.SideOf(tailRec, node)
	setNext(&tailRec, tailSide, rel.ID)
	if err := s.heap.Put(head, headRec); err != nil {
		return gerr.Wrapf(gerr.IoError, err, "link_into %d: write chain head %d", rel.ID, head)
	}
	if err := s.heap.Put(tailID, tailRec); err != nil {
		return gerr.Wrapf(gerr.IoError, err, "link_into %d: write chain tail %d", rel.ID, tailID)
	}
	return nil
}

// DeleteRelationship unlinks relationship id from both endpoints'
// incidence lists and frees its slot.
func (s *RelStore) DeleteRelationship(id model.ID) error {
	rel, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.unlinkFrom(rel, rel.SourceNode, model.SideSource); err != nil {
		return err
	}
	if rel.SourceNode != rel.TargetNode {
		if err := s.unlinkFrom(rel, rel.TargetNode, model.SideTarget); err != nil {
			return err
		}
	}
	rel.SetInUse(false)
	if err := s.heap.Put(id, rel); err != nil {
		return err
	}
	return s.heap.Free(id)
}

func (s *RelStore) unlinkFrom(rel model.RelRecord, node model.ID, side model.Side) error {
	nrec, err := s.nodes.Get(node)
	if err != nil {
		return gerr.Wrapf(gerr.IoError, err, "unlink_from %d: read node %d", rel.ID, node)
	}
	prevID := getPrev(rel, side)
	nextID := getNext(rel, side)

	if prevID == rel.ID {
		nrec.FirstRelationship = model.Sentinel
		if err := s.nodes.put(node, nrec); err != nil {
			return gerr.Wrapf(gerr.IoError, err, "unlink_from %d: clear node %d's chain head", rel.ID, node)
		}
		return nil
	}

	prevRec, err := s.heap.Get(prevID)
	if err != nil {
		return gerr.Wrapf(gerr.IoError, err, "unlink_from %d: read predecessor %d", rel.ID, prevID)
	}
	prevSide := model.SideOf(prevRec, node)
	setNext(&prevRec, prevSide, nextID)

	sameRecord := nextID == prevID
	if sameRecord {
		setPrev(&prevRec, prevSide, prevID)
		if err := s.heap.Put(prevID, prevRec); err != nil {
			return gerr.Wrapf(gerr.IoError, err, "unlink_from %d: write predecessor %d (two-entry chain)", rel.ID, prevID)
		}
	} else {
		nextRec, err := s.heap.Get(nextID)
		if err != nil {
			return gerr.Wrapf(gerr.IoError, err, "unlink_from %d: read successor %d", rel.ID, nextID)
		}
		nextSide := model.SideOf(nextRec, node)
		setPrev(&nextRec, nextSide, prevID)
		if err := s.heap.Put(prevID, prevRec); err != nil {
			return gerr.Wrapf(gerr.IoError, err, "unlink_from %d: write predecessor %d", rel.ID, prevID)
		}
		if err := s.heap.Put(nextID, nextRec); err != nil {
			return gerr.Wrapf(gerr.IoError, err, "unlink_from %d: write successor %d", rel.ID, nextID)
		}
	}

	if nrec.FirstRelationship == rel.ID {
		nrec.FirstRelationship = nextID
		if err := s.nodes.put(node, nrec); err != nil {
			return gerr.Wrapf(gerr.IoError, err, "unlink_from %d: repoint node %d's chain head", rel.ID, node)
		}
	}
	return nil
}
