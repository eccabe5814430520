// Package memgraph implements an in-memory reference graph used as the
// oracle in property-based equivalence tests (spec.md §8's P5): it
// exposes the same graphapi.Graph surface as graphdb.Engine but keeps
// everything in plain Go maps, with no paging, caching, or pinning.
// Grounded on spec.md §4.7's description of the reference model; the
// circular doubly-linked incidence-list splice/unlink it runs per node
// mirrors heapfile.RelStore's (both trace back to
// in_memory_create_relationship_weighted in
// original_source/src/access/in_memory_graph.c), so GetRelationship
// here returns real, non-zero chain pointers comparable against the
// on-disk engine's, not just a same/different-node classification.
package memgraph

import (
	"github.com/jgodjo/pagegraph/gerr"
	"github.com/jgodjo/pagegraph/graphapi"
	"github.com/jgodjo/pagegraph/model"
)

type nodeEntry struct {
	rec     model.NodeRecord
	deleted bool
}

type relEntry struct {
	rec     model.RelRecord
	deleted bool
}

// Graph is the in-memory oracle implementation of graphapi.Graph.
type Graph struct {
	nodes   map[model.ID]*nodeEntry
	rels    map[model.ID]*relEntry
	nextNID model.ID
	nextRID model.ID
}

var _ graphapi.Graph = (*Graph)(nil)

// New builds an empty in-memory graph.
func New() *Graph {
	return &Graph{nodes: make(map[model.ID]*nodeEntry), rels: make(map[model.ID]*relEntry)}
}

// CreateNode implements graphapi.Graph.
func (g *Graph) CreateNode(label uint64) (model.ID, error) {
	id := g.nextNID
	g.nextNID++
	rec := model.NodeRecord{ID: id, Label: label, FirstRelationship: model.Sentinel}
	rec.SetInUse(true)
	g.nodes[id] = &nodeEntry{rec: rec}
	return id, nil
}

func (g *Graph) node(id model.ID) (*nodeEntry, error) {
	n, ok := g.nodes[id]
	if !ok || n.deleted {
		return nil, gerr.Newf(gerr.NotFound, "node %d not found", id)
	}
	return n, nil
}

func (g *Graph) rel(id model.ID) (*relEntry, error) {
	r, ok := g.rels[id]
	if !ok || r.deleted {
		return nil, gerr.Newf(gerr.NotFound, "relationship %d not found", id)
	}
	return r, nil
}

// GetNode implements graphapi.Graph.
func (g *Graph) GetNode(id model.ID) (model.NodeRecord, error) {
	n, err := g.node(id)
	if err != nil {
		return model.NodeRecord{}, err
	}
	return n.rec, nil
}

// SetNodeLabel implements graphapi.Graph.
func (g *Graph) SetNodeLabel(id model.ID, label uint64) error {
	n, err := g.node(id)
	if err != nil {
		return err
	}
	n.rec.Label = label
	return nil
}

// DeleteNode implements graphapi.Graph.
func (g *Graph) DeleteNode(id model.ID) error {
	n, err := g.node(id)
	if err != nil {
		return err
	}
	if n.rec.FirstRelationship.Valid() {
		return gerr.Newf(gerr.InvariantViolation, "delete node %d: incidence list not empty", id)
	}
	n.deleted = true
	return nil
}

// getNext/getPrev/setNext/setPrev/setHead mirror
// heapfile.getNext/getPrev/setNext/setPrev/setHead exactly: same
// independent source/target tests via model.SideTouchesSource/Target, so
// a self-loop neighbor gets both its pointer pairs updated together
// instead of just the one the splice call collapsed onto.

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

// CreateRelationship implements graphapi.Graph.
func (g *Graph) CreateRelationship(src, tgt model.ID, label uint64, weight float64) (model.ID, error) {
	if _, err := g.node(src); err != nil {
		return 0, gerr.Newf(gerr.NotFound, "source node %d not found", src)
	}
	if _, err := g.node(tgt); err != nil {
		return 0, gerr.Newf(gerr.NotFound, "target node %d not found", tgt)
	}

	id := g.nextRID
	g.nextRID++
	rec := model.RelRecord{ID: id, SourceNode: src, TargetNode: tgt, Label: label, Weight: weight}
	rec.SetInUse(true)
	entry := &relEntry{rec: rec}
	g.rels[id] = entry

	if err := g.linkInto(entry, src, model.SideSource); err != nil {
		return 0, err
	}
	if src == tgt {
		entry.rec.PrevRelTarget = entry.rec.PrevRelSource
		entry.rec.NextRelTarget = entry.rec.NextRelSource
		entry.rec.SetTargetHead(entry.rec.IsSourceHead())
	} else if err := g.linkInto(entry, tgt, model.SideTarget); err != nil {
		return 0, err
	}
	return id, nil
}

// linkInto splices entry into node's incidence list on the given side,
// the same two-phase head/tail fixup as heapfile.RelStore.linkInto.
func (g *Graph) linkInto(entry *relEntry, node model.ID, side model.Side) error {
	n, err := g.node(node)
	if err != nil {
		return err
	}
	if !n.rec.FirstRelationship.Valid() {
		setNext(&entry.rec, side, entry.rec.ID)
		setPrev(&entry.rec, side, entry.rec.ID)
		setHead(&entry.rec, side, true)
		n.rec.FirstRelationship = entry.rec.ID
		return nil
	}

	head := n.rec.FirstRelationship
	headEntry, err := g.rel(head)
	if err != nil {
		return err
	}
	headSide := model.SideOf(headEntry.rec, node)
	tailID := getPrev(headEntry.rec, headSide)
	sameRecord := tailID == head

	setPrev(&entry.rec, side, tailID)
	setNext(&entry.rec, side, head)
	setHead(&entry.rec, side, false)
	setPrev(&headEntry.rec, headSide, entry.rec.ID)

	if sameRecord {
		setNext(&headEntry.rec, headSide, entry.rec.ID)
		return nil
	}

	tailEntry, err := g.rel(tailID)
	if err != nil {
		return err
	}
	tailSide := model.SideOf(tailEntry.rec, node)
	setNext(&tailEntry.rec, tailSide, entry.rec.ID)
	return nil
}

// GetRelationship implements graphapi.Graph.
func (g *Graph) GetRelationship(id model.ID) (model.RelRecord, error) {
	r, err := g.rel(id)
	if err != nil {
		return model.RelRecord{}, err
	}
	return r.rec, nil
}

// DeleteRelationship implements graphapi.Graph.
func (g *Graph) DeleteRelationship(id model.ID) error {
	r, err := g.rel(id)
	if err != nil {
		return err
	}
	if err := g.unlinkFrom(r.rec, r.rec.SourceNode, model.SideSource); err != nil {
		return err
	}
	if r.rec.SourceNode != r.rec.TargetNode {
		if err := g.unlinkFrom(r.rec, r.rec.TargetNode, model.SideTarget); err != nil {
			return err
		}
	}
	r.deleted = true
	return nil
}

func (g *Graph) unlinkFrom(rec model.RelRecord, node model.ID, side model.Side) error {
	n, err := g.node(node)
	if err != nil {
		return err
	}
	prevID := getPrev(rec, side)
	nextID := getNext(rec, side)

	if prevID == rec.ID {
		n.rec.FirstRelationship = model.Sentinel
		return nil
	}

	prevEntry, err := g.rel(prevID)
	if err != nil {
		return err
	}
	prevSide := model.SideOf(prevEntry.rec, node)
	setNext(&prevEntry.rec, prevSide, nextID)

	if nextID == prevID {
		setPrev(&prevEntry.rec, prevSide, prevID)
	} else {
		nextEntry, err := g.rel(nextID)
		if err != nil {
			return err
		}
		nextSide := model.SideOf(nextEntry.rec, node)
		setPrev(&nextEntry.rec, nextSide, prevID)
	}

	if n.rec.FirstRelationship == rec.ID {
		n.rec.FirstRelationship = nextID
	}
	return nil
}

// Expand implements graphapi.Graph, walking the same circular list
// graphdb.Engine/traverse.Traversal walks, in the same incidence order.
func (g *Graph) Expand(node model.ID, dir model.Direction) ([]model.ID, error) {
	n, err := g.node(node)
	if err != nil {
		return nil, err
	}
	var out []model.ID
	if !n.rec.FirstRelationship.Valid() {
		return out, nil
	}
	start := n.rec.FirstRelationship
	cur := start
	for {
		r, err := g.rel(cur)
		if err != nil {
			return nil, err
		}
		side := model.SideOf(r.rec, node)
		if matchesDirection(side, dir) {
			out = append(out, cur)
		}
		next := getNext(r.rec, side)
		if next == start {
			break
		}
		cur = next
	}
	return out, nil
}

func matchesDirection(side model.Side, dir model.Direction) bool {
	switch side {
	case model.SideBoth:
		return true
	case model.SideSource:
		return dir.MatchesSide(true)
	case model.SideTarget:
		return dir.MatchesSide(false)
	default:
		return false
	}
}

// NextRelationshipID implements graphapi.Graph.
func (g *Graph) NextRelationshipID(node, current model.ID, dir model.Direction) (model.ID, error) {
	r, err := g.rel(current)
	if err != nil {
		return model.Sentinel, err
	}
	side := model.SideOf(r.rec, node)
	next := getNext(r.rec, side)
	for next != current {
		nr, err := g.rel(next)
		if err != nil {
			return model.Sentinel, err
		}
		nside := model.SideOf(nr.rec, node)
		if matchesDirection(nside, dir) {
			return next, nil
		}
		next = getNext(nr.rec, nside)
	}
	return model.Sentinel, nil
}

// ContainsRelationshipFromTo implements graphapi.Graph.
func (g *Graph) ContainsRelationshipFromTo(a, b model.ID, dir model.Direction) (bool, error) {
	ids, err := g.Expand(a, dir)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		r, err := g.rel(id)
		if err != nil {
			return false, err
		}
		switch model.SideOf(r.rec, a) {
		case model.SideBoth:
			if b == a {
				return true, nil
			}
		case model.SideSource:
			if r.rec.TargetNode == b {
				return true, nil
			}
		case model.SideTarget:
			if r.rec.SourceNode == b {
				return true, nil
			}
		}
	}
	return false, nil
}

// Close implements graphapi.Graph; the in-memory oracle owns no
// resources to release.
func (g *Graph) Close() error { return nil }
