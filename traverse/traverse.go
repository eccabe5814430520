// Package traverse implements the read-only traversal primitives of
// spec.md §4.5: walking a node's incidence list (expand), stepping to
// the next relationship in that list under a direction filter, and
// testing adjacency between two nodes. Has no teacher analogue — the
// teacher repo never modeled a graph — so it is built directly from
// spec.md §4.4/§4.5's circular-list description, reusing model.SideOf.
package traverse

import (
	"github.com/jgodjo/pagegraph/model"
)

// NodeReader reads node records by id.
type NodeReader interface {
	Get(id model.ID) (model.NodeRecord, error)
}

// RelReader reads relationship records by id.
type RelReader interface {
	Get(id model.ID) (model.RelRecord, error)
}

// Traversal answers incidence-list queries against a NodeReader/RelReader
// pair — either the on-disk heapfile stores or an in-memory oracle.
type Traversal struct {
	nodes NodeReader
	rels  RelReader
}

// New builds a Traversal over nodes and rels.
func New(nodes NodeReader, rels RelReader) *Traversal {
	return &Traversal{nodes: nodes, rels: rels}
}

// nextID returns rel's chain-next pointer for the side it occupies
// relative to the node being walked. A self-loop (SideBoth) keeps its
// source-side and target-side pointer pairs mirrored to the same values
// (heapfile.linkInto/unlinkFrom update both independently whenever a
// self-loop is touched as a neighbor), so either pair reads the same id.
func nextID(rel model.RelRecord, side model.Side) model.ID {
	if side == model.SideTarget {
		return rel.NextRelTarget
	}
	return rel.NextRelSource
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

// Expand returns the ids of every relationship incident to node that
// satisfies dir, in incidence-list order.
func (t *Traversal) Expand(node model.ID, dir model.Direction) ([]model.ID, error) {
	nrec, err := t.nodes.Get(node)
	if err != nil {
		return nil, err
	}
	var out []model.ID
	if !nrec.FirstRelationship.Valid() {
		return out, nil
	}
	start := nrec.FirstRelationship
	cur := start
	for {
		rel, err := t.rels.Get(cur)
		if err != nil {
			return nil, err
		}
		side := model.SideOf(rel, node)
		if matchesDirection(side, dir) {
			out = append(out, cur)
		}
		next := nextID(rel, side)
		if next == start {
			break
		}
		cur = next
	}
	return out, nil
}

// NextRelationshipID returns the next relationship id after current in
// node's incidence list that satisfies dir, or model.Sentinel if the
// list wraps back to current without finding another match. current
// must itself be a relationship incident to node.
func (t *Traversal) NextRelationshipID(node, current model.ID, dir model.Direction) (model.ID, error) {
	rel, err := t.rels.Get(current)
	if err != nil {
		return model.Sentinel, err
	}
	side := model.SideOf(rel, node)
	next := nextID(rel, side)
	for next != current {
		nrel, err := t.rels.Get(next)
		if err != nil {
			return model.Sentinel, err
		}
		nside := model.SideOf(nrel, node)
		if matchesDirection(nside, dir) {
			return next, nil
		}
		next = nextID(nrel, nside)
	}
	return model.Sentinel, nil
}

// ContainsRelationshipFromTo reports whether any relationship matching
// dir connects a to b.
func (t *Traversal) ContainsRelationshipFromTo(a, b model.ID, dir model.Direction) (bool, error) {
	ids, err := t.Expand(a, dir)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		rel, err := t.rels.Get(id)
		if err != nil {
			return false, err
		}
		switch model.SideOf(rel, a) {
		case model.SideBoth:
			if b == a {
				return true, nil
			}
		case model.SideSource:
			if rel.TargetNode == b {
				return true, nil
			}
		case model.SideTarget:
			if rel.SourceNode == b {
				return true, nil
			}
		}
	}
	return false, nil
}
