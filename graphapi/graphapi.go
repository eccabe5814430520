// Package graphapi defines the public graph operation set spec.md §6
// exposes, shared by the on-disk engine (graphdb.Engine) and the
// in-memory oracle (memgraph.Graph) so property tests (spec.md §8's P5)
// can run the same scenario against both and compare results. Grounded
// on the teacher's SGBD/DBManager public method shape (one façade type
// exposing CRUD + a handful of query operations).
package graphapi

import "github.com/jgodjo/pagegraph/model"

// Graph covers node and relationship create/read/delete, node label
// updates, and the three traversal primitives. It has no operation that
// lists all nodes or relationships, none that updates a relationship,
// and no record-move or page-swap operation (graphdb.Engine exposes
// those as its own methods).
type Graph interface {
	CreateNode(label uint64) (model.ID, error)
	GetNode(id model.ID) (model.NodeRecord, error)
	SetNodeLabel(id model.ID, label uint64) error
	DeleteNode(id model.ID) error

	CreateRelationship(src, tgt model.ID, label uint64, weight float64) (model.ID, error)
	GetRelationship(id model.ID) (model.RelRecord, error)
	DeleteRelationship(id model.ID) error

	Expand(node model.ID, dir model.Direction) ([]model.ID, error)
	NextRelationshipID(node, current model.ID, dir model.Direction) (model.ID, error)
	ContainsRelationshipFromTo(a, b model.ID, dir model.Direction) (bool, error)

	Close() error
}
