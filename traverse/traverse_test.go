package traverse_test

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgodjo/pagegraph/heapfile"
	"github.com/jgodjo/pagegraph/model"
	"github.com/jgodjo/pagegraph/pagecache"
	"github.com/jgodjo/pagegraph/physdb"
	"github.com/jgodjo/pagegraph/traverse"
)

func newFixture(t *testing.T) (*heapfile.NodeStore, *heapfile.RelStore, *traverse.Traversal) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "graph")
	pd, err := physdb.Create(dbPath, 256)
	require.NoError(t, err)
	t.Cleanup(func() { pd.Close() })
	pc := pagecache.New(pd, 16, 2, zerolog.New(io.Discard))
	nodes := heapfile.NewNodeStore(pc)
	rels := heapfile.NewRelStore(pc, nodes)
	return nodes, rels, traverse.New(nodes, rels)
}

func TestExpandTriangleOutgoingIncoming(t *testing.T) {
	nodes, rels, tr := newFixture(t)
	a, _ := nodes.CreateNode(0)
	b, _ := nodes.CreateNode(0)
	c, _ := nodes.CreateNode(0)
	rAB, _ := rels.CreateRelationship(a, b, 0, 0)
	rCA, _ := rels.CreateRelationship(c, a, 0, 0)

	out, err := tr.Expand(a, model.Outgoing)
	require.NoError(t, err)
	assert.Equal(t, []model.ID{rAB}, out)

	in, err := tr.Expand(a, model.Incoming)
	require.NoError(t, err)
	assert.Equal(t, []model.ID{rCA}, in)

	// Order-sensitive: rAB is spliced in first as a's sole (self-pointing)
	// chain entry, so it stays the chain head; rCA is spliced in right
	// after it without disturbing that head, so Both must walk rAB then
	// rCA, never the reverse.
	both, err := tr.Expand(a, model.Both)
	require.NoError(t, err)
	assert.Equal(t, []model.ID{rAB, rCA}, both)
}

func TestExpandSelfLoopMatchesAnyDirection(t *testing.T) {
	nodes, rels, tr := newFixture(t)
	a, _ := nodes.CreateNode(0)
	loop, _ := rels.CreateRelationship(a, a, 0, 0)

	for _, dir := range []model.Direction{model.Outgoing, model.Incoming, model.Both} {
		ids, err := tr.Expand(a, dir)
		require.NoError(t, err)
		assert.Equal(t, []model.ID{loop}, ids)
	}
}

func TestContainsRelationshipFromTo(t *testing.T) {
	nodes, rels, tr := newFixture(t)
	a, _ := nodes.CreateNode(0)
	b, _ := nodes.CreateNode(0)
	c, _ := nodes.CreateNode(0)
	_, err := rels.CreateRelationship(a, b, 0, 0)
	require.NoError(t, err)

	ok, err := tr.ContainsRelationshipFromTo(a, b, model.Outgoing)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tr.ContainsRelationshipFromTo(a, c, model.Outgoing)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = tr.ContainsRelationshipFromTo(b, a, model.Incoming)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNextRelationshipIDWrapsToSentinel(t *testing.T) {
	nodes, rels, tr := newFixture(t)
	a, _ := nodes.CreateNode(0)
	b, _ := nodes.CreateNode(0)
	r, err := rels.CreateRelationship(a, b, 0, 0)
	require.NoError(t, err)

	next, err := tr.NextRelationshipID(a, r, model.Both)
	require.NoError(t, err)
	assert.Equal(t, model.Sentinel, next)
}
