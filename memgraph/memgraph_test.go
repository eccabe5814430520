package memgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgodjo/pagegraph/memgraph"
	"github.com/jgodjo/pagegraph/model"
)

func TestCreateNodeAndRelationship(t *testing.T) {
	g := memgraph.New()
	a, err := g.CreateNode(1)
	require.NoError(t, err)
	b, err := g.CreateNode(2)
	require.NoError(t, err)
	r, err := g.CreateRelationship(a, b, 9, 2.5)
	require.NoError(t, err)

	rec, err := g.GetRelationship(r)
	require.NoError(t, err)
	assert.Equal(t, a, rec.SourceNode)
	assert.Equal(t, b, rec.TargetNode)
}

func TestDeleteNodeWithIncidenceFails(t *testing.T) {
	g := memgraph.New()
	a, _ := g.CreateNode(0)
	b, _ := g.CreateNode(0)
	_, err := g.CreateRelationship(a, b, 0, 0)
	require.NoError(t, err)
	require.Error(t, g.DeleteNode(a))
}

func TestSelfLoopExpandsOnceForEveryDirection(t *testing.T) {
	g := memgraph.New()
	a, _ := g.CreateNode(0)
	loop, err := g.CreateRelationship(a, a, 0, 0)
	require.NoError(t, err)

	for _, dir := range []model.Direction{model.Outgoing, model.Incoming, model.Both} {
		ids, err := g.Expand(a, dir)
		require.NoError(t, err)
		assert.Equal(t, []model.ID{loop}, ids)
	}
}

func TestSelfLoopNeighborGetsBothSidesRespliced(t *testing.T) {
	g := memgraph.New()
	n0, _ := g.CreateNode(0)
	n1, _ := g.CreateNode(0)

	s, err := g.CreateRelationship(n0, n0, 1, 1)
	require.NoError(t, err)
	r, err := g.CreateRelationship(n0, n1, 2, 1)
	require.NoError(t, err)

	sRec, err := g.GetRelationship(s)
	require.NoError(t, err)
	assert.Equal(t, sRec.NextRelSource, sRec.NextRelTarget)
	assert.Equal(t, sRec.PrevRelSource, sRec.PrevRelTarget)
	assert.Equal(t, r, sRec.NextRelSource)
	assert.Equal(t, r, sRec.NextRelTarget)
}

func TestDeleteRelationshipUnlinksBothEndpoints(t *testing.T) {
	g := memgraph.New()
	a, _ := g.CreateNode(0)
	b, _ := g.CreateNode(0)
	r, err := g.CreateRelationship(a, b, 0, 0)
	require.NoError(t, err)
	require.NoError(t, g.DeleteRelationship(r))

	aIDs, _ := g.Expand(a, model.Both)
	bIDs, _ := g.Expand(b, model.Both)
	assert.Empty(t, aIDs)
	assert.Empty(t, bIDs)
}
