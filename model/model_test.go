package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgodjo/pagegraph/model"
)

func TestSentinelNotValid(t *testing.T) {
	assert.False(t, model.Sentinel.Valid())
	assert.True(t, model.ID(0).Valid())
}

func TestNodeRecordRoundTrip(t *testing.T) {
	buf := make([]byte, model.NodeRecordSize+16)
	rec := model.NodeRecord{ID: 7, Flags: 1, Label: 42, FirstRelationship: model.Sentinel}
	model.EncodeNode(buf, 4, rec)
	got := model.DecodeNode(buf, 4)
	require.Equal(t, rec, got)
	assert.True(t, got.InUse())
}

func TestRelRecordRoundTrip(t *testing.T) {
	buf := make([]byte, model.RelRecordSize+8)
	rec := model.RelRecord{
		ID: 3, SourceNode: 1, TargetNode: 2, Label: 9, Weight: 1.5,
		PrevRelSource: 3, NextRelSource: 3, PrevRelTarget: 3, NextRelTarget: 3,
	}
	rec.SetInUse(true)
	rec.SetSourceHead(true)
	model.EncodeRel(buf, 2, rec)
	got := model.DecodeRel(buf, 2)
	require.Equal(t, rec, got)
	assert.True(t, got.InUse())
	assert.True(t, got.IsSourceHead())
	assert.False(t, got.IsTargetHead())
}

func TestSideOf(t *testing.T) {
	selfLoop := model.RelRecord{SourceNode: 5, TargetNode: 5}
	assert.Equal(t, model.SideBoth, model.SideOf(selfLoop, 5))

	fwd := model.RelRecord{SourceNode: 5, TargetNode: 6}
	assert.Equal(t, model.SideSource, model.SideOf(fwd, 5))
	assert.Equal(t, model.SideTarget, model.SideOf(fwd, 6))
	assert.Equal(t, model.SideNone, model.SideOf(fwd, 7))
}

func TestDirectionMatchesSide(t *testing.T) {
	assert.True(t, model.Outgoing.MatchesSide(true))
	assert.False(t, model.Outgoing.MatchesSide(false))
	assert.True(t, model.Incoming.MatchesSide(false))
	assert.True(t, model.Both.MatchesSide(true))
	assert.True(t, model.Both.MatchesSide(false))
}
