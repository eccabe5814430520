package physdb_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgodjo/pagegraph/model"
	"github.com/jgodjo/pagegraph/physdb"
)

func TestCreateOpensFourFiles(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "graph")
	pd, err := physdb.Create(dbPath, 256)
	require.NoError(t, err)
	defer pd.Close()

	for _, kind := range []model.FileKind{model.NodeRecords, model.NodeHeader, model.RelationshipRecords, model.RelationshipHeader} {
		n, err := pd.NumPages(kind)
		require.NoError(t, err)
		assert.EqualValues(t, 0, n)
	}
}

func TestReadWriteBumpsMetrics(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "graph")
	pd, err := physdb.Create(dbPath, 256)
	require.NoError(t, err)
	defer pd.Close()

	require.NoError(t, pd.Grow(model.NodeRecords, 1))
	buf := make([]byte, 256)
	buf[0] = 9
	require.NoError(t, pd.WritePage(model.NodeRecords, 0, buf))

	out := make([]byte, 256)
	require.NoError(t, pd.ReadPage(model.NodeRecords, 0, out))
	assert.Equal(t, buf, out)

	m := pd.Metrics(model.NodeRecords)
	assert.EqualValues(t, 1, m.Reads)
	assert.EqualValues(t, 1, m.Writes)
}

func TestUnknownKindIsArgumentError(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "graph")
	pd, err := physdb.Create(dbPath, 256)
	require.NoError(t, err)
	defer pd.Close()

	_, err = pd.File(model.FileKind(99))
	assert.Error(t, err)
}
