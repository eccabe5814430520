package diskio_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgodjo/pagegraph/diskio"
	"github.com/jgodjo/pagegraph/gerr"
)

func open(t *testing.T, pageSize int) *diskio.DiskFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.bin")
	d, err := diskio.Create(path, pageSize)
	require.NoError(t, err)
	return d
}

func TestCreateEmptyFileHasZeroPages(t *testing.T) {
	d := open(t, 512)
	assert.EqualValues(t, 0, d.NumPages())
}

func TestGrowAndWriteReadRoundTrip(t *testing.T) {
	d := open(t, 512)
	require.NoError(t, d.Grow(3))
	assert.EqualValues(t, 3, d.NumPages())

	buf := make([]byte, 512)
	for i := range buf {
		buf[i] = byte(i)
	}
	require.NoError(t, d.WritePages(1, 1, buf))

	out := make([]byte, 512)
	require.NoError(t, d.ReadPages(1, 1, out))
	assert.Equal(t, buf, out)
}

func TestWritePastEndGrowsFile(t *testing.T) {
	d := open(t, 256)
	buf := make([]byte, 256*2)
	require.NoError(t, d.WritePages(0, 1, buf))
	assert.EqualValues(t, 2, d.NumPages())
}

func TestReadOutOfRangeFails(t *testing.T) {
	d := open(t, 256)
	require.NoError(t, d.Grow(1))
	buf := make([]byte, 256)
	err := d.ReadPages(0, 1, buf)
	require.Error(t, err)
	assert.True(t, gerr.Is(err, gerr.ArgumentError))
}

func TestReadFirstGreaterThanLastFails(t *testing.T) {
	d := open(t, 256)
	require.NoError(t, d.Grow(2))
	buf := make([]byte, 256)
	err := d.ReadPages(1, 0, buf)
	require.Error(t, err)
	assert.True(t, gerr.Is(err, gerr.ArgumentError))
}

func TestShrinkTruncatesTail(t *testing.T) {
	d := open(t, 256)
	require.NoError(t, d.Grow(4))
	require.NoError(t, d.Shrink(2))
	assert.EqualValues(t, 2, d.NumPages())
}

func TestShrinkMoreThanNumPagesFails(t *testing.T) {
	d := open(t, 256)
	require.NoError(t, d.Grow(1))
	err := d.Shrink(5)
	require.Error(t, err)
	assert.True(t, gerr.Is(err, gerr.ArgumentError))
}

func TestClearPageZeroesBytes(t *testing.T) {
	d := open(t, 64)
	require.NoError(t, d.Grow(1))
	buf := make([]byte, 64)
	for i := range buf {
		buf[i] = 0xFF
	}
	require.NoError(t, d.WritePages(0, 0, buf))
	require.NoError(t, d.ClearPage(0))

	out := make([]byte, 64)
	require.NoError(t, d.ReadPages(0, 0, out))
	for _, b := range out {
		assert.Equal(t, byte(0), b)
	}
}
