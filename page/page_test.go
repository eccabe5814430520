package page_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jgodjo/pagegraph/page"
)

func TestUint64RoundTrip(t *testing.T) {
	p := page.New(64)
	p.WriteUint64(8, 0xdeadbeefcafebabe)
	assert.Equal(t, uint64(0xdeadbeefcafebabe), p.ReadUint64(8))
	assert.True(t, p.Dirty)
}

func TestFloat64RoundTrip(t *testing.T) {
	p := page.New(64)
	p.WriteFloat64(0, 3.14159)
	assert.InDelta(t, 3.14159, p.ReadFloat64(0), 1e-12)
}

func TestByteRoundTrip(t *testing.T) {
	p := page.New(16)
	p.WriteByte(3, 0xAB)
	assert.Equal(t, byte(0xAB), p.ReadByte(3))
}

func TestZeroClearsDirty(t *testing.T) {
	p := page.New(16)
	p.WriteByte(0, 1)
	p.Zero()
	assert.False(t, p.Dirty)
	for _, b := range p.Data {
		assert.Equal(t, byte(0), b)
	}
}
