package gerr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgodjo/pagegraph/gerr"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "ArgumentError", gerr.ArgumentError.String())
	assert.Equal(t, "NotFound", gerr.NotFound.String())
}

func TestIsAndFatal(t *testing.T) {
	err := gerr.New(gerr.InvariantViolation, "degree > 0 on delete_node")
	require.True(t, gerr.Is(err, gerr.InvariantViolation))
	assert.False(t, gerr.Is(err, gerr.NotFound))
	assert.True(t, gerr.Fatal(err))

	nf := gerr.New(gerr.NotFound, "no such relationship")
	assert.False(t, gerr.Fatal(nf))
	assert.True(t, gerr.IsNotFound(nf))
}

func TestWrapPreservesKind(t *testing.T) {
	underlying := assert.AnError
	wrapped := gerr.Wrap(gerr.IoError, underlying, "read page 3")
	require.Error(t, wrapped)
	assert.True(t, gerr.Is(wrapped, gerr.IoError))
	assert.Contains(t, wrapped.Error(), "read page 3")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, gerr.Wrap(gerr.IoError, nil, "no-op"))
}
