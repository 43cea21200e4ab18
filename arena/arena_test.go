package arena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/usbdesc/arena"
)

func TestAppendAndGet(t *testing.T) {
	a := arena.New[byte](0, 4, 4)
	for i := byte(1); i <= 6; i++ {
		require.NoError(t, a.Append(i))
	}
	assert.Equal(t, 6, a.Len())
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, a.Data())
}

func TestGetOutOfRangeReturnsSentinel(t *testing.T) {
	a := arena.New("<none>", 2, 2)
	require.NoError(t, a.Append("first"))

	assert.Equal(t, "first", a.Get(0))
	assert.Equal(t, "<none>", a.Get(1))
	assert.Equal(t, "<none>", a.Get(-1))
	assert.Equal(t, "<none>", a.Get(100))
}

func TestGrowthRoundsToIncrement(t *testing.T) {
	a := arena.New[byte](0, 1, 5)
	// initial capacity is rounded up from 1
	assert.Equal(t, 5, a.Cap())
	for i := 0; i < 6; i++ {
		require.NoError(t, a.Append(byte(i)))
	}
	assert.Equal(t, 10, a.Cap())
	assert.Equal(t, 6, a.Len())
}

func TestFixedArenaAppendBeyondCapacityFails(t *testing.T) {
	a := arena.New[byte](0, 3, 0)
	require.Equal(t, 3, a.Cap())
	for i := 0; i < 3; i++ {
		require.NoError(t, a.Append(byte(i)))
	}

	err := a.Append(0xff)
	assert.ErrorIs(t, err, arena.ErrNoSpace)
	assert.Equal(t, 3, a.Len(), "failed append must not advance length")
}

func TestCheckSize(t *testing.T) {
	a := arena.New[byte](0, 8, 0)
	assert.True(t, a.CheckSize(8))
	assert.False(t, a.CheckSize(9))
	// CheckSize must not mutate anything
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 8, a.Cap())
}

func TestResizeExactFitPreservesData(t *testing.T) {
	a := arena.New[byte](0, 2, 0)
	require.NoError(t, a.Append(0xaa))
	require.NoError(t, a.Append(0xbb))

	require.NoError(t, a.Resize(16))
	assert.Equal(t, 16, a.Cap())
	assert.Equal(t, []byte{0xaa, 0xbb}, a.Data())

	// Resize never shrinks
	require.NoError(t, a.Resize(4))
	assert.Equal(t, 16, a.Cap())
}

func TestSet(t *testing.T) {
	a := arena.New[byte](0, 4, 0)
	require.NoError(t, a.Append(1))
	require.NoError(t, a.Set(0, 9))
	assert.Equal(t, byte(9), a.Get(0))
	assert.ErrorIs(t, a.Set(1, 9), arena.ErrNoSpace)
}

func TestClearKeepsCapacity(t *testing.T) {
	a := arena.New[byte](0, 4, 0)
	require.NoError(t, a.Append(1))
	a.Clear()
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 4, a.Cap())
	require.NoError(t, a.Append(2))
	assert.Equal(t, byte(2), a.Get(0))
}
