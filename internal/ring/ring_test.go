package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		wantErr  bool
	}{
		{name: "positive capacity", capacity: 3},
		{name: "capacity one", capacity: 1},
		{name: "zero capacity", capacity: 0, wantErr: true},
		{name: "negative capacity", capacity: -5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(tt.capacity)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.capacity, b.Cap())
			assert.Zero(t, b.Len())
		})
	}
}

func TestBuffer_OverwritesOldest(t *testing.T) {
	b, err := New(3)
	require.NoError(t, err)

	for _, v := range []float64{1, 2, 3, 4} {
		b.Write(v)
	}

	assert.Equal(t, []float64{2, 3, 4}, b.Snapshot())
	assert.Equal(t, 3, b.Len())
}

func TestBuffer_SnapshotOrder(t *testing.T) {
	b, err := New(4)
	require.NoError(t, err)

	b.Write(10)
	b.Write(20)
	assert.Equal(t, []float64{10, 20}, b.Snapshot())

	b.Write(30)
	b.Write(40)
	b.Write(50)
	b.Write(60)
	assert.Equal(t, []float64{30, 40, 50, 60}, b.Snapshot())
}

func TestBuffer_SnapshotDoesNotConsume(t *testing.T) {
	b, err := New(2)
	require.NoError(t, err)

	b.Write(1)
	b.Write(2)

	first := b.Snapshot()
	second := b.Snapshot()
	assert.Equal(t, first, second)
	assert.Equal(t, 2, b.Len())

	// Mutating the snapshot must not affect the buffer.
	first[0] = 99
	assert.Equal(t, []float64{1, 2}, b.Snapshot())
}

func TestBuffer_EmptySnapshot(t *testing.T) {
	b, err := New(5)
	require.NoError(t, err)

	assert.Empty(t, b.Snapshot())
	assert.NotNil(t, b.Snapshot())
}
