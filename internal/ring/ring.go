// Package ring provides the fixed-capacity sample buffer backing each
// decoded signal channel. Writes overwrite the oldest sample once the
// buffer is full and never block; reads return an ordered snapshot
// without consuming anything.
package ring

import (
	"fmt"
	"sync"
)

// Buffer is an overwrite-on-full ring of scalar samples. A mutex guards
// each buffer so the single decode-loop writer and snapshot readers can
// run on separate goroutines; ordering among multiple concurrent writers
// is not defended.
type Buffer struct {
	mu   sync.Mutex
	data []float64
	head int // index of the next write
	size int // number of samples currently held
}

// New creates a buffer holding at most capacity samples.
func New(capacity int) (*Buffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("ring: capacity must be positive, got %d", capacity)
	}
	return &Buffer{data: make([]float64, capacity)}, nil
}

// Write appends a sample in O(1), overwriting the oldest sample when the
// buffer is full.
func (b *Buffer) Write(v float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data[b.head] = v
	b.head = (b.head + 1) % len(b.data)
	if b.size < len(b.data) {
		b.size++
	}
}

// Snapshot returns a copy of the currently held samples ordered oldest to
// newest. The buffer contents are not consumed.
func (b *Buffer) Snapshot() []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]float64, b.size)
	start := (b.head - b.size + len(b.data)) % len(b.data)
	for i := 0; i < b.size; i++ {
		out[i] = b.data[(start+i)%len(b.data)]
	}
	return out
}

// Len returns the number of samples currently held.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Cap returns the fixed capacity set at construction.
func (b *Buffer) Cap() int {
	return len(b.data)
}
