// Package ring implements the shared playback sample buffer: a
// fixed-capacity FIFO bridging asynchronous per-track relay producers and
// the real-time output callback.
package ring

import "sync"

// Buffer holds normalized float32 samples. Multiple producers push decoded
// remote audio; the single consumer is the hardware playback callback.
// Samples from different producers interleave without separation, so the
// effective policy is last writer wins rather than mixing.
//
// The lock is held only for the duration of a push or pop, never across I/O.
type Buffer struct {
	mu   sync.Mutex
	data []float32
	head int
	size int
}

// New creates a buffer holding at most capacity samples.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		panic("ring: capacity must be positive")
	}
	return &Buffer{data: make([]float32, capacity)}
}

// Push appends samples in order. Once the buffer is full the oldest samples
// are evicted first, so length never exceeds capacity.
func (b *Buffer) Push(samples []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range samples {
		b.data[(b.head+b.size)%len(b.data)] = s
		if b.size == len(b.data) {
			b.head = (b.head + 1) % len(b.data)
		} else {
			b.size++
		}
	}
}

// Pop removes and returns the oldest sample. ok is false on underrun; the
// caller emits silence instead of blocking or repeating stale audio.
func (b *Buffer) Pop() (sample float32, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.size == 0 {
		return 0, false
	}
	sample = b.data[b.head]
	b.head = (b.head + 1) % len(b.data)
	b.size--
	return sample, true
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

func (b *Buffer) Cap() int {
	return len(b.data)
}
