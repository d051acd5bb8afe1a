package logging

import "sync"

// DefaultBufferSize is the number of records kept in TUI mode.
const DefaultBufferSize = 100

// Buffer is a fixed-size ring of recent records.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

// NewBuffer returns a ring holding up to size records. Non-positive sizes
// use DefaultBufferSize.
func NewBuffer(size int) *Buffer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Buffer{entries: make([]Entry, size)}
}

// Add appends e, overwriting the oldest record when full.
func (b *Buffer) Add(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.next] = e
	b.next = (b.next + 1) % len(b.entries)
	if b.next == 0 {
		b.full = true
	}
}

// Len returns the number of records held.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.len()
}

func (b *Buffer) len() int {
	if b.full {
		return len(b.entries)
	}
	return b.next
}

// Last returns up to n of the newest records, oldest first.
func (b *Buffer) Last(n int) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := b.len()
	if n > count {
		n = count
	}
	if n <= 0 {
		return nil
	}

	out := make([]Entry, n)
	size := len(b.entries)
	for i := range n {
		out[i] = b.entries[(b.next-n+i+size)%size]
	}
	return out
}
