package capture

import "time"

// Entry is one captured stdout line with its arrival time.
type Entry struct {
	At   time.Time
	Line string
}

// Buffer is a fixed-capacity ring of captured stdout lines. Each attempt gets
// a fresh buffer, owned exclusively by that attempt's stdout monitor, so no
// locking is needed.
type Buffer struct {
	entries []Entry
	head    int // index of the oldest entry once the ring is full
	full    bool
	cap     int
}

// NewBuffer returns a ring holding at most capacity entries. A zero capacity
// retains nothing: lines still flow to the dashboard, but no history is kept
// for crash dumps.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{entries: make([]Entry, 0, capacity), cap: capacity}
}

// Push appends an entry, evicting the oldest one once capacity is exceeded.
func (b *Buffer) Push(at time.Time, line string) {
	if b.cap == 0 {
		return
	}
	if !b.full {
		b.entries = append(b.entries, Entry{At: at, Line: line})
		if len(b.entries) == b.cap {
			b.full = true
		}
		return
	}
	b.entries[b.head] = Entry{At: at, Line: line}
	b.head = (b.head + 1) % b.cap
}

func (b *Buffer) Len() int { return len(b.entries) }

// Entries returns the buffered lines, oldest first.
func (b *Buffer) Entries() []Entry {
	out := make([]Entry, 0, len(b.entries))
	out = append(out, b.entries[b.head:]...)
	out = append(out, b.entries[:b.head]...)
	return out
}
