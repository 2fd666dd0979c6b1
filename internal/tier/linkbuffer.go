package tier

import "github.com/alxayo/chronicle/internal/cas"

// LinkBuffer is a preallocated, ordered sequence of links used for the
// Minute (capacity 60), Hour (capacity 60), and Day (nominal capacity 24,
// never capacity-checked) tiers. Minute and Hour flush the instant they
// reach capacity; Day only flushes at finalize and is allowed to grow past
// its nominal capacity — callers simply ignore Push's result for it.
type LinkBuffer struct {
	links    []cas.Link
	capacity int
}

// NewLinkBuffer creates an empty buffer preallocated to capacity.
func NewLinkBuffer(capacity int) *LinkBuffer {
	return &LinkBuffer{links: make([]cas.Link, 0, capacity), capacity: capacity}
}

// Push appends a link and reports whether the buffer has now reached its
// target capacity.
func (b *LinkBuffer) Push(l cas.Link) bool {
	b.links = append(b.links, l)
	return len(b.links) >= b.capacity
}

// Links returns the buffered links in insertion order. The returned slice
// aliases the buffer's backing array and must not be retained past the
// next Clear.
func (b *LinkBuffer) Links() []cas.Link { return b.links }

// Clear empties the buffer. Capacity is unchanged.
func (b *LinkBuffer) Clear() { b.links = b.links[:0] }

// Len returns the number of links currently buffered.
func (b *LinkBuffer) Len() int { return len(b.links) }

// Capacity returns the buffer's nominal target length.
func (b *LinkBuffer) Capacity() int { return b.capacity }

// Empty reports whether the buffer currently holds no links.
func (b *LinkBuffer) Empty() bool { return len(b.links) == 0 }
