package verifier

import (
	"sync"

	"github.com/alxayo/chronicle/internal/identity"
)

// DisplayQueue is the bounded FIFO of emitted chat lines spec.md §3/§4.5
// describe: at most N most-recent messages, oldest evicted first. The
// Verifier's own event loop is single-threaded, but spec.md §5 allows a
// host UI renderer to run on another thread and read this queue, so it is
// guarded by a mutex — the one exception to "no shared mutable state
// behind locks" the spec carves out explicitly.
type DisplayQueue struct {
	mu   sync.Mutex
	buf  []identity.Display
	size int
}

// NewDisplayQueue creates an empty queue bounded to size entries.
func NewDisplayQueue(size int) *DisplayQueue {
	if size <= 0 {
		size = 10
	}
	return &DisplayQueue{buf: make([]identity.Display, 0, size), size: size}
}

// Push appends d, evicting the oldest entry first if the queue is already
// at its bound.
func (q *DisplayQueue) Push(d identity.Display) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) >= q.size {
		q.buf = q.buf[1:]
	}
	q.buf = append(q.buf, d)
}

// Snapshot returns a copy of the queue's current contents, oldest first.
func (q *DisplayQueue) Snapshot() []identity.Display {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]identity.Display, len(q.buf))
	copy(out, q.buf)
	return out
}

// Len returns the current number of queued messages.
func (q *DisplayQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}
