// Package tier implements the Chronicler's in-memory per-tier staging
// buffers (spec.md §4.2): a FIFO SecondBuffer that joins chat to video by
// timestamp, and fixed-capacity LinkBuffers for the Minute/Hour/Day tiers.
// Buffers are created once at Chronicler start and mutated exclusively by
// the single-writer event loop; nothing here is safe for concurrent use
// from more than one goroutine; per spec.md §5, that exclusivity is a
// property of the caller, not of the buffer.
package tier

import (
	"github.com/alxayo/chronicle/internal/cas"
	"github.com/alxayo/chronicle/internal/dag"
)

// SecondSlot pairs an archived SecondNode with the timestamp its Video
// event carried, since that field does not round-trip through the node's
// own wire schema — the join key lives only in the buffer, never in the
// serialized DAG.
type SecondSlot struct {
	Timestamp int64
	Node      *dag.SecondNode
}

// SecondBuffer is a FIFO of SecondSlot whose target length is
// 120/segment_duration (two minutes of backlog), per spec.md §4.2.
type SecondBuffer struct {
	slots    []*SecondSlot
	capacity int
}

// NewSecondBuffer creates an empty buffer sized for the given video segment
// duration in seconds.
func NewSecondBuffer(segmentDuration int) *SecondBuffer {
	capacity := 120 / segmentDuration
	if capacity < 1 {
		capacity = 1
	}
	return &SecondBuffer{slots: make([]*SecondSlot, 0, capacity), capacity: capacity}
}

// PushVideo appends a new SecondNode for the given video link and
// timestamp. It reports whether the buffer is now at capacity — the
// Chronicler must respond by popping and flushing the head.
func (b *SecondBuffer) PushVideo(timestamp int64, video cas.Link) bool {
	node := dag.NewSecondNode(video)
	b.slots = append(b.slots, &SecondSlot{Timestamp: timestamp, Node: node})
	return len(b.slots) >= b.capacity
}

// HasTimestamp reports whether some buffered slot's Timestamp equals the
// given value, without mutating anything. The Chronicler uses this to
// decide whether a chat message's CAS put is worth paying for before
// calling AttachChat — per spec.md §4.3, a chat with no matching second
// costs zero CAS writes.
func (b *SecondBuffer) HasTimestamp(timestamp int64) bool {
	for _, slot := range b.slots {
		if slot.Timestamp == timestamp {
			return true
		}
	}
	return false
}

// AttachChat appends chatLink to the chat list of the first slot whose
// Timestamp equals the given timestamp, terminating the join at the first
// match (a chat matches at most one second). Reports whether a match was
// found; callers must drop the chat silently when it returns false.
func (b *SecondBuffer) AttachChat(timestamp int64, chatLink cas.Link) bool {
	for _, slot := range b.slots {
		if slot.Timestamp != timestamp {
			continue
		}
		slot.Node.Chat = append(slot.Node.Chat, chatLink)
		return true
	}
	return false
}

// PopFront removes and returns the oldest slot. The second return value is
// false if the buffer is empty.
func (b *SecondBuffer) PopFront() (*SecondSlot, bool) {
	if len(b.slots) == 0 {
		return nil, false
	}
	slot := b.slots[0]
	b.slots = b.slots[1:]
	return slot, true
}

// Len returns the number of slots currently buffered.
func (b *SecondBuffer) Len() int { return len(b.slots) }

// Capacity returns the buffer's fixed target length.
func (b *SecondBuffer) Capacity() int { return b.capacity }

// Empty reports whether the buffer currently holds no slots.
func (b *SecondBuffer) Empty() bool { return len(b.slots) == 0 }
