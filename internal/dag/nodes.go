// Package dag defines the Merkle DAG node schemas archived by the
// Chronicler (spec.md §3/§4.1): SecondNode through StreamNode, plus the
// chat message forms exchanged between the Chronicler, the transport, and
// the Chat Verifier. Field names are fixed for wire compatibility; every
// cross-block reference is a cas.Link so it serializes as the
// self-describing `{"/": "<cid>"}` form.
package dag

import "github.com/alxayo/chronicle/internal/cas"

// SecondNode covers one archived video segment: the video CID and the
// ordered chat messages matched to that second. Chat links are appended in
// arrival order.
type SecondNode struct {
	Video cas.Link   `json:"video"`
	Chat  []cas.Link `json:"chat"`
}

// NewSecondNode constructs a SecondNode for a freshly archived video
// segment with an empty chat list.
func NewSecondNode(video cas.Link) *SecondNode {
	return &SecondNode{Video: video, Chat: make([]cas.Link, 0, 5)}
}

// MinuteNode holds 60 SecondNode links, one per second offset within the
// minute. A single SecondNode CID is replicated into as many contiguous
// slots as the segment's configured duration in seconds.
type MinuteNode struct {
	Seconds []cas.Link `json:"seconds"`
}

// HourNode holds 60 MinuteNode links, one per minute offset within the
// hour.
type HourNode struct {
	Minutes []cas.Link `json:"minutes"`
}

// DayNode holds up to 24 HourNode links. Unlike Minute/Hour, it is not
// auto-flushed during streaming and is only written once, at finalize.
type DayNode struct {
	Hours []cas.Link `json:"hours"`
}

// StreamNode is the published root of an archived broadcast.
type StreamNode struct {
	Timecode cas.Link `json:"timecode"`
}
