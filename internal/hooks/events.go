// Event system for archival and chat-verification hooks.
// This file defines the core event types and data structures used by the hook system.
package hooks

import (
	"time"
)

// EventType represents the type of archival/verification event that occurred.
type EventType string

const (
	// Tier flush events, raised by the Chronicler's flush cascade.
	EventSecondFlushed   EventType = "second_flushed"
	EventMinuteFlushed   EventType = "minute_flushed"
	EventHourFlushed     EventType = "hour_flushed"
	EventDayFlushed      EventType = "day_flushed"
	EventStreamFinalized EventType = "stream_finalized"
	EventFlushFailed     EventType = "flush_failed"

	// Identity/verification events, raised by the Chat Verifier.
	EventIdentityVerified EventType = "identity_verified"
	EventMessageEmitted   EventType = "message_emitted"
	EventMessageDropped   EventType = "message_dropped"
)

// Event represents a single archival or verification event that can trigger hooks.
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp int64                  `json:"timestamp"`
	CID       string                 `json:"cid,omitempty"`
	Tier      string                 `json:"tier,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// NewEvent creates a new event with the current timestamp.
func NewEvent(eventType EventType) *Event {
	return &Event{
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Data:      make(map[string]interface{}),
	}
}

// WithCID sets the content identifier associated with the event (e.g. the
// CID a tier flush just wrote).
func (e *Event) WithCID(cid string) *Event {
	e.CID = cid
	return e
}

// WithTier sets the DAG tier the event concerns (second/minute/hour/day/stream).
func (e *Event) WithTier(tier string) *Event {
	e.Tier = tier
	return e
}

// WithData adds data fields to the event.
func (e *Event) WithData(key string, value interface{}) *Event {
	if e.Data == nil {
		e.Data = make(map[string]interface{})
	}
	e.Data[key] = value
	return e
}

// String returns a human-readable string representation of the event.
func (e *Event) String() string {
	if e.Tier != "" {
		return string(e.Type) + ":" + e.Tier
	}
	if e.CID != "" {
		return string(e.Type) + ":" + e.CID
	}
	return string(e.Type)
}
