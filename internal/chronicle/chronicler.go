// Package chronicle implements the Chronicler event loop (spec.md §4.3):
// it threads an interleaved stream of video references and chat messages
// into tier buffers, flushing each tier to the CAS the instant it reaches
// its fixed fanout, and publishes a single StreamNode root at finalize.
// Grounded on the teacher's connection/session event loops
// (internal/rtmp/conn), generalized from RTMP chunk dispatch to DAG tier
// flush dispatch; the flush cascade itself follows the original source's
// chronicler.rs almost line for line, translated into the Go idiom.
package chronicle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alxayo/chronicle/internal/cas"
	"github.com/alxayo/chronicle/internal/dag"
	chronerr "github.com/alxayo/chronicle/internal/errors"
	"github.com/alxayo/chronicle/internal/hooks"
	"github.com/alxayo/chronicle/internal/logger"
	"github.com/alxayo/chronicle/internal/metrics"
	"github.com/alxayo/chronicle/internal/tier"
)

// ErrEmptyStream is returned by Finalize when no video segment was ever
// archived. Resolves spec.md §9's open question ("whether to emit an
// empty-DAG root or refuse is unspecified") by refusing, per the spec's
// stated default.
var ErrEmptyStream = errors.New("chronicle: finalize called with no archived video")

// VideoEvent archives one video segment reference at the given
// broadcast-relative timestamp (spec.md §9's resolution of the
// link_to_video ambiguity: the exact value a Video event carries is the
// only value a later Chat event can join against).
type VideoEvent struct {
	Timestamp int64
	Video     cas.Link
}

// ChatEvent carries a chat message to be attached to whichever buffered
// second shares its Msg.Timestamp. No match means silent drop (spec.md
// §4.3/§7); it is never retried.
type ChatEvent struct {
	Msg dag.UnsignedMessage
}

// FinalizeEvent drains every tier buffer and publishes the stream root.
type FinalizeEvent struct{}

// Event is the closed set of inputs the Chronicler's event loop consumes.
// Exactly one of the concrete types above.
type Event interface{ isEvent() }

func (VideoEvent) isEvent()    {}
func (ChatEvent) isEvent()     {}
func (FinalizeEvent) isEvent() {}

// Config carries the options spec.md §6 names for the Chronicler.
type Config struct {
	// VideoSegmentDuration is the integer seconds per video segment,
	// driving minute-slot replication and second-buffer capacity.
	VideoSegmentDuration int
	// PinStream, if set, recursively pins the final stream root.
	PinStream bool
}

// Chronicler is the single-writer archival pipeline. One instance per
// broadcast; create with New, feed events with Run, and expect exactly
// one StreamNode CID out of a successful Finalize.
type Chronicler struct {
	cas cas.Client
	cfg Config
	log *slog.Logger
	hm  *hooks.HookManager

	second *tier.SecondBuffer
	minute *tier.LinkBuffer
	hour   *tier.LinkBuffer
	day    *tier.LinkBuffer
}

// New constructs a Chronicler. hm may be nil to disable lifecycle hooks.
func New(client cas.Client, cfg Config, hm *hooks.HookManager) *Chronicler {
	if cfg.VideoSegmentDuration < 1 {
		cfg.VideoSegmentDuration = 1
	}
	return &Chronicler{
		cas:    client,
		cfg:    cfg,
		log:    logger.Logger().With("component", "chronicler"),
		hm:     hm,
		second: tier.NewSecondBuffer(cfg.VideoSegmentDuration),
		minute: tier.NewLinkBuffer(60),
		hour:   tier.NewLinkBuffer(60),
		day:    tier.NewLinkBuffer(24),
	}
}

// Run consumes events from in until the channel closes. Events are
// processed strictly in arrival order (spec.md §5). Closing the channel
// without ever sending a FinalizeEvent is not a clean shutdown: any
// buffered data not yet flushed is lost, per spec.md §5.
func (c *Chronicler) Run(ctx context.Context, in <-chan Event) (cas.CID, error) {
	var streamCID cas.CID
	var finalizeErr error
	finalized := false

	for ev := range in {
		switch e := ev.(type) {
		case VideoEvent:
			c.archiveVideo(ctx, e)
		case ChatEvent:
			c.archiveChat(ctx, e)
		case FinalizeEvent:
			streamCID, finalizeErr = c.Finalize(ctx)
			finalized = true
		}
	}

	if !finalized {
		return "", errors.New("chronicle: input closed without a Finalize event")
	}
	return streamCID, finalizeErr
}

// archiveChat implements spec.md §4.3's Chat handling: it only pays for a
// CAS put if some buffered second's Timestamp matches the message's.
func (c *Chronicler) archiveChat(ctx context.Context, e ChatEvent) {
	if !c.second.HasTimestamp(e.Msg.Timestamp) {
		c.log.Debug("chat dropped: no matching second", "timestamp", e.Msg.Timestamp)
		return
	}

	enc, err := dag.EncodeNode(e.Msg)
	if err != nil {
		c.log.Error("chat encode failed", "error", err)
		return
	}
	defer enc.Release()

	cid, err := c.cas.Put(ctx, enc.Bytes)
	if err != nil {
		c.logPutFailure("chat", err)
		return
	}

	if !c.second.AttachChat(e.Msg.Timestamp, cas.NewLink(cid)) {
		// The matching second was flushed between HasTimestamp and here
		// (single-writer, so this can only happen if the caller
		// interleaved calls incorrectly); treat as a drop.
		c.log.Warn("chat attach lost race with flush", "timestamp", e.Msg.Timestamp)
	}
}

// archiveVideo implements spec.md §4.3's Video handling and flush
// cascade: push the segment, and if the second-buffer is now full, flush
// the head and let any resulting overflow cascade upward.
func (c *Chronicler) archiveVideo(ctx context.Context, e VideoEvent) {
	full := c.second.PushVideo(e.Timestamp, e.Video)
	c.reportDepths()
	if !full {
		return
	}
	c.flushSecond(ctx)
}

// flushSecond pops and CAS-puts the oldest buffered second, replicates its
// link into the minute buffer VideoSegmentDuration times, and cascades
// into flushMinute if that fills the minute buffer.
func (c *Chronicler) flushSecond(ctx context.Context) {
	slot, ok := c.second.PopFront()
	if !ok {
		return
	}

	enc, err := dag.EncodeNode(slot.Node)
	if err != nil {
		c.log.Error("second encode failed", "error", err)
		return
	}
	defer enc.Release()

	cid, err := c.cas.Put(ctx, enc.Bytes)
	if err != nil {
		// Per spec.md §4.3's failure policy, the slot is already popped
		// from the buffer (the cascade cannot "un-pop" it without
		// reordering), so a failed flush here drops the second rather
		// than leaving the buffer inconsistent. This is the one
		// operational fragility spec.md §9 calls out explicitly.
		c.logPutFailure("second", err)
		c.raiseFlushFailed("second")
		return
	}
	metrics.Chronicler.SecondsFlushed.Inc()
	c.raiseFlushed(hooks.EventSecondFlushed, "second", cid)

	link := cas.NewLink(cid)
	for i := 0; i < c.cfg.VideoSegmentDuration; i++ {
		if c.minute.Push(link) {
			c.reportDepths()
			c.flushMinute(ctx)
		}
	}
	c.reportDepths()
}

func (c *Chronicler) flushMinute(ctx context.Context) {
	if c.minute.Empty() {
		return
	}
	node := &dag.MinuteNode{Seconds: append([]cas.Link(nil), c.minute.Links()...)}
	enc, err := dag.EncodeNode(node)
	if err != nil {
		c.log.Error("minute encode failed", "error", err)
		return
	}
	defer enc.Release()

	cid, err := c.cas.Put(ctx, enc.Bytes)
	if err != nil {
		c.logPutFailure("minute", err)
		c.raiseFlushFailed("minute")
		return
	}
	metrics.Chronicler.MinutesFlushed.Inc()
	c.raiseFlushed(hooks.EventMinuteFlushed, "minute", cid)

	c.minute.Clear()
	full := c.hour.Push(cas.NewLink(cid))
	c.reportDepths()
	if full {
		c.flushHour(ctx)
	}
}

func (c *Chronicler) flushHour(ctx context.Context) {
	if c.hour.Empty() {
		return
	}
	node := &dag.HourNode{Minutes: append([]cas.Link(nil), c.hour.Links()...)}
	enc, err := dag.EncodeNode(node)
	if err != nil {
		c.log.Error("hour encode failed", "error", err)
		return
	}
	defer enc.Release()

	cid, err := c.cas.Put(ctx, enc.Bytes)
	if err != nil {
		c.logPutFailure("hour", err)
		c.raiseFlushFailed("hour")
		return
	}
	metrics.Chronicler.HoursFlushed.Inc()
	c.raiseFlushed(hooks.EventHourFlushed, "hour", cid)

	c.hour.Clear()
	c.day.Push(cas.NewLink(cid))
	c.reportDepths()
	// Day is never auto-flushed during streaming, per spec.md §4.3.
}

// Finalize implements spec.md §4.3's terminal operation: drain every tier
// buffer bottom-up and publish the StreamNode root. Returns
// ErrEmptyStream if no video was ever archived (spec.md §9).
func (c *Chronicler) Finalize(ctx context.Context) (cas.CID, error) {
	if c.second.Empty() && c.minute.Empty() && c.hour.Empty() && c.day.Empty() {
		return "", ErrEmptyStream
	}

	for !c.second.Empty() {
		c.flushSecond(ctx)
	}
	c.flushMinute(ctx)
	c.flushHour(ctx)

	if c.day.Empty() {
		return "", ErrEmptyStream
	}

	dayNode := &dag.DayNode{Hours: append([]cas.Link(nil), c.day.Links()...)}
	encDay, err := dag.EncodeNode(dayNode)
	if err != nil {
		return "", fmt.Errorf("chronicle: encode day node: %w", err)
	}
	defer encDay.Release()

	dayCID, err := c.cas.Put(ctx, encDay.Bytes)
	if err != nil {
		c.logPutFailure("day", err)
		return "", chronerr.NewCASPutError("finalize.day", err)
	}
	metrics.Chronicler.DaysFlushed.Inc()
	c.raiseFlushed(hooks.EventDayFlushed, "day", dayCID)

	stream := &dag.StreamNode{Timecode: cas.NewLink(dayCID)}
	encStream, err := dag.EncodeNode(stream)
	if err != nil {
		return "", fmt.Errorf("chronicle: encode stream node: %w", err)
	}
	defer encStream.Release()

	streamCID, err := c.cas.Put(ctx, encStream.Bytes)
	if err != nil {
		c.logPutFailure("stream", err)
		return "", chronerr.NewCASPutError("finalize.stream", err)
	}

	if c.cfg.PinStream {
		if err := c.cas.Pin(ctx, streamCID, true); err != nil {
			c.log.Error("pin stream failed", "cid", streamCID, "error", err)
		} else {
			c.log.Info("pinned stream", "cid", streamCID)
		}
	}

	metrics.Chronicler.StreamsFinalized.Inc()
	c.raiseFlushed(hooks.EventStreamFinalized, "stream", streamCID)
	c.log.Info("stream finalized", "cid", streamCID)
	return streamCID, nil
}

func (c *Chronicler) logPutFailure(op string, err error) {
	wrapped := chronerr.NewCASPutError(op, err)
	c.log.Error("cas put failed", "op", op, "error", wrapped)
}

func (c *Chronicler) raiseFlushed(evt hooks.EventType, tierName string, cid cas.CID) {
	if c.hm == nil {
		return
	}
	c.hm.TriggerEvent(context.Background(), *hooks.NewEvent(evt).WithTier(tierName).WithCID(string(cid)))
}

func (c *Chronicler) raiseFlushFailed(tierName string) {
	metrics.Chronicler.FlushFailures.WithLabelValues(tierName).Inc()
	if c.hm == nil {
		return
	}
	c.hm.TriggerEvent(context.Background(), *hooks.NewEvent(hooks.EventFlushFailed).WithTier(tierName))
}

func (c *Chronicler) reportDepths() {
	metrics.Chronicler.BufferDepth.WithLabelValues("second").Set(float64(c.second.Len()))
	metrics.Chronicler.BufferDepth.WithLabelValues("minute").Set(float64(c.minute.Len()))
	metrics.Chronicler.BufferDepth.WithLabelValues("hour").Set(float64(c.hour.Len()))
	metrics.Chronicler.BufferDepth.WithLabelValues("day").Set(float64(c.day.Len()))
}
