// Package verifier implements the Chat Verifier (spec.md §4.5): the
// receive-side state machine that decodes transport frames, resolves
// message origins through the identity cache, and emits only messages
// whose claimed signer is cryptographically verified and matches the
// transport-reported sender. Grounded on the original source's
// web-app/src/components/chat/display.rs state machine (on_pubsub_update
// / on_signed_msg), translated from a Yew component's callback-driven
// update loop into a single-threaded Go event loop selecting over
// channels, per spec.md §5's "message-passing, not direct shared-memory
// callbacks" requirement.
package verifier

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/alxayo/chronicle/internal/cas"
	"github.com/alxayo/chronicle/internal/dag"
	chronerr "github.com/alxayo/chronicle/internal/errors"
	"github.com/alxayo/chronicle/internal/hooks"
	"github.com/alxayo/chronicle/internal/identity"
	"github.com/alxayo/chronicle/internal/logger"
	"github.com/alxayo/chronicle/internal/metrics"
	"github.com/alxayo/chronicle/internal/transport"
	"github.com/alxayo/chronicle/internal/verify"
)

// Policy decides whether a sender/origin pair is allowed through before
// it ever reaches the identity cache (spec.md §4.5's is_allowed,
// whitelist/blacklist — external by default permit-all).
type Policy interface {
	IsAllowed(sender string, origin cas.CID) bool
}

// AllowAll is the default Policy: spec.md §4.5 names "permit all" as the
// default.
type AllowAll struct{}

// IsAllowed always returns true.
func (AllowAll) IsAllowed(string, cas.CID) bool { return true }

// Config carries the Verifier's tunables.
type Config struct {
	// Topic is the transport topic to subscribe to (gossipsub_topic).
	Topic string
	// DisplayQueueSize bounds the emitted chat history (default 10 per
	// spec.md §3).
	DisplayQueueSize int
}

// identityResult is how a completed CAS-get re-enters the Verifier's
// single-threaded loop: a message, not a direct call into the identity
// cache from whatever goroutine issued the get (spec.md §5/§9).
type identityResult struct {
	cid       cas.CID
	signed    dag.SignedMessage
	verified  bool // result of verify.Verify; meaningless if getFailed
	getFailed bool // true if the CAS-get (or its decode) failed outright
}

// Verifier is the Chat Verifier state machine. One instance per session;
// create with New and drive with Run.
type Verifier struct {
	client cas.Client
	sub    transport.Subscriber
	verify verify.Verifier
	policy Policy
	cfg    Config
	hm     *hooks.HookManager
	log    *slog.Logger

	cache   *identity.Cache
	display *DisplayQueue

	dropped atomic.Bool
}

// New constructs a Verifier. policy and hm may be nil (AllowAll and no
// hooks, respectively).
func New(client cas.Client, sub transport.Subscriber, v verify.Verifier, policy Policy, cfg Config, hm *hooks.HookManager) *Verifier {
	if cfg.DisplayQueueSize <= 0 {
		cfg.DisplayQueueSize = 10
	}
	if policy == nil {
		policy = AllowAll{}
	}
	return &Verifier{
		client:  client,
		sub:     sub,
		verify:  v,
		policy:  policy,
		cfg:     cfg,
		hm:      hm,
		log:     logger.Logger().With("component", "verifier"),
		cache:   identity.New(),
		display: NewDisplayQueue(cfg.DisplayQueueSize),
	}
}

// Shutdown sets the drop signal (spec.md §5's atomic flag): the frame
// loop terminates at its next cooperative suspension point. In-flight
// CAS-gets may still complete after Shutdown; their callbacks become
// no-ops per the dropped check in handleIdentityResult.
func (v *Verifier) Shutdown() { v.dropped.Store(true) }

// Run subscribes to the configured topic and drives frames through the
// state machine until ctx is cancelled, the subscription ends, or
// Shutdown is called. It returns when the loop terminates.
func (v *Verifier) Run(ctx context.Context) error {
	frames, subErrs := v.sub.Subscribe(ctx, v.cfg.Topic)
	identities := make(chan identityResult, 16)

	for {
		if v.dropped.Load() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			v.handleFrame(ctx, f, identities)
		case err, ok := <-subErrs:
			if ok && err != nil {
				v.log.Error("transport subscription error", "error", err)
			}
		case res := <-identities:
			v.handleIdentityResult(res)
		}
	}
}

// handleFrame decodes one transport frame and routes it through
// is_allowed -> lookup_or_park, per spec.md §4.5's state diagram.
func (v *Verifier) handleFrame(ctx context.Context, f transport.Frame, identities chan<- identityResult) {
	sender, err := transport.DecodeSender(f.From)
	if err != nil {
		v.dropFrame(metrics.ReasonDecodeFailed, "sender decode failed", err)
		return
	}
	payload, err := transport.DecodePayload(f.Data)
	if err != nil {
		v.dropFrame(metrics.ReasonDecodeFailed, "payload decode failed", err)
		return
	}
	var msg dag.UnsignedMessage
	if err := dag.DecodeNode(payload, &msg); err != nil {
		v.dropFrame(metrics.ReasonDecodeFailed, "message decode failed", err)
		return
	}

	origin := msg.Origin.Target
	if !v.policy.IsAllowed(sender, origin) {
		v.dropFrame(metrics.ReasonPolicyDenied, "policy denied", chronerr.NewPolicyDeniedError(sender))
		return
	}

	disp, ok := v.cache.LookupOrPark(sender, msg)
	if ok {
		v.emit(disp)
		return
	}
	metrics.Verifier.ParkingLotSize.Set(float64(v.cache.ParkedLen()))

	// Issue the CAS-get asynchronously; completion re-enters the loop as
	// a message on identities, never by touching v.cache directly from
	// this goroutine (spec.md §5/§9).
	go func() {
		raw, err := v.client.Get(ctx, origin, "")
		if err != nil {
			identities <- identityResult{cid: origin, getFailed: true}
			return
		}
		var signed dag.SignedMessage
		if err := dag.DecodeNode(raw, &signed); err != nil {
			identities <- identityResult{cid: origin, getFailed: true}
			return
		}
		identities <- identityResult{cid: origin, signed: signed, verified: v.verify.Verify(signed)}
	}()
}

// handleIdentityResult processes a completed CAS-get, re-entering
// single-threaded per spec.md §9. A result arriving after Shutdown is a
// no-op, per spec.md §5's cancellation contract.
func (v *Verifier) handleIdentityResult(res identityResult) {
	if v.dropped.Load() {
		return
	}
	if res.getFailed {
		// CAS-get itself failed (or its decode did): drop every parked
		// entry for this origin, per spec.md §7's cas-get-failed policy.
		n := v.cache.DropOrigin(res.cid)
		if n > 0 {
			metrics.Verifier.FramesDropped.WithLabelValues(metrics.ReasonCASGetFailed).Add(float64(n))
		}
		metrics.Verifier.ParkingLotSize.Set(float64(v.cache.ParkedLen()))
		return
	}

	emitted, mismatched := v.cache.OnIdentity(res.cid, res.signed, res.verified)
	metrics.Verifier.ParkingLotSize.Set(float64(v.cache.ParkedLen()))
	metrics.Verifier.CacheSize.Set(float64(v.cache.Len()))

	if !res.verified {
		v.dropFrame(metrics.ReasonSignatureInvalid, "signature invalid", chronerr.NewSignatureError(string(res.cid)))
	}
	if mismatched > 0 {
		metrics.Verifier.FramesDropped.WithLabelValues(metrics.ReasonPeerMismatch).Add(float64(mismatched))
		v.log.Debug("peer mismatch", "origin", res.cid, "count", mismatched,
			"error", chronerr.NewPeerMismatchError("", res.signed.Data.PeerID))
	}
	if v.hm != nil && res.verified {
		v.hm.TriggerEvent(context.Background(), *hooks.NewEvent(hooks.EventIdentityVerified).WithCID(string(res.cid)))
	}
	for _, d := range emitted {
		v.emit(d)
	}
}

func (v *Verifier) emit(d identity.Display) {
	v.display.Push(d)
	metrics.Verifier.MessagesEmitted.Inc()
	if v.hm != nil {
		v.hm.TriggerEvent(context.Background(), *hooks.NewEvent(hooks.EventMessageEmitted).WithData("name", d.Name))
	}
}

func (v *Verifier) dropFrame(reason, msg string, err error) {
	metrics.Verifier.FramesDropped.WithLabelValues(reason).Inc()
	v.log.Debug(msg, "reason", reason, "error", err)
	if v.hm != nil {
		v.hm.TriggerEvent(context.Background(), *hooks.NewEvent(hooks.EventMessageDropped).WithData("reason", reason))
	}
}

// Display returns the bounded, most-recent-N display queue for rendering.
func (v *Verifier) Display() *DisplayQueue { return v.display }
