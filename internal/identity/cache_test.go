package identity

import (
	"testing"

	"github.com/alxayo/chronicle/internal/cas"
	"github.com/alxayo/chronicle/internal/dag"
)

func unsigned(origin cas.CID, msg string) dag.UnsignedMessage {
	return dag.UnsignedMessage{Message: msg, Origin: cas.NewLink(origin)}
}

func signed(peerID, name string, addr dag.Address) dag.SignedMessage {
	return dag.SignedMessage{Address: addr, Data: dag.SignedMessageData{PeerID: peerID, Name: name}}
}

// S4 — verified identity: cache miss then a matching, verified identity
// arrives; exactly one emission, cache populated.
func TestLookupOrParkThenOnIdentityVerified(t *testing.T) {
	c := New()
	origin := cas.CID("origin1")

	_, emitted := c.LookupOrPark("peerP", unsigned(origin, "hello"))
	if emitted {
		t.Fatal("expected park, not immediate emission, on cache miss")
	}
	if c.ParkedLen() != 1 {
		t.Fatalf("ParkedLen() = %d, want 1", c.ParkedLen())
	}

	var addr dag.Address
	addr[0] = 0xAB
	out, mismatched := c.OnIdentity(origin, signed("peerP", "alice", addr), true)
	if mismatched != 0 {
		t.Fatalf("mismatched = %d, want 0", mismatched)
	}
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].Name != "alice" || out[0].Message != "hello" || out[0].Address != addr {
		t.Fatalf("unexpected display: %+v", out[0])
	}
	if c.ParkedLen() != 0 {
		t.Fatalf("parking lot not drained: %d", c.ParkedLen())
	}
	if e, ok := c.Get(origin); !ok || e.Data.PeerID != "peerP" {
		t.Fatalf("identity not cached: %+v ok=%v", e, ok)
	}
}

// S5 — peer mismatch: signed.peer_id differs from the transport sender.
// No emission and no cache insertion.
func TestOnIdentityPeerMismatchDropsNoEmit(t *testing.T) {
	c := New()
	origin := cas.CID("origin2")

	c.LookupOrPark("peerP", unsigned(origin, "hi"))

	var addr dag.Address
	out, mismatched := c.OnIdentity(origin, signed("peerQ", "bob", addr), true)
	if mismatched != 1 {
		t.Fatalf("mismatched = %d, want 1", mismatched)
	}
	if len(out) != 0 {
		t.Fatalf("expected no emission on peer mismatch, got %d", len(out))
	}
	if c.ParkedLen() != 0 {
		t.Fatal("mismatched parked entry must still be discarded, not re-parked")
	}
	if _, ok := c.Get(origin); ok {
		t.Fatal("peer-mismatched identity must not be cached")
	}
}

// No emission when verify() returned false, even with a matching peer id.
func TestOnIdentityUnverifiedDropsNoEmit(t *testing.T) {
	c := New()
	origin := cas.CID("origin3")
	c.LookupOrPark("peerP", unsigned(origin, "hi"))

	out, mismatched := c.OnIdentity(origin, signed("peerP", "carl", dag.Address{}), false)
	if mismatched != 0 {
		t.Fatalf("mismatched = %d, want 0 when unverified", mismatched)
	}
	if len(out) != 0 {
		t.Fatalf("expected no emission when unverified, got %d", len(out))
	}
	if _, ok := c.Get(origin); ok {
		t.Fatal("unverified identity must not be cached")
	}
}

// S6 — two UnsignedMessages sharing an origin arrive before the identity;
// both park, then both emit in arrival order once it resolves.
func TestOnIdentityEmitsParkedEntriesInArrivalOrder(t *testing.T) {
	c := New()
	origin := cas.CID("originShared")

	c.LookupOrPark("peerP", unsigned(origin, "first"))
	c.LookupOrPark("peerP", unsigned(origin, "second"))
	if c.ParkedLen() != 2 {
		t.Fatalf("ParkedLen() = %d, want 2", c.ParkedLen())
	}

	out, _ := c.OnIdentity(origin, signed("peerP", "dana", dag.Address{}), true)
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	if out[0].Message != "first" || out[1].Message != "second" {
		t.Fatalf("emission order wrong: %+v", out)
	}
	if c.ParkedLen() != 0 {
		t.Fatal("parking lot must be empty after resolution")
	}
}

// Cache hit: once verified, a later message from the same sender with the
// same origin emits immediately without re-parking.
func TestLookupOrParkCacheHit(t *testing.T) {
	c := New()
	origin := cas.CID("origin4")
	var addr dag.Address
	addr[1] = 0x11
	c.OnIdentity(origin, signed("peerP", "eve", addr), true)

	disp, ok := c.LookupOrPark("peerP", unsigned(origin, "later"))
	if !ok {
		t.Fatal("expected cache hit to emit immediately")
	}
	if disp.Name != "eve" || disp.Message != "later" || disp.Address != addr {
		t.Fatalf("unexpected display: %+v", disp)
	}
	if c.ParkedLen() != 0 {
		t.Fatal("cache hit must not park")
	}
}

// A cache entry for the right origin but the wrong sender must still park,
// not emit — identity is scoped to (origin, peer_id).
func TestLookupOrParkCacheHitWrongSenderParks(t *testing.T) {
	c := New()
	origin := cas.CID("origin5")
	c.OnIdentity(origin, signed("peerP", "frank", dag.Address{}), true)

	_, ok := c.LookupOrPark("peerQ", unsigned(origin, "x"))
	if ok {
		t.Fatal("different sender must not reuse another peer's cached identity")
	}
	if c.ParkedLen() != 1 {
		t.Fatalf("ParkedLen() = %d, want 1", c.ParkedLen())
	}
}

// DropOrigin discards parked entries for a CID whose CAS-get failed,
// without emitting, and leaves unrelated parked entries untouched.
func TestDropOriginRemovesOnlyMatchingEntries(t *testing.T) {
	c := New()
	a := cas.CID("a")
	b := cas.CID("b")
	c.LookupOrPark("p1", unsigned(a, "m1"))
	c.LookupOrPark("p2", unsigned(b, "m2"))
	c.LookupOrPark("p3", unsigned(a, "m3"))

	dropped := c.DropOrigin(a)
	if dropped != 2 {
		t.Fatalf("dropped = %d, want 2", dropped)
	}
	if c.ParkedLen() != 1 {
		t.Fatalf("ParkedLen() = %d, want 1", c.ParkedLen())
	}
}

// Duplicate identity arrival for the same CID is idempotent: re-insertion
// with identical data does not error and overwrites cleanly.
func TestOnIdentityDuplicateCIDIsIdempotent(t *testing.T) {
	c := New()
	origin := cas.CID("originDup")
	var addr dag.Address
	addr[2] = 0x22
	s := signed("peerP", "gail", addr)

	c.OnIdentity(origin, s, true)
	c.OnIdentity(origin, s, true)

	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	e, ok := c.Get(origin)
	if !ok || e.Data.Name != "gail" {
		t.Fatalf("unexpected cached entry: %+v", e)
	}
}
