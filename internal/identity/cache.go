// Package identity implements the Chat Verifier's identity cache and
// parking lot (spec.md §4.4): a write-once table of verified
// SignedMessage identities keyed by origin CID, and a parking lot of
// unsigned chat messages awaiting that identity to arrive. Both structures
// are mutated exclusively by the Verifier's single-threaded callback
// path (spec.md §5) — nothing here takes a lock.
package identity

import (
	"github.com/alxayo/chronicle/internal/cas"
	"github.com/alxayo/chronicle/internal/dag"
)

// Entry is a verified identity: the account address and display metadata
// a SignedMessage carried, kept addressed by the origin CID that produced
// it.
type Entry struct {
	Address dag.Address
	Data    dag.SignedMessageData
}

// Display is an emission-ready chat line: a verified identity combined
// with the message text it signed for.
type Display struct {
	Address dag.Address
	Name    string
	Message string
}

// parked is one message waiting on its origin's identity to resolve.
type parked struct {
	sender string
	msg    dag.UnsignedMessage
}

// Cache holds verified identities and the messages parked awaiting them.
// Not safe for concurrent use — the Verifier owns one Cache per session
// and touches it only from its own callback thread.
type Cache struct {
	verified map[cas.CID]Entry
	lot      []parked
}

// New constructs an empty Cache.
func New() *Cache {
	return &Cache{verified: make(map[cas.CID]Entry)}
}

// LookupOrPark implements spec.md §4.4's lookup_or_park: if msg.Origin is
// already verified and its cached peer_id equals sender, it returns a
// ready-to-emit Display. Otherwise it parks (sender, msg) and reports that
// a CAS-get of msg.Origin must be issued by the caller.
func (c *Cache) LookupOrPark(sender string, msg dag.UnsignedMessage) (Display, bool) {
	origin := msg.Origin.Target
	if entry, ok := c.verified[origin]; ok && entry.Data.PeerID == sender {
		return Display{Address: entry.Address, Name: entry.Data.Name, Message: msg.Message}, true
	}
	c.lot = append(c.lot, parked{sender: sender, msg: msg})
	return Display{}, false
}

// OnIdentity implements spec.md §4.4's on_identity: given the CID a
// CAS-get resolved and the SignedMessage it returned (already
// verify()'d by the caller, per internal/verify's Verifier interface),
// it emits a Display for every parked entry targeting that CID whose
// sender matches the signed peer_id, in parked-insertion order, and
// separately reports how many were discarded for a peer mismatch
// (verified, but the parked sender disagreed with signed.peer_id) so
// callers can distinguish that error kind from a plain unverified
// signature. Mismatched or unverified parked entries are discarded,
// never re-parked. If verified, the identity is inserted into the cache
// under cid.
func (c *Cache) OnIdentity(cid cas.CID, signed dag.SignedMessage, verified bool) (emitted []Display, mismatched int) {
	kept := c.lot[:0]
	for _, p := range c.lot {
		if p.msg.Origin.Target != cid {
			kept = append(kept, p)
			continue
		}
		switch {
		case verified && p.sender == signed.Data.PeerID:
			emitted = append(emitted, Display{
				Address: signed.Address,
				Name:    signed.Data.Name,
				Message: p.msg.Message,
			})
		case verified:
			mismatched++
		}
		// Matched entries (verified or not) are dropped here, not kept.
	}
	c.lot = kept

	if verified {
		c.verified[cid] = Entry{Address: signed.Address, Data: signed.Data}
	}
	return emitted, mismatched
}

// DropOrigin discards every parked entry targeting cid without emitting
// anything. Used when a CAS-get for cid fails (spec.md §7:
// cas-get-failed — parked entries for that CID are dropped).
func (c *Cache) DropOrigin(cid cas.CID) int {
	kept := c.lot[:0]
	dropped := 0
	for _, p := range c.lot {
		if p.msg.Origin.Target == cid {
			dropped++
			continue
		}
		kept = append(kept, p)
	}
	c.lot = kept
	return dropped
}

// Len returns the number of verified identities held.
func (c *Cache) Len() int { return len(c.verified) }

// ParkedLen returns the number of messages currently parked.
func (c *Cache) ParkedLen() int { return len(c.lot) }

// Get returns the verified entry for cid, if any. Exposed for tests and
// metrics, not used by the core flows.
func (c *Cache) Get(cid cas.CID) (Entry, bool) {
	e, ok := c.verified[cid]
	return e, ok
}
