// Package verify defines the signature-verification primitive the Chat
// Verifier treats as an external collaborator (spec.md §1/§6): "verify(msg)
// → bool" confirming a SignedMessage's claimed address actually signed its
// display data. This package fixes the interface and ships one concrete,
// deliberately generic implementation — addrverify — rather than a
// specific chain's consensus rules, since the spec calls the real
// primitive out of scope.
package verify

import "github.com/alxayo/chronicle/internal/dag"

// Verifier confirms that a SignedMessage's Address actually signed its
// Data, returning false for any malformed or non-matching signature rather
// than an error — per spec.md §7, a failed verification discards the
// parked entry, it does not propagate as a fatal condition.
type Verifier interface {
	Verify(msg dag.SignedMessage) bool
}
