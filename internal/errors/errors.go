// Package errors defines the typed error taxonomy used across the archival
// and chat-verification pipelines. Each type corresponds to a row of the
// error-kind table in the specification (§7): CAS put/get failures, frame
// decode failures, signature/peer mismatches, and policy denials.
package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"
)

// retryableMarker is implemented by error types the CAS client (or the
// host application) is expected to retry; nothing in this module retries
// them locally.
type retryableMarker interface {
	error
	isRetryable()
}

// CASPutError indicates a CAS put failed mid-flush. Per the Chronicler's
// failure policy the owning tier buffer is left uncleared and the flush is
// not retried locally.
type CASPutError struct {
	Op  string // e.g. "flush.second", "flush.minute", "finalize.day"
	Err error
}

func (e *CASPutError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cas put failed: %s", e.Op)
	}
	return fmt.Sprintf("cas put failed: %s: %v", e.Op, e.Err)
}
func (e *CASPutError) Unwrap() error { return e.Err }
func (e *CASPutError) isRetryable()  {}

// CASGetError indicates a CAS get failed while resolving a signed identity
// record. Parked entries awaiting that CID are dropped.
type CASGetError struct {
	Op  string
	Err error
}

func (e *CASGetError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cas get failed: %s", e.Op)
	}
	return fmt.Sprintf("cas get failed: %s: %v", e.Op, e.Err)
}
func (e *CASGetError) Unwrap() error { return e.Err }
func (e *CASGetError) isRetryable()  {}

// DecodeError indicates a transport frame failed to decode: malformed
// base64, invalid UTF-8, or invalid JSON. The frame is dropped.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("decode failed: %s", e.Op)
	}
	return fmt.Sprintf("decode failed: %s: %v", e.Op, e.Err)
}
func (e *DecodeError) Unwrap() error { return e.Err }

// SignatureError indicates verify() returned false for a signed identity
// record. The parked entry is discarded; the cache is left untouched.
type SignatureError struct {
	CID string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("signature invalid for origin %s", e.CID)
}

// PeerMismatchError indicates a signed record's peer_id does not match the
// transport-reported sender of a parked message.
type PeerMismatchError struct {
	Sender string
	PeerID string
}

func (e *PeerMismatchError) Error() string {
	return fmt.Sprintf("peer mismatch: sender=%s signed.peer_id=%s", e.Sender, e.PeerID)
}

// PolicyDeniedError indicates a frame was dropped by whitelist/blacklist
// policy before ever reaching the identity cache.
type PolicyDeniedError struct {
	Sender string
}

func (e *PolicyDeniedError) Error() string {
	return fmt.Sprintf("policy denied sender %s", e.Sender)
}

// TimeoutError indicates an operation (CAS call, frame read) exceeded a
// deadline or idle timeout.
type TimeoutError struct {
	Op       string
	Duration time.Duration
	Err      error
}

func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (after %s)", e.Op, e.Duration)
	if e.Err != nil {
		return base + ": " + e.Err.Error()
	}
	return base
}
func (e *TimeoutError) Unwrap() error { return e.Err }

// Constructors. Callers are expected to keep layering context with
// fmt.Errorf("...: %w", err) as errors climb call stacks.
func NewCASPutError(op string, cause error) error { return &CASPutError{Op: op, Err: cause} }
func NewCASGetError(op string, cause error) error { return &CASGetError{Op: op, Err: cause} }
func NewDecodeError(op string, cause error) error { return &DecodeError{Op: op, Err: cause} }
func NewSignatureError(cid string) error          { return &SignatureError{CID: cid} }
func NewPeerMismatchError(sender, peerID string) error {
	return &PeerMismatchError{Sender: sender, PeerID: peerID}
}
func NewPolicyDeniedError(sender string) error { return &PolicyDeniedError{Sender: sender} }
func NewTimeoutError(op string, d time.Duration, cause error) error {
	return &TimeoutError{Op: op, Duration: d, Err: cause}
}

// IsRetryable returns true if err is (or wraps) a CAS put/get error — the
// only kinds the spec allows an implementer to retry, and only outside
// this module.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var rm retryableMarker
	return stdErrors.As(err, &rm)
}

// IsCASPutError reports whether err is (or wraps) a CASPutError.
func IsCASPutError(err error) bool {
	var e *CASPutError
	return stdErrors.As(err, &e)
}

// IsCASGetError reports whether err is (or wraps) a CASGetError.
func IsCASGetError(err error) bool {
	var e *CASGetError
	return stdErrors.As(err, &e)
}

// IsPolicyDenied reports whether err is (or wraps) a PolicyDeniedError.
func IsPolicyDenied(err error) bool {
	var e *PolicyDeniedError
	return stdErrors.As(err, &e)
}

// IsTimeout returns true if err is (or wraps) a TimeoutError, a context
// deadline exceeded, or any error type exposing Timeout() bool that
// returns true.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	var te *TimeoutError
	if stdErrors.As(err, &te) {
		return true
	}
	if stdErrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var toErr interface{ Timeout() bool }
	if stdErrors.As(err, &toErr) && toErr.Timeout() {
		return true
	}
	return false
}
