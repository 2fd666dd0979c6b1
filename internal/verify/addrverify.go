package verify

import (
	"crypto/ed25519"
	"encoding/json"

	"golang.org/x/crypto/sha3"

	"github.com/alxayo/chronicle/internal/dag"
)

// AddrVerify is the default Verifier: it checks an ed25519 signature over
// the canonical JSON encoding of SignedMessage.Data against the embedded
// public key, then confirms the claimed Address is the last 20 bytes of
// the Keccak-256 (golang.org/x/crypto/sha3) digest of that public key — a
// standard recoverable-signature-shaped address derivation, not any
// specific chain's consensus rules.
type AddrVerify struct{}

// NewAddrVerify constructs the default verifier. It holds no state and is
// safe to share across goroutines.
func NewAddrVerify() *AddrVerify { return &AddrVerify{} }

// Verify implements Verifier.
func (AddrVerify) Verify(msg dag.SignedMessage) bool {
	if len(msg.PublicKey) != ed25519.PublicKeySize {
		return false
	}
	payload, err := json.Marshal(msg.Data)
	if err != nil {
		return false
	}
	if !ed25519.Verify(ed25519.PublicKey(msg.PublicKey), payload, msg.Signature) {
		return false
	}
	derived := DeriveAddress(msg.PublicKey)
	return derived == msg.Address
}

// DeriveAddress computes the 20-byte address for a public key as the last
// 20 bytes of its Keccak-256 digest.
func DeriveAddress(publicKey []byte) dag.Address {
	h := sha3.NewLegacyKeccak256()
	h.Write(publicKey)
	digest := h.Sum(nil)
	var addr dag.Address
	copy(addr[:], digest[len(digest)-20:])
	return addr
}
