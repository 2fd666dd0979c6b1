package dag

import (
	"encoding/hex"
	"errors"

	"github.com/alxayo/chronicle/internal/cas"
)

var errAddressLength = errors.New("dag: address must decode to 20 bytes")

// Address is a 20-byte account address recovered from a signature, the
// same shape the original source's `blockies::Ethereum` icon generator and
// signed-message verification both key off of. It marshals as a
// 0x-prefixed lower-case hex string rather than a raw JSON byte array.
type Address [20]byte

// String returns the 0x-prefixed hex form.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// MarshalJSON encodes the address as a 0x-prefixed hex string.
func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON decodes a 0x-prefixed hex string into the address.
func (a *Address) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	s = trimHexPrefix(s)
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(decoded) != 20 {
		return errAddressLength
	}
	copy(a[:], decoded)
	return nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// UnsignedMessage is the wire form published on the transport (spec.md
// §3): a chat message carrying a link to the SignedMessage that proves who
// sent it, plus the timestamp used to join the message to the SecondNode
// covering that moment in the broadcast.
type UnsignedMessage struct {
	Message   string   `json:"message"`
	Origin    cas.Link `json:"origin"`
	Timestamp int64    `json:"timestamp"`
}

// SignedMessageData carries the display metadata a verified identity
// contributes to an emitted chat line.
type SignedMessageData struct {
	PeerID string `json:"peer_id"`
	Name   string `json:"name"`
}

// SignedMessage is the identity record stored in the CAS and referenced by
// an UnsignedMessage's Origin link. Address is the 20-byte account address
// the Verifier's signature check recovers and compares against.
type SignedMessage struct {
	Address Address           `json:"address"`
	Data    SignedMessageData `json:"data"`

	// PublicKey and Signature carry whatever material a concrete
	// internal/verify implementation needs to confirm Address signed Data.
	// The spec treats the verification primitive itself as external; these
	// fields only exist so a default implementation has something to
	// verify against.
	PublicKey []byte `json:"public_key"`
	Signature []byte `json:"signature"`
}
