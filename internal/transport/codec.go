package transport

import (
	"encoding/base64"

	"github.com/alxayo/chronicle/internal/errors"
)

// base58BTCAlphabet is the Bitcoin/IPFS base58 alphabet (no 0, O, I, l).
const base58BTCAlphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// DecodePayload base64-decodes (padded) a Frame's Data field into raw
// bytes, per spec.md §6 ("Encoding is base64 with padding").
func DecodePayload(data string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, errors.NewDecodeError("transport.payload", err)
	}
	return raw, nil
}

// DecodeSender base64-decodes a Frame's From field and re-encodes the
// resulting bytes as base58btc, per spec.md §6: "from is re-encoded as
// base58btc before comparison with application-level peer ids." The
// result is the canonical peer id string compared against
// streamer_peer_id and the values cached in the identity table.
func DecodeSender(from string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(from)
	if err != nil {
		return "", errors.NewDecodeError("transport.sender", err)
	}
	return base58Encode(raw), nil
}

// EncodePayload base64-encodes bytes for outbound publication.
func EncodePayload(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// EncodeSender base58-decodes a peer id string back to raw bytes and
// base64-encodes them for outbound publication, the inverse of
// DecodeSender.
func EncodeSender(peerID string) (string, error) {
	raw, err := base58Decode(peerID)
	if err != nil {
		return "", errors.NewDecodeError("transport.sender", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// base58Encode implements the base58btc encoding used by multibase's
// "z" prefix family. No ecosystem library in the retrieved corpus carries
// a base58 dependency (spec.md treats the transport's wire encoding as
// part of the frame codec, not a cryptographic primitive), so this is a
// direct, minimal implementation of the standard algorithm rather than an
// external dependency — see DESIGN.md.
func base58Encode(input []byte) string {
	if len(input) == 0 {
		return ""
	}
	zeros := 0
	for zeros < len(input) && input[zeros] == 0 {
		zeros++
	}

	// big-endian base-256 -> base-58 digit conversion.
	digits := make([]byte, 0, len(input)*138/100+1)
	for _, b := range input {
		carry := int(b)
		for i := 0; i < len(digits); i++ {
			carry += int(digits[i]) << 8
			digits[i] = byte(carry % 58)
			carry /= 58
		}
		for carry > 0 {
			digits = append(digits, byte(carry%58))
			carry /= 58
		}
	}

	out := make([]byte, zeros, zeros+len(digits))
	for i := 0; i < zeros; i++ {
		out[i] = base58BTCAlphabet[0]
	}
	for i := len(digits) - 1; i >= 0; i-- {
		out = append(out, base58BTCAlphabet[digits[i]])
	}
	return string(out)
}

// base58Decode is the inverse of base58Encode.
func base58Decode(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	zeros := 0
	for zeros < len(s) && s[zeros] == base58BTCAlphabet[0] {
		zeros++
	}

	bytesOut := make([]byte, 0, len(s))
	for _, r := range s {
		idx := indexInAlphabet(byte(r))
		if idx < 0 {
			return nil, errors.NewDecodeError("transport.base58", errInvalidBase58Char)
		}
		carry := idx
		for i := 0; i < len(bytesOut); i++ {
			carry += int(bytesOut[i]) * 58
			bytesOut[i] = byte(carry & 0xff)
			carry >>= 8
		}
		for carry > 0 {
			bytesOut = append(bytesOut, byte(carry&0xff))
			carry >>= 8
		}
	}

	out := make([]byte, zeros, zeros+len(bytesOut))
	for i := len(bytesOut) - 1; i >= 0; i-- {
		out = append(out, bytesOut[i])
	}
	return out, nil
}

func indexInAlphabet(c byte) int {
	for i := 0; i < len(base58BTCAlphabet); i++ {
		if base58BTCAlphabet[i] == c {
			return i
		}
	}
	return -1
}

var errInvalidBase58Char = errInvalidBase58CharType("invalid base58 character")

type errInvalidBase58CharType string

func (e errInvalidBase58CharType) Error() string { return string(e) }
