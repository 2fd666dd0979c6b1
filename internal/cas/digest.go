package cas

import (
	"crypto/sha256"
	"encoding/base32"
)

// digestCID derives a content identifier from the SHA-256 digest of data,
// multibase-encoded as lower-case base32 with the 'b' prefix byte that
// identifies the base in the multibase convention the CAS's put response
// uses. Both memcas and azureblob key their blocks by this same digest so a
// given byte sequence always resolves to the same CID regardless of which
// backend produced it.
func digestCID(data []byte) CID {
	sum := sha256.Sum256(data)
	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum[:])
	return CID("b" + toLower(encoded))
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}
