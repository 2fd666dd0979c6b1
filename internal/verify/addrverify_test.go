package verify

import (
	"crypto/ed25519"
	"encoding/json"
	"testing"

	"github.com/alxayo/chronicle/internal/dag"
)

func signedMessage(t *testing.T, data dag.SignedMessageData) (dag.SignedMessage, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	sig := ed25519.Sign(priv, payload)
	return dag.SignedMessage{
		Address:   DeriveAddress(pub),
		Data:      data,
		PublicKey: pub,
		Signature: sig,
	}, priv
}

func TestAddrVerifyAccepts(t *testing.T) {
	msg, _ := signedMessage(t, dag.SignedMessageData{PeerID: "12D3KooWSender", Name: "alice"})
	v := NewAddrVerify()
	if !v.Verify(msg) {
		t.Fatal("expected valid signed message to verify")
	}
}

func TestAddrVerifyRejectsTamperedData(t *testing.T) {
	msg, _ := signedMessage(t, dag.SignedMessageData{PeerID: "12D3KooWSender", Name: "alice"})
	msg.Data.Name = "mallory"
	v := NewAddrVerify()
	if v.Verify(msg) {
		t.Fatal("expected tampered data to fail verification")
	}
}

func TestAddrVerifyRejectsAddressMismatch(t *testing.T) {
	msg, _ := signedMessage(t, dag.SignedMessageData{PeerID: "12D3KooWSender", Name: "alice"})
	msg.Address[0] ^= 0xFF
	v := NewAddrVerify()
	if v.Verify(msg) {
		t.Fatal("expected address mismatch to fail verification")
	}
}

func TestAddrVerifyRejectsMalformedPublicKey(t *testing.T) {
	msg, _ := signedMessage(t, dag.SignedMessageData{PeerID: "12D3KooWSender", Name: "alice"})
	msg.PublicKey = []byte("too short")
	v := NewAddrVerify()
	if v.Verify(msg) {
		t.Fatal("expected malformed public key to fail verification")
	}
}

func TestDeriveAddressDeterministic(t *testing.T) {
	pub, _, _ := ed25519.GenerateKey(nil)
	a := DeriveAddress(pub)
	b := DeriveAddress(pub)
	if a != b {
		t.Fatal("expected deterministic address derivation")
	}
}
