package dag

import (
	"encoding/json"
	"testing"

	"github.com/alxayo/chronicle/internal/cas"
)

func TestAddressHexRoundTrip(t *testing.T) {
	var addr Address
	for i := range addr {
		addr[i] = byte(i)
	}
	data, err := json.Marshal(addr)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `"0x000102030405060708090a0b0c0d0e0f10111213"`
	if string(data) != want {
		t.Fatalf("got %s want %s", data, want)
	}

	var got Address
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != addr {
		t.Fatalf("round-trip mismatch: got %s want %s", got, addr)
	}
}

func TestAddressUnmarshalRejectsWrongLength(t *testing.T) {
	var got Address
	if err := json.Unmarshal([]byte(`"0x1234"`), &got); err == nil {
		t.Fatal("expected error for short address")
	}
}

func TestSignedMessageRoundTrip(t *testing.T) {
	var addr Address
	addr[0] = 0xAB
	sm := SignedMessage{
		Address: addr,
		Data:    SignedMessageData{PeerID: "12D3KooWSender", Name: "alice"},
		Signature: []byte{0x01, 0x02, 0x03},
	}
	data, err := json.Marshal(sm)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got SignedMessage
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Address != sm.Address || got.Data != sm.Data {
		t.Fatalf("round-trip mismatch: got %+v want %+v", got, sm)
	}
}

func TestUnsignedMessageRoundTrip(t *testing.T) {
	um := UnsignedMessage{
		Message:   "hello chat",
		Origin:    cas.NewLink("borigin"),
		Timestamp: 1234567,
	}
	data, err := json.Marshal(um)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got UnsignedMessage
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != um {
		t.Fatalf("round-trip mismatch: got %+v want %+v", got, um)
	}
}
