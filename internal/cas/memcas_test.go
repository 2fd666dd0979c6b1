package cas

import (
	"context"
	"testing"
)

func TestMemCASPutGetRoundTrip(t *testing.T) {
	m := NewMemCAS()
	ctx := context.Background()

	data := []byte(`{"hello":"world"}`)
	id, err := m.Put(ctx, data)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if id.Empty() {
		t.Fatal("expected non-empty CID")
	}

	got, err := m.Get(ctx, id, "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("round-trip mismatch: got %q want %q", got, data)
	}
}

func TestMemCASPutIdempotent(t *testing.T) {
	m := NewMemCAS()
	ctx := context.Background()

	data := []byte("identical content")
	id1, _ := m.Put(ctx, data)
	id2, _ := m.Put(ctx, data)
	if id1 != id2 {
		t.Fatalf("expected idempotent CID, got %s and %s", id1, id2)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 stored block, got %d", m.Len())
	}
}

func TestMemCASGetMissing(t *testing.T) {
	m := NewMemCAS()
	ctx := context.Background()

	if _, err := m.Get(ctx, CID("bnonexistent"), ""); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemCASGetWithPathSuffixUnsupported(t *testing.T) {
	m := NewMemCAS()
	ctx := context.Background()

	id, _ := m.Put(ctx, []byte("data"))
	if _, err := m.Get(ctx, id, "/some/path"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for path suffix, got %v", err)
	}
}

func TestMemCASPin(t *testing.T) {
	m := NewMemCAS()
	ctx := context.Background()

	id, _ := m.Put(ctx, []byte("pin me"))
	if m.Pinned(id) {
		t.Fatal("expected not pinned before Pin call")
	}
	if err := m.Pin(ctx, id, true); err != nil {
		t.Fatalf("Pin: %v", err)
	}
	if !m.Pinned(id) {
		t.Fatal("expected pinned after Pin call")
	}
}

func TestMemCASPinMissing(t *testing.T) {
	m := NewMemCAS()
	ctx := context.Background()

	if err := m.Pin(ctx, CID("bmissing"), false); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemCASResolve(t *testing.T) {
	m := NewMemCAS()
	ctx := context.Background()

	id, _ := m.Put(ctx, []byte("named content"))
	m.SetName("latest", id)

	resolved, err := m.Resolve(ctx, "latest")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved != id {
		t.Fatalf("resolve mismatch: got %s want %s", resolved, id)
	}

	if _, err := m.Resolve(ctx, "missing-name"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemCASGetReturnsCopy(t *testing.T) {
	m := NewMemCAS()
	ctx := context.Background()

	data := []byte("mutate me")
	id, _ := m.Put(ctx, data)

	got, _ := m.Get(ctx, id, "")
	got[0] = 'X'

	got2, _ := m.Get(ctx, id, "")
	if got2[0] == 'X' {
		t.Fatal("Get must return a defensive copy, stored block was mutated")
	}
}
