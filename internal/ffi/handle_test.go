package ffi

import "testing"

type fakeStore struct{ path string }

func TestHandleLifecycle(t *testing.T) {
	h := NewHandle(&fakeStore{path: "a.db"})
	if h == 0 {
		t.Fatalf("got the zero handle")
	}

	v, ok := HandleValue[*fakeStore](h)
	if !ok {
		t.Fatalf("handle does not resolve")
	}
	if v.path != "a.db" {
		t.Errorf("resolved wrong object: %+v", v)
	}

	h.Free()
	if _, ok := HandleValue[*fakeStore](h); ok {
		t.Errorf("freed handle still resolves")
	}

	// Double free is tolerated at the registry level.
	h.Free()
}

func TestHandleZeroInvalid(t *testing.T) {
	if _, ok := Handle(0).Value(); ok {
		t.Errorf("zero handle resolves")
	}
}

func TestHandleTypeMismatch(t *testing.T) {
	h := NewHandle(&fakeStore{})
	defer h.Free()
	if _, ok := HandleValue[*int](h); ok {
		t.Errorf("handle resolved under the wrong type")
	}
}

func TestHandlePointerRoundTrip(t *testing.T) {
	h := NewHandle(&fakeStore{path: "b.db"})
	defer h.Free()

	back := HandleFromPointer(h.Pointer())
	if back != h {
		t.Fatalf("pointer round trip: %v != %v", back, h)
	}
	if v, ok := HandleValue[*fakeStore](back); !ok || v.path != "b.db" {
		t.Errorf("round-tripped handle does not resolve")
	}
}

func TestHandlesAreDistinct(t *testing.T) {
	a := NewHandle(&fakeStore{path: "a"})
	b := NewHandle(&fakeStore{path: "b"})
	defer a.Free()
	defer b.Free()
	if a == b {
		t.Fatalf("two live objects share a handle")
	}
}
