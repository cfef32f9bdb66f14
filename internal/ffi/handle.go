package ffi

import (
	"sync"
	"unsafe"
)

// Handle is an opaque sentinel standing in for a heap-resident Go object
// on the C side of the boundary. Go pointers must not be held by foreign
// code, so the boundary sees an integer that only this registry can
// resolve. Zero is never a valid handle.
//
// The bridge performs no reference counting: a handle created by one
// entry point is released exactly once by the matching destructor, and
// any use after that is undefined caller misuse.
type Handle uintptr

var (
	handleMu   sync.Mutex
	nextHandle Handle = 1
	handles           = map[Handle]any{}
)

// NewHandle registers v and returns its sentinel.
func NewHandle(v any) Handle {
	handleMu.Lock()
	h := nextHandle
	nextHandle++
	handles[h] = v
	handleMu.Unlock()
	return h
}

// Value resolves the handle. ok is false for zero, freed, or foreign
// handles.
func (h Handle) Value() (any, bool) {
	handleMu.Lock()
	v, ok := handles[h]
	handleMu.Unlock()
	return v, ok
}

// Free removes the handle from the registry. Freeing zero or an unknown
// handle is a no-op.
func (h Handle) Free() {
	handleMu.Lock()
	delete(handles, h)
	handleMu.Unlock()
}

// Pointer renders the sentinel as a void* for C signatures.
func (h Handle) Pointer() unsafe.Pointer {
	return unsafe.Pointer(uintptr(h))
}

// HandleFromPointer recovers the sentinel from a void* argument.
func HandleFromPointer(p unsafe.Pointer) Handle {
	return Handle(uintptr(p))
}

// HandleValue resolves h to a value of type T. ok is false when the
// handle is unknown or holds a different type.
func HandleValue[T any](h Handle) (T, bool) {
	v, ok := h.Value()
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
