package ffi

import (
	"encoding/json"
	"fmt"
)

// Outbound is the per-type lowering contract for values returned across
// the boundary. Default is what C receives when the call failed (so the
// foreign side never has cleanup to do on the failure path), and Lower
// converts a real result. Implementations that allocate perform exactly
// one allocation and transfer its ownership to the caller.
//
// One implementation exists per value category; call sites pick the
// contract explicitly rather than relying on any ambient dispatch:
//
//   - Primitive[T] for the fixed-width numerics.
//   - Text for strings, lowered to an owned C buffer.
//   - JSON[T] for sequences and composites, lowered to one owned buffer
//     holding the interchange encoding.
//   - Opaque[T] for internal-only types, lowered to a registry Handle.
//   - Optional[T, V] wrapping any of the above; nil lowers to the inner
//     default, which makes absence indistinguishable from failure at the
//     value level. Callers disambiguate via the error slot, never via the
//     returned value alone.
type Outbound[T, V any] interface {
	Default() V
	Lower(v T) V
}

// Scalar is the set of types that cross the boundary as themselves. bool
// is intentionally absent (see the package comment), as are int and uint,
// whose width depends on the platform.
type Scalar interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Primitive lowers a fixed-width numeric to itself; the default is the
// type's zero value.
type Primitive[T Scalar] struct{}

func (Primitive[T]) Default() T {
	var zero T
	return zero
}

func (Primitive[T]) Lower(v T) T { return v }

// Text lowers a Go string to an owned C buffer; the default is the nil
// buffer.
type Text struct{}

func (Text) Default() OwnedString { return nil }

func (Text) Lower(s string) OwnedString { return StringToBoundary(s) }

// JSON lowers any JSON-marshalable value to a single owned C buffer
// holding its interchange encoding; the default is the nil buffer.
//
// A value handed to this contract is promised to be representable. If
// encoding fails anyway that is a programming-contract violation, not a
// runtime condition, so Lower panics; the call wrappers contain the panic
// like any other internal fault.
type JSON[T any] struct{}

func (JSON[T]) Default() OwnedString { return nil }

func (JSON[T]) Lower(v T) OwnedString {
	buf, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("ffi: value promised to be JSON-representable failed to encode: %v", err))
	}
	return StringToBoundary(string(buf))
}

// Opaque lowers a pointer to an internal-only type into a registry
// Handle; the default is the zero handle. The object stays resident until
// the matching destructor frees the handle.
type Opaque[T any] struct{}

func (Opaque[T]) Default() Handle { return 0 }

func (Opaque[T]) Lower(v *T) Handle {
	if v == nil {
		return 0
	}
	return NewHandle(v)
}

// Optional adapts a contract over T to one over *T, lowering nil to the
// inner default.
type Optional[T, V any] struct {
	Inner Outbound[T, V]
}

func (o Optional[T, V]) Default() V { return o.Inner.Default() }

func (o Optional[T, V]) Lower(v *T) V {
	if v == nil {
		return o.Inner.Default()
	}
	return o.Inner.Lower(*v)
}

// unit backs CallNoResult.
type unit struct{}

func (unit) Default() struct{} { return struct{}{} }

func (unit) Lower(struct{}) struct{} { return struct{}{} }
