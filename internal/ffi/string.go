package ffi

// #include <stdlib.h>
import "C"

import (
	"strings"
	"unsafe"
)

// OwnedString is a NUL-terminated C buffer allocated by this library.
// Ownership transfers to the caller when one is returned across the
// boundary; it must be released exactly once via FreeBoundaryString (or
// the exporting library's string destructor, which delegates here).
type OwnedString unsafe.Pointer

// StringToBoundary copies s into a C buffer the caller will own. It never
// fails for valid Go strings: interior NUL bytes, which a C string cannot
// represent, are substituted with U+FFFD.
func StringToBoundary(s string) OwnedString {
	if strings.IndexByte(s, 0) >= 0 {
		s = strings.ReplaceAll(s, "\x00", "�")
	}
	return OwnedString(unsafe.Pointer(C.CString(s)))
}

// StringFromBoundary reads a caller-supplied NUL-terminated buffer into a
// Go string. The read is non-owning and the pointer must not be retained
// past the current call. A nil pointer reads as "".
func StringFromBoundary(ptr unsafe.Pointer) string {
	if ptr == nil {
		return ""
	}
	return C.GoString((*C.char)(ptr))
}

// FreeBoundaryString releases a buffer previously returned by this
// library. Nil is a no-op. Freeing a foreign buffer, or the same buffer
// twice, is undefined caller misuse and is not detected.
func FreeBoundaryString(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	C.free(ptr)
}

// BoolToBoundary encodes a bool using the boundary convention documented
// in the package comment: 1 for true, 0 for false.
func BoolToBoundary(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
