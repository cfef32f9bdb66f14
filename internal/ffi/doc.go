// Package ffi is the support layer shared by every exported component
// library. It owns the three pieces every C entry point needs: the
// per-type lowering contracts that turn Go values into C-safe
// representations, the extern_error_t slot protocol for reporting failure
// out of band, and the call wrappers that run an operation inside a
// panic-containment region so nothing ever unwinds across the C boundary.
//
// This package should ONLY be imported by the per-component ffi packages
// (places/ffi, logins/ffi) and their cmd wrappers. All cgo complexity that
// is not specific to a single component is isolated here.
//
// Booleans are deliberately never passed across the boundary directly;
// they cross as a uint8 that is 0 or 1 (see BoolToBoundary). Some host
// runtimes disagree with C about the width and trap representation of
// bool, and a byte is unambiguous everywhere.
package ffi
