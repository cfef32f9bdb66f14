package ffi

// ErrorCode is the numeric half of an ExternError. Zero is success,
// CodePanic is reserved for contained internal faults, and positive codes
// belong to the component that exported the call.
type ErrorCode int32

const (
	// CodeSuccess is the neutral, no-error state.
	CodeSuccess ErrorCode = 0

	// CodePanic is reserved for panics caught at the boundary.
	CodePanic ErrorCode = -1

	// CodeUnknown is the fallback for domain errors that the component's
	// mapper does not recognize (or when no mapper was supplied).
	CodeUnknown ErrorCode = 1
)

// ExternError mirrors extern_error_t in include/appservices.h. The foreign
// caller allocates the slot and passes a pointer to every bridged call;
// the bridge treats it as write-only and leaves it fully populated on
// every return path. A non-nil Message is an owned C buffer that the
// caller must release through the owning library's string destructor.
//
// The field order and types must stay layout-compatible with the C
// struct; export packages cast their *C.extern_error_t to *ExternError.
type ExternError struct {
	Code    ErrorCode
	Message OwnedString
}

// Success returns the neutral slot state.
func Success() ExternError {
	return ExternError{Code: CodeSuccess}
}

// FromPanic builds the slot state for a contained internal fault. The
// boundary message is necessarily terse; the full panic value and stack
// are logged separately by the call wrappers.
func FromPanic(description string) ExternError {
	return ExternError{
		Code:    CodePanic,
		Message: StringToBoundary("internal panic: " + description),
	}
}

// ErrorMapper converts a component's domain error into a stable
// (code, message) pair. Each exported component supplies one to the call
// wrappers; codes must be positive.
type ErrorMapper func(err error) (ErrorCode, string)

func fromDomain(mapErr ErrorMapper, err error) ExternError {
	code, msg := CodeUnknown, err.Error()
	if mapErr != nil {
		code, msg = mapErr(err)
	}
	return ExternError{Code: code, Message: StringToBoundary(msg)}
}
