package ffi

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Call runs one fallible operation on behalf of a C entry point. It is
// the single orchestration point tying the slot protocol, the lowering
// contract, and panic containment together; exported functions should be
// thin shells around it.
//
// The slot is preset to success before op runs and is fully populated on
// every return path. On success the slot stays success and the lowered
// value is returned. On a domain error the slot is filled through mapErr
// and the contract's default is returned. On a panic the slot gets the
// reserved fault code with a terse description, the full panic value and
// stack go to the boundary logger, and the contract's default is
// returned; the process stays usable for subsequent calls.
//
// op must be safe to interrupt at an arbitrary point, since a contained
// panic abandons whatever it was doing. Operations that cannot promise
// that should go through CallAbortOnPanic instead.
func Call[T, V any](out *ExternError, contract Outbound[T, V], mapErr ErrorMapper, op func() (T, error)) V {
	return callImpl(out, contract, mapErr, op, false)
}

// CallAbortOnPanic is Call for operations that may not be safely
// interruptible. A contained panic terminates the process instead of
// being reported through the slot, trading recoverability for the
// guarantee that execution never continues in a possibly-corrupted state.
func CallAbortOnPanic[T, V any](out *ExternError, contract Outbound[T, V], mapErr ErrorMapper, op func() (T, error)) V {
	return callImpl(out, contract, mapErr, op, true)
}

// CallNoResult is Call for operations that return nothing.
func CallNoResult(out *ExternError, mapErr ErrorMapper, op func() error) {
	callImpl(out, unit{}, mapErr, func() (struct{}, error) {
		return struct{}{}, op()
	}, false)
}

func callImpl[T, V any](out *ExternError, contract Outbound[T, V], mapErr ErrorMapper, op func() (T, error), abortOnPanic bool) (result V) {
	*out = Success()
	slot := Success()
	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			log := Logger()
			log.Error("caught panic in bridged call",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			if abortOnPanic {
				_ = log.Sync()
				// 134 = 128+SIGABRT, the conventional abort status.
				os.Exit(134)
			}
			slot = FromPanic(describePanic(r))
			result = contract.Default()
		}()
		v, err := op()
		if err != nil {
			slot = fromDomain(mapErr, err)
			result = contract.Default()
			return
		}
		result = contract.Lower(v)
	}()
	*out = slot
	return result
}

func describePanic(r any) string {
	switch v := r.(type) {
	case error:
		return v.Error()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
