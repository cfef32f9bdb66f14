package ffi

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
	"unsafe"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func notFoundMapper(err error) (ErrorCode, string) {
	return 3, "not found"
}

func TestCallSuccess(t *testing.T) {
	var slot ExternError
	got := Call(&slot, Primitive[uint32]{}, nil, func() (uint32, error) {
		return 5, nil
	})
	if slot.Code != CodeSuccess {
		t.Fatalf("slot code = %d, want 0", slot.Code)
	}
	if slot.Message != nil {
		t.Errorf("success slot carries a message")
	}
	if got != 5 {
		t.Errorf("boundary value = %d, want 5", got)
	}
}

func TestCallDomainError(t *testing.T) {
	var slot ExternError
	got := Call(&slot, Primitive[uint32]{}, notFoundMapper, func() (uint32, error) {
		return 0, errors.New("row missing")
	})
	if slot.Code != 3 {
		t.Fatalf("slot code = %d, want 3", slot.Code)
	}
	msg := StringFromBoundary(unsafe.Pointer(slot.Message))
	FreeBoundaryString(unsafe.Pointer(slot.Message))
	if msg != "not found" {
		t.Errorf("slot message = %q, want %q", msg, "not found")
	}
	if got != 0 {
		t.Errorf("boundary value = %d, want the default 0", got)
	}
}

func TestCallDefaultMapper(t *testing.T) {
	var slot ExternError
	Call(&slot, Primitive[int64]{}, nil, func() (int64, error) {
		return 0, errors.New("mystery failure")
	})
	if slot.Code != CodeUnknown {
		t.Fatalf("slot code = %d, want %d", slot.Code, CodeUnknown)
	}
	msg := StringFromBoundary(unsafe.Pointer(slot.Message))
	FreeBoundaryString(unsafe.Pointer(slot.Message))
	if msg != "mystery failure" {
		t.Errorf("slot message = %q", msg)
	}
}

func TestCallPanicRecovers(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	var slot ExternError
	got := Call(&slot, Primitive[uint32]{}, nil, func() (uint32, error) {
		panic("divide by zero")
	})
	if slot.Code != CodePanic {
		t.Fatalf("slot code = %d, want %d", slot.Code, CodePanic)
	}
	msg := StringFromBoundary(unsafe.Pointer(slot.Message))
	FreeBoundaryString(unsafe.Pointer(slot.Message))
	if !strings.Contains(msg, "divide by zero") {
		t.Errorf("slot message = %q, want it to mention the panic", msg)
	}
	if got != 0 {
		t.Errorf("boundary value = %d, want the default 0", got)
	}

	// Full detail must land in the log, since the slot message is terse.
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["panic"] != "divide by zero" {
		t.Errorf("logged panic = %v", fields["panic"])
	}
	if stack, _ := fields["stack"].(string); stack == "" {
		t.Errorf("panic log has no stack")
	}

	// The process must remain usable afterwards.
	var slot2 ExternError
	again := Call(&slot2, Primitive[uint32]{}, nil, func() (uint32, error) {
		return 7, nil
	})
	if slot2.Code != CodeSuccess || again != 7 {
		t.Errorf("bridge unusable after contained panic: code=%d value=%d", slot2.Code, again)
	}
}

func TestSlotNeverStale(t *testing.T) {
	var slot ExternError
	Call(&slot, Primitive[uint32]{}, notFoundMapper, func() (uint32, error) {
		return 0, errors.New("nope")
	})
	FreeBoundaryString(unsafe.Pointer(slot.Message))
	if slot.Code != 3 {
		t.Fatalf("setup failed, code = %d", slot.Code)
	}

	// Reusing the same slot for a successful call must erase the failure.
	Call(&slot, Primitive[uint32]{}, notFoundMapper, func() (uint32, error) {
		return 1, nil
	})
	if slot.Code != CodeSuccess || slot.Message != nil {
		t.Errorf("slot carries stale state: code=%d message=%p", slot.Code, slot.Message)
	}
}

func TestCallJSONSequence(t *testing.T) {
	var slot ExternError
	buf := Call(&slot, JSON[[]int32]{}, nil, func() ([]int32, error) {
		return []int32{1, 2, 3}, nil
	})
	if slot.Code != CodeSuccess {
		t.Fatalf("slot code = %d", slot.Code)
	}
	got := StringFromBoundary(unsafe.Pointer(buf))
	FreeBoundaryString(unsafe.Pointer(buf))
	if got != "[1,2,3]" {
		t.Errorf("encoded sequence = %q, want %q", got, "[1,2,3]")
	}
}

func TestCallJSONDefaultIsNil(t *testing.T) {
	var slot ExternError
	buf := Call(&slot, JSON[[]int32]{}, notFoundMapper, func() ([]int32, error) {
		return nil, errors.New("nope")
	})
	FreeBoundaryString(unsafe.Pointer(slot.Message))
	if buf != nil {
		t.Errorf("failed call returned a non-nil buffer")
	}
}

func TestCallText(t *testing.T) {
	var slot ExternError
	buf := Call(&slot, Text{}, nil, func() (string, error) {
		return "hello across the boundary", nil
	})
	got := StringFromBoundary(unsafe.Pointer(buf))
	FreeBoundaryString(unsafe.Pointer(buf))
	if got != "hello across the boundary" {
		t.Errorf("round trip = %q", got)
	}
}

func TestCallOptional(t *testing.T) {
	contract := Optional[string, OwnedString]{Inner: Text{}}

	var slot ExternError
	buf := Call(&slot, contract, nil, func() (*string, error) {
		return nil, nil
	})
	if slot.Code != CodeSuccess {
		t.Fatalf("absent value is not an error, code = %d", slot.Code)
	}
	if buf != nil {
		t.Errorf("absent value lowered to a non-default buffer")
	}

	s := "present"
	buf = Call(&slot, contract, nil, func() (*string, error) {
		return &s, nil
	})
	got := StringFromBoundary(unsafe.Pointer(buf))
	FreeBoundaryString(unsafe.Pointer(buf))
	if got != "present" {
		t.Errorf("present value = %q", got)
	}
}

func TestCallNoResult(t *testing.T) {
	var slot ExternError
	CallNoResult(&slot, nil, func() error { return nil })
	if slot.Code != CodeSuccess {
		t.Errorf("void success, code = %d", slot.Code)
	}

	CallNoResult(&slot, notFoundMapper, func() error { return errors.New("x") })
	if slot.Code != 3 {
		t.Errorf("void failure, code = %d", slot.Code)
	}
	FreeBoundaryString(unsafe.Pointer(slot.Message))
}

func TestCallOpaque(t *testing.T) {
	type conn struct{ name string }

	var slot ExternError
	h := Call(&slot, Opaque[conn]{}, nil, func() (*conn, error) {
		return &conn{name: "db"}, nil
	})
	if h == 0 {
		t.Fatalf("success lowered to the zero handle")
	}
	got, ok := HandleValue[*conn](h)
	if !ok || got.name != "db" {
		t.Errorf("handle does not resolve to the stored object")
	}
	h.Free()
	if _, ok := h.Value(); ok {
		t.Errorf("freed handle still resolves")
	}
}

// Run out of process: a contained panic in abort mode must terminate
// rather than report through the slot.
func TestCallAbortOnPanicTerminates(t *testing.T) {
	if os.Getenv("FFI_ABORT_CRASHER") == "1" {
		var slot ExternError
		CallAbortOnPanic(&slot, Primitive[uint32]{}, nil, func() (uint32, error) {
			panic("divide by zero")
		})
		// Unreachable; failing loudly here makes the parent's assertion fire.
		os.Exit(0)
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestCallAbortOnPanicTerminates")
	cmd.Env = append(os.Environ(), "FFI_ABORT_CRASHER=1")
	err := cmd.Run()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("crasher exited cleanly, want abort (err = %v)", err)
	}
	if code := exitErr.ExitCode(); code != 134 {
		t.Errorf("crasher exit code = %d, want 134", code)
	}
}
