// Package ffi is the C surface of the logins component. Unlike the
// places surface it uses the extern_error_t slot protocol uniformly,
// including for store creation.
//
// Stores are addressed by opaque uint64 handles; 0 is never valid. Every
// returned string is owned by the caller and released with
// logins_destroy_string. Booleans cross the boundary as uint8 0/1.
package ffi

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#include <stdlib.h>
#include "appservices.h"
*/
import "C"

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/rep-nop/application-services/guid"
	support "github.com/rep-nop/application-services/internal/ffi"
	"github.com/rep-nop/application-services/logins"
)

// Domain error codes for the logins surface. Stable; foreign bindings
// switch on them.
const (
	codeUnexpected    = 1
	codeInvalidLogin  = 2
	codeNoSuchRecord  = 3
	codeIDCollision   = 4
	codeInvalidRecord = 5
	codeInvalidHandle = 6
)

var (
	errInvalidHandle = errors.New("logins: invalid store handle")
	errInvalidRecord = errors.New("logins: malformed login json")
)

func loginsCode(err error) (support.ErrorCode, string) {
	switch {
	case errors.Is(err, logins.ErrInvalidLogin), errors.Is(err, logins.ErrNonASCIIID):
		return codeInvalidLogin, err.Error()
	case errors.Is(err, logins.ErrNoSuchRecord):
		return codeNoSuchRecord, err.Error()
	case errors.Is(err, logins.ErrIDCollision):
		return codeIDCollision, err.Error()
	case errors.Is(err, errInvalidRecord):
		return codeInvalidRecord, err.Error()
	case errors.Is(err, errInvalidHandle):
		return codeInvalidHandle, err.Error()
	default:
		return codeUnexpected, err.Error()
	}
}

func slot(err *C.extern_error_t) *support.ExternError {
	return (*support.ExternError)(unsafe.Pointer(err))
}

func store(h C.uint64_t) (*logins.Store, error) {
	s, ok := support.HandleValue[*logins.Store](support.Handle(h))
	if !ok {
		return nil, errInvalidHandle
	}
	return s, nil
}

func decodeLogin(raw *C.char) (logins.Login, error) {
	var l logins.Login
	if err := json.Unmarshal([]byte(support.StringFromBoundary(unsafe.Pointer(raw))), &l); err != nil {
		return logins.Login{}, fmt.Errorf("%w: %v", errInvalidRecord, err)
	}
	return l, nil
}

// logins_store_new opens a logins database and returns a store handle, 0
// on failure. The handle must be released with logins_store_destroy.
//
//export logins_store_new
func logins_store_new(dbPath *C.char, err *C.extern_error_t) C.uint64_t {
	support.InitLogging()
	h := support.Call(slot(err), support.Opaque[logins.Store]{}, loginsCode,
		func() (*logins.Store, error) {
			return logins.Open(support.StringFromBoundary(unsafe.Pointer(dbPath)))
		})
	return C.uint64_t(h)
}

// logins_get_all returns every stored login as a JSON array. The result
// must be freed with logins_destroy_string.
//
//export logins_get_all
func logins_get_all(handle C.uint64_t, err *C.extern_error_t) *C.char {
	support.InitLogging()
	buf := support.Call(slot(err), support.JSON[[]logins.Login]{}, loginsCode,
		func() ([]logins.Login, error) {
			s, cerr := store(handle)
			if cerr != nil {
				return nil, cerr
			}
			return s.List(context.Background())
		})
	return (*C.char)(unsafe.Pointer(buf))
}

// logins_get_by_id returns one login as JSON, or NULL when no record has
// that id. Absence is not an error: the slot reports success and the
// caller distinguishes "missing" by the NULL result.
//
//export logins_get_by_id
func logins_get_by_id(handle C.uint64_t, id *C.char, err *C.extern_error_t) *C.char {
	support.InitLogging()
	contract := support.Optional[logins.Login, support.OwnedString]{Inner: support.JSON[logins.Login]{}}
	buf := support.Call(slot(err), contract, loginsCode,
		func() (*logins.Login, error) {
			s, cerr := store(handle)
			if cerr != nil {
				return nil, cerr
			}
			return s.Get(context.Background(), guid.GUID(support.StringFromBoundary(unsafe.Pointer(id))))
		})
	return (*C.char)(unsafe.Pointer(buf))
}

// logins_add stores a new login from its JSON form and returns the
// record id (generated when absent). The result must be freed with
// logins_destroy_string.
//
//export logins_add
func logins_add(handle C.uint64_t, loginJSON *C.char, err *C.extern_error_t) *C.char {
	support.InitLogging()
	buf := support.Call(slot(err), support.Text{}, loginsCode,
		func() (string, error) {
			s, cerr := store(handle)
			if cerr != nil {
				return "", cerr
			}
			l, cerr := decodeLogin(loginJSON)
			if cerr != nil {
				return "", cerr
			}
			added, cerr := s.Add(context.Background(), l)
			if cerr != nil {
				return "", cerr
			}
			return added.ID.String(), nil
		})
	return (*C.char)(unsafe.Pointer(buf))
}

// logins_update replaces the stored record with the same id and returns
// the updated record as JSON. The result must be freed with
// logins_destroy_string.
//
//export logins_update
func logins_update(handle C.uint64_t, loginJSON *C.char, err *C.extern_error_t) *C.char {
	support.InitLogging()
	buf := support.Call(slot(err), support.JSON[logins.Login]{}, loginsCode,
		func() (logins.Login, error) {
			s, cerr := store(handle)
			if cerr != nil {
				return logins.Login{}, cerr
			}
			l, cerr := decodeLogin(loginJSON)
			if cerr != nil {
				return logins.Login{}, cerr
			}
			return s.Update(context.Background(), l)
		})
	return (*C.char)(unsafe.Pointer(buf))
}

// logins_touch records a use of the login with the given id.
//
//export logins_touch
func logins_touch(handle C.uint64_t, id *C.char, err *C.extern_error_t) {
	support.InitLogging()
	support.CallNoResult(slot(err), loginsCode, func() error {
		s, cerr := store(handle)
		if cerr != nil {
			return cerr
		}
		return s.Touch(context.Background(), guid.GUID(support.StringFromBoundary(unsafe.Pointer(id))))
	})
}

// logins_delete removes the login with the given id. Returns 1 when a
// record existed, 0 otherwise.
//
//export logins_delete
func logins_delete(handle C.uint64_t, id *C.char, err *C.extern_error_t) C.uint8_t {
	support.InitLogging()
	existed := support.Call(slot(err), support.Primitive[uint8]{}, loginsCode,
		func() (uint8, error) {
			s, cerr := store(handle)
			if cerr != nil {
				return 0, cerr
			}
			ok, cerr := s.Delete(context.Background(), guid.GUID(support.StringFromBoundary(unsafe.Pointer(id))))
			return support.BoolToBoundary(ok), cerr
		})
	return C.uint8_t(existed)
}

// logins_wipe removes every stored login.
//
//export logins_wipe
func logins_wipe(handle C.uint64_t, err *C.extern_error_t) {
	support.InitLogging()
	support.CallNoResult(slot(err), loginsCode, func() error {
		s, cerr := store(handle)
		if cerr != nil {
			return cerr
		}
		return s.Wipe(context.Background())
	})
}

// logins_reset drops the store's sync bookkeeping while keeping records.
//
//export logins_reset
func logins_reset(handle C.uint64_t, err *C.extern_error_t) {
	support.InitLogging()
	support.CallNoResult(slot(err), loginsCode, func() error {
		s, cerr := store(handle)
		if cerr != nil {
			return cerr
		}
		return s.Reset(context.Background())
	})
}

// logins_store_destroy closes and frees a store handle. 0 is a no-op.
//
//export logins_store_destroy
func logins_store_destroy(handle C.uint64_t) {
	support.InitLogging()
	if handle == 0 {
		return
	}
	h := support.Handle(handle)
	if s, ok := support.HandleValue[*logins.Store](h); ok {
		if err := s.Close(); err != nil {
			support.Logger().Warn("logins_store_destroy: close failed", zap.Error(err))
		}
	}
	h.Free()
}

// logins_destroy_string releases a string returned by this library. NULL
// is a no-op.
//
//export logins_destroy_string
func logins_destroy_string(s *C.char) {
	support.FreeBoundaryString(unsafe.Pointer(s))
}
