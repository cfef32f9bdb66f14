// Package ffi is the C surface of the places component. Build it into
// the shared library via cmd/libappservices with -buildmode=c-shared.
//
// Every entry point taking an extern_error_t* follows the slot protocol:
// the slot is fully populated on return and a non-NULL message must be
// released with places_destroy_string. places_connection_new predates the
// slot protocol and instead returns NULL on failure with detail only in
// the library log; that inconsistency is kept deliberately until the
// consumers migrate.
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

	support "github.com/rep-nop/application-services/internal/ffi"
	"github.com/rep-nop/application-services/places"
)

// Domain error codes for the places surface. Stable; foreign bindings
// switch on them.
const (
	codeUnexpected         = 1
	codeInvalidURL         = 2
	codeInvalidObservation = 3
	codeInvalidHandle      = 4
)

var errInvalidHandle = errors.New("places: invalid connection handle")

// errInvalidObservation wraps interchange decode failures so they surface
// through the slot as a domain error rather than a fault.
var errInvalidObservation = errors.New("places: malformed observation json")

func placesCode(err error) (support.ErrorCode, string) {
	switch {
	case errors.Is(err, places.ErrInvalidURL):
		return codeInvalidURL, err.Error()
	case errors.Is(err, errInvalidObservation):
		return codeInvalidObservation, err.Error()
	case errors.Is(err, errInvalidHandle):
		return codeInvalidHandle, err.Error()
	default:
		return codeUnexpected, err.Error()
	}
}

func slot(err *C.extern_error_t) *support.ExternError {
	return (*support.ExternError)(unsafe.Pointer(err))
}

func connection(ptr unsafe.Pointer) (*places.DB, error) {
	db, ok := support.HandleValue[*places.DB](support.HandleFromPointer(ptr))
	if !ok {
		return nil, errInvalidHandle
	}
	return db, nil
}

// places_connection_new opens a places database. The returned connection
// must be freed with places_connection_destroy. Legacy convention:
// returns NULL and logs on failure.
//
//export places_connection_new
func places_connection_new(dbPath, encryptionKey *C.char) unsafe.Pointer {
	support.InitLogging()
	path := support.StringFromBoundary(unsafe.Pointer(dbPath))
	key := support.StringFromBoundary(unsafe.Pointer(encryptionKey))

	db, err := places.Open(path, key)
	if err != nil {
		support.Logger().Error("places_connection_new failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil
	}
	return support.NewHandle(db).Pointer()
}

// places_note_observation records a visit. The observation is a
// VisitObservation in its interchange JSON form.
//
//export places_note_observation
func places_note_observation(conn unsafe.Pointer, jsonObservation *C.char, err *C.extern_error_t) {
	support.InitLogging()
	support.CallNoResult(slot(err), placesCode, func() error {
		db, cerr := connection(conn)
		if cerr != nil {
			return cerr
		}
		var obs places.VisitObservation
		raw := support.StringFromBoundary(unsafe.Pointer(jsonObservation))
		if jerr := json.Unmarshal([]byte(raw), &obs); jerr != nil {
			return fmt.Errorf("%w: %v", errInvalidObservation, jerr)
		}
		return db.ApplyObservation(context.Background(), obs)
	})
}

// places_query_autocomplete runs a frecency-ranked search, returning a
// JSON array of SearchResult. The returned string must be freed with
// places_destroy_string.
//
//export places_query_autocomplete
func places_query_autocomplete(conn unsafe.Pointer, search *C.char, limit C.uint32_t, err *C.extern_error_t) *C.char {
	support.InitLogging()
	buf := support.Call(slot(err), support.JSON[[]places.SearchResult]{}, placesCode,
		func() ([]places.SearchResult, error) {
			db, cerr := connection(conn)
			if cerr != nil {
				return nil, cerr
			}
			return db.SearchFrecent(context.Background(), places.SearchParams{
				SearchString: support.StringFromBoundary(unsafe.Pointer(search)),
				Limit:        uint32(limit),
			})
		})
	return (*C.char)(unsafe.Pointer(buf))
}

// places_destroy_string releases a string returned by this library. NULL
// is a no-op.
//
//export places_destroy_string
func places_destroy_string(s *C.char) {
	support.FreeBoundaryString(unsafe.Pointer(s))
}

// places_connection_destroy closes and frees a connection returned by
// places_connection_new. NULL is a no-op.
//
//export places_connection_destroy
func places_connection_destroy(conn unsafe.Pointer) {
	support.InitLogging()
	if conn == nil {
		return
	}
	h := support.HandleFromPointer(conn)
	if db, ok := support.HandleValue[*places.DB](h); ok {
		if err := db.Close(); err != nil {
			support.Logger().Warn("places_connection_destroy: close failed", zap.Error(err))
		}
	}
	h.Free()
}
