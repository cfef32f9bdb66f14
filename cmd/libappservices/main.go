// Command libappservices builds the combined shared library exposing the
// places and logins C surfaces:
//
//	go build -buildmode=c-shared -o libappservices.so ./cmd/libappservices
//
// The generated libappservices.h carries the exported prototypes; the
// extern_error_t type they reference lives in include/appservices.h.
package main

import (
	_ "github.com/rep-nop/application-services/logins/ffi"
	_ "github.com/rep-nop/application-services/places/ffi"
)

func main() {}
