// Command asvc is a development tool for poking at places and logins
// databases through the Go APIs, bypassing the C surface.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
