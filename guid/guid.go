// Package guid implements the compact string identifier used by the sync
// components. Canonical sync GUIDs are 12 characters drawn from the
// base64url alphabet; arbitrary printable-ASCII identifiers of up to 64
// characters also occur in the wild and the type carries them unchanged.
package guid

import (
	"crypto/rand"
	"database/sql/driver"
	"encoding/base64"
	"fmt"
)

// GUID is an immutable sync identifier. Being a string type it marshals
// to JSON and compares with == for free; the value-add over a bare string
// is intent at API boundaries plus validity checks and database/sql
// integration.
type GUID string

// canonicalLen is the length of a server-issued sync GUID: 9 random
// bytes, base64url-encoded without padding.
const canonicalLen = 12

var base64urlByte [256]bool

func init() {
	for _, c := range []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_") {
		base64urlByte[c] = true
	}
}

// New returns a fresh canonical GUID.
func New() GUID {
	var raw [9]byte
	if _, err := rand.Read(raw[:]); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(fmt.Sprintf("guid: reading random bytes: %v", err))
	}
	return GUID(base64.RawURLEncoding.EncodeToString(raw[:]))
}

// FromBytes interprets b as a GUID without validation.
func FromBytes(b []byte) GUID {
	return GUID(b)
}

// IsValid reports whether g is a canonical sync GUID: exactly 12
// characters, all from the base64url alphabet. Equivalent to the places
// component's notion of a valid GUID.
func (g GUID) IsValid() bool {
	if len(g) != canonicalLen {
		return false
	}
	for i := 0; i < len(g); i++ {
		if !base64urlByte[g[i]] {
			return false
		}
	}
	return true
}

func (g GUID) String() string { return string(g) }

// Value implements driver.Valuer so GUIDs bind directly as sqlite text.
func (g GUID) Value() (driver.Value, error) {
	return string(g), nil
}

// Scan implements sql.Scanner, accepting the text and blob forms sqlite
// may hand back.
func (g *GUID) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*g = GUID(v)
		return nil
	case []byte:
		*g = GUID(v)
		return nil
	default:
		return fmt.Errorf("guid: cannot scan %T", src)
	}
}
