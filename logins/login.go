// Package logins implements the local password store consumed by the
// logins C surface. Records use the sync interchange field names so they
// round-trip through the boundary's JSON encoding unchanged.
package logins

import (
	"fmt"

	"github.com/rep-nop/application-services/guid"
)

// Login is one stored credential. All timestamps are milliseconds since
// the epoch.
type Login struct {
	ID            guid.GUID `json:"id"`
	Hostname      string    `json:"hostname"`
	FormSubmitURL *string   `json:"formSubmitURL,omitempty"`
	HTTPRealm     *string   `json:"httpRealm,omitempty"`
	Username      string    `json:"username"`
	Password      string    `json:"password"`
	UsernameField string    `json:"usernameField"`
	PasswordField string    `json:"passwordField"`

	TimesUsed           int64 `json:"timesUsed"`
	TimeCreated         int64 `json:"timeCreated"`
	TimeLastUsed        int64 `json:"timeLastUsed"`
	TimePasswordChanged int64 `json:"timePasswordChanged"`
}

// validate enforces the record invariants shared with the other sync
// clients: a hostname and password are required, and exactly one of
// httpRealm / formSubmitURL must be present.
func (l *Login) validate() error {
	if l.Hostname == "" {
		return fmt.Errorf("%w: empty hostname", ErrInvalidLogin)
	}
	if l.Password == "" {
		return fmt.Errorf("%w: empty password", ErrInvalidLogin)
	}
	if l.HTTPRealm != nil && l.FormSubmitURL != nil {
		return fmt.Errorf("%w: both httpRealm and formSubmitURL present", ErrInvalidLogin)
	}
	if l.HTTPRealm == nil && l.FormSubmitURL == nil {
		return fmt.Errorf("%w: neither httpRealm nor formSubmitURL present", ErrInvalidLogin)
	}
	if err := validateID(l.ID); err != nil {
		return err
	}
	return nil
}

func validateID(id guid.GUID) error {
	for i := 0; i < len(id); i++ {
		if id[i] < ' ' || id[i] > '~' {
			return fmt.Errorf("%w: %q", ErrNonASCIIID, string(id))
		}
	}
	return nil
}
