package logins

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rep-nop/application-services/guid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "logins.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func sampleLogin(id guid.GUID) Login {
	return Login{
		ID:            id,
		Hostname:      "http://www.example.com",
		FormSubmitURL: strPtr("http://login.example.com"),
		Username:      "cool_username",
		Password:      "hunter2",
		UsernameField: "uname",
		PasswordField: "pword",
	}
}

func TestAddAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	added, err := s.Add(ctx, sampleLogin("aaaaaaaaaaaa"))
	require.NoError(t, err)
	assert.Equal(t, guid.GUID("aaaaaaaaaaaa"), added.ID)
	assert.NotZero(t, added.TimeCreated)
	assert.NotZero(t, added.TimePasswordChanged)

	got, err := s.Get(ctx, "aaaaaaaaaaaa")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, added, *got)
}

func TestAddGeneratesID(t *testing.T) {
	s := openTestStore(t)

	l := sampleLogin("")
	added, err := s.Add(context.Background(), l)
	require.NoError(t, err)
	assert.True(t, added.ID.IsValid(), "generated id %q is not a canonical guid", added.ID)
}

func TestGetMissingIsNotAnError(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Get(context.Background(), "missingmissi")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAddIDCollision(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, sampleLogin("aaaaaaaaaaaa"))
	require.NoError(t, err)

	_, err = s.Add(ctx, sampleLogin("aaaaaaaaaaaa"))
	assert.ErrorIs(t, err, ErrIDCollision)
}

func TestValidation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	l := sampleLogin("")
	l.Hostname = ""
	_, err := s.Add(ctx, l)
	assert.ErrorIs(t, err, ErrInvalidLogin)

	l = sampleLogin("")
	l.Password = ""
	_, err = s.Add(ctx, l)
	assert.ErrorIs(t, err, ErrInvalidLogin)

	// Exactly one of httpRealm / formSubmitURL.
	l = sampleLogin("")
	l.HTTPRealm = strPtr("Login")
	_, err = s.Add(ctx, l)
	assert.ErrorIs(t, err, ErrInvalidLogin)

	l = sampleLogin("")
	l.FormSubmitURL = nil
	_, err = s.Add(ctx, l)
	assert.ErrorIs(t, err, ErrInvalidLogin)

	l = sampleLogin("bad\x01id\x02xx")
	_, err = s.Add(ctx, l)
	assert.ErrorIs(t, err, ErrNonASCIIID)
}

func TestTouch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, sampleLogin("aaaaaaaaaaaa"))
	require.NoError(t, err)

	require.NoError(t, s.Touch(ctx, "aaaaaaaaaaaa"))
	require.NoError(t, s.Touch(ctx, "aaaaaaaaaaaa"))
	require.NoError(t, s.Touch(ctx, "aaaaaaaaaaaa"))

	got, err := s.Get(ctx, "aaaaaaaaaaaa")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.EqualValues(t, 3, got.TimesUsed)
	assert.NotZero(t, got.TimeLastUsed)

	assert.ErrorIs(t, s.Touch(ctx, "missingmissi"), ErrNoSuchRecord)
}

func TestUpdate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	added, err := s.Add(ctx, sampleLogin("aaaaaaaaaaaa"))
	require.NoError(t, err)

	// A non-password change keeps timePasswordChanged.
	changed := added
	changed.UsernameField = "users_name"
	updated, err := s.Update(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, "users_name", updated.UsernameField)
	assert.Equal(t, added.TimePasswordChanged, updated.TimePasswordChanged)

	// A password change bumps it.
	changed = updated
	changed.Password = "testtesttest"
	updated, err = s.Update(ctx, changed)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, updated.TimePasswordChanged, added.TimePasswordChanged)

	got, err := s.Get(ctx, "aaaaaaaaaaaa")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "testtesttest", got.Password)
	assert.Equal(t, "users_name", got.UsernameField)

	missing := sampleLogin("missingmissi")
	_, err = s.Update(ctx, missing)
	assert.ErrorIs(t, err, ErrNoSuchRecord)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, sampleLogin("aaaaaaaaaaaa"))
	require.NoError(t, err)

	existed, err := s.Delete(ctx, "aaaaaaaaaaaa")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = s.Delete(ctx, "aaaaaaaaaaaa")
	require.NoError(t, err)
	assert.False(t, existed)

	got, err := s.Get(ctx, "aaaaaaaaaaaa")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListAndWipe(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, sampleLogin("aaaaaaaaaaaa"))
	require.NoError(t, err)

	realm := sampleLogin("bbbbbbbbbbbb")
	realm.FormSubmitURL = nil
	realm.HTTPRealm = strPtr("Login")
	realm.Password = "sekret"
	_, err = s.Add(ctx, realm)
	require.NoError(t, err)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.Wipe(ctx))
	all, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestResetKeepsRecords(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, sampleLogin("aaaaaaaaaaaa"))
	require.NoError(t, err)

	require.NoError(t, s.Reset(ctx))

	got, err := s.Get(ctx, "aaaaaaaaaaaa")
	require.NoError(t, err)
	assert.NotNil(t, got, "reset must not drop records")
}
