package logins

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mattn/go-sqlite3"

	"github.com/rep-nop/application-services/guid"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Sync bookkeeping states for a row. Reset drops everything back to
// synced without touching the credentials themselves.
const (
	syncStatusSynced  = 0
	syncStatusChanged = 1
)

// Store is one logins database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the logins database at path and brings
// its schema up to date.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errorf("Open", "%s: %v", path, err)
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, errorf("Open", "migrating %s: %v", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func runMigrations(db *sql.DB) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// Add stores a new login and returns it with server-managed fields
// filled in. An empty id gets a fresh GUID; a supplied id must not
// already exist.
func (s *Store) Add(ctx context.Context, l Login) (Login, error) {
	if l.ID == "" {
		l.ID = guid.New()
	}
	if err := l.validate(); err != nil {
		return Login{}, &Error{Op: "Add", Err: err}
	}

	now := nowMillis()
	if l.TimeCreated == 0 {
		l.TimeCreated = now
	}
	l.TimePasswordChanged = now

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO logins(
	 id, hostname, form_submit_url, http_realm, username, password,
	 username_field, password_field, times_used, time_created,
	 time_last_used, time_password_changed, sync_status)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Hostname, l.FormSubmitURL, l.HTTPRealm, l.Username, l.Password,
		l.UsernameField, l.PasswordField, l.TimesUsed, l.TimeCreated,
		l.TimeLastUsed, l.TimePasswordChanged, syncStatusChanged)
	if err != nil {
		if isUniqueViolation(err) {
			return Login{}, &Error{Op: "Add", Err: fmt.Errorf("%w: %s", ErrIDCollision, l.ID)}
		}
		return Login{}, errorf("Add", "%v", err)
	}
	return l, nil
}

// Get returns the login with the given id, or nil when it does not
// exist. Absence is not an error.
func (s *Store) Get(ctx context.Context, id guid.GUID) (*Login, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	l, err := scanLogin(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errorf("Get", "%v", err)
	}
	return &l, nil
}

// List returns every stored login.
func (s *Store) List(ctx context.Context) ([]Login, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY hostname, username`)
	if err != nil {
		return nil, errorf("List", "%v", err)
	}
	defer rows.Close()

	out := []Login{}
	for rows.Next() {
		l, err := scanLogin(rows)
		if err != nil {
			return nil, errorf("List", "%v", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errorf("List", "%v", err)
	}
	return out, nil
}

// Update replaces the stored record with the same id. A password change
// bumps timePasswordChanged.
func (s *Store) Update(ctx context.Context, l Login) (Login, error) {
	if err := l.validate(); err != nil {
		return Login{}, &Error{Op: "Update", Err: err}
	}

	existing, err := s.Get(ctx, l.ID)
	if err != nil {
		return Login{}, err
	}
	if existing == nil {
		return Login{}, &Error{Op: "Update", Err: fmt.Errorf("%w: %s", ErrNoSuchRecord, l.ID)}
	}

	l.TimeCreated = existing.TimeCreated
	l.TimePasswordChanged = existing.TimePasswordChanged
	if l.Password != existing.Password {
		l.TimePasswordChanged = nowMillis()
	}

	_, err = s.db.ExecContext(ctx, `
	UPDATE logins SET
	 hostname = ?, form_submit_url = ?, http_realm = ?, username = ?,
	 password = ?, username_field = ?, password_field = ?, times_used = ?,
	 time_last_used = ?, time_password_changed = ?, sync_status = ?
	WHERE id = ?`,
		l.Hostname, l.FormSubmitURL, l.HTTPRealm, l.Username,
		l.Password, l.UsernameField, l.PasswordField, l.TimesUsed,
		l.TimeLastUsed, l.TimePasswordChanged, syncStatusChanged, l.ID)
	if err != nil {
		return Login{}, errorf("Update", "%v", err)
	}
	return l, nil
}

// Touch records a use of the login: timesUsed is incremented and
// timeLastUsed set to now.
func (s *Store) Touch(ctx context.Context, id guid.GUID) error {
	res, err := s.db.ExecContext(ctx, `
	UPDATE logins
	SET times_used = times_used + 1, time_last_used = ?, sync_status = ?
	WHERE id = ?`,
		nowMillis(), syncStatusChanged, id)
	if err != nil {
		return errorf("Touch", "%v", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errorf("Touch", "%v", err)
	}
	if n == 0 {
		return &Error{Op: "Touch", Err: fmt.Errorf("%w: %s", ErrNoSuchRecord, id)}
	}
	return nil
}

// Delete removes the login with the given id, reporting whether a record
// existed.
func (s *Store) Delete(ctx context.Context, id guid.GUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM logins WHERE id = ?`, id)
	if err != nil {
		return false, errorf("Delete", "%v", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errorf("Delete", "%v", err)
	}
	return n > 0, nil
}

// Wipe removes every stored login.
func (s *Store) Wipe(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM logins`); err != nil {
		return errorf("Wipe", "%v", err)
	}
	return nil
}

// Reset drops the sync bookkeeping while keeping all records, as if the
// store had never synced.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE logins SET sync_status = ?`, syncStatusSynced); err != nil {
		return errorf("Reset", "%v", err)
	}
	return nil
}

const selectColumns = `
	SELECT id, hostname, form_submit_url, http_realm, username, password,
	       username_field, password_field, times_used, time_created,
	       time_last_used, time_password_changed
	FROM logins`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLogin(row rowScanner) (Login, error) {
	var l Login
	err := row.Scan(
		&l.ID, &l.Hostname, &l.FormSubmitURL, &l.HTTPRealm, &l.Username,
		&l.Password, &l.UsernameField, &l.PasswordField, &l.TimesUsed,
		&l.TimeCreated, &l.TimeLastUsed, &l.TimePasswordChanged)
	return l, err
}

func isUniqueViolation(err error) bool {
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code == sqlite3.ErrConstraint
	}
	return false
}
