package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

// Schema for the journal database. The transaction engine creates and
// appends to it; it is exported here so tests (and the engine) share one
// definition.
const Schema = `
CREATE TABLE IF NOT EXISTS journal_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    message_id TEXT NOT NULL,
    timestamp_us INTEGER NOT NULL,
    operation TEXT,
    installation TEXT,
    ref TEXT,
    remote TEXT,
    commit_id TEXT,
    result TEXT,
    uid TEXT,
    tool TEXT,
    client_version TEXT
);

CREATE INDEX IF NOT EXISTS idx_journal_message_time ON journal_entries(message_id, timestamp_us);
`

// EnsureSchema creates the journal tables if they do not exist.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create journal schema: %w", err)
	}
	return nil
}

// DefaultPath returns the journal database location, honoring
// XDG_DATA_HOME and falling back to ~/.local/share/flatpak/journal.db.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "flatpak", "journal.db"), nil
}

// SQLiteBackend reads the transaction journal from a SQLite database.
type SQLiteBackend struct {
	path string
}

// NewSQLiteBackend creates a backend for the journal database at path.
func NewSQLiteBackend(path string) *SQLiteBackend {
	return &SQLiteBackend{path: path}
}

// Open opens a cursor over transaction entries, newest first. A missing
// journal database is reported as ErrUnavailable: without it there is no
// history to query at all, which is different from an empty journal.
func (b *SQLiteBackend) Open() (Cursor, error) {
	if _, err := os.Stat(b.path); os.IsNotExist(err) {
		return nil, fmt.Errorf("open journal %s: %w", b.path, ErrUnavailable)
	}

	db, err := sql.Open("sqlite", b.path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", b.path, err)
	}

	// Single reader; the journal's writer lives in another process.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	rows, err := db.Query(`
		SELECT timestamp_us, operation, installation, ref, remote, commit_id, result, uid, tool, client_version
		FROM journal_entries
		WHERE message_id = ?
		ORDER BY timestamp_us DESC
	`, TransactionMessageID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("query journal: %w", err)
	}

	return &sqliteCursor{db: db, rows: rows}, nil
}

type sqliteCursor struct {
	db   *sql.DB
	rows *sql.Rows
	err  error

	timestamp sql.NullInt64
	fields    map[string]sql.NullString
}

func (c *sqliteCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}

	var operation, installation, refStr, remote, commit, result, uid, tool, version sql.NullString
	err := c.rows.Scan(
		&c.timestamp,
		&operation,
		&installation,
		&refStr,
		&remote,
		&commit,
		&result,
		&uid,
		&tool,
		&version,
	)
	if err != nil {
		c.err = fmt.Errorf("failed to scan journal entry: %w", err)
		return false
	}

	c.fields = map[string]sql.NullString{
		FieldOperation:     operation,
		FieldInstallation:  installation,
		FieldRef:           refStr,
		FieldRemote:        remote,
		FieldCommit:        commit,
		FieldResult:        result,
		FieldUID:           uid,
		FieldTool:          tool,
		FieldClientVersion: version,
	}

	return true
}

func (c *sqliteCursor) Field(name string) (string, bool) {
	if name == FieldTimestamp {
		if !c.timestamp.Valid {
			return "", false
		}
		return strconv.FormatInt(c.timestamp.Int64, 10), true
	}

	v, ok := c.fields[name]
	if !ok || !v.Valid {
		return "", false
	}
	return v.String, true
}

func (c *sqliteCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	if err := c.rows.Err(); err != nil {
		return fmt.Errorf("error iterating journal entries: %w", err)
	}
	return nil
}

func (c *sqliteCursor) Close() error {
	c.rows.Close()
	return c.db.Close()
}
