// Package remotes reads the remote-repository metadata an installation's
// sync engine maintains: the refs each configured remote advertises, their
// checksums and sizes, and which commit is currently deployed locally.
// This client only reads the store; synchronization happens elsewhere.
package remotes

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS remotes (
    name TEXT PRIMARY KEY,
    url TEXT
);

CREATE TABLE IF NOT EXISTS remote_refs (
    remote TEXT NOT NULL,
    ref TEXT NOT NULL,
    checksum TEXT NOT NULL,
    installed_size INTEGER,
    download_size INTEGER,
    PRIMARY KEY (remote, ref),
    FOREIGN KEY (remote) REFERENCES remotes(name) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS deployments (
    ref TEXT PRIMARY KEY,
    active_commit TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_remote_refs_remote ON remote_refs(remote);
`

// RemoteRef is one ref advertised by a remote.
type RemoteRef struct {
	Ref           string
	Checksum      string
	InstalledSize uint64
	DownloadSize  uint64
}

// Store provides read access to the remote metadata database.
type Store struct {
	db *sql.DB
}

// MetadataPath returns the metadata database location inside an
// installation directory.
func MetadataPath(installationPath string) string {
	return filepath.Join(installationPath, "repo", "metadata.db")
}

// Open opens the metadata database at path. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote metadata: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateSchema creates all tables and indexes. The sync engine normally
// does this; tests use it to build fixtures.
func (s *Store) CreateSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create remote metadata schema: %w", err)
	}
	return nil
}

// HasRemote reports whether the named remote is configured.
func (s *Store) HasRemote(name string) (bool, error) {
	var n string
	err := s.db.QueryRow(`SELECT name FROM remotes WHERE name = ?`, name).Scan(&n)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up remote %s: %w", name, err)
	}
	return true, nil
}

// ListRemoteRefs returns every ref the named remote advertises. An
// unconfigured remote is an error, an empty remote is not.
func (s *Store) ListRemoteRefs(remote string) ([]RemoteRef, error) {
	ok, err := s.HasRemote(remote)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("remote %s not found", remote)
	}

	rows, err := s.db.Query(`
		SELECT ref, checksum, installed_size, download_size
		FROM remote_refs
		WHERE remote = ?
	`, remote)
	if err != nil {
		return nil, fmt.Errorf("failed to list refs for remote %s: %w", remote, err)
	}
	defer rows.Close()

	var refs []RemoteRef
	for rows.Next() {
		var r RemoteRef
		var installed, download sql.NullInt64
		if err := rows.Scan(&r.Ref, &r.Checksum, &installed, &download); err != nil {
			return nil, fmt.Errorf("failed to scan remote ref row: %w", err)
		}
		if installed.Valid {
			r.InstalledSize = uint64(installed.Int64)
		}
		if download.Valid {
			r.DownloadSize = uint64(download.Int64)
		}
		refs = append(refs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating remote refs: %w", err)
	}

	return refs, nil
}

// ActiveCommit returns the locally deployed commit for ref, or ok=false
// when the ref is not deployed at all.
func (s *Store) ActiveCommit(ref string) (string, bool, error) {
	var commit string
	err := s.db.QueryRow(`SELECT active_commit FROM deployments WHERE ref = ?`, ref).Scan(&commit)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get deployment for %s: %w", ref, err)
	}
	return commit, true, nil
}

// SetDeployment records the active commit for a ref. Exposed for tests and
// for the sync engine.
func (s *Store) SetDeployment(ref, commit string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO deployments (ref, active_commit) VALUES (?, ?)`, ref, commit)
	if err != nil {
		return fmt.Errorf("failed to record deployment for %s: %w", ref, err)
	}
	return nil
}

// AddRemote registers a remote. Exposed for tests and for the sync engine.
func (s *Store) AddRemote(name, url string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO remotes (name, url) VALUES (?, ?)`, name, url)
	if err != nil {
		return fmt.Errorf("failed to add remote %s: %w", name, err)
	}
	return nil
}

// AddRemoteRef records one advertised ref. Exposed for tests and for the
// sync engine.
func (s *Store) AddRemoteRef(remote string, r RemoteRef) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO remote_refs (remote, ref, checksum, installed_size, download_size)
		VALUES (?, ?, ?, ?, ?)
	`, remote, r.Ref, r.Checksum, int64(r.InstalledSize), int64(r.DownloadSize))
	if err != nil {
		return fmt.Errorf("failed to add remote ref %s: %w", r.Ref, err)
	}
	return nil
}
