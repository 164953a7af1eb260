// Package journal provides read access to the structured transaction
// journal that the transaction engine appends to. The client only ever
// reads it; entries are produced elsewhere.
package journal

import "errors"

// TransactionMessageID tags journal entries written for flatpak
// transactions. Opening a cursor matches on it so unrelated entries in the
// same journal never show up in history output.
const TransactionMessageID = "c7b39b1e006b464599465e105b361485"

// Field names carried by each transaction entry. The naming follows the
// systemd journal convention the transaction engine logs with.
const (
	FieldTimestamp     = "_SOURCE_REALTIME_TIMESTAMP" // microseconds since the epoch
	FieldOperation     = "OPERATION"
	FieldInstallation  = "INSTALLATION"
	FieldRef           = "REF"
	FieldRemote        = "REMOTE"
	FieldCommit        = "COMMIT"
	FieldResult        = "RESULT"
	FieldUID           = "_UID"
	FieldTool          = "_COMM"
	FieldClientVersion = "CLIENT_VERSION"
)

// ErrUnavailable is returned when the journal backend cannot be used at
// all, e.g. on a build or deployment without journal support.
var ErrUnavailable = errors.New("history is not available")

// Backend opens cursors over the transaction journal. There is one
// production implementation (SQLite) and an always-failing one for
// deployments without a journal.
type Backend interface {
	Open() (Cursor, error)
}

// Cursor iterates transaction entries in strictly reverse chronological
// order (most recent first).
//
// Field returns the named field of the current entry; a missing field is
// (_, false), never an error. Genuine backend read failures surface from
// Err after Next returns false. Close must be called on every exit path.
type Cursor interface {
	Next() bool
	Field(name string) (string, bool)
	Err() error
	Close() error
}
