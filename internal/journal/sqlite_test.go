package journal

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

// newTestJournal creates a journal database on disk and returns its path
// together with an open handle for inserting fixture entries.
func newTestJournal(t *testing.T) (string, *sql.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "journal.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open test journal: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := EnsureSchema(db); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	return path, db
}

type testEntry struct {
	messageID   string
	timestampUS int64
	operation   string
	ref         string
}

func insertEntry(t *testing.T, db *sql.DB, e testEntry) {
	t.Helper()

	messageID := e.messageID
	if messageID == "" {
		messageID = TransactionMessageID
	}

	var refVal interface{}
	if e.ref != "" {
		refVal = e.ref
	}

	_, err := db.Exec(`
		INSERT INTO journal_entries (message_id, timestamp_us, operation, installation, ref, uid, tool)
		VALUES (?, ?, ?, 'system', ?, '1000', 'flatpak')
	`, messageID, e.timestampUS, e.operation, refVal)
	if err != nil {
		t.Fatalf("failed to insert test entry: %v", err)
	}
}

func TestSQLiteBackend_ReverseChronologicalOrder(t *testing.T) {
	path, db := newTestJournal(t)
	insertEntry(t, db, testEntry{timestampUS: 1000, operation: "install"})
	insertEntry(t, db, testEntry{timestampUS: 3000, operation: "uninstall"})
	insertEntry(t, db, testEntry{timestampUS: 2000, operation: "update"})

	cur, err := NewSQLiteBackend(path).Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer cur.Close()

	var ops []string
	for cur.Next() {
		op, _ := cur.Field(FieldOperation)
		ops = append(ops, op)
	}
	if err := cur.Err(); err != nil {
		t.Fatalf("cursor error: %v", err)
	}

	want := []string{"uninstall", "update", "install"}
	if len(ops) != len(want) {
		t.Fatalf("got %d entries, want %d", len(ops), len(want))
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("entry %d = %q, want %q (newest first)", i, ops[i], want[i])
		}
	}
}

func TestSQLiteBackend_FiltersByMessageID(t *testing.T) {
	path, db := newTestJournal(t)
	insertEntry(t, db, testEntry{timestampUS: 1000, operation: "install"})
	insertEntry(t, db, testEntry{messageID: "deadbeef", timestampUS: 2000, operation: "unrelated"})

	cur, err := NewSQLiteBackend(path).Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer cur.Close()

	count := 0
	for cur.Next() {
		op, _ := cur.Field(FieldOperation)
		if op == "unrelated" {
			t.Error("cursor returned an entry with a foreign message id")
		}
		count++
	}
	if count != 1 {
		t.Errorf("got %d entries, want 1", count)
	}
}

func TestSQLiteCursor_AbsentFields(t *testing.T) {
	path, db := newTestJournal(t)
	insertEntry(t, db, testEntry{timestampUS: 1000, operation: "install"})

	cur, err := NewSQLiteBackend(path).Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer cur.Close()

	if !cur.Next() {
		t.Fatalf("expected one entry, got none (err: %v)", cur.Err())
	}

	// ref was inserted as NULL: absent, not an error.
	if v, ok := cur.Field(FieldRef); ok {
		t.Errorf("Field(REF) = (%q, true), want absent", v)
	}
	// Unknown field names are absent too.
	if _, ok := cur.Field("NO_SUCH_FIELD"); ok {
		t.Error("Field on unknown name should report absent")
	}

	if ts, ok := cur.Field(FieldTimestamp); !ok || ts != "1000" {
		t.Errorf("Field(timestamp) = (%q, %v), want (\"1000\", true)", ts, ok)
	}
	if uid, ok := cur.Field(FieldUID); !ok || uid != "1000" {
		t.Errorf("Field(uid) = (%q, %v), want (\"1000\", true)", uid, ok)
	}
}

func TestSQLiteBackend_MissingDatabaseIsUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.db")

	_, err := NewSQLiteBackend(path).Open()
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Open on missing journal = %v, want ErrUnavailable", err)
	}
}

func TestUnsupportedBackend(t *testing.T) {
	_, err := UnsupportedBackend{}.Open()
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("UnsupportedBackend.Open = %v, want ErrUnavailable", err)
	}
}
