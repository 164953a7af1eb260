package history

import (
	"fmt"
	"os/user"
	"strconv"
	"time"

	"github.com/matthiasclasen/flatpak/internal/journal"
	"github.com/matthiasclasen/flatpak/internal/ref"
)

// Query describes one history invocation. It is built explicitly by the
// command layer; the engine holds no global state.
type Query struct {
	// Scopes restricts output to journal entries attributed to one of the
	// given installation scope ids. nil means no scope filter at all. An
	// entry without installation data never matches an active filter.
	Scopes []string

	// Since and Until bound the time window. Both bounds are exclusive:
	// an entry exactly at a bound is skipped.
	Since *time.Time
	Until *time.Time

	// Columns is the ordered projection, as resolved by Resolve.
	Columns []Column

	// Seen, when non-nil, receives the entry timestamp of every emitted
	// row. Follow mode uses it to know where to resume.
	Seen func(time.Time)
}

// RowSink receives projected rows in the order the engine produces them.
type RowSink interface {
	Row(cells []string) error
}

// Run streams matching journal entries into sink, newest first. The journal
// is iterated exactly once and never re-sorted. With zero columns there is
// nothing to render, so the backend is not even opened.
func Run(q Query, backend journal.Backend, sink RowSink) error {
	if len(q.Columns) == 0 {
		return nil
	}

	cur, err := backend.Open()
	if err != nil {
		return err
	}
	defer cur.Close()

	for cur.Next() {
		if q.Scopes != nil {
			inst, _ := cur.Field(journal.FieldInstallation)
			if !matchesScope(q.Scopes, inst) {
				continue
			}
		}

		var t time.Time
		if q.Since != nil || q.Until != nil || q.Seen != nil {
			var err error
			t, err = entryTime(cur)
			if err != nil {
				return err
			}
			if q.Since != nil && !t.After(*q.Since) {
				continue
			}
			if q.Until != nil && !t.Before(*q.Until) {
				continue
			}
		}

		cells, err := project(q.Columns, cur)
		if err != nil {
			return err
		}
		if err := sink.Row(cells); err != nil {
			return err
		}
		if q.Seen != nil {
			q.Seen(t)
		}
	}

	if err := cur.Err(); err != nil {
		return fmt.Errorf("journal read: %w", err)
	}
	return nil
}

func matchesScope(scopes []string, installation string) bool {
	for _, s := range scopes {
		if s == installation {
			return true
		}
	}
	return false
}

// entryTime reads the required timestamp field. Unlike the other fields a
// missing or malformed timestamp is a hard error.
func entryTime(cur journal.Cursor) (time.Time, error) {
	raw, ok := cur.Field(journal.FieldTimestamp)
	if !ok {
		return time.Time{}, fmt.Errorf("journal entry has no timestamp")
	}
	us, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed journal timestamp %q: %w", raw, err)
	}
	return time.UnixMicro(us).In(time.Local), nil
}

func project(cols []Column, cur journal.Cursor) ([]string, error) {
	cells := make([]string, 0, len(cols))
	for _, col := range cols {
		p, ok := projections[col.Key]
		if !ok {
			return nil, fmt.Errorf("no projection for column %q", col.Key)
		}
		cell, err := p(cur)
		if err != nil {
			return nil, err
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

// projections maps column keys to extraction functions. Every key in the
// registry has an entry here; each one can be tested in isolation.
var projections = map[string]func(journal.Cursor) (string, error){
	"time":         projectTime,
	"change":       projectField(journal.FieldOperation),
	"ref":          projectField(journal.FieldRef),
	"application":  projectRefPart(func(r *ref.Ref) string { return r.Name }),
	"arch":         projectRefPart(func(r *ref.Ref) string { return r.Arch }),
	"branch":       projectRefPart(func(r *ref.Ref) string { return r.Branch }),
	"installation": projectField(journal.FieldInstallation),
	"remote":       projectField(journal.FieldRemote),
	"commit":       projectCommit,
	"result":       projectResult,
	"user":         projectUser,
	"tool":         projectField(journal.FieldTool),
	"version":      projectField(journal.FieldClientVersion),
}

// projectField renders a raw field, empty if absent.
func projectField(name string) func(journal.Cursor) (string, error) {
	return func(cur journal.Cursor) (string, error) {
		v, _ := cur.Field(name)
		return v, nil
	}
}

// projectTime renders the entry timestamp as local time of day, truncated
// to seconds.
func projectTime(cur journal.Cursor) (string, error) {
	t, err := entryTime(cur)
	if err != nil {
		return "", err
	}
	return t.Format("15:04:05"), nil
}

// projectRefPart renders one component of the decomposed ref. An absent
// ref or one that fails to decompose yields an empty cell.
func projectRefPart(part func(*ref.Ref) string) func(journal.Cursor) (string, error) {
	return func(cur journal.Cursor) (string, error) {
		v, ok := cur.Field(journal.FieldRef)
		if !ok {
			return "", nil
		}
		r, err := ref.Decompose(v)
		if err != nil {
			return "", nil
		}
		return part(r), nil
	}
}

// projectCommit renders the commit checksum truncated to 12 characters.
func projectCommit(cur journal.Cursor) (string, error) {
	v, _ := cur.Field(journal.FieldCommit)
	if len(v) > 12 {
		v = v[:12]
	}
	return v, nil
}

// projectResult renders "✓" for any present result other than the literal
// "0". An absent result renders empty, same as failure: success is only
// ever claimed for a recorded non-zero value.
func projectResult(cur journal.Cursor) (string, error) {
	v, ok := cur.Field(journal.FieldResult)
	if ok && v != "0" {
		return "✓", nil
	}
	return "", nil
}

// projectUser resolves the numeric uid to an account name, falling back to
// the raw uid when the lookup fails.
func projectUser(cur journal.Cursor) (string, error) {
	uid, ok := cur.Field(journal.FieldUID)
	if !ok {
		return "", nil
	}
	u, err := user.LookupId(uid)
	if err != nil {
		return uid, nil
	}
	return u.Username, nil
}
