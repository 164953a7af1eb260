package journal

import "fmt"

// UnsupportedBackend is the backend used on deployments without journal
// support. Every open fails with ErrUnavailable so the history command
// reports a clear error instead of an empty report.
type UnsupportedBackend struct{}

func (UnsupportedBackend) Open() (Cursor, error) {
	return nil, fmt.Errorf("open journal: %w", ErrUnavailable)
}
