// Package history implements the history query engine: it scans the
// transaction journal backwards, filters by installation scope and time
// window, and projects a configurable column set into display rows.
package history

import "fmt"

// Column describes one projectable output field.
type Column struct {
	Key         string
	Title       string
	Description string

	// Default marks columns shown without an explicit --columns request.
	Default bool
	// Wide marks extra columns included by --all-columns.
	Wide bool
}

// Columns is the fixed registry of projectable fields, in display order.
// Keys are unique and stable; they are the vocabulary of --columns.
var Columns = []Column{
	{Key: "time", Title: "Time", Description: "Show when the change happened", Default: true},
	{Key: "change", Title: "Change", Description: "Show the kind of change", Default: true},
	{Key: "ref", Title: "Ref", Description: "Show the ref", Wide: true},
	{Key: "application", Title: "Application", Description: "Show the application/runtime ID", Default: true},
	{Key: "arch", Title: "Arch", Description: "Show the architecture", Wide: true},
	{Key: "branch", Title: "Branch", Description: "Show the branch", Default: true},
	{Key: "installation", Title: "Installation", Description: "Show the affected installation", Default: true},
	{Key: "remote", Title: "Remote", Description: "Show the remote", Default: true},
	{Key: "commit", Title: "Commit", Description: "Show the active commit", Default: true},
	{Key: "result", Title: "Result", Description: "Show whether the change succeeded", Default: true},
	{Key: "user", Title: "User", Description: "Show the user doing the change", Wide: true},
	{Key: "tool", Title: "Tool", Description: "Show the tool that was used", Wide: true},
	{Key: "version", Title: "Version", Description: "Show the Flatpak version", Wide: true},
}

// Resolve turns a user column request into an ordered column list.
//
// An empty request yields the default columns in registry order (every
// column when all is set). An explicit request is resolved case-sensitively
// and keeps request order; duplicates are preserved rather than deduped, so
// a caller that asks for a column twice gets it twice. An empty result is
// legal and means "produce no output at all".
func Resolve(requested []string, all bool) ([]Column, error) {
	if len(requested) == 0 {
		var cols []Column
		for _, c := range Columns {
			if c.Default || (all && c.Wide) {
				cols = append(cols, c)
			}
		}
		return cols, nil
	}

	cols := make([]Column, 0, len(requested))
	for _, key := range requested {
		col, ok := lookupColumn(key)
		if !ok {
			return nil, fmt.Errorf("unknown column %q (see --show-columns)", key)
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func lookupColumn(key string) (Column, bool) {
	for _, c := range Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}
