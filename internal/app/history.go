package app

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/matthiasclasen/flatpak/internal/history"
	"github.com/matthiasclasen/flatpak/internal/installation"
	"github.com/matthiasclasen/flatpak/internal/journal"
	"github.com/matthiasclasen/flatpak/internal/output"
	"github.com/matthiasclasen/flatpak/internal/timeparse"
)

var (
	historySince       string
	historyUntil       string
	historyColumns     string
	historyShowColumns bool
	historyAllColumns  bool
	historyFollow      bool
	historyJournal     string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show history",
	Long: `Show a log of changes to the installations: installs, updates and
uninstalls, as recorded in the transaction journal.

TIME arguments accept an absolute time of day (10:30, 10:30:12), an
absolute date (2024-01-10, "2024-01-10 10:30:12"), or a relative
duration before now, like "2 days" or "1 day 12 hours".

By default entries of every installation are shown. Use --user,
--system or --installation to restrict output to specific
installations.`,
	Example: `  # Everything recorded in the journal
  flatpak history

  # Changes of the last two days, user installation only
  flatpak history --user --since "2 days"

  # Pick the columns to display
  flatpak history --columns time,change,application,result

  # Keep printing new entries as they are logged
  flatpak history --follow`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historySince, "since", "", "only show entries newer than TIME")
	historyCmd.Flags().StringVar(&historyUntil, "until", "", "only show entries older than TIME")
	historyCmd.Flags().StringVar(&historyColumns, "columns", "", "comma-separated list of columns to show")
	historyCmd.Flags().BoolVar(&historyShowColumns, "show-columns", false, "list the available columns and exit")
	historyCmd.Flags().BoolVar(&historyAllColumns, "all-columns", false, "show all columns")
	historyCmd.Flags().BoolVar(&historyFollow, "follow", false, "keep printing entries as they are appended")
	historyCmd.Flags().StringVar(&historyJournal, "journal", "", "journal database path (default: $XDG_DATA_HOME/flatpak/journal.db)")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("too many arguments")
	}

	if historyShowColumns {
		printAvailableColumns()
		return nil
	}

	requested, explicit := splitColumns(historyColumns)
	if explicit && len(requested) == 0 {
		// An explicitly empty column list means "render nothing"; the
		// journal is not even opened in that case.
		return nil
	}

	cols, err := history.Resolve(requested, historyAllColumns)
	if err != nil {
		return err
	}

	scopes, err := resolveScopeFilter()
	if err != nil {
		return err
	}

	now := time.Now()
	var since, until *time.Time
	if historySince != "" {
		t, err := timeparse.Parse(historySince, now)
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
		since = &t
	}
	if historyUntil != "" {
		t, err := timeparse.Parse(historyUntil, now)
		if err != nil {
			return fmt.Errorf("invalid --until: %w", err)
		}
		until = &t
	}

	path := historyJournal
	if path == "" {
		path, err = journal.DefaultPath()
		if err != nil {
			return err
		}
	}
	backend := journal.NewSQLiteBackend(path)

	titles := make([]string, 0, len(cols))
	for _, c := range cols {
		titles = append(titles, c.Title)
	}

	q := history.Query{
		Scopes:  scopes,
		Since:   since,
		Until:   until,
		Columns: cols,
	}

	if historyFollow {
		return followHistory(q, backend, path, titles)
	}

	table := output.NewTable(titles...)
	if err := history.Run(q, backend, table); err != nil {
		return err
	}
	table.Print()

	return nil
}

// followHistory renders the current history once and then keeps appending
// entries as the transaction engine logs them, until interrupted.
func followHistory(q history.Query, backend journal.Backend, path string, titles []string) error {
	var last time.Time
	q.Seen = func(t time.Time) {
		if t.After(last) {
			last = t
		}
	}

	table := output.NewTable(titles...)
	if err := history.Run(q, backend, table); err != nil {
		return err
	}
	table.Print()

	if last.IsZero() {
		last = time.Now()
	}

	w, err := journal.Watch(path)
	if err != nil {
		return err
	}
	defer w.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	for {
		select {
		case <-sig:
			return nil
		case _, ok := <-w.Events:
			if !ok {
				return nil
			}

			since := last
			batch := q
			batch.Since = &since

			var buf rowBuffer
			if err := history.Run(batch, backend, &buf); err != nil {
				fmt.Fprintf(os.Stderr, "history: %v\n", err)
				continue
			}

			// The cursor yields newest first; appended entries read
			// better oldest first.
			out := output.NewTable()
			for i := len(buf.rows) - 1; i >= 0; i-- {
				if err := out.Row(buf.rows[i]); err != nil {
					return err
				}
			}
			out.Print()
		}
	}
}

// rowBuffer collects engine rows for re-ordering before display.
type rowBuffer struct {
	rows [][]string
}

func (b *rowBuffer) Row(cells []string) error {
	b.rows = append(b.rows, cells)
	return nil
}

// printAvailableColumns enumerates the column registry.
func printAvailableColumns() {
	table := output.NewTable()
	for _, c := range history.Columns {
		table.Row([]string{c.Key, c.Title, c.Description})
	}
	table.Print()
}

// splitColumns parses the --columns value. explicit reports whether the
// flag carried any value at all, so an explicitly empty request can be
// told apart from "use the defaults".
func splitColumns(value string) (keys []string, explicit bool) {
	if value == "" {
		return nil, false
	}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			keys = append(keys, part)
		}
	}
	return keys, true
}

// resolveScopeFilter maps the installation-selection flags to journal
// scope ids. nil means no filter.
func resolveScopeFilter() ([]string, error) {
	dirs, err := installation.DirsForFilter(optUser, optSystem, optInstallations)
	if err != nil {
		return nil, err
	}
	if dirs == nil {
		return nil, nil
	}

	scopes := make([]string, 0, len(dirs))
	for _, d := range dirs {
		scopes = append(scopes, d.ScopeID())
	}
	return scopes, nil
}
