// Package timeparse turns the human-supplied TIME arguments of --since and
// --until into absolute instants.
package timeparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Absolute layouts tried in priority order. A layout only matches if it
// consumes the whole input; otherwise the next one is tried.
var absoluteLayouts = []string{
	"15:04",
	"15:04:05",
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// Parse resolves text to an absolute instant.
//
// Absolute forms are tried first: a bare time of day anchors to relativeTo's
// calendar date, a bare date anchors to midnight. If no absolute layout
// matches, text is parsed as a relative duration made of whitespace-separated
// <integer><unit> tokens ("2 days 3 hours"), subtracted from relativeTo.
// Units are d/day/days, h/hour/hours, m/minute/minutes and s/second/seconds;
// if a unit category repeats, the last occurrence wins. Any token with an
// unknown suffix fails the whole parse.
func Parse(text string, relativeTo time.Time) (time.Time, error) {
	loc := relativeTo.Location()

	for _, layout := range absoluteLayouts {
		t, err := time.ParseInLocation(layout, text, loc)
		if err != nil {
			continue
		}
		if !strings.Contains(layout, "2006") {
			// Time of day only: anchor to relativeTo's date.
			return time.Date(relativeTo.Year(), relativeTo.Month(), relativeTo.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, loc), nil
		}
		return t, nil
	}

	return parseRelative(text, relativeTo)
}

func parseRelative(text string, relativeTo time.Time) (time.Time, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return time.Time{}, fmt.Errorf("cannot parse time %q", text)
	}

	var days, hours, minutes, seconds int
	for _, tok := range tokens {
		i := 0
		for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
			i++
		}
		if i == 0 {
			return time.Time{}, fmt.Errorf("cannot parse time %q: %q has no count", text, tok)
		}

		n, err := strconv.Atoi(tok[:i])
		if err != nil {
			return time.Time{}, fmt.Errorf("cannot parse time %q: %w", text, err)
		}

		switch tok[i:] {
		case "d", "day", "days":
			days = n
		case "h", "hour", "hours":
			hours = n
		case "m", "minute", "minutes":
			minutes = n
		case "s", "second", "seconds":
			seconds = n
		default:
			return time.Time{}, fmt.Errorf("cannot parse time %q: unknown unit %q", text, tok[i:])
		}
	}

	d := time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second

	return relativeTo.Add(-d), nil
}
