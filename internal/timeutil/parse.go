// Package timeutil parses the free-form deadline strings accepted by the
// ticket API. Parsing is total: input that matches no known format yields
// nil, never an error.
package timeutil

import (
	"strings"
	"time"
)

type strategy struct {
	name  string
	parse func(string) (time.Time, bool)
}

func layoutStrategy(name, layout string) strategy {
	return strategy{name: name, parse: func(s string) (time.Time, bool) {
		t, err := time.Parse(layout, s)
		return t, err == nil
	}}
}

func parseISO(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Tried in order; first hit wins.
var deadlineStrategies = []strategy{
	{name: "iso8601", parse: parseISO},
	layoutStrategy("datetime", "2006-01-02 15:04"),
	layoutStrategy("eu-datetime", "02.01.2006 15:04"),
	layoutStrategy("eu-date", "02.01.2006"),
	layoutStrategy("date", "2006-01-02"),
}

// ParseDeadline interprets s as a deadline timestamp. The result is
// normalized to UTC. Blank or unrecognized input means "no deadline".
func ParseDeadline(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, st := range deadlineStrategies {
		if t, ok := st.parse(s); ok {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
