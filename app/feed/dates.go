package feed

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Matches a trailing zone name some feeds append after an otherwise valid
// date, e.g. "... +0000 Etc/UTC" or "... US/Eastern".
var trailingZonePattern = regexp.MustCompile(`\s+[A-Za-z/_]{1,32}$`)

// UTC offsets, in hours, of the North American zone names RFC 822 allows.
// time.Parse only knows them when they belong to the local zone.
var rfc822Zones = map[string]int{
	"EST": -5, "EDT": -4,
	"CST": -6, "CDT": -5,
	"MST": -7, "MDT": -6,
	"PST": -8, "PDT": -7,
}

// ParseDate turns a feed date string into an instant. It returns nil when the
// string cannot be understood, never an error.
func ParseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if t, ok := parseInstant(raw); ok {
		return &t
	}

	stripped := strings.TrimSpace(trailingZonePattern.ReplaceAllString(raw, ""))
	if stripped == "" || stripped == raw {
		return nil
	}

	if t, ok := parseInstant(stripped); ok {
		return &t
	}

	return nil
}

// CalendarDate returns the YYYY-MM-DD prefix of the ISO-8601 form of t.
func CalendarDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatISO(*t)[:10]
}

// FormatISO renders t as a UTC ISO-8601 instant with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func parseInstant(s string) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()

	for _, layout := range []string{time.RFC3339Nano, time.RFC1123Z, time.RFC1123} {
		if parsed, err := time.Parse(layout, s); err == nil {
			return applyZoneOffset(parsed), true
		}
	}

	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return applyZoneOffset(parsed), true
}

// applyZoneOffset corrects instants whose zone name was recognized but
// given a zero offset, then converts to UTC.
func applyZoneOffset(t time.Time) time.Time {
	name, offset := t.Zone()
	if hours, ok := rfc822Zones[strings.ToUpper(name)]; ok && offset == 0 {
		t = t.Add(-time.Duration(hours) * time.Hour)
	}
	return t.UTC()
}
