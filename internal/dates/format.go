// Package dates formats GitHub API timestamps for display.
package dates

import (
	"fmt"
	"regexp"
	"time"
	_ "time/tzdata" // display zones must resolve without a system zoneinfo database

	"github.com/danielolaszy/changelog/internal/logging"
)

const (
	// APILayout is the timestamp layout used by the GitHub REST API.
	APILayout = "2006-01-02T15:04:05Z"
	// DisplayLayout renders as e.g. "2024-01-02 at 07:00 -0300".
	DisplayLayout = "2006-01-02 at 15:04 -0700"

	// Invalid is returned for any timestamp that cannot be formatted.
	Invalid = "Invalid date"
)

// time.Parse accepts fractional seconds the layout does not mention, so the
// exact shape is checked first.
var apiPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`)

// Format converts a YYYY-MM-DDTHH:MM:SSZ UTC timestamp into loc and renders it
// with DisplayLayout. Failures are logged and yield Invalid.
func Format(s string, loc *time.Location) string {
	t, err := Parse(s)
	if err != nil {
		logging.Error("error formatting date", "input", s, "error", err)
		return Invalid
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DisplayLayout)
}

// Parse parses a strict YYYY-MM-DDTHH:MM:SSZ timestamp as UTC.
func Parse(s string) (time.Time, error) {
	if !apiPattern.MatchString(s) {
		return time.Time{}, fmt.Errorf("time data %q does not match format YYYY-MM-DDTHH:MM:SSZ", s)
	}
	t, err := time.ParseInLocation(APILayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q: %w", s, err)
	}
	return t, nil
}
