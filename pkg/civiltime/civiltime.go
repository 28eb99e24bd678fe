// Package civiltime resolves stored civil dates and times of day into absolute
// instants using a tenant's IANA timezone. Care observations are recorded as the
// local date and wall-clock time the caregiver saw, so every comparison against
// a real instant has to go through this reconstruction.
package civiltime

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the storage layout for civil dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the storage layout for civil times of day.
	TimeLayout = "15:04"
)

// Resolve converts a civil date ("2006-01-02") plus an optional time of day
// ("15:04") into the absolute instant at which that wall-clock moment occurred
// in loc. An empty time of day resolves to the start of the civil day.
func Resolve(date, timeOfDay string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse civil date %q: %w", date, err)
	}
	if timeOfDay == "" {
		return d, nil
	}
	t, err := time.Parse(TimeLayout, timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse civil time %q: %w", timeOfDay, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// DateOf returns the civil date of instant t as seen in loc.
func DateOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// TimeOf returns the wall-clock time of instant t as seen in loc.
func TimeOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(TimeLayout)
}

// ValidDate reports whether s is a well-formed civil date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidTime reports whether s is a well-formed civil time of day.
func ValidTime(s string) bool {
	_, err := time.Parse(TimeLayout, s)
	return err == nil
}
