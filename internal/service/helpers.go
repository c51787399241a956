package service

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidDate indicates a date string that matches none of the accepted layouts.
var ErrInvalidDate = errors.New("invalid date")

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// parseDate accepts RFC3339 timestamps or calendar dates. Calendar dates are interpreted in UTC.
func parseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

func parseOptionalDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parsed, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func normalizeLogin(login *string) *string {
	if login == nil {
		return nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(*login))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// addMonth moves a date one calendar month forward, clamping to the last day of the target month.
func addMonth(t time.Time) time.Time {
	y, m, d := t.Date()
	firstOfNext := time.Date(y, m+1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := firstOfNext.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
