package models

import "time"

// PlaceholderYear is the first year treated as "no date decided".
const PlaceholderYear = 2099

// PlaceholderDate returns the date stored for plans and events whose date
// has not been decided.
func PlaceholderDate() time.Time {
	return time.Date(PlaceholderYear, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// IsPlaceholderDate reports whether t carries the placeholder sentinel.
func IsPlaceholderDate(t time.Time) bool {
	return t.Year() >= PlaceholderYear
}
