// Package ledger computes who owes what across treats.
//
// All functions are pure: they take already-fetched events and plans and never
// perform I/O, so they can be re-run on every change notification.
// Every caller that needs debt numbers (the owed-total badge, plan stats, the bills
// page, reminders) goes through this package so the rules cannot drift apart.
package ledger

import "strings"

// Identity is the user a ledger is evaluated for.
// Either field may be empty.
type Identity struct {
	DisplayName string
	Email       string
}

// Matches reports whether a stored name string refers to the user.
// Comparison is trimmed and case-insensitive against the display name or the
// local part of the email. A blank name never matches.
func Matches(name string, user Identity) bool {
	n := normalize(name)
	if n == "" {
		return false
	}
	return n == normalize(user.DisplayName) || n == emailLocalPart(user.Email)
}

// matchesEmail compares two email addresses exactly, ignoring case and
// surrounding space. Blank addresses never match.
func matchesEmail(email string, user Identity) bool {
	e := normalize(email)
	return e != "" && e == normalize(user.Email)
}

func emailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return normalize(local)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
