package models

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// ParseMembers parses a comma-separated list of names and emails.
// An email entry becomes a member named after its local part.
// Blank entries are skipped.
func ParseMembers(list string) []Member {
	var members []Member
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if emailPattern.MatchString(entry) {
			name, _, _ := strings.Cut(entry, "@")
			members = append(members, Member{Name: name, Email: entry})
			continue
		}
		members = append(members, Member{Name: entry})
	}
	return members
}
