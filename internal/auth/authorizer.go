package auth

import "strings"

// Authorizer holds the allow-list of emails that may create and edit plans,
// events and bills.
type Authorizer struct {
	emails map[string]struct{}
}

// NewAuthorizer builds an Authorizer from a list of emails.
// Blank entries are ignored and matching is case-insensitive.
func NewAuthorizer(emails []string) *Authorizer {
	a := &Authorizer{emails: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			a.emails[e] = struct{}{}
		}
	}
	return a
}

// IsAuthorized reports whether email is on the allow-list.
func (a *Authorizer) IsAuthorized(email string) bool {
	_, ok := a.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// Emails returns the allow-listed emails in lower case, in no particular order.
func (a *Authorizer) Emails() []string {
	out := make([]string, 0, len(a.emails))
	for e := range a.emails {
		out = append(out, e)
	}
	return out
}
