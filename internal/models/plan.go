package models

import "time"

// DayPlan is a named, dated container for one or more treats.
// It is owned by the user who created it.
type DayPlan struct {
	// ID is the unique identifier for the plan (UUID format).
	ID string

	// OwnerID is the identity-provider user ID of the creator.
	OwnerID string

	// OwnerEmail is the creator's email at creation time.
	OwnerEmail string

	// Title is the human-readable name of the plan.
	Title string

	// Date is the day the plan takes place.
	// A year of 2099 or later means the date has not been decided yet.
	Date time.Time

	// Description is optional free text.
	Description string

	// Members is the pool of identities eligible for RSVP and bill attribution
	// within the plan's events.
	Members []Member

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// Member identifies a participant by display name, optionally annotated with an email.
type Member struct {
	Name  string
	Email string
}
