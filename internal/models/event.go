package models

import (
	"fmt"
	"time"
)

// EventType classifies a treat.
type EventType string

const (
	EventTypeCricket EventType = "Cricket"
	EventTypeFood    EventType = "Food"
	EventTypeMovie   EventType = "Movie"
	EventTypeOther   EventType = "Other"
)

// ParseEventType validates a type name. An empty name defaults to Other.
func ParseEventType(s string) (EventType, error) {
	switch t := EventType(s); t {
	case EventTypeCricket, EventTypeFood, EventTypeMovie, EventTypeOther:
		return t, nil
	case "":
		return EventTypeOther, nil
	default:
		return "", fmt.Errorf("unknown event type %q", s)
	}
}

// RSVPStatus is a member's answer to an event's attendance poll.
type RSVPStatus string

const (
	RSVPYes   RSVPStatus = "yes"
	RSVPNo    RSVPStatus = "no"
	RSVPMaybe RSVPStatus = "maybe"
)

// Valid reports whether s is one of the poll answers.
func (s RSVPStatus) Valid() bool {
	return s == RSVPYes || s == RSVPNo || s == RSVPMaybe
}

// Event represents a single treat within a day plan, optionally carrying a bill
// that is split among its attendees.
type Event struct {
	// ID is the unique identifier for the event (UUID format).
	ID string

	// DayPlanID references the owning plan. The plan may not exist;
	// such events are treated as unscheduled.
	DayPlanID string

	OwnerID    string
	OwnerEmail string

	Title string
	Type  EventType

	// DateTime is when the treat happens. Nil means no time was recorded.
	// A year of 2099 or later is the placeholder for "not decided yet".
	DateTime *time.Time

	Location    string
	LocationURL string
	Notes       string

	// TotalBill is the bill amount. Zero or negative means no bill.
	TotalBill float64

	// Payer is the display name of the member who fronted the bill.
	Payer string

	// PayerEmail is the payer's email, if known.
	PayerEmail string

	// PayerAccountDetails has bank or payment details for settling up.
	PayerAccountDetails string

	// Attendees lists the display names splitting TotalBill, in entry order.
	// Duplicates are kept as entered.
	Attendees []string

	// RSVPs maps a member's display name to their poll answer.
	RSVPs map[string]RSVPStatus

	CreatedAt int64
	UpdatedAt int64
}
