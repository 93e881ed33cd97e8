package ledger

import (
	"maps"
	"slices"

	"github.com/mmynk/treatplanner/internal/models"
)

// organizerFallback names the creditor when a debt's event has no payer.
const organizerFallback = "organizer"

// comingNamesLimit caps the names listed in an RSVP summary.
const comingNamesLimit = 3

// RSVPSummary counts poll answers.
type RSVPSummary struct {
	Coming      int
	Maybe       int
	NotComing   int
	ComingNames []string
}

// MoneyStats summarises bills within one plan for one user.
type MoneyStats struct {
	// TotalPending sums every positive bill in the plan.
	TotalPending float64
	// CurrentUserOwes sums the user's shares.
	CurrentUserOwes float64
	// OwesTo and the payer fields describe the last event the user owes for.
	OwesTo              string
	PayerEmail          string
	PayerAccountDetails string
}

// PlanStats is the dashboard card for a plan.
type PlanStats struct {
	PlanID     string
	EventCount int
	// EventTypes lists distinct types in first-seen order.
	EventTypes []models.EventType
	RSVP       RSVPSummary
	Money      MoneyStats
}

// rsvpRank orders answers so a member's strongest response wins.
var rsvpRank = map[models.RSVPStatus]int{
	models.RSVPNo:    1,
	models.RSVPMaybe: 2,
	models.RSVPYes:   3,
}

// ComputePlanStats builds the dashboard card for plan from its events.
func ComputePlanStats(plan *models.DayPlan, events []*models.Event, user Identity) PlanStats {
	stats := PlanStats{PlanID: plan.ID, EventCount: len(events)}

	seenType := make(map[models.EventType]bool)
	for _, event := range events {
		if !seenType[event.Type] {
			seenType[event.Type] = true
			stats.EventTypes = append(stats.EventTypes, event.Type)
		}
	}

	strongest, order := strongestRSVPs(events)
	for _, member := range order {
		switch strongest[member] {
		case models.RSVPYes:
			stats.RSVP.Coming++
			if len(stats.RSVP.ComingNames) < comingNamesLimit {
				stats.RSVP.ComingNames = append(stats.RSVP.ComingNames, member)
			}
		case models.RSVPMaybe:
			stats.RSVP.Maybe++
		case models.RSVPNo:
			stats.RSVP.NotComing++
		}
	}

	var pending, owed []float64
	for _, event := range events {
		if event.TotalBill <= 0 {
			continue
		}
		pending = append(pending, event.TotalBill)
		a := AttributeEvent(event, user)
		if !a.IsDebtor {
			continue
		}
		owed = append(owed, a.AmountOwed)
		stats.Money.OwesTo = event.Payer
		if stats.Money.OwesTo == "" {
			stats.Money.OwesTo = organizerFallback
		}
		stats.Money.PayerEmail = a.PayerEmail
		stats.Money.PayerAccountDetails = a.PayerAccountDetails
	}
	stats.Money.TotalPending = sum(pending)
	stats.Money.CurrentUserOwes = sum(owed)
	return stats
}

// StrongestRSVPs merges the polls of several events, keeping each member's
// strongest answer (yes over maybe over no).
func StrongestRSVPs(events []*models.Event) map[string]models.RSVPStatus {
	strongest, _ := strongestRSVPs(events)
	return strongest
}

// strongestRSVPs also returns members in first-answered order, with each
// event's answers visited by name.
func strongestRSVPs(events []*models.Event) (map[string]models.RSVPStatus, []string) {
	strongest := make(map[string]models.RSVPStatus)
	var order []string
	for _, event := range events {
		for _, member := range sortedKeys(event.RSVPs) {
			status := event.RSVPs[member]
			prev, ok := strongest[member]
			if !ok {
				order = append(order, member)
			}
			if !ok || rsvpRank[status] > rsvpRank[prev] {
				strongest[member] = status
			}
		}
	}
	return strongest, order
}

// PollSummary counts the plan members' answers for one event.
// Answers from names outside the member list are ignored.
func PollSummary(members []models.Member, rsvps map[string]models.RSVPStatus) RSVPSummary {
	var s RSVPSummary
	for _, m := range members {
		switch rsvps[m.Name] {
		case models.RSVPYes:
			s.Coming++
			s.ComingNames = append(s.ComingNames, m.Name)
		case models.RSVPMaybe:
			s.Maybe++
		case models.RSVPNo:
			s.NotComing++
		}
	}
	return s
}

// DefaultAttendees returns the members who answered yes, in member order.
// It seeds the attendee list when a bill is entered.
func DefaultAttendees(members []models.Member, rsvps map[string]models.RSVPStatus) []string {
	var names []string
	for _, m := range members {
		if rsvps[m.Name] == models.RSVPYes {
			names = append(names, m.Name)
		}
	}
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
