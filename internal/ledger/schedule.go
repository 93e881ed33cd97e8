package ledger

import (
	"time"

	"github.com/mmynk/treatplanner/internal/models"
)

// IsUrgent reports whether planDate falls on today or tomorrow.
// Dates are compared by calendar day in now's location; time of day is ignored.
func IsUrgent(planDate, now time.Time) bool {
	d := civilDate(planDate.In(now.Location()))
	today := civilDate(now)
	tomorrow := civilDate(now.AddDate(0, 0, 1))
	return d == today || d == tomorrow
}

type date struct {
	year  int
	month time.Month
	day   int
}

func civilDate(t time.Time) date {
	y, m, d := t.Date()
	return date{y, m, d}
}

// IsUnscheduled reports whether an event has no decided date. That is the case
// when its plan is missing, the plan date is a placeholder, or the event's own
// time is absent or a placeholder. Placeholder years are read in loc, the zone
// dates were entered in.
func IsUnscheduled(event *models.Event, plan *models.DayPlan, loc *time.Location) bool {
	if plan == nil || models.IsPlaceholderDate(plan.Date.In(loc)) {
		return true
	}
	return event.DateTime == nil || models.IsPlaceholderDate(event.DateTime.In(loc))
}

// UnscheduledEvents returns the events that IsUnscheduled selects, in input order.
// plans is keyed by plan ID.
func UnscheduledEvents(events []*models.Event, plans map[string]*models.DayPlan, loc *time.Location) []*models.Event {
	var out []*models.Event
	for _, event := range events {
		if IsUnscheduled(event, plans[event.DayPlanID], loc) {
			out = append(out, event)
		}
	}
	return out
}

// CountUnscheduled is len(UnscheduledEvents(events, plans, loc)).
func CountUnscheduled(events []*models.Event, plans map[string]*models.DayPlan, loc *time.Location) int {
	n := 0
	for _, event := range events {
		if IsUnscheduled(event, plans[event.DayPlanID], loc) {
			n++
		}
	}
	return n
}

// PlansByID indexes plans by ID.
func PlansByID(plans []*models.DayPlan) map[string]*models.DayPlan {
	m := make(map[string]*models.DayPlan, len(plans))
	for _, p := range plans {
		m[p.ID] = p
	}
	return m
}
