package service

import (
	"errors"
	"fmt"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/treatplanner/internal/ledger"
	"github.com/mmynk/treatplanner/internal/models"
	"github.com/mmynk/treatplanner/internal/storage"
	"github.com/mmynk/treatplanner/pkg/api"
)

// storeError maps storage errors onto Connect codes.
func storeError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

// parsePlanDate reads a YYYY-MM-DD date as midnight in loc.
// An empty string is the "not decided yet" placeholder.
func parsePlanDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return models.PlaceholderDate(), nil
	}
	t, err := time.ParseInLocation(api.DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

func formatPlanDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(loc)
	if models.IsPlaceholderDate(t) {
		return ""
	}
	return t.Format(api.DateLayout)
}

func toAPIDayPlan(plan *models.DayPlan, loc *time.Location) *api.DayPlan {
	members := make([]*api.Member, len(plan.Members))
	for i, m := range plan.Members {
		members[i] = &api.Member{Name: m.Name, Email: m.Email}
	}
	return &api.DayPlan{
		ID:          plan.ID,
		OwnerID:     plan.OwnerID,
		OwnerEmail:  plan.OwnerEmail,
		Title:       plan.Title,
		Date:        formatPlanDate(plan.Date, loc),
		Description: plan.Description,
		Members:     members,
		CreatedAt:   plan.CreatedAt,
		UpdatedAt:   plan.UpdatedAt,
	}
}

func toAPIEvent(event *models.Event) *api.Event {
	rsvps := make(map[string]string, len(event.RSVPs))
	for member, status := range event.RSVPs {
		rsvps[member] = string(status)
	}
	attendees := event.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	return &api.Event{
		ID:                  event.ID,
		DayPlanID:           event.DayPlanID,
		OwnerID:             event.OwnerID,
		OwnerEmail:          event.OwnerEmail,
		Title:               event.Title,
		Type:                string(event.Type),
		DateTime:            event.DateTime,
		Location:            event.Location,
		LocationURL:         event.LocationURL,
		Notes:               event.Notes,
		TotalBill:           event.TotalBill,
		Payer:               event.Payer,
		PayerEmail:          event.PayerEmail,
		PayerAccountDetails: event.PayerAccountDetails,
		Attendees:           attendees,
		RSVPs:               rsvps,
		PerPersonShare:      ledger.SplitShare(event.TotalBill, event.Attendees),
		CreatedAt:           event.CreatedAt,
		UpdatedAt:           event.UpdatedAt,
	}
}

func toAPIEvents(events []*models.Event) []*api.Event {
	out := make([]*api.Event, len(events))
	for i, e := range events {
		out[i] = toAPIEvent(e)
	}
	return out
}

func toAPIPlanStats(stats ledger.PlanStats) *api.PlanStats {
	types := make([]string, len(stats.EventTypes))
	for i, t := range stats.EventTypes {
		types[i] = string(t)
	}
	return &api.PlanStats{
		EventCount: stats.EventCount,
		EventTypes: types,
		RSVP:       *toAPIRSVPSummary(stats.RSVP),
		Money: api.MoneyStats{
			TotalPending:        stats.Money.TotalPending,
			CurrentUserOwes:     stats.Money.CurrentUserOwes,
			OwesTo:              stats.Money.OwesTo,
			PayerEmail:          stats.Money.PayerEmail,
			PayerAccountDetails: stats.Money.PayerAccountDetails,
		},
	}
}

func toAPIRSVPSummary(s ledger.RSVPSummary) *api.RSVPSummary {
	coming := s.ComingNames
	if coming == nil {
		coming = []string{}
	}
	return &api.RSVPSummary{
		Coming:      s.Coming,
		Maybe:       s.Maybe,
		NotComing:   s.NotComing,
		ComingNames: coming,
	}
}

func toAPIBill(b ledger.BillDetail, loc *time.Location) *api.Bill {
	out := &api.Bill{
		DayPlanID:           b.DayPlanID,
		DayPlanTitle:        b.DayPlanTitle,
		HasDayPlan:          b.HasDayPlan,
		EventID:             b.EventID,
		EventTitle:          b.EventTitle,
		EventType:           string(b.EventType),
		TotalBill:           b.TotalBill,
		AmountOwed:          b.AmountOwed,
		PayerName:           b.PayerName,
		PayerEmail:          b.PayerEmail,
		PayerAccountDetails: b.PayerAccountDetails,
		IsUrgent:            b.IsUrgent,
	}
	if b.HasDayPlan {
		out.DayPlanDate = formatPlanDate(b.DayPlanDate, loc)
	}
	return out
}

func toAPIUser(u *models.UserProfile) *api.User {
	return &api.User{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		PhotoURL:    u.PhotoURL,
		CreatedAt:   u.CreatedAt,
	}
}
