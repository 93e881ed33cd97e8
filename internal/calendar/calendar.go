// Package calendar exports scheduled treats as an iCalendar feed.
package calendar

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/mmynk/treatplanner/internal/auth"
	"github.com/mmynk/treatplanner/internal/ledger"
	"github.com/mmynk/treatplanner/internal/models"
	"github.com/mmynk/treatplanner/internal/storage"
)

const (
	productID = "-//treatplanner//treats//EN"
	calName   = "Treats"

	// defaultDuration applies since events record only a start time.
	defaultDuration = time.Hour
)

// Build returns a calendar with one VEVENT per scheduled event, judging
// placeholder dates in loc. The description notes the user's share when they
// owe for the event.
func Build(events []*models.Event, plans map[string]*models.DayPlan, user ledger.Identity, currency string, loc *time.Location, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(calName)

	for _, event := range events {
		if ledger.IsUnscheduled(event, plans[event.DayPlanID], loc) {
			continue
		}
		start := event.DateTime.UTC()

		ve := cal.AddEvent(event.ID)
		ve.SetDtStampTime(stamp.UTC())
		ve.SetCreatedTime(time.Unix(event.CreatedAt, 0).UTC())
		ve.SetModifiedAt(time.Unix(event.UpdatedAt, 0).UTC())
		ve.SetStartAt(start)
		ve.SetEndAt(start.Add(defaultDuration))
		ve.SetSummary(fmt.Sprintf("[%s] %s", event.Type, event.Title))
		if event.Location != "" {
			ve.SetLocation(event.Location)
		}
		if event.LocationURL != "" {
			ve.SetURL(event.LocationURL)
		}
		if desc := description(event, user, currency); desc != "" {
			ve.SetDescription(desc)
		}
	}
	return cal
}

func description(event *models.Event, user ledger.Identity, currency string) string {
	var lines []string
	if event.Notes != "" {
		lines = append(lines, event.Notes)
	}
	if share := ledger.SplitShare(event.TotalBill, event.Attendees); share > 0 {
		lines = append(lines, fmt.Sprintf("Bill: %s split %d ways (%s each)",
			ledger.FormatAmount(currency, event.TotalBill), len(event.Attendees), ledger.FormatShare(currency, share)))
	}
	if a := ledger.AttributeEvent(event, user); a.IsDebtor {
		lines = append(lines, fmt.Sprintf("You owe %s to %s", ledger.FormatShare(currency, a.AmountOwed), a.PayerName))
	}
	return strings.Join(lines, "\n")
}

// Handler serves the feed at GET /calendar.ics. Calendar apps cannot send
// headers, so the identity token is read from the "token" query parameter.
type Handler struct {
	store      storage.Store
	jwtManager *auth.JWTManager
	currency   string
	loc        *time.Location
	now        func() time.Time
}

// NewHandler creates a feed handler. Dates are judged in loc.
func NewHandler(store storage.Store, jwtManager *auth.JWTManager, currency string, loc *time.Location) *Handler {
	return &Handler{store: store, jwtManager: jwtManager, currency: currency, loc: loc, now: time.Now}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, auth.ErrMissingToken.Error(), http.StatusUnauthorized)
		return
	}
	id, err := h.jwtManager.Validate(token)
	if err != nil {
		slog.Warn("Calendar feed rejected", "error", err)
		http.Error(w, auth.ErrInvalidToken.Error(), http.StatusUnauthorized)
		return
	}

	ctx := r.Context()
	events, err := h.store.ListEvents(ctx, storage.EventQuery{})
	if err != nil {
		slog.Error("Calendar feed failed - could not list events", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	plans, err := h.store.ListDayPlans(ctx, storage.DayPlanQuery{})
	if err != nil {
		slog.Error("Calendar feed failed - could not list day plans", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	user := ledger.Identity{DisplayName: id.DisplayName, Email: id.Email}
	cal := Build(events, ledger.PlansByID(plans), user, h.currency, h.loc, h.now())

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="treats.ics"`)
	if err := cal.SerializeTo(w); err != nil {
		slog.Error("Calendar feed failed - could not write", "error", err)
		return
	}

	slog.Info("Calendar feed served", "user_id", id.UserID, "events_count", len(cal.Events()))
}
