package ledger

import (
	"testing"
	"time"

	"github.com/mmynk/treatplanner/internal/models"
)

func TestMyBills(t *testing.T) {
	now := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	plans := PlansByID([]*models.DayPlan{
		{ID: "next-week", Title: "Cricket Sunday", Date: now.AddDate(0, 0, 7)},
		{ID: "tomorrow", Title: "Movie Night", Date: now.AddDate(0, 0, 1)},
		{ID: "last-month", Title: "Iftar", Date: now.AddDate(0, -1, 0)},
	})
	user := Identity{DisplayName: "Sara"}
	events := []*models.Event{
		{ID: "e1", DayPlanID: "next-week", Title: "Match", Type: models.EventTypeCricket, TotalBill: 300, Attendees: []string{"Sara", "Ali", "Omar"}, Payer: "Ali"},
		{ID: "e2", DayPlanID: "gone", Title: "Lost treat", TotalBill: 40, Attendees: []string{"Sara", "Ali"}, Payer: "Ali"},
		{ID: "e3", DayPlanID: "tomorrow", Title: "Cinema", Type: models.EventTypeMovie, TotalBill: 60, Attendees: []string{"Sara", "Omar"}, Payer: "Omar", PayerAccountDetails: "JazzCash 0300"},
		{ID: "e4", DayPlanID: "last-month", Title: "Dates", Type: models.EventTypeFood, TotalBill: 20, Attendees: []string{"Sara", "Ali"}, Payer: "Ali"},
		{ID: "e5", DayPlanID: "tomorrow", Title: "Popcorn", TotalBill: 10, Attendees: []string{"Sara"}, Payer: "Sara"},
	}

	summary := MyBills(events, plans, user, now, BillFilterAll)

	if summary.TotalOwed != 160 {
		t.Errorf("TotalOwed = %v, want 160", summary.TotalOwed)
	}
	if summary.UrgentTotal != 30 || summary.UrgentCount != 1 {
		t.Errorf("urgent = %v (%d), want 30 (1)", summary.UrgentTotal, summary.UrgentCount)
	}

	wantOrder := []string{"e3", "e4", "e1", "e2"}
	if len(summary.Bills) != len(wantOrder) {
		t.Fatalf("got %d bills, want %d", len(summary.Bills), len(wantOrder))
	}
	for i, id := range wantOrder {
		if summary.Bills[i].EventID != id {
			t.Errorf("bill %d = %s, want %s", i, summary.Bills[i].EventID, id)
		}
	}

	first := summary.Bills[0]
	if !first.IsUrgent || first.DayPlanTitle != "Movie Night" || first.PayerAccountDetails != "JazzCash 0300" {
		t.Errorf("unexpected first bill: %+v", first)
	}
	if last := summary.Bills[3]; last.HasDayPlan || last.IsUrgent {
		t.Errorf("orphaned bill should have no plan and not be urgent: %+v", last)
	}

	urgent := MyBills(events, plans, user, now, BillFilterUrgent)
	if len(urgent.Bills) != 1 || urgent.Bills[0].EventID != "e3" {
		t.Errorf("urgent filter returned %+v", urgent.Bills)
	}
	if urgent.TotalOwed != summary.TotalOwed {
		t.Errorf("filter must not change totals: %v vs %v", urgent.TotalOwed, summary.TotalOwed)
	}
}

func TestParseBillFilter(t *testing.T) {
	for in, want := range map[string]BillFilter{"": BillFilterAll, "all": BillFilterAll, "urgent": BillFilterUrgent} {
		got, err := ParseBillFilter(in)
		if err != nil || got != want {
			t.Errorf("ParseBillFilter(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseBillFilter("paid"); err == nil {
		t.Error("expected error for unsupported filter")
	}
}

func TestMyBills_TotalsIgnoreEventOrder(t *testing.T) {
	now := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	plans := PlansByID([]*models.DayPlan{{ID: "today", Title: "Lunch", Date: now}})
	user := Identity{DisplayName: "Sara"}
	events := []*models.Event{
		{ID: "a", DayPlanID: "today", TotalBill: 0.1, Attendees: []string{"Sara"}, Payer: "Ali"},
		{ID: "b", DayPlanID: "today", TotalBill: 0.2, Attendees: []string{"Sara"}, Payer: "Ali"},
		{ID: "c", DayPlanID: "today", TotalBill: 0.3, Attendees: []string{"Sara"}, Payer: "Ali"},
	}
	reversed := []*models.Event{events[2], events[1], events[0]}

	forward := MyBills(events, plans, user, now, BillFilterUrgent)
	backward := MyBills(reversed, plans, user, now, BillFilterUrgent)
	if forward.TotalOwed != backward.TotalOwed {
		t.Errorf("TotalOwed = %.17g vs %.17g", forward.TotalOwed, backward.TotalOwed)
	}
	if forward.UrgentTotal != backward.UrgentTotal {
		t.Errorf("UrgentTotal = %.17g vs %.17g", forward.UrgentTotal, backward.UrgentTotal)
	}
	if forward.UrgentCount != 3 {
		t.Errorf("UrgentCount = %d, want 3", forward.UrgentCount)
	}
}
