package ledger

import (
	"fmt"
	"slices"
	"time"

	"github.com/mmynk/treatplanner/internal/models"
)

// BillDetail is one row of the bills page: a debt joined with its plan.
type BillDetail struct {
	DayPlanID    string
	DayPlanTitle string
	// DayPlanDate is zero when the plan no longer exists.
	DayPlanDate time.Time
	HasDayPlan  bool

	EventID    string
	EventTitle string
	EventType  models.EventType
	TotalBill  float64

	AmountOwed          float64
	PayerName           string
	PayerEmail          string
	PayerAccountDetails string

	// IsUrgent is set when the plan is dated today or tomorrow.
	IsUrgent bool
}

// BillFilter selects which bills a summary lists.
type BillFilter string

const (
	BillFilterAll    BillFilter = "all"
	BillFilterUrgent BillFilter = "urgent"
)

// ParseBillFilter validates a filter name. Empty means all.
func ParseBillFilter(s string) (BillFilter, error) {
	switch f := BillFilter(s); f {
	case "", BillFilterAll:
		return BillFilterAll, nil
	case BillFilterUrgent:
		return f, nil
	default:
		return "", fmt.Errorf("unknown bill filter %q", s)
	}
}

// BillsSummary is everything the bills page shows for one user.
type BillsSummary struct {
	// TotalOwed and UrgentTotal cover all bills regardless of filter.
	TotalOwed   float64
	UrgentTotal float64
	UrgentCount int
	Bills       []BillDetail
}

// MyBills lists what the user owes, urgent bills first and then by plan date.
// Bills whose plan is missing are kept and sorted last.
func MyBills(events []*models.Event, plans map[string]*models.DayPlan, user Identity, now time.Time, filter BillFilter) BillsSummary {
	l := Aggregate(events, user)

	bills := make([]BillDetail, 0, len(l.Debts))
	for _, debt := range l.Debts {
		bills = append(bills, billDetail(debt, plans[debt.Event.DayPlanID], now))
	}
	SortBills(bills)

	summary := BillsSummary{TotalOwed: l.TotalOwed}
	var urgent []float64
	for _, b := range bills {
		if b.IsUrgent {
			urgent = append(urgent, b.AmountOwed)
			summary.UrgentCount++
		}
		if filter == BillFilterUrgent && !b.IsUrgent {
			continue
		}
		summary.Bills = append(summary.Bills, b)
	}
	summary.UrgentTotal = sum(urgent)
	return summary
}

func billDetail(debt Debt, plan *models.DayPlan, now time.Time) BillDetail {
	b := BillDetail{
		DayPlanID:           debt.Event.DayPlanID,
		EventID:             debt.Event.ID,
		EventTitle:          debt.Event.Title,
		EventType:           debt.Event.Type,
		TotalBill:           debt.Event.TotalBill,
		AmountOwed:          debt.AmountOwed,
		PayerName:           debt.PayerName,
		PayerEmail:          debt.PayerEmail,
		PayerAccountDetails: debt.PayerAccountDetails,
	}
	if plan != nil {
		b.HasDayPlan = true
		b.DayPlanTitle = plan.Title
		b.DayPlanDate = plan.Date
		b.IsUrgent = IsUrgent(plan.Date, now)
	}
	return b
}

// SortBills orders bills urgent first, then by plan date ascending, with bills
// lacking a plan last. Ties keep their input order.
func SortBills(bills []BillDetail) {
	slices.SortStableFunc(bills, func(a, b BillDetail) int {
		if a.IsUrgent != b.IsUrgent {
			if a.IsUrgent {
				return -1
			}
			return 1
		}
		if a.HasDayPlan != b.HasDayPlan {
			if a.HasDayPlan {
				return -1
			}
			return 1
		}
		return a.DayPlanDate.Compare(b.DayPlanDate)
	})
}
