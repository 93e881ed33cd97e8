package ledger

import (
	"slices"

	"github.com/mmynk/treatplanner/internal/models"
)

// Debt is a non-zero attribution tied to the event it came from.
type Debt struct {
	Event *models.Event
	Attribution
}

// Ledger is the aggregated debt of one user across events.
type Ledger struct {
	TotalOwed float64
	// Debts preserves the order of the input events.
	Debts []Debt
}

// Aggregate runs AttributeEvent over every event and sums what the user owes.
// The total is bit-for-bit the same for any event order.
func Aggregate(events []*models.Event, user Identity) Ledger {
	var l Ledger
	amounts := make([]float64, 0, len(events))
	for _, event := range events {
		a := AttributeEvent(event, user)
		if !a.IsDebtor {
			continue
		}
		amounts = append(amounts, a.AmountOwed)
		l.Debts = append(l.Debts, Debt{Event: event, Attribution: a})
	}
	l.TotalOwed = sum(amounts)
	return l
}

// sum adds amounts in ascending order so the result does not depend on the
// order they were collected in. amounts is sorted in place.
func sum(amounts []float64) float64 {
	slices.Sort(amounts)
	var total float64
	for _, v := range amounts {
		total += v
	}
	return total
}
