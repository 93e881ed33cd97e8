package ledger

import "github.com/mmynk/treatplanner/internal/models"

// unknownPayer is shown when a billed event has no payer recorded.
const unknownPayer = "Unknown"

// Attribution is one user's share of one event's bill.
type Attribution struct {
	IsDebtor            bool
	AmountOwed          float64
	PayerName           string
	PayerEmail          string
	PayerAccountDetails string
}

// PerPersonShare splits a bill equally among attendees.
// It returns 0 when there is no bill or nobody to split it with.
func PerPersonShare(totalBill float64, attendees int) float64 {
	if totalBill <= 0 || attendees <= 0 {
		return 0
	}
	return totalBill / float64(attendees)
}

// SplitShare is PerPersonShare over an attendee list.
func SplitShare(totalBill float64, attendees []string) float64 {
	return PerPersonShare(totalBill, len(attendees))
}

// IsPayer reports whether the user fronted the event's bill, either by name
// (display name or email local part) or by exact payer email.
func IsPayer(event *models.Event, user Identity) bool {
	return Matches(event.Payer, user) || matchesEmail(event.PayerEmail, user)
}

// IsAttendee reports whether any attendee entry refers to the user.
func IsAttendee(event *models.Event, user Identity) bool {
	for _, a := range event.Attendees {
		if Matches(a, user) {
			return true
		}
	}
	return false
}

// AttributeEvent computes what the user owes for a single event.
//
// The user owes an equal share when they are an attendee, the share is
// positive, and they are not the payer. The payer never owes for their own
// event, even when listed as an attendee. Attendee entries are not
// deduplicated: a repeated name still counts towards the divisor.
func AttributeEvent(event *models.Event, user Identity) Attribution {
	perPerson := PerPersonShare(event.TotalBill, len(event.Attendees))
	if perPerson <= 0 {
		return Attribution{}
	}
	if IsPayer(event, user) || !IsAttendee(event, user) {
		return Attribution{}
	}

	payer := event.Payer
	if payer == "" {
		payer = unknownPayer
	}
	return Attribution{
		IsDebtor:            true,
		AmountOwed:          perPerson,
		PayerName:           payer,
		PayerEmail:          event.PayerEmail,
		PayerAccountDetails: event.PayerAccountDetails,
	}
}
