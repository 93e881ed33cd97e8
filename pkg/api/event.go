package api

import "time"

type Event struct {
	ID                  string            `json:"id"`
	DayPlanID           string            `json:"day_plan_id"`
	OwnerID             string            `json:"owner_id"`
	OwnerEmail          string            `json:"owner_email"`
	Title               string            `json:"title"`
	Type                string            `json:"type"`
	DateTime            *time.Time        `json:"date_time,omitempty"`
	Location            string            `json:"location,omitempty"`
	LocationURL         string            `json:"location_url,omitempty"`
	Notes               string            `json:"notes,omitempty"`
	TotalBill           float64           `json:"total_bill"`
	Payer               string            `json:"payer,omitempty"`
	PayerEmail          string            `json:"payer_email,omitempty"`
	PayerAccountDetails string            `json:"payer_account_details,omitempty"`
	Attendees           []string          `json:"attendees"`
	RSVPs               map[string]string `json:"rsvps"`
	// PerPersonShare is TotalBill split across Attendees.
	PerPersonShare float64 `json:"per_person_share"`
	CreatedAt      int64   `json:"created_at"`
	UpdatedAt      int64   `json:"updated_at"`
}

// CreateEventRequest adds a treat to a plan. When Attendees is empty the plan
// members who answered yes on the plan's existing events are used.
type CreateEventRequest struct {
	DayPlanID           string     `json:"day_plan_id"`
	Title               string     `json:"title"`
	Type                string     `json:"type,omitempty"`
	DateTime            *time.Time `json:"date_time,omitempty"`
	Location            string     `json:"location,omitempty"`
	LocationURL         string     `json:"location_url,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	TotalBill           float64    `json:"total_bill,omitempty"`
	Payer               string     `json:"payer,omitempty"`
	PayerEmail          string     `json:"payer_email,omitempty"`
	PayerAccountDetails string     `json:"payer_account_details,omitempty"`
	Attendees           []string   `json:"attendees,omitempty"`
}

type CreateEventResponse struct {
	Event *Event `json:"event"`
}

// UpdateEventRequest changes the fields that are set.
type UpdateEventRequest struct {
	EventID             string     `json:"event_id"`
	Title               *string    `json:"title,omitempty"`
	Type                *string    `json:"type,omitempty"`
	DateTime            *time.Time `json:"date_time,omitempty"`
	Location            *string    `json:"location,omitempty"`
	LocationURL         *string    `json:"location_url,omitempty"`
	Notes               *string    `json:"notes,omitempty"`
	TotalBill           *float64   `json:"total_bill,omitempty"`
	Payer               *string    `json:"payer,omitempty"`
	PayerEmail          *string    `json:"payer_email,omitempty"`
	PayerAccountDetails *string    `json:"payer_account_details,omitempty"`
	Attendees           *[]string  `json:"attendees,omitempty"`
}

type UpdateEventResponse struct {
	Event *Event `json:"event"`
}

type UpdateRSVPRequest struct {
	EventID string `json:"event_id"`
	Member  string `json:"member"`
	Status  string `json:"status"`
}

type UpdateRSVPResponse struct {
	Event *Event `json:"event"`
}

type UpdateBillRequest struct {
	EventID   string  `json:"event_id"`
	TotalBill float64 `json:"total_bill"`
}

type UpdateBillResponse struct {
	Event *Event `json:"event"`
}

type ListEventsRequest struct {
	DayPlanID string `json:"day_plan_id"`
}

type ListEventsResponse struct {
	Events []*Event `json:"events"`
}

type ListAllTreatsRequest struct{}

type ListAllTreatsResponse struct {
	Events []*Event `json:"events"`
}

type WatchEventsRequest struct {
	DayPlanID string `json:"day_plan_id"`
}

// WatchEventsResponse is one snapshot of a plan's events.
type WatchEventsResponse struct {
	Events []*Event `json:"events"`
}
