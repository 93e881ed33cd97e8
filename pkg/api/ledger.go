package api

type GetOwedTotalRequest struct{}

// GetOwedTotalResponse is the header badge.
type GetOwedTotalResponse struct {
	TotalOwed        float64 `json:"total_owed"`
	Formatted        string  `json:"formatted"`
	Badge            string  `json:"badge"`
	UnscheduledCount int     `json:"unscheduled_count"`
}

// GetMyBillsRequest selects "all" (default) or "urgent" bills.
type GetMyBillsRequest struct {
	Filter string `json:"filter,omitempty"`
}

type Bill struct {
	DayPlanID           string  `json:"day_plan_id"`
	DayPlanTitle        string  `json:"day_plan_title,omitempty"`
	DayPlanDate         string  `json:"day_plan_date,omitempty"`
	HasDayPlan          bool    `json:"has_day_plan"`
	EventID             string  `json:"event_id"`
	EventTitle          string  `json:"event_title"`
	EventType           string  `json:"event_type"`
	TotalBill           float64 `json:"total_bill"`
	AmountOwed          float64 `json:"amount_owed"`
	PayerName           string  `json:"payer_name"`
	PayerEmail          string  `json:"payer_email,omitempty"`
	PayerAccountDetails string  `json:"payer_account_details,omitempty"`
	IsUrgent            bool    `json:"is_urgent"`
}

type GetMyBillsResponse struct {
	TotalOwed   float64 `json:"total_owed"`
	UrgentTotal float64 `json:"urgent_total"`
	UrgentCount int     `json:"urgent_count"`
	Bills       []*Bill `json:"bills"`
}

type ListUnscheduledEventsRequest struct{}

type ListUnscheduledEventsResponse struct {
	Events []*Event `json:"events"`
}
