package api

// DateLayout is the wire format of plan dates.
const DateLayout = "2006-01-02"

type Member struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type DayPlan struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	OwnerEmail  string    `json:"owner_email"`
	Title       string    `json:"title"`
	Date        string    `json:"date"`
	Description string    `json:"description,omitempty"`
	Members     []*Member `json:"members"`
	CreatedAt   int64     `json:"created_at"`
	UpdatedAt   int64     `json:"updated_at"`
}

type RSVPSummary struct {
	Coming      int      `json:"coming"`
	Maybe       int      `json:"maybe"`
	NotComing   int      `json:"not_coming"`
	ComingNames []string `json:"coming_names"`
}

type MoneyStats struct {
	TotalPending        float64 `json:"total_pending"`
	CurrentUserOwes     float64 `json:"current_user_owes"`
	OwesTo              string  `json:"owes_to,omitempty"`
	PayerEmail          string  `json:"payer_email,omitempty"`
	PayerAccountDetails string  `json:"payer_account_details,omitempty"`
}

// PlanStats is the dashboard card of a plan, computed for the caller.
type PlanStats struct {
	EventCount int         `json:"event_count"`
	EventTypes []string    `json:"event_types"`
	RSVP       RSVPSummary `json:"rsvp"`
	Money      MoneyStats  `json:"money"`
}

// CreateDayPlanRequest creates a plan. Date is YYYY-MM-DD; empty means not
// decided yet. Members is a comma-separated list of names or emails.
type CreateDayPlanRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
	Members     string `json:"members,omitempty"`
}

type CreateDayPlanResponse struct {
	DayPlan *DayPlan `json:"day_plan"`
}

// UpdateDayPlanRequest changes the fields that are set.
type UpdateDayPlanRequest struct {
	DayPlanID   string  `json:"day_plan_id"`
	Title       *string `json:"title,omitempty"`
	Date        *string `json:"date,omitempty"`
	Description *string `json:"description,omitempty"`
	Members     *string `json:"members,omitempty"`
}

type UpdateDayPlanResponse struct {
	DayPlan *DayPlan `json:"day_plan"`
}

type GetDayPlanRequest struct {
	DayPlanID string `json:"day_plan_id"`
}

// GetDayPlanResponse carries the plan, its events ordered by time and the
// caller's stats for it. Polls counts the plan members' answers per event ID.
type GetDayPlanResponse struct {
	DayPlan *DayPlan                `json:"day_plan"`
	Events  []*Event                `json:"events"`
	Stats   *PlanStats              `json:"stats"`
	Polls   map[string]*RSVPSummary `json:"polls"`
}

type ListDayPlansRequest struct{}

type PlanSummary struct {
	DayPlan *DayPlan   `json:"day_plan"`
	Stats   *PlanStats `json:"stats"`
}

type ListDayPlansResponse struct {
	Plans []*PlanSummary `json:"plans"`
}
