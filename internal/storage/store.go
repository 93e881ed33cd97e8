// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/treatplanner/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// DayPlanQuery selects day plans. Results are ordered by date, newest first.
type DayPlanQuery struct {
	// OwnerID limits results to one owner. Empty selects every plan.
	OwnerID string
}

// EventQuery selects events. Results are ordered by date/time ascending
// unless Descending is set.
type EventQuery struct {
	// DayPlanID limits results to one plan. Empty selects every plan.
	DayPlanID string

	// OwnerEmails limits results to events created by these emails
	// (case-insensitive). Empty means any owner.
	OwnerEmails []string

	Descending bool
}

// DayPlanPatch lists the plan fields to change. Nil fields are left untouched.
type DayPlanPatch struct {
	Title       *string
	Date        *time.Time
	Description *string
	Members     *[]models.Member
}

// EventPatch lists the event fields to change. Nil fields are left untouched.
type EventPatch struct {
	Title               *string
	Type                *models.EventType
	DateTime            *time.Time
	Location            *string
	LocationURL         *string
	Notes               *string
	TotalBill           *float64
	Payer               *string
	PayerEmail          *string
	PayerAccountDetails *string
	Attendees           *[]string
}

// Store defines the document-store operations the service relies on.
// Writes are single-record and last-writer-wins; there is no conflict detection
// between concurrent edits of the same event.
type Store interface {
	// CreateDayPlan persists a new plan. ID, CreatedAt and UpdatedAt are populated by the store.
	CreateDayPlan(ctx context.Context, plan *models.DayPlan) error

	// GetDayPlan returns ErrNotFound when the plan does not exist.
	GetDayPlan(ctx context.Context, planID string) (*models.DayPlan, error)

	ListDayPlans(ctx context.Context, q DayPlanQuery) ([]*models.DayPlan, error)

	// UpdateDayPlan applies a partial update and returns the updated plan.
	UpdateDayPlan(ctx context.Context, planID string, patch DayPlanPatch) (*models.DayPlan, error)

	// CreateEvent persists a new event. ID, CreatedAt and UpdatedAt are populated by the store.
	CreateEvent(ctx context.Context, event *models.Event) error

	// GetEvent returns ErrNotFound when the event does not exist.
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)

	ListEvents(ctx context.Context, q EventQuery) ([]*models.Event, error)

	// UpdateEvent applies a partial update and returns the updated event.
	UpdateEvent(ctx context.Context, eventID string, patch EventPatch) (*models.Event, error)

	// UpdateRSVP records one member's poll answer.
	UpdateRSVP(ctx context.Context, eventID, member string, status models.RSVPStatus) error

	// UpdateBill sets the event's bill total.
	UpdateBill(ctx context.Context, eventID string, totalBill float64) error

	// EnsureUser creates the profile on first sight and returns the stored one.
	// An existing profile takes the supplied display name and email when those
	// are present; its creation time is kept. created reports whether this call
	// inserted it.
	EnsureUser(ctx context.Context, profile *models.UserProfile) (stored *models.UserProfile, created bool, err error)

	// GetUser returns ErrNotFound when the profile does not exist.
	GetUser(ctx context.Context, userID string) (*models.UserProfile, error)

	ListUsers(ctx context.Context) ([]*models.UserProfile, error)

	// SubscribeEvents delivers the current snapshot for q and a fresh snapshot
	// after every write that may change it. The returned func stops delivery.
	SubscribeEvents(q EventQuery, fn func([]*models.Event)) (unsubscribe func())

	// SubscribeDayPlans is the day-plan counterpart of SubscribeEvents.
	SubscribeDayPlans(q DayPlanQuery, fn func([]*models.DayPlan)) (unsubscribe func())

	// Close releases any resources held by the store.
	Close() error
}
