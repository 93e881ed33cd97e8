// Package reminder periodically tells users about bills that are due today or tomorrow.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mmynk/treatplanner/internal/ledger"
	"github.com/mmynk/treatplanner/internal/models"
	"github.com/mmynk/treatplanner/internal/storage"
)

// Digest lists one user's urgent bills.
type Digest struct {
	User  *models.UserProfile
	Total float64
	Bills []ledger.BillDetail
}

// Notifier delivers a digest to its user.
type Notifier interface {
	Notify(ctx context.Context, d Digest) error
}

// LogNotifier writes digests to the structured log.
type LogNotifier struct {
	Currency string
}

// Notify implements Notifier.
func (n LogNotifier) Notify(ctx context.Context, d Digest) error {
	for _, b := range d.Bills {
		slog.Info("Urgent bill",
			"user_id", d.User.ID,
			"event_id", b.EventID,
			"event", b.EventTitle,
			"amount", ledger.FormatShare(n.Currency, b.AmountOwed),
			"payer", b.PayerName,
			"plan_date", b.DayPlanDate.Format(time.DateOnly),
		)
	}
	slog.Info("Reminder digest",
		"user_id", d.User.ID,
		"email", d.User.Email,
		"bills_count", len(d.Bills),
		"total", ledger.FormatAmount(n.Currency, d.Total),
	)
	return nil
}

// Job computes urgent-bill digests for every known user.
type Job struct {
	store    storage.Store
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
}

// NewJob creates a Job. loc decides which calendar day is "today".
func NewJob(store storage.Store, notifier Notifier, loc *time.Location) *Job {
	return &Job{store: store, notifier: notifier, loc: loc, now: time.Now}
}

// Digests returns one digest per user who owes at least one urgent bill.
func (j *Job) Digests(ctx context.Context) ([]Digest, error) {
	users, err := j.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	events, err := j.store.ListEvents(ctx, storage.EventQuery{})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	plans, err := j.store.ListDayPlans(ctx, storage.DayPlanQuery{})
	if err != nil {
		return nil, fmt.Errorf("failed to list day plans: %w", err)
	}

	byID := ledger.PlansByID(plans)
	now := j.now().In(j.loc)

	var digests []Digest
	for _, u := range users {
		summary := ledger.MyBills(events, byID, identityOf(u), now, ledger.BillFilterUrgent)
		if len(summary.Bills) == 0 {
			continue
		}
		digests = append(digests, Digest{User: u, Total: summary.UrgentTotal, Bills: summary.Bills})
	}
	return digests, nil
}

// identityOf matches the way the API matches a signed-in caller: a profile
// stored without a provider name has no display name to match on.
func identityOf(u *models.UserProfile) ledger.Identity {
	id := ledger.Identity{Email: u.Email}
	if u.HasName() {
		id.DisplayName = u.DisplayName
	}
	return id
}

// Run sends every digest. A failed notification is logged and the rest still go out.
func (j *Job) Run(ctx context.Context) error {
	start := time.Now()
	digests, err := j.Digests(ctx)
	if err != nil {
		return err
	}

	sent := 0
	for _, d := range digests {
		if err := j.notifier.Notify(ctx, d); err != nil {
			slog.Error("Failed to send reminder", "user_id", d.User.ID, "error", err)
			continue
		}
		sent++
	}

	slog.Info("Reminder run finished",
		"digests", len(digests),
		"sent", sent,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Scheduler runs a Job on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers job on schedule (standard five-field cron syntax) in loc.
func NewScheduler(job *Job, schedule string, loc *time.Location) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := job.Run(ctx); err != nil {
			slog.Error("Reminder run failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	return &Scheduler{cron: c}, nil
}

// Start begins running the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("Reminder scheduler started", "next_run", s.Next())
}

// Next returns the next scheduled run, or zero if none.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop halts the schedule and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		slog.Warn("Reminder run still in progress at shutdown")
	}
}
