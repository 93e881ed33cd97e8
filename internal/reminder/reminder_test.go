package reminder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/treatplanner/internal/models"
	"github.com/mmynk/treatplanner/internal/storage/sqlite"
)

type recordingNotifier struct {
	digests []Digest
	fail    string
}

func (r *recordingNotifier) Notify(ctx context.Context, d Digest) error {
	if d.User.ID == r.fail {
		return errors.New("mailbox full")
	}
	r.digests = append(r.digests, d)
	return nil
}

func newTestJob(t *testing.T, notifier Notifier) (*Job, *sqlite.SQLiteStore) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "treatplanner-reminder-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	job := NewJob(store, notifier, time.UTC)
	job.now = func() time.Time { return time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC) }
	return job, store
}

func seed(t *testing.T, store *sqlite.SQLiteStore) {
	t.Helper()
	ctx := context.Background()

	for _, u := range []*models.UserProfile{
		models.NewUserProfile("u-sara", "Sara", "sara@example.com"),
		models.NewUserProfile("u-ali", "Ali", "ali@example.com"),
		models.NewUserProfile("u-omar", "Omar", "omar@example.com"),
	} {
		if _, _, err := store.EnsureUser(ctx, u); err != nil {
			t.Fatalf("EnsureUser failed: %v", err)
		}
	}

	today := &models.DayPlan{OwnerID: "u-sara", Title: "Today", Date: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)}
	later := &models.DayPlan{OwnerID: "u-sara", Title: "Later", Date: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)}
	for _, p := range []*models.DayPlan{today, later} {
		if err := store.CreateDayPlan(ctx, p); err != nil {
			t.Fatalf("CreateDayPlan failed: %v", err)
		}
	}

	for _, e := range []*models.Event{
		{DayPlanID: today.ID, Title: "Lunch", TotalBill: 600, Payer: "Sara", Attendees: []string{"Sara", "Ali", "Omar"}},
		{DayPlanID: later.ID, Title: "Dinner", TotalBill: 900, Payer: "Sara", Attendees: []string{"Sara", "Ali", "Omar"}},
		{DayPlanID: later.ID, Title: "Movie", TotalBill: 300, Payer: "Ali", Attendees: []string{"Ali", "Sara"}},
	} {
		if err := store.CreateEvent(ctx, e); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
	}
}

func TestDigests(t *testing.T) {
	job, store := newTestJob(t, &recordingNotifier{})
	seed(t, store)

	digests, err := job.Digests(context.Background())
	if err != nil {
		t.Fatalf("Digests failed: %v", err)
	}

	// Sara paid for Lunch and only owes for Movie, which is not urgent.
	if len(digests) != 2 {
		t.Fatalf("expected digests for Ali and Omar, got %d", len(digests))
	}
	for _, d := range digests {
		if d.User.ID == "u-sara" {
			t.Errorf("Sara should not get a digest")
		}
		if len(d.Bills) != 1 || d.Bills[0].EventTitle != "Lunch" {
			t.Errorf("%s: expected only Lunch, got %+v", d.User.ID, d.Bills)
		}
		if d.Total != 200 {
			t.Errorf("%s: total = %v, want 200", d.User.ID, d.Total)
		}
	}
}

func TestDigests_MatchLikeSignedInCaller(t *testing.T) {
	job, store := newTestJob(t, &recordingNotifier{})
	ctx := context.Background()

	for _, u := range []*models.UserProfile{
		models.NewUserProfile("u-anon", "", "x9@example.com"),
		models.NewUserProfile("u-hina", "Hina", "hina@example.com"),
	} {
		if _, _, err := store.EnsureUser(ctx, u); err != nil {
			t.Fatalf("EnsureUser failed: %v", err)
		}
	}
	// A later sign-in under a new name refreshes the stored profile.
	if _, _, err := store.EnsureUser(ctx, models.NewUserProfile("u-hina", "Hina Q", "hina@example.com")); err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}

	today := &models.DayPlan{OwnerID: "u-sara", Title: "Today", Date: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)}
	if err := store.CreateDayPlan(ctx, today); err != nil {
		t.Fatalf("CreateDayPlan failed: %v", err)
	}
	event := &models.Event{
		DayPlanID: today.ID, Title: "Chai", TotalBill: 300, Payer: "Sara",
		Attendees: []string{"Sara", models.AnonymousName, "Hina Q"},
	}
	if err := store.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	digests, err := job.Digests(ctx)
	if err != nil {
		t.Fatalf("Digests failed: %v", err)
	}
	if len(digests) != 1 || digests[0].User.ID != "u-hina" {
		t.Fatalf("expected one digest for the renamed user, got %+v", digests)
	}
	if digests[0].Total != 100 {
		t.Errorf("total = %v, want 100", digests[0].Total)
	}
}

func TestRun_ContinuesAfterFailure(t *testing.T) {
	notifier := &recordingNotifier{fail: "u-ali"}
	job, store := newTestJob(t, notifier)
	seed(t, store)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(notifier.digests) != 1 || notifier.digests[0].User.ID != "u-omar" {
		t.Errorf("expected Omar's digest to go out, got %+v", notifier.digests)
	}
}

func TestNewScheduler(t *testing.T) {
	job, _ := newTestJob(t, LogNotifier{Currency: "PKR"})

	if _, err := NewScheduler(job, "not a schedule", time.UTC); err == nil {
		t.Error("expected invalid schedule to fail")
	}

	s, err := NewScheduler(job, "0 8 * * *", time.UTC)
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}
	s.Start()
	defer s.Stop(context.Background())

	next := s.Next()
	if next.IsZero() || next.Hour() != 8 || next.Minute() != 0 {
		t.Errorf("unexpected next run %v", next)
	}
}
