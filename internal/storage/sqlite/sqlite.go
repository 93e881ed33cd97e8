// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/treatplanner/internal/models"
	"github.com/mmynk/treatplanner/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// connection pragmas are applied by the driver to every pooled connection.
const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// SQLiteStore implements storage.Store using SQLite.
// Change notifications are delivered in-process through storage.Feed.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time

	eventFeed *storage.Feed[storage.EventQuery, *models.Event]
	planFeed  *storage.Feed[storage.DayPlanQuery, *models.DayPlan]
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?"+pragmas)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	s.eventFeed = storage.NewFeed[storage.EventQuery, *models.Event](s.ListEvents)
	s.planFeed = storage.NewFeed[storage.DayPlanQuery, *models.DayPlan](s.ListDayPlans)
	return s, nil
}

// Close stops all subscriptions and closes the database connection.
func (s *SQLiteStore) Close() error {
	s.eventFeed.Close()
	s.planFeed.Close()
	return s.db.Close()
}

// SubscribeEvents implements storage.Store.
func (s *SQLiteStore) SubscribeEvents(q storage.EventQuery, fn func([]*models.Event)) func() {
	return s.eventFeed.Subscribe(q, fn)
}

// SubscribeDayPlans implements storage.Store.
func (s *SQLiteStore) SubscribeDayPlans(q storage.DayPlanQuery, fn func([]*models.DayPlan)) func() {
	return s.planFeed.Subscribe(q, fn)
}

// notifyEvent wakes event subscriptions that may include an event of the given plan
// created by ownerEmail.
func (s *SQLiteStore) notifyEvent(dayPlanID, ownerEmail string) {
	s.eventFeed.Notify(func(q storage.EventQuery) bool {
		if q.DayPlanID != "" && q.DayPlanID != dayPlanID {
			return false
		}
		if len(q.OwnerEmails) > 0 && !slices.ContainsFunc(q.OwnerEmails, func(e string) bool {
			return strings.EqualFold(e, ownerEmail)
		}) {
			return false
		}
		return true
	})
}

// notifyPlan wakes plan subscriptions that may include a plan of ownerID.
func (s *SQLiteStore) notifyPlan(ownerID string) {
	s.planFeed.Notify(func(q storage.DayPlanQuery) bool {
		return q.OwnerID == "" || q.OwnerID == ownerID
	})
}

// repeatPlaceholder returns a string of ", ?" repeated n times.
// Used for building IN clauses with multiple placeholders.
func repeatPlaceholder(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(", ?", n)
}

// inClause returns "(?, ?, ...)" for n values and the values as query args.
func inClause(values []string) (string, []any) {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return "(?" + repeatPlaceholder(len(values)-1) + ")", args
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
