package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/treatplanner/internal/models"
	"github.com/mmynk/treatplanner/internal/storage"
)

const eventColumns = `id, day_plan_id, owner_id, owner_email, title, type, date_time,
	location, location_url, notes, total_bill, payer, payer_email, payer_account_details,
	created_at, updated_at`

// CreateEvent persists a new event with its attendees and RSVPs.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Type == "" {
		event.Type = models.EventTypeOther
	}
	now := s.now().Unix()
	if event.CreatedAt == 0 {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO events ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		event.ID, event.DayPlanID, event.OwnerID, event.OwnerEmail, event.Title, string(event.Type),
		nullableUnix(event.DateTime), event.Location, event.LocationURL, event.Notes,
		event.TotalBill, event.Payer, event.PayerEmail, event.PayerAccountDetails,
		event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	if err := insertAttendees(ctx, tx, event.ID, event.Attendees); err != nil {
		return err
	}
	for member, status := range event.RSVPs {
		if err := upsertRSVP(ctx, tx, event.ID, member, status); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.notifyEvent(event.DayPlanID, event.OwnerEmail)
	return nil
}

func insertAttendees(ctx context.Context, tx *sql.Tx, eventID string, attendees []string) error {
	for i, name := range attendees {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO event_attendees (event_id, position, name) VALUES (?, ?, ?)",
			eventID, i, name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert attendee: %w", err)
		}
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertRSVP(ctx context.Context, db execer, eventID, member string, status models.RSVPStatus) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO event_rsvps (event_id, member, status) VALUES (?, ?, ?)
		ON CONFLICT (event_id, member) DO UPDATE SET status = excluded.status`,
		eventID, member, string(status),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert rsvp: %w", err)
	}
	return nil
}

// GetEvent retrieves an event by ID with attendees and RSVPs.
func (s *SQLiteStore) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	events, err := s.queryEvents(ctx, "WHERE id = ?", eventID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("event %s: %w", eventID, storage.ErrNotFound)
	}
	return events[0], nil
}

// ListEvents returns events matching q. Events without a date/time sort last.
func (s *SQLiteStore) ListEvents(ctx context.Context, q storage.EventQuery) ([]*models.Event, error) {
	var where []string
	var args []any
	if q.DayPlanID != "" {
		where = append(where, "day_plan_id = ?")
		args = append(args, q.DayPlanID)
	}
	if len(q.OwnerEmails) > 0 {
		emails := make([]string, len(q.OwnerEmails))
		for i, e := range q.OwnerEmails {
			emails[i] = strings.ToLower(e)
		}
		in, inArgs := inClause(emails)
		where = append(where, "lower(owner_email) IN "+in)
		args = append(args, inArgs...)
	}

	suffix := ""
	if len(where) > 0 {
		suffix = "WHERE " + strings.Join(where, " AND ") + " "
	}
	if q.Descending {
		suffix += "ORDER BY date_time IS NULL, date_time DESC, created_at DESC"
	} else {
		suffix += "ORDER BY date_time IS NULL, date_time ASC, created_at ASC"
	}
	return s.queryEvents(ctx, suffix, args...)
}

// UpdateEvent applies the non-nil patch fields.
func (s *SQLiteStore) UpdateEvent(ctx context.Context, eventID string, patch storage.EventPatch) (*models.Event, error) {
	sets := []string{"updated_at = ?"}
	args := []any{s.now().Unix()}
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Type != nil {
		set("type", string(*patch.Type))
	}
	if patch.DateTime != nil {
		set("date_time", patch.DateTime.Unix())
	}
	if patch.Location != nil {
		set("location", *patch.Location)
	}
	if patch.LocationURL != nil {
		set("location_url", *patch.LocationURL)
	}
	if patch.Notes != nil {
		set("notes", *patch.Notes)
	}
	if patch.TotalBill != nil {
		set("total_bill", *patch.TotalBill)
	}
	if patch.Payer != nil {
		set("payer", *patch.Payer)
	}
	if patch.PayerEmail != nil {
		set("payer_email", *patch.PayerEmail)
	}
	if patch.PayerAccountDetails != nil {
		set("payer_account_details", *patch.PayerAccountDetails)
	}
	args = append(args, eventID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var dayPlanID, ownerEmail string
	err = tx.QueryRowContext(ctx,
		"UPDATE events SET "+strings.Join(sets, ", ")+" WHERE id = ? RETURNING day_plan_id, owner_email",
		args...,
	).Scan(&dayPlanID, &ownerEmail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", eventID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	if patch.Attendees != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM event_attendees WHERE event_id = ?", eventID); err != nil {
			return nil, fmt.Errorf("failed to clear attendees: %w", err)
		}
		if err := insertAttendees(ctx, tx, eventID, *patch.Attendees); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.notifyEvent(dayPlanID, ownerEmail)
	return s.GetEvent(ctx, eventID)
}

// UpdateRSVP records one member's answer, replacing any earlier one.
func (s *SQLiteStore) UpdateRSVP(ctx context.Context, eventID, member string, status models.RSVPStatus) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	dayPlanID, ownerEmail, err := touchEvent(ctx, tx, eventID, s.now().Unix())
	if err != nil {
		return err
	}
	if err := upsertRSVP(ctx, tx, eventID, member, status); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.notifyEvent(dayPlanID, ownerEmail)
	return nil
}

// UpdateBill sets the event's bill total.
func (s *SQLiteStore) UpdateBill(ctx context.Context, eventID string, totalBill float64) error {
	var dayPlanID, ownerEmail string
	err := s.db.QueryRowContext(ctx,
		"UPDATE events SET total_bill = ?, updated_at = ? WHERE id = ? RETURNING day_plan_id, owner_email",
		totalBill, s.now().Unix(), eventID,
	).Scan(&dayPlanID, &ownerEmail)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("event %s: %w", eventID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}

	s.notifyEvent(dayPlanID, ownerEmail)
	return nil
}

// touchEvent bumps updated_at and reports the fields needed for notification.
func touchEvent(ctx context.Context, tx *sql.Tx, eventID string, now int64) (dayPlanID, ownerEmail string, err error) {
	err = tx.QueryRowContext(ctx,
		"UPDATE events SET updated_at = ? WHERE id = ? RETURNING day_plan_id, owner_email",
		now, eventID,
	).Scan(&dayPlanID, &ownerEmail)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", fmt.Errorf("event %s: %w", eventID, storage.ErrNotFound)
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to touch event: %w", err)
	}
	return dayPlanID, ownerEmail, nil
}

// queryEvents loads events selected by the given SQL suffix, then their
// attendees and RSVPs.
func (s *SQLiteStore) queryEvents(ctx context.Context, suffix string, args ...any) ([]*models.Event, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+eventColumns+" FROM events "+suffix, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	byID := make(map[string]*models.Event)
	for rows.Next() {
		event := &models.Event{RSVPs: make(map[string]models.RSVPStatus)}
		var eventType string
		var dateTime sql.NullInt64
		if err := rows.Scan(
			&event.ID, &event.DayPlanID, &event.OwnerID, &event.OwnerEmail, &event.Title, &eventType,
			&dateTime, &event.Location, &event.LocationURL, &event.Notes,
			&event.TotalBill, &event.Payer, &event.PayerEmail, &event.PayerAccountDetails,
			&event.CreatedAt, &event.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Type = models.EventType(eventType)
		if dateTime.Valid {
			t := unixTime(dateTime.Int64)
			event.DateTime = &t
		}
		events = append(events, event)
		byID[event.ID] = event
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	rows.Close()

	if len(events) == 0 {
		return events, nil
	}

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	if err := s.loadAttendees(ctx, ids, byID); err != nil {
		return nil, err
	}
	if err := s.loadRSVPs(ctx, ids, byID); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *SQLiteStore) loadAttendees(ctx context.Context, ids []string, byID map[string]*models.Event) error {
	in, args := inClause(ids)
	rows, err := s.db.QueryContext(ctx,
		"SELECT event_id, name FROM event_attendees WHERE event_id IN "+in+" ORDER BY event_id, position",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to get attendees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, name string
		if err := rows.Scan(&eventID, &name); err != nil {
			return fmt.Errorf("failed to scan attendee: %w", err)
		}
		if event, ok := byID[eventID]; ok {
			event.Attendees = append(event.Attendees, name)
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) loadRSVPs(ctx context.Context, ids []string, byID map[string]*models.Event) error {
	in, args := inClause(ids)
	rows, err := s.db.QueryContext(ctx,
		"SELECT event_id, member, status FROM event_rsvps WHERE event_id IN "+in,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to get rsvps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, member, status string
		if err := rows.Scan(&eventID, &member, &status); err != nil {
			return fmt.Errorf("failed to scan rsvp: %w", err)
		}
		if event, ok := byID[eventID]; ok {
			event.RSVPs[member] = models.RSVPStatus(status)
		}
	}
	return rows.Err()
}

func nullableUnix(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}
