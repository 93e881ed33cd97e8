package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/treatplanner/internal/models"
	"github.com/mmynk/treatplanner/internal/storage"
)

const planColumns = "id, owner_id, owner_email, title, date, description, created_at, updated_at"

// CreateDayPlan persists a new plan and its member list.
func (s *SQLiteStore) CreateDayPlan(ctx context.Context, plan *models.DayPlan) error {
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	now := s.now().Unix()
	if plan.CreatedAt == 0 {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO day_plans ("+planColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		plan.ID, plan.OwnerID, plan.OwnerEmail, plan.Title, plan.Date.Unix(), plan.Description,
		plan.CreatedAt, plan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert day plan: %w", err)
	}

	if err := insertMembers(ctx, tx, plan.ID, plan.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.notifyPlan(plan.OwnerID)
	return nil
}

func insertMembers(ctx context.Context, tx *sql.Tx, planID string, members []models.Member) error {
	for i, m := range members {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO plan_members (plan_id, position, name, email) VALUES (?, ?, ?, ?)",
			planID, i, m.Name, m.Email,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}
	return nil
}

// GetDayPlan retrieves a plan by ID, including its members.
func (s *SQLiteStore) GetDayPlan(ctx context.Context, planID string) (*models.DayPlan, error) {
	plans, err := s.queryPlans(ctx, "WHERE id = ?", planID)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("day plan %s: %w", planID, storage.ErrNotFound)
	}
	return plans[0], nil
}

// ListDayPlans returns plans matching q, newest date first.
func (s *SQLiteStore) ListDayPlans(ctx context.Context, q storage.DayPlanQuery) ([]*models.DayPlan, error) {
	if q.OwnerID != "" {
		return s.queryPlans(ctx, "WHERE owner_id = ? ORDER BY date DESC, created_at DESC", q.OwnerID)
	}
	return s.queryPlans(ctx, "ORDER BY date DESC, created_at DESC")
}

// UpdateDayPlan applies the non-nil patch fields.
func (s *SQLiteStore) UpdateDayPlan(ctx context.Context, planID string, patch storage.DayPlanPatch) (*models.DayPlan, error) {
	sets := []string{"updated_at = ?"}
	args := []any{s.now().Unix()}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, patch.Date.Unix())
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	args = append(args, planID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ownerID string
	err = tx.QueryRowContext(ctx,
		"UPDATE day_plans SET "+strings.Join(sets, ", ")+" WHERE id = ? RETURNING owner_id",
		args...,
	).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("day plan %s: %w", planID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update day plan: %w", err)
	}

	if patch.Members != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM plan_members WHERE plan_id = ?", planID); err != nil {
			return nil, fmt.Errorf("failed to clear members: %w", err)
		}
		if err := insertMembers(ctx, tx, planID, *patch.Members); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.notifyPlan(ownerID)
	return s.GetDayPlan(ctx, planID)
}

// queryPlans loads plans selected by the given SQL suffix, then their members.
func (s *SQLiteStore) queryPlans(ctx context.Context, suffix string, args ...any) ([]*models.DayPlan, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+planColumns+" FROM day_plans "+suffix, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query day plans: %w", err)
	}
	defer rows.Close()

	var plans []*models.DayPlan
	byID := make(map[string]*models.DayPlan)
	for rows.Next() {
		plan := &models.DayPlan{}
		var date int64
		if err := rows.Scan(&plan.ID, &plan.OwnerID, &plan.OwnerEmail, &plan.Title, &date,
			&plan.Description, &plan.CreatedAt, &plan.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan day plan: %w", err)
		}
		plan.Date = unixTime(date)
		plans = append(plans, plan)
		byID[plan.ID] = plan
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate day plans: %w", err)
	}
	rows.Close()

	if len(plans) == 0 {
		return plans, nil
	}

	ids := make([]string, len(plans))
	for i, p := range plans {
		ids[i] = p.ID
	}
	in, inArgs := inClause(ids)
	memberRows, err := s.db.QueryContext(ctx,
		"SELECT plan_id, name, email FROM plan_members WHERE plan_id IN "+in+" ORDER BY plan_id, position",
		inArgs...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var planID string
		var m models.Member
		if err := memberRows.Scan(&planID, &m.Name, &m.Email); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		if plan, ok := byID[planID]; ok {
			plan.Members = append(plan.Members, m)
		}
	}
	if err := memberRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return plans, nil
}
