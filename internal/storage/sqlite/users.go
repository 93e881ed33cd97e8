package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/treatplanner/internal/models"
	"github.com/mmynk/treatplanner/internal/storage"
)

const userColumns = "id, display_name, email, photo_url, created_at"

// EnsureUser inserts the profile unless one with the same ID exists.
// An existing profile is refreshed with the supplied name and email, skipping
// blank ones, so a sign-in without a name never erases a known one.
func (s *SQLiteStore) EnsureUser(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, bool, error) {
	if profile.CreatedAt == 0 {
		profile.CreatedAt = s.now().Unix()
	}
	displayName := profile.DisplayName
	if displayName == "" {
		displayName = models.AnonymousName
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?) ON CONFLICT (id) DO NOTHING",
		profile.ID, displayName, profile.Email, profile.PhotoURL, profile.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to check user insert: %w", err)
	}

	if n == 0 {
		var newName string
		if profile.HasName() {
			newName = profile.DisplayName
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE users SET
				display_name = CASE WHEN ? = '' THEN display_name ELSE ? END,
				email = CASE WHEN ? = '' THEN email ELSE ? END
			WHERE id = ?`,
			newName, newName, profile.Email, profile.Email, profile.ID,
		)
		if err != nil {
			return nil, false, fmt.Errorf("failed to refresh user: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	stored, err := s.GetUser(ctx, profile.ID)
	if err != nil {
		return nil, false, err
	}
	return stored, n > 0, nil
}

// GetUser retrieves a user by their ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*models.UserProfile, error) {
	user := &models.UserProfile{}
	err := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", userID,
	).Scan(&user.ID, &user.DisplayName, &user.Email, &user.PhotoURL, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// ListUsers returns every known profile ordered by display name.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*models.UserProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY display_name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.UserProfile
	for rows.Next() {
		user := &models.UserProfile{}
		if err := rows.Scan(&user.ID, &user.DisplayName, &user.Email, &user.PhotoURL, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
