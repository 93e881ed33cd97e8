package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"connectrpc.com/connect"

	"github.com/mmynk/treatplanner/internal/auth"
	"github.com/mmynk/treatplanner/internal/ledger"
	"github.com/mmynk/treatplanner/internal/middleware"
	"github.com/mmynk/treatplanner/internal/models"
	"github.com/mmynk/treatplanner/internal/storage"
)

// Caller is the signed-in user of the current request.
type Caller struct {
	auth.Identity
	Authorized bool
}

// Ledger returns the identity the debt ledger matches on.
func (c Caller) Ledger() ledger.Identity {
	return ledger.Identity{DisplayName: c.DisplayName, Email: c.Email}
}

// Access resolves request callers and keeps their stored profile in step with
// the name and email their token carries.
type Access struct {
	store      storage.Store
	authorizer *auth.Authorizer

	// known maps user IDs to the auth.Identity last written to the store.
	known sync.Map
}

// NewAccess creates an Access backed by store and the given allow-list.
func NewAccess(store storage.Store, authorizer *auth.Authorizer) *Access {
	return &Access{store: store, authorizer: authorizer}
}

// Caller returns the identity attached by the auth interceptor and makes sure
// a current profile exists for it.
func (a *Access) Caller(ctx context.Context) (Caller, error) {
	id, ok := middleware.GetIdentity(ctx)
	if !ok || id.UserID == "" {
		return Caller{}, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	if last, seen := a.known.Load(id.UserID); !seen || last.(auth.Identity) != id {
		_, created, err := a.store.EnsureUser(ctx, models.NewUserProfile(id.UserID, id.DisplayName, id.Email))
		if err != nil {
			slog.Error("Failed to ensure user profile", "user_id", id.UserID, "error", err)
			return Caller{}, connect.NewError(connect.CodeInternal, err)
		}
		if created {
			slog.Info("User profile created", "user_id", id.UserID, "email", id.Email)
		} else if seen {
			slog.Info("User profile refreshed", "user_id", id.UserID, "email", id.Email)
		}
		a.known.Store(id.UserID, id)
	}

	return Caller{Identity: id, Authorized: a.authorizer.IsAuthorized(id.Email)}, nil
}

// Writer is Caller for operations that change shared data; callers outside
// the allow-list get PermissionDenied.
func (a *Access) Writer(ctx context.Context) (Caller, error) {
	c, err := a.Caller(ctx)
	if err != nil {
		return Caller{}, err
	}
	if !c.Authorized {
		slog.Warn("Write rejected for unauthorized caller", "user_id", c.UserID, "email", c.Email)
		return Caller{}, connect.NewError(connect.CodePermissionDenied,
			fmt.Errorf("%s is not allowed to make changes", c.Email))
	}
	return c, nil
}

// AuthorizedEmails returns the allow-list.
func (a *Access) AuthorizedEmails() []string {
	return a.authorizer.Emails()
}
