package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/treatplanner/internal/storage"
	"github.com/mmynk/treatplanner/pkg/api"
)

// UserService implements the Connect UserService
type UserService struct {
	store  storage.Store
	access *Access
}

// NewUserService creates a new UserService with the given storage backend.
func NewUserService(store storage.Store, access *Access) *UserService {
	return &UserService{store: store, access: access}
}

// GetCurrentUser returns the caller's stored profile and whether they may edit.
func (s *UserService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	caller, err := s.access.Caller(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.store.GetUser(ctx, caller.UserID)
	if err != nil {
		slog.Error("GetCurrentUser failed", "user_id", caller.UserID, "error", err)
		return nil, storeError(err)
	}

	return connect.NewResponse(&api.GetCurrentUserResponse{
		User:       toAPIUser(profile),
		Authorized: caller.Authorized,
	}), nil
}

// ListUsers returns every known profile, for picking payers and attendees.
func (s *UserService) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	if _, err := s.access.Caller(ctx); err != nil {
		return nil, err
	}

	profiles, err := s.store.ListUsers(ctx)
	if err != nil {
		slog.Error("ListUsers failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	users := make([]*api.User, len(profiles))
	for i, p := range profiles {
		users[i] = toAPIUser(p)
	}

	slog.Info("ListUsers successful", "count", len(users))

	return connect.NewResponse(&api.ListUsersResponse{Users: users}), nil
}
