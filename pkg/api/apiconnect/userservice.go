package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/treatplanner/pkg/api"
)

const UserServiceName = PackageName + ".UserService"

var (
	UserServiceGetCurrentUserProcedure = procedure("UserService", "GetCurrentUser")
	UserServiceListUsersProcedure      = procedure("UserService", "ListUsers")
)

// UserServiceHandler is implemented by the user service.
type UserServiceHandler interface {
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
}

// NewUserServiceHandler builds an HTTP handler for the user service and
// returns the path it should be mounted on.
func NewUserServiceHandler(svc UserServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return route("UserService", map[string]http.Handler{
		UserServiceGetCurrentUserProcedure: connect.NewUnaryHandler(UserServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts...),
		UserServiceListUsersProcedure:      connect.NewUnaryHandler(UserServiceListUsersProcedure, svc.ListUsers, opts...),
	})
}

// UserServiceClient calls the user service.
type UserServiceClient struct {
	getCurrentUser *connect.Client[api.GetCurrentUserRequest, api.GetCurrentUserResponse]
	listUsers      *connect.Client[api.ListUsersRequest, api.ListUsersResponse]
}

// NewUserServiceClient constructs a client for the service at baseURL.
func NewUserServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *UserServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &UserServiceClient{
		getCurrentUser: connect.NewClient[api.GetCurrentUserRequest, api.GetCurrentUserResponse](httpClient, baseURL+UserServiceGetCurrentUserProcedure, opts...),
		listUsers:      connect.NewClient[api.ListUsersRequest, api.ListUsersResponse](httpClient, baseURL+UserServiceListUsersProcedure, opts...),
	}
}

func (c *UserServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

func (c *UserServiceClient) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	return c.listUsers.CallUnary(ctx, req)
}
