package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/treatplanner/pkg/api"
)

const PlanServiceName = PackageName + ".PlanService"

var (
	PlanServiceCreateDayPlanProcedure = procedure("PlanService", "CreateDayPlan")
	PlanServiceUpdateDayPlanProcedure = procedure("PlanService", "UpdateDayPlan")
	PlanServiceGetDayPlanProcedure    = procedure("PlanService", "GetDayPlan")
	PlanServiceListDayPlansProcedure  = procedure("PlanService", "ListDayPlans")
)

// PlanServiceHandler is implemented by the plan service.
type PlanServiceHandler interface {
	CreateDayPlan(context.Context, *connect.Request[api.CreateDayPlanRequest]) (*connect.Response[api.CreateDayPlanResponse], error)
	UpdateDayPlan(context.Context, *connect.Request[api.UpdateDayPlanRequest]) (*connect.Response[api.UpdateDayPlanResponse], error)
	GetDayPlan(context.Context, *connect.Request[api.GetDayPlanRequest]) (*connect.Response[api.GetDayPlanResponse], error)
	ListDayPlans(context.Context, *connect.Request[api.ListDayPlansRequest]) (*connect.Response[api.ListDayPlansResponse], error)
}

// NewPlanServiceHandler builds an HTTP handler for the plan service and
// returns the path it should be mounted on.
func NewPlanServiceHandler(svc PlanServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return route("PlanService", map[string]http.Handler{
		PlanServiceCreateDayPlanProcedure: connect.NewUnaryHandler(PlanServiceCreateDayPlanProcedure, svc.CreateDayPlan, opts...),
		PlanServiceUpdateDayPlanProcedure: connect.NewUnaryHandler(PlanServiceUpdateDayPlanProcedure, svc.UpdateDayPlan, opts...),
		PlanServiceGetDayPlanProcedure:    connect.NewUnaryHandler(PlanServiceGetDayPlanProcedure, svc.GetDayPlan, opts...),
		PlanServiceListDayPlansProcedure:  connect.NewUnaryHandler(PlanServiceListDayPlansProcedure, svc.ListDayPlans, opts...),
	})
}

// PlanServiceClient calls the plan service.
type PlanServiceClient struct {
	createDayPlan *connect.Client[api.CreateDayPlanRequest, api.CreateDayPlanResponse]
	updateDayPlan *connect.Client[api.UpdateDayPlanRequest, api.UpdateDayPlanResponse]
	getDayPlan    *connect.Client[api.GetDayPlanRequest, api.GetDayPlanResponse]
	listDayPlans  *connect.Client[api.ListDayPlansRequest, api.ListDayPlansResponse]
}

// NewPlanServiceClient constructs a client for the service at baseURL.
func NewPlanServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PlanServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &PlanServiceClient{
		createDayPlan: connect.NewClient[api.CreateDayPlanRequest, api.CreateDayPlanResponse](httpClient, baseURL+PlanServiceCreateDayPlanProcedure, opts...),
		updateDayPlan: connect.NewClient[api.UpdateDayPlanRequest, api.UpdateDayPlanResponse](httpClient, baseURL+PlanServiceUpdateDayPlanProcedure, opts...),
		getDayPlan:    connect.NewClient[api.GetDayPlanRequest, api.GetDayPlanResponse](httpClient, baseURL+PlanServiceGetDayPlanProcedure, opts...),
		listDayPlans:  connect.NewClient[api.ListDayPlansRequest, api.ListDayPlansResponse](httpClient, baseURL+PlanServiceListDayPlansProcedure, opts...),
	}
}

func (c *PlanServiceClient) CreateDayPlan(ctx context.Context, req *connect.Request[api.CreateDayPlanRequest]) (*connect.Response[api.CreateDayPlanResponse], error) {
	return c.createDayPlan.CallUnary(ctx, req)
}

func (c *PlanServiceClient) UpdateDayPlan(ctx context.Context, req *connect.Request[api.UpdateDayPlanRequest]) (*connect.Response[api.UpdateDayPlanResponse], error) {
	return c.updateDayPlan.CallUnary(ctx, req)
}

func (c *PlanServiceClient) GetDayPlan(ctx context.Context, req *connect.Request[api.GetDayPlanRequest]) (*connect.Response[api.GetDayPlanResponse], error) {
	return c.getDayPlan.CallUnary(ctx, req)
}

func (c *PlanServiceClient) ListDayPlans(ctx context.Context, req *connect.Request[api.ListDayPlansRequest]) (*connect.Response[api.ListDayPlansResponse], error) {
	return c.listDayPlans.CallUnary(ctx, req)
}
