package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/treatplanner/pkg/api"
)

const LedgerServiceName = PackageName + ".LedgerService"

var (
	LedgerServiceGetOwedTotalProcedure          = procedure("LedgerService", "GetOwedTotal")
	LedgerServiceGetMyBillsProcedure            = procedure("LedgerService", "GetMyBills")
	LedgerServiceListUnscheduledEventsProcedure = procedure("LedgerService", "ListUnscheduledEvents")
)

// LedgerServiceHandler is implemented by the ledger service.
type LedgerServiceHandler interface {
	GetOwedTotal(context.Context, *connect.Request[api.GetOwedTotalRequest]) (*connect.Response[api.GetOwedTotalResponse], error)
	GetMyBills(context.Context, *connect.Request[api.GetMyBillsRequest]) (*connect.Response[api.GetMyBillsResponse], error)
	ListUnscheduledEvents(context.Context, *connect.Request[api.ListUnscheduledEventsRequest]) (*connect.Response[api.ListUnscheduledEventsResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler for the ledger service and
// returns the path it should be mounted on.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return route("LedgerService", map[string]http.Handler{
		LedgerServiceGetOwedTotalProcedure:          connect.NewUnaryHandler(LedgerServiceGetOwedTotalProcedure, svc.GetOwedTotal, opts...),
		LedgerServiceGetMyBillsProcedure:            connect.NewUnaryHandler(LedgerServiceGetMyBillsProcedure, svc.GetMyBills, opts...),
		LedgerServiceListUnscheduledEventsProcedure: connect.NewUnaryHandler(LedgerServiceListUnscheduledEventsProcedure, svc.ListUnscheduledEvents, opts...),
	})
}

// LedgerServiceClient calls the ledger service.
type LedgerServiceClient struct {
	getOwedTotal          *connect.Client[api.GetOwedTotalRequest, api.GetOwedTotalResponse]
	getMyBills            *connect.Client[api.GetMyBillsRequest, api.GetMyBillsResponse]
	listUnscheduledEvents *connect.Client[api.ListUnscheduledEventsRequest, api.ListUnscheduledEventsResponse]
}

// NewLedgerServiceClient constructs a client for the service at baseURL.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &LedgerServiceClient{
		getOwedTotal:          connect.NewClient[api.GetOwedTotalRequest, api.GetOwedTotalResponse](httpClient, baseURL+LedgerServiceGetOwedTotalProcedure, opts...),
		getMyBills:            connect.NewClient[api.GetMyBillsRequest, api.GetMyBillsResponse](httpClient, baseURL+LedgerServiceGetMyBillsProcedure, opts...),
		listUnscheduledEvents: connect.NewClient[api.ListUnscheduledEventsRequest, api.ListUnscheduledEventsResponse](httpClient, baseURL+LedgerServiceListUnscheduledEventsProcedure, opts...),
	}
}

func (c *LedgerServiceClient) GetOwedTotal(ctx context.Context, req *connect.Request[api.GetOwedTotalRequest]) (*connect.Response[api.GetOwedTotalResponse], error) {
	return c.getOwedTotal.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetMyBills(ctx context.Context, req *connect.Request[api.GetMyBillsRequest]) (*connect.Response[api.GetMyBillsResponse], error) {
	return c.getMyBills.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListUnscheduledEvents(ctx context.Context, req *connect.Request[api.ListUnscheduledEventsRequest]) (*connect.Response[api.ListUnscheduledEventsResponse], error) {
	return c.listUnscheduledEvents.CallUnary(ctx, req)
}
