package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/treatplanner/pkg/api"
)

const EventServiceName = PackageName + ".EventService"

var (
	EventServiceCreateEventProcedure   = procedure("EventService", "CreateEvent")
	EventServiceUpdateEventProcedure   = procedure("EventService", "UpdateEvent")
	EventServiceUpdateRSVPProcedure    = procedure("EventService", "UpdateRSVP")
	EventServiceUpdateBillProcedure    = procedure("EventService", "UpdateBill")
	EventServiceListEventsProcedure    = procedure("EventService", "ListEvents")
	EventServiceListAllTreatsProcedure = procedure("EventService", "ListAllTreats")
	EventServiceWatchEventsProcedure   = procedure("EventService", "WatchEvents")
)

// EventServiceHandler is implemented by the event service.
type EventServiceHandler interface {
	CreateEvent(context.Context, *connect.Request[api.CreateEventRequest]) (*connect.Response[api.CreateEventResponse], error)
	UpdateEvent(context.Context, *connect.Request[api.UpdateEventRequest]) (*connect.Response[api.UpdateEventResponse], error)
	UpdateRSVP(context.Context, *connect.Request[api.UpdateRSVPRequest]) (*connect.Response[api.UpdateRSVPResponse], error)
	UpdateBill(context.Context, *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error)
	ListEvents(context.Context, *connect.Request[api.ListEventsRequest]) (*connect.Response[api.ListEventsResponse], error)
	ListAllTreats(context.Context, *connect.Request[api.ListAllTreatsRequest]) (*connect.Response[api.ListAllTreatsResponse], error)
	WatchEvents(context.Context, *connect.Request[api.WatchEventsRequest], *connect.ServerStream[api.WatchEventsResponse]) error
}

// NewEventServiceHandler builds an HTTP handler for the event service and
// returns the path it should be mounted on.
func NewEventServiceHandler(svc EventServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return route("EventService", map[string]http.Handler{
		EventServiceCreateEventProcedure:   connect.NewUnaryHandler(EventServiceCreateEventProcedure, svc.CreateEvent, opts...),
		EventServiceUpdateEventProcedure:   connect.NewUnaryHandler(EventServiceUpdateEventProcedure, svc.UpdateEvent, opts...),
		EventServiceUpdateRSVPProcedure:    connect.NewUnaryHandler(EventServiceUpdateRSVPProcedure, svc.UpdateRSVP, opts...),
		EventServiceUpdateBillProcedure:    connect.NewUnaryHandler(EventServiceUpdateBillProcedure, svc.UpdateBill, opts...),
		EventServiceListEventsProcedure:    connect.NewUnaryHandler(EventServiceListEventsProcedure, svc.ListEvents, opts...),
		EventServiceListAllTreatsProcedure: connect.NewUnaryHandler(EventServiceListAllTreatsProcedure, svc.ListAllTreats, opts...),
		EventServiceWatchEventsProcedure:   connect.NewServerStreamHandler(EventServiceWatchEventsProcedure, svc.WatchEvents, opts...),
	})
}

// EventServiceClient calls the event service.
type EventServiceClient struct {
	createEvent   *connect.Client[api.CreateEventRequest, api.CreateEventResponse]
	updateEvent   *connect.Client[api.UpdateEventRequest, api.UpdateEventResponse]
	updateRSVP    *connect.Client[api.UpdateRSVPRequest, api.UpdateRSVPResponse]
	updateBill    *connect.Client[api.UpdateBillRequest, api.UpdateBillResponse]
	listEvents    *connect.Client[api.ListEventsRequest, api.ListEventsResponse]
	listAllTreats *connect.Client[api.ListAllTreatsRequest, api.ListAllTreatsResponse]
	watchEvents   *connect.Client[api.WatchEventsRequest, api.WatchEventsResponse]
}

// NewEventServiceClient constructs a client for the service at baseURL.
func NewEventServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *EventServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &EventServiceClient{
		createEvent:   connect.NewClient[api.CreateEventRequest, api.CreateEventResponse](httpClient, baseURL+EventServiceCreateEventProcedure, opts...),
		updateEvent:   connect.NewClient[api.UpdateEventRequest, api.UpdateEventResponse](httpClient, baseURL+EventServiceUpdateEventProcedure, opts...),
		updateRSVP:    connect.NewClient[api.UpdateRSVPRequest, api.UpdateRSVPResponse](httpClient, baseURL+EventServiceUpdateRSVPProcedure, opts...),
		updateBill:    connect.NewClient[api.UpdateBillRequest, api.UpdateBillResponse](httpClient, baseURL+EventServiceUpdateBillProcedure, opts...),
		listEvents:    connect.NewClient[api.ListEventsRequest, api.ListEventsResponse](httpClient, baseURL+EventServiceListEventsProcedure, opts...),
		listAllTreats: connect.NewClient[api.ListAllTreatsRequest, api.ListAllTreatsResponse](httpClient, baseURL+EventServiceListAllTreatsProcedure, opts...),
		watchEvents:   connect.NewClient[api.WatchEventsRequest, api.WatchEventsResponse](httpClient, baseURL+EventServiceWatchEventsProcedure, opts...),
	}
}

func (c *EventServiceClient) CreateEvent(ctx context.Context, req *connect.Request[api.CreateEventRequest]) (*connect.Response[api.CreateEventResponse], error) {
	return c.createEvent.CallUnary(ctx, req)
}

func (c *EventServiceClient) UpdateEvent(ctx context.Context, req *connect.Request[api.UpdateEventRequest]) (*connect.Response[api.UpdateEventResponse], error) {
	return c.updateEvent.CallUnary(ctx, req)
}

func (c *EventServiceClient) UpdateRSVP(ctx context.Context, req *connect.Request[api.UpdateRSVPRequest]) (*connect.Response[api.UpdateRSVPResponse], error) {
	return c.updateRSVP.CallUnary(ctx, req)
}

func (c *EventServiceClient) UpdateBill(ctx context.Context, req *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error) {
	return c.updateBill.CallUnary(ctx, req)
}

func (c *EventServiceClient) ListEvents(ctx context.Context, req *connect.Request[api.ListEventsRequest]) (*connect.Response[api.ListEventsResponse], error) {
	return c.listEvents.CallUnary(ctx, req)
}

func (c *EventServiceClient) ListAllTreats(ctx context.Context, req *connect.Request[api.ListAllTreatsRequest]) (*connect.Response[api.ListAllTreatsResponse], error) {
	return c.listAllTreats.CallUnary(ctx, req)
}

func (c *EventServiceClient) WatchEvents(ctx context.Context, req *connect.Request[api.WatchEventsRequest]) (*connect.ServerStreamForClient[api.WatchEventsResponse], error) {
	return c.watchEvents.CallServerStream(ctx, req)
}
