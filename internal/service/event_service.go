package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"connectrpc.com/connect"

	"github.com/mmynk/treatplanner/internal/ledger"
	"github.com/mmynk/treatplanner/internal/models"
	"github.com/mmynk/treatplanner/internal/storage"
	"github.com/mmynk/treatplanner/pkg/api"
)

// EventService implements the Connect EventService
type EventService struct {
	store  storage.Store
	access *Access

	// closing ends open WatchEvents streams.
	closing   chan struct{}
	closeOnce sync.Once
}

// NewEventService creates a new EventService with the given storage backend.
func NewEventService(store storage.Store, access *Access) *EventService {
	return &EventService{store: store, access: access, closing: make(chan struct{})}
}

// Close ends every open WatchEvents stream. Unary RPCs are unaffected.
func (s *EventService) Close() {
	s.closeOnce.Do(func() { close(s.closing) })
}

// validateBill checks a bill total and that someone fronted a positive bill.
func validateBill(total float64, payer string) error {
	if total < 0 {
		return errors.New("total_bill cannot be negative")
	}
	if total > 0 && strings.TrimSpace(payer) == "" {
		return errors.New("payer required when total_bill is set")
	}
	return nil
}

// CreateEvent adds a treat to an existing day plan.
func (s *EventService) CreateEvent(ctx context.Context, req *connect.Request[api.CreateEventRequest]) (*connect.Response[api.CreateEventResponse], error) {
	caller, err := s.access.Writer(ctx)
	if err != nil {
		return nil, err
	}

	msg := req.Msg
	slog.Info("CreateEvent request received",
		"day_plan_id", msg.DayPlanID,
		"title", msg.Title,
		"type", msg.Type,
		"total_bill", msg.TotalBill,
		"attendees_count", len(msg.Attendees),
	)

	title := strings.TrimSpace(msg.Title)
	if title == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("title required"))
	}
	eventType, err := models.ParseEventType(msg.Type)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := validateBill(msg.TotalBill, msg.Payer); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	plan, err := s.store.GetDayPlan(ctx, msg.DayPlanID)
	if err != nil {
		slog.Error("CreateEvent failed - day plan not found", "day_plan_id", msg.DayPlanID, "error", err)
		return nil, storeError(err)
	}

	attendees := msg.Attendees
	if len(attendees) == 0 {
		existing, err := s.store.ListEvents(ctx, storage.EventQuery{DayPlanID: plan.ID})
		if err != nil {
			slog.Error("CreateEvent failed - could not list events", "day_plan_id", plan.ID, "error", err)
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		attendees = ledger.DefaultAttendees(plan.Members, ledger.StrongestRSVPs(existing))
	}

	event := &models.Event{
		DayPlanID:           plan.ID,
		OwnerID:             caller.UserID,
		OwnerEmail:          caller.Email,
		Title:               title,
		Type:                eventType,
		DateTime:            msg.DateTime,
		Location:            msg.Location,
		LocationURL:         msg.LocationURL,
		Notes:               msg.Notes,
		TotalBill:           msg.TotalBill,
		Payer:               strings.TrimSpace(msg.Payer),
		PayerEmail:          strings.TrimSpace(msg.PayerEmail),
		PayerAccountDetails: msg.PayerAccountDetails,
		Attendees:           attendees,
		RSVPs:               map[string]models.RSVPStatus{},
	}

	if err := s.store.CreateEvent(ctx, event); err != nil {
		slog.Error("CreateEvent failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Event created", "event_id", event.ID, "day_plan_id", plan.ID, "attendees_count", len(attendees))

	return connect.NewResponse(&api.CreateEventResponse{Event: toAPIEvent(event)}), nil
}

// UpdateEvent changes the fields set in the request.
func (s *EventService) UpdateEvent(ctx context.Context, req *connect.Request[api.UpdateEventRequest]) (*connect.Response[api.UpdateEventResponse], error) {
	if _, err := s.access.Writer(ctx); err != nil {
		return nil, err
	}

	msg := req.Msg
	slog.Info("UpdateEvent request received", "event_id", msg.EventID)

	current, err := s.store.GetEvent(ctx, msg.EventID)
	if err != nil {
		slog.Error("UpdateEvent failed", "event_id", msg.EventID, "error", err)
		return nil, storeError(err)
	}

	patch := storage.EventPatch{
		DateTime:            msg.DateTime,
		Location:            msg.Location,
		LocationURL:         msg.LocationURL,
		Notes:               msg.Notes,
		TotalBill:           msg.TotalBill,
		Payer:               msg.Payer,
		PayerEmail:          msg.PayerEmail,
		PayerAccountDetails: msg.PayerAccountDetails,
		Attendees:           msg.Attendees,
	}
	if msg.Title != nil {
		title := strings.TrimSpace(*msg.Title)
		if title == "" {
			return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("title cannot be empty"))
		}
		patch.Title = &title
	}
	if msg.Type != nil {
		eventType, err := models.ParseEventType(*msg.Type)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		patch.Type = &eventType
	}

	total, payer := current.TotalBill, current.Payer
	if patch.TotalBill != nil {
		total = *patch.TotalBill
	}
	if patch.Payer != nil {
		payer = *patch.Payer
	}
	if err := validateBill(total, payer); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	event, err := s.store.UpdateEvent(ctx, msg.EventID, patch)
	if err != nil {
		slog.Error("UpdateEvent failed", "event_id", msg.EventID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Event updated", "event_id", event.ID)

	return connect.NewResponse(&api.UpdateEventResponse{Event: toAPIEvent(event)}), nil
}

// UpdateRSVP records a member's poll answer. Any signed-in user may answer.
func (s *EventService) UpdateRSVP(ctx context.Context, req *connect.Request[api.UpdateRSVPRequest]) (*connect.Response[api.UpdateRSVPResponse], error) {
	caller, err := s.access.Caller(ctx)
	if err != nil {
		return nil, err
	}

	msg := req.Msg
	slog.Info("UpdateRSVP request received",
		"event_id", msg.EventID,
		"member", msg.Member,
		"status", msg.Status,
		"user_id", caller.UserID,
	)

	member := strings.TrimSpace(msg.Member)
	if member == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("member required"))
	}
	status := models.RSVPStatus(msg.Status)
	if !status.Valid() {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown rsvp status %q", msg.Status))
	}

	if err := s.store.UpdateRSVP(ctx, msg.EventID, member, status); err != nil {
		slog.Error("UpdateRSVP failed", "event_id", msg.EventID, "error", err)
		return nil, storeError(err)
	}

	event, err := s.store.GetEvent(ctx, msg.EventID)
	if err != nil {
		slog.Error("Failed to fetch updated event", "event_id", msg.EventID, "error", err)
		return nil, storeError(err)
	}

	return connect.NewResponse(&api.UpdateRSVPResponse{Event: toAPIEvent(event)}), nil
}

// UpdateBill sets an event's bill total.
func (s *EventService) UpdateBill(ctx context.Context, req *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error) {
	if _, err := s.access.Writer(ctx); err != nil {
		return nil, err
	}

	slog.Info("UpdateBill request received", "event_id", req.Msg.EventID, "total_bill", req.Msg.TotalBill)

	if req.Msg.TotalBill < 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("total_bill cannot be negative"))
	}

	if err := s.store.UpdateBill(ctx, req.Msg.EventID, req.Msg.TotalBill); err != nil {
		slog.Error("UpdateBill failed", "event_id", req.Msg.EventID, "error", err)
		return nil, storeError(err)
	}

	event, err := s.store.GetEvent(ctx, req.Msg.EventID)
	if err != nil {
		slog.Error("Failed to fetch updated event", "event_id", req.Msg.EventID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Bill updated", "event_id", event.ID, "total_bill", event.TotalBill)

	return connect.NewResponse(&api.UpdateBillResponse{Event: toAPIEvent(event)}), nil
}

// ListEvents returns a plan's events ordered by time.
func (s *EventService) ListEvents(ctx context.Context, req *connect.Request[api.ListEventsRequest]) (*connect.Response[api.ListEventsResponse], error) {
	if _, err := s.access.Caller(ctx); err != nil {
		return nil, err
	}

	slog.Info("ListEvents request received", "day_plan_id", req.Msg.DayPlanID)

	if req.Msg.DayPlanID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("day_plan_id required"))
	}

	events, err := s.store.ListEvents(ctx, storage.EventQuery{DayPlanID: req.Msg.DayPlanID})
	if err != nil {
		slog.Error("ListEvents failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("ListEvents successful", "count", len(events))

	return connect.NewResponse(&api.ListEventsResponse{Events: toAPIEvents(events)}), nil
}

// ListAllTreats returns every treat created by an allow-listed user, newest first.
func (s *EventService) ListAllTreats(ctx context.Context, req *connect.Request[api.ListAllTreatsRequest]) (*connect.Response[api.ListAllTreatsResponse], error) {
	if _, err := s.access.Caller(ctx); err != nil {
		return nil, err
	}

	slog.Info("ListAllTreats request received")

	emails := s.access.AuthorizedEmails()
	if len(emails) == 0 {
		return connect.NewResponse(&api.ListAllTreatsResponse{Events: []*api.Event{}}), nil
	}

	events, err := s.store.ListEvents(ctx, storage.EventQuery{OwnerEmails: emails, Descending: true})
	if err != nil {
		slog.Error("ListAllTreats failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("ListAllTreats successful", "count", len(events))

	return connect.NewResponse(&api.ListAllTreatsResponse{Events: toAPIEvents(events)}), nil
}

// WatchEvents streams a snapshot of the plan's events now and after every change,
// until the client goes away.
func (s *EventService) WatchEvents(ctx context.Context, req *connect.Request[api.WatchEventsRequest], stream *connect.ServerStream[api.WatchEventsResponse]) error {
	caller, err := s.access.Caller(ctx)
	if err != nil {
		return err
	}
	if req.Msg.DayPlanID == "" {
		return connect.NewError(connect.CodeInvalidArgument, errors.New("day_plan_id required"))
	}

	slog.Info("WatchEvents started", "day_plan_id", req.Msg.DayPlanID, "user_id", caller.UserID)

	// Only the latest snapshot matters; an unsent one is replaced.
	updates := make(chan []*models.Event, 1)
	unsubscribe := s.store.SubscribeEvents(storage.EventQuery{DayPlanID: req.Msg.DayPlanID}, func(events []*models.Event) {
		select {
		case <-updates:
		default:
		}
		updates <- events
	})
	defer unsubscribe()

	sent := 0
	for {
		select {
		case <-ctx.Done():
			slog.Info("WatchEvents ended", "day_plan_id", req.Msg.DayPlanID, "snapshots", sent)
			return nil
		case <-s.closing:
			slog.Info("WatchEvents closed by server", "day_plan_id", req.Msg.DayPlanID, "snapshots", sent)
			return nil
		case events := <-updates:
			if err := stream.Send(&api.WatchEventsResponse{Events: toAPIEvents(events)}); err != nil {
				slog.Warn("WatchEvents send failed", "day_plan_id", req.Msg.DayPlanID, "error", err)
				return err
			}
			sent++
		}
	}
}
