package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/treatplanner/internal/ledger"
	"github.com/mmynk/treatplanner/internal/models"
	"github.com/mmynk/treatplanner/internal/storage"
	"github.com/mmynk/treatplanner/pkg/api"
)

// PlanService implements the Connect PlanService
type PlanService struct {
	store  storage.Store
	access *Access
	loc    *time.Location
}

// NewPlanService creates a new PlanService. Plan dates are civil dates in loc.
func NewPlanService(store storage.Store, access *Access, loc *time.Location) *PlanService {
	return &PlanService{store: store, access: access, loc: loc}
}

// CreateDayPlan creates a new day plan owned by the caller.
func (s *PlanService) CreateDayPlan(ctx context.Context, req *connect.Request[api.CreateDayPlanRequest]) (*connect.Response[api.CreateDayPlanResponse], error) {
	caller, err := s.access.Writer(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("CreateDayPlan request received",
		"title", req.Msg.Title,
		"date", req.Msg.Date,
		"user_id", caller.UserID,
	)

	title := strings.TrimSpace(req.Msg.Title)
	if title == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("title required"))
	}
	date, err := parsePlanDate(req.Msg.Date, s.loc)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	plan := &models.DayPlan{
		OwnerID:     caller.UserID,
		OwnerEmail:  caller.Email,
		Title:       title,
		Date:        date,
		Description: req.Msg.Description,
		Members:     models.ParseMembers(req.Msg.Members),
	}

	// Save to storage (generates ID and timestamps)
	if err := s.store.CreateDayPlan(ctx, plan); err != nil {
		slog.Error("CreateDayPlan failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Day plan created", "day_plan_id", plan.ID, "members_count", len(plan.Members))

	return connect.NewResponse(&api.CreateDayPlanResponse{
		DayPlan: toAPIDayPlan(plan, s.loc),
	}), nil
}

// UpdateDayPlan changes the fields set in the request.
func (s *PlanService) UpdateDayPlan(ctx context.Context, req *connect.Request[api.UpdateDayPlanRequest]) (*connect.Response[api.UpdateDayPlanResponse], error) {
	if _, err := s.access.Writer(ctx); err != nil {
		return nil, err
	}

	slog.Info("UpdateDayPlan request received", "day_plan_id", req.Msg.DayPlanID)

	if req.Msg.DayPlanID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("day_plan_id required"))
	}

	var patch storage.DayPlanPatch
	if req.Msg.Title != nil {
		title := strings.TrimSpace(*req.Msg.Title)
		if title == "" {
			return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("title cannot be empty"))
		}
		patch.Title = &title
	}
	if req.Msg.Date != nil {
		date, err := parsePlanDate(*req.Msg.Date, s.loc)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		patch.Date = &date
	}
	patch.Description = req.Msg.Description
	if req.Msg.Members != nil {
		members := models.ParseMembers(*req.Msg.Members)
		patch.Members = &members
	}

	plan, err := s.store.UpdateDayPlan(ctx, req.Msg.DayPlanID, patch)
	if err != nil {
		slog.Error("UpdateDayPlan failed", "day_plan_id", req.Msg.DayPlanID, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Day plan updated", "day_plan_id", plan.ID)

	return connect.NewResponse(&api.UpdateDayPlanResponse{
		DayPlan: toAPIDayPlan(plan, s.loc),
	}), nil
}

// GetDayPlan returns a plan with its events and the caller's stats for it.
func (s *PlanService) GetDayPlan(ctx context.Context, req *connect.Request[api.GetDayPlanRequest]) (*connect.Response[api.GetDayPlanResponse], error) {
	caller, err := s.access.Caller(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("GetDayPlan request received", "day_plan_id", req.Msg.DayPlanID)

	plan, err := s.store.GetDayPlan(ctx, req.Msg.DayPlanID)
	if err != nil {
		slog.Error("GetDayPlan failed", "day_plan_id", req.Msg.DayPlanID, "error", err)
		return nil, storeError(err)
	}

	events, err := s.store.ListEvents(ctx, storage.EventQuery{DayPlanID: plan.ID})
	if err != nil {
		slog.Error("GetDayPlan failed - could not list events", "day_plan_id", plan.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	stats := ledger.ComputePlanStats(plan, events, caller.Ledger())
	polls := make(map[string]*api.RSVPSummary, len(events))
	for _, e := range events {
		polls[e.ID] = toAPIRSVPSummary(ledger.PollSummary(plan.Members, e.RSVPs))
	}

	slog.Info("GetDayPlan successful", "day_plan_id", plan.ID, "events_count", len(events))

	return connect.NewResponse(&api.GetDayPlanResponse{
		DayPlan: toAPIDayPlan(plan, s.loc),
		Events:  toAPIEvents(events),
		Stats:   toAPIPlanStats(stats),
		Polls:   polls,
	}), nil
}

// ListDayPlans returns the caller's plans, newest date first, each with its stats.
func (s *PlanService) ListDayPlans(ctx context.Context, req *connect.Request[api.ListDayPlansRequest]) (*connect.Response[api.ListDayPlansResponse], error) {
	caller, err := s.access.Caller(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("ListDayPlans request received", "user_id", caller.UserID)

	plans, err := s.store.ListDayPlans(ctx, storage.DayPlanQuery{OwnerID: caller.UserID})
	if err != nil {
		slog.Error("ListDayPlans failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	// One query for all events; grouping keeps each plan's time order.
	events, err := s.store.ListEvents(ctx, storage.EventQuery{})
	if err != nil {
		slog.Error("ListDayPlans failed - could not list events", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	byPlan := make(map[string][]*models.Event)
	for _, e := range events {
		byPlan[e.DayPlanID] = append(byPlan[e.DayPlanID], e)
	}

	user := caller.Ledger()
	summaries := make([]*api.PlanSummary, len(plans))
	for i, plan := range plans {
		summaries[i] = &api.PlanSummary{
			DayPlan: toAPIDayPlan(plan, s.loc),
			Stats:   toAPIPlanStats(ledger.ComputePlanStats(plan, byPlan[plan.ID], user)),
		}
	}

	slog.Info("ListDayPlans successful", "count", len(plans))

	return connect.NewResponse(&api.ListDayPlansResponse{Plans: summaries}), nil
}
