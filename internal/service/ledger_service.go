package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/treatplanner/internal/ledger"
	"github.com/mmynk/treatplanner/internal/models"
	"github.com/mmynk/treatplanner/internal/storage"
	"github.com/mmynk/treatplanner/pkg/api"
)

// LedgerService implements the Connect LedgerService: the caller's debts
// across every event.
type LedgerService struct {
	store    storage.Store
	access   *Access
	loc      *time.Location
	currency string
	now      func() time.Time
}

// NewLedgerService creates a LedgerService. Urgency is judged by the calendar
// day in loc; amounts are formatted with the currency prefix.
func NewLedgerService(store storage.Store, access *Access, loc *time.Location, currency string) *LedgerService {
	return &LedgerService{store: store, access: access, loc: loc, currency: currency, now: time.Now}
}

// snapshot loads every event and plan. The evaluator is never run on partial data.
func (s *LedgerService) snapshot(ctx context.Context) ([]*models.Event, map[string]*models.DayPlan, error) {
	events, err := s.store.ListEvents(ctx, storage.EventQuery{})
	if err != nil {
		return nil, nil, connect.NewError(connect.CodeInternal, err)
	}
	plans, err := s.store.ListDayPlans(ctx, storage.DayPlanQuery{})
	if err != nil {
		return nil, nil, connect.NewError(connect.CodeInternal, err)
	}
	return events, ledger.PlansByID(plans), nil
}

// GetOwedTotal returns the header badge: what the caller owes and how many
// events still need a date.
func (s *LedgerService) GetOwedTotal(ctx context.Context, req *connect.Request[api.GetOwedTotalRequest]) (*connect.Response[api.GetOwedTotalResponse], error) {
	caller, err := s.access.Caller(ctx)
	if err != nil {
		return nil, err
	}

	events, plans, err := s.snapshot(ctx)
	if err != nil {
		slog.Error("GetOwedTotal failed", "error", err)
		return nil, err
	}

	l := ledger.Aggregate(events, caller.Ledger())
	unscheduled := ledger.CountUnscheduled(events, plans, s.loc)

	slog.Info("GetOwedTotal successful",
		"user_id", caller.UserID,
		"total_owed", l.TotalOwed,
		"debts_count", len(l.Debts),
		"unscheduled_count", unscheduled,
	)

	return connect.NewResponse(&api.GetOwedTotalResponse{
		TotalOwed:        l.TotalOwed,
		Formatted:        ledger.FormatAmount(s.currency, l.TotalOwed),
		Badge:            ledger.FormatBadge(l.TotalOwed),
		UnscheduledCount: unscheduled,
	}), nil
}

// GetMyBills lists the caller's bills, urgent first.
func (s *LedgerService) GetMyBills(ctx context.Context, req *connect.Request[api.GetMyBillsRequest]) (*connect.Response[api.GetMyBillsResponse], error) {
	caller, err := s.access.Caller(ctx)
	if err != nil {
		return nil, err
	}

	filter, err := ledger.ParseBillFilter(req.Msg.Filter)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	events, plans, err := s.snapshot(ctx)
	if err != nil {
		slog.Error("GetMyBills failed", "error", err)
		return nil, err
	}

	summary := ledger.MyBills(events, plans, caller.Ledger(), s.now().In(s.loc), filter)

	bills := make([]*api.Bill, len(summary.Bills))
	for i, b := range summary.Bills {
		bills[i] = toAPIBill(b, s.loc)
	}

	slog.Info("GetMyBills successful",
		"user_id", caller.UserID,
		"filter", filter,
		"bills_count", len(bills),
		"urgent_count", summary.UrgentCount,
	)

	return connect.NewResponse(&api.GetMyBillsResponse{
		TotalOwed:   summary.TotalOwed,
		UrgentTotal: summary.UrgentTotal,
		UrgentCount: summary.UrgentCount,
		Bills:       bills,
	}), nil
}

// ListUnscheduledEvents returns events without a decided date, oldest first.
func (s *LedgerService) ListUnscheduledEvents(ctx context.Context, req *connect.Request[api.ListUnscheduledEventsRequest]) (*connect.Response[api.ListUnscheduledEventsResponse], error) {
	if _, err := s.access.Caller(ctx); err != nil {
		return nil, err
	}

	events, plans, err := s.snapshot(ctx)
	if err != nil {
		slog.Error("ListUnscheduledEvents failed", "error", err)
		return nil, err
	}

	unscheduled := ledger.UnscheduledEvents(events, plans, s.loc)

	slog.Info("ListUnscheduledEvents successful", "count", len(unscheduled))

	return connect.NewResponse(&api.ListUnscheduledEventsResponse{
		Events: toAPIEvents(unscheduled),
	}), nil
}
