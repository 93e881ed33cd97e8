package service

import (
	"context"
	"reflect"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/treatplanner/internal/models"
	"github.com/mmynk/treatplanner/pkg/api"
)

func createPlan(t *testing.T, c testClients, title, date, members string) string {
	t.Helper()
	resp, err := c.plans.CreateDayPlan(context.Background(), connect.NewRequest(&api.CreateDayPlanRequest{
		Title: title, Date: date, Members: members,
	}))
	if err != nil {
		t.Fatalf("CreateDayPlan failed: %v", err)
	}
	return resp.Msg.DayPlan.ID
}

func createEvent(t *testing.T, c testClients, req *api.CreateEventRequest) *api.Event {
	t.Helper()
	resp, err := c.events.CreateEvent(context.Background(), connect.NewRequest(req))
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	return resp.Msg.Event
}

func TestCreateEvent(t *testing.T) {
	env := setupTestEnv(t)
	c := env.clientsFor(sara)
	planID := createPlan(t, c, "Friday", "2025-03-14", "Sara, Ali, Omar")
	at := time.Date(2025, 3, 14, 19, 0, 0, 0, time.UTC)

	event := createEvent(t, c, &api.CreateEventRequest{
		DayPlanID: planID,
		Title:     "Biryani",
		Type:      "Food",
		DateTime:  &at,
		TotalBill: 1000,
		Payer:     "Sara",
		Attendees: []string{"Sara", "Ali", "Omar"},
	})

	if event.ID == "" || event.OwnerEmail != sara.Email {
		t.Errorf("unexpected event: %+v", event)
	}
	if event.DateTime == nil || !event.DateTime.Equal(at) {
		t.Errorf("DateTime = %v, want %v", event.DateTime, at)
	}
	if event.PerPersonShare < 333.33 || event.PerPersonShare > 333.34 {
		t.Errorf("PerPersonShare = %v, want 333.33", event.PerPersonShare)
	}
}

func TestCreateEvent_Validation(t *testing.T) {
	env := setupTestEnv(t)
	c := env.clientsFor(sara)
	planID := createPlan(t, c, "Friday", "2025-03-14", "Sara, Ali")
	ctx := context.Background()

	tests := []struct {
		name   string
		caller testClients
		req    *api.CreateEventRequest
		want   connect.Code
	}{
		{"guest", env.clientsFor(guest), &api.CreateEventRequest{DayPlanID: planID, Title: "x"}, connect.CodePermissionDenied},
		{"unknown type", c, &api.CreateEventRequest{DayPlanID: planID, Title: "x", Type: "Bowling"}, connect.CodeInvalidArgument},
		{"bill without payer", c, &api.CreateEventRequest{DayPlanID: planID, Title: "x", TotalBill: 500}, connect.CodeInvalidArgument},
		{"negative bill", c, &api.CreateEventRequest{DayPlanID: planID, Title: "x", TotalBill: -1, Payer: "Sara"}, connect.CodeInvalidArgument},
		{"missing title", c, &api.CreateEventRequest{DayPlanID: planID}, connect.CodeInvalidArgument},
		{"missing plan", c, &api.CreateEventRequest{DayPlanID: "missing", Title: "x"}, connect.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.caller.events.CreateEvent(ctx, connect.NewRequest(tt.req))
			assertCode(t, err, tt.want)
		})
	}
}

func TestCreateEvent_DefaultAttendees(t *testing.T) {
	env := setupTestEnv(t)
	c := env.clientsFor(sara)
	ctx := context.Background()
	planID := createPlan(t, c, "Friday", "2025-03-14", "Sara, Ali, Omar, Zara")

	poll := createEvent(t, c, &api.CreateEventRequest{DayPlanID: planID, Title: "Cricket", Type: "Cricket", Attendees: []string{"Sara"}})
	for member, status := range map[string]string{"Ali": "yes", "Zara": "yes", "Omar": "no", "Stranger": "yes"} {
		if _, err := c.events.UpdateRSVP(ctx, connect.NewRequest(&api.UpdateRSVPRequest{
			EventID: poll.ID, Member: member, Status: status,
		})); err != nil {
			t.Fatalf("UpdateRSVP failed: %v", err)
		}
	}

	event := createEvent(t, c, &api.CreateEventRequest{DayPlanID: planID, Title: "Dinner", Type: "Food"})
	if want := []string{"Ali", "Zara"}; !reflect.DeepEqual(event.Attendees, want) {
		t.Errorf("Attendees = %v, want %v", event.Attendees, want)
	}
	if event.Type != string(models.EventTypeFood) {
		t.Errorf("Type = %q, want Food", event.Type)
	}
}

func TestUpdateRSVP(t *testing.T) {
	env := setupTestEnv(t)
	c := env.clientsFor(sara)
	ctx := context.Background()
	planID := createPlan(t, c, "Friday", "2025-03-14", "Sara, Bilal")
	event := createEvent(t, c, &api.CreateEventRequest{DayPlanID: planID, Title: "Movie", Type: "Movie"})

	t.Run("guest may answer", func(t *testing.T) {
		resp, err := env.clientsFor(guest).events.UpdateRSVP(ctx, connect.NewRequest(&api.UpdateRSVPRequest{
			EventID: event.ID, Member: "Bilal", Status: "maybe",
		}))
		if err != nil {
			t.Fatalf("UpdateRSVP failed: %v", err)
		}
		if resp.Msg.Event.RSVPs["Bilal"] != "maybe" {
			t.Errorf("expected Bilal maybe, got %v", resp.Msg.Event.RSVPs)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := c.events.UpdateRSVP(ctx, connect.NewRequest(&api.UpdateRSVPRequest{
			EventID: event.ID, Member: "Sara", Status: "perhaps",
		}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("missing event", func(t *testing.T) {
		_, err := c.events.UpdateRSVP(ctx, connect.NewRequest(&api.UpdateRSVPRequest{
			EventID: "missing", Member: "Sara", Status: "yes",
		}))
		assertCode(t, err, connect.CodeNotFound)
	})
}

func TestUpdateEventAndBill(t *testing.T) {
	env := setupTestEnv(t)
	c := env.clientsFor(sara)
	ctx := context.Background()
	planID := createPlan(t, c, "Friday", "2025-03-14", "Sara, Ali")
	event := createEvent(t, c, &api.CreateEventRequest{
		DayPlanID: planID, Title: "Dinner", Type: "Food", Attendees: []string{"Sara", "Ali"},
	})

	t.Run("bill needs a payer", func(t *testing.T) {
		_, err := c.events.UpdateEvent(ctx, connect.NewRequest(&api.UpdateEventRequest{
			EventID: event.ID, TotalBill: ptr(800.0),
		}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("partial update", func(t *testing.T) {
		resp, err := c.events.UpdateEvent(ctx, connect.NewRequest(&api.UpdateEventRequest{
			EventID: event.ID, TotalBill: ptr(800.0), Payer: ptr("Ali"), Location: ptr("Clifton"),
		}))
		if err != nil {
			t.Fatalf("UpdateEvent failed: %v", err)
		}
		got := resp.Msg.Event
		if got.Title != "Dinner" || got.Location != "Clifton" || got.Payer != "Ali" || got.PerPersonShare != 400 {
			t.Errorf("unexpected event after update: %+v", got)
		}
	})

	t.Run("UpdateBill", func(t *testing.T) {
		resp, err := c.events.UpdateBill(ctx, connect.NewRequest(&api.UpdateBillRequest{EventID: event.ID, TotalBill: 1200}))
		if err != nil {
			t.Fatalf("UpdateBill failed: %v", err)
		}
		if resp.Msg.Event.TotalBill != 1200 || resp.Msg.Event.PerPersonShare != 600 {
			t.Errorf("unexpected event after bill update: %+v", resp.Msg.Event)
		}
	})

	t.Run("UpdateBill rejects guests and negatives", func(t *testing.T) {
		_, err := env.clientsFor(guest).events.UpdateBill(ctx, connect.NewRequest(&api.UpdateBillRequest{EventID: event.ID, TotalBill: 1}))
		assertCode(t, err, connect.CodePermissionDenied)

		_, err = c.events.UpdateBill(ctx, connect.NewRequest(&api.UpdateBillRequest{EventID: event.ID, TotalBill: -5}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})
}

func TestListAllTreats(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	saraClients := env.clientsFor(sara)
	aliClients := env.clientsFor(ali)
	planID := createPlan(t, saraClients, "Friday", "2025-03-14", "Sara, Ali")

	early := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	late := early.Add(6 * time.Hour)
	createEvent(t, saraClients, &api.CreateEventRequest{DayPlanID: planID, Title: "Lunch", DateTime: &early})
	createEvent(t, aliClients, &api.CreateEventRequest{DayPlanID: planID, Title: "Dinner", DateTime: &late})

	// An event by someone no longer on the allow-list.
	if err := env.store.CreateEvent(ctx, &models.Event{
		DayPlanID: planID, OwnerEmail: "former@example.com", Title: "Old", Type: models.EventTypeOther,
	}); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	resp, err := aliClients.events.ListAllTreats(ctx, connect.NewRequest(&api.ListAllTreatsRequest{}))
	if err != nil {
		t.Fatalf("ListAllTreats failed: %v", err)
	}
	if len(resp.Msg.Events) != 2 {
		t.Fatalf("expected 2 treats, got %d", len(resp.Msg.Events))
	}
	if resp.Msg.Events[0].Title != "Dinner" || resp.Msg.Events[1].Title != "Lunch" {
		t.Errorf("expected newest first, got %s, %s", resp.Msg.Events[0].Title, resp.Msg.Events[1].Title)
	}

	list, err := aliClients.events.ListEvents(ctx, connect.NewRequest(&api.ListEventsRequest{DayPlanID: planID}))
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(list.Msg.Events) != 3 || list.Msg.Events[0].Title != "Lunch" {
		t.Errorf("expected 3 plan events with Lunch first, got %d", len(list.Msg.Events))
	}
}

func TestWatchEvents(t *testing.T) {
	env := setupTestEnv(t)
	c := env.clientsFor(sara)
	planID := createPlan(t, c, "Friday", "2025-03-14", "Sara, Ali")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := c.events.WatchEvents(ctx, connect.NewRequest(&api.WatchEventsRequest{DayPlanID: planID}))
	if err != nil {
		t.Fatalf("WatchEvents failed: %v", err)
	}
	defer stream.Close()

	if !stream.Receive() {
		t.Fatalf("expected initial snapshot: %v", stream.Err())
	}
	if n := len(stream.Msg().Events); n != 0 {
		t.Fatalf("expected empty initial snapshot, got %d events", n)
	}

	created := createEvent(t, c, &api.CreateEventRequest{DayPlanID: planID, Title: "Chai"})

	if !stream.Receive() {
		t.Fatalf("expected snapshot after create: %v", stream.Err())
	}
	events := stream.Msg().Events
	if len(events) != 1 || events[0].ID != created.ID {
		t.Fatalf("expected snapshot with the new event, got %+v", events)
	}
}

func TestWatchEvents_EndsOnClose(t *testing.T) {
	env := setupTestEnv(t)
	c := env.clientsFor(sara)
	planID := createPlan(t, c, "Friday", "2025-03-14", "Sara, Ali")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := c.events.WatchEvents(ctx, connect.NewRequest(&api.WatchEventsRequest{DayPlanID: planID}))
	if err != nil {
		t.Fatalf("WatchEvents failed: %v", err)
	}
	defer stream.Close()

	if !stream.Receive() {
		t.Fatalf("expected initial snapshot: %v", stream.Err())
	}

	env.events.Close()
	env.events.Close() // idempotent

	if stream.Receive() {
		t.Fatalf("expected stream to end, got %+v", stream.Msg())
	}
	if err := stream.Err(); err != nil {
		t.Errorf("expected clean end of stream, got %v", err)
	}
	if ctx.Err() != nil {
		t.Error("stream ended by timeout, not by Close")
	}

	// Unary calls keep working after streams are closed.
	createEvent(t, c, &api.CreateEventRequest{DayPlanID: planID, Title: "Chai"})
}

func TestWatchEvents_RequiresToken(t *testing.T) {
	env := setupTestEnv(t)
	stream, err := env.clientsFor(noIdentity).events.WatchEvents(context.Background(),
		connect.NewRequest(&api.WatchEventsRequest{DayPlanID: "p1"}))
	if err != nil {
		assertCode(t, err, connect.CodeUnauthenticated)
		return
	}
	defer stream.Close()
	if stream.Receive() {
		t.Fatal("expected no messages without a token")
	}
	assertCode(t, stream.Err(), connect.CodeUnauthenticated)
}
