package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/treatplanner/internal/auth"
	"github.com/mmynk/treatplanner/internal/middleware"
	"github.com/mmynk/treatplanner/internal/storage/sqlite"
	"github.com/mmynk/treatplanner/pkg/api/apiconnect"
)

var (
	sara  = auth.Identity{UserID: "u-sara", DisplayName: "Sara", Email: "sara@example.com"}
	ali   = auth.Identity{UserID: "u-ali", DisplayName: "Ali", Email: "ali@example.com"}
	guest = auth.Identity{UserID: "u-guest", DisplayName: "Bilal", Email: "bilal@example.com"}
)

const testSecret = "test-secret"

// noIdentity makes clientsFor send no token.
var noIdentity auth.Identity

// testEnv runs every service behind the real auth interceptor.
type testEnv struct {
	t      *testing.T
	store  *sqlite.SQLiteStore
	ledger *LedgerService
	events *EventService
	server *httptest.Server
	jwt    *auth.JWTManager
}

type testClients struct {
	plans  *apiconnect.PlanServiceClient
	events *apiconnect.EventServiceClient
	ledger *apiconnect.LedgerServiceClient
	users  *apiconnect.UserServiceClient
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// Create temp database
	tempDir, err := os.MkdirTemp("", "treatplanner-service-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("failed to create store: %v", err)
	}

	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	access := NewAccess(store, auth.NewAuthorizer([]string{sara.Email, ali.Email}))
	ledgerSvc := NewLedgerService(store, access, time.UTC, "PKR")
	eventSvc := NewEventService(store, access)

	interceptors := connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.NewLoggingInterceptor())

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewPlanServiceHandler(NewPlanService(store, access, time.UTC), interceptors))
	mux.Handle(apiconnect.NewEventServiceHandler(eventSvc, interceptors))
	mux.Handle(apiconnect.NewLedgerServiceHandler(ledgerSvc, interceptors))
	mux.Handle(apiconnect.NewUserServiceHandler(NewUserService(store, access), interceptors))

	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.RemoveAll(tempDir)
	})

	return &testEnv{t: t, store: store, ledger: ledgerSvc, events: eventSvc, server: server, jwt: jwtManager}
}

// bearerTransport adds a fixed Authorization header to every request.
type bearerTransport struct {
	token string
}

func (b bearerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	if b.token != "" {
		r.Header.Set("Authorization", "Bearer "+b.token)
	}
	return http.DefaultTransport.RoundTrip(r)
}

// clientsFor returns clients signed in as id. A zero identity sends no token.
func (e *testEnv) clientsFor(id auth.Identity) testClients {
	e.t.Helper()

	var token string
	if id.UserID != "" {
		var err error
		token, err = e.jwt.Generate(id)
		if err != nil {
			e.t.Fatalf("failed to generate token: %v", err)
		}
	}
	httpClient := &http.Client{Transport: bearerTransport{token: token}}

	return testClients{
		plans:  apiconnect.NewPlanServiceClient(httpClient, e.server.URL),
		events: apiconnect.NewEventServiceClient(httpClient, e.server.URL),
		ledger: apiconnect.NewLedgerServiceClient(httpClient, e.server.URL),
		users:  apiconnect.NewUserServiceClient(httpClient, e.server.URL),
	}
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %T: %v", err, err)
	}
	if connectErr.Code() != want {
		t.Errorf("expected %v, got %v: %v", want, connectErr.Code(), connectErr.Message())
	}
}

func ptr[T any](v T) *T { return &v }
