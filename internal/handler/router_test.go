package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/casadocigano/fidelidade-api/internal/domain"
	"github.com/casadocigano/fidelidade-api/internal/handler"
	"github.com/casadocigano/fidelidade-api/internal/infra/cache"
	"github.com/casadocigano/fidelidade-api/internal/infra/observability"
	"github.com/casadocigano/fidelidade-api/internal/service"
)

// --- In-memory fakes over the port interfaces ---

type fakeUsers struct {
	users map[string]*domain.User
}

func (f *fakeUsers) CreateUser(_ context.Context, u *domain.User) error {
	if _, ok := f.users[u.Email]; ok {
		return &domain.ErrConflict{Message: "email já existe"}
	}
	u.ID = uint(len(f.users) + 1)
	f.users[u.Email] = u
	return nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	return f.users[email], nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id uint) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) ListUsers(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) UpdateUser(_ context.Context, _ *domain.User) error { return nil }
func (f *fakeUsers) DeleteUser(_ context.Context, _ uint) error         { return nil }

type fakeDirectory struct{ stores []domain.Store }

func (f *fakeDirectory) ListStores(_ context.Context) ([]domain.Store, error) { return f.stores, nil }
func (f *fakeDirectory) GetStore(_ context.Context, id uint) (*domain.Store, error) {
	for i := range f.stores {
		if f.stores[i].ID == id {
			return &f.stores[i], nil
		}
	}
	return nil, nil
}
func (f *fakeDirectory) FirstStore(_ context.Context) (*domain.Store, error) {
	if len(f.stores) == 0 {
		return nil, nil
	}
	return &f.stores[0], nil
}

type fakeClients struct{ byCPF map[string]*domain.Client }

func (f *fakeClients) CreateClient(_ context.Context, c *domain.Client) error {
	c.ID = uint(len(f.byCPF) + 1)
	if c.CPF != nil {
		if _, ok := f.byCPF[*c.CPF]; ok {
			return &domain.ErrConflict{Message: "CPF já cadastrado"}
		}
		f.byCPF[*c.CPF] = c
	}
	return nil
}

func (f *fakeClients) GetClientByCPF(_ context.Context, cpf string) (*domain.Client, error) {
	return f.byCPF[cpf], nil
}

func (f *fakeClients) ListClients(_ context.Context, _ domain.ClientQuery) ([]domain.Client, int64, error) {
	return nil, 0, nil
}

func (f *fakeClients) BirthdayClients(_ context.Context, _ time.Month, _ *uint) ([]domain.Client, error) {
	return nil, nil
}

func (f *fakeClients) CountClients(_ context.Context, _ *uint) (int64, error) {
	return int64(len(f.byCPF)), nil
}

type fakeLedger struct{ visits map[uint]int64 }

func (f *fakeLedger) AddVisit(_ context.Context, v *domain.Visit) error {
	v.ID = 1
	f.visits[v.ClientID]++
	return nil
}

func (f *fakeLedger) CountVisits(_ context.Context, clientID uint) (int64, error) {
	return f.visits[clientID], nil
}

func (f *fakeLedger) Redeem(_ context.Context, clientID uint, storeID *uint, giftName string, goal int) (*domain.Redemption, error) {
	if f.visits[clientID] < int64(goal) {
		return nil, &domain.ErrGoalNotReached{VisitsCount: f.visits[clientID], GoalThreshold: goal}
	}
	f.visits[clientID] = 0
	return &domain.Redemption{ID: 1, ClientID: clientID, StoreID: storeID, GiftName: giftName, CreatedAt: time.Now()}, nil
}

func (f *fakeLedger) CountVisitsSince(_ context.Context, _ time.Time, _ *uint) (int64, error) {
	return 0, nil
}

func (f *fakeLedger) CountRedemptionsSince(_ context.Context, _ time.Time, _ *uint) (int64, error) {
	return 0, nil
}

type fakeSeeder struct{}

func (fakeSeeder) Seed(_ context.Context) (*domain.SeedResult, error) {
	return &domain.SeedResult{OK: true, AdminLogin: "admin@cdc.com", Password: "123456"}, nil
}

type noopNotifier struct{}

func (noopNotifier) VisitRecorded(_ domain.Client, _ domain.VisitOutcome)        {}
func (noopNotifier) WhatsAppLink(_ domain.Client, _ domain.VisitOutcome) string { return "" }

// --- Test harness ---

type testEnv struct {
	router  http.Handler
	ledger  *fakeLedger
	clients *fakeClients
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	adminHash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	attendantStore := uint(1)
	users := &fakeUsers{users: map[string]*domain.User{
		"admin@cdc.com": {ID: 1, Name: "Admin", Email: "admin@cdc.com", PasswordHash: string(adminHash), Role: domain.RoleAdmin},
		"op@cdc.com":    {ID: 2, Name: "Op", Email: "op@cdc.com", PasswordHash: string(adminHash), Role: domain.RoleAttendant, StoreLocked: true, StoreID: &attendantStore},
	}}
	cpf := "12345678901"
	clients := &fakeClients{byCPF: map[string]*domain.Client{
		cpf: {ID: 1, Name: "Maria Silva", CPF: &cpf},
	}}
	directory := &fakeDirectory{stores: []domain.Store{{ID: 1, Name: "Mascote", GoalThreshold: 3}}}
	ledger := &fakeLedger{visits: map[uint]int64{}}

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	authSvc := service.NewAuthService(users, "test-secret", time.Hour, logger)
	router := handler.NewRouter(handler.Services{
		Auth:      authSvc,
		Users:     service.NewUserService(users, directory, logger),
		Clients:   service.NewClientService(clients, logger),
		Loyalty:   service.NewLoyaltyService(clients, directory, ledger, cache.New[domain.Store](time.Minute), noopNotifier{}, metrics, logger, 10, "1 Kg de Vela Palito"),
		Dashboard: service.NewDashboardService(clients, ledger, logger),
		Seeder:    fakeSeeder{},
	}, metrics, logger, []string{"http://localhost:5173"})

	return &testEnv{router: router, ledger: ledger, clients: clients}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return resp.Token
}

// --- Tests ---

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/_health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "admin@cdc.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/api/auth/me", "/api/clientes", "/api/dashboard/kpis"} {
		rec := env.do(t, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401 without token, got %d", path, rec.Code)
		}
	}
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin@cdc.com", "123456")

	rec := env.do(t, http.MethodGet, "/api/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var profile domain.UserProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if profile.Email != "admin@cdc.com" || profile.Role != domain.RoleAdmin {
		t.Errorf("unexpected profile: %+v", profile)
	}
}

func TestAdminRoutes_ForbiddenForAttendant(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "op@cdc.com", "123456")

	rec := env.do(t, http.MethodGet, "/api/admin/users", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/admin/metrics", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 on metrics, got %d", rec.Code)
	}
}

func TestVisit_UnknownClient(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin@cdc.com", "123456")

	rec := env.do(t, http.MethodPost, "/api/visitas", token, map[string]string{"cpf": "00000000000"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["error"] != "Cliente não encontrado" {
		t.Errorf("unexpected error message: %q", resp["error"])
	}
}

func TestVisitAndRedeemFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "op@cdc.com", "123456")

	// Two visits against the store goal of 3.
	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodPost, "/api/visitas", token, map[string]string{"cpf": "12345678901"})
		if rec.Code != http.StatusOK {
			t.Fatalf("visit %d: expected 200, got %d %s", i+1, rec.Code, rec.Body.String())
		}
	}

	// Redeeming early is refused with the balance in the body.
	rec := env.do(t, http.MethodPost, "/api/resgates", token, map[string]string{"cpf": "12345678901"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 before goal, got %d", rec.Code)
	}
	var refused struct {
		Error         string `json:"error"`
		VisitsCount   int64  `json:"visits_count"`
		GoalThreshold int    `json:"goal_threshold"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &refused); err != nil {
		t.Fatalf("decode refused: %v", err)
	}
	if refused.VisitsCount != 2 || refused.GoalThreshold != 3 {
		t.Errorf("expected 2/3 in refusal, got %d/%d", refused.VisitsCount, refused.GoalThreshold)
	}

	// Third visit reaches the goal.
	rec = env.do(t, http.MethodPost, "/api/visitas", token, map[string]string{"cpf": "12345678901"})
	var outcome domain.VisitOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	if !outcome.Eligible || outcome.VisitsCount != 3 {
		t.Errorf("expected eligible at 3/3, got %+v", outcome)
	}

	// Now the redemption succeeds and resets the counter.
	rec = env.do(t, http.MethodPost, "/api/resgates", token, map[string]string{"cpf": "12345678901"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 redeem, got %d %s", rec.Code, rec.Body.String())
	}
	var red domain.RedemptionOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &red); err != nil {
		t.Fatalf("decode redemption: %v", err)
	}
	if red.GiftName != "1 Kg de Vela Palito" {
		t.Errorf("expected default gift, got %q", red.GiftName)
	}
	if env.ledger.visits[1] != 0 {
		t.Errorf("expected visits reset, got %d", env.ledger.visits[1])
	}
}

func TestCreateClient_DuplicateCPFIs400(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin@cdc.com", "123456")

	rec := env.do(t, http.MethodPost, "/api/clientes", token, map[string]string{
		"name": "Other Maria", "cpf": "12345678901",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["error"] != "CPF já cadastrado" {
		t.Errorf("unexpected error: %q", resp["error"])
	}
}

func TestSeedEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/_setup/seed", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var result domain.SeedResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.OK || result.AdminLogin != "admin@cdc.com" {
		t.Errorf("unexpected seed result: %+v", result)
	}
}
