package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/casadocigano/fidelidade-api/internal/domain"
	"github.com/casadocigano/fidelidade-api/internal/service"
)

type mockUserStore struct {
	byEmail map[string]*domain.User
	byID    map[uint]*domain.User
}

func (m *mockUserStore) CreateUser(_ context.Context, u *domain.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return &domain.ErrConflict{Message: "email já existe"}
	}
	u.ID = uint(len(m.byEmail) + 1)
	m.byEmail[u.Email] = u
	m.byID[u.ID] = u
	return nil
}

func (m *mockUserStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	return m.byEmail[email], nil
}

func (m *mockUserStore) GetUserByID(_ context.Context, id uint) (*domain.User, error) {
	return m.byID[id], nil
}

func (m *mockUserStore) ListUsers(_ context.Context) ([]domain.User, error) { return nil, nil }
func (m *mockUserStore) UpdateUser(_ context.Context, _ *domain.User) error { return nil }
func (m *mockUserStore) DeleteUser(_ context.Context, _ uint) error         { return nil }

func newUserStore(t *testing.T, users ...*domain.User) *mockUserStore {
	t.Helper()
	m := &mockUserStore{byEmail: map[string]*domain.User{}, byID: map[uint]*domain.User{}}
	for _, u := range users {
		m.byEmail[u.Email] = u
		m.byID[u.ID] = u
	}
	return m
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(hash)
}

func TestLogin_Success(t *testing.T) {
	storeID := uint(2)
	store := newUserStore(t, &domain.User{
		ID:           1,
		Name:         "Gerente Mascote",
		Email:        "gerente.mascote@cdc.com",
		PasswordHash: hashOf(t, "123456"),
		Role:         domain.RoleManager,
		StoreLocked:  true,
		StoreID:      &storeID,
	})
	svc := service.NewAuthService(store, "test-secret", 8*time.Hour, zap.NewNop())

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "  Gerente.Mascote@CDC.com ",
		Password: "123456",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a signed token")
	}
	if resp.User.Role != domain.RoleManager || !resp.User.StoreLocked {
		t.Errorf("unexpected user profile: %+v", resp.User)
	}

	// The token must round-trip into the same identity.
	claims, err := svc.ValidateAccessToken(resp.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	identity, err := claims.Identity()
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	if identity.UserID != 1 || !identity.StoreLocked || identity.StoreID == nil || *identity.StoreID != 2 {
		t.Errorf("unexpected identity: %+v", identity)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	store := newUserStore(t, &domain.User{
		ID: 1, Email: "admin@cdc.com", PasswordHash: hashOf(t, "123456"), Role: domain.RoleAdmin,
	})
	svc := service.NewAuthService(store, "test-secret", 8*time.Hour, zap.NewNop())

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "admin@cdc.com", Password: "wrong"})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := service.NewAuthService(newUserStore(t), "test-secret", 8*time.Hour, zap.NewNop())

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "ghost@cdc.com", Password: "x"})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestValidateAccessToken_BadToken(t *testing.T) {
	svc := service.NewAuthService(newUserStore(t), "test-secret", 8*time.Hour, zap.NewNop())

	if _, err := svc.ValidateAccessToken("not-a-token"); err == nil {
		t.Fatal("expected error for garbage token")
	}

	// A token signed with a different secret must be rejected.
	store := newUserStore(t, &domain.User{ID: 1, Email: "a@cdc.com", PasswordHash: hashOf(t, "p"), Role: domain.RoleAdmin})
	resp, err := service.NewAuthService(store, "other-secret", 8*time.Hour, zap.NewNop()).
		Login(context.Background(), &domain.LoginRequest{Email: "a@cdc.com", Password: "p"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.ValidateAccessToken(resp.Token); err == nil {
		t.Fatal("expected signature mismatch to be rejected")
	}
}

func TestMe_DeletedUser(t *testing.T) {
	svc := service.NewAuthService(newUserStore(t), "test-secret", 8*time.Hour, zap.NewNop())

	_, err := svc.Me(context.Background(), domain.Identity{UserID: 99})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
