package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/casadocigano/fidelidade-api/internal/domain"
	"github.com/casadocigano/fidelidade-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var usersTracer = otel.Tracer("service/users")

// UserService handles the ADMIN-only account management and the store
// catalog listing.
type UserService struct {
	users  port.UserStore
	stores port.StoreDirectory
	logger *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(users port.UserStore, stores port.StoreDirectory, logger *zap.Logger) *UserService {
	return &UserService{users: users, stores: stores, logger: logger}
}

func validRole(role string) bool {
	switch role {
	case domain.RoleAdmin, domain.RoleManager, domain.RoleAttendant:
		return true
	}
	return false
}

// requireAdmin gates every operation in this service.
func requireAdmin(identity domain.Identity) error {
	if !identity.IsAdmin() {
		return &domain.ErrForbidden{Action: "gerenciar usuários"}
	}
	return nil
}

// ListStores returns the store catalog.
func (s *UserService) ListStores(ctx context.Context, identity domain.Identity) ([]domain.Store, error) {
	ctx, span := usersTracer.Start(ctx, "UserService.ListStores")
	defer span.End()

	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	return s.stores.ListStores(ctx)
}

// ListUsers returns every operator account, newest first.
func (s *UserService) ListUsers(ctx context.Context, identity domain.Identity) ([]domain.UserProfile, error) {
	ctx, span := usersTracer.Start(ctx, "UserService.ListUsers")
	defer span.End()

	if err := requireAdmin(identity); err != nil {
		return nil, err
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	profiles := make([]domain.UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, domain.ProfileOf(&users[i]))
	}
	return profiles, nil
}

// CreateUser creates an operator account. A user bound to a store is
// store-locked; one without a store sees every store.
func (s *UserService) CreateUser(ctx context.Context, identity domain.Identity, req *domain.CreateUserRequest) (*domain.UserProfile, error) {
	ctx, span := usersTracer.Start(ctx, "UserService.CreateUser")
	defer span.End()

	if err := requireAdmin(identity); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "obrigatório"}
	}
	if email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "obrigatório"}
	}
	if req.Password == "" {
		return nil, &domain.ErrValidation{Field: "password", Message: "obrigatório"}
	}

	role := req.Role
	if role == "" {
		role = domain.RoleAttendant
	}
	if !validRole(role) {
		return nil, &domain.ErrValidation{Field: "role", Message: "papel inválido"}
	}

	if req.StoreID != nil {
		store, err := s.stores.GetStore(ctx, *req.StoreID)
		if err != nil {
			return nil, fmt.Errorf("get store: %w", err)
		}
		if store == nil {
			return nil, &domain.ErrNotFound{Resource: "store", ID: strconv.FormatUint(uint64(*req.StoreID), 10)}
		}
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		StoreLocked:  req.StoreID != nil,
		StoreID:      req.StoreID,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created",
		zap.Uint("user_id", user.ID),
		zap.String("role", user.Role),
		zap.Bool("store_locked", user.StoreLocked),
	)
	span.SetAttributes(attribute.Int("user.id", int(user.ID)))

	profile := domain.ProfileOf(user)
	return &profile, nil
}

// UpdateUser applies a partial update. The store lock always follows the
// store binding: set a store and the user is locked to it, clear it and
// the user roams.
func (s *UserService) UpdateUser(ctx context.Context, identity domain.Identity, id uint, req *domain.UpdateUserRequest) (*domain.UserProfile, error) {
	ctx, span := usersTracer.Start(ctx, "UserService.UpdateUser")
	defer span.End()

	if err := requireAdmin(identity); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, &domain.ErrNotFound{Resource: "user", ID: strconv.FormatUint(uint64(id), 10)}
	}

	if req.Name != nil {
		if name := strings.TrimSpace(*req.Name); name != "" {
			user.Name = name
		}
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Role != nil {
		if !validRole(*req.Role) {
			return nil, &domain.ErrValidation{Field: "role", Message: "papel inválido"}
		}
		user.Role = *req.Role
	}
	if req.StoreID != nil {
		store, err := s.stores.GetStore(ctx, *req.StoreID)
		if err != nil {
			return nil, fmt.Errorf("get store: %w", err)
		}
		if store == nil {
			return nil, &domain.ErrNotFound{Resource: "store", ID: strconv.FormatUint(uint64(*req.StoreID), 10)}
		}
		user.StoreID = req.StoreID
	}
	user.StoreLocked = user.StoreID != nil

	if req.Password != nil && *req.Password != "" {
		hash, err := HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", zap.Uint("user_id", user.ID))
	profile := domain.ProfileOf(user)
	return &profile, nil
}

// DeleteUser removes an operator account.
func (s *UserService) DeleteUser(ctx context.Context, identity domain.Identity, id uint) error {
	ctx, span := usersTracer.Start(ctx, "UserService.DeleteUser")
	defer span.End()

	if err := requireAdmin(identity); err != nil {
		return err
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.Uint("user_id", id))
	return nil
}
