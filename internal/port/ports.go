// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/casadocigano/fidelidade-api/internal/domain"
)

// UserStore persists operator accounts. Lookups return (nil, nil) when no
// row matches; errors are reserved for storage failures.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id uint) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, u *domain.User) error
	DeleteUser(ctx context.Context, id uint) error
}

// StoreDirectory reads the store catalog.
type StoreDirectory interface {
	ListStores(ctx context.Context) ([]domain.Store, error)
	GetStore(ctx context.Context, id uint) (*domain.Store, error)
	// FirstStore returns the store with the lowest id, or (nil, nil) when
	// the directory is empty. Fallback for actors with no store scope.
	FirstStore(ctx context.Context) (*domain.Store, error)
}

// ClientStore persists loyalty members.
type ClientStore interface {
	CreateClient(ctx context.Context, c *domain.Client) error
	GetClientByCPF(ctx context.Context, cpf string) (*domain.Client, error)
	ListClients(ctx context.Context, q domain.ClientQuery) ([]domain.Client, int64, error)
	BirthdayClients(ctx context.Context, month time.Month, storeScope *uint) ([]domain.Client, error)
	CountClients(ctx context.Context, storeScope *uint) (int64, error)
}

// VisitLedger is the accounting surface: visit rows, derived counts, and
// the atomic redemption (insert Redemption + delete the client's Visits in
// one transaction).
type VisitLedger interface {
	AddVisit(ctx context.Context, v *domain.Visit) error
	CountVisits(ctx context.Context, clientID uint) (int64, error)
	// Redeem re-checks the goal under a row lock on the client and returns
	// *domain.ErrGoalNotReached without writing when the count is short.
	Redeem(ctx context.Context, clientID uint, storeID *uint, giftName string, goal int) (*domain.Redemption, error)
	CountVisitsSince(ctx context.Context, since time.Time, storeScope *uint) (int64, error)
	CountRedemptionsSince(ctx context.Context, since time.Time, storeScope *uint) (int64, error)
}

// Seeder provisions the default stores and accounts, idempotently.
type Seeder interface {
	Seed(ctx context.Context) (*domain.SeedResult, error)
}

// Notifier hands a recorded visit off to the client-facing channels.
// Implementations are best-effort: they must never fail the caller.
type Notifier interface {
	VisitRecorded(client domain.Client, outcome domain.VisitOutcome)
	WhatsAppLink(client domain.Client, outcome domain.VisitOutcome) string
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
