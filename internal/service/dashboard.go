package service

import (
	"context"
	"fmt"
	"time"

	"github.com/casadocigano/fidelidade-api/internal/domain"
	"github.com/casadocigano/fidelidade-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var dashboardTracer = otel.Tracer("service/dashboard")

// DashboardService computes the landing-page counters and the birthday
// listing, scoped to the caller's store when locked.
type DashboardService struct {
	clients port.ClientStore
	ledger  port.VisitLedger
	logger  *zap.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(clients port.ClientStore, ledger port.VisitLedger, logger *zap.Logger) *DashboardService {
	return &DashboardService{clients: clients, ledger: ledger, logger: logger}
}

// KPIs returns the 30-day visit/redemption counts and the roster total.
// The three counts are independent, so they run concurrently.
func (s *DashboardService) KPIs(ctx context.Context, identity domain.Identity) (*domain.KPIs, error) {
	ctx, span := dashboardTracer.Start(ctx, "DashboardService.KPIs")
	defer span.End()

	scope := identity.ScopedStore()
	since := time.Now().UTC().AddDate(0, 0, -30)

	var kpis domain.KPIs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.ledger.CountVisitsSince(gctx, since, scope)
		kpis.Visits30d = n
		return err
	})
	g.Go(func() error {
		n, err := s.ledger.CountRedemptionsSince(gctx, since, scope)
		kpis.Redemptions30d = n
		return err
	})
	g.Go(func() error {
		n, err := s.clients.CountClients(gctx, scope)
		kpis.ClientsTotal = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	return &kpis, nil
}

// Birthdays lists the clients whose birthday falls in the current month.
func (s *DashboardService) Birthdays(ctx context.Context, identity domain.Identity) ([]domain.BirthdayClient, error) {
	ctx, span := dashboardTracer.Start(ctx, "DashboardService.Birthdays")
	defer span.End()

	month := time.Now().UTC().Month()
	clients, err := s.clients.BirthdayClients(ctx, month, identity.ScopedStore())
	if err != nil {
		return nil, fmt.Errorf("birthday clients: %w", err)
	}

	out := make([]domain.BirthdayClient, 0, len(clients))
	for i := range clients {
		c := &clients[i]
		b := domain.BirthdayClient{ID: c.ID, Name: c.Name}
		if c.CPF != nil {
			b.CPF = *c.CPF
		}
		if c.Birthday != nil {
			iso := c.Birthday.Format("2006-01-02")
			b.Birthday = &iso
		}
		out = append(out, b)
	}
	return out, nil
}
