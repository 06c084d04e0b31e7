package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/casadocigano/fidelidade-api/internal/domain"
	"github.com/casadocigano/fidelidade-api/internal/infra/observability"
	"github.com/casadocigano/fidelidade-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var loyaltyTracer = otel.Tracer("service/loyalty")

// LoyaltyService is the visit/redemption core. It resolves the acting
// store, counts visits against the store's goal and hands outcomes to the
// notification channels.
type LoyaltyService struct {
	clients    port.ClientStore
	stores     port.StoreDirectory
	ledger     port.VisitLedger
	storeCache port.Cache[domain.Store]
	notifier   port.Notifier
	metrics    *observability.Metrics
	logger     *zap.Logger

	defaultGoal int
	giftName    string
}

// NewLoyaltyService creates the loyalty service with all dependencies injected.
func NewLoyaltyService(
	clients port.ClientStore,
	stores port.StoreDirectory,
	ledger port.VisitLedger,
	storeCache port.Cache[domain.Store],
	notifier port.Notifier,
	metrics *observability.Metrics,
	logger *zap.Logger,
	defaultGoal int,
	giftName string,
) *LoyaltyService {
	return &LoyaltyService{
		clients:     clients,
		stores:      stores,
		ledger:      ledger,
		storeCache:  storeCache,
		notifier:    notifier,
		metrics:     metrics,
		logger:      logger,
		defaultGoal: defaultGoal,
		giftName:    giftName,
	}
}

// RegisterVisit appends one visit for the client with the given CPF and
// reports the new balance. The WhatsApp link is built synchronously for
// the response; the email goes out in the background.
func (s *LoyaltyService) RegisterVisit(ctx context.Context, identity domain.Identity, cpf string) (*domain.VisitOutcome, error) {
	ctx, span := loyaltyTracer.Start(ctx, "LoyaltyService.RegisterVisit")
	defer span.End()

	client, err := s.clientByCPF(ctx, cpf)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("client.id", int(client.ID)))

	storeID, goal, err := s.resolveStoreAndGoal(ctx, identity, client)
	if err != nil {
		return nil, err
	}

	visit := &domain.Visit{ClientID: client.ID, StoreID: storeID}
	if err := s.ledger.AddVisit(ctx, visit); err != nil {
		return nil, fmt.Errorf("add visit: %w", err)
	}

	count, err := s.ledger.CountVisits(ctx, client.ID)
	if err != nil {
		return nil, fmt.Errorf("count visits: %w", err)
	}

	eligible := count >= int64(goal)
	remaining := int64(goal) - count
	if remaining < 0 {
		remaining = 0
	}
	s.metrics.IncrVisit(eligible)

	outcome := domain.VisitOutcome{
		VisitID:       visit.ID,
		VisitsCount:   count,
		GoalThreshold: goal,
		Eligible:      eligible,
		Remaining:     remaining,
		StoreID:       storeID,
		Client:        cardOf(client),
	}
	outcome.WhatsAppURL = s.notifier.WhatsAppLink(*client, outcome)
	s.notifier.VisitRecorded(*client, outcome)

	s.logger.Info("visit registered",
		zap.Uint("client_id", client.ID),
		zap.Int64("visits_count", count),
		zap.Int("goal", goal),
		zap.Bool("eligible", eligible),
	)
	return &outcome, nil
}

// Redeem hands the gift over and resets the client's visits. The goal
// check happens atomically in the ledger, so a concurrent redemption
// cannot double-spend the same visits.
func (s *LoyaltyService) Redeem(ctx context.Context, identity domain.Identity, cpf, giftName string) (*domain.RedemptionOutcome, error) {
	ctx, span := loyaltyTracer.Start(ctx, "LoyaltyService.Redeem")
	defer span.End()

	client, err := s.clientByCPF(ctx, cpf)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("client.id", int(client.ID)))

	storeID, goal, err := s.resolveStoreAndGoal(ctx, identity, client)
	if err != nil {
		return nil, err
	}

	gift := strings.TrimSpace(giftName)
	if gift == "" {
		gift = s.giftName
	}

	red, err := s.ledger.Redeem(ctx, client.ID, storeID, gift, goal)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrRedemption()

	s.logger.Info("gift redeemed",
		zap.Uint("client_id", client.ID),
		zap.Uint("redemption_id", red.ID),
		zap.String("gift_name", red.GiftName),
	)
	return &domain.RedemptionOutcome{
		RedemptionID: red.ID,
		GiftName:     red.GiftName,
		When:         red.CreatedAt,
		StoreID:      storeID,
	}, nil
}

func (s *LoyaltyService) clientByCPF(ctx context.Context, cpf string) (*domain.Client, error) {
	cpf = strings.TrimSpace(cpf)
	if cpf == "" {
		return nil, &domain.ErrValidation{Field: "cpf", Message: "obrigatório"}
	}
	client, err := s.clients.GetClientByCPF(ctx, cpf)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if client == nil {
		return nil, &domain.ErrNotFound{Resource: "cliente", ID: cpf}
	}
	return client, nil
}

// resolveStoreAndGoal picks the store a visit or redemption is booked
// under: the acting user's store, then the client's home store, then the
// first store in the catalog. With no store at all the default goal
// applies.
func (s *LoyaltyService) resolveStoreAndGoal(ctx context.Context, identity domain.Identity, client *domain.Client) (*uint, int, error) {
	storeID := identity.StoreID
	if storeID == nil {
		storeID = client.StoreID
	}
	if storeID == nil {
		first, err := s.stores.FirstStore(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("first store: %w", err)
		}
		if first != nil {
			storeID = &first.ID
			s.logger.Debug("no store scope, falling back to first store",
				zap.Uint("store_id", first.ID),
			)
		}
	}
	if storeID == nil {
		return nil, s.defaultGoal, nil
	}

	store, err := s.storeByID(ctx, *storeID)
	if err != nil {
		return nil, 0, err
	}
	if store == nil {
		return storeID, s.defaultGoal, nil
	}
	return storeID, store.GoalThreshold, nil
}

func (s *LoyaltyService) storeByID(ctx context.Context, id uint) (*domain.Store, error) {
	key := fmt.Sprintf("store:%d", id)
	if cached, ok := s.storeCache.Get(key); ok {
		return &cached, nil
	}
	store, err := s.stores.GetStore(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}
	if store == nil {
		return nil, nil
	}
	s.storeCache.Set(key, *store)
	return store, nil
}

func cardOf(c *domain.Client) domain.ClientCard {
	card := domain.ClientCard{ID: c.ID, Name: c.Name, Phone: c.Phone}
	if c.CPF != nil {
		card.CPF = *c.CPF
	}
	if c.Email != nil {
		card.Email = *c.Email
	}
	return card
}
