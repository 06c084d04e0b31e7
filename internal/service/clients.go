package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/casadocigano/fidelidade-api/internal/domain"
	"github.com/casadocigano/fidelidade-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var clientsTracer = otel.Tracer("service/clients")

// ClientService manages the loyalty-member roster.
type ClientService struct {
	clients port.ClientStore
	logger  *zap.Logger
}

// NewClientService creates a new client service.
func NewClientService(clients port.ClientStore, logger *zap.Logger) *ClientService {
	return &ClientService{clients: clients, logger: logger}
}

// CreateClient registers a loyalty member. An omitted store defaults to
// the registering user's store; an omitted CPF is stored as absent, not as
// an empty string, so it never collides on the unique index.
func (s *ClientService) CreateClient(ctx context.Context, identity domain.Identity, req *domain.CreateClientRequest) (*domain.Client, error) {
	ctx, span := clientsTracer.Start(ctx, "ClientService.CreateClient")
	defer span.End()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "obrigatório"}
	}

	client := &domain.Client{
		Name:  name,
		Phone: strings.TrimSpace(req.Phone),
	}

	if cpf := strings.TrimSpace(req.CPF); cpf != "" {
		client.CPF = &cpf
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		client.Email = &email
	}
	if req.Birthday != "" {
		birthday, err := time.Parse("2006-01-02", req.Birthday)
		if err != nil {
			return nil, &domain.ErrValidation{Field: "birthday", Message: "data inválida, use AAAA-MM-DD"}
		}
		client.Birthday = &birthday
	}

	client.StoreID = req.StoreID
	if client.StoreID == nil {
		client.StoreID = identity.StoreID
	}

	if err := s.clients.CreateClient(ctx, client); err != nil {
		return nil, err
	}

	s.logger.Info("client created",
		zap.Uint("client_id", client.ID),
		zap.Uintp("store_id", client.StoreID),
	)
	return client, nil
}

// ListClients pages through the roster. Store-locked users only see their
// own store unless they look up an exact CPF.
func (s *ClientService) ListClients(ctx context.Context, identity domain.Identity, cpf string, page, perPage int) (*domain.ClientPage, error) {
	ctx, span := clientsTracer.Start(ctx, "ClientService.ListClients")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	clients, total, err := s.clients.ListClients(ctx, domain.ClientQuery{
		CPF:        strings.TrimSpace(cpf),
		StoreScope: identity.ScopedStore(),
		Page:       page,
		PerPage:    perPage,
	})
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	items := make([]domain.ClientSummary, 0, len(clients))
	for i := range clients {
		items = append(items, domain.SummaryOf(&clients[i]))
	}
	return &domain.ClientPage{Total: total, Items: items}, nil
}
