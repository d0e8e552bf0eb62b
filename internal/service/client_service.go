package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/grupo-sgp/erp-api/internal/domain"
	"github.com/grupo-sgp/erp-api/internal/repository"
)

// ClientService manages the customer catalog
type ClientService struct {
	clients *repository.ClientRepository
	logger  *zap.Logger
}

func NewClientService(clients *repository.ClientRepository, logger *zap.Logger) *ClientService {
	return &ClientService{clients: clients, logger: logger}
}

// applyContacts copies up to four contact slots from the request.
func applyContacts(client *domain.Client, contacts []domain.ClientContactDTO) {
	client.Contact1Name, client.Contact1Mail, client.Contact1Tel, client.Contact1Role = "", "", "", ""
	client.Contact2Name, client.Contact2Mail, client.Contact2Tel, client.Contact2Role = "", "", "", ""
	client.Contact3Name, client.Contact3Mail, client.Contact3Tel, client.Contact3Role = "", "", "", ""
	client.Contact4Name, client.Contact4Mail, client.Contact4Tel, client.Contact4Role = "", "", "", ""
	for i, c := range contacts {
		switch i {
		case 0:
			client.Contact1Name, client.Contact1Mail, client.Contact1Tel, client.Contact1Role = c.Name, c.Email, c.Phone, c.Role
		case 1:
			client.Contact2Name, client.Contact2Mail, client.Contact2Tel, client.Contact2Role = c.Name, c.Email, c.Phone, c.Role
		case 2:
			client.Contact3Name, client.Contact3Mail, client.Contact3Tel, client.Contact3Role = c.Name, c.Email, c.Phone, c.Role
		case 3:
			client.Contact4Name, client.Contact4Mail, client.Contact4Tel, client.Contact4Role = c.Name, c.Email, c.Phone, c.Role
		}
	}
}

func (s *ClientService) Create(ctx context.Context, req domain.ClientRequest) (*domain.Client, error) {
	client := &domain.Client{
		BusinessName: strings.TrimSpace(req.BusinessName),
		TaxID:        strings.ToUpper(strings.TrimSpace(req.TaxID)),
		Address:      req.Address,
		IsActive:     true,
	}
	applyContacts(client, req.Contacts)
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return client, nil
}

func (s *ClientService) List(ctx context.Context, includeInactive bool, search string) ([]domain.Client, error) {
	return s.clients.List(ctx, includeInactive, search)
}

func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req domain.ClientRequest) (*domain.Client, error) {
	client, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	client.BusinessName = strings.TrimSpace(req.BusinessName)
	client.TaxID = strings.ToUpper(strings.TrimSpace(req.TaxID))
	client.Address = req.Address
	applyContacts(client, req.Contacts)
	if err := s.clients.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Delete deactivates a client; orders keep referencing it.
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	client, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	client.IsActive = false
	return s.clients.Update(ctx, client)
}
