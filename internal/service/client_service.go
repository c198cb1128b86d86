package service

import (
	"context"
	"fmt"

	"glassops/internal/model"
	"glassops/internal/repository"

	"github.com/google/uuid"
)

type CreateClientRequest struct {
	Name           string  `json:"name" binding:"required"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone"`
	BillingAddress *string `json:"billing_address"`
	Notes          *string `json:"notes"`
}

type UpdateClientRequest struct {
	Name           *string `json:"name"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone"`
	BillingAddress *string `json:"billing_address"`
	Notes          *string `json:"notes"`
}

type ClientService interface {
	CreateClient(ctx context.Context, req CreateClientRequest) (*model.Client, error)
	GetClient(ctx context.Context, id string) (*model.Client, error)
	ListClients(ctx context.Context, search string, page, limit int) ([]model.Client, int64, error)
	UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (*model.Client, error)
	DeleteClient(ctx context.Context, id string) error
}

type clientService struct {
	clientRepo repository.ClientRepository
}

func NewClientService(clientRepo repository.ClientRepository) ClientService {
	return &clientService{clientRepo: clientRepo}
}

func (s *clientService) CreateClient(ctx context.Context, req CreateClientRequest) (*model.Client, error) {
	client := model.Client{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		BillingAddress: req.BillingAddress,
		Notes:          req.Notes,
	}
	if err := s.clientRepo.Create(ctx, &client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &client, nil
}

func (s *clientService) GetClient(ctx context.Context, id string) (*model.Client, error) {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid client id: %w", err)
	}
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("client not found: %w", err)
	}
	return client, nil
}

func (s *clientService) ListClients(ctx context.Context, search string, page, limit int) ([]model.Client, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	clients, total, err := s.clientRepo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch clients: %w", err)
	}
	return clients, total, nil
}

func (s *clientService) UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (*model.Client, error) {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid client id: %w", err)
	}
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("client not found: %w", err)
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Email != nil {
		client.Email = req.Email
	}
	if req.Phone != nil {
		client.Phone = req.Phone
	}
	if req.BillingAddress != nil {
		client.BillingAddress = req.BillingAddress
	}
	if req.Notes != nil {
		client.Notes = req.Notes
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, id string) error {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid client id: %w", err)
	}
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		return fmt.Errorf("client not found: %w", err)
	}
	return s.clientRepo.Delete(ctx, clientID)
}
