// internal/service/apiclient/apiclient.go
package apiclient

import (
	"context"
	"fmt"

	"github.com/commercelens/pixel-backend/internal/entity"
	"github.com/commercelens/pixel-backend/internal/repository"
	uuid2 "github.com/gofrs/uuid"
)

// APIClientService issues and validates the API keys protecting the
// dashboard-facing read endpoints.
type APIClientService interface {
	CreateClient(ctx context.Context, req entity.CreateAPIClientRequest) (*entity.APIClient, error)
	GetAllClients(ctx context.Context, filter entity.APIClientFilter) ([]entity.APIClientPublic, error)
	ValidateAPIKey(ctx context.Context, apiKey string) (*entity.APIClient, error)
	DeactivateClient(ctx context.Context, id uuid2.UUID) error
}

type apiClientService struct {
	repo repository.APIClientRepository
}

func NewAPIClientService(repo repository.APIClientRepository) APIClientService {
	return &apiClientService{repo: repo}
}

func (s *apiClientService) CreateClient(ctx context.Context, req entity.CreateAPIClientRequest) (*entity.APIClient, error) {
	client := &entity.APIClient{
		Name: req.Name,
	}

	if err := s.repo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	return client, nil
}

func (s *apiClientService) GetAllClients(ctx context.Context, filter entity.APIClientFilter) ([]entity.APIClientPublic, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}

	clients, err := s.repo.GetAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to get api clients: %w", err)
	}

	publicClients := make([]entity.APIClientPublic, len(clients))
	for i, client := range clients {
		publicClients[i] = *toPublicClient(&client)
	}

	return publicClients, nil
}

func (s *apiClientService) ValidateAPIKey(ctx context.Context, apiKey string) (*entity.APIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := s.repo.GetByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to validate API key: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("invalid or inactive API key")
	}

	go func() {
		s.repo.UpdateLastUsed(context.Background(), apiKey)
	}()

	return client, nil
}

func (s *apiClientService) DeactivateClient(ctx context.Context, id uuid2.UUID) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate api client: %w", err)
	}

	return nil
}

func toPublicClient(client *entity.APIClient) *entity.APIClientPublic {
	return &entity.APIClientPublic{
		ID:         client.ID,
		Name:       client.Name,
		IsActive:   client.IsActive,
		CreatedAt:  client.CreatedAt,
		UpdatedAt:  client.UpdatedAt,
		LastUsedAt: client.LastUsedAt,
	}
}
