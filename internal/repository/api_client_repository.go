// internal/repository/api_client_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/commercelens/pixel-backend/internal/entity"
	uuid2 "github.com/gofrs/uuid"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type APIClientRepository interface {
	Create(ctx context.Context, client *entity.APIClient) error
	GetByAPIKey(ctx context.Context, apiKey string) (*entity.APIClient, error)
	GetAll(ctx context.Context, filter entity.APIClientFilter) ([]entity.APIClient, error)
	UpdateLastUsed(ctx context.Context, apiKey string) error
	Deactivate(ctx context.Context, id uuid2.UUID) error
}

type apiClientRepository struct {
	db *sqlx.DB
}

func NewAPIClientRepository(db *sqlx.DB) APIClientRepository {
	return &apiClientRepository{db: db}
}

func generateAPIKey() string {
	return "cl_" + strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
}

func (r *apiClientRepository) Create(ctx context.Context, client *entity.APIClient) error {
	client.ID = uuid2.UUID(uuid.New())
	client.APIKey = generateAPIKey()
	client.IsActive = true
	client.CreatedAt = time.Now().UTC()
	client.UpdatedAt = client.CreatedAt

	query := `
		INSERT INTO api_clients (id, name, api_key, is_active, created_at, updated_at)
		VALUES (:id, :name, :api_key, :is_active, :created_at, :updated_at)`

	_, err := r.db.NamedExecContext(ctx, query, client)
	return err
}

func (r *apiClientRepository) GetByAPIKey(ctx context.Context, apiKey string) (*entity.APIClient, error) {
	var client entity.APIClient
	query := `SELECT * FROM api_clients WHERE api_key = $1 AND is_active = true`

	err := r.db.GetContext(ctx, &client, query, apiKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &client, nil
}

func (r *apiClientRepository) GetAll(ctx context.Context, filter entity.APIClientFilter) ([]entity.APIClient, error) {
	var clients []entity.APIClient

	query := "SELECT * FROM api_clients WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.IsActive != nil {
		query += fmt.Sprintf(" AND is_active = $%d", argIndex)
		args = append(args, *filter.IsActive)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	err := r.db.SelectContext(ctx, &clients, query, args...)
	return clients, err
}

func (r *apiClientRepository) UpdateLastUsed(ctx context.Context, apiKey string) error {
	query := `UPDATE api_clients SET last_used_at = NOW() WHERE api_key = $1`
	_, err := r.db.ExecContext(ctx, query, apiKey)
	return err
}

func (r *apiClientRepository) Deactivate(ctx context.Context, id uuid2.UUID) error {
	query := `UPDATE api_clients SET is_active = false, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
