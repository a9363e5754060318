// internal/repository/visitor_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/commercelens/pixel-backend/internal/entity"
	uuid2 "github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
)

// VisitorRepository works against an explicit sqlx.ExtContext so every call
// of the ingestion pipeline runs on the same transaction.
type VisitorRepository interface {
	GetByID(ctx context.Context, q sqlx.ExtContext, id uuid2.UUID) (*entity.Visitor, error)
	GetByExternalID(ctx context.Context, q sqlx.ExtContext, externalID string) (*entity.Visitor, error)
	Create(ctx context.Context, q sqlx.ExtContext, visitor *entity.Visitor) error
	Update(ctx context.Context, q sqlx.ExtContext, visitor *entity.Visitor) error
}

type visitorRepository struct {
	db *sqlx.DB
}

func NewVisitorRepository(db *sqlx.DB) VisitorRepository {
	return &visitorRepository{db: db}
}

func (r *visitorRepository) GetByID(ctx context.Context, q sqlx.ExtContext, id uuid2.UUID) (*entity.Visitor, error) {
	var visitor entity.Visitor
	query := `SELECT * FROM visitors WHERE id = $1`

	err := sqlx.GetContext(ctx, q, &visitor, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &visitor, nil
}

func (r *visitorRepository) GetByExternalID(ctx context.Context, q sqlx.ExtContext, externalID string) (*entity.Visitor, error) {
	var visitor entity.Visitor
	query := `SELECT * FROM visitors WHERE external_id = $1`

	err := sqlx.GetContext(ctx, q, &visitor, query, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &visitor, nil
}

func (r *visitorRepository) Create(ctx context.Context, q sqlx.ExtContext, visitor *entity.Visitor) error {
	visitor.CreatedAt = time.Now().UTC()
	visitor.UpdatedAt = visitor.CreatedAt

	query := `
		INSERT INTO visitors (id, external_id, email, phone, first_name, last_name, traits, first_seen_at, last_seen_at, created_at, updated_at)
		VALUES (:id, :external_id, :email, :phone, :first_name, :last_name, :traits, :first_seen_at, :last_seen_at, :created_at, :updated_at)`

	_, err := sqlx.NamedExecContext(ctx, q, query, visitor)
	return err
}

func (r *visitorRepository) Update(ctx context.Context, q sqlx.ExtContext, visitor *entity.Visitor) error {
	visitor.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE visitors
		SET external_id = :external_id,
		    email = :email,
		    phone = :phone,
		    first_name = :first_name,
		    last_name = :last_name,
		    traits = :traits,
		    last_seen_at = :last_seen_at,
		    updated_at = :updated_at
		WHERE id = :id`

	_, err := sqlx.NamedExecContext(ctx, q, query, visitor)
	return err
}
