// internal/repository/touchpoint_repository.go
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

// TouchpointSignature нормализованный кортеж атрибуции для дедупликации
type TouchpointSignature struct {
	Source   *string
	Medium   *string
	Campaign *string
	Content  *string
	Term     *string
}

type TouchpointRepository interface {
	GetBySignature(ctx context.Context, q sqlx.ExtContext, visitorID uuid2.UUID, sessionID *uuid2.UUID, sig TouchpointSignature) (*entity.Touchpoint, error)
	Create(ctx context.Context, q sqlx.ExtContext, touchpoint *entity.Touchpoint) error
	ListByVisitor(ctx context.Context, visitorID uuid2.UUID) ([]entity.Touchpoint, error)
}

type touchpointRepository struct {
	db *sqlx.DB
}

func NewTouchpointRepository(db *sqlx.DB) TouchpointRepository {
	return &touchpointRepository{db: db}
}

func (r *touchpointRepository) GetBySignature(ctx context.Context, q sqlx.ExtContext, visitorID uuid2.UUID, sessionID *uuid2.UUID, sig TouchpointSignature) (*entity.Touchpoint, error) {
	var touchpoint entity.Touchpoint

	// IS NOT DISTINCT FROM treats two NULLs as a match, which is exactly the
	// normalized-null comparison the dedup tuple needs.
	query := `
		SELECT * FROM touchpoints
		WHERE visitor_id = $1
		  AND session_id IS NOT DISTINCT FROM $2
		  AND source IS NOT DISTINCT FROM $3
		  AND medium IS NOT DISTINCT FROM $4
		  AND campaign IS NOT DISTINCT FROM $5
		  AND content IS NOT DISTINCT FROM $6
		  AND term IS NOT DISTINCT FROM $7
		LIMIT 1`

	err := sqlx.GetContext(ctx, q, &touchpoint, query,
		visitorID, sessionID, sig.Source, sig.Medium, sig.Campaign, sig.Content, sig.Term)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &touchpoint, nil
}

func (r *touchpointRepository) Create(ctx context.Context, q sqlx.ExtContext, touchpoint *entity.Touchpoint) error {
	touchpoint.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO touchpoints (id, visitor_id, session_id, occurred_at, source, medium, campaign, content, term, metadata, created_at)
		VALUES (:id, :visitor_id, :session_id, :occurred_at, :source, :medium, :campaign, :content, :term, :metadata, :created_at)`

	_, err := sqlx.NamedExecContext(ctx, q, query, touchpoint)
	return err
}

func (r *touchpointRepository) ListByVisitor(ctx context.Context, visitorID uuid2.UUID) ([]entity.Touchpoint, error) {
	var touchpoints []entity.Touchpoint
	query := `SELECT * FROM touchpoints WHERE visitor_id = $1 ORDER BY occurred_at ASC`

	err := r.db.SelectContext(ctx, &touchpoints, query, visitorID)
	return touchpoints, err
}
