// internal/repository/event_repository.go
package repository

import (
	"context"
	"time"

	"github.com/commercelens/pixel-backend/internal/entity"
	uuid2 "github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
)

type EventRepository interface {
	Create(ctx context.Context, q sqlx.ExtContext, event *entity.Event) error
	ListByVisitor(ctx context.Context, visitorID uuid2.UUID) ([]entity.Event, error)
	Recent(ctx context.Context, start, end time.Time, limit int) ([]entity.Event, error)
}

type eventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, q sqlx.ExtContext, event *entity.Event) error {
	event.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO events (id, visitor_id, session_id, occurred_at, name, source_type, page_url, referrer, search_term,
			order_id, value, currency, is_conversion, properties, items, email, phone, first_name, last_name, created_at)
		VALUES (:id, :visitor_id, :session_id, :occurred_at, :name, :source_type, :page_url, :referrer, :search_term,
			:order_id, :value, :currency, :is_conversion, :properties, :items, :email, :phone, :first_name, :last_name, :created_at)`

	_, err := sqlx.NamedExecContext(ctx, q, query, event)
	return err
}

func (r *eventRepository) ListByVisitor(ctx context.Context, visitorID uuid2.UUID) ([]entity.Event, error) {
	var events []entity.Event
	query := `SELECT * FROM events WHERE visitor_id = $1 ORDER BY occurred_at ASC`

	err := r.db.SelectContext(ctx, &events, query, visitorID)
	return events, err
}

func (r *eventRepository) Recent(ctx context.Context, start, end time.Time, limit int) ([]entity.Event, error) {
	var events []entity.Event
	query := `SELECT * FROM events WHERE occurred_at >= $1 AND occurred_at < $2 ORDER BY occurred_at DESC LIMIT $3`

	err := r.db.SelectContext(ctx, &events, query, start, end, limit)
	return events, err
}
