// internal/repository/session_repository.go
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

type SessionRepository interface {
	// GetByIDAndVisitor is deliberately scoped by visitor as well: a session
	// id replayed by a different visitor must not resolve.
	GetByIDAndVisitor(ctx context.Context, q sqlx.ExtContext, id, visitorID uuid2.UUID) (*entity.Session, error)
	Create(ctx context.Context, q sqlx.ExtContext, session *entity.Session) error
	ApplyEventStats(ctx context.Context, q sqlx.ExtContext, sessionID uuid2.UUID, eventAt time.Time, isPageView bool) error
	ListByVisitor(ctx context.Context, visitorID uuid2.UUID) ([]entity.Session, error)
}

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) GetByIDAndVisitor(ctx context.Context, q sqlx.ExtContext, id, visitorID uuid2.UUID) (*entity.Session, error) {
	var session entity.Session
	query := `SELECT * FROM sessions WHERE id = $1 AND visitor_id = $2`

	err := sqlx.GetContext(ctx, q, &session, query, id, visitorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

func (r *sessionRepository) Create(ctx context.Context, q sqlx.ExtContext, session *entity.Session) error {
	session.CreatedAt = time.Now().UTC()
	session.UpdatedAt = session.CreatedAt

	query := `
		INSERT INTO sessions (id, visitor_id, started_at, ended_at, last_event_at, page_view_count, event_count, duration_seconds,
			device_type, device_vendor, browser, os, language, screen_resolution, timezone, user_agent, ip_address,
			landing_page, referrer, utm_source, utm_medium, utm_campaign, utm_content, utm_term, created_at, updated_at)
		VALUES (:id, :visitor_id, :started_at, :ended_at, :last_event_at, :page_view_count, :event_count, :duration_seconds,
			:device_type, :device_vendor, :browser, :os, :language, :screen_resolution, :timezone, :user_agent, :ip_address,
			:landing_page, :referrer, :utm_source, :utm_medium, :utm_campaign, :utm_content, :utm_term, :created_at, :updated_at)`

	_, err := sqlx.NamedExecContext(ctx, q, query, session)
	return err
}

// ApplyEventStats moves last_event_at/ended_at forward and recomputes the
// duration from started_at, so counters stay monotonic within the session.
func (r *sessionRepository) ApplyEventStats(ctx context.Context, q sqlx.ExtContext, sessionID uuid2.UUID, eventAt time.Time, isPageView bool) error {
	query := `
		UPDATE sessions
		SET last_event_at = GREATEST(last_event_at, $1),
		    ended_at = GREATEST(COALESCE(ended_at, $1), $1),
		    duration_seconds = GREATEST(duration_seconds, EXTRACT(EPOCH FROM (GREATEST(last_event_at, $1) - started_at))::bigint),
		    event_count = event_count + 1,
		    page_view_count = page_view_count + CASE WHEN $2 THEN 1 ELSE 0 END,
		    updated_at = NOW()
		WHERE id = $3`

	_, err := q.ExecContext(ctx, query, eventAt, isPageView, sessionID)
	return err
}

func (r *sessionRepository) ListByVisitor(ctx context.Context, visitorID uuid2.UUID) ([]entity.Session, error) {
	var sessions []entity.Session
	query := `SELECT * FROM sessions WHERE visitor_id = $1 ORDER BY started_at ASC`

	err := r.db.SelectContext(ctx, &sessions, query, visitorID)
	return sessions, err
}
