// internal/repository/metrics_repository.go
package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type EventWindowStats struct {
	TotalEvents    int64   `db:"total_events"`
	UniqueVisitors int64   `db:"unique_visitors"`
	Sessions       int64   `db:"sessions"`
	Conversions    int64   `db:"conversions"`
	TotalRevenue   float64 `db:"total_revenue"`
}

type SessionWindowStats struct {
	SessionsStarted int64   `db:"sessions_started"`
	TotalPageViews  int64   `db:"total_page_views"`
	AvgDuration     float64 `db:"avg_duration"`
	AvgPageViews    float64 `db:"avg_page_views"`
}

type MetricsRepository interface {
	GetEventWindowStats(ctx context.Context, start, end time.Time) (*EventWindowStats, error)
	GetSessionWindowStats(ctx context.Context, start, end time.Time) (*SessionWindowStats, error)
}

type metricsRepository struct {
	db *sqlx.DB
}

func NewMetricsRepository(db *sqlx.DB) MetricsRepository {
	return &metricsRepository{db: db}
}

func (r *metricsRepository) GetEventWindowStats(ctx context.Context, start, end time.Time) (*EventWindowStats, error) {
	var stats EventWindowStats

	query := `
		SELECT
			COUNT(*) AS total_events,
			COUNT(DISTINCT visitor_id) AS unique_visitors,
			COUNT(DISTINCT session_id) AS sessions,
			COUNT(*) FILTER (WHERE is_conversion) AS conversions,
			COALESCE(SUM(value), 0) AS total_revenue
		FROM events
		WHERE occurred_at >= $1 AND occurred_at < $2`

	err := r.db.GetContext(ctx, &stats, query, start, end)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *metricsRepository) GetSessionWindowStats(ctx context.Context, start, end time.Time) (*SessionWindowStats, error) {
	var stats SessionWindowStats

	query := `
		SELECT
			COUNT(*) AS sessions_started,
			COALESCE(SUM(page_view_count), 0) AS total_page_views,
			COALESCE(AVG(duration_seconds), 0) AS avg_duration,
			COALESCE(AVG(page_view_count), 0) AS avg_page_views
		FROM sessions
		WHERE started_at >= $1 AND started_at < $2`

	err := r.db.GetContext(ctx, &stats, query, start, end)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
