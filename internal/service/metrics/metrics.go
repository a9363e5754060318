// internal/service/metrics/metrics.go
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/commercelens/pixel-backend/internal/entity"
	"github.com/commercelens/pixel-backend/internal/repository"
	redisService "github.com/commercelens/pixel-backend/internal/service/redis"
	"github.com/commercelens/pixel-backend/pkg/utils"
	uuid2 "github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrVisitorNotFound = errors.New("visitor not found")

const (
	summaryCacheTTL   = 60 * time.Second
	DefaultRecentSize = 50
)

type MetricsService interface {
	ComputeMetrics(ctx context.Context, start, end time.Time) (*entity.MetricsResponse, error)
	VisitorJourney(ctx context.Context, idOrExternalID string) (*entity.Journey, error)
}

type metricsService struct {
	db          *sqlx.DB
	metricsRepo repository.MetricsRepository
	eventRepo   repository.EventRepository
	sessionRepo repository.SessionRepository
	visitorRepo repository.VisitorRepository
	tpRepo      repository.TouchpointRepository
	cache       redisService.RedisService
	recentLimit int
	log         *slog.Logger
}

func NewMetricsService(
	db *sqlx.DB,
	metricsRepo repository.MetricsRepository,
	eventRepo repository.EventRepository,
	sessionRepo repository.SessionRepository,
	visitorRepo repository.VisitorRepository,
	tpRepo repository.TouchpointRepository,
	cache redisService.RedisService,
	recentLimit int,
	log *slog.Logger,
) MetricsService {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentSize
	}
	return &metricsService{
		db:          db,
		metricsRepo: metricsRepo,
		eventRepo:   eventRepo,
		sessionRepo: sessionRepo,
		visitorRepo: visitorRepo,
		tpRepo:      tpRepo,
		cache:       cache,
		recentLimit: recentLimit,
		log:         log,
	}
}

func (s *metricsService) ComputeMetrics(ctx context.Context, start, end time.Time) (*entity.MetricsResponse, error) {
	cacheKey := fmt.Sprintf("metrics:%d:%d", start.Unix(), end.Unix())

	if s.cache != nil {
		var cached entity.MetricsResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	eventStats, err := s.metricsRepo.GetEventWindowStats(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get event stats: %w", err)
	}

	sessionStats, err := s.metricsRepo.GetSessionWindowStats(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get session stats: %w", err)
	}

	recent, err := s.eventRepo.Recent(ctx, start, end, s.recentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent events: %w", err)
	}
	if recent == nil {
		recent = []entity.Event{}
	}

	summary := BuildSummary(eventStats, sessionStats)

	response := &entity.MetricsResponse{
		Range:        entity.MetricsRange{Start: start, End: end},
		Metrics:      summary,
		RecentEvents: recent,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response, summaryCacheTTL); err != nil {
			s.log.Debug("metrics cache write failed", slog.String("error", err.Error()))
		}
	}

	s.log.Debug("metrics computed", slog.String("period", utils.FormatPeriod(start, end)))

	return response, nil
}

// BuildSummary derives the dashboard ratios from the raw window counters.
// Zero denominators produce zero rates, not NaN.
func BuildSummary(eventStats *repository.EventWindowStats, sessionStats *repository.SessionWindowStats) entity.MetricsSummary {
	summary := entity.MetricsSummary{
		TotalEvents:            eventStats.TotalEvents,
		UniqueVisitors:         eventStats.UniqueVisitors,
		Sessions:               eventStats.Sessions,
		Conversions:            eventStats.Conversions,
		TotalRevenue:           utils.RoundToTwoDecimals(eventStats.TotalRevenue),
		TotalPageViews:         sessionStats.TotalPageViews,
		AvgSessionDuration:     utils.RoundToTwoDecimals(sessionStats.AvgDuration),
		AvgPageViewsPerSession: utils.RoundToTwoDecimals(sessionStats.AvgPageViews),
	}

	if eventStats.Sessions > 0 {
		summary.ConversionRate = utils.RoundToFourDecimals(float64(eventStats.Conversions) / float64(eventStats.Sessions))
	}
	if eventStats.UniqueVisitors > 0 {
		summary.RevenuePerVisitor = utils.RoundToFourDecimals(eventStats.TotalRevenue / float64(eventStats.UniqueVisitors))
	}

	return summary
}

func (s *metricsService) VisitorJourney(ctx context.Context, idOrExternalID string) (*entity.Journey, error) {
	visitor, err := s.resolveVisitor(ctx, idOrExternalID)
	if err != nil {
		return nil, err
	}
	if visitor == nil {
		return nil, ErrVisitorNotFound
	}

	sessions, err := s.sessionRepo.ListByVisitor(ctx, visitor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	events, err := s.eventRepo.ListByVisitor(ctx, visitor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	touchpoints, err := s.tpRepo.ListByVisitor(ctx, visitor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list touchpoints: %w", err)
	}
	if touchpoints == nil {
		touchpoints = []entity.Touchpoint{}
	}

	return &entity.Journey{
		Visitor:     *visitor,
		Sessions:    NestEvents(sessions, events),
		Touchpoints: touchpoints,
	}, nil
}

func (s *metricsService) resolveVisitor(ctx context.Context, idOrExternalID string) (*entity.Visitor, error) {
	if utils.IsCanonicalID(idOrExternalID) {
		id, err := uuid2.FromString(idOrExternalID)
		if err == nil {
			visitor, err := s.visitorRepo.GetByID(ctx, s.db, id)
			if err != nil {
				return nil, fmt.Errorf("failed to get visitor: %w", err)
			}
			if visitor != nil {
				return visitor, nil
			}
		}
	}

	visitor, err := s.visitorRepo.GetByExternalID(ctx, s.db, idOrExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get visitor by external id: %w", err)
	}

	return visitor, nil
}

// NestEvents groups the visitor's events under their owning sessions,
// both sides already ordered oldest first.
func NestEvents(sessions []entity.Session, events []entity.Event) []entity.JourneySession {
	nested := make([]entity.JourneySession, len(sessions))
	index := make(map[uuid2.UUID]int, len(sessions))

	for i, sess := range sessions {
		nested[i] = entity.JourneySession{Session: sess, Events: []entity.Event{}}
		index[sess.ID] = i
	}

	for _, event := range events {
		if i, ok := index[event.SessionID]; ok {
			nested[i].Events = append(nested[i].Events, event)
		}
	}

	return nested
}
