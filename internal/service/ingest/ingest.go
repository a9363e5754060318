// internal/service/ingest/ingest.go
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/commercelens/pixel-backend/internal/entity"
	"github.com/commercelens/pixel-backend/internal/observability"
	"github.com/commercelens/pixel-backend/internal/repository"
	"github.com/commercelens/pixel-backend/internal/service/identity"
	"github.com/commercelens/pixel-backend/internal/service/session"
	"github.com/commercelens/pixel-backend/internal/service/touchpoint"
	"github.com/commercelens/pixel-backend/pkg/utils"
	uuid2 "github.com/gofrs/uuid"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrMissingEventName is the single validation failure of the whole
// ingestion call; everything else in the payload is optional.
var ErrMissingEventName = errors.New("event name is required")

// Event names that imply a completed purchase-equivalent action.
var conversionEventNames = map[string]bool{
	"purchase":             true,
	"order_completed":      true,
	"order completed":      true,
	"checkout_completed":   true,
	"payment_succeeded":    true,
	"subscription_started": true,
}

var pageViewEventNames = map[string]bool{
	"page_view":   true,
	"pageview":    true,
	"page viewed": true,
	"page_viewed": true,
	"$pageview":   true,
	"screen_view": true,
}

type PixelService interface {
	Track(ctx context.Context, req *entity.TrackRequest, clientIP, userAgent string) (*entity.TrackResponse, error)
}

type pixelService struct {
	db          *sqlx.DB
	identity    identity.IdentityService
	sessions    session.SessionService
	touchpoints touchpoint.TouchpointService
	sessionRepo repository.SessionRepository
	eventRepo   repository.EventRepository
	log         *slog.Logger
}

func NewPixelService(
	db *sqlx.DB,
	identitySvc identity.IdentityService,
	sessionSvc session.SessionService,
	touchpointSvc touchpoint.TouchpointService,
	sessionRepo repository.SessionRepository,
	eventRepo repository.EventRepository,
	log *slog.Logger,
) PixelService {
	return &pixelService{
		db:          db,
		identity:    identitySvc,
		sessions:    sessionSvc,
		touchpoints: touchpointSvc,
		sessionRepo: sessionRepo,
		eventRepo:   eventRepo,
		log:         log,
	}
}

// Track runs one ingestion call: identity resolution, session resolution,
// touchpoint dedup, event insert and session-stat update, all on a single
// transaction. Either every write commits or none do.
func (s *pixelService) Track(ctx context.Context, req *entity.TrackRequest, clientIP, userAgent string) (*entity.TrackResponse, error) {
	started := time.Now()

	if req == nil || req.Event == nil || utils.CleanStringValue(req.Event.Name) == nil {
		observability.EventsIngested.WithLabelValues("invalid").Inc()
		return nil, ErrMissingEventName
	}

	resp, err := s.trackOnce(ctx, req, clientIP, userAgent)
	if err != nil && isUniqueViolation(err) {
		// Duplicate beacons racing to create the same brand-new visitor: the
		// losing transaction aborts on the external-id unique index. One
		// restart re-resolves against the committed winner.
		s.log.Warn("visitor insert conflict, retrying ingestion", slog.String("error", err.Error()))
		resp, err = s.trackOnce(ctx, req, clientIP, userAgent)
	}

	observability.IngestDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		observability.EventsIngested.WithLabelValues("error").Inc()
		return nil, err
	}

	observability.EventsIngested.WithLabelValues("ok").Inc()
	return resp, nil
}

func (s *pixelService) trackOnce(ctx context.Context, req *entity.TrackRequest, clientIP, userAgent string) (*entity.TrackResponse, error) {
	eventTime := resolveEventTime(req.Event)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	visitor, err := s.identity.ResolveVisitor(ctx, tx, req.Visitor, eventTime)
	if err != nil {
		return nil, err
	}

	tctx := session.TrackingContext{
		Page:      req.Page,
		Device:    req.Device,
		UTM:       req.UTM,
		IPAddress: utils.CleanStringValue(clientIP),
		UserAgent: utils.CleanStringValue(userAgent),
		EventTime: eventTime,
	}

	sess, isNew, err := s.sessions.ResolveSession(ctx, tx, visitor.ID, req.Session, tctx)
	if err != nil {
		return nil, err
	}

	// An explicit touchpoint{} wins over plain utm{} query params.
	attribution := req.Touchpoint
	if attribution == nil {
		attribution = req.UTM
	}
	if _, err := s.touchpoints.Record(ctx, tx, visitor.ID, sess.ID, attribution, eventTime); err != nil {
		return nil, err
	}

	event := buildEvent(req, visitor, sess, eventTime)
	if err := s.eventRepo.Create(ctx, tx, event); err != nil {
		return nil, fmt.Errorf("failed to store event: %w", err)
	}

	if err := s.sessionRepo.ApplyEventStats(ctx, tx, sess.ID, eventTime, IsPageViewName(event.Name)); err != nil {
		return nil, fmt.Errorf("failed to update session stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ingestion transaction: %w", err)
	}

	s.log.Debug("event ingested",
		slog.String("event", event.Name),
		slog.String("visitor_id", visitor.ID.String()),
		slog.String("session_id", sess.ID.String()),
		slog.Bool("new_session", isNew),
		slog.Bool("conversion", event.IsConversion))

	return &entity.TrackResponse{
		Message:   "event recorded",
		VisitorID: visitor.ID.String(),
		SessionID: sess.ID.String(),
		EventID:   event.ID.String(),
	}, nil
}

func buildEvent(req *entity.TrackRequest, visitor *entity.Visitor, sess *entity.Session, eventTime time.Time) *entity.Event {
	payload := req.Event

	event := &entity.Event{
		ID:           eventID(payload.ID),
		VisitorID:    visitor.ID,
		SessionID:    sess.ID,
		OccurredAt:   eventTime,
		Name:         *utils.CleanStringValue(payload.Name),
		SourceType:   utils.CleanString(payload.SourceType),
		PageURL:      utils.CleanString(payload.URL),
		OrderID:      utils.CleanString(payload.OrderID),
		Value:        payload.Value,
		Currency:     utils.CleanString(payload.Currency),
		IsConversion: isConversion(payload),
		Properties:   entity.JSONMap(payload.Properties),
		Items:        entity.JSONArray(payload.Items),
	}

	if page := req.Page; page != nil {
		if event.PageURL == nil {
			event.PageURL = utils.CleanString(page.URL)
		}
		event.Referrer = utils.CleanString(page.Referrer)
		event.SearchTerm = utils.CleanString(page.SearchTerm)
	}

	// Identity snapshot at the moment of this event. Payload-level values
	// win over the visitor record so historical events keep the identity
	// context they were sent with.
	event.Email = coalesce(utils.CleanString(payload.Email), visitor.Email)
	event.Phone = coalesce(utils.CleanString(payload.Phone), visitor.Phone)
	event.FirstName = coalesce(utils.CleanString(payload.FirstName), visitor.FirstName)
	event.LastName = coalesce(utils.CleanString(payload.LastName), visitor.LastName)

	return event
}

func eventID(supplied *string) uuid2.UUID {
	if cleaned := utils.CleanString(supplied); cleaned != nil && utils.IsCanonicalID(*cleaned) {
		if id, err := uuid2.FromString(*cleaned); err == nil {
			return id
		}
	}
	return uuid2.UUID(uuid.New())
}

func resolveEventTime(payload *entity.EventPayload) time.Time {
	if payload.Timestamp != nil {
		if t, ok := utils.ParseTimestamp(*payload.Timestamp); ok {
			return t
		}
	}
	return time.Now().UTC()
}

func isConversion(payload *entity.EventPayload) bool {
	if payload.IsConversion != nil {
		return *payload.IsConversion
	}
	return IsConversionName(payload.Name)
}

func IsConversionName(name string) bool {
	return conversionEventNames[strings.ToLower(strings.TrimSpace(name))]
}

func IsPageViewName(name string) bool {
	return pageViewEventNames[strings.ToLower(strings.TrimSpace(name))]
}

func coalesce(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
