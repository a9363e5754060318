// internal/service/session/session.go
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/commercelens/pixel-backend/internal/entity"
	"github.com/commercelens/pixel-backend/internal/repository"
	"github.com/commercelens/pixel-backend/pkg/utils"
	uuid2 "github.com/gofrs/uuid"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const DefaultIdleTimeout = 60 * time.Minute

// TrackingContext carries the request-level context captured on the first
// event of a session: page, device, UTM snapshot and client IP.
type TrackingContext struct {
	Page      *entity.PagePayload
	Device    *entity.DevicePayload
	UTM       *entity.UTMPayload
	IPAddress *string
	UserAgent *string
	EventTime time.Time
}

type SessionService interface {
	ResolveSession(ctx context.Context, q sqlx.ExtContext, visitorID uuid2.UUID, payload *entity.SessionPayload, tctx TrackingContext) (*entity.Session, bool, error)
}

type sessionService struct {
	repo    repository.SessionRepository
	timeout time.Duration
}

func NewSessionService(repo repository.SessionRepository, timeout time.Duration) SessionService {
	if timeout <= 0 {
		timeout = DefaultIdleTimeout
	}
	return &sessionService{repo: repo, timeout: timeout}
}

// IsSessionExpired is the single definition of the idle-timeout boundary.
// A session's end is only knowable in retrospect, so there is no explicit
// close anywhere, just this check against the last event.
func IsSessionExpired(lastEventAt, now time.Time, timeout time.Duration) bool {
	return now.Sub(lastEventAt) > timeout
}

func (s *sessionService) ResolveSession(ctx context.Context, q sqlx.ExtContext, visitorID uuid2.UUID, payload *entity.SessionPayload, tctx TrackingContext) (*entity.Session, bool, error) {
	if payload != nil {
		if suppliedID := utils.CleanString(payload.ID); suppliedID != nil && utils.IsCanonicalID(*suppliedID) {
			id, err := uuid2.FromString(*suppliedID)
			if err == nil {
				existing, err := s.repo.GetByIDAndVisitor(ctx, q, id, visitorID)
				if err != nil {
					return nil, false, fmt.Errorf("failed to look up session: %w", err)
				}
				if existing != nil && !IsSessionExpired(existing.LastEventAt, tctx.EventTime, s.timeout) {
					return existing, false, nil
				}
			}
		}
	}

	created := buildSession(visitorID, tctx)
	if err := s.repo.Create(ctx, q, created); err != nil {
		return nil, false, fmt.Errorf("failed to create session: %w", err)
	}

	return created, true, nil
}

func buildSession(visitorID uuid2.UUID, tctx TrackingContext) *entity.Session {
	session := &entity.Session{
		ID:          uuid2.UUID(uuid.New()),
		VisitorID:   visitorID,
		StartedAt:   tctx.EventTime,
		LastEventAt: tctx.EventTime,
		IPAddress:   utils.CleanString(tctx.IPAddress),
		UserAgent:   utils.CleanString(tctx.UserAgent),
	}

	if device := tctx.Device; device != nil {
		session.DeviceType = utils.CleanString(device.Type)
		session.DeviceVendor = utils.CleanString(device.Vendor)
		session.Browser = utils.CleanString(device.Browser)
		session.OS = utils.CleanString(device.OS)
		session.Language = utils.CleanString(device.Language)
		session.Timezone = utils.CleanString(device.Timezone)
		if ua := utils.CleanString(device.UserAgent); ua != nil {
			session.UserAgent = ua
		}
		session.ScreenResolution = screenResolution(device.ScreenWidth, device.ScreenHeight)
	}

	if page := tctx.Page; page != nil {
		session.LandingPage = utils.CleanString(page.URL)
		session.Referrer = utils.CleanString(page.Referrer)
	}

	if utm := tctx.UTM; utm != nil {
		session.UTMSource = utils.CleanString(utm.Source)
		session.UTMMedium = utils.CleanString(utm.Medium)
		session.UTMCampaign = utils.CleanString(utm.Campaign)
		session.UTMContent = utils.CleanString(utm.Content)
		session.UTMTerm = utils.CleanString(utm.Term)
	}

	return session
}

func screenResolution(width, height *int) *string {
	if width == nil || height == nil {
		return nil
	}

	resolution := fmt.Sprintf("%dx%d", *width, *height)
	return &resolution
}
