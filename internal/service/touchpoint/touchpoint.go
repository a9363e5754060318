// internal/service/touchpoint/touchpoint.go
package touchpoint

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

// TouchpointService records one attribution row per unique
// (visitor, session, source, medium, campaign, term, content) tuple.
// Repeated page views inside a session carrying the same campaign reuse the
// existing row; a genuinely different campaign mid-session gets its own.
type TouchpointService interface {
	Record(ctx context.Context, q sqlx.ExtContext, visitorID, sessionID uuid2.UUID, utm *entity.UTMPayload, eventTime time.Time) (*entity.Touchpoint, error)
}

type touchpointService struct {
	repo repository.TouchpointRepository
}

func NewTouchpointService(repo repository.TouchpointRepository) TouchpointService {
	return &touchpointService{repo: repo}
}

func (s *touchpointService) Record(ctx context.Context, q sqlx.ExtContext, visitorID, sessionID uuid2.UUID, utm *entity.UTMPayload, eventTime time.Time) (*entity.Touchpoint, error) {
	sig := Normalize(utm)
	if !hasAttribution(sig) {
		return nil, nil
	}

	existing, err := s.repo.GetBySignature(ctx, q, visitorID, &sessionID, sig)
	if err != nil {
		return nil, fmt.Errorf("failed to look up touchpoint: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	created := &entity.Touchpoint{
		ID:         uuid2.UUID(uuid.New()),
		VisitorID:  visitorID,
		SessionID:  &sessionID,
		OccurredAt: eventTime,
		Source:     sig.Source,
		Medium:     sig.Medium,
		Campaign:   sig.Campaign,
		Content:    sig.Content,
		Term:       sig.Term,
		Metadata:   entity.JSONMap(utm.ToMap()),
	}

	if err := s.repo.Create(ctx, q, created); err != nil {
		return nil, fmt.Errorf("failed to create touchpoint: %w", err)
	}

	return created, nil
}

// Normalize collapses empty and undefined UTM fields to nil so the dedup
// comparison sees one canonical "missing" value.
func Normalize(utm *entity.UTMPayload) repository.TouchpointSignature {
	if utm == nil {
		return repository.TouchpointSignature{}
	}

	return repository.TouchpointSignature{
		Source:   utils.CleanString(utm.Source),
		Medium:   utils.CleanString(utm.Medium),
		Campaign: utils.CleanString(utm.Campaign),
		Content:  utils.CleanString(utm.Content),
		Term:     utils.CleanString(utm.Term),
	}
}

func hasAttribution(sig repository.TouchpointSignature) bool {
	return sig.Source != nil || sig.Medium != nil || sig.Campaign != nil || sig.Content != nil || sig.Term != nil
}
