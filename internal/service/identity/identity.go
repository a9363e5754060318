// internal/service/identity/identity.go
package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/commercelens/pixel-backend/internal/entity"
	"github.com/commercelens/pixel-backend/internal/repository"
	"github.com/commercelens/pixel-backend/pkg/utils"
	uuid2 "github.com/gofrs/uuid"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// IdentityService finds or creates the canonical visitor for a pixel payload.
// Matching order: supplied id as internal id, supplied id as external id,
// then the explicit externalId field. First match wins.
type IdentityService interface {
	ResolveVisitor(ctx context.Context, q sqlx.ExtContext, payload *entity.VisitorPayload, eventTime time.Time) (*entity.Visitor, error)
}

type identityService struct {
	repo repository.VisitorRepository
}

func NewIdentityService(repo repository.VisitorRepository) IdentityService {
	return &identityService{repo: repo}
}

func (s *identityService) ResolveVisitor(ctx context.Context, q sqlx.ExtContext, payload *entity.VisitorPayload, eventTime time.Time) (*entity.Visitor, error) {
	if payload == nil {
		payload = &entity.VisitorPayload{}
	}

	suppliedID := utils.CleanString(payload.ID)
	externalID := utils.CleanString(payload.ExternalID)

	visitor, err := s.matchVisitor(ctx, q, suppliedID, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to match visitor: %w", err)
	}

	if visitor != nil {
		return s.updateVisitor(ctx, q, visitor, payload, externalID, eventTime)
	}

	visitor = s.buildVisitor(payload, suppliedID, externalID, eventTime)

	// Two near-simultaneous first sightings of the same external id can both
	// miss the lookup and race to insert. The unique index turns the loser
	// into a conflict that aborts the transaction; the ingest layer restarts
	// the whole call once so the loser re-resolves to the winner's row.
	err = s.repo.Create(ctx, q, visitor)
	if err != nil {
		return nil, fmt.Errorf("failed to create visitor: %w", err)
	}

	return visitor, nil
}

func (s *identityService) matchVisitor(ctx context.Context, q sqlx.ExtContext, suppliedID, externalID *string) (*entity.Visitor, error) {
	if suppliedID != nil && utils.IsCanonicalID(*suppliedID) {
		id, err := uuid2.FromString(*suppliedID)
		if err == nil {
			visitor, err := s.repo.GetByID(ctx, q, id)
			if err != nil {
				return nil, err
			}
			if visitor != nil {
				return visitor, nil
			}
		}
	}

	if suppliedID != nil {
		visitor, err := s.repo.GetByExternalID(ctx, q, *suppliedID)
		if err != nil {
			return nil, err
		}
		if visitor != nil {
			return visitor, nil
		}
	}

	if externalID != nil {
		visitor, err := s.repo.GetByExternalID(ctx, q, *externalID)
		if err != nil {
			return nil, err
		}
		if visitor != nil {
			return visitor, nil
		}
	}

	return nil, nil
}

func (s *identityService) updateVisitor(ctx context.Context, q sqlx.ExtContext, visitor *entity.Visitor, payload *entity.VisitorPayload, externalID *string, eventTime time.Time) (*entity.Visitor, error) {
	visitor.LastSeenAt = eventTime

	// Identity fields only ever move from empty to filled or filled to
	// filled. A later anonymous event must not blank an identified visitor.
	applyIfPresent(&visitor.Email, payload.Email)
	applyIfPresent(&visitor.Phone, payload.Phone)
	applyIfPresent(&visitor.FirstName, payload.FirstName)
	applyIfPresent(&visitor.LastName, payload.LastName)

	if visitor.ExternalID == nil && externalID != nil {
		visitor.ExternalID = externalID
	}

	incoming := buildTraits(payload.Traits, payload.Address)
	visitor.Traits = mergeTraits(visitor.Traits, incoming)

	if err := s.repo.Update(ctx, q, visitor); err != nil {
		return nil, fmt.Errorf("failed to update visitor: %w", err)
	}

	return visitor, nil
}

func (s *identityService) buildVisitor(payload *entity.VisitorPayload, suppliedID, externalID *string, eventTime time.Time) *entity.Visitor {
	visitor := &entity.Visitor{
		Email:       utils.CleanString(payload.Email),
		Phone:       utils.CleanString(payload.Phone),
		FirstName:   utils.CleanString(payload.FirstName),
		LastName:    utils.CleanString(payload.LastName),
		Traits:      buildTraits(payload.Traits, payload.Address),
		FirstSeenAt: eventTime,
		LastSeenAt:  eventTime,
	}

	// The supplied id becomes the internal id only when it is one of ours;
	// arbitrary client tokens are kept as the external id instead.
	if suppliedID != nil && utils.IsCanonicalID(*suppliedID) {
		id, err := uuid2.FromString(*suppliedID)
		if err == nil {
			visitor.ID = id
		}
	}
	if visitor.ID == uuid2.Nil {
		visitor.ID = uuid2.UUID(uuid.New())
	}

	switch {
	case externalID != nil:
		visitor.ExternalID = externalID
	case suppliedID != nil && !utils.IsCanonicalID(*suppliedID):
		visitor.ExternalID = suppliedID
	}

	return visitor
}

func applyIfPresent(dst **string, value *string) {
	if cleaned := utils.CleanString(value); cleaned != nil {
		*dst = cleaned
	}
}

// buildTraits compacts the traits object and folds the address in as a
// sub-object, dropping empty and undefined values on the way.
func buildTraits(traits, address map[string]interface{}) entity.JSONMap {
	result := compactMap(traits)

	if compactAddress := compactMap(address); len(compactAddress) > 0 {
		if result == nil {
			result = entity.JSONMap{}
		}
		result["address"] = map[string]interface{}(compactAddress)
	}

	return result
}

func compactMap(m map[string]interface{}) entity.JSONMap {
	if len(m) == 0 {
		return nil
	}

	result := entity.JSONMap{}
	for k, v := range m {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			trimmed := strings.TrimSpace(s)
			if trimmed == "" || trimmed == "undefined" || trimmed == "null" {
				continue
			}
			result[k] = trimmed
			continue
		}
		result[k] = v
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// mergeTraits shallow-merges, new keys win on conflict.
func mergeTraits(existing, incoming entity.JSONMap) entity.JSONMap {
	if len(incoming) == 0 {
		return existing
	}
	if existing == nil {
		existing = entity.JSONMap{}
	}

	for k, v := range incoming {
		existing[k] = v
	}

	return existing
}
