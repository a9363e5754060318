package identity

import (
	"context"
	"testing"
	"time"

	"github.com/commercelens/pixel-backend/internal/entity"
	uuid2 "github.com/gofrs/uuid"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVisitorRepo struct {
	byID    map[uuid2.UUID]*entity.Visitor
	creates int
	updates int
}

func newFakeVisitorRepo() *fakeVisitorRepo {
	return &fakeVisitorRepo{byID: make(map[uuid2.UUID]*entity.Visitor)}
}

func (r *fakeVisitorRepo) GetByID(ctx context.Context, q sqlx.ExtContext, id uuid2.UUID) (*entity.Visitor, error) {
	return r.byID[id], nil
}

func (r *fakeVisitorRepo) GetByExternalID(ctx context.Context, q sqlx.ExtContext, externalID string) (*entity.Visitor, error) {
	for _, v := range r.byID {
		if v.ExternalID != nil && *v.ExternalID == externalID {
			return v, nil
		}
	}
	return nil, nil
}

func (r *fakeVisitorRepo) Create(ctx context.Context, q sqlx.ExtContext, visitor *entity.Visitor) error {
	r.creates++
	r.byID[visitor.ID] = visitor
	return nil
}

func (r *fakeVisitorRepo) Update(ctx context.Context, q sqlx.ExtContext, visitor *entity.Visitor) error {
	r.updates++
	r.byID[visitor.ID] = visitor
	return nil
}

func strPtr(s string) *string { return &s }

func TestResolveVisitorCreatesWithCanonicalSuppliedID(t *testing.T) {
	repo := newFakeVisitorRepo()
	svc := NewIdentityService(repo)

	supplied := uuid.New().String()
	eventTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	visitor, err := svc.ResolveVisitor(context.Background(), nil,
		&entity.VisitorPayload{ID: &supplied}, eventTime)

	require.NoError(t, err)
	assert.Equal(t, supplied, visitor.ID.String())
	assert.Nil(t, visitor.ExternalID)
	assert.Equal(t, eventTime, visitor.FirstSeenAt)
	assert.Equal(t, eventTime, visitor.LastSeenAt)
	assert.Equal(t, 1, repo.creates)
}

func TestResolveVisitorKeepsArbitraryTokenAsExternalID(t *testing.T) {
	repo := newFakeVisitorRepo()
	svc := NewIdentityService(repo)

	visitor, err := svc.ResolveVisitor(context.Background(), nil,
		&entity.VisitorPayload{ID: strPtr("shopify_cust_42")}, time.Now().UTC())

	require.NoError(t, err)
	assert.NotEqual(t, uuid2.Nil, visitor.ID)
	require.NotNil(t, visitor.ExternalID)
	assert.Equal(t, "shopify_cust_42", *visitor.ExternalID)
}

func TestResolveVisitorIsIdempotent(t *testing.T) {
	repo := newFakeVisitorRepo()
	svc := NewIdentityService(repo)
	eventTime := time.Now().UTC()

	payload := &entity.VisitorPayload{ID: strPtr("ext-token-7"), Email: strPtr("a@x.com")}

	first, err := svc.ResolveVisitor(context.Background(), nil, payload, eventTime)
	require.NoError(t, err)

	second, err := svc.ResolveVisitor(context.Background(), nil, payload, eventTime.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.creates)
	assert.Len(t, repo.byID, 1)
}

func TestResolveVisitorMatchesByExternalIDField(t *testing.T) {
	repo := newFakeVisitorRepo()
	svc := NewIdentityService(repo)
	eventTime := time.Now().UTC()

	created, err := svc.ResolveVisitor(context.Background(), nil,
		&entity.VisitorPayload{ExternalID: strPtr("crm-99")}, eventTime)
	require.NoError(t, err)

	matched, err := svc.ResolveVisitor(context.Background(), nil,
		&entity.VisitorPayload{ExternalID: strPtr("crm-99")}, eventTime.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, created.ID, matched.ID)
	assert.Equal(t, 1, repo.creates)
}

func TestResolveVisitorNeverBlanksIdentityFields(t *testing.T) {
	repo := newFakeVisitorRepo()
	svc := NewIdentityService(repo)
	eventTime := time.Now().UTC()

	created, err := svc.ResolveVisitor(context.Background(), nil,
		&entity.VisitorPayload{ID: strPtr("tok-1"), Email: strPtr("a@x.com"), FirstName: strPtr("Ada")}, eventTime)
	require.NoError(t, err)
	require.NotNil(t, created.Email)

	// Later anonymous event: no email, empty first name, literal undefined phone.
	updated, err := svc.ResolveVisitor(context.Background(), nil,
		&entity.VisitorPayload{ID: strPtr("tok-1"), FirstName: strPtr(""), Phone: strPtr("undefined")}, eventTime.Add(time.Minute))
	require.NoError(t, err)

	require.NotNil(t, updated.Email)
	assert.Equal(t, "a@x.com", *updated.Email)
	require.NotNil(t, updated.FirstName)
	assert.Equal(t, "Ada", *updated.FirstName)
	assert.Nil(t, updated.Phone)
}

func TestResolveVisitorOverwritesWithNewValues(t *testing.T) {
	repo := newFakeVisitorRepo()
	svc := NewIdentityService(repo)
	eventTime := time.Now().UTC()

	_, err := svc.ResolveVisitor(context.Background(), nil,
		&entity.VisitorPayload{ID: strPtr("tok-2"), Email: strPtr("old@x.com")}, eventTime)
	require.NoError(t, err)

	updated, err := svc.ResolveVisitor(context.Background(), nil,
		&entity.VisitorPayload{ID: strPtr("tok-2"), Email: strPtr("new@x.com")}, eventTime.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, "new@x.com", *updated.Email)
}

func TestResolveVisitorBackfillsExternalIDOnce(t *testing.T) {
	repo := newFakeVisitorRepo()
	svc := NewIdentityService(repo)
	eventTime := time.Now().UTC()

	supplied := uuid.New().String()
	created, err := svc.ResolveVisitor(context.Background(), nil,
		&entity.VisitorPayload{ID: &supplied}, eventTime)
	require.NoError(t, err)
	require.Nil(t, created.ExternalID)

	backfilled, err := svc.ResolveVisitor(context.Background(), nil,
		&entity.VisitorPayload{ID: &supplied, ExternalID: strPtr("crm-1")}, eventTime.Add(time.Minute))
	require.NoError(t, err)
	require.NotNil(t, backfilled.ExternalID)
	assert.Equal(t, "crm-1", *backfilled.ExternalID)

	// Already populated, a different token must not replace it.
	kept, err := svc.ResolveVisitor(context.Background(), nil,
		&entity.VisitorPayload{ID: &supplied, ExternalID: strPtr("crm-2")}, eventTime.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "crm-1", *kept.ExternalID)
}

func TestResolveVisitorMergesTraits(t *testing.T) {
	repo := newFakeVisitorRepo()
	svc := NewIdentityService(repo)
	eventTime := time.Now().UTC()

	_, err := svc.ResolveVisitor(context.Background(), nil,
		&entity.VisitorPayload{
			ID:     strPtr("tok-3"),
			Traits: map[string]interface{}{"plan": "free", "locale": "en"},
		}, eventTime)
	require.NoError(t, err)

	updated, err := svc.ResolveVisitor(context.Background(), nil,
		&entity.VisitorPayload{
			ID:      strPtr("tok-3"),
			Traits:  map[string]interface{}{"plan": "pro", "empty": ""},
			Address: map[string]interface{}{"city": "Berlin", "zip": "undefined"},
		}, eventTime.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, "pro", updated.Traits["plan"])
	assert.Equal(t, "en", updated.Traits["locale"])
	assert.NotContains(t, updated.Traits, "empty")

	address, ok := updated.Traits["address"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Berlin", address["city"])
	assert.NotContains(t, address, "zip")
}

func TestBuildTraitsDropsEmptyValues(t *testing.T) {
	traits := buildTraits(
		map[string]interface{}{"a": "1", "b": "", "c": nil, "d": "undefined"},
		map[string]interface{}{},
	)

	assert.Equal(t, entity.JSONMap{"a": "1"}, traits)
	assert.Nil(t, buildTraits(nil, nil))
}
