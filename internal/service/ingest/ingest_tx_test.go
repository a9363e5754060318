package ingest

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/commercelens/pixel-backend/internal/entity"
	"github.com/commercelens/pixel-backend/internal/service/session"
	uuid2 "github.com/gofrs/uuid"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdentity struct {
	failFirst  error
	failAlways bool
	calls      int
	visitor    *entity.Visitor
}

func (f *fakeIdentity) ResolveVisitor(ctx context.Context, q sqlx.ExtContext, payload *entity.VisitorPayload, eventTime time.Time) (*entity.Visitor, error) {
	f.calls++
	if f.failFirst != nil && (f.failAlways || f.calls == 1) {
		return nil, f.failFirst
	}
	return f.visitor, nil
}

type fakeSessions struct {
	session *entity.Session
}

func (f *fakeSessions) ResolveSession(ctx context.Context, q sqlx.ExtContext, visitorID uuid2.UUID, payload *entity.SessionPayload, tctx session.TrackingContext) (*entity.Session, bool, error) {
	return f.session, true, nil
}

type fakeTouchpoints struct{}

func (f *fakeTouchpoints) Record(ctx context.Context, q sqlx.ExtContext, visitorID, sessionID uuid2.UUID, utm *entity.UTMPayload, eventTime time.Time) (*entity.Touchpoint, error) {
	return nil, nil
}

type fakeSessionRepo struct{}

func (f *fakeSessionRepo) GetByIDAndVisitor(ctx context.Context, q sqlx.ExtContext, id, visitorID uuid2.UUID) (*entity.Session, error) {
	return nil, nil
}

func (f *fakeSessionRepo) Create(ctx context.Context, q sqlx.ExtContext, s *entity.Session) error {
	return nil
}

func (f *fakeSessionRepo) ApplyEventStats(ctx context.Context, q sqlx.ExtContext, sessionID uuid2.UUID, eventAt time.Time, isPageView bool) error {
	return nil
}

func (f *fakeSessionRepo) ListByVisitor(ctx context.Context, visitorID uuid2.UUID) ([]entity.Session, error) {
	return nil, nil
}

type fakeEventRepo struct {
	createErr error
	created   []*entity.Event
}

func (f *fakeEventRepo) Create(ctx context.Context, q sqlx.ExtContext, event *entity.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, event)
	return nil
}

func (f *fakeEventRepo) ListByVisitor(ctx context.Context, visitorID uuid2.UUID) ([]entity.Event, error) {
	return nil, nil
}

func (f *fakeEventRepo) Recent(ctx context.Context, start, end time.Time, limit int) ([]entity.Event, error) {
	return nil, nil
}

func newTrackFixture(t *testing.T, identitySvc *fakeIdentity, eventRepo *fakeEventRepo) (PixelService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")

	if identitySvc.visitor == nil {
		identitySvc.visitor = &entity.Visitor{ID: uuid2.UUID(uuid.New())}
	}
	sessions := &fakeSessions{session: &entity.Session{ID: uuid2.UUID(uuid.New())}}

	svc := NewPixelService(sqlxDB, identitySvc, sessions, &fakeTouchpoints{},
		&fakeSessionRepo{}, eventRepo, slog.Default())

	return svc, mock
}

func TestTrackRollsBackWhenEventInsertFails(t *testing.T) {
	identitySvc := &fakeIdentity{}
	eventRepo := &fakeEventRepo{createErr: errors.New("insert failed")}
	svc, mock := newTrackFixture(t, identitySvc, eventRepo)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Track(context.Background(), &entity.TrackRequest{
		Event: &entity.EventPayload{Name: "page_view"},
	}, "203.0.113.7", "ua")

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	// Non-conflict failures must not be retried.
	assert.Equal(t, 1, identitySvc.calls)
	assert.Empty(t, eventRepo.created)
}

func TestTrackRetriesOnceOnVisitorInsertConflict(t *testing.T) {
	identitySvc := &fakeIdentity{failFirst: &pq.Error{Code: "23505"}}
	eventRepo := &fakeEventRepo{}
	svc, mock := newTrackFixture(t, identitySvc, eventRepo)

	// The conflict aborts the first transaction; the whole call restarts on
	// a fresh one and commits.
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Track(context.Background(), &entity.TrackRequest{
		Event: &entity.EventPayload{Name: "page_view"},
	}, "203.0.113.7", "ua")

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, identitySvc.visitor.ID.String(), resp.VisitorID)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, 2, identitySvc.calls)
	assert.Len(t, eventRepo.created, 1)
}

func TestTrackGivesUpAfterSecondConflict(t *testing.T) {
	identitySvc := &fakeIdentity{failFirst: &pq.Error{Code: "23505"}, failAlways: true}
	eventRepo := &fakeEventRepo{}
	svc, mock := newTrackFixture(t, identitySvc, eventRepo)

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Track(context.Background(), &entity.TrackRequest{
		Event: &entity.EventPayload{Name: "page_view"},
	}, "203.0.113.7", "ua")

	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())

	// Exactly one retry, never a loop.
	assert.Equal(t, 2, identitySvc.calls)
	assert.Empty(t, eventRepo.created)
}

func TestTrackCommitsOnSuccess(t *testing.T) {
	identitySvc := &fakeIdentity{}
	eventRepo := &fakeEventRepo{}
	svc, mock := newTrackFixture(t, identitySvc, eventRepo)

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Track(context.Background(), &entity.TrackRequest{
		Event: &entity.EventPayload{Name: "purchase"},
	}, "203.0.113.7", "ua")

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, eventRepo.created, 1)
	assert.True(t, eventRepo.created[0].IsConversion)
}
