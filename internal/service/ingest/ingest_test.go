package ingest

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/commercelens/pixel-backend/internal/entity"
	uuid2 "github.com/gofrs/uuid"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestIsConversionName(t *testing.T) {
	assert.True(t, IsConversionName("purchase"))
	assert.True(t, IsConversionName("Purchase"))
	assert.True(t, IsConversionName("  order_completed "))
	assert.True(t, IsConversionName("checkout_completed"))

	assert.False(t, IsConversionName("PageView"))
	assert.False(t, IsConversionName("add_to_cart"))
	assert.False(t, IsConversionName(""))
}

func TestIsPageViewName(t *testing.T) {
	assert.True(t, IsPageViewName("page_view"))
	assert.True(t, IsPageViewName("PageView"))
	assert.True(t, IsPageViewName("$pageview"))

	assert.False(t, IsPageViewName("purchase"))
	assert.False(t, IsPageViewName("click"))
}

func TestTrackRejectsMissingEventName(t *testing.T) {
	svc := NewPixelService(nil, nil, nil, nil, nil, nil, slog.Default())

	_, err := svc.Track(context.Background(), &entity.TrackRequest{
		Event: &entity.EventPayload{Name: "   "},
	}, "", "")
	assert.ErrorIs(t, err, ErrMissingEventName)

	_, err = svc.Track(context.Background(), &entity.TrackRequest{}, "", "")
	assert.ErrorIs(t, err, ErrMissingEventName)
}

func TestResolveEventTime(t *testing.T) {
	got := resolveEventTime(&entity.EventPayload{Timestamp: strPtr("2026-03-01T12:30:00Z")})
	assert.Equal(t, time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC), got)

	// Unparseable timestamps fall back to server time.
	before := time.Now().UTC()
	got = resolveEventTime(&entity.EventPayload{Timestamp: strPtr("not a time")})
	assert.False(t, got.Before(before))

	got = resolveEventTime(&entity.EventPayload{})
	assert.False(t, got.Before(before))
}

func TestEventIDHonorsCanonicalClientID(t *testing.T) {
	supplied := uuid.New().String()
	assert.Equal(t, supplied, eventID(&supplied).String())

	token := "evt-123"
	generated := eventID(&token)
	assert.NotEqual(t, uuid2.Nil, generated)
	assert.NotEqual(t, token, generated.String())

	assert.NotEqual(t, uuid2.Nil, eventID(nil))
}

func TestIsConversionExplicitFlagWins(t *testing.T) {
	no := false
	yes := true

	assert.False(t, isConversion(&entity.EventPayload{Name: "purchase", IsConversion: &no}))
	assert.True(t, isConversion(&entity.EventPayload{Name: "click", IsConversion: &yes}))
	assert.True(t, isConversion(&entity.EventPayload{Name: "purchase"}))
	assert.False(t, isConversion(&entity.EventPayload{Name: "click"}))
}

func TestBuildEventSnapshotsIdentity(t *testing.T) {
	visitor := &entity.Visitor{
		ID:    uuid2.UUID(uuid.New()),
		Email: strPtr("stored@x.com"),
		Phone: strPtr("+111"),
	}
	sess := &entity.Session{ID: uuid2.UUID(uuid.New())}
	eventTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	req := &entity.TrackRequest{
		Event: &entity.EventPayload{
			Name:  "purchase",
			Email: strPtr("payload@x.com"),
			Value: floatPtr(49.90),
		},
		Page: &entity.PagePayload{
			URL:      strPtr("https://shop.example.com/checkout"),
			Referrer: strPtr("https://google.com"),
		},
	}

	event := buildEvent(req, visitor, sess, eventTime)

	assert.Equal(t, visitor.ID, event.VisitorID)
	assert.Equal(t, sess.ID, event.SessionID)
	assert.Equal(t, eventTime, event.OccurredAt)
	assert.True(t, event.IsConversion)

	// Payload identity wins over the stored visitor record.
	require.NotNil(t, event.Email)
	assert.Equal(t, "payload@x.com", *event.Email)
	require.NotNil(t, event.Phone)
	assert.Equal(t, "+111", *event.Phone)

	// Page URL fills in when the event payload carries none.
	require.NotNil(t, event.PageURL)
	assert.Equal(t, "https://shop.example.com/checkout", *event.PageURL)
	require.NotNil(t, event.Referrer)
	assert.Equal(t, "https://google.com", *event.Referrer)
}

func TestBuildEventNormalizesNoiseValues(t *testing.T) {
	visitor := &entity.Visitor{ID: uuid2.UUID(uuid.New())}
	sess := &entity.Session{ID: uuid2.UUID(uuid.New())}

	req := &entity.TrackRequest{
		Event: &entity.EventPayload{
			Name:     "  Page_View ",
			Currency: strPtr("undefined"),
			OrderID:  strPtr(""),
		},
	}

	event := buildEvent(req, visitor, sess, time.Now().UTC())

	assert.Equal(t, "Page_View", event.Name)
	assert.Nil(t, event.Currency)
	assert.Nil(t, event.OrderID)
	assert.False(t, event.IsConversion)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, isUniqueViolation(errors.Join(errors.New("wrapped"), &pq.Error{Code: "23505"})))

	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("plain")))
	assert.False(t, isUniqueViolation(nil))
}

func floatPtr(f float64) *float64 { return &f }
