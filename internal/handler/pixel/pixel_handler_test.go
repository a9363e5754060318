package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/commercelens/pixel-backend/internal/entity"
	"github.com/commercelens/pixel-backend/internal/service/ingest"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPixelService struct {
	resp *entity.TrackResponse
	err  error

	gotReq *entity.TrackRequest
}

func (s *stubPixelService) Track(ctx context.Context, req *entity.TrackRequest, clientIP, userAgent string) (*entity.TrackResponse, error) {
	s.gotReq = req
	return s.resp, s.err
}

func performTrack(t *testing.T, svc ingest.PixelService, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/api/v1/pixel/track", NewPixelHandler(svc).Track)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pixel/track", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTrackReturnsCreated(t *testing.T) {
	svc := &stubPixelService{resp: &entity.TrackResponse{
		Message:   "event recorded",
		VisitorID: "11111111-1111-4111-8111-111111111111",
		SessionID: "22222222-2222-4222-8222-222222222222",
		EventID:   "33333333-3333-4333-8333-333333333333",
	}}

	w := performTrack(t, svc, `{"event":{"name":"page_view"},"visitor":{"id":"tok-1"}}`)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp entity.TrackResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "event recorded", resp.Message)
	assert.Equal(t, svc.resp.VisitorID, resp.VisitorID)

	require.NotNil(t, svc.gotReq)
	require.NotNil(t, svc.gotReq.Event)
	assert.Equal(t, "page_view", svc.gotReq.Event.Name)
}

func TestTrackRejectsMissingEventName(t *testing.T) {
	svc := &stubPixelService{err: ingest.ErrMissingEventName}

	w := performTrack(t, svc, `{"event":{"name":""}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "event.name is required")
}

func TestTrackRejectsMalformedBody(t *testing.T) {
	svc := &stubPixelService{}

	w := performTrack(t, svc, `{"event":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.gotReq)
}

func TestTrackRejectsMissingEventBlock(t *testing.T) {
	svc := &stubPixelService{}

	// event is required at binding level.
	w := performTrack(t, svc, `{"visitor":{"id":"tok-1"}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.gotReq)
}

func TestTrackReportsStorageFailure(t *testing.T) {
	svc := &stubPixelService{err: errors.New("pq: connection refused")}

	w := performTrack(t, svc, `{"event":{"name":"purchase"}}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to record event")
}
