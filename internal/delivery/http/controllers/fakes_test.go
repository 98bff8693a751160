package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var eventDate = time.Date(2030, 6, 1, 19, 0, 0, 0, time.Local)

func sampleView(id int64) *domain.EventView {
	created := eventDate.Add(-30 * 24 * time.Hour)
	return &domain.EventView{
		Event: &domain.Event{
			ID:                id,
			Title:             "Jazz night",
			Annotation:        "An evening of live jazz downtown",
			Description:       "Three bands, one stage, and a long evening of improvisation.",
			Category:          domain.Category{ID: 10, Name: "music"},
			Location:          domain.Location{ID: 1, Lat: 55.75, Lon: 37.61},
			EventDate:         eventDate,
			CreatedOn:         created,
			ParticipantLimit:  50,
			RequestModeration: true,
			Initiator:         domain.User{ID: 1, Name: "alice"},
			State:             domain.EventStatePending,
		},
		ConfirmedRequests: 3,
		Views:             42,
	}
}

type fakeEventService struct {
	view  *domain.EventView
	views []*domain.EventView
	err   error

	lastUserID  int64
	lastEventID int64
	lastDraft   domain.NewEventDraft
	lastPatch   domain.EventPatch
	lastPage    domain.PageRequest
}

func (f *fakeEventService) Create(_ context.Context, initiatorID int64, draft domain.NewEventDraft) (*domain.EventView, error) {
	f.lastUserID, f.lastDraft = initiatorID, draft
	return f.view, f.err
}

func (f *fakeEventService) UpdateByAdmin(_ context.Context, eventID int64, patch domain.EventPatch) (*domain.EventView, error) {
	f.lastEventID, f.lastPatch = eventID, patch
	return f.view, f.err
}

func (f *fakeEventService) UpdateByInitiator(_ context.Context, userID, eventID int64, patch domain.EventPatch) (*domain.EventView, error) {
	f.lastUserID, f.lastEventID, f.lastPatch = userID, eventID, patch
	return f.view, f.err
}

func (f *fakeEventService) ListByInitiator(_ context.Context, userID int64, page domain.PageRequest) ([]*domain.EventView, error) {
	f.lastUserID, f.lastPage = userID, page
	return f.views, f.err
}

func (f *fakeEventService) GetByInitiator(_ context.Context, userID, eventID int64) (*domain.EventView, error) {
	f.lastUserID, f.lastEventID = userID, eventID
	return f.view, f.err
}

type fakeRequestService struct {
	request  *domain.ParticipationRequest
	requests []*domain.ParticipationRequest
	batch    *domain.BatchResult
	err      error

	lastUserID    int64
	lastEventID   int64
	lastRequestID int64
	lastIDs       []int64
	lastDecision  domain.RequestStatus
}

func (f *fakeRequestService) Create(_ context.Context, userID, eventID int64) (*domain.ParticipationRequest, error) {
	f.lastUserID, f.lastEventID = userID, eventID
	return f.request, f.err
}

func (f *fakeRequestService) Cancel(_ context.Context, userID, requestID int64) (*domain.ParticipationRequest, error) {
	f.lastUserID, f.lastRequestID = userID, requestID
	return f.request, f.err
}

func (f *fakeRequestService) BatchResolve(_ context.Context, userID, eventID int64, ids []int64, decision domain.RequestStatus) (*domain.BatchResult, error) {
	f.lastUserID, f.lastEventID, f.lastIDs, f.lastDecision = userID, eventID, ids, decision
	return f.batch, f.err
}

func (f *fakeRequestService) ListMine(_ context.Context, userID int64) ([]*domain.ParticipationRequest, error) {
	f.lastUserID = userID
	return f.requests, f.err
}

func (f *fakeRequestService) ListForEvent(_ context.Context, userID, eventID int64) ([]*domain.ParticipationRequest, error) {
	f.lastUserID, f.lastEventID = userID, eventID
	return f.requests, f.err
}

type fakeSearchService struct {
	view  *domain.EventView
	views []*domain.EventView
	err   error

	lastPublic  domain.PublicSearchQuery
	lastAdmin   domain.AdminSearchQuery
	lastClient  domain.ClientInfo
	lastEventID int64
}

func (f *fakeSearchService) Search(_ context.Context, q domain.PublicSearchQuery, client domain.ClientInfo) ([]*domain.EventView, error) {
	f.lastPublic, f.lastClient = q, client
	return f.views, f.err
}

func (f *fakeSearchService) GetPublished(_ context.Context, eventID int64, client domain.ClientInfo) (*domain.EventView, error) {
	f.lastEventID, f.lastClient = eventID, client
	return f.view, f.err
}

func (f *fakeSearchService) SearchAdmin(_ context.Context, q domain.AdminSearchQuery) ([]*domain.EventView, error) {
	f.lastAdmin = q
	return f.views, f.err
}

// serve routes a single request through a mux registered with pattern so path values resolve.
func serve(t *testing.T, pattern string, h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.RemoteAddr = "203.0.113.9:4000"
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

// decodeData unmarshals the data field of a success envelope into dest.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var env struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	require.Nil(t, env.Error)
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

// decodeErr returns the error object of an error envelope.
func decodeErr(t *testing.T, rr *httptest.ResponseRecorder) *helpers.APIError {
	t.Helper()
	var env helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	require.NotNil(t, env.Error)
	return env.Error
}
