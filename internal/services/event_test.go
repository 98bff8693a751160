package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = &domain.User{ID: 1, Name: "alice", Email: "alice@example.com"}
	bob   = &domain.User{ID: 2, Name: "bob", Email: "bob@example.com"}
	carol = &domain.User{ID: 3, Name: "carol", Email: "carol@example.com"}
	music = &domain.Category{ID: 10, Name: "music"}
	talks = &domain.Category{ID: 11, Name: "talks"}
)

type eventFixture struct {
	svc       *eventService
	events    *fakeEventRepo
	requests  *fakeRequestRepo
	locations *fakeLocationRepo
}

func newEventFixture(events ...*domain.Event) *eventFixture {
	f := &eventFixture{
		events:    newFakeEventRepo(events...),
		requests:  newFakeRequestRepo(),
		locations: &fakeLocationRepo{},
	}
	svc := NewEventService(f.events, newFakeUserRepo(alice, bob, carol),
		newFakeCategoryRepo(music, talks), f.locations, f.requests, time.Second)
	f.svc = svc.(*eventService)
	f.svc.now = fixedNow
	return f
}

func pendingEvent(id int64, initiator *domain.User) *domain.Event {
	return &domain.Event{
		ID:                id,
		Title:             "Jazz night",
		Annotation:        "Live jazz in the park",
		Description:       "Bring a blanket",
		Category:          *music,
		Location:          domain.Location{ID: 1, Lat: 55.75, Lon: 37.61},
		EventDate:         testNow.Add(48 * time.Hour),
		CreatedOn:         testNow.Add(-time.Hour),
		ParticipantLimit:  10,
		RequestModeration: true,
		Initiator:         *initiator,
		State:             domain.EventStatePending,
	}
}

func ptr[T any](v T) *T { return &v }

func validDraft() domain.NewEventDraft {
	return domain.NewEventDraft{
		Title:       "Jazz night",
		Annotation:  "Live jazz in the park",
		Description: "Bring a blanket",
		CategoryID:  music.ID,
		Location:    domain.Location{Lat: 55.75, Lon: 37.61},
		EventDate:   testNow.Add(3 * time.Hour),
	}
}

func TestEventService_Create(t *testing.T) {
	tests := []struct {
		name      string
		userID    int64
		draft     func() domain.NewEventDraft
		wantErr   error
		checkFunc func(t *testing.T, v *domain.EventView)
	}{
		{
			name:   "defaults applied",
			userID: alice.ID,
			draft:  validDraft,
			checkFunc: func(t *testing.T, v *domain.EventView) {
				e := v.Event
				require.NotZero(t, e.ID)
				assert.Equal(t, domain.EventStatePending, e.State)
				assert.Equal(t, testNow, e.CreatedOn)
				assert.Nil(t, e.PublishedOn)
				assert.False(t, e.Paid)
				assert.Equal(t, 0, e.ParticipantLimit)
				assert.True(t, e.RequestModeration)
				assert.Equal(t, alice.ID, e.Initiator.ID)
				assert.Equal(t, music.Name, e.Category.Name)
				assert.NotZero(t, e.Location.ID)
				assert.Equal(t, 0, v.ConfirmedRequests)
				assert.Equal(t, int64(0), v.Views)
			},
		},
		{
			name:   "explicit optional fields",
			userID: alice.ID,
			draft: func() domain.NewEventDraft {
				d := validDraft()
				d.Paid = ptr(true)
				d.ParticipantLimit = ptr(5)
				d.RequestModeration = ptr(false)
				return d
			},
			checkFunc: func(t *testing.T, v *domain.EventView) {
				assert.True(t, v.Event.Paid)
				assert.Equal(t, 5, v.Event.ParticipantLimit)
				assert.False(t, v.Event.RequestModeration)
			},
		},
		{
			name:   "exactly two hours ahead is accepted",
			userID: alice.ID,
			draft: func() domain.NewEventDraft {
				d := validDraft()
				d.EventDate = testNow.Add(2 * time.Hour)
				return d
			},
		},
		{
			name:   "less than two hours ahead",
			userID: alice.ID,
			draft: func() domain.NewEventDraft {
				d := validDraft()
				d.EventDate = testNow.Add(119 * time.Minute)
				return d
			},
			wantErr: domain.ErrConflict,
		},
		{
			name:   "date checked before the user",
			userID: 99,
			draft: func() domain.NewEventDraft {
				d := validDraft()
				d.EventDate = testNow.Add(-time.Hour)
				return d
			},
			wantErr: domain.ErrConflict,
		},
		{
			name:    "unknown user",
			userID:  99,
			draft:   validDraft,
			wantErr: domain.ErrNotFound,
		},
		{
			name:   "unknown category",
			userID: alice.ID,
			draft: func() domain.NewEventDraft {
				d := validDraft()
				d.CategoryID = 404
				return d
			},
			wantErr: domain.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEventFixture()
			got, err := f.svc.Create(context.Background(), tt.userID, tt.draft())
			if tt.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Empty(t, f.events.byID)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			_, stored := f.events.byID[got.Event.ID]
			assert.True(t, stored)
			if tt.checkFunc != nil {
				tt.checkFunc(t, got)
			}
		})
	}
}

func TestEventService_Create_ReusesLocationWithSameCoordinates(t *testing.T) {
	f := newEventFixture()
	first, err := f.svc.Create(context.Background(), alice.ID, validDraft())
	require.NoError(t, err)
	second, err := f.svc.Create(context.Background(), bob.ID, validDraft())
	require.NoError(t, err)

	assert.Equal(t, first.Event.Location.ID, second.Event.Location.ID)
	assert.Len(t, f.locations.rows, 1)

	d := validDraft()
	d.Location.Lon = 37.62
	third, err := f.svc.Create(context.Background(), alice.ID, d)
	require.NoError(t, err)
	assert.NotEqual(t, first.Event.Location.ID, third.Event.Location.ID)
}

func TestEventService_UpdateByAdmin(t *testing.T) {
	published := pendingEvent(2, alice)
	published.State = domain.EventStatePublished
	publishedAt := testNow.Add(-24 * time.Hour)
	published.PublishedOn = &publishedAt
	canceled := pendingEvent(3, alice)
	canceled.State = domain.EventStateCanceled

	tests := []struct {
		name      string
		eventID   int64
		patch     domain.EventPatch
		wantErr   error
		checkFunc func(t *testing.T, e *domain.Event)
	}{
		{
			name:    "publish pending",
			eventID: 1,
			patch:   domain.EventPatch{StateAction: ptr(domain.ActionPublishEvent)},
			checkFunc: func(t *testing.T, e *domain.Event) {
				assert.Equal(t, domain.EventStatePublished, e.State)
				require.NotNil(t, e.PublishedOn)
				assert.Equal(t, testNow, *e.PublishedOn)
			},
		},
		{
			name:    "reject pending",
			eventID: 1,
			patch:   domain.EventPatch{StateAction: ptr(domain.ActionRejectEvent)},
			checkFunc: func(t *testing.T, e *domain.Event) {
				assert.Equal(t, domain.EventStateCanceled, e.State)
				assert.Nil(t, e.PublishedOn)
			},
		},
		{
			name:    "reject canceled stays canceled",
			eventID: 3,
			patch:   domain.EventPatch{StateAction: ptr(domain.ActionRejectEvent)},
			checkFunc: func(t *testing.T, e *domain.Event) {
				assert.Equal(t, domain.EventStateCanceled, e.State)
			},
		},
		{
			name:    "publish published",
			eventID: 2,
			patch:   domain.EventPatch{StateAction: ptr(domain.ActionPublishEvent)},
			wantErr: domain.ErrConflict,
		},
		{
			name:    "publish canceled",
			eventID: 3,
			patch:   domain.EventPatch{StateAction: ptr(domain.ActionPublishEvent)},
			wantErr: domain.ErrConflict,
		},
		{
			name:    "reject published",
			eventID: 2,
			patch:   domain.EventPatch{StateAction: ptr(domain.ActionRejectEvent)},
			wantErr: domain.ErrConflict,
		},
		{
			name:    "initiator action",
			eventID: 1,
			patch:   domain.EventPatch{StateAction: ptr(domain.ActionSendToReview)},
			wantErr: domain.ErrConflict,
		},
		{
			name:    "published event keeps its publication time",
			eventID: 2,
			patch:   domain.EventPatch{Title: ptr("Late jazz")},
			checkFunc: func(t *testing.T, e *domain.Event) {
				assert.Equal(t, "Late jazz", e.Title)
				require.NotNil(t, e.PublishedOn)
				assert.Equal(t, publishedAt, *e.PublishedOn)
			},
		},
		{
			name:    "date ninety minutes ahead is enough for admin",
			eventID: 1,
			patch:   domain.EventPatch{EventDate: ptr(testNow.Add(90 * time.Minute))},
			checkFunc: func(t *testing.T, e *domain.Event) {
				assert.Equal(t, testNow.Add(90*time.Minute), e.EventDate)
			},
		},
		{
			name:    "date less than an hour ahead",
			eventID: 1,
			patch: domain.EventPatch{
				Title:       ptr("Changed"),
				EventDate:   ptr(testNow.Add(59 * time.Minute)),
				StateAction: ptr(domain.ActionPublishEvent),
			},
			wantErr: domain.ErrConflict,
		},
		{
			name:    "scalars category and location",
			eventID: 1,
			patch: domain.EventPatch{
				Title:             ptr("Talk"),
				Annotation:        ptr("A talk about things"),
				Description:       ptr("Long description"),
				CategoryID:        ptr(talks.ID),
				Location:          &domain.Location{Lat: 1.5, Lon: 2.5},
				Paid:              ptr(true),
				ParticipantLimit:  ptr(3),
				RequestModeration: ptr(false),
			},
			checkFunc: func(t *testing.T, e *domain.Event) {
				assert.Equal(t, "Talk", e.Title)
				assert.Equal(t, "A talk about things", e.Annotation)
				assert.Equal(t, "Long description", e.Description)
				assert.Equal(t, talks.ID, e.Category.ID)
				assert.Equal(t, 1.5, e.Location.Lat)
				assert.Equal(t, 2.5, e.Location.Lon)
				assert.True(t, e.Paid)
				assert.Equal(t, 3, e.ParticipantLimit)
				assert.False(t, e.RequestModeration)
				assert.Equal(t, domain.EventStatePending, e.State)
			},
		},
		{
			name:    "unknown category",
			eventID: 1,
			patch:   domain.EventPatch{Title: ptr("Changed"), CategoryID: ptr(int64(404))},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "unknown event",
			eventID: 404,
			patch:   domain.EventPatch{Title: ptr("Changed")},
			wantErr: domain.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEventFixture(pendingEvent(1, alice), published, canceled)
			got, err := f.svc.UpdateByAdmin(context.Background(), tt.eventID, tt.patch)
			if tt.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, got)
				assert.Zero(t, f.events.updates)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, f.events.updates)
			tt.checkFunc(t, f.events.stored(tt.eventID))
			tt.checkFunc(t, got.Event)
		})
	}
}

func TestEventService_UpdateByInitiator(t *testing.T) {
	published := pendingEvent(2, alice)
	published.State = domain.EventStatePublished
	canceled := pendingEvent(3, alice)
	canceled.State = domain.EventStateCanceled

	tests := []struct {
		name      string
		userID    int64
		eventID   int64
		patch     domain.EventPatch
		wantErr   error
		wantState domain.EventState
	}{
		{name: "cancel review", userID: alice.ID, eventID: 1,
			patch: domain.EventPatch{StateAction: ptr(domain.ActionCancelReview)}, wantState: domain.EventStateCanceled},
		{name: "send canceled back to review", userID: alice.ID, eventID: 3,
			patch: domain.EventPatch{StateAction: ptr(domain.ActionSendToReview)}, wantState: domain.EventStatePending},
		{name: "send pending to review", userID: alice.ID, eventID: 1,
			patch: domain.EventPatch{StateAction: ptr(domain.ActionSendToReview)}, wantState: domain.EventStatePending},
		{name: "edit fields without action", userID: alice.ID, eventID: 3,
			patch: domain.EventPatch{Title: ptr("Changed")}, wantState: domain.EventStateCanceled},
		{name: "not the initiator", userID: bob.ID, eventID: 1,
			patch: domain.EventPatch{Title: ptr("Changed")}, wantErr: domain.ErrNotFound},
		{name: "unknown event", userID: alice.ID, eventID: 404,
			patch: domain.EventPatch{Title: ptr("Changed")}, wantErr: domain.ErrNotFound},
		{name: "published event", userID: alice.ID, eventID: 2,
			patch: domain.EventPatch{Title: ptr("Changed")}, wantErr: domain.ErrConflict},
		{name: "admin action", userID: alice.ID, eventID: 1,
			patch: domain.EventPatch{StateAction: ptr(domain.ActionPublishEvent)}, wantErr: domain.ErrConflict},
		{name: "ninety minutes is too close for initiator", userID: alice.ID, eventID: 1,
			patch: domain.EventPatch{EventDate: ptr(testNow.Add(90 * time.Minute))}, wantErr: domain.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEventFixture(pendingEvent(1, alice), published, canceled)
			got, err := f.svc.UpdateByInitiator(context.Background(), tt.userID, tt.eventID, tt.patch)
			if tt.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Zero(t, f.events.updates)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, got.Event.State)
			assert.Equal(t, tt.wantState, f.events.stored(tt.eventID).State)
			assert.Nil(t, got.Event.PublishedOn)
		})
	}
}

func TestEventService_UpdateByAdmin_ReportsConfirmedCount(t *testing.T) {
	f := newEventFixture(pendingEvent(1, alice))
	f.requests = newFakeRequestRepo(
		&domain.ParticipationRequest{ID: 1, EventID: 1, RequesterID: bob.ID, Status: domain.RequestStatusConfirmed},
		&domain.ParticipationRequest{ID: 2, EventID: 1, RequesterID: carol.ID, Status: domain.RequestStatusPending},
	)
	f.svc.ledger = f.requests

	got, err := f.svc.UpdateByAdmin(context.Background(), 1, domain.EventPatch{Title: ptr("Changed")})
	require.NoError(t, err)
	assert.Equal(t, 1, got.ConfirmedRequests)
}

func TestEventService_ListByInitiator(t *testing.T) {
	events := []*domain.Event{pendingEvent(1, alice), pendingEvent(2, bob), pendingEvent(3, alice), pendingEvent(4, alice)}
	f := newEventFixture(events...)
	f.requests = newFakeRequestRepo(
		&domain.ParticipationRequest{ID: 1, EventID: 3, RequesterID: bob.ID, Status: domain.RequestStatusConfirmed},
		&domain.ParticipationRequest{ID: 2, EventID: 3, RequesterID: carol.ID, Status: domain.RequestStatusConfirmed},
	)
	f.svc.ledger = f.requests

	got, err := f.svc.ListByInitiator(context.Background(), alice.ID, domain.PageRequest{From: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].Event.ID)
	assert.Equal(t, 2, got[0].ConfirmedRequests)
	assert.Equal(t, int64(4), got[1].Event.ID)
	assert.Equal(t, 0, got[1].ConfirmedRequests)

	got, err = f.svc.ListByInitiator(context.Background(), carol.ID, domain.PageRequest{From: 0, Size: 10})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEventService_GetByInitiator(t *testing.T) {
	f := newEventFixture(pendingEvent(1, alice))

	got, err := f.svc.GetByInitiator(context.Background(), alice.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "Jazz night", got.Event.Title)

	_, err = f.svc.GetByInitiator(context.Background(), bob.ID, 1)
	require.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = f.svc.GetByInitiator(context.Background(), alice.ID, 2)
	require.True(t, errors.Is(err, domain.ErrNotFound))
}
