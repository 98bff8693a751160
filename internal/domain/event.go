package domain

import (
	"context"
	"fmt"
	"time"
)

// EventState is the lifecycle state of an event.
type EventState string

const (
	EventStatePending   EventState = "PENDING"
	EventStatePublished EventState = "PUBLISHED"
	EventStateCanceled  EventState = "CANCELED"
)

// Valid reports whether s is one of the known states.
func (s EventState) Valid() bool {
	switch s {
	case EventStatePending, EventStatePublished, EventStateCanceled:
		return true
	}
	return false
}

// StateAction is a requested move of an event's lifecycle state.
type StateAction string

const (
	ActionPublishEvent StateAction = "PUBLISH_EVENT"
	ActionRejectEvent  StateAction = "REJECT_EVENT"
	ActionSendToReview StateAction = "SEND_TO_REVIEW"
	ActionCancelReview StateAction = "CANCEL_REVIEW"
)

// Actor identifies who is mutating an event. Each actor has its own transition table.
type Actor int

const (
	ActorAdmin Actor = iota
	ActorInitiator
)

func (a Actor) String() string {
	if a == ActorAdmin {
		return "admin"
	}
	return "initiator"
}

// Lead times between the moment of a mutation and the event date.
const (
	InitiatorLeadTime = 2 * time.Hour
	AdminLeadTime     = time.Hour
)

// LeadTime returns how far ahead of now the event date must be for the actor.
func (a Actor) LeadTime() time.Duration {
	if a == ActorAdmin {
		return AdminLeadTime
	}
	return InitiatorLeadTime
}

// Bounds used when a caller does not restrict a time range.
var (
	MinTimestamp = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	MaxTimestamp = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
)

type transitionKey struct {
	actor  Actor
	from   EventState
	action StateAction
}

// transitions lists every legal (actor, state, action) move. Anything absent is a conflict.
var transitions = map[transitionKey]EventState{
	{ActorAdmin, EventStatePending, ActionPublishEvent}: EventStatePublished,
	{ActorAdmin, EventStatePending, ActionRejectEvent}:  EventStateCanceled,
	{ActorAdmin, EventStateCanceled, ActionRejectEvent}: EventStateCanceled,

	{ActorInitiator, EventStatePending, ActionSendToReview}:  EventStatePending,
	{ActorInitiator, EventStatePending, ActionCancelReview}:  EventStateCanceled,
	{ActorInitiator, EventStateCanceled, ActionSendToReview}: EventStatePending,
	{ActorInitiator, EventStateCanceled, ActionCancelReview}: EventStateCanceled,
}

// NextState returns the state an event moves to when actor applies action in state from.
func NextState(actor Actor, from EventState, action StateAction) (EventState, error) {
	to, ok := transitions[transitionKey{actor: actor, from: from, action: action}]
	if !ok {
		return "", Conflictf("cannot apply %s to an event in state %s", action, from)
	}
	return to, nil
}

// AllowedActions returns the actions an actor may submit at all.
func AllowedActions(actor Actor) []StateAction {
	if actor == ActorAdmin {
		return []StateAction{ActionPublishEvent, ActionRejectEvent}
	}
	return []StateAction{ActionSendToReview, ActionCancelReview}
}

// Category groups events.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Location is a coordinate pair. Rows are shared between events with equal coordinates.
type Location struct {
	ID  int64   `json:"-"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Event is a publishable activity with a schedule, a capacity and moderation settings.
type Event struct {
	ID                int64
	Title             string
	Annotation        string
	Description       string
	Category          Category
	Location          Location
	EventDate         time.Time
	CreatedOn         time.Time
	PublishedOn       *time.Time
	Paid              bool
	ParticipantLimit  int
	RequestModeration bool
	Initiator         User
	State             EventState
}

// URI is the resource path under which the event is exposed publicly and counted by stats.
func (e *Event) URI() string {
	return EventURI(e.ID)
}

// EventURI returns the public resource path for an event id.
func EventURI(id int64) string {
	return fmt.Sprintf("/events/%d", id)
}

// CheckEventDate verifies that date is at least lead ahead of now.
func CheckEventDate(date, now time.Time, lead time.Duration) error {
	if now.Add(lead).After(date) {
		return Conflictf("event date must be at least %.0f hour(s) after the current time, got %s",
			lead.Hours(), date.Format(time.DateTime))
	}
	return nil
}

// NewEventDraft is the input for creating an event. Nil optional fields take defaults.
type NewEventDraft struct {
	Title             string
	Annotation        string
	Description       string
	CategoryID        int64
	Location          Location
	EventDate         time.Time
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
}

// EventPatch is a partial update. Only non-nil fields are applied.
type EventPatch struct {
	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *int64
	Location          *Location
	EventDate         *time.Time
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
	StateAction       *StateAction
}

// ApplyScalars copies the present scalar fields onto e. Category, location and state are
// resolved by the caller because they need storage or transition checks.
func (p EventPatch) ApplyScalars(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Annotation != nil {
		e.Annotation = *p.Annotation
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.EventDate != nil {
		e.EventDate = *p.EventDate
	}
	if p.Paid != nil {
		e.Paid = *p.Paid
	}
	if p.ParticipantLimit != nil {
		e.ParticipantLimit = *p.ParticipantLimit
	}
	if p.RequestModeration != nil {
		e.RequestModeration = *p.RequestModeration
	}
}

// EventFilter restricts an event query. Zero values mean "no restriction", except the
// time range which is always applied.
type EventFilter struct {
	Text         string
	CategoryIDs  []int64
	InitiatorIDs []int64
	States       []EventState
	Paid         *bool
	RangeStart   time.Time
	RangeEnd     time.Time
	Page         PageRequest
}

// EventView is an event enriched with its runtime counters.
type EventView struct {
	Event             *Event
	ConfirmedRequests int
	Views             int64
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	Update(ctx context.Context, e *Event) error
	ListByInitiator(ctx context.Context, initiatorID int64, page PageRequest) ([]*Event, error)
	// Search returns events matching f ordered by id. A zero f.Page returns every match.
	Search(ctx context.Context, f EventFilter) ([]*Event, error)
}

// CategoryRepository resolves categories by id.
type CategoryRepository interface {
	GetByID(ctx context.Context, id int64) (*Category, error)
}

// LocationRepository stores locations deduplicated by exact coordinates.
type LocationRepository interface {
	// FindOrCreate returns the location with exactly these coordinates, inserting it if missing.
	FindOrCreate(ctx context.Context, lat, lon float64) (*Location, error)
}

// EventService is the event lifecycle manager.
type EventService interface {
	Create(ctx context.Context, initiatorID int64, draft NewEventDraft) (*EventView, error)
	UpdateByAdmin(ctx context.Context, eventID int64, patch EventPatch) (*EventView, error)
	UpdateByInitiator(ctx context.Context, userID, eventID int64, patch EventPatch) (*EventView, error)
	ListByInitiator(ctx context.Context, userID int64, page PageRequest) ([]*EventView, error)
	GetByInitiator(ctx context.Context, userID, eventID int64) (*EventView, error)
}
