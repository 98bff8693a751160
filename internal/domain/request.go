package domain

import (
	"context"
	"time"
)

// RequestStatus is the status of a participation request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusConfirmed RequestStatus = "CONFIRMED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCanceled  RequestStatus = "CANCELED"
)

// ParticipationRequest is a user's ask to attend an event.
type ParticipationRequest struct {
	ID          int64
	EventID     int64
	RequesterID int64
	Created     time.Time
	Status      RequestStatus
}

// InitialRequestStatus returns the status a new request gets for the event. Requests are
// auto-confirmed when the event is not moderated or has no participant limit.
func InitialRequestStatus(e *Event) RequestStatus {
	if !e.RequestModeration || e.ParticipantLimit == 0 {
		return RequestStatusConfirmed
	}
	return RequestStatusPending
}

// NewParticipationRequest returns a request for the event with its initial status.
// ID is typically set by the repository on create.
func NewParticipationRequest(e *Event, requesterID int64, created time.Time) *ParticipationRequest {
	return &ParticipationRequest{
		EventID:     e.ID,
		RequesterID: requesterID,
		Created:     created,
		Status:      InitialRequestStatus(e),
	}
}

// BatchResult partitions a resolved batch by the final status of each request.
type BatchResult struct {
	Confirmed []*ParticipationRequest
	Rejected  []*ParticipationRequest
}

// CapacityLedger reports how many requests of an event are confirmed.
type CapacityLedger interface {
	CountConfirmed(ctx context.Context, eventID int64) (int, error)
	// CountConfirmedByEvents returns counts keyed by event id. Events with no confirmed
	// requests may be absent from the map.
	CountConfirmedByEvents(ctx context.Context, eventIDs []int64) (map[int64]int, error)
}

// ParticipationRequestRepository defines storage operations for participation requests.
type ParticipationRequestRepository interface {
	CapacityLedger
	Create(ctx context.Context, r *ParticipationRequest) error
	GetByID(ctx context.Context, id int64) (*ParticipationRequest, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*ParticipationRequest, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]*ParticipationRequest, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*ParticipationRequest, error)
	UpdateStatus(ctx context.Context, r *ParticipationRequest) error
	// UpdateStatuses persists the statuses of all requests as one unit.
	UpdateStatuses(ctx context.Context, rs []*ParticipationRequest) error
}

// RequestService is the participation request coordinator.
type RequestService interface {
	Create(ctx context.Context, userID, eventID int64) (*ParticipationRequest, error)
	Cancel(ctx context.Context, userID, requestID int64) (*ParticipationRequest, error)
	BatchResolve(ctx context.Context, userID, eventID int64, requestIDs []int64, decision RequestStatus) (*BatchResult, error)
	ListMine(ctx context.Context, userID int64) ([]*ParticipationRequest, error)
	ListForEvent(ctx context.Context, userID, eventID int64) ([]*ParticipationRequest, error)
}
