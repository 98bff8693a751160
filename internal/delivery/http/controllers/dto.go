package controllers

import (
	"fmt"
	"strings"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// Field length bounds for event text.
const (
	titleMin, titleMax             = 3, 120
	annotationMin, annotationMax   = 20, 2000
	descriptionMin, descriptionMax = 20, 7000
)

// CategoryDto is the category embedded in event responses.
type CategoryDto struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserShortDto is the initiator embedded in event responses.
type UserShortDto struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LocationDto is a coordinate pair.
type LocationDto struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// EventFullDto is the detailed event representation.
type EventFullDto struct {
	ID                int64             `json:"id"`
	Title             string            `json:"title"`
	Annotation        string            `json:"annotation"`
	Description       string            `json:"description"`
	Category          CategoryDto       `json:"category"`
	Location          LocationDto       `json:"location"`
	EventDate         helpers.DateTime  `json:"eventDate" swaggertype:"string" example:"2030-01-01 18:00:00"`
	CreatedOn         helpers.DateTime  `json:"createdOn" swaggertype:"string" example:"2029-12-01 09:15:00"`
	PublishedOn       *helpers.DateTime `json:"publishedOn" swaggertype:"string" example:"2029-12-02 10:00:00"`
	Paid              bool              `json:"paid"`
	ParticipantLimit  int               `json:"participantLimit"`
	RequestModeration bool              `json:"requestModeration"`
	Initiator         UserShortDto      `json:"initiator"`
	State             string            `json:"state" example:"PUBLISHED"`
	ConfirmedRequests int               `json:"confirmedRequests"`
	Views             int64             `json:"views"`
}

// EventShortDto is the list representation of an event.
type EventShortDto struct {
	ID                int64            `json:"id"`
	Title             string           `json:"title"`
	Annotation        string           `json:"annotation"`
	Category          CategoryDto      `json:"category"`
	EventDate         helpers.DateTime `json:"eventDate" swaggertype:"string" example:"2030-01-01 18:00:00"`
	Initiator         UserShortDto     `json:"initiator"`
	Paid              bool             `json:"paid"`
	ConfirmedRequests int              `json:"confirmedRequests"`
	Views             int64            `json:"views"`
}

// ParticipationRequestDto is a participation request as exposed over the API.
type ParticipationRequestDto struct {
	ID        int64            `json:"id"`
	Event     int64            `json:"event"`
	Requester int64            `json:"requester"`
	Created   helpers.DateTime `json:"created" swaggertype:"string" example:"2029-12-05 11:00:00"`
	Status    string           `json:"status" example:"PENDING"`
}

// EventRequestStatusUpdateResult lists the requests resolved by a batch call.
type EventRequestStatusUpdateResult struct {
	ConfirmedRequests []ParticipationRequestDto `json:"confirmedRequests"`
	RejectedRequests  []ParticipationRequestDto `json:"rejectedRequests"`
}

// NewEventRequest is the request body for POST /users/{userId}/events.
type NewEventRequest struct {
	Title             string            `json:"title"`
	Annotation        string            `json:"annotation"`
	Description       string            `json:"description"`
	Category          int64             `json:"category"`
	Location          *LocationDto      `json:"location"`
	EventDate         *helpers.DateTime `json:"eventDate" swaggertype:"string" example:"2030-01-01 18:00:00"`
	Paid              *bool             `json:"paid"`
	ParticipantLimit  *int              `json:"participantLimit"`
	RequestModeration *bool             `json:"requestModeration"`
}

// Validate implements helpers.Validator.
func (req *NewEventRequest) Validate() []string {
	var errs []string
	errs = checkText(errs, "title", req.Title, titleMin, titleMax)
	errs = checkText(errs, "annotation", req.Annotation, annotationMin, annotationMax)
	errs = checkText(errs, "description", req.Description, descriptionMin, descriptionMax)
	if req.Category <= 0 {
		errs = append(errs, "category is required")
	}
	if req.Location == nil {
		errs = append(errs, "location is required")
	}
	if req.EventDate == nil {
		errs = append(errs, "eventDate is required")
	}
	if req.ParticipantLimit != nil && *req.ParticipantLimit < 0 {
		errs = append(errs, "participantLimit must not be negative")
	}
	return errs
}

func (req *NewEventRequest) toDraft() domain.NewEventDraft {
	return domain.NewEventDraft{
		Title:             req.Title,
		Annotation:        req.Annotation,
		Description:       req.Description,
		CategoryID:        req.Category,
		Location:          domain.Location{Lat: req.Location.Lat, Lon: req.Location.Lon},
		EventDate:         req.EventDate.Time(),
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: req.RequestModeration,
	}
}

// eventUpdateFields are the optional fields shared by initiator and admin updates.
type eventUpdateFields struct {
	Title             *string           `json:"title"`
	Annotation        *string           `json:"annotation"`
	Description       *string           `json:"description"`
	Category          *int64            `json:"category"`
	Location          *LocationDto      `json:"location"`
	EventDate         *helpers.DateTime `json:"eventDate" swaggertype:"string" example:"2030-01-01 18:00:00"`
	Paid              *bool             `json:"paid"`
	ParticipantLimit  *int              `json:"participantLimit"`
	RequestModeration *bool             `json:"requestModeration"`
	StateAction       *string           `json:"stateAction"`
}

func (f *eventUpdateFields) validate(actor domain.Actor) []string {
	var errs []string
	if f.Title != nil {
		errs = checkText(errs, "title", *f.Title, titleMin, titleMax)
	}
	if f.Annotation != nil {
		errs = checkText(errs, "annotation", *f.Annotation, annotationMin, annotationMax)
	}
	if f.Description != nil {
		errs = checkText(errs, "description", *f.Description, descriptionMin, descriptionMax)
	}
	if f.Category != nil && *f.Category <= 0 {
		errs = append(errs, "category must be a positive id")
	}
	if f.ParticipantLimit != nil && *f.ParticipantLimit < 0 {
		errs = append(errs, "participantLimit must not be negative")
	}
	if f.StateAction != nil && !actionAllowed(actor, domain.StateAction(*f.StateAction)) {
		errs = append(errs, fmt.Sprintf("stateAction must be one of %v, got %q", domain.AllowedActions(actor), *f.StateAction))
	}
	return errs
}

func (f *eventUpdateFields) toPatch() domain.EventPatch {
	patch := domain.EventPatch{
		Title:             f.Title,
		Annotation:        f.Annotation,
		Description:       f.Description,
		CategoryID:        f.Category,
		Paid:              f.Paid,
		ParticipantLimit:  f.ParticipantLimit,
		RequestModeration: f.RequestModeration,
	}
	if f.Location != nil {
		patch.Location = &domain.Location{Lat: f.Location.Lat, Lon: f.Location.Lon}
	}
	if f.EventDate != nil {
		t := f.EventDate.Time()
		patch.EventDate = &t
	}
	if f.StateAction != nil {
		a := domain.StateAction(*f.StateAction)
		patch.StateAction = &a
	}
	return patch
}

// UpdateEventUserRequest is the request body for PATCH /users/{userId}/events/{eventId}.
// stateAction is SEND_TO_REVIEW or CANCEL_REVIEW.
type UpdateEventUserRequest struct {
	eventUpdateFields
}

// Validate implements helpers.Validator.
func (req *UpdateEventUserRequest) Validate() []string {
	return req.validate(domain.ActorInitiator)
}

// UpdateEventAdminRequest is the request body for PATCH /admin/events/{eventId}.
// stateAction is PUBLISH_EVENT or REJECT_EVENT.
type UpdateEventAdminRequest struct {
	eventUpdateFields
}

// Validate implements helpers.Validator.
func (req *UpdateEventAdminRequest) Validate() []string {
	return req.validate(domain.ActorAdmin)
}

// EventRequestStatusUpdateRequest is the request body for PATCH /users/{userId}/events/{eventId}/requests.
type EventRequestStatusUpdateRequest struct {
	RequestIDs []int64 `json:"requestIds"`
	Status     string  `json:"status" example:"CONFIRMED"`
}

// Validate implements helpers.Validator.
func (req *EventRequestStatusUpdateRequest) Validate() []string {
	var errs []string
	if len(req.RequestIDs) == 0 {
		errs = append(errs, "requestIds must not be empty")
	}
	switch domain.RequestStatus(req.Status) {
	case domain.RequestStatusConfirmed, domain.RequestStatusRejected:
	default:
		errs = append(errs, fmt.Sprintf("status must be CONFIRMED or REJECTED, got %q", req.Status))
	}
	return errs
}

func checkText(errs []string, field, s string, min, max int) []string {
	if strings.TrimSpace(s) == "" {
		return append(errs, field+" must not be blank")
	}
	return helpers.CheckLength(errs, field, s, min, max)
}

func actionAllowed(actor domain.Actor, action domain.StateAction) bool {
	for _, a := range domain.AllowedActions(actor) {
		if a == action {
			return true
		}
	}
	return false
}

func toEventFullDto(v *domain.EventView) EventFullDto {
	e := v.Event
	return EventFullDto{
		ID:                e.ID,
		Title:             e.Title,
		Annotation:        e.Annotation,
		Description:       e.Description,
		Category:          CategoryDto{ID: e.Category.ID, Name: e.Category.Name},
		Location:          LocationDto{Lat: e.Location.Lat, Lon: e.Location.Lon},
		EventDate:         helpers.DateTime(e.EventDate),
		CreatedOn:         helpers.DateTime(e.CreatedOn),
		PublishedOn:       helpers.NullableDateTime(e.PublishedOn),
		Paid:              e.Paid,
		ParticipantLimit:  e.ParticipantLimit,
		RequestModeration: e.RequestModeration,
		Initiator:         UserShortDto{ID: e.Initiator.ID, Name: e.Initiator.Name},
		State:             string(e.State),
		ConfirmedRequests: v.ConfirmedRequests,
		Views:             v.Views,
	}
}

func toEventShortDto(v *domain.EventView) EventShortDto {
	e := v.Event
	return EventShortDto{
		ID:                e.ID,
		Title:             e.Title,
		Annotation:        e.Annotation,
		Category:          CategoryDto{ID: e.Category.ID, Name: e.Category.Name},
		EventDate:         helpers.DateTime(e.EventDate),
		Initiator:         UserShortDto{ID: e.Initiator.ID, Name: e.Initiator.Name},
		Paid:              e.Paid,
		ConfirmedRequests: v.ConfirmedRequests,
		Views:             v.Views,
	}
}

func toEventFullDtos(views []*domain.EventView) []EventFullDto {
	out := make([]EventFullDto, 0, len(views))
	for _, v := range views {
		out = append(out, toEventFullDto(v))
	}
	return out
}

func toEventShortDtos(views []*domain.EventView) []EventShortDto {
	out := make([]EventShortDto, 0, len(views))
	for _, v := range views {
		out = append(out, toEventShortDto(v))
	}
	return out
}

func toRequestDto(r *domain.ParticipationRequest) ParticipationRequestDto {
	return ParticipationRequestDto{
		ID:        r.ID,
		Event:     r.EventID,
		Requester: r.RequesterID,
		Created:   helpers.DateTime(r.Created),
		Status:    string(r.Status),
	}
}

func toRequestDtos(rs []*domain.ParticipationRequest) []ParticipationRequestDto {
	out := make([]ParticipationRequestDto, 0, len(rs))
	for _, r := range rs {
		out = append(out, toRequestDto(r))
	}
	return out
}

func toStatusUpdateResult(res *domain.BatchResult) EventRequestStatusUpdateResult {
	return EventRequestStatusUpdateResult{
		ConfirmedRequests: toRequestDtos(res.Confirmed),
		RejectedRequests:  toRequestDtos(res.Rejected),
	}
}
