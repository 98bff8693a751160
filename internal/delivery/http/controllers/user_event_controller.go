package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// EventFullSuccessResponse is the success envelope for endpoints returning one event.
type EventFullSuccessResponse struct {
	Data  EventFullDto      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventShortListSuccessResponse is the success envelope for endpoints returning event summaries.
type EventShortListSuccessResponse struct {
	Data  []EventShortDto   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RequestListSuccessResponse is the success envelope for endpoints returning participation requests.
type RequestListSuccessResponse struct {
	Data  []ParticipationRequestDto `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// StatusUpdateSuccessResponse is the success envelope for the batch resolve endpoint.
type StatusUpdateSuccessResponse struct {
	Data  EventRequestStatusUpdateResult `json:"data"`
	Error *helpers.APIError              `json:"error"`
}

// UserEventController serves the initiator's view of their own events.
type UserEventController struct {
	Logger   *slog.Logger
	Events   domain.EventService
	Requests domain.RequestService
}

func NewUserEventController(logger *slog.Logger, events domain.EventService, requests domain.RequestService) *UserEventController {
	return &UserEventController{
		Logger:   logger,
		Events:   events,
		Requests: requests,
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates a PENDING event owned by the user. The event date must be at least two hours ahead.
// @Tags user-events
// @Accept json
// @Produce json
// @Param userId path int true "Initiator ID"
// @Param event body NewEventRequest true "Event data"
// @Success 201 {object} controllers.EventFullSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userId}/events [post]
func (c *UserEventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	var req NewEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	view, err := c.Events.Create(r.Context(), userID, req.toDraft())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, toEventFullDto(view))
}

// UpdateEvent godoc
// @Summary Update own event
// @Description Applies the present fields to a PENDING or CANCELED event. stateAction SEND_TO_REVIEW or CANCEL_REVIEW moves its state.
// @Tags user-events
// @Accept json
// @Produce json
// @Param userId path int true "Initiator ID"
// @Param eventId path int true "Event ID"
// @Param event body UpdateEventUserRequest true "Fields to change"
// @Success 200 {object} controllers.EventFullSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userId}/events/{eventId} [patch]
func (c *UserEventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	var req UpdateEventUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	view, err := c.Events.UpdateByInitiator(r.Context(), userID, eventID, req.toPatch())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventFullDto(view))
}

// ListEvents godoc
// @Summary List own events
// @Tags user-events
// @Produce json
// @Param userId path int true "Initiator ID"
// @Param from query int false "Offset (default 0)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} controllers.EventShortListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userId}/events [get]
func (c *UserEventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	page, err := helpers.ParsePage(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	views, err := c.Events.ListByInitiator(r.Context(), userID, page)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventShortDtos(views))
}

// GetEvent godoc
// @Summary Get own event
// @Tags user-events
// @Produce json
// @Param userId path int true "Initiator ID"
// @Param eventId path int true "Event ID"
// @Success 200 {object} controllers.EventFullSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userId}/events/{eventId} [get]
func (c *UserEventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	view, err := c.Events.GetByInitiator(r.Context(), userID, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventFullDto(view))
}

// ListEventRequests godoc
// @Summary List participation requests for own event
// @Tags user-events
// @Produce json
// @Param userId path int true "Initiator ID"
// @Param eventId path int true "Event ID"
// @Success 200 {object} controllers.RequestListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userId}/events/{eventId}/requests [get]
func (c *UserEventController) ListEventRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	requests, err := c.Requests.ListForEvent(r.Context(), userID, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toRequestDtos(requests))
}

// ResolveRequests godoc
// @Summary Confirm or reject participation requests
// @Description Resolves the listed requests in order. Once the participant limit is reached the rest are rejected.
// @Tags user-events
// @Accept json
// @Produce json
// @Param userId path int true "Initiator ID"
// @Param eventId path int true "Event ID"
// @Param body body EventRequestStatusUpdateRequest true "Request ids and decision"
// @Success 200 {object} controllers.StatusUpdateSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userId}/events/{eventId}/requests [patch]
func (c *UserEventController) ResolveRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	var req EventRequestStatusUpdateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	res, err := c.Requests.BatchResolve(r.Context(), userID, eventID, req.RequestIDs, domain.RequestStatus(req.Status))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toStatusUpdateResult(res))
}

// pathID parses a path id, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := helpers.PathID(r, name)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return 0, false
	}
	return id, true
}
