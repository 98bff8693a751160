package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// RequestSuccessResponse is the success envelope for endpoints returning one participation request.
type RequestSuccessResponse struct {
	Data  ParticipationRequestDto `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// RequestController serves a user's own participation requests.
type RequestController struct {
	Logger   *slog.Logger
	Requests domain.RequestService
}

func NewRequestController(logger *slog.Logger, requests domain.RequestService) *RequestController {
	return &RequestController{
		Logger:   logger,
		Requests: requests,
	}
}

// CreateRequest godoc
// @Summary Request to participate in an event
// @Description Without moderation, or with an unlimited event, the request is confirmed immediately.
// @Tags requests
// @Produce json
// @Param userId path int true "Requester ID"
// @Param eventId query int true "Event ID"
// @Success 201 {object} controllers.RequestSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userId}/requests [post]
func (c *RequestController) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	eventID, err := helpers.QueryInt64(r, "eventId")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	req, err := c.Requests.Create(r.Context(), userID, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, toRequestDto(req))
}

// CancelRequest godoc
// @Summary Cancel own participation request
// @Tags requests
// @Produce json
// @Param userId path int true "Requester ID"
// @Param requestId path int true "Request ID"
// @Success 200 {object} controllers.RequestSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userId}/requests/{requestId}/cancel [patch]
func (c *RequestController) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	requestID, ok := pathID(w, r, "requestId")
	if !ok {
		return
	}
	req, err := c.Requests.Cancel(r.Context(), userID, requestID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toRequestDto(req))
}

// ListRequests godoc
// @Summary List own participation requests
// @Tags requests
// @Produce json
// @Param userId path int true "Requester ID"
// @Success 200 {object} controllers.RequestListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userId}/requests [get]
func (c *RequestController) ListRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	requests, err := c.Requests.ListMine(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toRequestDtos(requests))
}
