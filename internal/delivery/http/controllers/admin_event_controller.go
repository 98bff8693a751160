package controllers

import (
	"fmt"
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// EventFullListSuccessResponse is the success envelope for the admin search endpoint.
type EventFullListSuccessResponse struct {
	Data  []EventFullDto    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AdminEventController serves event moderation.
type AdminEventController struct {
	Logger *slog.Logger
	Events domain.EventService
	Search domain.SearchService
}

func NewAdminEventController(logger *slog.Logger, events domain.EventService, search domain.SearchService) *AdminEventController {
	return &AdminEventController{
		Logger: logger,
		Events: events,
		Search: search,
	}
}

// UpdateEvent godoc
// @Summary Moderate an event
// @Description Applies the present fields. stateAction PUBLISH_EVENT publishes a PENDING event; REJECT_EVENT cancels it.
// @Tags admin
// @Accept json
// @Produce json
// @Param eventId path int true "Event ID"
// @Param event body UpdateEventAdminRequest true "Fields to change"
// @Success 200 {object} controllers.EventFullSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventId} [patch]
func (c *AdminEventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	var req UpdateEventAdminRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	view, err := c.Events.UpdateByAdmin(r.Context(), eventID, req.toPatch())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventFullDto(view))
}

// SearchEvents godoc
// @Summary Search events in any state
// @Tags admin
// @Produce json
// @Param users query []int false "Initiator ids" collectionFormat(multi)
// @Param states query []string false "PENDING, PUBLISHED or CANCELED" collectionFormat(multi)
// @Param categories query []int false "Category ids" collectionFormat(multi)
// @Param rangeStart query string false "yyyy-MM-dd HH:mm:ss"
// @Param rangeEnd query string false "yyyy-MM-dd HH:mm:ss"
// @Param from query int false "Offset (default 0)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} controllers.EventFullListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events [get]
func (c *AdminEventController) SearchEvents(w http.ResponseWriter, r *http.Request) {
	q, err := parseAdminSearch(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	views, err := c.Search.SearchAdmin(r.Context(), q)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventFullDtos(views))
}

func parseAdminSearch(r *http.Request) (domain.AdminSearchQuery, error) {
	var q domain.AdminSearchQuery
	var err error
	if q.InitiatorIDs, err = helpers.QueryIDs(r, "users"); err != nil {
		return q, err
	}
	if q.CategoryIDs, err = helpers.QueryIDs(r, "categories"); err != nil {
		return q, err
	}
	for _, s := range helpers.QueryStrings(r, "states") {
		state := domain.EventState(s)
		if !state.Valid() {
			return q, fmt.Errorf("unknown state %q", s)
		}
		q.States = append(q.States, state)
	}
	if q.RangeStart, err = helpers.QueryDateTime(r, "rangeStart"); err != nil {
		return q, err
	}
	if q.RangeEnd, err = helpers.QueryDateTime(r, "rangeEnd"); err != nil {
		return q, err
	}
	if q.Page, err = helpers.ParsePage(r); err != nil {
		return q, err
	}
	return q, nil
}
