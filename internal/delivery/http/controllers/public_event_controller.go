package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// PublicEventController serves the anonymous catalogue of published events.
type PublicEventController struct {
	Logger *slog.Logger
	Search domain.SearchService
}

func NewPublicEventController(logger *slog.Logger, search domain.SearchService) *PublicEventController {
	return &PublicEventController{
		Logger: logger,
		Search: search,
	}
}

// SearchEvents godoc
// @Summary Search published events
// @Description Every call is recorded as a hit. Without a range only future events are returned.
// @Tags events
// @Produce json
// @Param text query string false "Case-insensitive match on title, annotation or description"
// @Param categories query []int false "Category ids" collectionFormat(multi)
// @Param paid query bool false "Paid filter"
// @Param rangeStart query string false "yyyy-MM-dd HH:mm:ss"
// @Param rangeEnd query string false "yyyy-MM-dd HH:mm:ss"
// @Param onlyAvailable query bool false "Availability filter (default false)"
// @Param sort query string false "EVENT_DATE or VIEWS (default VIEWS)"
// @Param from query int false "Offset (default 0)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} controllers.EventShortListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 429 {object} helpers.APIResponse "error.code: rate_limited"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *PublicEventController) SearchEvents(w http.ResponseWriter, r *http.Request) {
	q, err := parsePublicSearch(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	views, err := c.Search.Search(r.Context(), q, clientInfo(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventShortDtos(views))
}

// GetEvent godoc
// @Summary Get a published event
// @Description The call is recorded as a hit.
// @Tags events
// @Produce json
// @Param eventId path int true "Event ID"
// @Success 200 {object} controllers.EventFullSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 429 {object} helpers.APIResponse "error.code: rate_limited"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventId} [get]
func (c *PublicEventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	view, err := c.Search.GetPublished(r.Context(), eventID, clientInfo(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventFullDto(view))
}

func clientInfo(r *http.Request) domain.ClientInfo {
	return domain.ClientInfo{URI: r.URL.Path, IP: helpers.ClientIP(r)}
}

func parsePublicSearch(r *http.Request) (domain.PublicSearchQuery, error) {
	q := domain.PublicSearchQuery{
		Text: strings.TrimSpace(r.URL.Query().Get("text")),
		Sort: domain.SortByViews,
	}
	var err error
	if q.CategoryIDs, err = helpers.QueryIDs(r, "categories"); err != nil {
		return q, err
	}
	if q.Paid, err = helpers.QueryBool(r, "paid"); err != nil {
		return q, err
	}
	if q.RangeStart, err = helpers.QueryDateTime(r, "rangeStart"); err != nil {
		return q, err
	}
	if q.RangeEnd, err = helpers.QueryDateTime(r, "rangeEnd"); err != nil {
		return q, err
	}
	if q.RangeStart != nil && q.RangeEnd != nil && q.RangeStart.After(*q.RangeEnd) {
		return q, fmt.Errorf("rangeStart must not be after rangeEnd")
	}
	available, err := helpers.QueryBool(r, "onlyAvailable")
	if err != nil {
		return q, err
	}
	q.OnlyAvailable = available != nil && *available
	switch s := domain.SortMode(r.URL.Query().Get("sort")); s {
	case "":
	case domain.SortByEventDate, domain.SortByViews:
		q.Sort = s
	default:
		return q, fmt.Errorf("sort must be EVENT_DATE or VIEWS, got %q", s)
	}
	if q.Page, err = helpers.ParsePage(r); err != nil {
		return q, err
	}
	return q, nil
}
