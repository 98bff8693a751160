package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"eventhub/internal/domain"
)

const defaultHitTimeout = 3 * time.Second

type searchService struct {
	eventRepo      domain.EventRepository
	ledger         domain.CapacityLedger
	stats          domain.StatsClient
	appName        string
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
	hitTimeout     time.Duration
}

// NewSearchService creates the public search aggregator. appName is reported with every hit.
func NewSearchService(eventRepo domain.EventRepository,
	ledger domain.CapacityLedger,
	stats domain.StatsClient,
	appName string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &searchService{
		eventRepo:      eventRepo,
		ledger:         ledger,
		stats:          stats,
		appName:        appName,
		logger:         logger,
		now:            time.Now,
		contextTimeout: timeout,
		hitTimeout:     defaultHitTimeout,
	}
}

func (s *searchService) Search(ctx context.Context, q domain.PublicSearchQuery, client domain.ClientInfo) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	s.recordHit(ctx, client)

	start, end, err := s.timeRange(q.RangeStart, q.RangeEnd)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.Search(ctx, domain.EventFilter{
		Text:        q.Text,
		CategoryIDs: domain.NormalizeIDFilter(q.CategoryIDs),
		States:      []domain.EventState{domain.EventStatePublished},
		Paid:        q.Paid,
		RangeStart:  start,
		RangeEnd:    end,
	})
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	counts, err := s.ledger.CountConfirmedByEvents(ctx, eventIDs(events))
	if err != nil {
		return nil, fmt.Errorf("count confirmed requests: %w", err)
	}
	if q.OnlyAvailable {
		kept := events[:0]
		for _, e := range events {
			if isAvailable(e, counts[e.ID]) {
				kept = append(kept, e)
			}
		}
		events = kept
	}

	views, err := s.buildViews(ctx, start, end, events, counts)
	if err != nil {
		return nil, err
	}
	sortViews(views, q.Sort)

	lo, hi, ok := q.Page.Bounds(len(views))
	if !ok {
		return []*domain.EventView{}, nil
	}
	return views[lo:hi], nil
}

func (s *searchService) GetPublished(ctx context.Context, eventID int64, client domain.ClientInfo) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := findEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	if event.State != domain.EventStatePublished {
		return nil, eventNotFound(eventID)
	}
	s.recordHit(ctx, client)

	confirmed, err := s.ledger.CountConfirmed(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count confirmed requests: %w", err)
	}
	views, err := s.buildViews(ctx, domain.MinTimestamp, domain.MaxTimestamp,
		[]*domain.Event{event}, map[int64]int{eventID: confirmed})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *searchService) SearchAdmin(ctx context.Context, q domain.AdminSearchQuery) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	start, end, err := s.timeRange(q.RangeStart, q.RangeEnd)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.Search(ctx, domain.EventFilter{
		CategoryIDs:  domain.NormalizeIDFilter(q.CategoryIDs),
		InitiatorIDs: domain.NormalizeIDFilter(q.InitiatorIDs),
		States:       q.States,
		RangeStart:   start,
		RangeEnd:     end,
		Page:         q.Page,
	})
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	counts, err := s.ledger.CountConfirmedByEvents(ctx, eventIDs(events))
	if err != nil {
		return nil, fmt.Errorf("count confirmed requests: %w", err)
	}
	return s.buildViews(ctx, start, end, events, counts)
}

func (s *searchService) timeRange(rangeStart, rangeEnd *time.Time) (time.Time, time.Time, error) {
	start := s.now()
	if rangeStart != nil {
		start = *rangeStart
	}
	end := domain.MaxTimestamp
	if rangeEnd != nil {
		end = *rangeEnd
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, domain.InvalidInputf("rangeStart must not be after rangeEnd")
	}
	return start, end, nil
}

// buildViews attaches confirmed counts and unique view counts. Views are looked up by exact
// resource path; events the stats service does not report have zero views.
func (s *searchService) buildViews(ctx context.Context, start, end time.Time, events []*domain.Event, counts map[int64]int) ([]*domain.EventView, error) {
	views := make([]*domain.EventView, 0, len(events))
	if len(events) == 0 {
		return views, nil
	}
	uris := make([]string, 0, len(events))
	for _, e := range events {
		uris = append(uris, e.URI())
	}
	stats, err := s.stats.GetStats(ctx, start, end, uris, true)
	if err != nil {
		return nil, fmt.Errorf("get view stats: %w", err)
	}
	hits := make(map[string]int64, len(stats))
	for _, st := range stats {
		hits[st.URI] = st.Hits
	}
	for _, e := range events {
		views = append(views, &domain.EventView{
			Event:             e,
			ConfirmedRequests: counts[e.ID],
			Views:             hits[e.URI()],
		})
	}
	return views, nil
}

// recordHit reports the access to the stats service in the background.
func (s *searchService) recordHit(ctx context.Context, client domain.ClientInfo) {
	hit := domain.EndpointHit{
		App:       s.appName,
		URI:       client.URI,
		IP:        client.IP,
		Timestamp: s.now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.hitTimeout)
		defer cancel()
		if err := s.stats.RecordHit(ctx, hit); err != nil {
			s.logger.WarnContext(ctx, "record hit failed", "uri", hit.URI, "err", err)
		}
	}()
}

// isAvailable is the onlyAvailable filter as the public API has always applied it: events
// without a limit, or whose limit is below the confirmed count.
func isAvailable(e *domain.Event, confirmed int) bool {
	return e.ParticipantLimit == 0 || e.ParticipantLimit < confirmed
}

func sortViews(views []*domain.EventView, mode domain.SortMode) {
	if mode == domain.SortByEventDate {
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].Event.EventDate.Before(views[j].Event.EventDate)
		})
		return
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Views > views[j].Views
	})
}
