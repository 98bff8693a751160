package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"eventhub/internal/domain"
)

var (
	testNow    = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
)

func fixedNow() time.Time { return testNow }

// fakeEventRepo is an in-memory EventRepository. It stores copies so callers cannot
// mutate state without calling Update.
type fakeEventRepo struct {
	mu        sync.Mutex
	byID      map[int64]*domain.Event
	nextID    int64
	updates   int
	searchErr error
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{byID: make(map[int64]*domain.Event), nextID: 1}
	for _, e := range events {
		c := *e
		f.byID[e.ID] = &c
		if e.ID >= f.nextID {
			f.nextID = e.ID + 1
		}
	}
	return f
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = f.nextID
	f.nextID++
	c := *e
	f.byID[e.ID] = &c
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *e
	f.byID[e.ID] = &c
	f.updates++
	return nil
}

func (f *fakeEventRepo) stored(id int64) *domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *f.byID[id]
	return &c
}

func (f *fakeEventRepo) sorted() []*domain.Event {
	out := make([]*domain.Event, 0, len(f.byID))
	for _, e := range f.byID {
		c := *e
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeEventRepo) ListByInitiator(ctx context.Context, initiatorID int64, page domain.PageRequest) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Event
	for _, e := range f.sorted() {
		if e.Initiator.ID == initiatorID {
			out = append(out, e)
		}
	}
	lo, hi, ok := page.Bounds(len(out))
	if !ok {
		return []*domain.Event{}, nil
	}
	return out[lo:hi], nil
}

func (f *fakeEventRepo) Search(ctx context.Context, flt domain.EventFilter) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	out := []*domain.Event{}
	for _, e := range f.sorted() {
		if flt.Text != "" {
			text := strings.ToLower(flt.Text)
			if !strings.Contains(strings.ToLower(e.Title), text) &&
				!strings.Contains(strings.ToLower(e.Annotation), text) &&
				!strings.Contains(strings.ToLower(e.Description), text) {
				continue
			}
		}
		if len(flt.CategoryIDs) > 0 && !containsID(flt.CategoryIDs, e.Category.ID) {
			continue
		}
		if len(flt.InitiatorIDs) > 0 && !containsID(flt.InitiatorIDs, e.Initiator.ID) {
			continue
		}
		if len(flt.States) > 0 && !containsState(flt.States, e.State) {
			continue
		}
		if flt.Paid != nil && e.Paid != *flt.Paid {
			continue
		}
		if e.EventDate.Before(flt.RangeStart) || e.EventDate.After(flt.RangeEnd) {
			continue
		}
		out = append(out, e)
	}
	if flt.Page.IsZero() {
		return out, nil
	}
	lo, hi, ok := flt.Page.Bounds(len(out))
	if !ok {
		return []*domain.Event{}, nil
	}
	return out[lo:hi], nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsState(states []domain.EventState, s domain.EventState) bool {
	for _, v := range states {
		if v == s {
			return true
		}
	}
	return false
}

type fakeUserRepo struct {
	byID map[int64]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{byID: make(map[int64]*domain.User)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *u
	return &c, nil
}

type fakeCategoryRepo struct {
	byID map[int64]*domain.Category
}

func newFakeCategoryRepo(categories ...*domain.Category) *fakeCategoryRepo {
	f := &fakeCategoryRepo{byID: make(map[int64]*domain.Category)}
	for _, c := range categories {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

type fakeLocationRepo struct {
	mu     sync.Mutex
	rows   []*domain.Location
	nextID int64
}

func (f *fakeLocationRepo) FindOrCreate(ctx context.Context, lat, lon float64) (*domain.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.rows {
		if l.Lat == lat && l.Lon == lon {
			c := *l
			return &c, nil
		}
	}
	f.nextID++
	l := &domain.Location{ID: f.nextID, Lat: lat, Lon: lon}
	f.rows = append(f.rows, l)
	c := *l
	return &c, nil
}

// fakeRequestRepo is an in-memory ParticipationRequestRepository. beforeCount, when set,
// runs inside CountConfirmed before the count is taken.
type fakeRequestRepo struct {
	mu          sync.Mutex
	byID        map[int64]*domain.ParticipationRequest
	nextID      int64
	beforeCount func()
	batches     int
	updateErr   error
}

func newFakeRequestRepo(requests ...*domain.ParticipationRequest) *fakeRequestRepo {
	f := &fakeRequestRepo{byID: make(map[int64]*domain.ParticipationRequest), nextID: 1}
	for _, r := range requests {
		c := *r
		f.byID[r.ID] = &c
		if r.ID >= f.nextID {
			f.nextID = r.ID + 1
		}
	}
	return f
}

func (f *fakeRequestRepo) CountConfirmed(ctx context.Context, eventID int64) (int, error) {
	if f.beforeCount != nil {
		f.beforeCount()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.byID {
		if r.EventID == eventID && r.Status == domain.RequestStatusConfirmed {
			n++
		}
	}
	return n, nil
}

func (f *fakeRequestRepo) CountConfirmedByEvents(ctx context.Context, eventIDs []int64) (map[int64]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64]int)
	for _, r := range f.byID {
		if r.Status == domain.RequestStatusConfirmed && containsID(eventIDs, r.EventID) {
			out[r.EventID]++
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) Create(ctx context.Context, r *domain.ParticipationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.EventID == r.EventID && existing.RequesterID == r.RequesterID {
			return domain.ErrConflict
		}
	}
	r.ID = f.nextID
	f.nextID++
	c := *r
	f.byID[r.ID] = &c
	return nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id int64) (*domain.ParticipationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (f *fakeRequestRepo) ListByIDs(ctx context.Context, ids []int64) ([]*domain.ParticipationRequest, error) {
	return f.list(func(r *domain.ParticipationRequest) bool { return containsID(ids, r.ID) }), nil
}

func (f *fakeRequestRepo) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	return f.list(func(r *domain.ParticipationRequest) bool { return r.RequesterID == requesterID }), nil
}

func (f *fakeRequestRepo) ListByEvent(ctx context.Context, eventID int64) ([]*domain.ParticipationRequest, error) {
	return f.list(func(r *domain.ParticipationRequest) bool { return r.EventID == eventID }), nil
}

func (f *fakeRequestRepo) list(keep func(*domain.ParticipationRequest) bool) []*domain.ParticipationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.ParticipationRequest{}
	for _, r := range f.byID {
		if keep(r) {
			c := *r
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeRequestRepo) UpdateStatus(ctx context.Context, r *domain.ParticipationRequest) error {
	return f.UpdateStatuses(ctx, []*domain.ParticipationRequest{r})
}

func (f *fakeRequestRepo) UpdateStatuses(ctx context.Context, rs []*domain.ParticipationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, r := range rs {
		if _, ok := f.byID[r.ID]; !ok {
			return domain.ErrNotFound
		}
	}
	for _, r := range rs {
		f.byID[r.ID].Status = r.Status
	}
	f.batches++
	return nil
}

func (f *fakeRequestRepo) status(id int64) domain.RequestStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id].Status
}

// fakeStatsClient records hits and serves views keyed by uri.
type fakeStatsClient struct {
	mu       sync.Mutex
	views    map[string]int64
	hits     []domain.EndpointHit
	hitErr   error
	statsErr error
	queries  [][]string
	unique   []bool
}

func newFakeStatsClient(views map[string]int64) *fakeStatsClient {
	if views == nil {
		views = map[string]int64{}
	}
	return &fakeStatsClient{views: views}
}

func (f *fakeStatsClient) RecordHit(ctx context.Context, hit domain.EndpointHit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits = append(f.hits, hit)
	return f.hitErr
}

func (f *fakeStatsClient) GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]domain.ViewStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, append([]string(nil), uris...))
	f.unique = append(f.unique, unique)
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	var out []domain.ViewStats
	for _, u := range uris {
		if n, ok := f.views[u]; ok {
			out = append(out, domain.ViewStats{App: "test", URI: u, Hits: n})
		}
	}
	return out, nil
}

func (f *fakeStatsClient) hitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hits)
}

type fakeEmailService struct {
	mu   sync.Mutex
	sent []domain.RequestStatusEmailData
}

func (f *fakeEmailService) SendRequestStatus(ctx context.Context, data *domain.RequestStatusEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, *data)
	return nil
}

func (f *fakeEmailService) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// noLocker grants every lock immediately, so callers are not serialized at all.
type noLocker struct{}

func (noLocker) Lock(ctx context.Context, eventID int64) (func(), error) {
	return func() {}, nil
}
