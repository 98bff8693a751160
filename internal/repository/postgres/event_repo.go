package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventhub/internal/domain"

	"github.com/lib/pq"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventSelect = `
		SELECT e.id, e.title, e.annotation, e.description, e.event_date, e.created_on, e.published_on,
		       e.paid, e.participant_limit, e.request_moderation, e.state,
		       c.id, c.name, l.id, l.lat, l.lon, u.id, u.name, u.email
		FROM events e
		JOIN categories c ON c.id = e.category_id
		JOIN locations l ON l.id = e.location_id
		JOIN users u ON u.id = e.initiator_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var publishedNull sql.NullTime
	var state string
	err := row.Scan(
		&e.ID, &e.Title, &e.Annotation, &e.Description, &e.EventDate, &e.CreatedOn, &publishedNull,
		&e.Paid, &e.ParticipantLimit, &e.RequestModeration, &state,
		&e.Category.ID, &e.Category.Name, &e.Location.ID, &e.Location.Lat, &e.Location.Lon,
		&e.Initiator.ID, &e.Initiator.Name, &e.Initiator.Email,
	)
	if err != nil {
		return nil, err
	}
	if publishedNull.Valid {
		e.PublishedOn = &publishedNull.Time
	}
	e.State = domain.EventState(state)
	return e, nil
}

func scanEvents(rows *sql.Rows) ([]*domain.Event, error) {
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, annotation, description, category_id, location_id, initiator_id,
		                    event_date, created_on, published_on, paid, participant_limit, request_moderation, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Annotation, e.Description, e.Category.ID, e.Location.ID, e.Initiator.ID,
		e.EventDate, e.CreatedOn, e.PublishedOn, e.Paid, e.ParticipantLimit, e.RequestModeration, string(e.State),
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx, eventSelect+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $2, annotation = $3, description = $4, category_id = $5, location_id = $6,
		    event_date = $7, published_on = $8, paid = $9, participant_limit = $10,
		    request_moderation = $11, state = $12
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.ID, e.Title, e.Annotation, e.Description, e.Category.ID, e.Location.ID,
		e.EventDate, e.PublishedOn, e.Paid, e.ParticipantLimit, e.RequestModeration, string(e.State),
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) ListByInitiator(ctx context.Context, initiatorID int64, page domain.PageRequest) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx,
		eventSelect+` WHERE e.initiator_id = $1 ORDER BY e.id LIMIT $2 OFFSET $3`,
		initiatorID, limitArg(page), page.From)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

func (r *eventRepository) Search(ctx context.Context, f domain.EventFilter) ([]*domain.Event, error) {
	query, args := buildEventSearch(f)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildEventSearch renders the filter as a parameterized query. The date range is always applied.
func buildEventSearch(f domain.EventFilter) (string, []any) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Text != "" {
		p := arg("%" + likeEscaper.Replace(f.Text) + "%")
		conds = append(conds, fmt.Sprintf("(e.title ILIKE %s OR e.annotation ILIKE %s OR e.description ILIKE %s)", p, p, p))
	}
	if len(f.CategoryIDs) > 0 {
		conds = append(conds, "e.category_id = ANY("+arg(pq.Array(f.CategoryIDs))+")")
	}
	if len(f.InitiatorIDs) > 0 {
		conds = append(conds, "e.initiator_id = ANY("+arg(pq.Array(f.InitiatorIDs))+")")
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, s := range f.States {
			states[i] = string(s)
		}
		conds = append(conds, "e.state = ANY("+arg(pq.Array(states))+")")
	}
	if f.Paid != nil {
		conds = append(conds, "e.paid = "+arg(*f.Paid))
	}
	conds = append(conds, "e.event_date >= "+arg(f.RangeStart))
	conds = append(conds, "e.event_date <= "+arg(f.RangeEnd))

	query := eventSelect + "\n\t\tWHERE " + strings.Join(conds, " AND ") + "\n\t\tORDER BY e.id"
	if !f.Page.IsZero() {
		query += " LIMIT " + arg(limitArg(f.Page)) + " OFFSET " + arg(f.Page.From)
	}
	return query, args
}

// limitArg maps a non-positive page size to LIMIT NULL, which Postgres treats as no limit.
func limitArg(p domain.PageRequest) any {
	if p.Size <= 0 {
		return nil
	}
	return p.Size
}
