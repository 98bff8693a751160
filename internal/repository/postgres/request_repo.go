package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventhub/internal/domain"

	"github.com/lib/pq"
)

type requestRepository struct {
	DB *sql.DB
}

// NewParticipationRequestRepository returns a domain.ParticipationRequestRepository implemented
// with Postgres. It doubles as the capacity ledger.
func NewParticipationRequestRepository(db *sql.DB) domain.ParticipationRequestRepository {
	return &requestRepository{DB: db}
}

const requestSelect = `SELECT id, event_id, requester_id, created, status FROM participation_requests`

func scanRequest(row rowScanner) (*domain.ParticipationRequest, error) {
	pr := &domain.ParticipationRequest{}
	var status string
	if err := row.Scan(&pr.ID, &pr.EventID, &pr.RequesterID, &pr.Created, &status); err != nil {
		return nil, err
	}
	pr.Status = domain.RequestStatus(status)
	return pr, nil
}

func (r *requestRepository) list(ctx context.Context, query string, args ...any) ([]*domain.ParticipationRequest, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.ParticipationRequest, 0)
	for rows.Next() {
		pr, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

func (r *requestRepository) Create(ctx context.Context, pr *domain.ParticipationRequest) error {
	query := `
		INSERT INTO participation_requests (event_id, requester_id, created, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, pr.EventID, pr.RequesterID, pr.Created, string(pr.Status)).Scan(&pr.ID)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == "23505" {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id int64) (*domain.ParticipationRequest, error) {
	pr, err := scanRequest(r.DB.QueryRowContext(ctx, requestSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return pr, nil
}

func (r *requestRepository) ListByIDs(ctx context.Context, ids []int64) ([]*domain.ParticipationRequest, error) {
	if len(ids) == 0 {
		return []*domain.ParticipationRequest{}, nil
	}
	return r.list(ctx, requestSelect+` WHERE id = ANY($1) ORDER BY id`, pq.Array(ids))
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterID int64) ([]*domain.ParticipationRequest, error) {
	return r.list(ctx, requestSelect+` WHERE requester_id = $1 ORDER BY id`, requesterID)
}

func (r *requestRepository) ListByEvent(ctx context.Context, eventID int64) ([]*domain.ParticipationRequest, error) {
	return r.list(ctx, requestSelect+` WHERE event_id = $1 ORDER BY id`, eventID)
}

func (r *requestRepository) UpdateStatus(ctx context.Context, pr *domain.ParticipationRequest) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE participation_requests SET status = $2 WHERE id = $1`, pr.ID, string(pr.Status))
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *requestRepository) UpdateStatuses(ctx context.Context, prs []*domain.ParticipationRequest) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, pr := range prs {
		result, err := tx.ExecContext(ctx, `UPDATE participation_requests SET status = $2 WHERE id = $1`, pr.ID, string(pr.Status))
		if err != nil {
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return domain.ErrNotFound
		}
	}
	return tx.Commit()
}

func (r *requestRepository) CountConfirmed(ctx context.Context, eventID int64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participation_requests WHERE event_id = $1 AND status = $2`,
		eventID, string(domain.RequestStatusConfirmed)).Scan(&n)
	return n, err
}

func (r *requestRepository) CountConfirmedByEvents(ctx context.Context, eventIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT event_id, COUNT(*) FROM participation_requests
		 WHERE event_id = ANY($1) AND status = $2
		 GROUP BY event_id`,
		pq.Array(eventIDs), string(domain.RequestStatusConfirmed))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
