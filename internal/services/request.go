package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventhub/internal/domain"
)

const notifyTimeout = 10 * time.Second

type requestService struct {
	requestRepo    domain.ParticipationRequestRepository
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	locker         domain.EventLocker
	emailService   domain.EmailService
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

// NewRequestService creates the participation request coordinator. emailService may be nil,
// in which case no status notifications are sent.
func NewRequestService(requestRepo domain.ParticipationRequestRepository,
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	locker domain.EventLocker,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RequestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &requestService{
		requestRepo:    requestRepo,
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		locker:         locker,
		emailService:   emailService,
		logger:         logger,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

func (s *requestService) Create(ctx context.Context, userID, eventID int64) (*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	requester, err := findUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	event, err := findEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	if event.Initiator.ID == requester.ID {
		return nil, domain.Conflictf("initiator cannot request participation in own event with id=%d", eventID)
	}
	if event.State != domain.EventStatePublished {
		return nil, domain.Conflictf("event with id=%d is not published", eventID)
	}

	unlock, err := s.locker.Lock(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("lock event: %w", err)
	}
	defer unlock()

	// State and limit may have changed while waiting for the lock.
	if event, err = findEvent(ctx, s.eventRepo, eventID); err != nil {
		return nil, err
	}
	if event.State != domain.EventStatePublished {
		return nil, domain.Conflictf("event with id=%d is not published", eventID)
	}

	if event.ParticipantLimit > 0 {
		confirmed, err := s.requestRepo.CountConfirmed(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("count confirmed requests: %w", err)
		}
		if confirmed >= event.ParticipantLimit {
			return nil, domain.Conflictf("participant limit of event with id=%d has been reached", eventID)
		}
	}

	req := domain.NewParticipationRequest(event, requester.ID, s.now())
	if err := s.requestRepo.Create(ctx, req); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflictf("user with id=%d already requested participation in event with id=%d",
				userID, eventID)
		}
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

func (s *requestService) Cancel(ctx context.Context, userID, requestID int64) (*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := findUser(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, requestNotFound(requestID)
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req.RequesterID != userID {
		return nil, requestNotFound(requestID)
	}
	req.Status = domain.RequestStatusCanceled
	if err := s.requestRepo.UpdateStatus(ctx, req); err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}
	return req, nil
}

func (s *requestService) BatchResolve(ctx context.Context, userID, eventID int64, requestIDs []int64, decision domain.RequestStatus) (*domain.BatchResult, error) {
	if decision != domain.RequestStatusConfirmed && decision != domain.RequestStatusRejected {
		return nil, domain.InvalidInputf("status must be CONFIRMED or REJECTED, got %q", decision)
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := findUser(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	event, err := findOwnEvent(ctx, s.eventRepo, userID, eventID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("lock event: %w", err)
	}
	defer unlock()

	confirmed, err := s.requestRepo.CountConfirmed(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count confirmed requests: %w", err)
	}
	remaining := event.ParticipantLimit - confirmed
	if remaining <= 0 {
		return nil, domain.Conflictf("participant limit of event with id=%d has been reached", eventID)
	}

	ids := uniqueIDs(requestIDs)
	found, err := s.requestRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	byID := make(map[int64]*domain.ParticipationRequest, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	var missing []int64
	for _, id := range ids {
		if r, ok := byID[id]; !ok || r.EventID != eventID {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, domain.NotFoundf("participation requests with ids=%v were not found for event with id=%d",
			missing, eventID)
	}

	result := &domain.BatchResult{
		Confirmed: []*domain.ParticipationRequest{},
		Rejected:  []*domain.ParticipationRequest{},
	}
	resolved := make([]*domain.ParticipationRequest, 0, len(ids))
	for _, id := range ids {
		r := byID[id]
		if decision == domain.RequestStatusConfirmed && remaining > 0 {
			r.Status = domain.RequestStatusConfirmed
			remaining--
			result.Confirmed = append(result.Confirmed, r)
		} else {
			r.Status = domain.RequestStatusRejected
			result.Rejected = append(result.Rejected, r)
		}
		resolved = append(resolved, r)
	}

	if err := s.requestRepo.UpdateStatuses(ctx, resolved); err != nil {
		return nil, fmt.Errorf("update requests: %w", err)
	}
	s.notifyResolved(ctx, event, resolved)
	return result, nil
}

func (s *requestService) ListMine(ctx context.Context, userID int64) ([]*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := findUser(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	list, err := s.requestRepo.ListByRequester(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return list, nil
}

func (s *requestService) ListForEvent(ctx context.Context, userID, eventID int64) ([]*domain.ParticipationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := findUser(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	if _, err := findOwnEvent(ctx, s.eventRepo, userID, eventID); err != nil {
		return nil, err
	}
	list, err := s.requestRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return list, nil
}

// notifyResolved emails every requester of a committed batch. It runs detached from the
// caller and only logs failures.
func (s *requestService) notifyResolved(ctx context.Context, event *domain.Event, resolved []*domain.ParticipationRequest) {
	if s.emailService == nil || len(resolved) == 0 {
		return
	}
	batch := make([]domain.ParticipationRequest, len(resolved))
	for i, r := range resolved {
		batch[i] = *r
	}
	title := event.Title
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		for _, r := range batch {
			u, err := s.userRepo.GetByID(ctx, r.RequesterID)
			if err != nil {
				s.logger.WarnContext(ctx, "notify requester: lookup failed", "request_id", r.ID, "err", err)
				continue
			}
			if u.Email == "" {
				continue
			}
			err = s.emailService.SendRequestStatus(ctx, &domain.RequestStatusEmailData{
				Email:      u.Email,
				Name:       u.Name,
				EventTitle: title,
				RequestID:  r.ID,
				Status:     r.Status,
			})
			if err != nil {
				s.logger.WarnContext(ctx, "notify requester: send failed", "request_id", r.ID, "err", err)
			}
		}
	}()
}

func requestNotFound(id int64) error {
	return domain.NotFoundf("participation request with id=%d was not found", id)
}

// uniqueIDs drops repeated ids, keeping the first occurrence of each.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
