package services

import (
	"context"
	"fmt"
	"time"

	"eventhub/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	categoryRepo   domain.CategoryRepository
	locationRepo   domain.LocationRepository
	ledger         domain.CapacityLedger
	now            func() time.Time
	contextTimeout time.Duration
}

// NewEventService creates the event lifecycle manager.
func NewEventService(eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	categoryRepo domain.CategoryRepository,
	locationRepo domain.LocationRepository,
	ledger domain.CapacityLedger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		categoryRepo:   categoryRepo,
		locationRepo:   locationRepo,
		ledger:         ledger,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

func (s *eventService) Create(ctx context.Context, initiatorID int64, draft domain.NewEventDraft) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := s.now()
	if err := domain.CheckEventDate(draft.EventDate, now, domain.InitiatorLeadTime); err != nil {
		return nil, err
	}
	initiator, err := findUser(ctx, s.userRepo, initiatorID)
	if err != nil {
		return nil, err
	}
	category, err := findCategory(ctx, s.categoryRepo, draft.CategoryID)
	if err != nil {
		return nil, err
	}
	location, err := s.locationRepo.FindOrCreate(ctx, draft.Location.Lat, draft.Location.Lon)
	if err != nil {
		return nil, fmt.Errorf("resolve location: %w", err)
	}

	event := &domain.Event{
		Title:             draft.Title,
		Annotation:        draft.Annotation,
		Description:       draft.Description,
		Category:          *category,
		Location:          *location,
		EventDate:         draft.EventDate,
		CreatedOn:         now,
		Paid:              false,
		ParticipantLimit:  0,
		RequestModeration: true,
		Initiator:         *initiator,
		State:             domain.EventStatePending,
	}
	if draft.Paid != nil {
		event.Paid = *draft.Paid
	}
	if draft.ParticipantLimit != nil {
		event.ParticipantLimit = *draft.ParticipantLimit
	}
	if draft.RequestModeration != nil {
		event.RequestModeration = *draft.RequestModeration
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return &domain.EventView{Event: event}, nil
}

func (s *eventService) UpdateByAdmin(ctx context.Context, eventID int64, patch domain.EventPatch) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := findEvent(ctx, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, domain.ActorAdmin, event, patch)
}

func (s *eventService) UpdateByInitiator(ctx context.Context, userID, eventID int64, patch domain.EventPatch) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := findOwnEvent(ctx, s.eventRepo, userID, eventID)
	if err != nil {
		return nil, err
	}
	if event.State != domain.EventStatePending && event.State != domain.EventStateCanceled {
		return nil, domain.Conflictf("only pending or canceled events can be changed, event with id=%d is %s",
			eventID, event.State)
	}
	return s.update(ctx, domain.ActorInitiator, event, patch)
}

// update validates the whole patch before touching the event, then applies it and saves.
func (s *eventService) update(ctx context.Context, actor domain.Actor, event *domain.Event, patch domain.EventPatch) (*domain.EventView, error) {
	now := s.now()
	if patch.EventDate != nil {
		if err := domain.CheckEventDate(*patch.EventDate, now, actor.LeadTime()); err != nil {
			return nil, err
		}
	}
	next := event.State
	if patch.StateAction != nil {
		var err error
		next, err = domain.NextState(actor, event.State, *patch.StateAction)
		if err != nil {
			return nil, err
		}
	}
	if patch.CategoryID != nil {
		category, err := findCategory(ctx, s.categoryRepo, *patch.CategoryID)
		if err != nil {
			return nil, err
		}
		event.Category = *category
	}
	if patch.Location != nil {
		location, err := s.locationRepo.FindOrCreate(ctx, patch.Location.Lat, patch.Location.Lon)
		if err != nil {
			return nil, fmt.Errorf("resolve location: %w", err)
		}
		event.Location = *location
	}
	patch.ApplyScalars(event)
	if next == domain.EventStatePublished && event.PublishedOn == nil {
		published := now
		event.PublishedOn = &published
	}
	event.State = next

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	confirmed, err := s.ledger.CountConfirmed(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("count confirmed requests: %w", err)
	}
	return &domain.EventView{Event: event, ConfirmedRequests: confirmed}, nil
}

func (s *eventService) ListByInitiator(ctx context.Context, userID int64, page domain.PageRequest) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByInitiator(ctx, userID, page)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	counts, err := s.ledger.CountConfirmedByEvents(ctx, eventIDs(events))
	if err != nil {
		return nil, fmt.Errorf("count confirmed requests: %w", err)
	}
	views := make([]*domain.EventView, 0, len(events))
	for _, e := range events {
		views = append(views, &domain.EventView{Event: e, ConfirmedRequests: counts[e.ID]})
	}
	return views, nil
}

func (s *eventService) GetByInitiator(ctx context.Context, userID, eventID int64) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := findOwnEvent(ctx, s.eventRepo, userID, eventID)
	if err != nil {
		return nil, err
	}
	confirmed, err := s.ledger.CountConfirmed(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count confirmed requests: %w", err)
	}
	return &domain.EventView{Event: event, ConfirmedRequests: confirmed}, nil
}
