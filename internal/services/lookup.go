package services

import (
	"context"
	"errors"
	"fmt"

	"eventhub/internal/domain"
)

func findUser(ctx context.Context, repo domain.UserRepository, id int64) (*domain.User, error) {
	u, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundf("user with id=%d was not found", id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func findEvent(ctx context.Context, repo domain.EventRepository, id int64) (*domain.Event, error) {
	e, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, eventNotFound(id)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// findOwnEvent loads the event and hides it from anyone but its initiator.
func findOwnEvent(ctx context.Context, repo domain.EventRepository, userID, eventID int64) (*domain.Event, error) {
	e, err := findEvent(ctx, repo, eventID)
	if err != nil {
		return nil, err
	}
	if e.Initiator.ID != userID {
		return nil, eventNotFound(eventID)
	}
	return e, nil
}

func findCategory(ctx context.Context, repo domain.CategoryRepository, id int64) (*domain.Category, error) {
	c, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundf("category with id=%d was not found", id)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func eventNotFound(id int64) error {
	return domain.NotFoundf("event with id=%d was not found", id)
}

func eventIDs(events []*domain.Event) []int64 {
	ids := make([]int64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}
