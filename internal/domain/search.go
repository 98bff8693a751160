package domain

import (
	"context"
	"time"
)

// SortMode orders public search results.
type SortMode string

const (
	SortByEventDate SortMode = "EVENT_DATE"
	SortByViews     SortMode = "VIEWS"
)

// PublicSearchQuery is the public event search. Nil range bounds take defaults.
type PublicSearchQuery struct {
	Text          string
	CategoryIDs   []int64
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          SortMode
	Page          PageRequest
}

// AdminSearchQuery is the administrative event search.
type AdminSearchQuery struct {
	InitiatorIDs []int64
	States       []EventState
	CategoryIDs  []int64
	RangeStart   *time.Time
	RangeEnd     *time.Time
	Page         PageRequest
}

// SearchService is the public search aggregator.
type SearchService interface {
	Search(ctx context.Context, q PublicSearchQuery, client ClientInfo) ([]*EventView, error)
	GetPublished(ctx context.Context, eventID int64, client ClientInfo) (*EventView, error)
	SearchAdmin(ctx context.Context, q AdminSearchQuery) ([]*EventView, error)
}

// NormalizeIDFilter treats a single zero id as "no filter".
func NormalizeIDFilter(ids []int64) []int64 {
	if len(ids) == 1 && ids[0] == 0 {
		return nil
	}
	return ids
}
