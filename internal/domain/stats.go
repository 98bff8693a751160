package domain

import (
	"context"
	"time"
)

// EndpointHit is one recorded access to a public resource.
type EndpointHit struct {
	App       string
	URI       string
	IP        string
	Timestamp time.Time
}

// ViewStats is the aggregated hit count of one resource path.
type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// StatsClient talks to the external stats service.
type StatsClient interface {
	RecordHit(ctx context.Context, hit EndpointHit) error
	GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]ViewStats, error)
}

// ClientInfo identifies the inbound request a hit is recorded for.
type ClientInfo struct {
	URI string
	IP  string
}
