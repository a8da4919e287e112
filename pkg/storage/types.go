package storage

import (
	"time"

	"github.com/securo-skn/crimefeed/pkg/incident"
)

// Record is an archived incident with its sighting history.
type Record struct {
	Incident  incident.Incident `json:"incident"`
	FirstSeen time.Time         `json:"first_seen"`
	LastSeen  time.Time         `json:"last_seen"`
	SeenCount int               `json:"seen_count"`
}

// ListOptions controls selection when listing archived incidents.
type ListOptions struct {
	Source   string
	Category string
	Severity string
	Zone     string
	Since    time.Time
	Limit    int
}

// SourceStats summarizes the archive per source.
type SourceStats struct {
	Source     string
	Incidents  int
	Official   int
	LatestSeen time.Time
}
