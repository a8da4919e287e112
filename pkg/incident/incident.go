// Package incident holds the canonical incident record served by the feed.
package incident

import (
	"errors"
	"fmt"
	"time"
)

type Category string

const (
	CategoryViolent  Category = "violent"
	CategoryProperty Category = "property"
	CategoryDrug     Category = "drug"
	CategoryFraud    Category = "fraud"
	CategoryTraffic  Category = "traffic"
	CategoryOther    Category = "other"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

type Zone string

const (
	ZoneBasseterre  Zone = "basseterre"
	ZoneFrigateBay  Zone = "frigate-bay"
	ZoneSandyPoint  Zone = "sandy-point"
	ZoneCharlestown Zone = "charlestown"
)

type Status string

const (
	StatusActive   Status = "Active"
	StatusReported Status = "Reported"
)

// Tier is the provenance of an incident record.
type Tier string

const (
	TierScraped   Tier = "scraped"
	TierTrend     Tier = "trend"
	TierSimulated Tier = "simulated"
)

// Tiers lists every tier in reporting order.
var Tiers = []Tier{TierScraped, TierTrend, TierSimulated}

// ID prefixes per tier.
const (
	PrefixScraped   = "NEWS"
	PrefixTrend     = "TREND"
	PrefixSimulated = "SIM"
)

// DescriptionLimit is the maximum description length in runes before the ellipsis.
const DescriptionLimit = 200

// Incident is a single classified crime news item.
type Incident struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      Category  `json:"category"`
	CategoryLabel string    `json:"category_label"`
	Severity      Severity  `json:"severity"`
	Priority      int       `json:"priority"`
	Status        Status    `json:"status"`
	Zone          Zone      `json:"zone"`
	ZoneLabel     string    `json:"zone_label"`
	Officer       string    `json:"officer"`
	SourceName    string    `json:"source_name"`
	SourceURL     string    `json:"source_url"`
	IsOfficial    bool      `json:"is_official"`
	Tier          Tier      `json:"data_tier"`
}

var ErrIncomplete = errors.New("incomplete incident")

// Validate checks the fields every served incident must carry.
func (i Incident) Validate() error {
	switch {
	case i.ID == "":
		return fmt.Errorf("%w: missing id", ErrIncomplete)
	case i.Category == "":
		return fmt.Errorf("%w: %s missing category", ErrIncomplete, i.ID)
	case i.Severity == "":
		return fmt.Errorf("%w: %s missing severity", ErrIncomplete, i.ID)
	case i.Zone == "":
		return fmt.Errorf("%w: %s missing zone", ErrIncomplete, i.ID)
	case i.Tier == "":
		return fmt.Errorf("%w: %s missing data tier", ErrIncomplete, i.ID)
	case i.Timestamp.IsZero():
		return fmt.Errorf("%w: %s missing timestamp", ErrIncomplete, i.ID)
	}
	return nil
}

// CountByTier tallies incidents per provenance tier.
func CountByTier(incidents []Incident) map[Tier]int {
	out := make(map[Tier]int, len(Tiers))
	for _, t := range Tiers {
		out[t] = 0
	}
	for _, i := range incidents {
		out[i.Tier]++
	}
	return out
}

// Clone returns a copy of the slice so callers can't mutate shared state.
func Clone(incidents []Incident) []Incident {
	if incidents == nil {
		return nil
	}
	out := make([]Incident, len(incidents))
	copy(out, incidents)
	return out
}
