package aggregator

import (
	"fmt"
	"time"

	"github.com/securo-skn/crimefeed/internal/utils"
	"github.com/securo-skn/crimefeed/pkg/classify"
	"github.com/securo-skn/crimefeed/pkg/incident"
)

const (
	TrendSource          = "Crime Trends Analysis"
	TrendOfficer         = "Investigation Team"
	TrendDescription     = "Based on recent crime trends in St. Kitts and Nevis. Details pending official confirmation."
	SimulatedSource      = "SECURO System"
	SimulatedOfficer     = "System Generated"
	SimulatedDescription = "Simulated data: Real crime feed temporarily unavailable. This is placeholder content."
)

type template struct {
	title    string
	category incident.Category
	label    string
	severity incident.Severity
	zone     incident.Zone
}

var trendTemplates = []template{
	{"Police investigate break-in at Frigate Bay residence", incident.CategoryProperty, "Burglary", incident.SeverityMedium, incident.ZoneFrigateBay},
	{"Traffic accident reported on Island Main Road", incident.CategoryTraffic, "Traffic Incident", incident.SeverityLow, incident.ZoneBasseterre},
	{"Police conduct drug seizure operation in Sandy Point", incident.CategoryDrug, "Drug Offense", incident.SeverityHigh, incident.ZoneSandyPoint},
}

var simulatedTemplates = []template{
	{"Police patrol activity increased in Basseterre", incident.CategoryOther, "Police Activity", incident.SeverityLow, incident.ZoneBasseterre},
}

// Trend returns the trend batch: one record per template, each dated
// 1-48 hours before now.
func Trend(now time.Time, rng *utils.Rand) []incident.Incident {
	out := make([]incident.Incident, 0, len(trendTemplates))
	for _, t := range trendTemplates {
		inc := t.build(incident.PrefixTrend, rng.HoursAgo(now, 1, 48))
		inc.Description = TrendDescription
		inc.Officer = TrendOfficer
		inc.SourceName = TrendSource
		inc.Tier = incident.TierTrend
		out = append(out, inc)
	}
	return uniqueIDs(out)
}

// Simulated returns the last-resort placeholder batch, dated 1-12 hours
// before now.
func Simulated(now time.Time, rng *utils.Rand) []incident.Incident {
	out := make([]incident.Incident, 0, len(simulatedTemplates))
	for _, t := range simulatedTemplates {
		inc := t.build(incident.PrefixSimulated, rng.HoursAgo(now, 1, 12))
		inc.Description = SimulatedDescription
		inc.Officer = SimulatedOfficer
		inc.SourceName = SimulatedSource
		inc.Tier = incident.TierSimulated
		out = append(out, inc)
	}
	return uniqueIDs(out)
}

func (t template) build(prefix string, ts time.Time) incident.Incident {
	zoneLabel, ok := classify.ZoneLabel(t.zone)
	if !ok {
		zoneLabel = classify.DefaultZoneLabel
	}
	return incident.Incident{
		ID:            classify.IncidentID(prefix, t.title, ts),
		Timestamp:     ts,
		Title:         t.title,
		Category:      t.category,
		CategoryLabel: t.label,
		Severity:      t.severity,
		Priority:      classify.SeverityToPriority(t.severity),
		Status:        incident.StatusActive,
		Zone:          t.zone,
		ZoneLabel:     zoneLabel,
	}
}

// uniqueIDs suffixes the rare 4-hex collisions inside one synthetic batch.
func uniqueIDs(batch []incident.Incident) []incident.Incident {
	seen := make(map[string]int, len(batch))
	for i := range batch {
		id := batch[i].ID
		if n, dup := seen[id]; dup {
			seen[id] = n + 1
			batch[i].ID = fmt.Sprintf("%s-%d", id, n+1)
			continue
		}
		seen[id] = 0
	}
	return batch
}
