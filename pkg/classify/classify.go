// Package classify maps free text onto the crime taxonomy with keyword rules.
//
// Matching is a case-insensitive substring test. Rule lists are ordered and the
// first matching rule wins, so a title mentioning both a killing and a theft is
// classified by the killing.
package classify

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/securo-skn/crimefeed/pkg/incident"
)

// crimeKeywords is the general relevance gate used for press sources.
var crimeKeywords = []string{
	"murder", "homicide", "shooting", "killed", "death", "died",
	"robbery", "burglary", "theft", "stolen", "arrest",
	"police", "investigation", "suspect", "charged", "court",
	"violence", "assault", "attack", "crime", "criminal",
	"drugs", "trafficking", "possession", "fraud", "scam",
	"domestic violence", "sexual assault", "rape", "kidnap",
	"weapons", "firearm", "gun", "stabbing", "incident",
	"emergency", "patrol", "officer", "constable", "break-in",
}

// officialKeywords is the gate for government sources, where procedural
// announcements by the force are relevant even without a crime in the title.
var officialKeywords = []string{
	"police", "rscnpf", "officer", "constable", "commissioner",
	"crime", "arrest", "investigation", "patrol", "security",
	"law enforcement", "public safety", "force", "emergency",
}

// progressMarkers flag an incident as still active.
var progressMarkers = []string{"ongoing", "investigating", "seeking"}

// Result is the outcome of Classify.
type Result struct {
	Category incident.Category
	Severity incident.Severity
	Label    string
}

type rule struct {
	keywords []string
	result   Result
}

// rules is evaluated top to bottom; order is the tie-break policy.
var rules = []rule{
	{
		keywords: []string{"murder", "homicide", "killed", "death", "shooting", "stabbing"},
		result:   Result{incident.CategoryViolent, incident.SeverityCritical, "Homicide/Violent Crime"},
	},
	{
		keywords: []string{"assault", "robbery", "attack", "violence", "rape", "sexual assault", "kidnap"},
		result:   Result{incident.CategoryViolent, incident.SeverityHigh, "Violent Crime"},
	},
	{
		keywords: []string{"burglary", "theft", "stolen", "breaking", "break-in", "vandalism"},
		result:   Result{incident.CategoryProperty, incident.SeverityMedium, "Property Crime"},
	},
	{
		keywords: []string{"drugs", "drug", "trafficking", "possession", "narcotics"},
		result:   Result{incident.CategoryDrug, incident.SeverityHigh, "Drug Offense"},
	},
	{
		keywords: []string{"fraud", "scam", "financial", "money laundering"},
		result:   Result{incident.CategoryFraud, incident.SeverityMedium, "Financial Crime"},
	},
	{
		keywords: []string{"traffic", "accident", "collision", "hit and run", "driving"},
		result:   Result{incident.CategoryTraffic, incident.SeverityLow, "Traffic Incident"},
	},
}

var defaultResult = Result{incident.CategoryOther, incident.SeverityMedium, "General Incident"}

type zoneEntry struct {
	zone     incident.Zone
	label    string
	keywords []string
}

// gazetteer is checked in order; first zone with a matching keyword wins.
var gazetteer = []zoneEntry{
	{incident.ZoneBasseterre, "Basseterre Central District", []string{"basseterre", "independence square", "bay road", "central"}},
	{incident.ZoneFrigateBay, "Frigate Bay Tourism Zone", []string{"frigate bay", "frigate", "resort", "casino", "marriott"}},
	{incident.ZoneSandyPoint, "Sandy Point Township", []string{"sandy point", "newton ground", "port"}},
	{incident.ZoneCharlestown, "Charlestown (Nevis)", []string{"charlestown", "nevis", "government road", "memorial square"}},
}

const (
	DefaultZone      = incident.ZoneBasseterre
	DefaultZoneLabel = "St. Kitts and Nevis"
)

var zoneLabels = map[incident.Zone]string{}

func init() {
	for _, z := range gazetteer {
		zoneLabels[z.zone] = z.label
	}
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// IsCrimeRelated reports whether text mentions any general crime keyword.
func IsCrimeRelated(text string) bool {
	return containsAny(text, crimeKeywords)
}

// IsOfficialRelated reports whether text mentions any policing keyword.
func IsOfficialRelated(text string) bool {
	return containsAny(text, officialKeywords)
}

// Classify returns the category, severity and label of the first matching rule.
func Classify(text string) Result {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, k := range r.keywords {
			if strings.Contains(lower, k) {
				return r.result
			}
		}
	}
	return defaultResult
}

// ExtractZone matches text against the zone gazetteer.
func ExtractZone(text string) (incident.Zone, string) {
	for _, z := range gazetteer {
		if containsAny(text, z.keywords) {
			return z.zone, z.label
		}
	}
	return DefaultZone, DefaultZoneLabel
}

// ZoneLabel returns the display name of a known zone.
func ZoneLabel(z incident.Zone) (string, bool) {
	l, ok := zoneLabels[z]
	return l, ok
}

// SeverityToPriority maps severity onto the 2-5 priority scale, 3 when unknown.
func SeverityToPriority(s incident.Severity) int {
	switch s {
	case incident.SeverityCritical:
		return 5
	case incident.SeverityHigh:
		return 4
	case incident.SeverityMedium:
		return 3
	case incident.SeverityLow:
		return 2
	default:
		return 3
	}
}

// StatusFor is Active when the text carries a progress marker, else Reported.
func StatusFor(text string) incident.Status {
	if containsAny(text, progressMarkers) {
		return incident.StatusActive
	}
	return incident.StatusReported
}

// IncidentID builds PREFIX-YYYYMMDD-HASH4 from the title and date. The hash is
// short on purpose: it is a display id and an approximate dedup aid, not a key.
func IncidentID(prefix, title string, date time.Time) string {
	sum := md5.Sum([]byte(title + date.Format(time.RFC3339)))
	h := strings.ToUpper(hex.EncodeToString(sum[:])[:4])
	return fmt.Sprintf("%s-%s-%s", prefix, date.Format("20060102"), h)
}
