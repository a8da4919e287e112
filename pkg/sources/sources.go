// Package sources defines the news source adapters and the registry that
// builds them from configuration.
package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/weppos/publicsuffix-go/publicsuffix"

	"github.com/securo-skn/crimefeed/internal/utils"
	"github.com/securo-skn/crimefeed/pkg/classify"
	"github.com/securo-skn/crimefeed/pkg/extract"
	"github.com/securo-skn/crimefeed/pkg/incident"
	"github.com/securo-skn/crimefeed/pkg/whttp"
)

// Officer values stamped on scraped incidents.
const (
	OfficerOfficial = "Investigation Team"
	OfficerPress    = "TBD"
)

// Descriptor is the static description of one news source.
type Descriptor struct {
	ID       string
	Name     string
	URL      string
	Kind     string
	Enabled  bool
	Official bool
	Limit    int
	Gate     classify.Gate
	Hints    extract.Hints
}

// Domain returns the registrable domain of the source URL, or the bare host
// when it can't be derived.
func (d Descriptor) Domain() string {
	u, err := url.Parse(d.URL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := u.Hostname()
	if !strings.Contains(host, ".") {
		return host
	}
	domain, err := publicsuffix.Domain(host)
	if err != nil {
		return host
	}
	return domain
}

func (d Descriptor) Validate() error {
	if d.ID == "" {
		return errors.New("source id is required")
	}
	u, err := url.Parse(d.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("source %s: invalid url %q", d.ID, d.URL)
	}
	if d.Limit < 0 {
		return fmt.Errorf("source %s: negative limit", d.ID)
	}
	return nil
}

// Adapter fetches and classifies the current items of one source.
// Implementations return an error for whole-source failures only.
type Adapter interface {
	Descriptor() Descriptor
	Fetch(ctx context.Context) ([]incident.Incident, error)
}

// Deps are the shared collaborators handed to every adapter.
type Deps struct {
	Client *whttp.Client
	Rand   *utils.Rand
	Now    func() time.Time
}

func (d Deps) withDefaults() (Deps, error) {
	if d.Client == nil {
		c, err := whttp.New(whttp.Options{})
		if err != nil {
			return d, err
		}
		d.Client = c
	}
	if d.Rand == nil {
		d.Rand = utils.NewTimeRand()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d, nil
}

// BuildIncident turns an extracted article into a scraped-tier incident.
func BuildIncident(d Descriptor, a extract.Article, date time.Time) incident.Incident {
	cls := classify.Classify(a.Title)
	zone, zoneLabel := classify.ExtractZone(a.Title)

	officer := OfficerPress
	if d.Official {
		officer = OfficerOfficial
	}
	link := a.Link
	if link == "" {
		link = d.URL
	}
	desc := a.Description
	if desc == "" {
		desc = extract.PlaceholderDescription
	}

	return incident.Incident{
		ID:            classify.IncidentID(incident.PrefixScraped, a.Title, date),
		Timestamp:     date,
		Title:         a.Title,
		Description:   desc,
		Category:      cls.Category,
		CategoryLabel: cls.Label,
		Severity:      cls.Severity,
		Priority:      classify.SeverityToPriority(cls.Severity),
		Status:        classify.StatusFor(a.Title),
		Zone:          zone,
		ZoneLabel:     zoneLabel,
		Officer:       officer,
		SourceName:    d.Name,
		SourceURL:     link,
		IsOfficial:    d.Official,
		Tier:          incident.TierScraped,
	}
}

// Classify gates articles with the source's relevance gate and builds
// incidents for the survivors. Dates are parsed relative to now.
func Classify(d Descriptor, articles []extract.Article, now time.Time, rng *utils.Rand) []incident.Incident {
	out := make([]incident.Incident, 0, len(articles))
	for _, a := range articles {
		if a.Title == "" || !d.Gate.Allows(a.Title) {
			continue
		}
		date := extract.ParseDate(a.DateText, now, rng)
		out = append(out, BuildIncident(d, a, date))
	}
	return out
}
