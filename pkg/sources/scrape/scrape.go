// Package scrape is the generic HTML listing adapter. Site profiles only
// differ in their descriptor and extraction hints.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/securo-skn/crimefeed/pkg/extract"
	"github.com/securo-skn/crimefeed/pkg/incident"
	"github.com/securo-skn/crimefeed/pkg/sources"
)

// Kind is the registry kind for configurable HTML sources.
const Kind = "html"

// DefaultLimit bounds candidates per page when a source sets none.
const DefaultLimit = 10

func init() {
	sources.Register(Kind, sources.Descriptor{Enabled: true, Limit: DefaultLimit}, New)
}

type Adapter struct {
	desc sources.Descriptor
	deps sources.Deps
}

// New returns an adapter for d. deps must carry a client, rand and clock.
func New(d sources.Descriptor, deps sources.Deps) (sources.Adapter, error) {
	if d.Limit == 0 {
		d.Limit = DefaultLimit
	}
	if deps.Client == nil || deps.Rand == nil || deps.Now == nil {
		return nil, fmt.Errorf("source %s: incomplete dependencies", d.ID)
	}
	return &Adapter{desc: d, deps: deps}, nil
}

func (a *Adapter) Descriptor() sources.Descriptor { return a.desc }

// Fetch downloads the listing page, extracts the first Limit candidates,
// gates them and classifies the survivors.
func (a *Adapter) Fetch(ctx context.Context) ([]incident.Incident, error) {
	res, err := a.deps.Client.Get(ctx, a.desc.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", a.desc.ID, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", a.desc.ID, err)
	}

	base := res.URL
	if base == nil {
		base, _ = url.Parse(a.desc.URL)
	}

	articles := extract.Extract(doc, base, a.desc.Hints, a.desc.Limit)
	return sources.Classify(a.desc, articles, a.deps.Now(), a.deps.Rand), nil
}
