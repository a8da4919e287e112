// Package rss reads RSS and Atom feeds as news sources.
package rss

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/securo-skn/crimefeed/internal/utils"
	"github.com/securo-skn/crimefeed/pkg/extract"
	"github.com/securo-skn/crimefeed/pkg/incident"
	"github.com/securo-skn/crimefeed/pkg/sources"
)

const (
	Kind         = "rss"
	DefaultLimit = 20
)

func init() {
	sources.Register(Kind, sources.Descriptor{Enabled: true, Limit: DefaultLimit}, New)
}

type Adapter struct {
	desc   sources.Descriptor
	deps   sources.Deps
	parser *gofeed.Parser
}

func New(d sources.Descriptor, deps sources.Deps) (sources.Adapter, error) {
	if d.Limit == 0 {
		d.Limit = DefaultLimit
	}
	if deps.Client == nil || deps.Rand == nil || deps.Now == nil {
		return nil, fmt.Errorf("source %s: incomplete dependencies", d.ID)
	}
	return &Adapter{desc: d, deps: deps, parser: gofeed.NewParser()}, nil
}

func (a *Adapter) Descriptor() sources.Descriptor { return a.desc }

// Fetch downloads and parses the feed, then runs the first Limit items
// through the same gate and classification as HTML sources.
func (a *Adapter) Fetch(ctx context.Context) ([]incident.Incident, error) {
	res, err := a.deps.Client.Get(ctx, a.desc.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", a.desc.ID, err)
	}

	feed, err := a.parser.Parse(bytes.NewReader(res.Body))
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", a.desc.ID, err)
	}

	count := len(feed.Items)
	if a.desc.Limit > 0 && count > a.desc.Limit {
		count = a.desc.Limit
	}

	articles := make([]extract.Article, 0, count)
	for _, item := range feed.Items[:count] {
		if item == nil {
			continue
		}
		articles = append(articles, toArticle(item))
	}
	return sources.Classify(a.desc, articles, a.deps.Now(), a.deps.Rand), nil
}

func toArticle(item *gofeed.Item) extract.Article {
	link := item.Link
	if link == "" && strings.HasPrefix(item.GUID, "http") {
		link = item.GUID
	}

	var dateText string
	if item.PublishedParsed != nil {
		dateText = item.PublishedParsed.Format(time.RFC3339)
	} else if item.UpdatedParsed != nil {
		dateText = item.UpdatedParsed.Format(time.RFC3339)
	}

	summary := item.Description
	if summary == "" {
		summary = item.Content
	}
	desc := stripTags(summary)
	if desc == "" {
		desc = extract.PlaceholderDescription
	} else {
		desc = utils.Truncate(desc, incident.DescriptionLimit)
	}

	return extract.Article{
		Title:       utils.CollapseSpace(item.Title),
		Link:        link,
		DateText:    dateText,
		Description: desc,
	}
}

// stripTags reduces an HTML fragment to its collapsed text.
func stripTags(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return utils.CollapseSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return utils.CollapseSpace(fragment)
	}
	return utils.CollapseSpace(doc.Text())
}
