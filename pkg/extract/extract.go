// Package extract pulls candidate articles out of news listing pages.
//
// Every lookup is driven by an ordered list of selectors: the first selector
// that yields something wins. A candidate with no usable title is dropped,
// anything else missing is tolerated.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/securo-skn/crimefeed/internal/utils"
	"github.com/securo-skn/crimefeed/pkg/incident"
)

// PlaceholderDescription is used when a candidate carries no text at all.
const PlaceholderDescription = "Full details available from source."

// Hints are the structural selectors for one site.
type Hints struct {
	Containers   []string `mapstructure:"containers"`
	Titles       []string `mapstructure:"titles"`
	Dates        []string `mapstructure:"dates"`
	Descriptions []string `mapstructure:"descriptions"`
}

// DefaultHints matches the common WordPress-style listing markup.
var DefaultHints = Hints{
	Containers:   []string{"article", "div.post, div.news-item, div.entry"},
	Titles:       []string{"h1, h2, h3, a"},
	Dates:        []string{"time", "span.date, span.published"},
	Descriptions: []string{"div.content, div.excerpt, div.summary", "p"},
}

// Article is an unclassified candidate.
type Article struct {
	Title       string
	Link        string
	DateText    string
	Description string
}

// Extract returns up to limit candidates from doc in document order. A limit
// of zero or less means no limit. Relative links are resolved against base.
func Extract(doc *goquery.Document, base *url.URL, hints Hints, limit int) []Article {
	if doc == nil {
		return nil
	}
	hints = hints.withDefaults()

	containers := firstMatch(doc.Selection, hints.Containers)
	if containers == nil {
		return nil
	}
	if limit > 0 && containers.Length() > limit {
		containers = containers.Slice(0, limit)
	}

	var out []Article
	containers.Each(func(_ int, s *goquery.Selection) {
		if a, ok := extractOne(s, base, hints); ok {
			out = append(out, a)
		}
	})
	return out
}

func (h Hints) withDefaults() Hints {
	if len(h.Containers) == 0 {
		h.Containers = DefaultHints.Containers
	}
	if len(h.Titles) == 0 {
		h.Titles = DefaultHints.Titles
	}
	if len(h.Dates) == 0 {
		h.Dates = DefaultHints.Dates
	}
	if len(h.Descriptions) == 0 {
		h.Descriptions = DefaultHints.Descriptions
	}
	return h
}

// firstMatch returns the selection of the first selector that finds anything.
func firstMatch(s *goquery.Selection, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		if found := s.Find(sel); found.Length() > 0 {
			return found
		}
	}
	return nil
}

func extractOne(s *goquery.Selection, base *url.URL, hints Hints) (a Article, ok bool) {
	// A malformed node must only cost this candidate
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	titleSel := firstTitle(s, hints.Titles)
	if titleSel == nil {
		return Article{}, false
	}
	a.Title = utils.CollapseSpace(titleSel.Text())
	a.Link = resolveLink(base, findHref(s, titleSel))
	a.DateText = dateText(s, hints.Dates)
	a.Description = description(s, hints.Descriptions)
	return a, true
}

func firstTitle(s *goquery.Selection, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		var hit *goquery.Selection
		s.Find(sel).EachWithBreak(func(_ int, t *goquery.Selection) bool {
			if strings.TrimSpace(t.Text()) != "" {
				hit = t
				return false
			}
			return true
		})
		if hit != nil {
			return hit
		}
	}
	return nil
}

func findHref(container, title *goquery.Selection) string {
	if href, ok := title.Attr("href"); ok && strings.TrimSpace(href) != "" {
		return href
	}
	if href, ok := title.Find("a[href]").First().Attr("href"); ok {
		return href
	}
	if href, ok := container.Find("a[href]").First().Attr("href"); ok {
		return href
	}
	return ""
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil || ref.IsAbs() {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

func dateText(s *goquery.Selection, selectors []string) string {
	d := firstMatch(s, selectors)
	if d == nil {
		return ""
	}
	d = d.First()
	if dt, ok := d.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
		return strings.TrimSpace(dt)
	}
	return utils.CollapseSpace(d.Text())
}

func description(s *goquery.Selection, selectors []string) string {
	text := ""
	for _, sel := range selectors {
		if t := utils.CollapseSpace(s.Find(sel).First().Text()); t != "" {
			text = t
			break
		}
	}
	if text == "" {
		text = utils.CollapseSpace(s.Text())
	}
	if text == "" {
		return PlaceholderDescription
	}
	return utils.Truncate(text, incident.DescriptionLimit)
}
