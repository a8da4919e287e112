// Package observer scrapes the crime category of the St. Kitts Nevis Observer.
package observer

import (
	"github.com/securo-skn/crimefeed/pkg/classify"
	"github.com/securo-skn/crimefeed/pkg/extract"
	"github.com/securo-skn/crimefeed/pkg/sources"
	"github.com/securo-skn/crimefeed/pkg/sources/scrape"
)

const (
	ID  = "observer"
	URL = "https://www.thestkittsnevisobserver.com/category/crime/"
)

// Descriptor is the built-in profile. The crime category page is already
// topical, so only the first 10 teasers are considered.
func Descriptor() sources.Descriptor {
	return sources.Descriptor{
		ID:      ID,
		Name:    "St. Kitts Nevis Observer",
		URL:     URL,
		Enabled: true,
		Limit:   10,
		Gate:    classify.GateCrime,
		Hints: extract.Hints{
			Containers:   []string{"article", "div.post, div.entry, div.article"},
			Titles:       []string{"h2", "h3", "a"},
			Dates:        []string{"time", "span.date, span.published"},
			Descriptions: []string{"div.content, div.excerpt, div.summary", "p"},
		},
	}
}

func init() {
	sources.Register(ID, Descriptor(), scrape.New)
}
