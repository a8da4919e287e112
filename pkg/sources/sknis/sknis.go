// Package sknis scrapes the government information service front page.
package sknis

import (
	"github.com/securo-skn/crimefeed/pkg/classify"
	"github.com/securo-skn/crimefeed/pkg/extract"
	"github.com/securo-skn/crimefeed/pkg/sources"
	"github.com/securo-skn/crimefeed/pkg/sources/scrape"
)

const (
	ID  = "sknis"
	URL = "https://www.sknis.gov.kn/"
)

// Descriptor is the built-in profile. The front page mixes every ministry,
// so more candidates are read and only policing items pass the gate.
func Descriptor() sources.Descriptor {
	return sources.Descriptor{
		ID:       ID,
		Name:     "SKNIS Government News",
		URL:      URL,
		Enabled:  true,
		Official: true,
		Limit:    15,
		Gate:     classify.GateOfficial,
		Hints: extract.Hints{
			Containers: []string{"article.post, article.news-item, article.entry, div.post, div.news-item, div.entry"},
			Titles:     []string{"h1, h2, h3, a"},
		},
	}
}

func init() {
	sources.Register(ID, Descriptor(), scrape.New)
}
