// Package winnfm scrapes the WINN FM news front page.
package winnfm

import (
	"github.com/securo-skn/crimefeed/pkg/classify"
	"github.com/securo-skn/crimefeed/pkg/extract"
	"github.com/securo-skn/crimefeed/pkg/sources"
	"github.com/securo-skn/crimefeed/pkg/sources/scrape"
)

const (
	ID  = "winnfm"
	URL = "https://www.winnmediaskn.com/"
)

func Descriptor() sources.Descriptor {
	return sources.Descriptor{
		ID:      ID,
		Name:    "WINN FM News",
		URL:     URL,
		Enabled: true,
		Limit:   10,
		Gate:    classify.GateCrime,
		Hints: extract.Hints{
			Containers: []string{"article.post, article.news-item, article.entry, div.post, div.news-item, div.entry"},
			Titles:     []string{"h1, h2, h3, a"},
		},
	}
}

func init() {
	sources.Register(ID, Descriptor(), scrape.New)
}
