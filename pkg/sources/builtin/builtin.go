// Package builtin registers every adapter kind shipped with crimefeed.
package builtin

import (
	"github.com/securo-skn/crimefeed/pkg/sources"
	"github.com/securo-skn/crimefeed/pkg/sources/observer"
	"github.com/securo-skn/crimefeed/pkg/sources/rss"
	"github.com/securo-skn/crimefeed/pkg/sources/scrape"
	"github.com/securo-skn/crimefeed/pkg/sources/sknis"
	"github.com/securo-skn/crimefeed/pkg/sources/winnfm"
)

// Profiles returns the descriptors of the built-in site profiles.
func Profiles() []sources.Descriptor {
	return []sources.Descriptor{
		observer.Descriptor(),
		sknis.Descriptor(),
		winnfm.Descriptor(),
	}
}

// GenericKinds are kinds that need a url in config.
var GenericKinds = []string{scrape.Kind, rss.Kind}
