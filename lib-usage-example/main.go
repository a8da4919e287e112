package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/securo-skn/crimefeed/pkg/aggregator"
	"github.com/securo-skn/crimefeed/pkg/feed"
	"github.com/securo-skn/crimefeed/pkg/sources"
	_ "github.com/securo-skn/crimefeed/pkg/sources/builtin"
	"github.com/securo-skn/crimefeed/pkg/whttp"
)

func main() {
	// Usage: go run *.go -severity high -feed https://example.com/rss

	severityFlag := flag.String("severity", "all", "Severity filter")
	feedFlag := flag.String("feed", "", "Extra RSS feed to aggregate")

	// Parse the command-line flags
	flag.Parse()

	client, err := whttp.New(whttp.Options{Timeout: 15 * time.Second})
	if err != nil {
		fmt.Println(err)
		return
	}

	configs := sources.DefaultConfigs()
	if *feedFlag != "" {
		configs = append(configs, sources.Config{ID: "extra", Kind: "rss", URL: *feedFlag})
	}

	// Built-in profiles and generic kinds are configured the same way
	adapters, err := sources.Build(configs, sources.Deps{Client: client})
	if err != nil {
		fmt.Println("some sources were skipped:", err)
	}

	agg := aggregator.New(aggregator.Config{Adapters: adapters})
	svc := feed.NewService(feed.Config{Backend: agg})

	resp := svc.Query(context.Background(), feed.Request{
		Filters:  feed.Filters{Severity: *severityFlag},
		PageSize: 20,
	})

	for _, inc := range resp.Incidents {
		fmt.Println(inc.ID, inc.Severity, inc.Tier, inc.Title)
	}
	if resp.Note != "" {
		fmt.Println(resp.Note)
	}
}
