package rss

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/securo-skn/crimefeed/internal/utils"
	"github.com/securo-skn/crimefeed/pkg/classify"
	"github.com/securo-skn/crimefeed/pkg/extract"
	"github.com/securo-skn/crimefeed/pkg/incident"
	"github.com/securo-skn/crimefeed/pkg/sources"
	"github.com/securo-skn/crimefeed/pkg/whttp"
)

const feedBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>News</title>
<item>
  <title>Drugs seized in Sandy Point</title>
  <link>https://news.example/drugs</link>
  <pubDate>Wed, 01 May 2024 10:00:00 +0000</pubDate>
  <description>&lt;p&gt;Police   seized &lt;b&gt;narcotics&lt;/b&gt;.&lt;/p&gt;</description>
</item>
<item>
  <title>Festival schedule announced</title>
  <link>https://news.example/festival</link>
</item>
<item>
  <title>Police respond to traffic accident on Island Main Road</title>
  <guid>https://news.example/traffic</guid>
</item>
</channel></rss>`

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(feedBody))
	}))
	defer srv.Close()

	c, _ := whttp.New(whttp.Options{Retries: 0})
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a, err := New(sources.Descriptor{ID: "feed", Name: "Feed", URL: srv.URL, Gate: classify.GateCrime},
		sources.Deps{Client: c, Rand: utils.NewRand(3), Now: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 incidents, got %d", len(got))
	}

	drug := got[0]
	if drug.Category != incident.CategoryDrug || drug.Zone != incident.ZoneSandyPoint {
		t.Fatalf("expected drug/sandy-point, got %s/%s", drug.Category, drug.Zone)
	}
	if !drug.Timestamp.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected pubDate, got %v", drug.Timestamp)
	}
	if drug.Description != "Police seized narcotics." {
		t.Fatalf("expected stripped description, got %q", drug.Description)
	}

	traffic := got[1]
	if traffic.SourceURL != "https://news.example/traffic" {
		t.Fatalf("expected guid link, got %q", traffic.SourceURL)
	}
	if traffic.Description != extract.PlaceholderDescription {
		t.Fatalf("expected placeholder, got %q", traffic.Description)
	}
	if age := now.Sub(traffic.Timestamp); age < time.Hour || age > 72*time.Hour {
		t.Fatalf("expected fallback timestamp, got %v ago", age)
	}
}

func TestFetchRejectsGarbage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("definitely not a feed"))
	}))
	defer srv.Close()

	c, _ := whttp.New(whttp.Options{Retries: 0})
	a, _ := New(sources.Descriptor{ID: "feed", URL: srv.URL}, sources.Deps{Client: c, Rand: utils.NewRand(1), Now: time.Now})
	if _, err := a.Fetch(context.Background()); err == nil {
		t.Fatalf("expected parse error")
	}
}
