package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"text/tabwriter"
	"time"

	"github.com/spf13/viper"

	"github.com/securo-skn/crimefeed/internal/utils"
	"github.com/securo-skn/crimefeed/pkg/incident"
)

func sampleIncidents(now time.Time) []incident.Incident {
	return []incident.Incident{
		{
			ID:         "NEWS-20240501-ABCD",
			Timestamp:  now.Add(-3 * time.Hour),
			Title:      "Man charged with murder in Basseterre after a long investigation into the shooting",
			Category:   incident.CategoryViolent,
			Severity:   incident.SeverityHigh,
			Status:     incident.StatusActive,
			Zone:       incident.ZoneBasseterre,
			SourceName: "SKN Observer",
			SourceURL:  "https://observer.example/a",
			Tier:       incident.TierScraped,
		},
		{
			ID:         "TREND-20240501-0F0F",
			Timestamp:  now.Add(-30 * time.Minute),
			Title:      "Property crime reports",
			Category:   incident.CategoryProperty,
			Severity:   incident.SeverityMedium,
			Status:     incident.StatusReported,
			Zone:       incident.ZoneFrigateBay,
			SourceName: "Crime Trend Analysis",
			Tier:       incident.TierTrend,
		},
	}
}

func TestPrintJSON_Path(t *testing.T) {
	now := time.Now()
	var buf bytes.Buffer
	payload := map[string]interface{}{"incidents": sampleIncidents(now)}

	if err := printJSON(&buf, payload, "incidents.#.id"); err != nil {
		t.Fatalf("printJSON: %v", err)
	}
	got := strings.TrimSpace(buf.String())
	want := `["NEWS-20240501-ABCD","TREND-20240501-0F0F"]`
	if got != want {
		t.Fatalf("unexpected projection.\nwant: %s\ngot:  %s", want, got)
	}

	buf.Reset()
	if err := printJSON(&buf, payload, "incidents.0.severity"); err != nil {
		t.Fatalf("printJSON: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "high" {
		t.Fatalf("string results should print unquoted, got %q", got)
	}

	if err := printJSON(&buf, payload, "nope.nothing"); err == nil {
		t.Fatal("expected an error for a path that matches nothing")
	}
}

func TestPrintIncidents(t *testing.T) {
	now := time.Now()
	var buf bytes.Buffer
	printIncidents(&buf, sampleIncidents(now), now)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("want header + 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "ID") {
		t.Errorf("missing header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "NEWS-20240501-ABCD") || !strings.Contains(lines[1], "3h") {
		t.Errorf("unexpected first row: %q", lines[1])
	}
	if !strings.Contains(lines[1], "...") {
		t.Errorf("long titles should be truncated: %q", lines[1])
	}
	if !strings.Contains(lines[2], "30m") || !strings.Contains(lines[2], "trend") {
		t.Errorf("unexpected second row: %q", lines[2])
	}
}

func TestAge(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Time{}, "-"},
		{now.Add(-5 * time.Minute), "5m"},
		{now.Add(-26 * time.Hour), "26h"},
		{now.Add(-72 * time.Hour), "3d"},
	}
	for _, tt := range tests {
		if got := age(now, tt.in); got != tt.want {
			t.Errorf("age(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadSourceConfigs_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.SetDefault("sources", defaultSourceSettings())

	configs, err := loadSourceConfigs()
	if err != nil {
		t.Fatalf("loadSourceConfigs: %v", err)
	}
	var ids []string
	for _, c := range configs {
		ids = append(ids, c.ID)
		if c.Enabled == nil || !*c.Enabled {
			t.Errorf("built-in source %s should be enabled", c.ID)
		}
	}
	if got := strings.Join(ids, ","); got != "observer,sknis,winnfm" {
		t.Fatalf("unexpected default sources: %s", got)
	}
}

func TestLockedArchive(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("db.lock_wait", "50ms")
	now := time.Now().UTC().Truncate(time.Second)
	path := filepath.Join(t.TempDir(), "nested", "archive.sqlite")

	archive, err := openArchive(path)
	if err != nil {
		t.Fatalf("openArchive: %v", err)
	}
	defer archive.Close()

	added, err := archive.UpsertIncidents(context.Background(), sampleIncidents(now))
	if err != nil {
		t.Fatalf("UpsertIncidents: %v", err)
	}
	if added != 1 {
		t.Fatalf("only scraped incidents are archived, added=%d", added)
	}

	added, err = archive.UpsertIncidents(context.Background(), sampleIncidents(now))
	if err != nil {
		t.Fatalf("second UpsertIncidents: %v", err)
	}
	if added != 0 {
		t.Fatalf("repeat sighting should not add rows, added=%d", added)
	}

	other := utils.NewArchiveLock(strings.TrimSuffix(archive.lock.Path(), ".lock"), 0)
	if err := other.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer other.Release()
	if _, err := archive.UpsertIncidents(context.Background(), sampleIncidents(now)); !errors.Is(err, utils.ErrArchiveBusy) {
		t.Fatalf("expected ErrArchiveBusy while another writer holds the archive, got %v", err)
	}
}

func TestPrintKinds(t *testing.T) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	printKinds(w)
	w.Flush()

	out := buf.String()
	for _, want := range []string{"html", "rss", "observer", "sknis", "winnfm"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing kind %q in:\n%s", want, out)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "html", "rss":
			if fields[1] != "generic" {
				t.Errorf("%s should be generic: %q", fields[0], line)
			}
		case "sknis":
			if fields[1] != "profile" || !strings.Contains(line, "https://www.sknis.gov.kn/") {
				t.Errorf("sknis should show its profile url: %q", line)
			}
		}
	}
}
