package incident

import (
	"errors"
	"testing"
	"time"
)

func valid() Incident {
	return Incident{
		ID:        "NEWS20240501-ABCD",
		Timestamp: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Category:  CategoryViolent,
		Severity:  SeverityCritical,
		Zone:      ZoneBasseterre,
		Tier:      TierScraped,
	}
}

func TestValidate(t *testing.T) {
	if err := valid().Validate(); err != nil {
		t.Fatalf("expected valid incident, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Incident)
	}{
		{"no id", func(i *Incident) { i.ID = "" }},
		{"no category", func(i *Incident) { i.Category = "" }},
		{"no severity", func(i *Incident) { i.Severity = "" }},
		{"no zone", func(i *Incident) { i.Zone = "" }},
		{"no tier", func(i *Incident) { i.Tier = "" }},
		{"zero timestamp", func(i *Incident) { i.Timestamp = time.Time{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inc := valid()
			tt.mutate(&inc)
			if err := inc.Validate(); !errors.Is(err, ErrIncomplete) {
				t.Fatalf("expected ErrIncomplete, got %v", err)
			}
		})
	}
}

func TestCountByTier(t *testing.T) {
	a, b, c := valid(), valid(), valid()
	c.Tier = TierTrend
	got := CountByTier([]Incident{a, b, c})
	if got[TierScraped] != 2 || got[TierTrend] != 1 || got[TierSimulated] != 0 {
		t.Fatalf("unexpected counts: %v", got)
	}
	if _, ok := got[TierSimulated]; !ok {
		t.Fatalf("expected every tier key to be present, got %v", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	src := []Incident{valid()}
	cp := Clone(src)
	cp[0].Title = "changed"
	if src[0].Title == "changed" {
		t.Fatalf("clone shares backing array with source")
	}
	if Clone(nil) != nil {
		t.Fatalf("expected nil clone of nil slice")
	}
}
