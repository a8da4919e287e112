package classify

import (
	"regexp"
	"testing"
	"time"

	"github.com/securo-skn/crimefeed/pkg/incident"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category incident.Category
		severity incident.Severity
		label    string
	}{
		{"homicide", "Man killed in shooting near Basseterre", incident.CategoryViolent, incident.SeverityCritical, "Homicide/Violent Crime"},
		{"robbery", "Armed robbery at gas station", incident.CategoryViolent, incident.SeverityHigh, "Violent Crime"},
		{"break-in", "Police investigate break-in at Frigate Bay residence", incident.CategoryProperty, incident.SeverityMedium, "Property Crime"},
		{"drugs", "Police conduct drug seizure operation in Sandy Point", incident.CategoryDrug, incident.SeverityHigh, "Drug Offense"},
		{"fraud", "Bank warns of phone scam", incident.CategoryFraud, incident.SeverityMedium, "Financial Crime"},
		{"traffic", "Traffic accident reported on Island Main Road", incident.CategoryTraffic, incident.SeverityLow, "Traffic Incident"},
		{"default", "Community meeting held", incident.CategoryOther, incident.SeverityMedium, "General Incident"},
		{"first rule wins", "Stolen car linked to homicide", incident.CategoryViolent, incident.SeverityCritical, "Homicide/Violent Crime"},
		{"case insensitive", "BURGLARY REPORTED", incident.CategoryProperty, incident.SeverityMedium, "Property Crime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			if got.Category != tt.category || got.Severity != tt.severity || got.Label != tt.label {
				t.Fatalf("expected %s/%s %q, got %s/%s %q", tt.category, tt.severity, tt.label, got.Category, got.Severity, got.Label)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	text := "Police seek suspect after assault in Charlestown"
	first := Classify(text)
	for i := 0; i < 10; i++ {
		if got := Classify(text); got != first {
			t.Fatalf("expected stable result %v, got %v", first, got)
		}
	}
}

func TestExtractZone(t *testing.T) {
	tests := []struct {
		text  string
		zone  incident.Zone
		label string
	}{
		{"Man killed in shooting near Basseterre", incident.ZoneBasseterre, "Basseterre Central District"},
		{"Police investigate break-in at Frigate Bay residence", incident.ZoneFrigateBay, "Frigate Bay Tourism Zone"},
		{"Seizure in Newton Ground", incident.ZoneSandyPoint, "Sandy Point Township"},
		{"Arrest made on Nevis", incident.ZoneCharlestown, "Charlestown (Nevis)"},
		{"Incident on the highway", incident.ZoneBasseterre, "St. Kitts and Nevis"},
		{"Brawl at casino near Independence Square", incident.ZoneBasseterre, "Basseterre Central District"},
	}

	for _, tt := range tests {
		zone, label := ExtractZone(tt.text)
		if zone != tt.zone || label != tt.label {
			t.Errorf("%q: expected %s %q, got %s %q", tt.text, tt.zone, tt.label, zone, label)
		}
	}
}

func TestZoneLabel(t *testing.T) {
	if l, ok := ZoneLabel(incident.ZoneFrigateBay); !ok || l != "Frigate Bay Tourism Zone" {
		t.Fatalf("expected Frigate Bay label, got %q %v", l, ok)
	}
	if _, ok := ZoneLabel("atlantis"); ok {
		t.Fatal("unknown zone should have no label")
	}
}

func TestSeverityToPriority(t *testing.T) {
	cases := map[incident.Severity]int{
		incident.SeverityCritical: 5,
		incident.SeverityHigh:     4,
		incident.SeverityMedium:   3,
		incident.SeverityLow:      2,
		"unknown":                 3,
	}
	for sev, want := range cases {
		if got := SeverityToPriority(sev); got != want {
			t.Errorf("severity %q: expected %d, got %d", sev, want, got)
		}
	}
}

func TestGates(t *testing.T) {
	if !IsCrimeRelated("Man ARRESTED after chase") {
		t.Fatalf("expected arrest to be crime related")
	}
	if IsCrimeRelated("Cricket team wins regional final") {
		t.Fatalf("expected sports story to be rejected")
	}
	if !IsOfficialRelated("RSCNPF announces new commissioner") {
		t.Fatalf("expected RSCNPF notice to pass the official gate")
	}
	if IsOfficialRelated("Ministry opens new school") {
		t.Fatalf("expected education notice to fail the official gate")
	}
	if !GateOfficial.Allows("Public safety advisory") || GateCrime.Allows("Public safety advisory") {
		t.Fatalf("expected gates to apply their own keyword lists")
	}
}

func TestParseGate(t *testing.T) {
	if g, err := ParseGate(""); err != nil || g != GateCrime {
		t.Fatalf("expected empty gate to default to crime, got %q %v", g, err)
	}
	if g, err := ParseGate("official"); err != nil || g != GateOfficial {
		t.Fatalf("expected official gate, got %q %v", g, err)
	}
	if _, err := ParseGate("sports"); err == nil {
		t.Fatalf("expected error for unknown gate")
	}
}

func TestStatusFor(t *testing.T) {
	if StatusFor("Police seeking witnesses") != incident.StatusActive {
		t.Fatalf("expected Active for progress marker")
	}
	if StatusFor("Man charged with theft") != incident.StatusReported {
		t.Fatalf("expected Reported without progress marker")
	}
}

var idPattern = regexp.MustCompile(`^NEWS-20240501-[0-9A-F]{4}$`)

func TestIncidentID(t *testing.T) {
	date := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	id := IncidentID(incident.PrefixScraped, "Man killed in shooting near Basseterre", date)
	if !idPattern.MatchString(id) {
		t.Fatalf("unexpected id format %q", id)
	}
	if again := IncidentID(incident.PrefixScraped, "Man killed in shooting near Basseterre", date); again != id {
		t.Fatalf("expected deterministic id, got %q and %q", id, again)
	}
	if trend := IncidentID(incident.PrefixTrend, "x", date); trend[:6] != "TREND-" {
		t.Fatalf("expected TREND prefix, got %q", trend)
	}
}
