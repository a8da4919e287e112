package utils

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("expected untouched string, got %q", got)
	}
	if got := Truncate("abcdef", 3); got != "abc..." {
		t.Fatalf("expected 'abc...', got %q", got)
	}
	if got := Truncate("ñandú ñandú", 5); got != "ñandú..." {
		t.Fatalf("expected rune-safe cut, got %q", got)
	}
}

func TestCollapseSpace(t *testing.T) {
	if got := CollapseSpace("  a \n\t b  c "); got != "a b c" {
		t.Fatalf("expected 'a b c', got %q", got)
	}
}

func TestRandBetweenStaysInRange(t *testing.T) {
	r := NewRand(42)
	for i := 0; i < 500; i++ {
		v := r.Between(1, 72)
		if v < 1 || v > 72 {
			t.Fatalf("value %d out of [1,72]", v)
		}
	}
	if v := r.Between(5, 5); v != 5 {
		t.Fatalf("expected degenerate range to return 5, got %d", v)
	}
}

func TestRandSeedIsReproducible(t *testing.T) {
	a, b := NewRand(7), NewRand(7)
	for i := 0; i < 20; i++ {
		if a.Between(0, 1000) != b.Between(0, 1000) {
			t.Fatalf("same seed produced different sequences at step %d", i)
		}
	}
}

func TestHoursAgo(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	got := NewRand(1).HoursAgo(now, 1, 12)
	diff := now.Sub(got)
	if diff < time.Hour || diff > 12*time.Hour {
		t.Fatalf("expected 1-12h offset, got %s", diff)
	}
}
