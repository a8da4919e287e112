package utils

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is a mutex-guarded random source shared by concurrently running
// source adapters. Seed it for reproducible fallback timestamps and ids.
type Rand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewRand(seed int64) *Rand {
	return &Rand{r: rand.New(rand.NewSource(seed))}
}

// NewTimeRand seeds from the wall clock.
func NewTimeRand() *Rand {
	return NewRand(time.Now().UnixNano())
}

// Between returns a random int in [lo, hi].
func (r *Rand) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo + r.r.Intn(hi-lo+1)
}

// HoursAgo returns now minus a random whole number of hours in [lo, hi].
func (r *Rand) HoursAgo(now time.Time, lo, hi int) time.Time {
	return now.Add(-time.Duration(r.Between(lo, hi)) * time.Hour)
}
