package sources

import (
	"context"
	"time"

	"github.com/securo-skn/crimefeed/pkg/whttp"
)

// ProbeResult reports whether a source page was reachable.
type ProbeResult struct {
	ID         string
	StatusCode int
	Title      string
	Latency    time.Duration
	Err        error
}

// Probe fetches the source page once and reads its <title> as evidence that
// the expected site answered.
func Probe(ctx context.Context, client *whttp.Client, d Descriptor) ProbeResult {
	res := ProbeResult{ID: d.ID}
	start := time.Now()
	resp, err := client.Get(ctx, d.URL)
	res.Latency = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	res.StatusCode = resp.StatusCode
	res.Title = resp.Title()
	return res
}
