package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"

	"github.com/securo-skn/crimefeed/internal/utils"
	"github.com/securo-skn/crimefeed/pkg/aggregator"
	"github.com/securo-skn/crimefeed/pkg/feed"
	"github.com/securo-skn/crimefeed/pkg/incident"
	"github.com/securo-skn/crimefeed/pkg/metrics"
	"github.com/securo-skn/crimefeed/pkg/sources"
	_ "github.com/securo-skn/crimefeed/pkg/sources/builtin"
	"github.com/securo-skn/crimefeed/pkg/storage"
	"github.com/securo-skn/crimefeed/pkg/whttp"
)

// app holds everything a command needs to run aggregation cycles.
type app struct {
	client     *whttp.Client
	aggregator *aggregator.Aggregator
	feed       *feed.Service
	registry   *prometheus.Registry
	archive    *lockedArchive
}

// Close releases the archive, if one was opened.
func (r *app) Close() error {
	if r.archive == nil {
		return nil
	}
	return r.archive.Close()
}

// loadSourceConfigs reads the "sources" config list.
func loadSourceConfigs() ([]sources.Config, error) {
	var configs []sources.Config
	if err := viper.UnmarshalKey("sources", &configs); err != nil {
		return nil, fmt.Errorf("invalid sources config: %w", err)
	}
	return configs, nil
}

func newHTTPClient() (*whttp.Client, error) {
	return whttp.New(whttp.Options{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: viper.GetString("http.user_agent"),
		Retries:   viper.GetInt("http.retries"),
		Proxy:     viper.GetString("http.proxy"),
	})
}

// newApp wires the HTTP client, adapters, metrics and the optional
// archive. dbPath may be empty to run without an archive.
func newApp(dbPath string) (*app, error) {
	client, err := newHTTPClient()
	if err != nil {
		return nil, err
	}

	configs, err := loadSourceConfigs()
	if err != nil {
		return nil, err
	}

	rng := utils.NewTimeRand()
	adapters, err := sources.Build(configs, sources.Deps{Client: client, Rand: rng})
	if err != nil {
		// Broken entries are skipped; the rest still run.
		utils.Log.Warnf("Some sources could not be configured: %v", err)
	}
	if len(adapters) == 0 {
		utils.Log.Warn("No usable sources configured, the feed will serve fallback data only")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	rt := &app{client: client, registry: reg}

	cfg := aggregator.Config{
		Adapters:    adapters,
		Concurrency: viper.GetInt("aggregator.concurrency"),
		Timeout:     viper.GetDuration("aggregator.source_timeout"),
		Rand:        rng,
		Log:         utils.Log,
		Metrics:     m,
	}

	if dbPath != "" {
		archive, err := openArchive(dbPath)
		if err != nil {
			return nil, err
		}
		rt.archive = archive
		cfg.Archive = archive
	}

	rt.aggregator = aggregator.New(cfg)
	rt.feed = feed.NewService(feed.Config{
		Backend: rt.aggregator,
		Rand:    rng,
		Log:     utils.Log,
	})
	return rt, nil
}

// lockedArchive serializes archive writes across crimefeed processes with
// a lock file next to the database.
type lockedArchive struct {
	*storage.DB
	lock *utils.ArchiveLock
}

func openArchive(dbPath string) (*lockedArchive, error) {
	absPath, err := utils.ArchivePath(dbPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, err
	}
	lock := utils.NewArchiveLock(absPath, viper.GetDuration("db.lock_wait"))
	db, err := storage.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", absPath, err)
	}
	return &lockedArchive{DB: db, lock: lock}, nil
}

func (a *lockedArchive) UpsertIncidents(ctx context.Context, incidents []incident.Incident) (int, error) {
	if err := a.lock.Acquire(ctx); err != nil {
		return 0, err
	}
	defer a.lock.Release()
	return a.DB.UpsertIncidents(ctx, incidents)
}
