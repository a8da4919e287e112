// Package storage archives scraped incidents in SQLite so they outlive the
// in-memory cache.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/securo-skn/crimefeed/pkg/incident"
)

// ErrInvalidIncident is returned for incidents that lack an archive identity.
var ErrInvalidIncident = errors.New("invalid incident")

const timeLayout = time.RFC3339

type DB struct {
	sql *sql.DB
	now func() time.Time
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS incidents (
  id             INTEGER PRIMARY KEY,
  incident_id    TEXT NOT NULL,
  source_name    TEXT NOT NULL,
  title          TEXT NOT NULL,
  description    TEXT,
  source_url     TEXT,
  category       TEXT NOT NULL,
  category_label TEXT,
  severity       TEXT NOT NULL,
  priority       INTEGER NOT NULL,
  status         TEXT NOT NULL,
  zone           TEXT NOT NULL,
  zone_label     TEXT,
  officer        TEXT,
  is_official    INTEGER NOT NULL CHECK (is_official IN (0,1)),
  published_at   TEXT NOT NULL,
  first_seen_at  TEXT NOT NULL,
  last_seen_at   TEXT NOT NULL,
  seen_count     INTEGER NOT NULL DEFAULT 1,
  UNIQUE(incident_id, source_name)
);
CREATE INDEX IF NOT EXISTS idx_incidents_published ON incidents(published_at);
CREATE INDEX IF NOT EXISTS idx_incidents_source ON incidents(source_name);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db, now: time.Now}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// UpsertIncidents archives scraped incidents. Trend and simulated records are
// ignored. Known incidents get their last-seen time and counter bumped. It
// returns how many incidents were new to the archive.
func (d *DB) UpsertIncidents(ctx context.Context, incidents []incident.Incident) (added int, err error) {
	var batch []incident.Incident
	for _, inc := range incidents {
		if inc.Tier != incident.TierScraped {
			continue
		}
		if inc.ID == "" || inc.SourceName == "" || inc.Timestamp.IsZero() {
			return 0, fmt.Errorf("%w: id=%q source=%q", ErrInvalidIncident, inc.ID, inc.SourceName)
		}
		batch = append(batch, inc)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	now := d.now().UTC().Format(timeLayout)

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, inc := range batch {
		var res sql.Result
		res, err = tx.ExecContext(ctx, `UPDATE incidents SET description = ?, source_url = ?, status = ?, last_seen_at = ?, seen_count = seen_count + 1 WHERE incident_id = ? AND source_name = ?`,
			nullIfEmpty(inc.Description), nullIfEmpty(inc.SourceURL), string(inc.Status), now, inc.ID, inc.SourceName)
		if err != nil {
			return 0, err
		}
		var n int64
		if n, err = res.RowsAffected(); err != nil {
			return 0, err
		}
		if n > 0 {
			continue
		}

		_, err = tx.ExecContext(ctx, `INSERT INTO incidents(incident_id, source_name, title, description, source_url, category, category_label, severity, priority, status, zone, zone_label, officer, is_official, published_at, first_seen_at, last_seen_at) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			inc.ID, inc.SourceName, inc.Title, nullIfEmpty(inc.Description), nullIfEmpty(inc.SourceURL),
			string(inc.Category), nullIfEmpty(inc.CategoryLabel), string(inc.Severity), inc.Priority, string(inc.Status),
			string(inc.Zone), nullIfEmpty(inc.ZoneLabel), nullIfEmpty(inc.Officer), boolToInt(inc.IsOfficial),
			inc.Timestamp.UTC().Format(timeLayout), now, now)
		if err != nil {
			return 0, err
		}
		added++
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// ListIncidents returns archived incidents, most recently published first.
func (d *DB) ListIncidents(ctx context.Context, opts ListOptions) ([]Record, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	for col, val := range map[string]string{
		"source_name": opts.Source,
		"category":    opts.Category,
		"severity":    opts.Severity,
		"zone":        opts.Zone,
	} {
		if val != "" && val != "all" {
			where += " AND " + col + " = ?"
			args = append(args, val)
		}
	}
	if !opts.Since.IsZero() {
		where += " AND published_at >= ?"
		args = append(args, opts.Since.UTC().Format(timeLayout))
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	q := "SELECT incident_id, source_name, title, description, source_url, category, category_label, severity, priority, status, zone, zone_label, officer, is_official, published_at, first_seen_at, last_seen_at, seen_count FROM incidents " + where + " ORDER BY published_at DESC, id DESC LIMIT ?"
	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var (
			r                                    Record
			desc, link, catLabel, zoneLabel, off sql.NullString
			cat, sev, status, zone               string
			official                             int
			published, first, last               string
		)
		if err := rows.Scan(&r.Incident.ID, &r.Incident.SourceName, &r.Incident.Title, &desc, &link, &cat, &catLabel, &sev, &r.Incident.Priority, &status, &zone, &zoneLabel, &off, &official, &published, &first, &last, &r.SeenCount); err != nil {
			return nil, err
		}
		r.Incident.Description = desc.String
		r.Incident.SourceURL = link.String
		r.Incident.Category = incident.Category(cat)
		r.Incident.CategoryLabel = catLabel.String
		r.Incident.Severity = incident.Severity(sev)
		r.Incident.Status = incident.Status(status)
		r.Incident.Zone = incident.Zone(zone)
		r.Incident.ZoneLabel = zoneLabel.String
		r.Incident.Officer = off.String
		r.Incident.IsOfficial = official == 1
		r.Incident.Tier = incident.TierScraped
		r.Incident.Timestamp = parseTime(published)
		r.FirstSeen = parseTime(first)
		r.LastSeen = parseTime(last)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetStats returns per-source archive counts.
func (d *DB) GetStats(ctx context.Context) ([]SourceStats, error) {
	query := `
		SELECT
			source_name,
			COUNT(*),
			SUM(is_official),
			MAX(last_seen_at)
		FROM
			incidents
		GROUP BY
			source_name
		ORDER BY
			source_name;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []SourceStats
	for rows.Next() {
		var (
			s      SourceStats
			latest string
		)
		if err := rows.Scan(&s.Source, &s.Incidents, &s.Official, &latest); err != nil {
			return nil, err
		}
		s.LatestSeen = parseTime(latest)
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// parseTime reads stored timestamps, tolerating SQLite's CURRENT_TIMESTAMP format.
func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
