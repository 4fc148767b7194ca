package db

import (
	"context"
	"fmt"
	"time"

	"github.com/banshee-data/depth.report/internal/depthstats"
)

// StatsSample is one stored depth band evaluation.
type StatsSample struct {
	At      time.Time
	Stats   depthstats.Stats
	InRange bool
}

// RecordStats stores a runner result taken at at.
func (db *DB) RecordStats(ctx context.Context, sessionID string, at time.Time, res depthstats.Result) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO depth_stats (session_id, sample_unix, count, mean, std_pop, std_sample, in_range)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, sessionID, unixSeconds(at), res.Stats.Count, res.Stats.Mean, res.Stats.StdPop, res.Stats.StdSample, res.InRange)
	if err != nil {
		return fmt.Errorf("failed to record depth stats: %w", err)
	}
	return nil
}

// StatsSamples returns a session's stored evaluations in time order.
func (db *DB) StatsSamples(ctx context.Context, sessionID string) ([]StatsSample, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT sample_unix, count, mean, std_pop, std_sample, in_range
		FROM depth_stats WHERE session_id = ?
		ORDER BY sample_unix, stats_id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query depth stats: %w", err)
	}
	defer rows.Close()

	var out []StatsSample
	for rows.Next() {
		var (
			s  StatsSample
			at float64
		)
		if err := rows.Scan(&at, &s.Stats.Count, &s.Stats.Mean, &s.Stats.StdPop, &s.Stats.StdSample, &s.InRange); err != nil {
			return nil, fmt.Errorf("failed to scan depth stats: %w", err)
		}
		s.At = fromUnixSeconds(at)
		out = append(out, s)
	}
	return out, rows.Err()
}
