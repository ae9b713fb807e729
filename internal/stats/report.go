// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"

	"github.com/mtln/keydrill/internal/model"
	"github.com/mtln/keydrill/internal/results"
	"github.com/mtln/keydrill/internal/store"
)

// Report contains precomputed data for stats rendering. Results come
// from the CSV files; the per-character aggregates come from SQLite.
type Report struct {
	Results        []model.Result
	Sessions       []model.SessionAggregate
	CharAggsAll    []model.CharAggregate
	CharAggsWindow []model.CharAggregate
}

// BuildReport loads and filters the data for stats rendering. A nil
// database store skips the per-character aggregates.
func BuildReport(ctx context.Context, rs *results.Store, db *store.Store, cfg model.StatsConfig) (Report, error) {
	rows, err := rs.Load(cfg.Mode, cfg.Variant)
	if err != nil {
		return Report{}, err
	}
	report := Report{Results: FilterResults(rows, cfg)}

	if db == nil {
		return report, nil
	}

	sessions, err := db.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	report.Sessions = sessions

	report.CharAggsAll, err = db.ListCharAggregatesForSessions(ctx, sessionIDs(sessions))
	if err != nil {
		return Report{}, err
	}
	window := cfg.CurveWindow
	if window <= 0 {
		window = len(sessions)
	}
	report.CharAggsWindow, err = db.GetWeakChars(ctx, window, cfg)
	if err != nil {
		return Report{}, err
	}
	return report, nil
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}
