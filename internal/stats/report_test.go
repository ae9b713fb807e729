package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mtln/keydrill/internal/model"
	"github.com/mtln/keydrill/internal/results"
	"github.com/mtln/keydrill/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	rs := results.NewStore(dir)
	db, err := store.Open(filepath.Join(dir, "keydrill.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	ctx := context.Background()
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local)
	var ids []int64
	for i := 0; i < 3; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		err := rs.Append(model.ModeLetter, model.VariantStandard, model.Result{
			Timestamp:   ts,
			Speed:       float64(100 + i*10),
			ErrorPct:    2,
			DurationSec: 60,
		})
		if err != nil {
			t.Fatalf("append result: %v", err)
		}

		end := ts.Add(time.Minute)
		id, err := db.InsertSession(ctx, model.SessionStats{
			Mode:       model.ModeLetter,
			Variant:    model.VariantStandard,
			StartedAt:  ts,
			EndedAt:    end,
			Correct:    100,
			Incorrect:  2,
			DurationMs: 60000,
		}, []model.CharStats{
			{Char: "a", Correct: 50, Incorrect: 1},
			{Char: "b", Correct: 50, Incorrect: 1},
		})
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}

	cfg := model.StatsConfig{
		Mode:        model.ModeLetter,
		Variant:     model.VariantStandard,
		Filter:      model.FilterRegular,
		Last:        2,
		CurveWindow: 2,
	}
	report, err := BuildReport(ctx, rs, db, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.Results))
	}
	if report.Results[0].Speed != 110 || report.Results[1].Speed != 120 {
		t.Fatalf("unexpected results: %+v", report.Results)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].SessionID != ids[1] || report.Sessions[1].SessionID != ids[2] {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if len(report.CharAggsAll) == 0 || len(report.CharAggsWindow) == 0 {
		t.Fatalf("expected char aggregates")
	}
}

func TestBuildReportWithoutDatabase(t *testing.T) {
	rs := results.NewStore(t.TempDir())
	report, err := BuildReport(context.Background(), rs, nil, model.StatsConfig{
		Mode:    model.ModeTyping,
		Variant: model.VariantStandard,
	})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Results) != 0 || report.Sessions != nil {
		t.Fatalf("expected empty report, got %+v", report)
	}
}
