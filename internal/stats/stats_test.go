package stats

import (
	"testing"
	"time"

	"github.com/mtln/keydrill/internal/model"
)

func TestSpeed(t *testing.T) {
	// Two typed words in one minute is 2 WPM; drills pass correct
	// characters directly.
	if got := Speed(WordCount([]rune("Hello world")), time.Minute); got != 2 {
		t.Fatalf("typing speed = %f, want 2", got)
	}
	if got := Speed(300, time.Minute); got != 300 {
		t.Fatalf("drill speed = %f, want 300", got)
	}
	if got := Speed(10, 0); got != 0 {
		t.Fatalf("zero duration speed = %f, want 0", got)
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount([]rune(" one  two\nthree ")); got != 3 {
		t.Fatalf("WordCount = %d, want 3", got)
	}
	if got := WordCount(nil); got != 0 {
		t.Fatalf("WordCount(nil) = %d, want 0", got)
	}
}

func TestSpeedLabel(t *testing.T) {
	cases := map[model.Mode]string{
		model.ModeTyping:  "WPM",
		model.ModeLetter:  "Letters/min",
		model.ModeSpecial: "Specials/min",
		model.ModeNumber:  "Digits/min",
	}
	for mode, want := range cases {
		if got := SpeedLabel(mode); got != want {
			t.Errorf("SpeedLabel(%s) = %q, want %q", mode, got, want)
		}
	}
}

func TestFilterResults(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := []model.Result{
		{Timestamp: base, Speed: 10},
		{Timestamp: base.Add(time.Hour), Speed: 20, Training: true},
		{Timestamp: base.Add(2 * time.Hour), Speed: 30},
		{Timestamp: base.Add(3 * time.Hour), Speed: 40},
	}

	regular := FilterResults(rows, model.StatsConfig{Filter: model.FilterRegular})
	if len(regular) != 3 {
		t.Fatalf("regular filter kept %d rows, want 3", len(regular))
	}
	training := FilterResults(rows, model.StatsConfig{Filter: model.FilterTraining})
	if len(training) != 1 || training[0].Speed != 20 {
		t.Fatalf("training filter = %+v", training)
	}
	all := FilterResults(rows, model.StatsConfig{Filter: model.FilterAll})
	if len(all) != 4 {
		t.Fatalf("all filter kept %d rows, want 4", len(all))
	}

	since := base.Add(90 * time.Minute)
	bounded := FilterResults(rows, model.StatsConfig{Filter: model.FilterAll, Since: &since})
	if len(bounded) != 2 {
		t.Fatalf("since filter kept %d rows, want 2", len(bounded))
	}

	last := FilterResults(rows, model.StatsConfig{Filter: model.FilterAll, Last: 2})
	if len(last) != 2 || last[0].Speed != 30 {
		t.Fatalf("last filter = %+v", last)
	}
}

func TestMovingAverage(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	out := MovingAverage(values, 2)
	want := []float64{1, 1.5, 2.5, 3.5, 4.5}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("MovingAverage[%d] = %f, want %f", i, out[i], want[i])
		}
	}
	same := MovingAverage(values, 1)
	for i := range values {
		if same[i] != values[i] {
			t.Fatalf("window 1 should copy values")
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Fatalf("empty sparkline = %q", got)
	}
	flat := Sparkline([]float64{5, 5, 5})
	if len([]rune(flat)) != 3 {
		t.Fatalf("flat sparkline = %q", flat)
	}
	ramp := Sparkline([]float64{0, 10})
	if ramp[0] != sparkChars[0] || ramp[1] != sparkChars[len(sparkChars)-1] {
		t.Fatalf("ramp sparkline = %q", ramp)
	}
}

func TestHistogram(t *testing.T) {
	hist := Histogram([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 10}, 2)
	if len(hist) != 2 {
		t.Fatalf("got %d bins, want 2", len(hist))
	}
	if hist[0].Count+hist[1].Count != 10 {
		t.Fatalf("bin counts = %d + %d, want total 10", hist[0].Count, hist[1].Count)
	}
	if hist[0].Low != 0 || hist[1].High != 10 {
		t.Fatalf("bin bounds = %+v", hist)
	}

	flat := Histogram([]float64{3, 3, 3}, 4)
	if len(flat) != 1 || flat[0].Count != 3 {
		t.Fatalf("flat histogram = %+v", flat)
	}
}

func TestDailyAveragesFillsGaps(t *testing.T) {
	day := func(d int, speed float64) model.Result {
		return model.Result{
			Timestamp:   time.Date(2024, 5, d, 10, 0, 0, 0, time.UTC),
			Speed:       speed,
			ErrorPct:    2,
			DurationSec: 60,
		}
	}
	points := DailyAverages([]model.Result{
		day(1, 10),
		day(1, 20),
		day(4, 40),
	})
	if len(points) != 4 {
		t.Fatalf("got %d points, want 4 (two gap days)", len(points))
	}
	if points[0].Avg != 15 || points[0].Count != 2 {
		t.Fatalf("day 1 = %+v", points[0])
	}
	if points[0].AvgError != 2 || points[0].Minutes != 2 {
		t.Fatalf("day 1 aggregates = %+v", points[0])
	}
	if points[1].Count != 0 || points[2].Count != 0 {
		t.Fatalf("gap days should be zero: %+v %+v", points[1], points[2])
	}
	if points[3].Avg != 40 {
		t.Fatalf("day 4 = %+v", points[3])
	}
}

func TestWeakestChars(t *testing.T) {
	aggs := []model.CharAggregate{
		{Char: "a", Correct: 9, Incorrect: 1},
		{Char: " ", Correct: 1, Incorrect: 3},
		{Char: "c", Correct: 5, Incorrect: 5},
	}
	weak := WeakestChars(aggs, 2)
	if len(weak) != 2 {
		t.Fatalf("expected 2 chars, got %d", len(weak))
	}
	if weak[0] != "<space>" || weak[1] != "c" {
		t.Fatalf("unexpected order: %v", weak)
	}
	if WeakestChars(nil, 2) != nil {
		t.Fatalf("expected nil for empty aggregates")
	}
}

func TestTopCharsByFrequency(t *testing.T) {
	aggs := []model.CharAggregate{
		{Char: "b", Correct: 3, Incorrect: 1},
		{Char: "a", Correct: 2, Incorrect: 2},
		{Char: "c", Correct: 1, Incorrect: 0},
	}
	top := TopCharsByFrequency(aggs, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 chars, got %d", len(top))
	}
	if top[0] != "a" || top[1] != "b" {
		t.Fatalf("unexpected order: %v", top)
	}
}
