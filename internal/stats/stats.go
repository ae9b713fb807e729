// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mtln/keydrill/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SpeedLabel names the rate metric of a mode.
func SpeedLabel(mode model.Mode) string {
	switch mode {
	case model.ModeLetter:
		return "Letters/min"
	case model.ModeSpecial:
		return "Specials/min"
	case model.ModeNumber:
		return "Digits/min"
	default:
		return "WPM"
	}
}

// Speed computes the rate metric for a run as units per minute. Free
// typing passes the typed word count, the drill modes pass correct
// characters.
func Speed(count int, duration time.Duration) float64 {
	minutes := duration.Minutes()
	if minutes <= 0 {
		return 0
	}
	return float64(count) / minutes
}

// WordCount counts the whitespace-separated words in the typed runes.
func WordCount(typed []rune) int {
	return len(strings.Fields(string(typed)))
}

// Accuracy computes the share of correct keystrokes.
func Accuracy(correct, incorrect int) float64 {
	den := float64(correct + incorrect)
	if den <= 0 {
		return 0
	}
	return float64(correct) / den
}

// FilterResults applies the run filter, since bound, and last-N limit.
func FilterResults(results []model.Result, cfg model.StatsConfig) []model.Result {
	out := make([]model.Result, 0, len(results))
	for _, r := range results {
		switch cfg.Filter {
		case model.FilterTraining:
			if !r.Training {
				continue
			}
		case model.FilterAll:
		default:
			if r.Training {
				continue
			}
		}
		if cfg.Since != nil && r.Timestamp.Before(*cfg.Since) {
			continue
		}
		out = append(out, r)
	}
	if cfg.Last > 0 && len(out) > cfg.Last {
		out = out[len(out)-cfg.Last:]
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// HistogramBin is one bucket of a value histogram.
type HistogramBin struct {
	Low   float64
	High  float64
	Count int
}

// Histogram buckets values into equal-width bins between the observed
// minimum and maximum.
func Histogram(values []float64, bins int) []HistogramBin {
	if len(values) == 0 || bins <= 0 {
		return nil
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return []HistogramBin{{Low: minVal, High: maxVal, Count: len(values)}}
	}
	width := (maxVal - minVal) / float64(bins)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i].Low = minVal + float64(i)*width
		out[i].High = out[i].Low + width
	}
	for _, v := range values {
		idx := int((v - minVal) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

// DailyPoint aggregates the runs of one calendar day.
type DailyPoint struct {
	Day      time.Time
	Avg      float64
	AvgError float64
	Minutes  float64
	Count    int
}

// DailyAverages aggregates results per calendar day: mean speed, mean
// error percentage, and practice minutes. Days without runs between
// the first and last recorded day appear with zero values so gaps stay
// visible in the plot.
func DailyAverages(results []model.Result) []DailyPoint {
	if len(results) == 0 {
		return nil
	}
	sums := map[time.Time]*DailyPoint{}
	var first, last time.Time
	for _, r := range results {
		day := truncateDay(r.Timestamp)
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if last.IsZero() || day.After(last) {
			last = day
		}
		p, ok := sums[day]
		if !ok {
			p = &DailyPoint{Day: day}
			sums[day] = p
		}
		p.Avg += r.Speed
		p.AvgError += r.ErrorPct + r.EndErrorPct
		p.Minutes += r.DurationSec / 60
		p.Count++
	}

	var out []DailyPoint
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if p, ok := sums[day]; ok {
			n := float64(p.Count)
			out = append(out, DailyPoint{
				Day:      day,
				Avg:      p.Avg / n,
				AvgError: p.AvgError / n,
				Minutes:  p.Minutes,
				Count:    p.Count,
			})
		} else {
			out = append(out, DailyPoint{Day: day})
		}
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeakestChars returns the lowest-accuracy characters from aggregates,
// as display labels. Untyped characters count as fully accurate.
func WeakestChars(aggs []model.CharAggregate, top int) []string {
	if top <= 0 || len(aggs) == 0 {
		return nil
	}
	candidates := make([]model.CharAggregate, len(aggs))
	copy(candidates, aggs)
	sort.Slice(candidates, func(i, j int) bool {
		ai := charAccuracy(candidates[i])
		aj := charAccuracy(candidates[j])
		if ai == aj {
			return candidates[i].Char < candidates[j].Char
		}
		return ai < aj
	})
	if top > len(candidates) {
		top = len(candidates)
	}
	out := make([]string, 0, top)
	for i := 0; i < top; i++ {
		label := candidates[i].Char
		if label == " " {
			label = "<space>"
		}
		out = append(out, label)
	}
	return out
}

func charAccuracy(agg model.CharAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}

// TopCharsByFrequency returns the top N characters by total frequency.
func TopCharsByFrequency(aggs []model.CharAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	type item struct {
		ch    string
		total int
	}
	items := make([]item, 0, len(aggs))
	for _, agg := range aggs {
		items = append(items, item{
			ch:    agg.Char,
			total: agg.Correct + agg.Incorrect,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].total == items[j].total {
			return items[i].ch < items[j].ch
		}
		return items[i].total > items[j].total
	})
	if n > len(items) {
		n = len(items)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, items[i].ch)
	}
	return out
}
