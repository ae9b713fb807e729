// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mtln/keydrill/internal/model"
)

const histogramBarWidth = 40

// RenderSummary prints an aggregate summary for the loaded results.
func RenderSummary(w io.Writer, mode model.Mode, variant model.Variant, results []model.Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}

	label := SpeedLabel(mode)
	var totalSpeed, bestSpeed, totalErr, totalEndErr, totalDuration float64
	completedCount := 0
	for _, r := range results {
		totalSpeed += r.Speed
		if r.Speed > bestSpeed {
			bestSpeed = r.Speed
		}
		totalErr += r.ErrorPct
		totalEndErr += r.EndErrorPct
		totalDuration += r.DurationSec
		if r.Completed {
			completedCount++
		}
	}
	count := float64(len(results))

	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Runs: %d\n", len(results)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg %s: %.2f\n", label, totalSpeed/count); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best %s: %.2f\n", label, bestSpeed); err != nil {
		return err
	}
	switch variant {
	case model.VariantSudden:
		if _, err := fmt.Fprintf(w, "Completed: %d/%d\n", completedCount, len(results)); err != nil {
			return err
		}
	case model.VariantBlind:
		if _, err := fmt.Fprintf(w, "Completed: %d/%d\n", completedCount, len(results)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Avg End Errors: %.2f%%\n", totalEndErr/count); err != nil {
			return err
		}
	default:
		if _, err := fmt.Fprintf(w, "Avg Errors: %.2f%%\n", totalErr/count); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Total Practice: %.1f min\n", totalDuration/60); err != nil {
		return err
	}

	speeds := speedSeries(results)
	if _, err := fmt.Fprintf(w, "Trend: %s\n", Sparkline(speeds)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderSpeedCurve plots speed and error development over runs.
func RenderSpeedCurve(w io.Writer, mode model.Mode, variant model.Variant, results []model.Result, window, totalWidth, height int, useColor bool) error {
	if len(results) == 0 {
		return nil
	}
	speeds := MovingAverage(speedSeries(results), window)
	series := []Series{{Name: SpeedLabel(mode), Values: speeds}}

	switch variant {
	case model.VariantSudden:
		counts := make([]float64, len(results))
		for i, r := range results {
			counts[i] = float64(r.Correct)
		}
		series = append(series, Series{Name: "Correct", Values: MovingAverage(counts, window)})
	case model.VariantBlind:
		errs := make([]float64, len(results))
		for i, r := range results {
			errs[i] = r.EndErrorPct
		}
		series = append(series, Series{Name: "End Errors", Values: MovingAverage(errs, window)})
	default:
		errs := make([]float64, len(results))
		for i, r := range results {
			errs[i] = r.ErrorPct
		}
		series = append(series, Series{Name: "Errors", Values: MovingAverage(errs, window)})
	}

	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Progress", series, width, height, useColor)
}

// RenderHistogram prints a speed distribution as horizontal bars.
func RenderHistogram(w io.Writer, mode model.Mode, results []model.Result, bins int) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	hist := Histogram(speedSeries(results), bins)
	maxCount := 0
	for _, b := range hist {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	if _, err := fmt.Fprintf(w, "%s Distribution\n", SpeedLabel(mode)); err != nil {
		return err
	}
	rows := make([][]string, 0, len(hist))
	for _, b := range hist {
		barLen := b.Count * histogramBarWidth / maxCount
		rows = append(rows, []string{
			fmt.Sprintf("%.1f-%.1f", b.Low, b.High),
			fmt.Sprintf("%d", b.Count),
			strings.Repeat("#", barLen),
		})
	}
	for _, line := range formatTable([]string{"Range", "Runs", ""}, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderDaily plots the average speed per calendar day.
func RenderDaily(w io.Writer, mode model.Mode, results []model.Result, totalWidth, height int, useColor bool) error {
	points := DailyAverages(results)
	if len(points) == 0 {
		return nil
	}
	values := make([]float64, len(points))
	errValues := make([]float64, len(points))
	totalMinutes := 0.0
	hasErrors := false
	for i, p := range points {
		values[i] = p.Avg
		errValues[i] = p.AvgError
		totalMinutes += p.Minutes
		if p.AvgError > 0 {
			hasErrors = true
		}
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	title := fmt.Sprintf("Daily Avg (%s to %s, %.1f min total)",
		points[0].Day.Format("2006-01-02"),
		points[len(points)-1].Day.Format("2006-01-02"),
		totalMinutes)
	series := []Series{{Name: SpeedLabel(mode), Values: values}}
	if hasErrors {
		series = append(series, Series{Name: "Errors", Values: errValues})
	}
	return PlotSeriesWithColor(w, title, series, width, height, useColor)
}

// RenderCharTable prints per-character aggregates sorted by lowest
// accuracy.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
	type row struct {
		char      string
		acc       float64
		latency   float64
		correct   int
		incorrect int
	}
	rows := make([]row, 0, len(aggs))
	for _, agg := range aggs {
		charLabel := agg.Char
		if charLabel == " " {
			charLabel = "<space>"
		}
		acc := Accuracy(agg.Correct, agg.Incorrect)
		lat := 0.0
		if agg.LatencyCount > 0 {
			lat = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
		}
		rows = append(rows, row{
			char:      charLabel,
			acc:       acc,
			latency:   lat,
			correct:   agg.Correct,
			incorrect: agg.Incorrect,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].acc == rows[j].acc {
			return rows[i].char < rows[j].char
		}
		return rows[i].acc < rows[j].acc
	})

	if _, err := fmt.Fprintln(w, "Per-Character"); err != nil {
		return err
	}
	headers := []string{"Char", "Accuracy", "Avg Latency (ms)", "Correct", "Incorrect"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.char,
			fmt.Sprintf("%.2f%%", r.acc*100),
			fmt.Sprintf("%.1f", r.latency),
			fmt.Sprintf("%d", r.correct),
			fmt.Sprintf("%d", r.incorrect),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func speedSeries(results []model.Result) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = r.Speed
	}
	return out
}
