package stats

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Test Plot", []Series{
		{Name: "A", Values: []float64{1, 2, 3, 2, 1}},
		{Name: "B", Values: []float64{1, 1, 2, 3, 4}},
	}, 5, 4)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test Plot") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, scaleNote) {
		t.Fatalf("expected scale note in output")
	}
	if !strings.Contains(out, "Legend:") {
		t.Fatalf("expected legend in output")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	expectedMin := 1 + 1 + 2 + 4 + 1
	if len(lines) < expectedMin {
		t.Fatalf("expected at least %d lines of output, got %d", expectedMin, len(lines))
	}
}

func TestPlotSeriesEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "Empty", nil, 10, 4); err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for empty series, got %q", buf.String())
	}
}

func TestPlotWidthFor(t *testing.T) {
	axisWidth := utf8.RuneCountInString(axisLabelTop) + utf8.RuneCountInString(axisSeparator)
	total := 80
	expected := total - axisWidth
	if expected < minPlotWidth {
		expected = minPlotWidth
	}
	if got := PlotWidthFor(total); got != expected {
		t.Fatalf("expected width %d, got %d", expected, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}

func TestCanvasDotPlacement(t *testing.T) {
	cv := newCanvas(2, 1)
	cv.dot(0, 0)
	cv.dot(3, 3)
	if cv.cells[0][0] != 0x01 {
		t.Fatalf("cell 0,0 mask = %#x, want 0x01", cv.cells[0][0])
	}
	if cv.cells[0][1] != 0x80 {
		t.Fatalf("cell 0,1 mask = %#x, want 0x80", cv.cells[0][1])
	}
	// Out of bounds dots are ignored.
	cv.dot(-1, 0)
	cv.dot(4, 0)
	cv.dot(0, 4)
}

func TestResampleSeries(t *testing.T) {
	down := resampleSeries([]float64{1, 2, 3, 4}, 2)
	if len(down) != 2 || down[0] != 1.5 || down[1] != 3.5 {
		t.Fatalf("downsample = %v", down)
	}
	up := resampleSeries([]float64{0, 10}, 3)
	if len(up) != 3 || up[0] != 0 || up[1] != 5 || up[2] != 10 {
		t.Fatalf("upsample = %v", up)
	}
}
