package stats

import (
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestFormatTableAlignsByDisplayWidth(t *testing.T) {
	headers := []string{"Char", "Accuracy", "Total"}
	rows := [][]string{
		{"ü", "92.31%", "13"},
		{"漢", "50.00%", "8"},
		{"<space>", "8.00%", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	want := []string{
		"Char    Accuracy Total",
		"ü         92.31%    13",
		"漢        50.00%     8",
		"<space>    8.00%     3",
	}
	for i, line := range lines {
		if line != want[i] {
			t.Errorf("line %d = %q, want %q", i, line, want[i])
		}
	}
	// The double-width rune occupies two columns, so every line must
	// span the same display width even though rune counts differ.
	for i, line := range lines {
		if w := runewidth.StringWidth(line); w != 22 {
			t.Errorf("line %d display width = %d, want 22", i, w)
		}
	}
}
