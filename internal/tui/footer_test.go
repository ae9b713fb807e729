package tui

import (
	"strings"
	"testing"

	"github.com/mtln/keydrill/internal/model"
	"github.com/mtln/keydrill/internal/session"
)

func TestRenderFooterFormats(t *testing.T) {
	tracker := session.New("abcd")
	tracker.Type('a', 'b')
	m := &Model{
		mode:    model.ModeTyping,
		variant: model.VariantStandard,
		tracker: tracker,
		target:  tracker.Target(),
	}
	out := m.renderFooter()
	if out == "" {
		t.Fatalf("expected footer output")
	}
	if !containsAll(out, []string{"free typing", "standard", "Progress 50%"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
	if strings.Contains(out, "training") {
		t.Fatalf("unexpected training marker: %s", out)
	}
}

func TestRenderFooterTrainingMarker(t *testing.T) {
	tracker := session.New("ab")
	m := &Model{
		mode:     model.ModeLetter,
		variant:  model.VariantSudden,
		tracker:  tracker,
		target:   tracker.Target(),
		training: true,
	}
	out := m.renderFooter()
	if !containsAll(out, []string{"sudden death", "training"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
