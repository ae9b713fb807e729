package tui

import (
	"testing"

	"github.com/mtln/keydrill/internal/model"
	"github.com/mtln/keydrill/internal/results"
)

func newTestModel(t *testing.T, variant model.Variant, texts []string) *Model {
	t.Helper()
	cfg := model.Config{Variant: variant, SequenceLength: 10, WrapWidth: 80}
	return NewModel(cfg, texts, results.NewStore(t.TempDir()), nil)
}

func TestFreeTextStandardFinishesOnExactMatchOnly(t *testing.T) {
	m := newTestModel(t, model.VariantStandard, []string{"ab"})
	m.startRun(model.ModeTyping)

	m.handleRunes([]rune{'x', 'b'})
	if m.finished {
		t.Fatalf("run finished with a remaining mistake")
	}

	m.handleBackspace()
	m.handleBackspace()
	m.handleRunes([]rune{'a', 'b'})
	if !m.finished {
		t.Fatalf("run should finish once the input matches the target")
	}
	if m.last.ErrorPct == 0 {
		t.Fatalf("corrected mistake should still count as an error")
	}
}

func TestFreeTextBlindFinishesOnLength(t *testing.T) {
	m := newTestModel(t, model.VariantBlind, []string{"ab"})
	m.startRun(model.ModeTyping)

	m.handleRunes([]rune{'x', 'b'})
	if !m.finished {
		t.Fatalf("blind run should finish once the target length is reached")
	}
	if m.last.EndErrorPct != 50 {
		t.Fatalf("end error pct = %f, want 50", m.last.EndErrorPct)
	}
}
