package drill

import (
	"math/rand"
	"testing"
	"unicode"

	"github.com/mtln/keydrill/internal/model"
)

func newTest(cs Charset, variant model.Variant, length int) *Drill {
	return New(cs, variant, length, rand.New(rand.NewSource(1)))
}

func TestSequenceNoImmediateRepeats(t *testing.T) {
	for _, cs := range []Charset{Letters(), Specials(), Digits()} {
		d := newTest(cs, model.VariantStandard, 200)
		seq := d.Sequence()
		if len(seq) != 200 {
			t.Fatalf("%s: sequence length = %d, want 200", cs.Label, len(seq))
		}
		for i := 1; i < len(seq); i++ {
			a, b := seq[i-1], seq[i]
			if cs.foldRepeats {
				a, b = unicode.ToLower(a), unicode.ToLower(b)
			}
			if a == b {
				t.Fatalf("%s: immediate repeat %q at %d", cs.Label, string(seq[i]), i)
			}
		}
	}
}

func TestStandardWrongKeyDoesNotAdvance(t *testing.T) {
	d := newTest(Digits(), model.VariantStandard, 10)
	target, _ := d.Current()
	wrong := target + 1
	if wrong > '9' {
		wrong = '0'
	}
	d.Key(wrong)
	if d.Index() != 0 {
		t.Fatalf("index = %d after wrong key, want 0", d.Index())
	}
	if d.Errors() != 1 {
		t.Fatalf("errors = %d, want 1", d.Errors())
	}
	d.Key(target)
	if d.Index() != 1 || d.Correct() != 1 {
		t.Fatalf("index = %d correct = %d after right key, want 1 1", d.Index(), d.Correct())
	}
}

func TestStandardCompletion(t *testing.T) {
	d := newTest(Letters(), model.VariantStandard, 5)
	for _, r := range d.Sequence() {
		d.Key(r)
	}
	if !d.Done() || !d.Completed() || d.Failed() {
		t.Fatalf("done=%v completed=%v failed=%v, want true true false", d.Done(), d.Completed(), d.Failed())
	}
	if d.Correct() != 5 || d.Errors() != 0 {
		t.Fatalf("correct=%d errors=%d, want 5 0", d.Correct(), d.Errors())
	}
}

func TestBackspaceRestoresCounters(t *testing.T) {
	d := newTest(Digits(), model.VariantStandard, 10)
	seq := d.Sequence()
	d.Key(seq[0])
	if d.Correct() != 1 {
		t.Fatalf("correct = %d, want 1", d.Correct())
	}
	if !d.Backspace() {
		t.Fatal("backspace refused")
	}
	if d.Index() != 0 || d.Correct() != 0 {
		t.Fatalf("index=%d correct=%d after backspace, want 0 0", d.Index(), d.Correct())
	}
	if d.Backspace() {
		t.Fatal("backspace at start should refuse")
	}
}

func TestBlindAdvancesOnError(t *testing.T) {
	d := newTest(Digits(), model.VariantBlind, 3)
	seq := d.Sequence()
	wrong := func(r rune) rune {
		if r == '0' {
			return '1'
		}
		return '0'
	}
	d.Key(wrong(seq[0]))
	if d.Index() != 1 || d.Errors() != 1 {
		t.Fatalf("index=%d errors=%d after blind error, want 1 1", d.Index(), d.Errors())
	}
	d.Key(seq[1])
	d.Key(wrong(seq[2]))
	if !d.Done() {
		t.Fatal("blind run should end at sequence end")
	}
	pct := d.EndErrorPercentage()
	want := 2.0 / 3.0 * 100
	if pct < want-1e-9 || pct > want+1e-9 {
		t.Fatalf("end error pct = %f, want %f", pct, want)
	}
}

func TestBlindBackspaceRestoresError(t *testing.T) {
	d := newTest(Digits(), model.VariantBlind, 5)
	seq := d.Sequence()
	wrong := '0'
	if seq[0] == '0' {
		wrong = '1'
	}
	d.Key(wrong)
	if !d.Backspace() {
		t.Fatal("blind backspace refused")
	}
	if d.Errors() != 0 || d.Index() != 0 {
		t.Fatalf("errors=%d index=%d after undo, want 0 0", d.Errors(), d.Index())
	}
}

func TestSuddenDeathEndsOnFirstError(t *testing.T) {
	d := newTest(Letters(), model.VariantSudden, 5)
	seq := d.Sequence()
	d.Key(seq[0])
	d.Key(seq[1])
	wrong := 'a'
	if seq[2] == 'a' || seq[2] == 'A' {
		wrong = 'b'
	}
	d.Key(wrong)
	if !d.Done() || !d.Failed() {
		t.Fatalf("done=%v failed=%v after sudden death error, want true true", d.Done(), d.Failed())
	}
	if d.Correct() != 2 || d.Errors() != 1 {
		t.Fatalf("correct=%d errors=%d, want 2 1", d.Correct(), d.Errors())
	}
	if d.Backspace() {
		t.Fatal("sudden death must not allow backspace")
	}
}

func TestSuddenDeathExtendsSequence(t *testing.T) {
	d := newTest(Digits(), model.VariantSudden, 3)
	for i := 0; i < 3; i++ {
		r, _ := d.Current()
		d.Key(r)
	}
	if d.Done() {
		t.Fatal("sudden death ended instead of extending")
	}
	if d.Total() != 6 {
		t.Fatalf("total = %d after extension, want 6", d.Total())
	}
	if _, ok := d.Current(); !ok {
		t.Fatal("no current target after extension")
	}
}

func TestForMode(t *testing.T) {
	for _, mode := range []model.Mode{model.ModeLetter, model.ModeSpecial, model.ModeNumber} {
		cs, ok := ForMode(mode)
		if !ok || cs.Mode != mode || len(cs.Runes) == 0 {
			t.Fatalf("ForMode(%s) = %+v %v", mode, cs, ok)
		}
	}
	if _, ok := ForMode(model.ModeTyping); ok {
		t.Fatal("typing mode should have no charset")
	}
}
