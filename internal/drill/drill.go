// Package drill implements the single-character practice modes.
//
// Letter, special-character, and number practice share one state
// machine, parameterized by a character set and a variant.
package drill

import (
	"math/rand"
	"time"
	"unicode"

	"github.com/mtln/keydrill/internal/model"
	"github.com/mtln/keydrill/internal/session"
)

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Charset describes the pool a drill draws its targets from.
type Charset struct {
	Mode  model.Mode
	Label string
	Runes []rune

	// foldRepeats treats upper/lower case as the same character when
	// avoiding immediate repeats in the sequence.
	foldRepeats bool
}

// Letters returns the letter-mode character set.
func Letters() Charset {
	runes := make([]rune, 0, 58)
	for r := 'a'; r <= 'z'; r++ {
		runes = append(runes, r)
	}
	for r := 'A'; r <= 'Z'; r++ {
		runes = append(runes, r)
	}
	runes = append(runes, []rune("äöüÄÖÜ")...)
	return Charset{Mode: model.ModeLetter, Label: "letter", Runes: runes, foldRepeats: true}
}

// Specials returns the special-character-mode character set.
func Specials() Charset {
	runes := append([]rune(asciiPunctuation), []rune("§²³")...)
	return Charset{Mode: model.ModeSpecial, Label: "symbol", Runes: runes}
}

// Digits returns the number-mode character set.
func Digits() Charset {
	return Charset{Mode: model.ModeNumber, Label: "digit", Runes: []rune("0123456789")}
}

// ForMode returns the character set for a drill mode.
func ForMode(mode model.Mode) (Charset, bool) {
	switch mode {
	case model.ModeLetter:
		return Letters(), true
	case model.ModeSpecial:
		return Specials(), true
	case model.ModeNumber:
		return Digits(), true
	default:
		return Charset{}, false
	}
}

// Drill is one active single-character practice run.
type Drill struct {
	charset Charset
	variant model.Variant
	chunk   int
	rnd     *rand.Rand

	seq     []rune
	index   int
	correct int
	errors  int
	history []rune

	done   bool
	failed bool
}

// New creates a drill with an initial sequence of the given length.
// A nil rnd seeds from the current time.
func New(charset Charset, variant model.Variant, length int, rnd *rand.Rand) *Drill {
	if length <= 0 {
		length = 100
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	d := &Drill{
		charset: charset,
		variant: variant,
		chunk:   length,
		rnd:     rnd,
	}
	d.extend()
	return d
}

// extend appends another chunk of random targets, never repeating the
// previous character (case-insensitively for letters).
func (d *Drill) extend() {
	var prev rune
	if len(d.seq) > 0 {
		prev = d.seq[len(d.seq)-1]
	}
	target := len(d.seq) + d.chunk
	for len(d.seq) < target {
		candidate := d.charset.Runes[d.rnd.Intn(len(d.charset.Runes))]
		if prev != 0 && d.sameTarget(candidate, prev) {
			continue
		}
		d.seq = append(d.seq, candidate)
		prev = candidate
	}
}

func (d *Drill) sameTarget(a, b rune) bool {
	if d.charset.foldRepeats {
		return unicode.ToLower(a) == unicode.ToLower(b)
	}
	return a == b
}

// Key feeds one keystroke into the drill.
func (d *Drill) Key(r rune) {
	if d.done || d.index >= len(d.seq) {
		return
	}
	if r == d.seq[d.index] {
		d.history = append(d.history, r)
		d.correct++
		d.index++
		if d.index >= len(d.seq) {
			if d.variant == model.VariantSudden {
				d.extend()
			} else {
				d.done = true
			}
		}
		return
	}

	d.errors++
	switch d.variant {
	case model.VariantSudden:
		d.failed = true
		d.done = true
	case model.VariantBlind:
		// Blind runs advance past mistakes; the reveal happens at the end.
		d.history = append(d.history, r)
		d.index++
		if d.index >= len(d.seq) {
			d.done = true
		}
	}
}

// Backspace undoes the last confirmed keystroke and the counter it
// contributed. Sudden death has no undo.
func (d *Drill) Backspace() bool {
	if d.variant == model.VariantSudden || d.done {
		return false
	}
	if d.index <= 0 || len(d.history) == 0 {
		return false
	}
	d.index--
	last := d.history[len(d.history)-1]
	d.history = d.history[:len(d.history)-1]
	if d.index < len(d.seq) && last == d.seq[d.index] {
		if d.correct > 0 {
			d.correct--
		}
	} else if d.errors > 0 {
		d.errors--
	}
	return true
}

// Current returns the target character under the cursor.
func (d *Drill) Current() (rune, bool) {
	if d.index >= len(d.seq) {
		return 0, false
	}
	return d.seq[d.index], true
}

// Charset returns the drill's character set.
func (d *Drill) Charset() Charset {
	return d.charset
}

// Variant returns the drill's variant.
func (d *Drill) Variant() model.Variant {
	return d.variant
}

// Index returns the cursor position.
func (d *Drill) Index() int {
	return d.index
}

// Total returns the current sequence length.
func (d *Drill) Total() int {
	return len(d.seq)
}

// Correct returns the number of correct keystrokes.
func (d *Drill) Correct() int {
	return d.correct
}

// Errors returns the number of wrong keystrokes.
func (d *Drill) Errors() int {
	return d.errors
}

// History returns the confirmed keystrokes so far.
func (d *Drill) History() []rune {
	return d.history
}

// Sequence returns the target sequence.
func (d *Drill) Sequence() []rune {
	return d.seq
}

// Done reports whether the run has ended.
func (d *Drill) Done() bool {
	return d.done
}

// Failed reports whether a sudden death run ended on a mistake.
func (d *Drill) Failed() bool {
	return d.failed
}

// Completed reports whether the cursor reached the end of the
// sequence.
func (d *Drill) Completed() bool {
	return d.index >= len(d.seq)
}

// ErrorPercentage returns errors over the sequence length, for
// standard runs.
func (d *Drill) ErrorPercentage() float64 {
	total := len(d.seq)
	if total < 1 {
		total = 1
	}
	return float64(d.errors) / float64(total) * 100
}

// EndErrorPercentage compares the typed history against the target
// sequence, for blind runs.
func (d *Drill) EndErrorPercentage() float64 {
	totalTargets := len(d.history)
	if d.variant != model.VariantSudden && !d.failed {
		totalTargets = len(d.seq)
	}
	if totalTargets < 1 {
		totalTargets = 1
	}
	return session.EndErrorPercentage(d.seq, d.history, totalTargets)
}
