// Package session tracks a free-text typing run against a target.
package session

// Tracker holds the state of one free-text typing session.
//
// The cumulative error counter is monotonic: it counts every character
// that was ever typed wrong, so deleting a mistake does not undo it.
// The correct count and first-error index always describe the current
// input.
type Tracker struct {
	target []rune
	typed  []rune

	errorCount   int
	correctCount int
	firstError   int

	finished bool
}

// New creates a tracker for the given target text.
func New(target string) *Tracker {
	return &Tracker{
		target:     []rune(target),
		firstError: -1,
	}
}

// Target returns the target runes.
func (t *Tracker) Target() []rune {
	return t.target
}

// Typed returns the current input runes.
func (t *Tracker) Typed() []rune {
	return t.typed
}

// Type appends runes to the input and updates counters.
func (t *Tracker) Type(runes ...rune) {
	if t.finished || len(runes) == 0 {
		return
	}
	prev := t.typed
	t.typed = append(append([]rune(nil), prev...), runes...)
	t.applyChange(prev, t.typed)
}

// Backspace removes the last input rune. The cumulative error counter
// is untouched; only the live counters are recomputed.
func (t *Tracker) Backspace() {
	if t.finished || len(t.typed) == 0 {
		return
	}
	prev := t.typed
	t.typed = prev[:len(prev)-1]
	t.applyChange(prev, t.typed)
}

// applyChange updates the cumulative error counter by examining only
// the changed region (common prefix and suffix trimmed away), then
// rescans the input for the live correct count and first-error index.
func (t *Tracker) applyChange(prev, cur []rune) {
	prefix := 0
	maxPrefix := len(prev)
	if len(cur) < maxPrefix {
		maxPrefix = len(cur)
	}
	for prefix < maxPrefix && prev[prefix] == cur[prefix] {
		prefix++
	}
	prevEnd, curEnd := len(prev), len(cur)
	for prevEnd > prefix && curEnd > prefix && prev[prevEnd-1] == cur[curEnd-1] {
		prevEnd--
		curEnd--
	}
	for i := prefix; i < curEnd; i++ {
		if i >= len(t.target) || cur[i] != t.target[i] {
			t.errorCount++
		}
	}

	correct := 0
	first := -1
	for i, r := range cur {
		if i < len(t.target) && r == t.target[i] {
			correct++
		} else if first == -1 {
			first = i
		}
	}
	t.correctCount = correct
	t.firstError = first
}

// ErrorCount returns the cumulative number of wrong keystrokes.
func (t *Tracker) ErrorCount() int {
	return t.errorCount
}

// CorrectCount returns the number of currently correct positions.
func (t *Tracker) CorrectCount() int {
	return t.correctCount
}

// FirstErrorIndex returns the first currently wrong position, or -1.
// Positions beyond the target length count as wrong.
func (t *Tracker) FirstErrorIndex() int {
	return t.firstError
}

// Complete reports whether the input matches the target exactly.
func (t *Tracker) Complete() bool {
	if len(t.typed) != len(t.target) {
		return false
	}
	return t.firstError == -1
}

// Reached reports whether the input length has reached the target
// length, regardless of correctness. Blind runs finish on this.
func (t *Tracker) Reached() bool {
	return len(t.typed) >= len(t.target)
}

// Finish marks the session finished; further input is ignored.
func (t *Tracker) Finish() {
	t.finished = true
}

// Finished reports whether the session has been finalized.
func (t *Tracker) Finished() bool {
	return t.finished
}

// ErrorPercentage returns cumulative errors over all counted
// keystrokes (errors plus currently correct characters).
func (t *Tracker) ErrorPercentage() float64 {
	total := t.errorCount + t.correctCount
	if total <= 0 {
		return 0
	}
	return float64(t.errorCount) / float64(total) * 100
}

// EndErrorPercentage compares typed against target over the first
// totalTargets positions. Missing and surplus characters count as
// wrong. Used for blind runs where errors are only revealed at the
// end.
func EndErrorPercentage(target, typed []rune, totalTargets int) float64 {
	if totalTargets <= 0 {
		return 0
	}
	wrong := 0
	for i := 0; i < totalTargets; i++ {
		var targetChar, typedChar rune
		if i < len(target) {
			targetChar = target[i]
		}
		if i < len(typed) {
			typedChar = typed[i]
		}
		if typedChar != targetChar {
			wrong++
		}
	}
	if len(typed) > totalTargets {
		wrong += len(typed) - totalTargets
	}
	return float64(wrong) / float64(totalTargets) * 100
}
