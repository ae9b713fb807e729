// Package model defines shared data structures.
package model

import "time"

// Mode identifies a practice discipline.
type Mode string

// Practice modes.
const (
	ModeTyping  Mode = "typing"
	ModeLetter  Mode = "letter"
	ModeSpecial Mode = "special"
	ModeNumber  Mode = "number"
)

// Modes lists all practice modes in display order.
func Modes() []Mode {
	return []Mode{ModeTyping, ModeLetter, ModeSpecial, ModeNumber}
}

// Variant identifies how a mode is played.
type Variant string

// Mode variants.
const (
	VariantStandard Variant = "standard"
	VariantSudden   Variant = "sudden"
	VariantBlind    Variant = "blind"
)

// Variants lists all variants in cycle order.
func Variants() []Variant {
	return []Variant{VariantStandard, VariantSudden, VariantBlind}
}

// RunFilter selects which result rows to include in stats.
type RunFilter string

// Stats run filters.
const (
	FilterRegular  RunFilter = "regular"
	FilterTraining RunFilter = "training"
	FilterAll      RunFilter = "all"
)

// Config defines practice settings.
type Config struct {
	Variant        Variant
	Training       bool
	SequenceLength int
	WrapWidth      int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        Mode
	Variant     Variant
	Filter      RunFilter
	Since       *time.Time
	Last        int
	CurveWindow int
}

// Result is one persisted row of a completed run.
//
// Standard rows carry ErrorPct; sudden death rows carry Correct and
// Completed; blind rows carry Typed, Completed, and EndErrorPct. The
// unused fields stay zero.
type Result struct {
	Timestamp   time.Time
	Speed       float64
	ErrorPct    float64
	Correct     int
	Typed       int
	DurationSec float64
	Completed   bool
	EndErrorPct float64
	Training    bool
}

// SessionStats captures a completed run for the per-character store.
type SessionStats struct {
	Mode       Mode
	Variant    Variant
	StartedAt  time.Time
	EndedAt    time.Time
	Correct    int
	Incorrect  int
	DurationMs int64
	Training   bool
}

// CharStats stores per-character stats for a single session.
type CharStats struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// CharAggregate aggregates character stats across sessions.
type CharAggregate struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID  int64
	Mode       Mode
	Variant    Variant
	EndedAt    time.Time
	Correct    int
	Incorrect  int
	DurationMs int64
}
