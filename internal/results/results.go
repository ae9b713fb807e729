// Package results persists finished runs as semicolon separated CSV
// files, one file per mode and variant combination.
package results

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mtln/keydrill/internal/model"
)

// TimestampLayout is the format used for the timestamp column.
const TimestampLayout = "2006-01-02 15:04:05"

// Schema describes one results file: its name, its header line, and
// which column layout the variant uses.
type Schema struct {
	FileName string
	Header   string
	Variant  model.Variant
}

const (
	trainingColumn = "is_training_run"
	endErrorColumn = "end_error_percentage"
)

var fileNames = map[model.Mode]map[model.Variant]string{
	model.ModeTyping: {
		model.VariantStandard: "typing_stats.csv",
		model.VariantSudden:   "sudden_death_typing_stats.csv",
		model.VariantBlind:    "blind_typing_stats.csv",
	},
	model.ModeLetter: {
		model.VariantStandard: "letter_stats.csv",
		model.VariantSudden:   "sudden_death_letter_stats.csv",
		model.VariantBlind:    "blind_letter_stats.csv",
	},
	model.ModeSpecial: {
		model.VariantStandard: "special_character_stats.csv",
		model.VariantSudden:   "sudden_death_special_stats.csv",
		model.VariantBlind:    "blind_special_stats.csv",
	},
	model.ModeNumber: {
		model.VariantStandard: "number_stats.csv",
		model.VariantSudden:   "sudden_death_number_stats.csv",
		model.VariantBlind:    "blind_number_stats.csv",
	},
}

// speedColumns names the rate column per mode. The blind special file
// historically used "symbols_per_minute" and keeps that name so old
// data files stay compatible.
var speedColumns = map[model.Mode]string{
	model.ModeTyping:  "wpm",
	model.ModeLetter:  "letters_per_minute",
	model.ModeSpecial: "specials_per_minute",
	model.ModeNumber:  "digits_per_minute",
}

var countColumns = map[model.Mode]string{
	model.ModeTyping:  "characters",
	model.ModeLetter:  "letters",
	model.ModeSpecial: "symbols",
	model.ModeNumber:  "digits",
}

// SchemaFor returns the file schema for a mode and variant.
func SchemaFor(mode model.Mode, variant model.Variant) (Schema, error) {
	byVariant, ok := fileNames[mode]
	if !ok {
		return Schema{}, fmt.Errorf("unknown mode %q", mode)
	}
	name, ok := byVariant[variant]
	if !ok {
		return Schema{}, fmt.Errorf("unknown variant %q", variant)
	}

	speed := speedColumns[mode]
	count := countColumns[mode]

	var header string
	switch variant {
	case model.VariantStandard:
		header = fmt.Sprintf("timestamp;%s;error_percentage;duration_seconds;%s",
			speed, trainingColumn)
	case model.VariantSudden:
		header = fmt.Sprintf("timestamp;%s;correct_%s;duration_seconds;completed;%s",
			speed, count, trainingColumn)
	case model.VariantBlind:
		if mode == model.ModeSpecial {
			speed = "symbols_per_minute"
		}
		header = fmt.Sprintf("timestamp;%s;typed_%s;duration_seconds;completed;%s;%s",
			speed, count, endErrorColumn, trainingColumn)
	}

	return Schema{FileName: name, Header: header, Variant: variant}, nil
}

// Store reads and appends result rows under a single data directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created
// lazily on first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path for a schema.
func (s *Store) Path(schema Schema) string {
	return filepath.Join(s.dir, schema.FileName)
}

// EnsureHeader makes sure the file exists and starts with the schema
// header. A file written before the header was introduced gets the
// header inserted above its existing rows.
func (s *Store) EnsureHeader(schema Schema, createIfMissing bool) error {
	path := s.Path(schema)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read results file: %w", err)
		}
		if !createIfMissing {
			return nil
		}
		return os.WriteFile(path, []byte(schema.Header+"\n"), 0o644)
	}

	firstLine, _, _ := strings.Cut(string(data), "\n")
	if strings.TrimSpace(firstLine) == schema.Header {
		return nil
	}
	patched := append([]byte(schema.Header+"\n"), data...)
	if err := os.WriteFile(path, patched, 0o644); err != nil {
		return fmt.Errorf("failed to insert results header: %w", err)
	}
	return nil
}

// Append writes one finished run to the file for mode and variant.
func (s *Store) Append(mode model.Mode, variant model.Variant, res model.Result) error {
	schema, err := SchemaFor(mode, variant)
	if err != nil {
		return err
	}
	if err := s.EnsureHeader(schema, true); err != nil {
		return err
	}

	line := formatRow(schema, res)
	f, err := os.OpenFile(s.Path(schema), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open results file: %w", err)
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("failed to append result: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close results file: %w", err)
	}
	return nil
}

func formatRow(schema Schema, res model.Result) string {
	ts := res.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	stamp := ts.Format(TimestampLayout)

	switch schema.Variant {
	case model.VariantSudden:
		return fmt.Sprintf("%s;%.3f;%d;%.3f;%s;%s\n",
			stamp, res.Speed, res.Correct, res.DurationSec,
			boolFlag(res.Completed), boolFlag(res.Training))
	case model.VariantBlind:
		return fmt.Sprintf("%s;%.3f;%d;%.3f;%s;%.3f;%s\n",
			stamp, res.Speed, res.Typed, res.DurationSec,
			boolFlag(res.Completed), res.EndErrorPct, boolFlag(res.Training))
	default:
		return fmt.Sprintf("%s;%.3f;%.3f;%.3f;%s\n",
			stamp, res.Speed, res.ErrorPct, res.DurationSec,
			boolFlag(res.Training))
	}
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ParseTrainingFlag interprets a training column value. Historic rows
// used several spellings for true.
func ParseTrainingFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

// Load reads all rows for a mode and variant. Malformed lines and the
// header line are skipped. A missing file yields no rows and no error.
func (s *Store) Load(mode model.Mode, variant model.Variant) ([]model.Result, error) {
	schema, err := SchemaFor(mode, variant)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path(schema))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer f.Close()

	var out []model.Result
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == schema.Header {
			continue
		}
		res, ok := parseRow(schema, line)
		if !ok {
			continue
		}
		out = append(out, res)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}
	return out, nil
}

func parseRow(schema Schema, line string) (model.Result, bool) {
	parts := strings.Split(line, ";")

	want := 5
	switch schema.Variant {
	case model.VariantSudden:
		want = 6
	case model.VariantBlind:
		want = 7
	}
	if len(parts) < want {
		return model.Result{}, false
	}

	ts, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(parts[0]), time.Local)
	if err != nil {
		return model.Result{}, false
	}
	speed, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return model.Result{}, false
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil {
		return model.Result{}, false
	}

	res := model.Result{
		Timestamp:   ts,
		Speed:       speed,
		DurationSec: duration,
		Training:    ParseTrainingFlag(parts[want-1]),
	}

	switch schema.Variant {
	case model.VariantSudden:
		correct, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return model.Result{}, false
		}
		res.Correct = correct
		res.Completed = ParseTrainingFlag(parts[4])
	case model.VariantBlind:
		typed, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return model.Result{}, false
		}
		endErr, err := strconv.ParseFloat(strings.TrimSpace(parts[5]), 64)
		if err != nil {
			return model.Result{}, false
		}
		res.Typed = typed
		res.Completed = ParseTrainingFlag(parts[4])
		res.EndErrorPct = endErr
	default:
		errPct, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return model.Result{}, false
		}
		res.ErrorPct = errPct
		res.Completed = true
	}

	return res, true
}
