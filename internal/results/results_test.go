package results

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mtln/keydrill/internal/model"
)

func TestSchemaHeaders(t *testing.T) {
	tests := []struct {
		mode    model.Mode
		variant model.Variant
		file    string
		header  string
	}{
		{
			model.ModeTyping, model.VariantStandard,
			"typing_stats.csv",
			"timestamp;wpm;error_percentage;duration_seconds;is_training_run",
		},
		{
			model.ModeLetter, model.VariantStandard,
			"letter_stats.csv",
			"timestamp;letters_per_minute;error_percentage;duration_seconds;is_training_run",
		},
		{
			model.ModeSpecial, model.VariantStandard,
			"special_character_stats.csv",
			"timestamp;specials_per_minute;error_percentage;duration_seconds;is_training_run",
		},
		{
			model.ModeNumber, model.VariantSudden,
			"sudden_death_number_stats.csv",
			"timestamp;digits_per_minute;correct_digits;duration_seconds;completed;is_training_run",
		},
		{
			model.ModeTyping, model.VariantSudden,
			"sudden_death_typing_stats.csv",
			"timestamp;wpm;correct_characters;duration_seconds;completed;is_training_run",
		},
		{
			model.ModeSpecial, model.VariantBlind,
			"blind_special_stats.csv",
			"timestamp;symbols_per_minute;typed_symbols;duration_seconds;completed;end_error_percentage;is_training_run",
		},
		{
			model.ModeTyping, model.VariantBlind,
			"blind_typing_stats.csv",
			"timestamp;wpm;typed_characters;duration_seconds;completed;end_error_percentage;is_training_run",
		},
	}
	for _, tt := range tests {
		schema, err := SchemaFor(tt.mode, tt.variant)
		if err != nil {
			t.Fatalf("SchemaFor(%s, %s): %v", tt.mode, tt.variant, err)
		}
		if schema.FileName != tt.file {
			t.Errorf("%s/%s file = %q, want %q", tt.mode, tt.variant, schema.FileName, tt.file)
		}
		if schema.Header != tt.header {
			t.Errorf("%s/%s header = %q, want %q", tt.mode, tt.variant, schema.Header, tt.header)
		}
	}
}

func TestAppendAndLoadStandard(t *testing.T) {
	store := NewStore(t.TempDir())
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)
	res := model.Result{
		Timestamp:   ts,
		Speed:       62.5,
		ErrorPct:    3.125,
		DurationSec: 45.678,
		Training:    true,
	}
	if err := store.Append(model.ModeTyping, model.VariantStandard, res); err != nil {
		t.Fatalf("Append: %v", err)
	}

	schema, _ := SchemaFor(model.ModeTyping, model.VariantStandard)
	data, err := os.ReadFile(store.Path(schema))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header + row", len(lines))
	}
	if lines[0] != schema.Header {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "2024-03-01 09:30:00;62.500;3.125;45.678;1" {
		t.Fatalf("row = %q", lines[1])
	}

	loaded, err := store.Load(model.ModeTyping, model.VariantStandard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("loaded %d rows, want 1", len(loaded))
	}
	got := loaded[0]
	if !got.Timestamp.Equal(ts) || got.Speed != 62.5 || got.ErrorPct != 3.125 || !got.Training {
		t.Fatalf("loaded row = %+v", got)
	}
}

func TestAppendBlindRow(t *testing.T) {
	store := NewStore(t.TempDir())
	res := model.Result{
		Timestamp:   time.Date(2024, 3, 2, 10, 0, 0, 0, time.Local),
		Speed:       120,
		Typed:       100,
		DurationSec: 50,
		Completed:   true,
		EndErrorPct: 4,
	}
	if err := store.Append(model.ModeLetter, model.VariantBlind, res); err != nil {
		t.Fatalf("Append: %v", err)
	}
	schema, _ := SchemaFor(model.ModeLetter, model.VariantBlind)
	data, _ := os.ReadFile(store.Path(schema))
	want := "2024-03-02 10:00:00;120.000;100;50.000;1;4.000;0"
	if !strings.Contains(string(data), want+"\n") {
		t.Fatalf("file %q missing row %q", string(data), want)
	}

	loaded, err := store.Load(model.ModeLetter, model.VariantBlind)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Typed != 100 || !loaded[0].Completed || loaded[0].EndErrorPct != 4 {
		t.Fatalf("loaded = %+v", loaded)
	}
}

func TestEnsureHeaderInsertsRetroactively(t *testing.T) {
	store := NewStore(t.TempDir())
	schema, _ := SchemaFor(model.ModeNumber, model.VariantStandard)
	path := store.Path(schema)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	old := "2023-01-01 08:00:00;40.000;2.000;60.000;0\n"
	if err := os.WriteFile(path, []byte(old), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := store.EnsureHeader(schema, true); err != nil {
		t.Fatalf("EnsureHeader: %v", err)
	}
	data, _ := os.ReadFile(path)
	want := schema.Header + "\n" + old
	if string(data) != want {
		t.Fatalf("file = %q, want %q", string(data), want)
	}

	// A second pass must not duplicate the header.
	if err := store.EnsureHeader(schema, true); err != nil {
		t.Fatalf("EnsureHeader again: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != want {
		t.Fatalf("header duplicated: %q", string(data))
	}
}

func TestEnsureHeaderNoCreate(t *testing.T) {
	store := NewStore(t.TempDir())
	schema, _ := SchemaFor(model.ModeLetter, model.VariantSudden)
	if err := store.EnsureHeader(schema, false); err != nil {
		t.Fatalf("EnsureHeader: %v", err)
	}
	if _, err := os.Stat(store.Path(schema)); !os.IsNotExist(err) {
		t.Fatal("file should not have been created")
	}
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	store := NewStore(t.TempDir())
	schema, _ := SchemaFor(model.ModeSpecial, model.VariantStandard)
	path := store.Path(schema)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	content := schema.Header + "\n" +
		"2024-01-01 12:00:00;30.000;1.000;20.000;0\n" +
		"not;a;valid;row\n" +
		"2024-01-02 12:00:00;bogus;1.000;20.000;0\n" +
		"\n" +
		"2024-01-03 12:00:00;35.000;0.000;21.000;yes\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load(model.ModeSpecial, model.VariantStandard)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d rows, want 2", len(loaded))
	}
	if !loaded[1].Training {
		t.Fatal("yes flag should parse as training")
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())
	loaded, err := store.Load(model.ModeTyping, model.VariantSudden)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != nil {
		t.Fatalf("loaded = %v, want nil", loaded)
	}
}

func TestParseTrainingFlag(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", " y "} {
		if !ParseTrainingFlag(v) {
			t.Errorf("ParseTrainingFlag(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"0", "false", "no", ""} {
		if ParseTrainingFlag(v) {
			t.Errorf("ParseTrainingFlag(%q) = true, want false", v)
		}
	}
}
