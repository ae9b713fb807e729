// Package corpus loads the training texts file.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultTexts returns the texts written to the corpus file on first run.
func DefaultTexts() []string {
	return []string{
		"The quick brown fox jumps over the lazy dog.",
		"Typing practice helps to increase speed and accuracy.",
		"Go is a simple and readable programming language.",
		"Consistent practice is the key to becoming a faster typist.",
		"Robots can move precisely if their controllers are well designed.",
	}
}

// Parse splits raw corpus content into texts.
//
// Consecutive non-empty lines form one text; empty lines separate
// texts. Trailing whitespace at the end of lines is removed.
func Parse(raw string) []string {
	var texts []string
	var current []string
	flush := func() {
		if len(current) == 0 {
			return
		}
		texts = append(texts, strings.Join(current, "\n"))
		current = nil
	}
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, strings.TrimRight(line, " \t\r"))
	}
	flush()
	return texts
}

// LoadOrCreate reads the corpus file, creating it with defaults when
// the file is missing or holds no texts.
func LoadOrCreate(path string) ([]string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create corpus directory: %w", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read corpus: %w", err)
		}
		texts := DefaultTexts()
		if werr := writeTexts(path, texts); werr != nil {
			return nil, werr
		}
		return texts, nil
	}
	texts := Parse(string(raw))
	if len(texts) == 0 {
		texts = DefaultTexts()
		if werr := writeTexts(path, texts); werr != nil {
			return nil, werr
		}
	}
	return texts, nil
}

func writeTexts(path string, texts []string) error {
	content := strings.Join(texts, "\n\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	return nil
}

// Preview returns a shortened first line suitable for list display.
func Preview(text string, maxLen int) string {
	first := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		first = text[:idx]
	}
	runes := []rune(first)
	if maxLen <= 3 || len(runes) <= maxLen {
		return first
	}
	return string(runes[:maxLen-3]) + "..."
}
