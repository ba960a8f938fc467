package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// FileWriteOptions controls config file formatting behavior.
type FileWriteOptions struct {
	// HeaderLines are written above the JSON content (one line per entry).
	// Lines are written as provided; callers can include comment prefixes.
	HeaderLines []string
}

// cleanConfig is used for JSON output with fields in desired order and
// omitempty, so a written-out config only shows settings that differ
// from zero value.
type cleanConfig struct {
	HistoryFile   string   `json:"historyFile,omitempty"`
	HistoryIgnore []string `json:"historyIgnore,omitempty"`
	PromptPrefix  string   `json:"promptPrefix,omitempty"`
	OKGlyph       string   `json:"okGlyph,omitempty"`
	ErrGlyph      string   `json:"errGlyph,omitempty"`
}

// MarshalConfigJSON marshals a jcsh config to clean, ordered JSON.
func MarshalConfigJSON(cfg Config) ([]byte, error) {
	clean := cleanConfig{
		HistoryFile:   cfg.HistoryFile,
		HistoryIgnore: cfg.HistoryIgnore,
		PromptPrefix:  cfg.PromptPrefix,
		OKGlyph:       cfg.OKGlyph,
		ErrGlyph:      cfg.ErrGlyph,
	}
	return json.MarshalIndent(clean, "", "  ")
}

// FormatConfigForFile returns config JSON with optional header lines.
func FormatConfigForFile(cfg Config, opts FileWriteOptions) (string, error) {
	data, err := MarshalConfigJSON(cfg)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	for _, line := range opts.HeaderLines {
		output.WriteString(line)
		output.WriteByte('\n')
	}
	output.Write(data)
	output.WriteByte('\n')

	return output.String(), nil
}

// WriteConfigFile writes a jcsh config to path with optional header lines.
func WriteConfigFile(cfg Config, path string, opts FileWriteOptions) error {
	output, err := FormatConfigForFile(cfg, opts)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, []byte(output), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
