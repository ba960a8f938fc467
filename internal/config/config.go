// Package config loads and writes jcsh's small JSONC settings file, the
// way the teacher's internal/config package loads and writes a fence
// config: a JSONC source (comments stripped by github.com/tidwall/jsonc)
// unmarshaled into a plain struct, and a private "clean" mirror struct
// used to marshal it back out in a stable, omitempty'd shape.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// Config is jcsh's full set of user-tunable settings (spec.md's ambient
// configuration surface, not part of the original job-control core).
type Config struct {
	HistoryFile   string   `json:"historyFile,omitempty"`
	HistoryIgnore []string `json:"historyIgnore,omitempty"`
	PromptPrefix  string   `json:"promptPrefix,omitempty"`
	OKGlyph       string   `json:"okGlyph,omitempty"`
	ErrGlyph      string   `json:"errGlyph,omitempty"`
}

// Default returns the built-in settings used when no config file exists
// or a field is left unset in one that does.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		HistoryFile:  filepath.Join(home, ".jcsh_history"),
		PromptPrefix: "jcsh",
		OKGlyph:      ":)",
		ErrGlyph:     ":(",
	}
}

// DefaultPath returns ~/.config/jcsh/config.jsonc, jcsh's default config
// file location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "jcsh", "config.jsonc")
}

// Load reads and merges a JSONC config file over the built-in defaults.
// A missing file is not an error: it simply yields Default().
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var override Config
	if err := json.Unmarshal(jsonc.ToJSON(raw), &override); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if override.HistoryFile != "" {
		cfg.HistoryFile = override.HistoryFile
	}
	if override.HistoryIgnore != nil {
		cfg.HistoryIgnore = override.HistoryIgnore
	}
	if override.PromptPrefix != "" {
		cfg.PromptPrefix = override.PromptPrefix
	}
	if override.OKGlyph != "" {
		cfg.OKGlyph = override.OKGlyph
	}
	if override.ErrGlyph != "" {
		cfg.ErrGlyph = override.ErrGlyph
	}

	return cfg, nil
}
