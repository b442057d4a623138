package scenario

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed data/console_university.json
var builtinData []byte

// Builtin returns the authored Console University game data.
func Builtin() *Scenario {
	s, err := Parse(builtinData, ".json")
	if err != nil {
		// The embedded file is covered by tests; failing here is a build defect.
		panic(fmt.Sprintf("embedded game data is invalid: %v", err))
	}
	return s
}

// Fallback returns the minimal built-in game data used when the configured
// file cannot be loaded: an empty player name, a start location, and all
// progress flags at their zero values.
func Fallback() *Scenario {
	s := &Scenario{
		Name:          DefaultName,
		StartLocation: StartLocation,
		Locations: map[string]Location{
			StartLocation: {
				ID:   StartLocation,
				Name: DefaultName,
			},
		},
		NPCs: map[string]NPC{},
	}
	s.normalize()
	return s
}

// Load reads a game data file. The format is chosen by extension: .yaml and
// .yml are parsed as YAML, .toml as TOML, anything else as JSON.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("game data not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read game data file: %w", err)
	}
	s, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse game data %s: %w", path, err)
	}
	return s, nil
}

// LoadOrFallback loads the game data at path. An empty path selects the
// built-in data; a load failure is logged and recovered with Fallback.
func LoadOrFallback(path string, logger *slog.Logger) *Scenario {
	if path == "" {
		return Builtin()
	}
	s, err := Load(path)
	if err != nil {
		logger.Warn("Failed to load game data, using fallback", "path", path, "error", err)
		return Fallback()
	}
	logger.Info("Game data loaded",
		"path", path,
		"locations", len(s.Locations),
		"npcs", len(s.NPCs))
	return s
}

// Parse decodes game data in the format implied by ext.
func Parse(data []byte, ext string) (*Scenario, error) {
	var s Scenario
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("invalid yaml: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &s); err != nil {
			return nil, fmt.Errorf("invalid toml: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
	}
	s.normalize()
	return &s, nil
}
