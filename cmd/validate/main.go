package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jwebster45206/console-university/pkg/scenario"
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <game.json|game.yaml|game.toml> [...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		if err := validateFile(filename, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// validateFile strictly decodes a game data file, rejecting unknown fields,
// then checks its references. Warnings are printed; errors fail the file.
func validateFile(filename string, out io.Writer) error {
	fmt.Fprintf(out, "Validating %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	s, err := decodeStrict(data, filepath.Ext(filename))
	if err != nil {
		return fmt.Errorf("file %s failed strict unmarshaling: %w", filename, err)
	}

	var errs []string
	for _, issue := range s.Validate() {
		if issue.Warning {
			fmt.Fprintf(out, "  %s\n", issue)
			continue
		}
		errs = append(errs, "  - "+issue.String())
	}
	if len(errs) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(errs, "\n"))
	}

	fmt.Fprintf(out, "%s is valid (%d locations, %d npcs)\n", filename, len(s.Locations), len(s.NPCs))
	return nil
}

func decodeStrict(data []byte, ext string) (*scenario.Scenario, error) {
	var s scenario.Scenario
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return nil, err
		}
	case ".json":
		if !json.Valid(data) {
			return nil, fmt.Errorf("invalid JSON")
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, err
		}
	case ".toml":
		md, err := toml.Decode(string(data), &s)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown fields: %v", undecoded)
		}
	default:
		return nil, fmt.Errorf("unsupported extension %q (want .json, .yaml, .yml or .toml)", ext)
	}
	return &s, nil
}
