package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateFile_BundledData(t *testing.T) {
	var out bytes.Buffer
	err := validateFile(filepath.Join("..", "..", "pkg", "scenario", "data", "console_university.json"), &out)
	require.NoError(t, err, out.String())
	assert.Contains(t, out.String(), "is valid")
}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{
			name:    "unknown field",
			file:    "game.json",
			content: `{"name":"x","start_location":"start","locations":{"start":{"name":"S"}},"bogus":1}`,
			wantErr: "unknown field",
		},
		{
			name:    "bad reference",
			file:    "game.json",
			content: `{"name":"x","start_location":"start","locations":{"start":{"name":"S","npc":"ghost"}}}`,
			wantErr: "unknown npc",
		},
		{
			name:    "invalid json",
			file:    "game.json",
			content: `{"name":`,
			wantErr: "invalid JSON",
		},
		{
			name:    "yaml unknown field",
			file:    "game.yaml",
			content: "name: x\nstart_location: start\nlocations:\n  start:\n    name: S\n    colour: red\n",
			wantErr: "colour",
		},
		{
			name:    "toml unknown field",
			file:    "game.toml",
			content: "name = \"x\"\nstart_location = \"start\"\n[locations.start]\nname = \"S\"\nfloor = 2\n",
			wantErr: "unknown fields",
		},
		{
			name:    "valid toml with warning",
			file:    "game.toml",
			content: "name = \"x\"\nstart_location = \"start\"\n[locations.start]\nname = \"S\"\nexits = [\"nowhere\"]\n",
		},
		{
			name:    "unsupported extension",
			file:    "game.txt",
			content: "name = x",
			wantErr: "unsupported extension",
		},
		{
			name:    "valid yaml with warning",
			file:    "game.yml",
			content: "name: x\nstart_location: start\nlocations:\n  start:\n    name: S\n    exits: [nowhere]\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := validateFile(writeFile(t, tt.file, tt.content), &out)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Contains(t, out.String(), "warning")
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateFile_Missing(t *testing.T) {
	var out bytes.Buffer
	err := validateFile(filepath.Join(t.TempDir(), "nope.json"), &out)
	assert.Error(t, err)
}
