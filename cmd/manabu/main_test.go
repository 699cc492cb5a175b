package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after message are moved first",
			args:     []string{"what is gravity", "-output", "json"},
			expected: []string{"-output", "json", "what is gravity"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-output", "json", "what is gravity"},
			expected: []string{"-output", "json", "what is gravity"},
		},
		{
			name:     "message only returns unchanged",
			args:     []string{"what is gravity"},
			expected: []string{"what is gravity"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"what", "is", "-server", ""},
			expected: []string{"-server", "", "what", "is"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildMessage(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"gravity"}, "gravity"},
		{"multiple words", []string{"what", "is", "gravity"}, "what is gravity"},
		{"single quoted phrase", []string{"what is gravity"}, "what is gravity"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildMessage(tt.args)
			if got != tt.expected {
				t.Errorf("buildMessage(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestLoadConfigFallsBackToCwd(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("debug: true\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)

	cfg, loadedPath, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if !cfg.Debug {
		t.Error("cwd config.yaml should have been used")
	}
	if filepath.Base(loadedPath) != "config.yaml" {
		t.Errorf("loaded path = %q", loadedPath)
	}
}
