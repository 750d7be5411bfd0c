package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s := NewStore(path)

	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if s.Config() != Default() {
		t.Errorf("Config() = %+v, want defaults", s.Config())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Load() created the config file, first run should not write")
	}
}

func TestLoadDirectoryIsFatal(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	err := s.Load()
	if err == nil {
		t.Fatal("Load() on a directory should fail")
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		t.Errorf("Load() = *LoadError, want a fatal error")
	}
}

func TestLoadMalformedFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path)

	err := s.Load()
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Load() error = %v, want *LoadError", err)
	}
	if s.Config() != Default() {
		t.Errorf("Config() = %+v, want defaults", s.Config())
	}
}

func TestLoadInvalidFieldKeepsOthers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"model": "llama3:8b", "url": "not a url", "auto_run_prompt": false}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path)

	err := s.Load()
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Load() error = %v, want *LoadError", err)
	}

	cfg := s.Config()
	if cfg.Model != "llama3:8b" {
		t.Errorf("Model = %q, want llama3:8b", cfg.Model)
	}
	if cfg.URL != DefaultURL {
		t.Errorf("URL = %q, want default after invalid value", cfg.URL)
	}
	if cfg.AutoRunPrompt {
		t.Error("AutoRunPrompt = true, want false from file")
	}
}

func TestSavePreservesUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"model": "llama3:8b", "theme": {"accent": "green"}, "plugins": [1, 2]}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path)
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := s.Update("model", "phi4:latest"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var saved map[string]json.RawMessage
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("saved file is not valid JSON: %v", err)
	}
	if _, ok := saved["theme"]; !ok {
		t.Error("unknown field theme was dropped on save")
	}
	if _, ok := saved["plugins"]; !ok {
		t.Error("unknown field plugins was dropped on save")
	}
	var model string
	if err := json.Unmarshal(saved["model"], &model); err != nil || model != "phi4:latest" {
		t.Errorf("saved model = %q, want phi4:latest", model)
	}
}

func TestUpdateUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s := NewStore(path)

	err := s.Update("temperature", "0.7")
	var unknownErr *UnknownOptionError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("Update() error = %v, want *UnknownOptionError", err)
	}
	if unknownErr.Key != "temperature" {
		t.Errorf("Key = %q, want temperature", unknownErr.Key)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Update() with unknown key wrote the config file")
	}
	if s.Config() != Default() {
		t.Error("Update() with unknown key mutated the config")
	}
}

func TestUpdateValidation(t *testing.T) {
	tests := []struct {
		key, value string
		wantErr    bool
	}{
		{"model", "mistral:7b", false},
		{"model", "", true},
		{"url", "http://localhost:11434/api/generate", false},
		{"url", "ftp://example.com", true},
		{"url", "not a url", true},
		{"backend_type", "ollama", false},
		{"backend_type", "openai", true},
		{"auto_run_prompt", "false", false},
		{"auto_run_prompt", "maybe", true},
		{"prompt_prefix", "", false},
	}

	for _, tt := range tests {
		s := NewStore(filepath.Join(t.TempDir(), "config.json"))
		err := s.Update(tt.key, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Update(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
		}
	}
}

func TestSaveCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.json")
	s := NewStore(path)

	if err := s.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file missing after Save: %v", err)
	}

	// Round-trip: a fresh store should read back what was saved.
	s2 := NewStore(path)
	if err := s2.Load(); err != nil {
		t.Fatalf("Load() after Save error = %v", err)
	}
	if s2.Config() != s.Config() {
		t.Errorf("round-trip mismatch: %+v != %+v", s2.Config(), s.Config())
	}
}
