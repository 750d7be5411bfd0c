// Package config handles cmdai configuration management
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cmdai-tools/cmdai/internal/types"
)

// BackendOllama is the only backend type recognized in v1.
const BackendOllama = "ollama"

// Defaults applied when the config file is missing or a field is absent.
const (
	DefaultModel        = "phi4:latest"
	DefaultURL          = "http://localhost:11434/api/generate"
	DefaultPromptPrefix = "You are a helpful assistant that provides accurate bash commands for Linux. " +
		"Be concise and only output the command, unless the user specifically asks for explanation."
)

// Config represents the persisted cmdai configuration.
type Config struct {
	Model         string `json:"model"`
	URL           string `json:"url"`
	BackendType   string `json:"backend_type"`
	PromptPrefix  string `json:"prompt_prefix"`
	AutoRunPrompt bool   `json:"auto_run_prompt"`
}

// Default returns the built-in default configuration.
func Default() Config {
	return Config{
		Model:         DefaultModel,
		URL:           DefaultURL,
		BackendType:   BackendOllama,
		PromptPrefix:  DefaultPromptPrefix,
		AutoRunPrompt: true,
	}
}

// LoadError reports a config file that could not be fully used. Loading
// still succeeds with defaults filled in for the broken parts; the caller
// may render the problem but should not abort.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("config %s: %v (using defaults)", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// UnknownOptionError reports an Update against a key outside the schema.
type UnknownOptionError struct {
	Key string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("unknown option: %s (valid: %s)", e.Key, strings.Join(Keys(), ", "))
}

// Keys returns the valid option names for Update.
func Keys() []string {
	return []string{"model", "url", "backend_type", "prompt_prefix", "auto_run_prompt"}
}

// Store owns the config file at a fixed path. It is not safe for use from
// multiple processes; concurrent external edits are last-writer-wins.
type Store struct {
	path string
	cfg  Config

	// Fields present in the file but outside the schema, carried through
	// save cycles untouched.
	extras map[string]json.RawMessage
}

// NewStore creates a store for the given path, or the default per-user
// path when empty.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	return &Store{path: path, cfg: Default()}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "cmdai", "config.json")
}

// DefaultHistoryPath returns the per-user history database location.
func DefaultHistoryPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".local", "share", "cmdai", "history.db")
}

// DefaultInputHistoryPath returns the readline history file location.
func DefaultInputHistoryPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".local", "share", "cmdai", "input_history")
}

// Path returns the config file path this store reads and writes.
func (s *Store) Path() string { return s.path }

// Config returns the current in-memory configuration.
func (s *Store) Config() Config { return s.cfg }

// Load reads the config file. A missing file is the first-run condition:
// defaults are used and nothing is written. A malformed file or invalid
// field values also fall back to defaults, reported via *LoadError. The
// only fatal condition is the path existing as a directory.
func (s *Store) Load() error {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.cfg = Default()
			return nil
		}
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", s.path)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.cfg = Default()
		return &LoadError{Path: s.path, Err: err}
	}

	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		s.cfg = Default()
		return &LoadError{Path: s.path, Err: err}
	}

	cfg := Default()
	var fieldErrs []string

	if v, ok := raw["model"]; ok {
		if err := json.Unmarshal(v, &cfg.Model); err != nil || cfg.Model == "" {
			cfg.Model = DefaultModel
			fieldErrs = append(fieldErrs, "model")
		}
		delete(raw, "model")
	}
	if v, ok := raw["url"]; ok {
		var u string
		if err := json.Unmarshal(v, &u); err != nil || validateURL(u) != nil {
			fieldErrs = append(fieldErrs, "url")
		} else {
			cfg.URL = u
		}
		delete(raw, "url")
	}
	if v, ok := raw["backend_type"]; ok {
		var bt string
		if err := json.Unmarshal(v, &bt); err != nil || validateBackendType(bt) != nil {
			fieldErrs = append(fieldErrs, "backend_type")
		} else {
			cfg.BackendType = bt
		}
		delete(raw, "backend_type")
	}
	if v, ok := raw["prompt_prefix"]; ok {
		if err := json.Unmarshal(v, &cfg.PromptPrefix); err != nil {
			cfg.PromptPrefix = DefaultPromptPrefix
			fieldErrs = append(fieldErrs, "prompt_prefix")
		}
		delete(raw, "prompt_prefix")
	}
	if v, ok := raw["auto_run_prompt"]; ok {
		if err := json.Unmarshal(v, &cfg.AutoRunPrompt); err != nil {
			cfg.AutoRunPrompt = true
			fieldErrs = append(fieldErrs, "auto_run_prompt")
		}
		delete(raw, "auto_run_prompt")
	}

	s.cfg = cfg
	s.extras = raw

	if len(fieldErrs) > 0 {
		return &LoadError{
			Path: s.path,
			Err:  fmt.Errorf("invalid fields: %s", strings.Join(fieldErrs, ", ")),
		}
	}
	return nil
}

// Save serializes the full configuration, preserved extras included, and
// overwrites the config file.
func (s *Store) Save() error {
	out := map[string]json.RawMessage{}
	for k, v := range s.extras {
		out[k] = v
	}

	known, err := json.Marshal(s.cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(known, &fields); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	for k, v := range fields {
		out[k] = v
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return &types.PersistenceError{Op: "save config", Path: s.path, Err: err}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return &types.PersistenceError{Op: "save config", Path: s.path, Err: err}
	}
	return nil
}

// Update validates key against the schema, applies the change in memory
// and saves the file. An unrecognized key fails with *UnknownOptionError
// and nothing is mutated.
func (s *Store) Update(key, value string) error {
	cfg := s.cfg

	switch key {
	case "model":
		if value == "" {
			return fmt.Errorf("model cannot be empty")
		}
		cfg.Model = value
	case "url":
		if err := validateURL(value); err != nil {
			return err
		}
		cfg.URL = value
	case "backend_type":
		if err := validateBackendType(value); err != nil {
			return err
		}
		cfg.BackendType = value
	case "prompt_prefix":
		cfg.PromptPrefix = value
	case "auto_run_prompt":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("auto_run_prompt must be true or false")
		}
		cfg.AutoRunPrompt = b
	default:
		return &UnknownOptionError{Key: key}
	}

	s.cfg = cfg
	return s.Save()
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid url %q: must be an http or https endpoint", raw)
	}
	return nil
}

func validateBackendType(bt string) error {
	if bt != BackendOllama {
		return fmt.Errorf("unknown backend type %q (supported: %s)", bt, BackendOllama)
	}
	return nil
}
