package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Actor constants, recorded on ledger entries.
const (
	ActorOrchestrator = "orchestrator"
	ActorWorker       = "worker"
	ActorVerifier     = "verifier"
	ActorOperator     = "operator" // a human recording knowledge by hand
)

// Policy holds the tunable orchestration limits.
type Policy struct {
	MaxAttempts       int `json:"max_attempts"`        // delegation attempts before a task blocks
	VerifyRetries     int `json:"verify_retries"`      // internal re-runs of a flaky check before recording failed
	WorkerTimeoutSecs int `json:"worker_timeout_secs"` // ceiling per delegation; a timeout consumes an attempt
	CheckTimeoutSecs  int `json:"check_timeout_secs"`  // ceiling per criterion check
	LedgerWindow      int `json:"ledger_window"`       // max ledger entries passed to a delegation
	StorageRetries    int `json:"storage_retries"`     // retries with backoff before storage failure is fatal
}

// Config represents the flat foreman configuration.
type Config struct {
	Version       string   `json:"version"`
	WorkerCommand []string `json:"worker_command"` // argv of the worker process; request on stdin, report on stdout
	Policy        Policy   `json:"policy"`
}

// DefaultConfig returns a config with the policy defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:       "1",
		WorkerCommand: []string{"foreman-worker"},
		Policy: Policy{
			MaxAttempts:       3,
			VerifyRetries:     2,
			WorkerTimeoutSecs: 1800,
			CheckTimeoutSecs:  300,
			LedgerWindow:      20,
			StorageRetries:    3,
		},
	}
}

// LoadConfig reads .foreman/config.json from the specified directory.
// Resolution order: cwd only (no home fallback).
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ".foreman", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.fillDefaults()
	return &cfg, nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	foremanDir := filepath.Join(dir, ".foreman")
	if err := os.MkdirAll(foremanDir, 0755); err != nil {
		return fmt.Errorf("failed to create .foreman dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(foremanDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// fillDefaults replaces zero policy values with the defaults so a
// hand-edited config with omitted fields stays runnable.
func (c *Config) fillDefaults() {
	def := DefaultConfig().Policy
	if c.Policy.MaxAttempts <= 0 {
		c.Policy.MaxAttempts = def.MaxAttempts
	}
	if c.Policy.VerifyRetries < 0 {
		c.Policy.VerifyRetries = def.VerifyRetries
	}
	if c.Policy.WorkerTimeoutSecs <= 0 {
		c.Policy.WorkerTimeoutSecs = def.WorkerTimeoutSecs
	}
	if c.Policy.CheckTimeoutSecs <= 0 {
		c.Policy.CheckTimeoutSecs = def.CheckTimeoutSecs
	}
	if c.Policy.LedgerWindow <= 0 {
		c.Policy.LedgerWindow = def.LedgerWindow
	}
	if c.Policy.StorageRetries <= 0 {
		c.Policy.StorageRetries = def.StorageRetries
	}
}

// LedgerPath returns the ledger file path under dir.
func LedgerPath(dir string) string {
	return filepath.Join(dir, ".foreman", "ledger.jsonl")
}
