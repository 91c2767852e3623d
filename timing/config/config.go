// Package config holds the scheduler's run-time configuration: optional
// overrides for the machine parameters that would otherwise come only
// from the input file header, plus trace verbosity.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// RunConfig overrides or supplements the machine configuration parsed
// from an input file's header line. Every field is optional — a zero
// value means "use whatever the input file says."
type RunConfig struct {
	// IssueWidth, if nonzero, overrides the issue width parsed from the
	// input file header.
	IssueWidth int `json:"issue_width,omitempty"`

	// PhysRegCount, if nonzero, overrides the physical register count
	// parsed from the input file header.
	PhysRegCount int `json:"phys_reg_count,omitempty"`

	// Verbose turns on debug-level cycle tracing.
	Verbose bool `json:"verbose,omitempty"`
}

// DefaultRunConfig returns a RunConfig with no overrides: every field is
// zero, so the scheduler uses the input file header as-is.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{}
}

// LoadConfig loads a RunConfig from a JSON file.
func LoadConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading run config file: %w", err)
	}

	cfg := DefaultRunConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing run config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid run config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes a RunConfig to a JSON file.
func (c *RunConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: serializing run config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing run config file: %w", err)
	}

	return nil
}

// Validate checks that any set override is within range. Negative
// overrides are rejected; zero means "no override" and is always valid.
func (c *RunConfig) Validate() error {
	if c.IssueWidth < 0 {
		return fmt.Errorf("issue_width must be >= 0")
	}
	if c.PhysRegCount < 0 {
		return fmt.Errorf("phys_reg_count must be >= 0")
	}
	return nil
}

// Clone returns a deep copy of the RunConfig.
func (c *RunConfig) Clone() *RunConfig {
	clone := *c
	return &clone
}

// ApplyOverrides returns the effective physical register count and issue
// width given this config's overrides and the values parsed from the
// input file header.
func (c *RunConfig) ApplyOverrides(headerPhysRegCount, headerIssueWidth int) (physRegCount, issueWidth int) {
	physRegCount = headerPhysRegCount
	issueWidth = headerIssueWidth
	if c.PhysRegCount != 0 {
		physRegCount = c.PhysRegCount
	}
	if c.IssueWidth != 0 {
		issueWidth = c.IssueWidth
	}
	return physRegCount, issueWidth
}
