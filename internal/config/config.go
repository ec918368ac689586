// Package config provides configuration management for the backtest
// pipeline. Validation is fatal: a bad configuration rejects the run
// before any record is processed.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

const (
	// defaultMinBidAsk is the quote floor used when backtest.min_bid_ask
	// is unset; it matches the venue's smallest meaningful premium.
	defaultMinBidAsk = 0.0001
	// defaultOutputDir receives the CSV artifacts when output_dir is unset.
	defaultOutputDir = "artifacts"
)

// Config represents the complete application configuration.
type Config struct {
	Input     string         `yaml:"input"`
	OutputDir string         `yaml:"output_dir"`
	LogLevel  string         `yaml:"log_level"` // debug | info | warn | error
	Backtest  BacktestConfig `yaml:"backtest"`
	Buckets   BucketConfig   `yaml:"buckets"`
}

// BacktestConfig defines the run parameters of the combinatorial core.
type BacktestConfig struct {
	Underlying string `yaml:"underlying"` // empty = all underlyings
	Start      string `yaml:"start"`      // YYYY-MM-DD, empty = unbounded
	End        string `yaml:"end"`

	MinEntryDTE int     `yaml:"min_entry_dte"`
	MaxEntryDTE int     `yaml:"max_entry_dte"`
	MaxOTMPct   float64 `yaml:"max_otm_pct"`
	MinBidAsk   float64 `yaml:"min_bid_ask"`

	ExitDTE          int    `yaml:"exit_dte"`
	HoldToExpiration bool   `yaml:"hold_to_expiration"`
	Slippage         string `yaml:"slippage"` // none | spread
	Workers          int    `yaml:"workers"`  // 0 = NumCPU
}

// BucketConfig defines the aggregation bucket edges. Consecutive edges
// form half-open (lo, hi] intervals.
type BucketConfig struct {
	DTEEdges    []int     `yaml:"dte_edges"`
	OTMPctEdges []float64 `yaml:"otm_pct_edges"`
}

// Load reads and parses the configuration file from the specified path.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- configPath is a user-provided config file path
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var config Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate checks that all configuration values are valid and
// consistent, and fills defaults.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input is required")
	}
	if c.OutputDir == "" {
		c.OutputDir = defaultOutputDir
	}
	switch c.LogLevel {
	case "":
		c.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug|info|warn|error")
	}

	b := &c.Backtest
	if b.MinEntryDTE < 0 {
		return fmt.Errorf("backtest.min_entry_dte must be >= 0")
	}
	if b.MaxEntryDTE <= 0 {
		return fmt.Errorf("backtest.max_entry_dte must be > 0")
	}
	if b.MinEntryDTE > b.MaxEntryDTE {
		return fmt.Errorf("backtest.min_entry_dte (%d) must be <= backtest.max_entry_dte (%d)",
			b.MinEntryDTE, b.MaxEntryDTE)
	}
	if b.MaxOTMPct <= 0 {
		return fmt.Errorf("backtest.max_otm_pct must be > 0")
	}
	if b.MinBidAsk < 0 {
		return fmt.Errorf("backtest.min_bid_ask must be >= 0")
	}
	if b.MinBidAsk == 0 {
		b.MinBidAsk = defaultMinBidAsk
	}
	if b.ExitDTE < 0 {
		return fmt.Errorf("backtest.exit_dte must be >= 0")
	}
	if b.ExitDTE > b.MaxEntryDTE {
		return fmt.Errorf("backtest.exit_dte (%d) must be <= backtest.max_entry_dte (%d)",
			b.ExitDTE, b.MaxEntryDTE)
	}
	if b.HoldToExpiration && b.ExitDTE != 0 {
		return fmt.Errorf("backtest.exit_dte and backtest.hold_to_expiration are mutually exclusive")
	}
	switch b.Slippage {
	case "", "none", "spread":
	default:
		return fmt.Errorf("backtest.slippage must be 'none' or 'spread'")
	}
	if b.Workers < 0 {
		return fmt.Errorf("backtest.workers must be >= 0")
	}

	start, err := parseDate(b.Start)
	if err != nil {
		return fmt.Errorf("backtest.start: %w", err)
	}
	end, err := parseDate(b.End)
	if err != nil {
		return fmt.Errorf("backtest.end: %w", err)
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return fmt.Errorf("backtest.start must not be after backtest.end")
	}

	if err := validateIntEdges(c.Buckets.DTEEdges); err != nil {
		return fmt.Errorf("buckets.dte_edges: %w", err)
	}
	if err := validateFloatEdges(c.Buckets.OTMPctEdges); err != nil {
		return fmt.Errorf("buckets.otm_pct_edges: %w", err)
	}
	return nil
}

// StartDate returns the parsed entry window start; zero when unset.
// Only meaningful after Validate has succeeded.
func (c *Config) StartDate() time.Time {
	t, _ := parseDate(c.Backtest.Start)
	return t
}

// EndDate returns the parsed entry window end; zero when unset.
func (c *Config) EndDate() time.Time {
	t, _ := parseDate(c.Backtest.End)
	return t
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("want YYYY-MM-DD, got %q", s)
	}
	return t, nil
}

func validateIntEdges(edges []int) error {
	if len(edges) < 2 {
		return fmt.Errorf("need at least 2 edges")
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return fmt.Errorf("edges must be strictly increasing")
		}
	}
	return nil
}

func validateFloatEdges(edges []float64) error {
	if len(edges) < 2 {
		return fmt.Errorf("need at least 2 edges")
	}
	if edges[0] < 0 {
		return fmt.Errorf("edges must be non-negative")
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return fmt.Errorf("edges must be strictly increasing")
		}
	}
	return nil
}
