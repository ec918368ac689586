package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.yaml.example"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Input != "deribit_snapshot.csv" {
		t.Errorf("input = %q", cfg.Input)
	}
	if cfg.OutputDir != "artifacts" || cfg.LogLevel != "info" {
		t.Errorf("output_dir=%q log_level=%q", cfg.OutputDir, cfg.LogLevel)
	}
	if cfg.Backtest.Underlying != "ETH" {
		t.Errorf("underlying = %q", cfg.Backtest.Underlying)
	}
	if cfg.Backtest.MaxEntryDTE != 45 || cfg.Backtest.MaxOTMPct != 0.30 {
		t.Errorf("entry bounds = %d/%v", cfg.Backtest.MaxEntryDTE, cfg.Backtest.MaxOTMPct)
	}
	if cfg.Backtest.ExitDTE != 7 || cfg.Backtest.HoldToExpiration {
		t.Errorf("exit = %d/%v", cfg.Backtest.ExitDTE, cfg.Backtest.HoldToExpiration)
	}
	if cfg.Backtest.Slippage != "spread" {
		t.Errorf("slippage = %q", cfg.Backtest.Slippage)
	}
	if len(cfg.Buckets.DTEEdges) != 8 || len(cfg.Buckets.OTMPctEdges) != 7 {
		t.Errorf("edges = %v / %v", cfg.Buckets.DTEEdges, cfg.Buckets.OTMPctEdges)
	}
	if !cfg.StartDate().IsZero() || !cfg.EndDate().IsZero() {
		t.Errorf("window = %v..%v, want unbounded", cfg.StartDate(), cfg.EndDate())
	}
}

func TestLoad_InvalidPath(t *testing.T) {
	if _, err := Load("nonexistent.yaml"); err == nil {
		t.Fatal("Load succeeded on a missing file")
	}
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("SNAPSHOT_FILE", "august.csv")

	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `input: ${SNAPSHOT_FILE}
backtest:
  max_entry_dte: 45
  max_otm_pct: 0.3
buckets:
  dte_edges: [0, 7]
  otm_pct_edges: [0.0, 0.1]
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Input != "august.csv" {
		t.Errorf("input = %q, want the expanded env value", cfg.Input)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `input: data.csv
bactkest:
  max_entry_dte: 45
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted a misspelled section")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Input: "data.csv",
			Backtest: BacktestConfig{
				MaxEntryDTE: 45,
				MaxOTMPct:   0.30,
				ExitDTE:     7,
				Slippage:    "spread",
			},
			Buckets: BucketConfig{
				DTEEdges:    []int{0, 7, 14},
				OTMPctEdges: []float64{0.0, 0.05, 0.10},
			},
		}
	}

	t.Run("defaults filled", func(t *testing.T) {
		cfg := valid()
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate returned error: %v", err)
		}
		if cfg.OutputDir != "artifacts" {
			t.Errorf("output_dir = %q", cfg.OutputDir)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("log_level = %q", cfg.LogLevel)
		}
		if cfg.Backtest.MinBidAsk != defaultMinBidAsk {
			t.Errorf("min_bid_ask = %v", cfg.Backtest.MinBidAsk)
		}
	})

	t.Run("window parsed", func(t *testing.T) {
		cfg := valid()
		cfg.Backtest.Start = "2023-08-01"
		cfg.Backtest.End = "2023-08-31"
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate returned error: %v", err)
		}
		want := time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)
		if !cfg.StartDate().Equal(want) {
			t.Errorf("start = %v, want %v", cfg.StartDate(), want)
		}
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing input",
			mutate:  func(c *Config) { c.Input = "" },
			wantErr: "input is required",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "trace" },
			wantErr: "log_level",
		},
		{
			name:    "dte bounds inverted",
			mutate:  func(c *Config) { c.Backtest.MinEntryDTE = 50 },
			wantErr: "min_entry_dte",
		},
		{
			name:    "exit beyond max entry",
			mutate:  func(c *Config) { c.Backtest.ExitDTE = 60 },
			wantErr: "exit_dte",
		},
		{
			name: "hold and exit dte together",
			mutate: func(c *Config) {
				c.Backtest.HoldToExpiration = true
			},
			wantErr: "mutually exclusive",
		},
		{
			name:    "unknown slippage",
			mutate:  func(c *Config) { c.Backtest.Slippage = "half" },
			wantErr: "slippage",
		},
		{
			name:    "bad start date",
			mutate:  func(c *Config) { c.Backtest.Start = "08/01/2023" },
			wantErr: "backtest.start",
		},
		{
			name: "window inverted",
			mutate: func(c *Config) {
				c.Backtest.Start = "2023-09-01"
				c.Backtest.End = "2023-08-01"
			},
			wantErr: "must not be after",
		},
		{
			name:    "single bucket edge",
			mutate:  func(c *Config) { c.Buckets.DTEEdges = []int{7} },
			wantErr: "dte_edges",
		},
		{
			name:    "non-increasing edges",
			mutate:  func(c *Config) { c.Buckets.OTMPctEdges = []float64{0.0, 0.10, 0.10} },
			wantErr: "otm_pct_edges",
		},
		{
			name:    "negative otm edge",
			mutate:  func(c *Config) { c.Buckets.OTMPctEdges = []float64{-0.05, 0.10} },
			wantErr: "otm_pct_edges",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
