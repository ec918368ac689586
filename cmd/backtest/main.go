// Command backtest normalizes a raw option-quote snapshot CSV and runs
// the iron condor backtest over it, writing trades, bucket statistics
// and quarantined rows as CSV artifacts.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/K8pain/optopussy/internal/backtest"
	"github.com/K8pain/optopussy/internal/buckets"
	"github.com/K8pain/optopussy/internal/condor"
	"github.com/K8pain/optopussy/internal/config"
	"github.com/K8pain/optopussy/internal/models"
	"github.com/K8pain/optopussy/internal/normalize"
	"github.com/K8pain/optopussy/internal/report"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Normalize venue option snapshots and backtest iron condors",
	Long: `Reads a raw option-quote snapshot CSV (downloader column layout),
normalizes it into a canonical per-instrument tick series, enumerates
iron condor combinations under the configured DTE/OTM bounds, values
them under the configured slippage policy, and writes per-trade records
plus DTE×OTM bucket statistics.`,
	SilenceUsage: true,
	RunE:         run,
}

func main() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to configuration file")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	raws, err := readSnapshot(cfg.Input)
	if err != nil {
		return err
	}

	quarantine := report.NewCSVQuarantine()
	normalizer := normalize.NewNormalizer(quarantine)
	series := normalize.Deduplicate(normalizer.NormalizeAll(raws))

	runner, err := backtest.NewRunner(backtest.Config{
		Underlying: cfg.Backtest.Underlying,
		Start:      cfg.StartDate(),
		End:        cfg.EndDate(),
		Engine: condor.Config{
			MinEntryDTE: cfg.Backtest.MinEntryDTE,
			MaxEntryDTE: cfg.Backtest.MaxEntryDTE,
			MaxOTMPct:   cfg.Backtest.MaxOTMPct,
			MinBidAsk:   cfg.Backtest.MinBidAsk,
		},
		Exit: condor.ExitRule{
			DTE:              cfg.Backtest.ExitDTE,
			HoldToExpiration: cfg.Backtest.HoldToExpiration,
		},
		Slippage: cfg.Backtest.Slippage,
		Workers:  cfg.Backtest.Workers,
	}, buckets.Config{
		DTEEdges:    cfg.Buckets.DTEEdges,
		OTMPctEdges: cfg.Buckets.OTMPctEdges,
	})
	if err != nil {
		return err
	}

	result, err := runner.Run(ctx, series)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o750); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := report.WriteTrades(filepath.Join(cfg.OutputDir, "iron_condor_trades.csv"), result.Trades); err != nil {
		return err
	}
	if err := report.WriteBucketStats(filepath.Join(cfg.OutputDir, "iron_condor_stats.csv"), result.Stats); err != nil {
		return err
	}
	if err := quarantine.Flush(filepath.Join(cfg.OutputDir, "quarantine.csv")); err != nil {
		return err
	}

	report.PrintBucketSummary(os.Stdout, result.Stats, 8)
	log.WithFields(log.Fields{
		"run_id":      result.RunID,
		"trades":      len(result.Trades),
		"buckets":     len(result.Stats),
		"quarantined": quarantine.Count(),
		"output_dir":  cfg.OutputDir,
	}).Info("artifacts written")
	return nil
}

// readSnapshot loads the downloader CSV. Column mismatches are fine:
// unknown columns are ignored and absent ones stay empty for the
// normalizer to judge.
func readSnapshot(path string) ([]*models.RawQuote, error) {
	f, err := os.Open(path) // #nosec G304 -- path is the user's configured input file
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer func() { _ = f.Close() }()

	var raws []*models.RawQuote
	if err := gocsv.UnmarshalFile(f, &raws); err != nil {
		return nil, fmt.Errorf("reading input csv: %w", err)
	}
	log.WithFields(log.Fields{"rows": len(raws), "path": path}).Info("loaded raw snapshot")
	return raws, nil
}
