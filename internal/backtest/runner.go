// Package backtest orchestrates a full run: it shapes the canonical
// series into daily chains, fans (underlying, day) groups out over a
// worker pool, and merges results into deterministic order.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/K8pain/optopussy/internal/buckets"
	"github.com/K8pain/optopussy/internal/condor"
	"github.com/K8pain/optopussy/internal/models"
)

// Config are the run parameters the boundary hands to the core.
type Config struct {
	// Underlying restricts the run to one symbol; empty means all.
	Underlying string
	// Start and End bound the entry dates (inclusive); zero values mean
	// unbounded. Exit lookups ignore the window so late exits resolve.
	Start time.Time
	End   time.Time

	Engine   condor.Config
	Exit     condor.ExitRule
	Slippage string
	// Workers sizes the group pool; <= 0 means runtime.NumCPU().
	Workers int
}

// Result is everything one run produced.
type Result struct {
	RunID  string
	Trades []*models.Trade
	Stats  []*models.BucketStat
	// Groups is the number of (underlying, day) groups processed.
	Groups int
	// Degenerate counts combinations excluded for non-positive entry
	// cost; Unpriceable counts those without a usable exit quote.
	Degenerate  int64
	Unpriceable int64
}

// Runner executes backtest runs. Safe to reuse across runs.
type Runner struct {
	cfg     Config
	buckets buckets.Config
	slip    condor.Slippage
}

// NewRunner validates the slippage policy and returns a Runner.
func NewRunner(cfg Config, b buckets.Config) (*Runner, error) {
	slip, err := condor.SlippageByName(cfg.Slippage)
	if err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, buckets: b, slip: slip}, nil
}

// Run executes one backtest over the canonical tick series. Groups are
// independent, so they run concurrently; a done ctx only stops new
// groups from being submitted, it never aborts a group mid-enumeration.
// Given identical inputs and configuration the output is byte-identical
// across runs.
func (r *Runner) Run(ctx context.Context, series []*models.QuoteTick) (*Result, error) {
	runID := uuid.NewString()
	started := time.Now()
	logger := log.WithField("run_id", runID)

	set := buildChains(series, r.cfg.Underlying)
	groups := set.entryChains(r.cfg.Start, r.cfg.End)
	logger.WithFields(log.Fields{
		"ticks":    len(series),
		"groups":   len(groups),
		"slippage": r.slip.Name(),
	}).Info("starting backtest run")

	engine := condor.NewEngine(r.cfg.Engine)
	valuator := condor.NewValuator(r.slip, r.cfg.Exit)

	workers := r.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var degenerate, unpriceable atomic.Int64
	results := make([][]*models.Trade, len(groups))
	submitted := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, chain := range groups {
		if gctx.Err() != nil {
			break
		}
		i, chain := i, chain
		submitted++
		g.Go(func() error {
			var trades []*models.Trade
			for _, combo := range engine.Enumerate(chain) {
				trade, err := valuator.Value(combo, set)
				switch {
				case err == nil:
					trades = append(trades, trade)
				case errors.Is(err, condor.ErrDegenerateTrade):
					degenerate.Add(1)
					logger.WithField("expiration", combo.Expiration.Format("2006-01-02")).
						Debugf("excluded combination: %v", err)
				case errors.Is(err, condor.ErrMissingExitQuote):
					unpriceable.Add(1)
					logger.WithField("expiration", combo.Expiration.Format("2006-01-02")).
						Debugf("skipped combination: %v", err)
				default:
					return fmt.Errorf("valuing %s group %s: %w",
						chain.Underlying, chain.AsOf.Format("2006-01-02"), err)
				}
			}
			results[i] = trades
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var trades []*models.Trade
	for _, group := range results[:submitted] {
		trades = append(trades, group...)
	}
	sortTrades(trades)

	stats, err := buckets.Aggregate(trades, r.buckets)
	if err != nil {
		return nil, fmt.Errorf("aggregating trades: %w", err)
	}

	logger.WithFields(log.Fields{
		"trades":      len(trades),
		"buckets":     len(stats),
		"degenerate":  degenerate.Load(),
		"unpriceable": unpriceable.Load(),
		"elapsed":     time.Since(started).Round(time.Millisecond),
	}).Info("backtest run complete")

	return &Result{
		RunID:       runID,
		Trades:      trades,
		Stats:       stats,
		Groups:      submitted,
		Degenerate:  degenerate.Load(),
		Unpriceable: unpriceable.Load(),
	}, nil
}

// sortTrades fixes the egress order: underlying, entry date, expiration,
// then the four strikes ascending. The same keys order combinations
// inside each group, so pool scheduling cannot leak into the output.
func sortTrades(trades []*models.Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		a, b := trades[i], trades[j]
		if a.Condor.Underlying != b.Condor.Underlying {
			return a.Condor.Underlying < b.Condor.Underlying
		}
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		if !a.Condor.Expiration.Equal(b.Condor.Expiration) {
			return a.Condor.Expiration.Before(b.Condor.Expiration)
		}
		as, bs := a.Condor.Strikes(), b.Condor.Strikes()
		for k := range as {
			if as[k] != bs[k] {
				return as[k] < bs[k]
			}
		}
		return false
	})
}
