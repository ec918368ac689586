package condor

import (
	"errors"
	"fmt"
	"math"

	"github.com/K8pain/optopussy/internal/models"
)

// ErrDegenerateTrade marks a combination whose entry cost is zero or
// negative. That signals a data or parameter anomaly; such trades are
// excluded from aggregation rather than coerced to zero or infinity.
var ErrDegenerateTrade = errors.New("degenerate trade: non-positive entry cost")

// ErrMissingExitQuote marks a combination that cannot be exited: no
// snapshot at or after the exit date, or a leg without a two-sided
// market there.
var ErrMissingExitQuote = errors.New("no usable exit quote")

// ExitRule says when a trade is closed: at a fixed DTE against market
// quotes, or held to expiration and settled at intrinsic value.
type ExitRule struct {
	DTE              int
	HoldToExpiration bool
}

// Valuator computes entry cost, exit proceeds and percentage return for
// condor combinations under one slippage policy.
type Valuator struct {
	slip Slippage
	exit ExitRule
}

// NewValuator returns a Valuator for the given policy and exit rule.
func NewValuator(slip Slippage, exit ExitRule) *Valuator {
	return &Valuator{slip: slip, exit: exit}
}

// Value prices one combination. Entry fills come from the legs' entry
// snapshots; exit fills from the nearest chain at or after the exit
// date via source. Errors are per-trade and recoverable: the caller
// skips the trade and continues.
func (v *Valuator) Value(c *models.Condor, source ChainSource) (*models.Trade, error) {
	entryDTE := c.EntryDTE()
	if !v.exit.HoldToExpiration && entryDTE <= v.exit.DTE {
		return nil, fmt.Errorf("%w: entry dte %d not after exit dte %d",
			ErrMissingExitQuote, entryDTE, v.exit.DTE)
	}

	entry := v.entryCost(c)
	if entry <= 0 {
		return nil, fmt.Errorf("%w: %.8f", ErrDegenerateTrade, entry)
	}

	exitDay := c.Expiration
	if !v.exit.HoldToExpiration {
		exitDay = c.Expiration.AddDate(0, 0, -v.exit.DTE)
	}
	chain, ok := source.ChainAt(c.Underlying, exitDay)
	if !ok {
		return nil, fmt.Errorf("%w: no snapshot at or after %s",
			ErrMissingExitQuote, exitDay.Format("2006-01-02"))
	}

	var proceeds float64
	if v.exit.HoldToExpiration {
		proceeds = settleIntrinsic(c, chain.Reference)
	} else {
		var err error
		proceeds, err = v.exitProceeds(c, chain)
		if err != nil {
			return nil, err
		}
	}

	return &models.Trade{
		Condor:       c,
		EntryDate:    c.EntryDate,
		EntryDTE:     entryDTE,
		ExitDate:     chain.AsOf,
		EntryCost:    entry,
		ExitProceeds: proceeds,
		PctChange:    (proceeds - entry) / entry,
		OTMPct:       (c.PutShort.Tick.OTMPct() + c.CallShort.Tick.OTMPct()) / 2,
	}, nil
}

// entryCost is the net premium paid to open: buy both wings, sell both
// inner legs, under the slippage policy. Positive means net debit.
func (v *Valuator) entryCost(c *models.Condor) float64 {
	s := v.slip
	return s.Buy(c.PutLong.Tick) - s.Sell(c.PutShort.Tick) +
		s.Buy(c.CallLong.Tick) - s.Sell(c.CallShort.Tick)
}

// exitProceeds unwinds the position at the exit chain: sell the wings,
// buy back the inner legs.
func (v *Valuator) exitProceeds(c *models.Condor, chain *Chain) (float64, error) {
	legs := c.Legs()
	ticks := make([]*models.QuoteTick, len(legs))
	for i, leg := range legs {
		t, ok := chain.TickFor(leg.Contract)
		if !ok || !t.HasQuote() {
			return 0, fmt.Errorf("%w: %s on %s", ErrMissingExitQuote,
				leg.Contract.Instrument(), chain.AsOf.Format("2006-01-02"))
		}
		ticks[i] = t
	}
	s := v.slip
	var proceeds float64
	for i, leg := range legs {
		if leg.Side == models.Long {
			proceeds += s.Sell(ticks[i])
		} else {
			proceeds -= s.Buy(ticks[i])
		}
	}
	return proceeds, nil
}

// settleIntrinsic values every leg at expiration against the settlement
// reference price. No spread is crossed at settlement.
func settleIntrinsic(c *models.Condor, reference float64) float64 {
	var proceeds float64
	for _, leg := range c.Legs() {
		value := intrinsic(leg.Contract, reference)
		if leg.Side == models.Long {
			proceeds += value
		} else {
			proceeds -= value
		}
	}
	return proceeds
}

// intrinsic is the exercise value of one contract at the given
// underlying price.
func intrinsic(contract models.Contract, underlying float64) float64 {
	if contract.Type == models.Put {
		return math.Max(contract.Strike-underlying, 0)
	}
	return math.Max(underlying-contract.Strike, 0)
}
