// Package condor enumerates and values 4-leg iron condor combinations
// over a canonical option-quote series.
package condor

import (
	"sort"
	"time"

	"github.com/K8pain/optopussy/internal/models"
)

// Chain is the option chain of one underlying on one as-of day: at most
// one tick per contract (the day's latest snapshot), sorted by
// (expiration, type, strike) so enumeration order is deterministic.
type Chain struct {
	Underlying string
	AsOf       time.Time // UTC calendar date
	// Reference is the underlying price of the day's latest snapshot,
	// used for settlement when holding to expiration.
	Reference float64
	Ticks     []*models.QuoteTick

	byInstrument map[string]*models.QuoteTick
}

// NewChain sorts the ticks and indexes them by instrument. The caller
// guarantees at most one tick per contract.
func NewChain(underlying string, asOf time.Time, reference float64, ticks []*models.QuoteTick) *Chain {
	sort.SliceStable(ticks, func(i, j int) bool {
		a, b := ticks[i].Contract, ticks[j].Contract
		if !a.Expiration.Equal(b.Expiration) {
			return a.Expiration.Before(b.Expiration)
		}
		if a.Type != b.Type {
			return a.Type < b.Type // calls before puts
		}
		return a.Strike < b.Strike
	})
	idx := make(map[string]*models.QuoteTick, len(ticks))
	for _, t := range ticks {
		idx[t.Instrument] = t
	}
	return &Chain{
		Underlying:   underlying,
		AsOf:         asOf,
		Reference:    reference,
		Ticks:        ticks,
		byInstrument: idx,
	}
}

// TickFor returns the chain's tick for one contract, if present.
func (c *Chain) TickFor(contract models.Contract) (*models.QuoteTick, bool) {
	t, ok := c.byInstrument[contract.Instrument()]
	return t, ok
}

// ChainSource looks up the chain at the first day with data at or after
// the given day. Exit valuation uses the nearest-available snapshot at
// or after the exit date.
type ChainSource interface {
	ChainAt(underlying string, day time.Time) (*Chain, bool)
}
