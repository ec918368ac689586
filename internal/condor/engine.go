package condor

import (
	"sort"
	"time"

	"github.com/K8pain/optopussy/internal/models"
)

// Config bounds the combinations the engine enumerates.
type Config struct {
	// MinEntryDTE and MaxEntryDTE bound days-to-expiration at entry,
	// inclusive on both ends.
	MinEntryDTE int
	MaxEntryDTE int
	// MaxOTMPct is the widest out-of-the-money distance any leg may
	// have, as a fraction of the underlying reference price.
	MaxOTMPct float64
	// MinBidAsk drops legs whose bid or ask is below this floor,
	// guarding against stale one-tick quotes.
	MinBidAsk float64
}

// Engine enumerates every valid iron condor on a chain. It is stateless
// beyond its configuration and safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine returns an Engine with the given bounds.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Enumerate returns all condor combinations on the chain whose
// expiration DTE and leg OTM percentages satisfy the configuration.
// The result is ordered by expiration, then the four strikes ascending.
// An empty result is normal, not an error.
func (e *Engine) Enumerate(chain *Chain) []*models.Condor {
	byExp := make(map[time.Time][]*models.QuoteTick)
	var exps []time.Time
	for _, t := range chain.Ticks {
		dte := t.Contract.DTE(chain.AsOf)
		if dte < e.cfg.MinEntryDTE || dte > e.cfg.MaxEntryDTE {
			continue
		}
		exp := t.Contract.Expiration
		if _, ok := byExp[exp]; !ok {
			exps = append(exps, exp)
		}
		byExp[exp] = append(byExp[exp], t)
	}
	sort.Slice(exps, func(i, j int) bool { return exps[i].Before(exps[j]) })

	var out []*models.Condor
	for _, exp := range exps {
		out = append(out, e.enumerateExpiration(chain, exp, byExp[exp])...)
	}
	return out
}

// enumerateExpiration pairs puts and calls within one expiration and
// crosses the pairs. OTM filtering runs before pairing: the pair loops
// are quadratic in the candidate counts and the filter is what keeps
// them small.
func (e *Engine) enumerateExpiration(chain *Chain, exp time.Time, ticks []*models.QuoteTick) []*models.Condor {
	var puts, calls []*models.QuoteTick
	for _, t := range ticks {
		if !e.candidate(t) {
			continue
		}
		if t.Contract.Type == models.Put {
			puts = append(puts, t)
		} else {
			calls = append(calls, t)
		}
	}
	sort.SliceStable(puts, func(i, j int) bool { return puts[i].Contract.Strike < puts[j].Contract.Strike })
	sort.SliceStable(calls, func(i, j int) bool { return calls[i].Contract.Strike < calls[j].Contract.Strike })

	// Put pairs: long wing strictly further out-of-the-money.
	type pair struct{ long, short *models.QuoteTick }
	var putPairs, callPairs []pair
	for i := 0; i < len(puts); i++ {
		for j := i + 1; j < len(puts); j++ {
			if puts[i].Contract.Strike < puts[j].Contract.Strike {
				putPairs = append(putPairs, pair{long: puts[i], short: puts[j]})
			}
		}
	}
	for i := 0; i < len(calls); i++ {
		for j := i + 1; j < len(calls); j++ {
			if calls[i].Contract.Strike < calls[j].Contract.Strike {
				callPairs = append(callPairs, pair{short: calls[i], long: calls[j]})
			}
		}
	}

	var out []*models.Condor
	for _, pp := range putPairs {
		for _, cp := range callPairs {
			// Sold legs must not overlap in strike.
			if pp.short.Contract.Strike >= cp.short.Contract.Strike {
				continue
			}
			out = append(out, &models.Condor{
				Underlying: chain.Underlying,
				Expiration: exp,
				EntryDate:  chain.AsOf,
				PutLong:    models.Leg{Contract: pp.long.Contract, Side: models.Long, Tick: pp.long},
				PutShort:   models.Leg{Contract: pp.short.Contract, Side: models.Short, Tick: pp.short},
				CallShort:  models.Leg{Contract: cp.short.Contract, Side: models.Short, Tick: cp.short},
				CallLong:   models.Leg{Contract: cp.long.Contract, Side: models.Long, Tick: cp.long},
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return strikesLess(out[i], out[j]) })
	return out
}

// candidate keeps legs with a two-sided market at or above the bid/ask
// floor, strictly out of the money on the right side of the reference,
// and within the OTM window. The reference is the leg's own snapshot
// underlying price.
func (e *Engine) candidate(t *models.QuoteTick) bool {
	if !t.HasQuote() || *t.Bid < e.cfg.MinBidAsk || *t.Ask < e.cfg.MinBidAsk {
		return false
	}
	ref := t.UnderlyingPrice
	switch t.Contract.Type {
	case models.Put:
		if t.Contract.Strike >= ref {
			return false
		}
	case models.Call:
		if t.Contract.Strike <= ref {
			return false
		}
	}
	return t.OTMPct() <= e.cfg.MaxOTMPct
}

// strikesLess orders condors by their four strikes ascending.
func strikesLess(a, b *models.Condor) bool {
	as, bs := a.Strikes(), b.Strikes()
	for k := range as {
		if as[k] != bs[k] {
			return as[k] < bs[k]
		}
	}
	return false
}
