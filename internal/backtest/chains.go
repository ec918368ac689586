package backtest

import (
	"sort"
	"time"

	"github.com/K8pain/optopussy/internal/condor"
	"github.com/K8pain/optopussy/internal/models"
)

// chainSet holds every per-(underlying, day) chain built from the
// canonical series, sorted by day, and serves exit lookups with
// nearest-at-or-after semantics.
type chainSet struct {
	byUnderlying map[string][]*condor.Chain
}

var _ condor.ChainSource = (*chainSet)(nil)

// buildChains folds the canonical tick series into daily chains. Per
// (underlying, day, contract) only the day's latest snapshot survives;
// the day's reference price is the underlying price carried by the
// latest tick of that day.
func buildChains(ticks []*models.QuoteTick, underlying string) *chainSet {
	type dayKey struct {
		underlying string
		day        int64
	}
	latest := make(map[dayKey]map[string]*models.QuoteTick)
	dayOrder := make(map[dayKey]time.Time)

	for _, t := range ticks {
		if underlying != "" && t.Contract.Underlying != underlying {
			continue
		}
		day := t.Day()
		k := dayKey{underlying: t.Contract.Underlying, day: day.Unix()}
		byContract, ok := latest[k]
		if !ok {
			byContract = make(map[string]*models.QuoteTick)
			latest[k] = byContract
			dayOrder[k] = day
		}
		cur, ok := byContract[t.Instrument]
		if !ok || !t.Timestamp.Before(cur.Timestamp) {
			byContract[t.Instrument] = t
		}
	}

	set := &chainSet{byUnderlying: make(map[string][]*condor.Chain)}
	for k, byContract := range latest {
		chainTicks := make([]*models.QuoteTick, 0, len(byContract))
		var newest *models.QuoteTick
		for _, t := range byContract {
			chainTicks = append(chainTicks, t)
			if newest == nil || t.Timestamp.After(newest.Timestamp) {
				newest = t
			}
		}
		c := condor.NewChain(k.underlying, dayOrder[k], newest.UnderlyingPrice, chainTicks)
		set.byUnderlying[k.underlying] = append(set.byUnderlying[k.underlying], c)
	}
	for u := range set.byUnderlying {
		sort.Slice(set.byUnderlying[u], func(i, j int) bool {
			return set.byUnderlying[u][i].AsOf.Before(set.byUnderlying[u][j].AsOf)
		})
	}
	return set
}

// ChainAt returns the first chain whose day is at or after the given
// day, the nearest-available-snapshot rule for exits.
func (s *chainSet) ChainAt(underlying string, day time.Time) (*condor.Chain, bool) {
	chains := s.byUnderlying[underlying]
	i := sort.Search(len(chains), func(i int) bool {
		return !chains[i].AsOf.Before(day)
	})
	if i == len(chains) {
		return nil, false
	}
	return chains[i], true
}

// entryChains returns the chains eligible as entry groups, restricted
// to the optional [start, end] window, ordered by (underlying, day).
func (s *chainSet) entryChains(start, end time.Time) []*condor.Chain {
	var underlyings []string
	for u := range s.byUnderlying {
		underlyings = append(underlyings, u)
	}
	sort.Strings(underlyings)

	var out []*condor.Chain
	for _, u := range underlyings {
		for _, c := range s.byUnderlying[u] {
			if !start.IsZero() && c.AsOf.Before(start) {
				continue
			}
			if !end.IsZero() && c.AsOf.After(end) {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}
