package normalize

import (
	"sort"

	"github.com/K8pain/optopussy/internal/models"
)

// Deduplicate collapses revisions sharing an (instrument, timestamp)
// key. Within a group the greatest revision id wins; revisionless ticks
// survive only when the whole group is revisionless; ties go to the
// later arrival. The result is unique per key and stable-sorted by
// timestamp ascending. Running it on its own output is a no-op.
func Deduplicate(ticks []*models.QuoteTick) []*models.QuoteTick {
	type key struct {
		instrument string
		ts         int64
	}
	type entry struct {
		tick  *models.QuoteTick
		first int // arrival index of the key, for stable output order
	}

	entries := make(map[key]*entry, len(ticks))
	order := make([]key, 0, len(ticks))

	for i, t := range ticks {
		k := key{instrument: t.Instrument, ts: t.Timestamp.UnixMilli()}
		cur, ok := entries[k]
		if !ok {
			entries[k] = &entry{tick: t, first: i}
			order = append(order, k)
			continue
		}
		if supersedes(t, cur.tick) {
			cur.tick = t
		}
	}

	out := make([]*models.QuoteTick, 0, len(order))
	firstSeen := make(map[*models.QuoteTick]int, len(order))
	for _, k := range order {
		e := entries[k]
		firstSeen[e.tick] = e.first
		out = append(out, e.tick)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return firstSeen[out[i]] < firstSeen[out[j]]
	})
	return out
}

// supersedes reports whether candidate replaces incumbent within one
// (instrument, timestamp) group. Equal revisions fall to the later
// arrival, which is the candidate.
func supersedes(candidate, incumbent *models.QuoteTick) bool {
	switch {
	case candidate.Revision == nil && incumbent.Revision == nil:
		return true
	case candidate.Revision == nil:
		return false
	case incumbent.Revision == nil:
		return true
	default:
		return *candidate.Revision >= *incumbent.Revision
	}
}
