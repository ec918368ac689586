// Package buckets groups valued trades into DTE×OTM% buckets and
// computes descriptive statistics of their percentage returns.
package buckets

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/K8pain/optopussy/internal/models"
)

// Config holds the bucket edges. Each consecutive pair of edges forms a
// half-open interval (lo, hi]; trades outside every interval are left
// out of the aggregation.
type Config struct {
	DTEEdges    []int
	OTMPctEdges []float64
}

// Intervals expands the configured edges.
func (c Config) Intervals() ([]models.IntInterval, []models.FloatInterval) {
	dte := make([]models.IntInterval, 0, len(c.DTEEdges)-1)
	for i := 0; i+1 < len(c.DTEEdges); i++ {
		dte = append(dte, models.IntInterval{Lo: c.DTEEdges[i], Hi: c.DTEEdges[i+1]})
	}
	otm := make([]models.FloatInterval, 0, len(c.OTMPctEdges)-1)
	for i := 0; i+1 < len(c.OTMPctEdges); i++ {
		otm = append(otm, models.FloatInterval{Lo: c.OTMPctEdges[i], Hi: c.OTMPctEdges[i+1]})
	}
	return dte, otm
}

// Aggregate assigns each trade to the bucket containing its entry DTE
// and entry OTM%, then summarizes each non-empty bucket: count, mean,
// sample standard deviation and the quartiles of pct change. Empty
// buckets are omitted. Output is ordered by (DTE lo, OTM lo).
func Aggregate(trades []*models.Trade, cfg Config) ([]*models.BucketStat, error) {
	dteIvs, otmIvs := cfg.Intervals()

	type cell struct{ d, o int }
	grouped := make(map[cell][]float64)
	for _, tr := range trades {
		d := findInt(dteIvs, tr.EntryDTE)
		o := findFloat(otmIvs, tr.OTMPct)
		if d < 0 || o < 0 {
			continue
		}
		k := cell{d: d, o: o}
		grouped[k] = append(grouped[k], tr.PctChange)
	}

	out := make([]*models.BucketStat, 0, len(grouped))
	for k, returns := range grouped {
		sort.Float64s(returns)
		mean, err := stats.Mean(returns)
		if err != nil {
			return nil, fmt.Errorf("bucket %v×%v mean: %w", dteIvs[k.d], otmIvs[k.o], err)
		}
		std := 0.0
		if len(returns) > 1 {
			std, err = stats.StandardDeviationSample(returns)
			if err != nil {
				return nil, fmt.Errorf("bucket %v×%v std: %w", dteIvs[k.d], otmIvs[k.o], err)
			}
		}
		out = append(out, &models.BucketStat{
			DTERange:    dteIvs[k.d],
			OTMPctRange: otmIvs[k.o],
			Count:       len(returns),
			Mean:        mean,
			Std:         std,
			P25:         percentile(returns, 25),
			P50:         percentile(returns, 50),
			P75:         percentile(returns, 75),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DTERange.Lo != out[j].DTERange.Lo {
			return out[i].DTERange.Lo < out[j].DTERange.Lo
		}
		return out[i].OTMPctRange.Lo < out[j].OTMPctRange.Lo
	})
	return out, nil
}

func findInt(ivs []models.IntInterval, v int) int {
	for i, iv := range ivs {
		if iv.Contains(v) {
			return i
		}
	}
	return -1
}

func findFloat(ivs []models.FloatInterval, v float64) int {
	for i, iv := range ivs {
		if iv.Contains(v) {
			return i
		}
	}
	return -1
}

// percentile interpolates linearly between order statistics, the same
// estimator numpy uses by default. The library's Percentile uses a
// different rank rule, so this stays local. Input must be sorted and
// non-empty.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := q / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (rank-float64(lo))*(sorted[hi]-sorted[lo])
}
