// Package report is the egress boundary: CSV artifacts for trades,
// bucket statistics and quarantined input rows, plus a console summary.
package report

import (
	"fmt"
	"os"
	"sync"

	"github.com/gocarina/gocsv"

	"github.com/K8pain/optopussy/internal/models"
)

// TradeRecord is the trades.csv row shape. Prices keep full float
// precision; rounding is for the console only.
type TradeRecord struct {
	Underlying      string  `csv:"underlying"`
	Expiration      string  `csv:"expiration"`
	EntryDate       string  `csv:"entry_date"`
	EntryDTE        int     `csv:"entry_dte"`
	ExitDate        string  `csv:"exit_date"`
	StrikePutLong   float64 `csv:"strike_put_long"`
	StrikePutShort  float64 `csv:"strike_put_short"`
	StrikeCallShort float64 `csv:"strike_call_short"`
	StrikeCallLong  float64 `csv:"strike_call_long"`
	EntryCost       float64 `csv:"entry_cost"`
	ExitProceeds    float64 `csv:"exit_proceeds"`
	PctChange       float64 `csv:"pct_change"`
	OTMPct          float64 `csv:"otm_pct"`
}

// WriteTrades writes one row per valued combination.
func WriteTrades(path string, trades []*models.Trade) error {
	records := make([]*TradeRecord, 0, len(trades))
	for _, tr := range trades {
		s := tr.Condor.Strikes()
		records = append(records, &TradeRecord{
			Underlying:      tr.Condor.Underlying,
			Expiration:      tr.Condor.Expiration.Format("2006-01-02"),
			EntryDate:       tr.EntryDate.Format("2006-01-02"),
			EntryDTE:        tr.EntryDTE,
			ExitDate:        tr.ExitDate.Format("2006-01-02"),
			StrikePutLong:   s[0],
			StrikePutShort:  s[1],
			StrikeCallShort: s[2],
			StrikeCallLong:  s[3],
			EntryCost:       tr.EntryCost,
			ExitProceeds:    tr.ExitProceeds,
			PctChange:       tr.PctChange,
			OTMPct:          tr.OTMPct,
		})
	}
	return marshalCSV(path, &records)
}

// BucketRecord is the bucket_stats.csv row shape.
type BucketRecord struct {
	DTERange    string  `csv:"dte_range"`
	OTMPctRange string  `csv:"otm_pct_range"`
	Count       int     `csv:"count"`
	Mean        float64 `csv:"mean"`
	Std         float64 `csv:"std"`
	P25         float64 `csv:"p25"`
	P50         float64 `csv:"p50"`
	P75         float64 `csv:"p75"`
}

// WriteBucketStats writes one row per non-empty bucket.
func WriteBucketStats(path string, stats []*models.BucketStat) error {
	records := make([]*BucketRecord, 0, len(stats))
	for _, b := range stats {
		records = append(records, &BucketRecord{
			DTERange:    b.DTERange.String(),
			OTMPctRange: b.OTMPctRange.String(),
			Count:       b.Count,
			Mean:        b.Mean,
			Std:         b.Std,
			P25:         b.P25,
			P50:         b.P50,
			P75:         b.P75,
		})
	}
	return marshalCSV(path, &records)
}

// quarantineRecord carries the untouched original row plus the reason
// it was rejected.
type quarantineRecord struct {
	models.RawQuote
	Reason string `csv:"reason"`
}

// CSVQuarantine collects rejected raw records during normalization and
// flushes them to quarantine.csv afterwards. Safe for concurrent use.
type CSVQuarantine struct {
	mu   sync.Mutex
	rows []*quarantineRecord
}

// NewCSVQuarantine returns an empty quarantine sink.
func NewCSVQuarantine() *CSVQuarantine {
	return &CSVQuarantine{}
}

// Reject records one rejected raw row and its reason.
func (q *CSVQuarantine) Reject(raw *models.RawQuote, reason error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rows = append(q.rows, &quarantineRecord{RawQuote: *raw, Reason: reason.Error()})
}

// Count returns the number of quarantined rows so far.
func (q *CSVQuarantine) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.rows)
}

// Flush writes the collected rows. Nothing is written when the
// quarantine is empty.
func (q *CSVQuarantine) Flush(path string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.rows) == 0 {
		return nil
	}
	return marshalCSV(path, &q.rows)
}

func marshalCSV(path string, records interface{}) error {
	f, err := os.Create(path) // #nosec G304 -- path comes from the run's configured output dir
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if err := gocsv.MarshalFile(records, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
