package models

import (
	"time"

	"github.com/K8pain/optopussy/internal/util"
)

// RawQuote is one row of the downloader's snapshot CSV, untouched.
// Numeric columns stay strings here: the feed writes "nan"/"" for absent
// values and the normalizer decides what that means.
type RawQuote struct {
	Timestamp        string `csv:"timestamp"`
	ChangeID         string `csv:"change_id"`
	InstrumentName   string `csv:"instrument_name"`
	BestBidPrice     string `csv:"best_bid_price"`
	BestAskPrice     string `csv:"best_ask_price"`
	BestBidAmount    string `csv:"best_bid_amount"`
	BestAskAmount    string `csv:"best_ask_amount"`
	Bids             string `csv:"bids"`
	Asks             string `csv:"asks"`
	UnderlyingPrice  string `csv:"underlying_price"`
	IndexPrice       string `csv:"index_price"`
	MarkPrice        string `csv:"mark_price"`
	LastPrice        string `csv:"last_price"`
	OpenInterest     string `csv:"open_interest"`
	MarkIV           string `csv:"mark_iv"`
	BidIV            string `csv:"bid_iv"`
	AskIV            string `csv:"ask_iv"`
	Delta            string `csv:"greeks.delta"`
	Volume           string `csv:"stats.volume"`
	SettlementPeriod string `csv:"settlement_period"`
}

// QuoteTick is the canonical form of one raw record. It is immutable
// after creation; a later revision with the same (instrument, timestamp)
// key supersedes it through the deduplicator rather than mutating it.
//
// Optional fields are pointers: nil means the feed had no value, which
// must never be conflated with zero.
type QuoteTick struct {
	Timestamp       time.Time
	Revision        *int64
	Instrument      string
	Contract        Contract
	Bid             *float64
	Ask             *float64
	UnderlyingPrice float64
	MarkPrice       *float64
	MarkIV          *float64
	BidIV           *float64
	AskIV           *float64
	Delta           *float64
	OpenInterest    *float64
	Volume          *float64
}

// HasQuote reports whether both sides of the market are present.
func (t *QuoteTick) HasQuote() bool {
	return t.Bid != nil && t.Ask != nil
}

// Mid returns the midpoint price. Callers must check HasQuote first.
func (t *QuoteTick) Mid() float64 {
	return util.Mid(*t.Bid, *t.Ask)
}

// Day returns the tick's UTC calendar date.
func (t *QuoteTick) Day() time.Time {
	return DateOf(t.Timestamp)
}

// OTMPct returns the out-of-the-money distance of the contract's strike
// from this tick's underlying price, as a fraction of that price.
func (t *QuoteTick) OTMPct() float64 {
	d := t.Contract.Strike - t.UnderlyingPrice
	if d < 0 {
		d = -d
	}
	return d / t.UnderlyingPrice
}
