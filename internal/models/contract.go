// Package models defines the domain types shared across the pipeline:
// parsed contracts, canonical quote ticks, condor combinations, valued
// trades and aggregation buckets.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// OptionType distinguishes calls from puts.
type OptionType string

const (
	// Call is the right to buy the underlying at the strike.
	Call OptionType = "call"
	// Put is the right to sell the underlying at the strike.
	Put OptionType = "put"
)

// Valid returns true if the OptionType is one of the defined constants.
func (t OptionType) Valid() bool {
	return t == Call || t == Put
}

// Letter returns the single-letter code used in instrument identifiers.
func (t OptionType) Letter() string {
	if t == Call {
		return "C"
	}
	return "P"
}

// Contract identifies one listed option. Identity is the four fields
// together; values are never mutated after parsing.
type Contract struct {
	Underlying string
	Expiration time.Time // UTC midnight
	Strike     float64
	Type       OptionType
}

// Instrument renders the canonical identifier, e.g. "ETH-25AUG23-1900-C".
// Parsing the result yields an equal Contract.
func (c Contract) Instrument() string {
	return fmt.Sprintf("%s-%s-%s-%s",
		c.Underlying,
		strings.ToUpper(c.Expiration.Format("2Jan06")),
		strconv.FormatFloat(c.Strike, 'f', -1, 64),
		c.Type.Letter())
}

// DTE returns whole days from asOf to expiration. Both values are
// truncated to their UTC calendar date first.
func (c Contract) DTE(asOf time.Time) int {
	return int(c.Expiration.Sub(DateOf(asOf)).Hours() / 24)
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
