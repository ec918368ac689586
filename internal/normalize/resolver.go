package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/K8pain/optopussy/internal/models"
)

// resolveQuote derives the effective bid and ask for one raw record:
// the best-quote column when present and positive, else the first level
// of the side's ladder, else absent. Zero or negative quoted prices are
// feed artifacts and count as absent.
func resolveQuote(raw *models.RawQuote) (bid, ask *float64) {
	bid = positive(parseFloat(raw.BestBidPrice))
	if bid == nil {
		bid = firstLadderPrice(raw.Bids)
	}
	ask = positive(parseFloat(raw.BestAskPrice))
	if ask == nil {
		ask = firstLadderPrice(raw.Asks)
	}
	return bid, ask
}

// firstLadderPrice extracts the best level's price from a ladder column,
// which arrives as JSON-style text like "[[1850.0, 5]]". Anything that
// does not decode to a non-empty ladder counts as absent.
func firstLadderPrice(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "[]" || strings.EqualFold(raw, "nan") {
		return nil
	}
	var ladder [][]float64
	if err := json.Unmarshal([]byte(raw), &ladder); err != nil {
		return nil
	}
	if len(ladder) == 0 || len(ladder[0]) == 0 {
		return nil
	}
	return positive(&ladder[0][0])
}

// parseFloat reads a numeric CSV field. Empty strings and the feed's
// "nan"/"none"/"null" literals are absent, as are unparseable values.
func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "none", "null":
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// positive keeps v only if it is present and strictly greater than zero.
func positive(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}
