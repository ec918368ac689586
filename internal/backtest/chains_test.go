package backtest

import (
	"testing"
	"time"

	"github.com/K8pain/optopussy/internal/models"
)

var testExpiry = time.Date(2023, 8, 25, 0, 0, 0, 0, time.UTC)

// seriesTick builds one canonical tick stamped inside the given day.
func seriesTick(day time.Time, hour int, underlying string, strike float64, typ models.OptionType, bid, ask, spot float64) *models.QuoteTick {
	c := models.Contract{Underlying: underlying, Expiration: testExpiry, Strike: strike, Type: typ}
	return &models.QuoteTick{
		Timestamp:       day.Add(time.Duration(hour) * time.Hour),
		Instrument:      c.Instrument(),
		Contract:        c,
		Bid:             &bid,
		Ask:             &ask,
		UnderlyingPrice: spot,
	}
}

func TestBuildChains_LatestTickPerContractWins(t *testing.T) {
	day := time.Date(2023, 8, 11, 0, 0, 0, 0, time.UTC)
	series := []*models.QuoteTick{
		seriesTick(day, 8, "ETH", 1900, models.Put, 10, 11, 1990),
		seriesTick(day, 16, "ETH", 1900, models.Put, 12, 13, 2000),
		seriesTick(day, 12, "ETH", 2100, models.Call, 8, 9, 1995),
	}

	set := buildChains(series, "")
	chain, ok := set.ChainAt("ETH", day)
	if !ok {
		t.Fatal("no chain for the day")
	}
	if len(chain.Ticks) != 2 {
		t.Fatalf("got %d ticks, want 2 distinct contracts", len(chain.Ticks))
	}
	put, ok := chain.TickFor(models.Contract{Underlying: "ETH", Expiration: testExpiry, Strike: 1900, Type: models.Put})
	if !ok {
		t.Fatal("put contract missing from chain")
	}
	if *put.Bid != 12 {
		t.Errorf("bid = %v, want the 16:00 snapshot's 12", *put.Bid)
	}
	// Reference follows the newest tick of the day, the 16:00 put.
	if chain.Reference != 2000 {
		t.Errorf("reference = %v, want 2000", chain.Reference)
	}
}

func TestBuildChains_UnderlyingFilter(t *testing.T) {
	day := time.Date(2023, 8, 11, 0, 0, 0, 0, time.UTC)
	series := []*models.QuoteTick{
		seriesTick(day, 8, "ETH", 1900, models.Put, 10, 11, 2000),
		seriesTick(day, 8, "BTC", 26000, models.Put, 400, 410, 29000),
	}

	set := buildChains(series, "ETH")
	if _, ok := set.ChainAt("BTC", day); ok {
		t.Error("BTC chain built despite the ETH filter")
	}
	if _, ok := set.ChainAt("ETH", day); !ok {
		t.Error("ETH chain missing")
	}
}

func TestChainAt_NearestAtOrAfter(t *testing.T) {
	d1 := time.Date(2023, 8, 11, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2023, 8, 15, 0, 0, 0, 0, time.UTC)
	series := []*models.QuoteTick{
		seriesTick(d1, 8, "ETH", 1900, models.Put, 10, 11, 2000),
		seriesTick(d2, 8, "ETH", 1900, models.Put, 12, 13, 2010),
	}
	set := buildChains(series, "")

	// 8/12 has no snapshot; the next available day is 8/15.
	chain, ok := set.ChainAt("ETH", d1.AddDate(0, 0, 1))
	if !ok {
		t.Fatal("expected the 8/15 chain")
	}
	if !chain.AsOf.Equal(d2) {
		t.Errorf("chain day = %v, want %v", chain.AsOf, d2)
	}

	if _, ok := set.ChainAt("ETH", d2.AddDate(0, 0, 1)); ok {
		t.Error("got a chain after the last snapshot day")
	}
}

func TestEntryChains_WindowAndOrder(t *testing.T) {
	d1 := time.Date(2023, 8, 11, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2023, 8, 14, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2023, 8, 18, 0, 0, 0, 0, time.UTC)
	series := []*models.QuoteTick{
		seriesTick(d2, 8, "ETH", 1900, models.Put, 10, 11, 2000),
		seriesTick(d1, 8, "ETH", 1900, models.Put, 10, 11, 2000),
		seriesTick(d3, 8, "ETH", 1900, models.Put, 10, 11, 2000),
		seriesTick(d2, 8, "BTC", 26000, models.Put, 400, 410, 29000),
	}
	set := buildChains(series, "")

	got := set.entryChains(d1, d2)
	if len(got) != 3 {
		t.Fatalf("got %d chains, want 3 inside the window", len(got))
	}
	// Ordered by underlying, then day.
	if got[0].Underlying != "BTC" {
		t.Errorf("got[0] = %s %v", got[0].Underlying, got[0].AsOf)
	}
	if got[1].Underlying != "ETH" || !got[1].AsOf.Equal(d1) {
		t.Errorf("got[1] = %s %v", got[1].Underlying, got[1].AsOf)
	}
	if got[2].Underlying != "ETH" || !got[2].AsOf.Equal(d2) {
		t.Errorf("got[2] = %s %v", got[2].Underlying, got[2].AsOf)
	}

	if all := set.entryChains(time.Time{}, time.Time{}); len(all) != 4 {
		t.Errorf("got %d chains unbounded, want 4", len(all))
	}
}
