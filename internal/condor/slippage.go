package condor

import (
	"fmt"

	"github.com/K8pain/optopussy/internal/models"
)

// Slippage prices a fill for one leg. It is a closed set of named
// policies so valuation control flow never branches on the policy name.
// Callers only pass ticks with both sides of the market present.
type Slippage interface {
	Name() string
	// Buy returns the price paid to buy at this snapshot.
	Buy(t *models.QuoteTick) float64
	// Sell returns the price received to sell at this snapshot.
	Sell(t *models.QuoteTick) float64
}

// SlippageByName resolves a configured policy name. The empty string
// means mid fills.
func SlippageByName(name string) (Slippage, error) {
	switch name {
	case "", "none":
		return midFills{}, nil
	case "spread":
		return spreadFills{}, nil
	default:
		return nil, fmt.Errorf("unknown slippage policy %q", name)
	}
}

// midFills fills every leg at the quote midpoint.
type midFills struct{}

func (midFills) Name() string                     { return "none" }
func (midFills) Buy(t *models.QuoteTick) float64  { return t.Mid() }
func (midFills) Sell(t *models.QuoteTick) float64 { return t.Mid() }

// spreadFills crosses the full spread: buy at ask, sell at bid.
type spreadFills struct{}

func (spreadFills) Name() string                     { return "spread" }
func (spreadFills) Buy(t *models.QuoteTick) float64  { return *t.Ask }
func (spreadFills) Sell(t *models.QuoteTick) float64 { return *t.Bid }
