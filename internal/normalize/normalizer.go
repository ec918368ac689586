package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/K8pain/optopussy/internal/models"
)

// Quarantine receives every raw record the normalizer rejects, together
// with the reason. Implementations live at the boundary (CSV writer,
// plain logging); the normalizer never aborts a batch over one record.
type Quarantine interface {
	Reject(raw *models.RawQuote, reason error)
}

// LogQuarantine is the fallback sink: rejected records are only logged.
type LogQuarantine struct{}

// Reject logs the rejected record at warn level.
func (LogQuarantine) Reject(raw *models.RawQuote, reason error) {
	log.WithFields(log.Fields{
		"instrument": raw.InstrumentName,
		"timestamp":  raw.Timestamp,
	}).Warnf("quarantined record: %v", reason)
}

// Normalizer converts raw snapshot rows into canonical quote ticks.
type Normalizer struct {
	quarantine Quarantine
}

// NewNormalizer returns a Normalizer routing rejects to q. A nil q
// falls back to LogQuarantine.
func NewNormalizer(q Quarantine) *Normalizer {
	if q == nil {
		q = LogQuarantine{}
	}
	return &Normalizer{quarantine: q}
}

// Normalize builds one canonical tick from one raw record. Errors wrap
// ErrParse (bad instrument identifier) or ErrInvalidTick (missing
// required field, crossed market); the caller decides routing.
func (n *Normalizer) Normalize(raw *models.RawQuote) (*models.QuoteTick, error) {
	if strings.TrimSpace(raw.InstrumentName) == "" {
		return nil, fmt.Errorf("%w: missing instrument name", ErrInvalidTick)
	}

	ms, err := strconv.ParseInt(strings.TrimSpace(raw.Timestamp), 10, 64)
	if err != nil || ms <= 0 {
		return nil, fmt.Errorf("%w: missing or bad timestamp %q", ErrInvalidTick, raw.Timestamp)
	}

	contract, err := ParseInstrument(raw.InstrumentName)
	if err != nil {
		return nil, err
	}

	underlying := positive(parseFloat(raw.UnderlyingPrice))
	if underlying == nil {
		// The downloader leaves underlying_price empty on some venues
		// and fills index_price instead.
		underlying = positive(parseFloat(raw.IndexPrice))
	}
	if underlying == nil {
		return nil, fmt.Errorf("%w: missing underlying price", ErrInvalidTick)
	}

	bid, ask := resolveQuote(raw)
	if bid != nil && ask != nil && *bid > *ask {
		return nil, fmt.Errorf("%w: crossed market bid %v > ask %v", ErrInvalidTick, *bid, *ask)
	}

	return &models.QuoteTick{
		Timestamp:       time.UnixMilli(ms).UTC(),
		Revision:        parseRevision(raw.ChangeID),
		Instrument:      strings.TrimSpace(raw.InstrumentName),
		Contract:        contract,
		Bid:             bid,
		Ask:             ask,
		UnderlyingPrice: *underlying,
		MarkPrice:       parseFloat(raw.MarkPrice),
		MarkIV:          parseFloat(raw.MarkIV),
		BidIV:           parseFloat(raw.BidIV),
		AskIV:           parseFloat(raw.AskIV),
		Delta:           parseFloat(raw.Delta),
		OpenInterest:    parseFloat(raw.OpenInterest),
		Volume:          parseFloat(raw.Volume),
	}, nil
}

// NormalizeAll drives a whole batch, quarantining rejects and keeping
// going. The returned slice preserves input order.
func (n *Normalizer) NormalizeAll(raws []*models.RawQuote) []*models.QuoteTick {
	ticks := make([]*models.QuoteTick, 0, len(raws))
	rejected := 0
	for _, raw := range raws {
		tick, err := n.Normalize(raw)
		if err != nil {
			n.quarantine.Reject(raw, err)
			rejected++
			continue
		}
		ticks = append(ticks, tick)
	}
	log.WithFields(log.Fields{
		"input":    len(raws),
		"ticks":    len(ticks),
		"rejected": rejected,
	}).Info("normalized raw quotes")
	return ticks
}

// parseRevision reads the per-instrument change id; absent or junk
// values stay absent rather than becoming zero.
func parseRevision(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
