// Package normalize turns raw venue snapshot rows into the canonical
// per-instrument tick series: instrument parsing, effective bid/ask
// resolution, field coercion and revision deduplication.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/K8pain/optopussy/internal/models"
)

var (
	// e.g. "25AUG23" or "5sep25"; day may be one or two digits.
	expirationRe = regexp.MustCompile(`^(\d{1,2})([A-Za-z]{3})(\d{2})$`)
	strikeRe     = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	underlyingRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
)

// ParseInstrument parses a venue identifier such as "ETH-25AUG23-1900-C"
// into a Contract. The date and type tokens are case-insensitive. A
// failure wraps ErrParse; the function never panics on malformed input.
func ParseInstrument(name string) (models.Contract, error) {
	parts := strings.Split(strings.TrimSpace(name), "-")
	if len(parts) != 4 {
		return models.Contract{}, fmt.Errorf("%w: %q: want 4 dash-separated tokens, got %d",
			ErrParse, name, len(parts))
	}

	underlying := parts[0]
	if !underlyingRe.MatchString(underlying) {
		return models.Contract{}, fmt.Errorf("%w: %q: bad underlying token %q", ErrParse, name, underlying)
	}

	expiration, err := parseExpiration(parts[1])
	if err != nil {
		return models.Contract{}, fmt.Errorf("%w: %q: %v", ErrParse, name, err)
	}

	if !strikeRe.MatchString(parts[2]) {
		return models.Contract{}, fmt.Errorf("%w: %q: bad strike token %q", ErrParse, name, parts[2])
	}
	strike, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return models.Contract{}, fmt.Errorf("%w: %q: bad strike token %q", ErrParse, name, parts[2])
	}

	var typ models.OptionType
	switch strings.ToUpper(parts[3]) {
	case "C":
		typ = models.Call
	case "P":
		typ = models.Put
	default:
		return models.Contract{}, fmt.Errorf("%w: %q: bad option type token %q", ErrParse, name, parts[3])
	}

	return models.Contract{
		Underlying: underlying,
		Expiration: expiration,
		Strike:     strike,
		Type:       typ,
	}, nil
}

// parseExpiration reads a DDMMMYY token like "25AUG23" into a UTC date.
func parseExpiration(token string) (time.Time, error) {
	m := expirationRe.FindStringSubmatch(token)
	if m == nil {
		return time.Time{}, fmt.Errorf("bad expiration token %q", token)
	}
	// time.Parse wants "Aug", the venue writes "AUG".
	month := strings.ToUpper(m[2][:1]) + strings.ToLower(m[2][1:])
	t, err := time.ParseInLocation("2Jan06", m[1]+month+m[3], time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad expiration token %q", token)
	}
	return t, nil
}
