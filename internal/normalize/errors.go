package normalize

import "errors"

// ErrParse is returned when an instrument identifier does not match the
// <UNDERLYING>-<DDMMMYY>-<STRIKE>-<C|P> grammar.
var ErrParse = errors.New("malformed instrument identifier")

// ErrInvalidTick is returned when a raw record cannot become a canonical
// tick: a required field is missing or the quoted market is crossed.
var ErrInvalidTick = errors.New("invalid tick")
