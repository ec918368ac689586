package models

import "time"

// Side marks a leg as bought or sold.
type Side string

const (
	// Long means the leg is bought at entry.
	Long Side = "long"
	// Short means the leg is sold at entry.
	Short Side = "short"
)

// Leg is one of the four options composing a condor, together with the
// entry-date snapshot used to price it.
type Leg struct {
	Contract Contract
	Side     Side
	Tick     *QuoteTick
}

// Condor is a 4-leg iron condor: sell the inner put/call, buy the
// protective wings. Strikes satisfy
// PutLong < PutShort < CallShort < CallLong.
type Condor struct {
	Underlying string
	Expiration time.Time
	EntryDate  time.Time // UTC calendar date of the entry snapshot
	PutLong    Leg
	PutShort   Leg
	CallShort  Leg
	CallLong   Leg
}

// Strikes returns the four strikes in ascending order.
func (c *Condor) Strikes() [4]float64 {
	return [4]float64{
		c.PutLong.Contract.Strike,
		c.PutShort.Contract.Strike,
		c.CallShort.Contract.Strike,
		c.CallLong.Contract.Strike,
	}
}

// Legs returns the legs in strike-ascending order.
func (c *Condor) Legs() [4]Leg {
	return [4]Leg{c.PutLong, c.PutShort, c.CallShort, c.CallLong}
}

// EntryDTE returns whole days from the entry date to expiration.
func (c *Condor) EntryDTE() int {
	return int(c.Expiration.Sub(c.EntryDate).Hours() / 24)
}
