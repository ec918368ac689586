package models

import "time"

// Trade is one valued condor combination. Immutable; owned by the run
// that produced it.
type Trade struct {
	Condor       *Condor
	EntryDate    time.Time
	EntryDTE     int
	ExitDate     time.Time
	EntryCost    float64
	ExitProceeds float64
	PctChange    float64
	// OTMPct is the entry out-of-the-money distance used for bucketing:
	// the mean of the two short legs' OTM percentages.
	OTMPct float64
}
