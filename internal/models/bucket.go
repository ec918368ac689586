package models

import (
	"fmt"
	"strconv"
)

// IntInterval is a half-open integer interval (Lo, Hi].
type IntInterval struct {
	Lo int
	Hi int
}

// Contains reports whether v lies in (Lo, Hi].
func (iv IntInterval) Contains(v int) bool {
	return v > iv.Lo && v <= iv.Hi
}

func (iv IntInterval) String() string {
	return fmt.Sprintf("(%d, %d]", iv.Lo, iv.Hi)
}

// FloatInterval is a half-open interval (Lo, Hi] over decimals.
type FloatInterval struct {
	Lo float64
	Hi float64
}

// Contains reports whether v lies in (Lo, Hi].
func (iv FloatInterval) Contains(v float64) bool {
	return v > iv.Lo && v <= iv.Hi
}

func (iv FloatInterval) String() string {
	return "(" + strconv.FormatFloat(iv.Lo, 'f', -1, 64) +
		", " + strconv.FormatFloat(iv.Hi, 'f', -1, 64) + "]"
}

// BucketStat summarizes the percentage returns of every trade whose
// entry DTE and OTM% fall in the bucket's ranges. Recomputed per run;
// buckets with zero trades are never emitted.
type BucketStat struct {
	DTERange    IntInterval
	OTMPctRange FloatInterval
	Count       int
	Mean        float64
	Std         float64
	P25         float64
	P50         float64
	P75         float64
}
