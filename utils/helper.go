package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// Round rounds a value to the given number of decimal places.
func Round(value float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(value).Round(places).Float64()
	return f
}

// FnSeconds returns the elapsed time between two instants in seconds,
// rounded to 1 decimal. Used for log-entry timing.
func FnSeconds(before, after time.Time) float64 {
	return Round(after.Sub(before).Seconds(), 1)
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}
