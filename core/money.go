package core

import "math"

// FeeRate is the marketplace cut taken from the seller side of every trade.
const FeeRate = 0.05

// DustThreshold rejects trades whose settled price would be negligible.
const DustThreshold = 0.5

// Round4 rounds a monetary value to 4 decimal places. All balance math goes
// through this to bound float drift across epochs.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// TradeFee returns the fee charged on a settled amount.
func TradeFee(amount float64) float64 {
	return Round4(amount * FeeRate)
}
