package indicator

import "math"

// ATR is an average true range smoothed with an EMA
type ATR struct {
	ema *EMA
}

// NewATR creates an ATR over the given period
func NewATR(length int) *ATR {
	return &ATR{ema: NewEMA(length)}
}

// TrueRange returns the widest of today's range and the gaps to yesterday's close
func TrueRange(high, low, prevClose float64) float64 {
	return math.Max(high-low, math.Max(high-prevClose, prevClose-low))
}

// Next feeds today's high/low and yesterday's close
func (a *ATR) Next(high, low, prevClose float64) float64 {
	return a.ema.Next(TrueRange(high, low, prevClose))
}

// Current returns the last emitted value without advancing the state
func (a *ATR) Current() float64 {
	return a.ema.Current()
}
