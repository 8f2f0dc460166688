package indicator

import "github.com/markcheno/go-talib"

// Batch reference series computed with TA-Lib. Unlike the streaming
// indicators in this package, TA-Lib seeds its averages with an SMA and
// leaves the warmup slots at zero.

// EMASeries calculates an exponential moving average over the full input
func EMASeries(input []float64, period int) []float64 {
	return talib.Ema(input, period)
}

// SMASeries calculates a simple moving average over the full input
func SMASeries(input []float64, period int) []float64 {
	return talib.Sma(input, period)
}

// RSISeries calculates Wilder's RSI over the full input
func RSISeries(input []float64, period int) []float64 {
	return talib.Rsi(input, period)
}

// TrueRangeSeries calculates the true range of every bar after the first
func TrueRangeSeries(high, low, close []float64) []float64 {
	return talib.TRange(high, low, close)
}

// ATRSeries calculates Wilder's average true range
func ATRSeries(high, low, close []float64, period int) []float64 {
	return talib.Atr(high, low, close, period)
}
