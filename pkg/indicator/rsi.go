package indicator

import "github.com/raykavin/backsim/pkg/core"

// RSIResult holds one RSI output
type RSIResult struct {
	RSI float64
}

// Values returns the RSI line
func (r RSIResult) Values() []float64 {
	return []float64{r.RSI}
}

// RSI computes the relative strength index over the last length+1 prices.
//
// Losses are the negative differences summed with their sign, so rs is never
// positive and the line leaves [0, 100]: it is negative when losses outweigh
// gains and above 100 when gains outweigh losses. Equal gains and losses give
// -Inf. Nothing is clamped: a window without losses yields +Inf (so RSI 100)
// when it has gains and NaN when it is flat. Comparisons against NaN are
// always false.
type RSI struct {
	window *core.RollingWindow[float64]
}

// NewRSI creates an RSI over the given period
func NewRSI(length int) *RSI {
	return &RSI{window: core.NewRollingWindow[float64](length + 1)}
}

// Next pushes a price, overwriting the oldest one once the window is full
func (r *RSI) Next(price float64) RSIResult {
	r.window.Add(price)

	var gains, losses float64
	prices := r.window.Slice()
	for i := 1; i < len(prices); i++ {
		diff := prices[i] - prices[i-1]
		if diff < 0 {
			losses += diff
		} else {
			gains += diff
		}
	}

	rs := gains / losses
	return RSIResult{RSI: 100 - 100/(1+rs)}
}
