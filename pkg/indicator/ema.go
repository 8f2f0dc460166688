package indicator

// EMA is a streaming exponential moving average.
// The state starts at zero, so the first output is price*k rather than price.
type EMA struct {
	length  int
	current float64
}

// NewEMA creates an EMA with smoothing factor 2/(length+1)
func NewEMA(length int) *EMA {
	return &EMA{length: length}
}

// Next feeds a new value and returns the updated average
func (e *EMA) Next(price float64) float64 {
	k := e.K()
	e.current = price*k + e.current*(1-k)
	return e.current
}

// Current returns the last emitted value without advancing the state
func (e *EMA) Current() float64 {
	return e.current
}

// Length returns the configured period
func (e *EMA) Length() int {
	return e.length
}

// K returns the smoothing factor
func (e *EMA) K() float64 {
	return 2 / (float64(e.length) + 1)
}
