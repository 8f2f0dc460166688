package indicator

// MACDResult holds one MACD output
type MACDResult struct {
	MACDLine   float64
	SignalLine float64
}

// Histogram returns the distance between the MACD and signal lines
func (r MACDResult) Histogram() float64 {
	return r.MACDLine - r.SignalLine
}

// Values returns the MACD and signal lines
func (r MACDResult) Values() []float64 {
	return []float64{r.MACDLine, r.SignalLine}
}

// MACD is built from a fast, a slow and a signal EMA
type MACD struct {
	fast   *EMA
	slow   *EMA
	signal *EMA
}

// Default MACD periods
const (
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// NewMACD creates a MACD with the given periods
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fast:   NewEMA(fast),
		slow:   NewEMA(slow),
		signal: NewEMA(signal),
	}
}

// NewDefaultMACD creates the classic 12/26/9 MACD
func NewDefaultMACD() *MACD {
	return NewMACD(DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
}

// Next feeds a price and returns the MACD and signal lines
func (m *MACD) Next(price float64) MACDResult {
	line := m.fast.Next(price) - m.slow.Next(price)
	return MACDResult{
		MACDLine:   line,
		SignalLine: m.signal.Next(line),
	}
}

// Current returns the last output without advancing the state
func (m *MACD) Current() MACDResult {
	return MACDResult{
		MACDLine:   m.fast.Current() - m.slow.Current(),
		SignalLine: m.signal.Current(),
	}
}
