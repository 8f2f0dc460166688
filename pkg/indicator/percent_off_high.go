package indicator

// PercentOffHigh tracks how far the price is below its running all-time high
type PercentOffHigh struct {
	ath     float64
	current float64
}

// NewPercentOffHigh creates a tracker with no history
func NewPercentOffHigh() *PercentOffHigh {
	return &PercentOffHigh{}
}

// Next updates the all-time high and returns the drawdown from it in percent
func (p *PercentOffHigh) Next(price float64) float64 {
	if price > p.ath {
		p.ath = price
	}
	p.current = (p.ath - price) / p.ath * 100
	return p.current
}

// Current returns the last emitted value
func (p *PercentOffHigh) Current() float64 {
	return p.current
}

// High returns the running all-time high
func (p *PercentOffHigh) High() float64 {
	return p.ath
}
