package core

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the compact date form used by daily quote files.
const DateLayout = "20060102"

// PriceBar represents one trading day of a single ticker
type PriceBar struct {
	Ticker       string
	Period       string
	Date         time.Time
	Time         string
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       float64
	OpenInterest int64
}

// GetTicker returns the ticker symbol of the bar
func (b PriceBar) GetTicker() string { return b.Ticker }

// GetDate returns the trading date of the bar
func (b PriceBar) GetDate() time.Time { return b.Date }

// GetClose returns the canonical reference price of the bar
func (b PriceBar) GetClose() float64 { return b.Close }

// IsEmpty checks if the bar contains no significant data
func (b PriceBar) IsEmpty() bool {
	return b.Ticker == "" && b.Close == 0 && b.Open == 0 && b.Volume == 0
}

// Validate checks the single-bar invariants
func (b PriceBar) Validate() error {
	if b.High < b.Low {
		return fmt.Errorf("%w: %s %s high %.4f below low %.4f",
			ErrInvalidBar, b.Ticker, b.Date.Format(DateLayout), b.High, b.Low)
	}
	return nil
}

// ToSlice converts a bar to a string slice for serialization
// with the specified decimal precision
func (b PriceBar) ToSlice(precision int) []string {
	return []string{
		b.Date.Format(time.DateOnly),
		strconv.FormatFloat(b.Open, 'f', precision, 64),
		strconv.FormatFloat(b.High, 'f', precision, 64),
		strconv.FormatFloat(b.Low, 'f', precision, 64),
		strconv.FormatFloat(b.Close, 'f', precision, 64),
		strconv.FormatFloat(b.Volume, 'f', precision, 64),
	}
}

// ValidateBars checks every bar and that dates are strictly increasing
func ValidateBars(bars []PriceBar) error {
	for i, bar := range bars {
		if err := bar.Validate(); err != nil {
			return err
		}
		if i > 0 && !bar.Date.After(bars[i-1].Date) {
			return fmt.Errorf("%w: %s at index %d (%s after %s)", ErrUnorderedBars, bar.Ticker, i,
				bar.Date.Format(DateLayout), bars[i-1].Date.Format(DateLayout))
		}
	}
	return nil
}

// Date builds a calendar date at UTC midnight
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
