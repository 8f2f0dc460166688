package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/raykavin/backsim/pkg/core"
	"github.com/raykavin/backsim/pkg/indicator"
	"github.com/raykavin/backsim/pkg/simulator"
)

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatDate(date time.Time) string {
	return date.Format(time.DateOnly)
}

// WriteTradeTable writes date, price and cash of every event of the given
// kinds. No kinds selects every event.
func WriteTradeTable(w io.Writer, days []simulator.Day, kinds ...simulator.Kind) error {
	writer := csv.NewWriter(w)
	for _, dated := range datedEvents(days, kinds...) {
		row := []string{
			formatDate(dated.Day.Date),
			formatFloat(dated.Event.Trade.Price),
			formatFloat(dated.Event.Trade.Cash),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteIndicatorTable writes the date followed by the indicator snapshot of
// every day.
func WriteIndicatorTable(w io.Writer, days []simulator.Day) error {
	writer := csv.NewWriter(w)
	for _, day := range days {
		row := make([]string, 0, len(day.Values)+1)
		row = append(row, formatDate(day.Date))
		for _, value := range day.Values {
			row = append(row, formatFloat(value))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReferenceHeader is the header of WriteReferenceTable
var ReferenceHeader = []string{"date", "close", "ema", "talib_ema", "talib_sma", "tr", "talib_tr", "atr", "talib_atr", "rsi", "talib_rsi"}

// WriteReferenceTable compares the streaming indicators with the TA-Lib batch
// versions over the same bars. TA-Lib leaves warmup slots at zero and seeds
// its averages differently, so values converge only after the warmup. The
// true range columns agree from the second bar on.
func WriteReferenceTable(w io.Writer, bars []core.PriceBar, length int) error {
	if length < 1 {
		return fmt.Errorf("length must be at least 1, got %d", length)
	}

	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i], highs[i], lows[i] = bar.Close, bar.High, bar.Low
	}

	var talibEMA, talibSMA, talibTR, talibATR, talibRSI []float64
	if len(bars) > length {
		talibEMA = indicator.EMASeries(closes, length)
		talibSMA = indicator.SMASeries(closes, length)
		talibTR = indicator.TrueRangeSeries(highs, lows, closes)
		talibATR = indicator.ATRSeries(highs, lows, closes, length)
		talibRSI = indicator.RSISeries(closes, length)
	}

	ema := indicator.NewEMA(length)
	atr := indicator.NewATR(length)
	rsi := indicator.NewRSI(length)

	writer := csv.NewWriter(w)
	if err := writer.Write(ReferenceHeader); err != nil {
		return err
	}

	for i, bar := range bars {
		prevClose := 0.0
		if i > 0 {
			prevClose = bars[i-1].Close
		}

		row := []string{
			formatDate(bar.Date),
			formatFloat(bar.Close),
			formatFloat(ema.Next(bar.Close)),
			formatFloat(at(talibEMA, i)),
			formatFloat(at(talibSMA, i)),
			formatFloat(indicator.TrueRange(bar.High, bar.Low, prevClose)),
			formatFloat(at(talibTR, i)),
			formatFloat(atr.Next(bar.High, bar.Low, prevClose)),
			formatFloat(at(talibATR, i)),
			formatFloat(rsi.Next(bar.Close).RSI),
			formatFloat(at(talibRSI, i)),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return math.NaN()
}
