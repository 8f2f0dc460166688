package backtest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raykavin/backsim/pkg/core"
	"github.com/raykavin/backsim/pkg/exchange"
	"github.com/raykavin/backsim/pkg/order"
	"github.com/raykavin/backsim/pkg/simulator"
	"github.com/raykavin/backsim/pkg/strategy"
)

type closeState struct {
	close float64
}

func (s closeState) Values() []float64 { return []float64{s.close} }

// firstDayBuyer buys at the close of the first bar it sees and never sells
type firstDayBuyer struct {
	seen int
}

func (f *firstDayBuyer) Calculation(today core.PriceBar, _ *core.PriceBar) closeState {
	f.seen++
	return closeState{close: today.Close}
}

func (f *firstDayBuyer) BuySignal(today core.PriceBar, _ closeState) (float64, bool) {
	return today.Close, f.seen == 1
}

func (f *firstDayBuyer) SellSignal(core.PriceBar, closeState) (float64, bool) {
	return 0, false
}

// swing buys on odd bars and sells on even bars
type swing struct {
	seen int
}

func (s *swing) Calculation(today core.PriceBar, _ *core.PriceBar) closeState {
	s.seen++
	return closeState{close: today.Close}
}

func (s *swing) BuySignal(today core.PriceBar, _ closeState) (float64, bool) {
	return today.Close, s.seen%2 == 1
}

func (s *swing) SellSignal(today core.PriceBar, _ closeState) (float64, bool) {
	return today.Close, s.seen%2 == 0
}

var (
	_ strategy.Strategy[closeState] = (*firstDayBuyer)(nil)
	_ strategy.Strategy[closeState] = (*swing)(nil)
)

func series(ticker string, closes ...float64) []core.PriceBar {
	bars := make([]core.PriceBar, len(closes))
	for i, price := range closes {
		bars[i] = core.PriceBar{
			Ticker: ticker,
			Date:   core.Date(2020, time.January, i+1),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
		}
	}
	return bars
}

func stopLossFactory(ticker string, config Config) (simulator.Engine, error) {
	return NewEngine[closeState](config, &firstDayBuyer{},
		simulator.WithStopLoss(order.NewPercentageStopLoss(0.1)),
		simulator.WithBrokerFee(order.NewPercentageFee(0)),
	), nil
}

func TestSimulate_StopLoss(t *testing.T) {
	config := NewConfig().WithInitialCash(10000).WithStartDate(core.Date(2019, time.December, 31))
	engine, err := stopLossFactory("TEST", *config)
	require.NoError(t, err)

	result, err := Simulate("TEST", engine, series("TEST", 100, 90, 80))
	require.NoError(t, err)
	require.Len(t, result.Days, 3)

	events := result.Events()
	require.Len(t, events, 2)
	assert.Equal(t, simulator.Buy, events[0].Event.Kind)
	assert.Equal(t, simulator.Trade{Price: 100, Cash: 0, Shares: 100}, events[0].Event.Trade)
	assert.Equal(t, simulator.StopLoss, events[1].Event.Kind)
	assert.Equal(t, 90.0, events[1].Event.Trade.Price)
	assert.Equal(t, 9000.0, events[1].Event.Trade.Cash)

	assert.Equal(t, 9000.0, result.FinalCash)
	assert.InDelta(t, 0.9, result.ROI(), 1e-12)

	require.Equal(t, 1, result.Summary.Trades())
	assert.InDelta(t, -1000.0, result.Summary.Profit(), 1e-9)
	assert.InDelta(t, -0.1, result.Summary.LosePercent[0], 1e-12)
}

func TestSimulate_OpenPositionMarkedToLastClose(t *testing.T) {
	config := NewConfig().WithInitialCash(1000)
	engine := NewEngine[closeState](*config, &firstDayBuyer{})

	result, err := Simulate("TEST", engine, series("TEST", 10, 12, 15))
	require.NoError(t, err)
	assert.Equal(t, 1500.0, result.FinalCash)
	assert.Equal(t, 1.5, result.ROI())
	assert.Zero(t, result.Summary.Trades())

	_, err = Simulate("TEST", engine, nil)
	assert.Error(t, err)
}

func TestRunner_RunBars(t *testing.T) {
	runner, err := NewRunner(NewConfig().WithInitialCash(1000).WithParallelism(3))
	require.NoError(t, err)

	bars := map[string][]core.PriceBar{
		"UP":   series("UP", 10, 20, 10, 20),
		"DOWN": series("DOWN", 20, 10, 20, 10),
		"FLAT": series("FLAT", 10, 10),
		"BAD":  {series("BAD", 1)[0], series("BAD", 1)[0]},
	}

	results, failures := runner.RunBars(context.Background(), bars, func(string, Config) (simulator.Engine, error) {
		return nil, nil
	})
	// a nil engine panics inside the worker and is reported per ticker
	assert.Empty(t, results)
	assert.Len(t, failures, 4)

	results, failures = runner.RunBars(context.Background(), bars, func(_ string, config Config) (simulator.Engine, error) {
		return NewEngine[closeState](config, &swing{}), nil
	})
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures["BAD"], core.ErrUnorderedBars)

	require.Len(t, results, 3)
	assert.Equal(t, 4000.0, results["UP"].FinalCash)
	assert.Equal(t, 2, results["UP"].Summary.Trades())
	assert.Equal(t, 250.0, results["DOWN"].FinalCash)
	assert.Equal(t, 1.0, results["FLAT"].ROI())

	assert.Equal(t, []string{"DOWN", "FLAT", "UP"}, Tickers(results))
	assert.Equal(t, []float64{0.25, 1, 4}, ROIs(results))
}

func TestRunner_FactoryError(t *testing.T) {
	runner, err := NewRunner(NewConfig())
	require.NoError(t, err)

	errNoStrategy := errors.New("no strategy")
	_, failures := runner.RunBars(context.Background(), map[string][]core.PriceBar{
		"X": series("X", 1, 2),
	}, func(string, Config) (simulator.Engine, error) {
		return nil, errNoStrategy
	})
	assert.ErrorIs(t, failures["X"], errNoStrategy)
}

func TestRunner_Cancelled(t *testing.T) {
	runner, err := NewRunner(NewConfig().WithParallelism(1))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, failures := runner.RunBars(ctx, map[string][]core.PriceBar{
		"A": series("A", 1, 2),
	}, stopLossFactory)
	assert.Empty(t, results)
	assert.ErrorIs(t, failures["A"], context.Canceled)
}

func TestRunner_Run(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	header := strings.Join(exchange.Header, ",") + "\n"
	good := write("cdr.txt", header+
		"CDR,D,20200101,000000,100,100,100,100,1,0\n"+
		"CDR,D,20200102,000000,95,95,90,92,1,0\n"+
		"CDR,D,20200103,000000,80,80,80,80,1,0\n")
	bad := write("pkn.txt", header+"PKN,D,2020-01-01,000000,1,1,1,1,1,0\n")

	runner, err := NewRunner(NewConfig().WithInitialCash(10000).WithWindow("30d"))
	require.NoError(t, err)

	results, failures := runner.Run(context.Background(), []string{good, bad}, stopLossFactory)
	require.Contains(t, results, "CDR")
	assert.Equal(t, 9000.0, results["CDR"].FinalCash)
	assert.ErrorIs(t, failures["PKN"], exchange.ErrMalformedRecord)
}

func TestNewRunner_InvalidConfig(t *testing.T) {
	_, err := NewRunner(nil)
	assert.Error(t, err)

	_, err = NewRunner(NewConfig().WithParallelism(0))
	assert.Error(t, err)
}

func TestWriteTradeTable(t *testing.T) {
	engine, err := stopLossFactory("TEST", *NewConfig().WithInitialCash(10000))
	require.NoError(t, err)
	result, err := Simulate("TEST", engine, series("TEST", 100, 90, 80))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTradeTable(&buf, result.Days, simulator.StopLoss))
	assert.Equal(t, "2020-01-02,90,9000\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteTradeTable(&buf, result.Days))
	assert.Equal(t, "2020-01-01,100,0\n2020-01-02,90,9000\n", buf.String())
}

func TestWriteIndicatorTable(t *testing.T) {
	days := []simulator.Day{
		{Date: core.Date(2020, time.January, 1), Values: []float64{1.5, 2}},
		{Date: core.Date(2020, time.January, 2), Values: []float64{3}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteIndicatorTable(&buf, days))
	assert.Equal(t, "2020-01-01,1.5,2\n2020-01-02,3\n", buf.String())
}

func TestWriteReferenceTable(t *testing.T) {
	bars := series("TEST", 10, 11, 12, 13, 14, 15, 16, 17)

	var buf bytes.Buffer
	require.NoError(t, WriteReferenceTable(&buf, bars, 3))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, len(bars)+1)
	assert.Equal(t, strings.Join(ReferenceHeader, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2020-01-01,10,5,"))

	trColumn := lo.IndexOf(ReferenceHeader, "tr")
	require.GreaterOrEqual(t, trColumn, 0)
	assert.Equal(t, "talib_tr", ReferenceHeader[trColumn+1])
	for _, line := range lines[2:] {
		fields := strings.Split(line, ",")
		require.Len(t, fields, len(ReferenceHeader))
		assert.Equal(t, "1", fields[trColumn], line)
		assert.Equal(t, fields[trColumn], fields[trColumn+1], line)
	}

	buf.Reset()
	require.NoError(t, WriteReferenceTable(&buf, bars[:2], 3))
	assert.Contains(t, buf.String(), "NaN")

	assert.Error(t, WriteReferenceTable(&buf, bars, 0))
}

func TestPrintSummary(t *testing.T) {
	runner, err := NewRunner(NewConfig().WithInitialCash(1000))
	require.NoError(t, err)

	results, failures := runner.RunBars(context.Background(), map[string][]core.PriceBar{
		"UP":   series("UP", 10, 20, 10, 20),
		"DOWN": series("DOWN", 20, 10, 20, 10),
	}, func(_ string, config Config) (simulator.Engine, error) {
		return NewEngine[closeState](config, &swing{}), nil
	})
	require.Empty(t, failures)

	var buf bytes.Buffer
	PrintSummary(&buf, results)
	out := buf.String()
	assert.Contains(t, out, "TICKER")
	assert.Contains(t, out, "UP")
	assert.Contains(t, out, "DOWN")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "CONFIDENCE INTERVAL")

	buf.Reset()
	PrintSummary(&buf, nil)
	assert.Equal(t, "No results to display\n", buf.String())
}
