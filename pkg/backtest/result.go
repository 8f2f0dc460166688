package backtest

import (
	"fmt"

	"github.com/raykavin/backsim/pkg/core"
	"github.com/raykavin/backsim/pkg/order"
	"github.com/raykavin/backsim/pkg/simulator"
)

// Result is the outcome of one ticker's backtest
type Result struct {
	Ticker      string
	Days        []simulator.Day
	InitialCash float64
	// FinalCash marks an open position to the last close
	FinalCash float64
	Summary   order.TradeSummary
}

// ROI returns the final value relative to the initial cash, 1.1 is a 10% gain
func (r Result) ROI() float64 {
	if r.InitialCash == 0 {
		return 0
	}
	return r.FinalCash / r.InitialCash
}

// Events returns the events of the given kinds with their dates, in order.
// No kinds selects every event.
func (r Result) Events(kinds ...simulator.Kind) []DatedEvent {
	return datedEvents(r.Days, kinds...)
}

// DatedEvent is a trade event with the date it happened
type DatedEvent struct {
	Day   simulator.Day
	Event simulator.TradeEvent
}

func datedEvents(days []simulator.Day, kinds ...simulator.Kind) []DatedEvent {
	wanted := make(map[simulator.Kind]bool, len(kinds))
	for _, kind := range kinds {
		wanted[kind] = true
	}

	var events []DatedEvent
	for _, day := range days {
		for _, event := range day.Events {
			if len(kinds) == 0 || wanted[event.Kind] {
				events = append(events, DatedEvent{Day: day, Event: event})
			}
		}
	}
	return events
}

// Simulate replays bars through engine and collects the ticker result
func Simulate(ticker string, engine simulator.Engine, bars []core.PriceBar) (*Result, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: no bars", ticker)
	}

	result := &Result{
		Ticker:      ticker,
		Days:        make([]simulator.Day, 0, len(bars)),
		InitialCash: engine.InitialCash(),
		Summary:     order.TradeSummary{Ticker: ticker},
	}

	cash := engine.InitialCash()
	cost := 0.0
	for i := range bars {
		var yesterday *core.PriceBar
		if i > 0 {
			yesterday = &bars[i-1]
		}

		day := engine.Step(bars[i], yesterday)
		for _, event := range day.Events {
			switch {
			case event.Trade.Shares == 0:
			case event.Kind == simulator.Buy:
				cost = cash - event.Trade.Cash
			default:
				result.Summary.AddRoundTrip(cost, event.Trade.Cash-cash)
			}
			cash = event.Trade.Cash
		}
		result.Days = append(result.Days, day)
	}

	result.FinalCash = engine.Equity(bars[len(bars)-1].Close)
	return result, nil
}
