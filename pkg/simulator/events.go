package simulator

import (
	"time"

	"github.com/raykavin/backsim/pkg/strategy"
)

// Kind tags a trade event
type Kind int

const (
	Buy Kind = iota
	Sell
	StopLoss
	TakeProfit
)

// Kinds lists every event kind in declaration order
var Kinds = []Kind{Buy, Sell, StopLoss, TakeProfit}

func (k Kind) String() string {
	switch k {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	case StopLoss:
		return "stop_loss"
	case TakeProfit:
		return "take_profit"
	default:
		return "unknown"
	}
}

// IsExit reports whether the event closes a position
func (k Kind) IsExit() bool {
	return k != Buy
}

// Trade is the outcome of one executed operation
type Trade struct {
	Price  float64
	Cash   float64 // cash balance after the operation
	Shares int     // shares bought or sold, zero for an operation without effect
}

// TradeEvent is a tagged trade
type TradeEvent struct {
	Kind  Kind
	Trade Trade
}

// DayResult is the simulator output for one bar
type DayResult[T strategy.State] struct {
	Date   time.Time
	State  T
	Events []TradeEvent
}

// Day drops the concrete state type, keeping the flattened snapshot
func (d DayResult[T]) Day() Day {
	return Day{Date: d.Date, Values: d.State.Values(), Events: d.Events}
}

// Day is a DayResult with the indicator state flattened to a vector, so
// results of differently typed strategies can be handled together.
type Day struct {
	Date   time.Time
	Values []float64
	Events []TradeEvent
}
