package simulator

import (
	"github.com/raykavin/backsim/pkg/core"
	"github.com/raykavin/backsim/pkg/strategy"
)

// Engine is the type-erased view of a Simulator used by batch runners that
// mix strategies with different indicator states.
type Engine interface {
	Step(today core.PriceBar, yesterday *core.PriceBar) Day
	Cash() float64
	InitialCash() float64
	Position() int
	Equity(price float64) float64
}

var _ Engine = (*Simulator[strategy.EMATrendState])(nil)
