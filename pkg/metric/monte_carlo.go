package metric

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/samber/lo"
)

var ErrInvalidSampleSize = errors.New("invalid sample size")

// MonteCarlo runs numSimulations draws over values. Each draw picks
// howMuchToPick elements at distinct indices, without replacement, and
// records their sum. A nil rng uses the global source.
func MonteCarlo(rng *rand.Rand, values []float64, numSimulations, howMuchToPick int) ([]float64, error) {
	if howMuchToPick < 0 || howMuchToPick > len(values) {
		return nil, fmt.Errorf("%w: picking %d out of %d values", ErrInvalidSampleSize, howMuchToPick, len(values))
	}
	if numSimulations < 0 {
		return nil, fmt.Errorf("%w: %d simulations", ErrInvalidSampleSize, numSimulations)
	}

	draws := make([]float64, 0, numSimulations)
	for i := 0; i < numSimulations; i++ {
		draws = append(draws, lo.Sum(pick(rng, values, howMuchToPick)))
	}
	return draws, nil
}

func pick(rng *rand.Rand, values []float64, k int) []float64 {
	if rng == nil {
		return lo.Samples(values, k)
	}

	picked := make([]float64, 0, k)
	for _, index := range rng.Perm(len(values))[:k] {
		picked = append(picked, values[index])
	}
	return picked
}
