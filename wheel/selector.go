package wheel

import (
	"math/rand"

	"github.com/alekreuaya/lucky-naga/model"
)

// Pick draws one prize with probability weight/sum(weights). Prizes
// with a non-positive weight stay on the wheel face but are excluded
// from selection. The random source is injected so tests can seed it.
func Pick(prizes []model.Prize, rnd *rand.Rand) (*model.Prize, error) {
	var total float64
	for i := range prizes {
		if prizes[i].Weight > 0 {
			total += prizes[i].Weight
		}
	}
	if total <= 0 {
		return nil, ErrNoEligiblePrizes
	}
	stopAt := rnd.Float64() * total
	var cumulative float64
	last := -1
	for i := range prizes {
		if prizes[i].Weight <= 0 {
			continue
		}
		cumulative += prizes[i].Weight
		last = i
		if stopAt < cumulative {
			return &prizes[i], nil
		}
	}
	// float rounding can leave stopAt a hair past the final cumulative
	return &prizes[last], nil
}
