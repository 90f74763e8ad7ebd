package wheel

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alekreuaya/lucky-naga/model"
)

func TestPickFollowsWeights(t *testing.T) {
	a := assert.New(t)
	prizes := []model.Prize{
		{Id: "1", Label: "Gold Coin", Weight: 5},
		{Id: "2", Label: "Ruby Gem", Weight: 10},
		{Id: "3", Label: "Magic Potion", Weight: 15},
		{Id: "4", Label: "Lucky Star", Weight: 20},
		{Id: "5", Label: "Treasure Chest", Weight: 15},
		{Id: "6", Label: "Crystal Ball", Weight: 15},
		{Id: "7", Label: "Golden Crown", Weight: 10},
		{Id: "8", Label: "Diamond Ring", Weight: 10},
	}
	rnd := rand.New(rand.NewSource(42))

	const draws = 100000
	counts := map[string]int{}
	for i := 0; i < draws; i++ {
		prize, err := Pick(prizes, rnd)
		a.NoError(err)
		counts[prize.Id]++
	}

	for _, prize := range prizes {
		expected := prize.Weight / 100.0
		observed := float64(counts[prize.Id]) / draws
		a.InDelta(expected, observed, 0.01, "prize %s drifted from its weight", prize.Label)
	}
}

func TestPickSkipsZeroWeight(t *testing.T) {
	a := assert.New(t)
	prizes := []model.Prize{
		{Id: "1", Label: "Never", Weight: 0},
		{Id: "2", Label: "Always", Weight: 100},
	}
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		prize, err := Pick(prizes, rnd)
		a.NoError(err)
		a.Equal("Always", prize.Label)
	}
}

func TestPickNoEligiblePrizes(t *testing.T) {
	a := assert.New(t)
	rnd := rand.New(rand.NewSource(1))

	_, err := Pick(nil, rnd)
	a.ErrorIs(err, ErrNoEligiblePrizes)

	_, err = Pick([]model.Prize{{Id: "1", Label: "Dud", Weight: 0}}, rnd)
	a.ErrorIs(err, ErrNoEligiblePrizes)
}

func TestPickSinglePrize(t *testing.T) {
	a := assert.New(t)
	rnd := rand.New(rand.NewSource(3))
	prize, err := Pick([]model.Prize{{Id: "1", Label: "Only", Weight: 0.5}}, rnd)
	a.NoError(err)
	a.Equal("Only", prize.Label)
}
