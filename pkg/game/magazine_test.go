package game

import (
	"math/rand"
	"testing"

	"github.com/rmarques/pointblank/pkg/game/constants"
	"github.com/stretchr/testify/assert"
)

func TestMagazineSource_Generate(t *testing.T) {
	source := NewMagazineSourceWithRand(rand.New(rand.NewSource(1)))

	for i := 0; i < 200; i++ {
		magazine := source.Generate()
		total := len(magazine)

		assert.GreaterOrEqual(t, total, constants.MagazineMinShells)
		assert.LessOrEqual(t, total, constants.MagazineMaxShells)

		live := 0
		for _, shell := range magazine {
			if shell {
				live++
			}
		}
		assert.GreaterOrEqual(t, live, total/2)
		assert.LessOrEqual(t, live, total/2+total%2)
	}
}
