package game

import (
	"math/rand"
	"time"

	"github.com/rmarques/pointblank/pkg/game/constants"
)

// ShellSource generates the shell sequence loaded into a session's magazine.
type ShellSource interface {
	// Generate returns a new shell sequence; true = live, false = blank.
	Generate() []bool
}

// MagazineSource produces randomized magazines of 2 to 8 shells, roughly half
// of them live.
type MagazineSource struct {
	rng *rand.Rand
}

// NewMagazineSource creates a MagazineSource seeded from the current time.
func NewMagazineSource() *MagazineSource {
	return NewMagazineSourceWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewMagazineSourceWithRand creates a MagazineSource with the given generator.
func NewMagazineSourceWithRand(rng *rand.Rand) *MagazineSource {
	return &MagazineSource{
		rng: rng,
	}
}

func (s *MagazineSource) Generate() []bool {
	total := constants.MagazineMinShells + s.rng.Intn(constants.MagazineMaxShells-constants.MagazineMinShells+1)
	live := total / 2
	if total%2 != 0 && s.rng.Intn(2) == 0 {
		live++
	}

	magazine := make([]bool, total)
	for i := 0; i < live; i++ {
		magazine[i] = true
	}
	s.rng.Shuffle(total, func(i, j int) {
		magazine[i], magazine[j] = magazine[j], magazine[i]
	})

	return magazine
}
