package game

import (
	"math/rand"

	"github.com/himarcel99/hide-n-seek-render/logger"
)

// The two pools are paired: index i of the animal pool corresponds to index
// i of the unfound pool, though assignment of the two is independent.
var defaultAnimalSounds = []string{
	"/sounds/animals/dog.mp3",
	"/sounds/animals/cat.mp3",
	"/sounds/animals/cow.mp3",
	"/sounds/animals/duck.mp3",
	"/sounds/animals/rooster.mp3",
	"/sounds/animals/horse.mp3",
	"/sounds/animals/sheep.mp3",
	"/sounds/animals/pig.mp3",
	"/sounds/animals/frog.mp3",
	"/sounds/animals/owl.mp3",
}

var defaultUnfoundSounds = []string{
	"/sounds/unfound/chime1.mp3",
	"/sounds/unfound/chime2.mp3",
	"/sounds/unfound/chime3.mp3",
	"/sounds/unfound/chime4.mp3",
	"/sounds/unfound/chime5.mp3",
	"/sounds/unfound/chime6.mp3",
	"/sounds/unfound/chime7.mp3",
	"/sounds/unfound/chime8.mp3",
	"/sounds/unfound/chime9.mp3",
	"/sounds/unfound/chime10.mp3",
}

// SoundAssigner hands each player of one room a unique (animal, unfound)
// cue pair, reusing deterministically once a pool is exhausted. One instance
// belongs to one room and is only touched by that room's goroutine.
type SoundAssigner struct {
	animalPool  []string
	unfoundPool []string
	usedAnimal  map[string]bool
	usedUnfound map[string]bool
}

func NewSoundAssigner() *SoundAssigner {
	return NewSoundAssignerWithPools(defaultAnimalSounds, defaultUnfoundSounds)
}

func NewSoundAssignerWithPools(animalPool, unfoundPool []string) *SoundAssigner {
	if len(animalPool) != len(unfoundPool) {
		logger.Warningf("Sound pools are unpaired: %d animal sounds vs %d unfound sounds", len(animalPool), len(unfoundPool))
	}
	return &SoundAssigner{
		animalPool:  animalPool,
		unfoundPool: unfoundPool,
		usedAnimal:  make(map[string]bool),
		usedUnfound: make(map[string]bool),
	}
}

// Assign draws a uniformly random unused cue from each pool. An exhausted
// pool falls back to pool[(number-1) mod N], so late joiners still get a
// stable (if shared) cue.
func (sa *SoundAssigner) Assign(ps *playerState) {
	ps.animalSoundURL = sa.draw(sa.animalPool, sa.usedAnimal, ps.number)
	ps.unfoundSoundURL = sa.draw(sa.unfoundPool, sa.usedUnfound, ps.number)
}

func (sa *SoundAssigner) draw(pool []string, used map[string]bool, number int) string {
	if len(pool) == 0 {
		return ""
	}

	available := make([]string, 0, len(pool))
	for _, url := range pool {
		if !used[url] {
			available = append(available, url)
		}
	}

	var url string
	if len(available) > 0 {
		url = available[rand.Intn(len(available))]
	} else {
		url = pool[(number-1)%len(pool)]
	}
	used[url] = true
	return url
}

// Release returns a departing player's cues to the available pool.
func (sa *SoundAssigner) Release(ps *playerState) {
	delete(sa.usedAnimal, ps.animalSoundURL)
	delete(sa.usedUnfound, ps.unfoundSoundURL)
	ps.animalSoundURL = ""
	ps.unfoundSoundURL = ""
}

// Reset clears the used sets so a rematch redistributes from a fresh draw.
func (sa *SoundAssigner) Reset() {
	clear(sa.usedAnimal)
	clear(sa.usedUnfound)
}
