package agent

import (
	"math/rand/v2"

	"roomsync/internal/client"
)

var moveKeys = []string{client.KeyForward, client.KeyBackward, client.KeyLeft, client.KeyRight}

// RandomInput - ввод бота: случайная клавиша движения на случайное время,
// изредка прыжок и поворот.
type RandomInput struct {
	rng  *rand.Rand
	held map[string]bool
	left float64

	dx float64
}

func NewRandomInput(seed int64) *RandomInput {
	return &RandomInput{
		rng:  rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
		held: make(map[string]bool),
	}
}

// Advance выбирает ввод на следующий кадр.
func (in *RandomInput) Advance(dt float64) {
	in.dx = 0
	in.held[client.KeyJump] = false

	in.left -= dt
	if in.left > 0 {
		return
	}

	clear(in.held)
	in.held[moveKeys[in.rng.IntN(len(moveKeys))]] = true
	in.held[client.KeyJump] = in.rng.IntN(5) == 0
	in.dx = (in.rng.Float64() - 0.5) * 200
	in.left = 0.5 + in.rng.Float64()*1.5
}

func (in *RandomInput) Held(key string) bool {
	return in.held[key]
}

func (in *RandomInput) PointerDelta() (float64, float64) {
	return in.dx, 0
}
