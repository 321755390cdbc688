package snake

import "github.com/hoshinonyaruko/snaky/structs"

// RandomFood picks a cell uniformly among those not covered by snake.
// It returns false when the snake fills the whole board.
func (e *Engine) RandomFood(snake []structs.Position) (structs.Position, bool) {
	occupied := make(map[structs.Position]bool, len(snake))
	for _, s := range snake {
		occupied[s] = true
	}

	free := make([]structs.Position, 0, BoardSize*BoardSize-len(occupied))
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			p := structs.Position{X: x, Y: y}
			if !occupied[p] {
				free = append(free, p)
			}
		}
	}

	if len(free) == 0 {
		return structs.Position{}, false
	}
	return free[e.rng.Intn(len(free))], true
}
