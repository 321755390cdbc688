// 关于的蛇的更新
package snake

import (
	"math/rand"

	"github.com/hoshinonyaruko/snaky/structs"
)

// 游戏规则常量，不可在运行时配置
const (
	BoardSize             = 20
	InitialTickIntervalMs = 150
	TickFloorMs           = 60
	TickDecrementMs       = 5
)

// Engine advances game states. It holds the random source used for food
// placement and is not safe for concurrent use; callers serialize access.
type Engine struct {
	rng *rand.Rand
}

// NewEngine returns an engine whose food placement is driven by seed.
func NewEngine(seed int64) *Engine {
	return &Engine{rng: rand.New(rand.NewSource(seed))}
}

// InitialSnake 棋盘中央的两格蛇，蛇头朝右
func InitialSnake() []structs.Position {
	return []structs.Position{
		{X: BoardSize / 2, Y: BoardSize / 2},
		{X: BoardSize/2 - 1, Y: BoardSize / 2},
	}
}

// Reset builds the canonical starting state.
func (e *Engine) Reset() structs.GameState {
	snake := InitialSnake()
	food, _ := e.RandomFood(snake)
	return structs.GameState{
		Snake:          snake,
		Food:           food,
		Direction:      structs.Right,
		Heading:        structs.Right,
		Score:          0,
		TickIntervalMs: InitialTickIntervalMs,
		Status:         structs.StatusRunning,
	}
}

// RequestDirection arbitrates a direction change. A request equal to the
// current direction or its exact opposite is rejected and current stands.
func RequestDirection(current, requested structs.Direction) structs.Direction {
	if !requested.Valid() || requested == current || requested == current.Opposite() {
		return current
	}
	return requested
}

// Steer applies a direction request to state. Several requests may arrive
// between ticks and the last accepted one wins, but none may reverse the
// direction the snake actually moved on the previous tick.
func Steer(state structs.GameState, requested structs.Direction) structs.GameState {
	if state.Status.Terminal() {
		return state
	}
	next := RequestDirection(state.Direction, requested)
	if next == state.Direction {
		return state
	}
	if state.Heading != "" && next == state.Heading.Opposite() {
		return state
	}
	out := state.Clone()
	out.Direction = next
	return out
}

// Tick advances state by exactly one step and returns the new state.
// The input is never modified. Non-running states are returned as is.
func (e *Engine) Tick(state structs.GameState) structs.GameState {
	if state.Status != structs.StatusRunning || len(state.Snake) == 0 || !state.Direction.Valid() {
		return state
	}

	nextHead := Move(state.Head(), state.Direction)
	hitsWall := !InBounds(nextHead)
	willGrow := nextHead == state.Food

	// 不增长时蛇尾会在本tick让出位置
	bodyToCheck := state.Snake
	if !willGrow {
		bodyToCheck = state.Snake[:len(state.Snake)-1]
	}
	hitsSelf := contains(bodyToCheck, nextHead)

	if hitsWall || hitsSelf {
		out := state.Clone()
		out.Status = structs.StatusOver
		return out
	}

	out := state
	out.Heading = state.Direction

	if willGrow {
		grown := make([]structs.Position, 0, len(state.Snake)+1)
		grown = append(grown, nextHead)
		grown = append(grown, state.Snake...)
		out.Snake = grown
		out.Score = state.Score + 1
		out.TickIntervalMs = NextInterval(state.TickIntervalMs)

		food, ok := e.RandomFood(grown)
		if !ok {
			// 棋盘已满，没有地方放食物
			out.Status = structs.StatusWon
			return out
		}
		out.Food = food
		return out
	}

	moved := make([]structs.Position, len(state.Snake))
	moved[0] = nextHead
	copy(moved[1:], state.Snake[:len(state.Snake)-1])
	out.Snake = moved
	return out
}

// Move 根据方向计算新头部位置
func Move(head structs.Position, d structs.Direction) structs.Position {
	dx, dy := d.Delta()
	return structs.Position{X: head.X + dx, Y: head.Y + dy}
}

// InBounds reports whether p lies on the board.
func InBounds(p structs.Position) bool {
	return p.X >= 0 && p.X < BoardSize && p.Y >= 0 && p.Y < BoardSize
}

// NextInterval returns the tick interval after one food is eaten.
func NextInterval(prev int) int {
	next := prev - TickDecrementMs
	if next < TickFloorMs {
		return TickFloorMs
	}
	return next
}

func contains(body []structs.Position, p structs.Position) bool {
	for _, s := range body {
		if s == p {
			return true
		}
	}
	return false
}
