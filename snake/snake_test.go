package snake

import (
	"reflect"
	"testing"

	"github.com/hoshinonyaruko/snaky/structs"
)

func pos(x, y int) structs.Position {
	return structs.Position{X: x, Y: y}
}

func runningState(snake []structs.Position, dir structs.Direction, food structs.Position) structs.GameState {
	return structs.GameState{
		Snake:          snake,
		Food:           food,
		Direction:      dir,
		Heading:        dir,
		TickIntervalMs: InitialTickIntervalMs,
		Status:         structs.StatusRunning,
	}
}

func TestTickGrowsOntoFood(t *testing.T) {
	e := NewEngine(1)
	state := runningState([]structs.Position{pos(10, 10), pos(9, 10)}, structs.Right, pos(11, 10))

	next := e.Tick(state)

	want := []structs.Position{pos(11, 10), pos(10, 10), pos(9, 10)}
	if !reflect.DeepEqual(next.Snake, want) {
		t.Fatalf("snake = %v, want %v", next.Snake, want)
	}
	if next.Score != 1 {
		t.Errorf("score = %d, want 1", next.Score)
	}
	if next.TickIntervalMs != 145 {
		t.Errorf("interval = %d, want 145", next.TickIntervalMs)
	}
	if next.Status != structs.StatusRunning {
		t.Errorf("status = %s, want running", next.Status)
	}
	if contains(next.Snake, next.Food) {
		t.Errorf("food %v placed on snake", next.Food)
	}
}

func TestTickWallCollision(t *testing.T) {
	e := NewEngine(1)
	state := runningState([]structs.Position{pos(0, 10), pos(1, 10)}, structs.Left, pos(5, 5))
	state.Score = 3

	next := e.Tick(state)

	if next.Status != structs.StatusOver {
		t.Fatalf("status = %s, want over", next.Status)
	}
	if !reflect.DeepEqual(next.Snake, state.Snake) || next.Food != state.Food || next.Score != 3 {
		t.Errorf("state changed on collision: %+v", next)
	}
	if next.TickIntervalMs != state.TickIntervalMs {
		t.Errorf("interval changed on collision")
	}
}

func TestTickMovesIntoVacatedTail(t *testing.T) {
	e := NewEngine(1)
	// 2x2 loop: head moves onto the cell the tail leaves this tick
	state := runningState([]structs.Position{pos(5, 5), pos(5, 6), pos(6, 6), pos(6, 5)}, structs.Right, pos(0, 0))
	state.Heading = structs.Up

	next := e.Tick(state)

	if next.Status != structs.StatusRunning {
		t.Fatalf("status = %s, want running", next.Status)
	}
	want := []structs.Position{pos(6, 5), pos(5, 5), pos(5, 6), pos(6, 6)}
	if !reflect.DeepEqual(next.Snake, want) {
		t.Errorf("snake = %v, want %v", next.Snake, want)
	}
}

func TestTickTailNotVacatedWhenGrowing(t *testing.T) {
	e := NewEngine(1)
	state := runningState([]structs.Position{pos(5, 5), pos(5, 6), pos(6, 6), pos(6, 5)}, structs.Right, pos(6, 5))

	next := e.Tick(state)

	if next.Status != structs.StatusOver {
		t.Fatalf("status = %s, want over", next.Status)
	}
}

func TestTickSelfCollision(t *testing.T) {
	e := NewEngine(1)
	state := runningState([]structs.Position{pos(5, 5), pos(6, 5), pos(6, 6), pos(5, 6), pos(4, 6)}, structs.Down, pos(0, 0))

	next := e.Tick(state)

	if next.Status != structs.StatusOver {
		t.Fatalf("status = %s, want over", next.Status)
	}
}

func TestTickDoesNotMutateInput(t *testing.T) {
	e := NewEngine(1)
	state := runningState([]structs.Position{pos(10, 10), pos(9, 10)}, structs.Right, pos(11, 10))
	before := state.Clone()

	e.Tick(state)
	e.Tick(e.Reset())

	if !reflect.DeepEqual(state, before) {
		t.Errorf("input mutated: %+v, was %+v", state, before)
	}
}

func TestTickIsNoopWhenOver(t *testing.T) {
	e := NewEngine(1)
	state := runningState([]structs.Position{pos(10, 10), pos(9, 10)}, structs.Right, pos(11, 10))
	state.Status = structs.StatusOver

	next := e.Tick(state)

	if !reflect.DeepEqual(next, state) {
		t.Errorf("tick changed a finished game: %+v", next)
	}
}

func TestTickWinsWhenBoardFills(t *testing.T) {
	e := NewEngine(1)
	// 蛇形路径覆盖整个棋盘，最后一格是食物
	path := make([]structs.Position, 0, BoardSize*BoardSize)
	for y := 0; y < BoardSize; y++ {
		for i := 0; i < BoardSize; i++ {
			x := i
			if y%2 == 1 {
				x = BoardSize - 1 - i
			}
			path = append(path, pos(x, y))
		}
	}
	last := len(path) - 1
	body := make([]structs.Position, 0, last)
	for i := last - 1; i >= 0; i-- {
		body = append(body, path[i])
	}
	state := runningState(body, structs.Left, path[last])

	next := e.Tick(state)

	if next.Status != structs.StatusWon {
		t.Fatalf("status = %s, want won", next.Status)
	}
	if len(next.Snake) != BoardSize*BoardSize {
		t.Errorf("length = %d, want %d", len(next.Snake), BoardSize*BoardSize)
	}
	if next.Score != state.Score+1 {
		t.Errorf("score = %d, want %d", next.Score, state.Score+1)
	}
	if again := e.Tick(next); !reflect.DeepEqual(again, next) {
		t.Errorf("tick changed a won game")
	}
}

func TestRequestDirection(t *testing.T) {
	tests := []struct {
		current, requested, want structs.Direction
	}{
		{structs.Right, structs.Left, structs.Right},
		{structs.Right, structs.Right, structs.Right},
		{structs.Right, structs.Up, structs.Up},
		{structs.Right, structs.Down, structs.Down},
		{structs.Up, structs.Down, structs.Up},
		{structs.Up, structs.Left, structs.Left},
		{structs.Left, structs.Right, structs.Left},
		{structs.Down, structs.Up, structs.Down},
		{structs.Down, "sideways", structs.Down},
	}
	for _, tt := range tests {
		if got := RequestDirection(tt.current, tt.requested); got != tt.want {
			t.Errorf("RequestDirection(%s, %s) = %s, want %s", tt.current, tt.requested, got, tt.want)
		}
	}
}

func TestSteerLatestWins(t *testing.T) {
	e := NewEngine(1)
	state := e.Reset()

	state = Steer(state, structs.Up)
	state = Steer(state, structs.Down) // opposite of up
	if state.Direction != structs.Up {
		t.Fatalf("direction = %s, want up", state.Direction)
	}

	state = Steer(state, structs.Right)
	if state.Direction != structs.Right {
		t.Fatalf("direction = %s, want right", state.Direction)
	}
}

func TestSteerNeverReversesHeading(t *testing.T) {
	e := NewEngine(1)
	state := e.Reset()

	// up then left between two ticks would fold the head back onto the neck
	state = Steer(state, structs.Up)
	state = Steer(state, structs.Left)
	if state.Direction != structs.Up {
		t.Fatalf("direction = %s, want up", state.Direction)
	}

	state = e.Tick(state)
	state = Steer(state, structs.Left)
	if state.Direction != structs.Left {
		t.Fatalf("direction = %s, want left after moving up", state.Direction)
	}
}

func TestSteerIgnoredWhenOver(t *testing.T) {
	e := NewEngine(1)
	state := e.Reset()
	state.Status = structs.StatusOver

	if got := Steer(state, structs.Up); got.Direction != structs.Right {
		t.Errorf("direction = %s, want right", got.Direction)
	}
}

func TestResetCanonicalState(t *testing.T) {
	e := NewEngine(42)
	state := e.Reset()

	if !reflect.DeepEqual(state.Snake, []structs.Position{pos(10, 10), pos(9, 10)}) {
		t.Errorf("snake = %v", state.Snake)
	}
	if state.Direction != structs.Right || state.Score != 0 ||
		state.TickIntervalMs != InitialTickIntervalMs || state.Status != structs.StatusRunning {
		t.Errorf("unexpected initial state %+v", state)
	}
	if contains(state.Snake, state.Food) || !InBounds(state.Food) {
		t.Errorf("bad food %v", state.Food)
	}

	state = e.Tick(Steer(state, structs.Up))
	for state.Status == structs.StatusRunning {
		state = e.Tick(state)
	}
	again := e.Reset()
	if state.Status != structs.StatusOver {
		t.Fatalf("status = %s, want over", state.Status)
	}
	if !reflect.DeepEqual(again.Snake, InitialSnake()) || again.Status != structs.StatusRunning ||
		again.Score != 0 || again.Direction != structs.Right || again.TickIntervalMs != InitialTickIntervalMs {
		t.Errorf("reset after game over = %+v", again)
	}
}

// TestRandomPlayInvariants drives many games with pseudo-random input and
// checks the per-tick properties on every step.
func TestRandomPlayInvariants(t *testing.T) {
	dirs := []structs.Direction{structs.Up, structs.Down, structs.Left, structs.Right}
	for seed := int64(0); seed < 50; seed++ {
		e := NewEngine(seed)
		input := NewEngine(seed + 1000)
		state := e.Reset()

		for step := 0; step < 2000 && state.Status == structs.StatusRunning; step++ {
			if input.rng.Intn(4) == 0 {
				before := state.Direction
				req := dirs[input.rng.Intn(len(dirs))]
				state = Steer(state, req)
				if (req == before || req == before.Opposite()) && state.Direction != before {
					t.Fatalf("seed %d: request %s changed direction %s", seed, req, before)
				}
				if state.Direction == state.Heading.Opposite() {
					t.Fatalf("seed %d: committed reversal of %s", seed, state.Heading)
				}
			}

			prev := state
			willGrow := Move(prev.Head(), prev.Direction) == prev.Food
			state = e.Tick(prev)

			if state.Status == structs.StatusOver {
				break
			}
			if willGrow {
				if len(state.Snake) != len(prev.Snake)+1 || state.Score != prev.Score+1 {
					t.Fatalf("seed %d: growth len %d->%d score %d->%d", seed, len(prev.Snake), len(state.Snake), prev.Score, state.Score)
				}
			} else if len(state.Snake) != len(prev.Snake) || state.Score != prev.Score {
				t.Fatalf("seed %d: length %d->%d without food", seed, len(prev.Snake), len(state.Snake))
			}
			if contains(state.Snake[1:], state.Head()) {
				t.Fatalf("seed %d: head %v overlaps body", seed, state.Head())
			}
			if state.Status == structs.StatusRunning && contains(state.Snake, state.Food) {
				t.Fatalf("seed %d: food %v on snake", seed, state.Food)
			}
			if state.TickIntervalMs > prev.TickIntervalMs || state.TickIntervalMs < TickFloorMs {
				t.Fatalf("seed %d: interval %d -> %d", seed, prev.TickIntervalMs, state.TickIntervalMs)
			}
		}
	}
}

func TestNextIntervalFloor(t *testing.T) {
	interval := InitialTickIntervalMs
	for i := 0; i < 100; i++ {
		next := NextInterval(interval)
		if next > interval || next < TickFloorMs {
			t.Fatalf("NextInterval(%d) = %d", interval, next)
		}
		interval = next
	}
	if interval != TickFloorMs {
		t.Errorf("interval settled at %d, want %d", interval, TickFloorMs)
	}
}
