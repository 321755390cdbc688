package snake

import (
	"testing"

	"github.com/hoshinonyaruko/snaky/structs"
)

func TestStepsPerSecond(t *testing.T) {
	tests := map[int]float64{
		150: 6.7,
		145: 6.9,
		100: 10,
		60:  16.7,
		0:   0,
	}
	for interval, want := range tests {
		if got := StepsPerSecond(interval); got != want {
			t.Errorf("StepsPerSecond(%d) = %v, want %v", interval, got, want)
		}
	}
}

func TestCells(t *testing.T) {
	state := runningState([]structs.Position{pos(3, 4), pos(2, 4), pos(1, 4)}, structs.Right, pos(7, 8))

	cells := Cells(state)

	if len(cells) != BoardSize || len(cells[0]) != BoardSize {
		t.Fatalf("board is %dx%d", len(cells[0]), len(cells))
	}
	if cells[4][3] != structs.CellHead {
		t.Errorf("head cell = %s", cells[4][3])
	}
	if cells[4][2] != structs.CellBody || cells[4][1] != structs.CellBody {
		t.Errorf("body cells = %s %s", cells[4][2], cells[4][1])
	}
	if cells[8][7] != structs.CellFood {
		t.Errorf("food cell = %s", cells[8][7])
	}

	counts := map[structs.CellKind]int{}
	for _, row := range cells {
		for _, c := range row {
			counts[c]++
		}
	}
	if counts[structs.CellEmpty] != BoardSize*BoardSize-4 {
		t.Errorf("empty cells = %d", counts[structs.CellEmpty])
	}
}

func TestNewSnapshot(t *testing.T) {
	state := NewEngine(3).Reset()

	snap := NewSnapshot("abc", state)

	if snap.SessionID != "abc" || snap.BoardSize != BoardSize || snap.StepsPerSecond != 6.7 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	snap.State.Snake[0] = pos(0, 0)
	if state.Snake[0] == pos(0, 0) {
		t.Errorf("snapshot shares snake memory with state")
	}
}
