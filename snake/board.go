package snake

import (
	"math"

	"github.com/hoshinonyaruko/snaky/structs"
)

// StepsPerSecond 显示用的速度，保留一位小数
func StepsPerSecond(tickIntervalMs int) float64 {
	if tickIntervalMs <= 0 {
		return 0
	}
	return math.Round(1000/float64(tickIntervalMs)*10) / 10
}

// Cells classifies every board cell, indexed cells[y][x].
// Food is drawn last so it wins over a segment on the same cell.
func Cells(state structs.GameState) [][]structs.CellKind {
	cells := make([][]structs.CellKind, BoardSize)
	for y := range cells {
		row := make([]structs.CellKind, BoardSize)
		for x := range row {
			row[x] = structs.CellEmpty
		}
		cells[y] = row
	}

	for i, seg := range state.Snake {
		if !InBounds(seg) {
			continue
		}
		if i == 0 {
			cells[seg.Y][seg.X] = structs.CellHead
		} else {
			cells[seg.Y][seg.X] = structs.CellBody
		}
	}

	if state.Status != structs.StatusWon && InBounds(state.Food) {
		cells[state.Food.Y][state.Food.X] = structs.CellFood
	}
	return cells
}

// NewSnapshot derives the renderer view of state.
func NewSnapshot(sessionID string, state structs.GameState) structs.Snapshot {
	return structs.Snapshot{
		SessionID:      sessionID,
		State:          state.Clone(),
		StepsPerSecond: StepsPerSecond(state.TickIntervalMs),
		BoardSize:      BoardSize,
		Cells:          Cells(state),
	}
}
