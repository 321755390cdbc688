package render

import (
	"fmt"
	"strings"

	"github.com/hoshinonyaruko/snaky/structs"
)

var glyphs = map[structs.CellKind]string{
	structs.CellEmpty: " .",
	structs.CellBody:  " o",
	structs.CellHead:  " @",
	structs.CellFood:  " *",
}

// Text draws snap for a terminal, one line per board row.
func Text(snap structs.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Score %d   Speed %.1f steps/sec\r\n", snap.State.Score, snap.StepsPerSecond)
	border := "+" + strings.Repeat("--", snap.BoardSize) + "-+\r\n"
	b.WriteString(border)
	for _, row := range snap.Cells {
		b.WriteString("|")
		for _, kind := range row {
			b.WriteString(glyphs[kind])
		}
		b.WriteString(" |\r\n")
	}
	b.WriteString(border)

	switch snap.State.Status {
	case structs.StatusOver:
		b.WriteString("Game over. Space/Enter to restart, q to quit.\r\n")
	case structs.StatusWon:
		b.WriteString("Board cleared! Space/Enter to restart, q to quit.\r\n")
	default:
		b.WriteString("Arrows/WASD to steer, q to quit.\r\n")
	}
	return b.String()
}
