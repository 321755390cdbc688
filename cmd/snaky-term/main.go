// Command snaky-term plays the game in a terminal.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hoshinonyaruko/snaky/input"
	"github.com/hoshinonyaruko/snaky/render"
	"github.com/hoshinonyaruko/snaky/session"
)

const clearScreen = "\033[H\033[2J"

func main() {
	keys := input.NewKeyboardHandler()
	if err := keys.Start(); err != nil {
		log.Fatalf("Failed to open keyboard: %v", err)
	}
	defer keys.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := session.New("terminal", session.Options{Seed: time.Now().UnixNano()})
	go s.Run(ctx)

	snaps, unsubscribe := s.Subscribe()
	defer unsubscribe()

	fmt.Print(clearScreen + render.Text(s.Snapshot()))
	for {
		select {
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			fmt.Print(clearScreen + render.Text(snap))

		case in, ok := <-keys.Input():
			if !ok || input.IsQuit(in) {
				return
			}
			if input.IsTerminalRestart(in, s.State().Status) {
				if _, err := s.Reset(ctx); err != nil {
					log.Printf("reset: %v", err)
				}
				continue
			}
			if dir, ok := input.FromTerminal(in); ok {
				if _, err := s.Steer(ctx, dir); err != nil {
					log.Printf("steer: %v", err)
				}
			}
		}
	}
}
