package input

import (
	"fmt"
	"strings"
	"sync"

	"github.com/eiannone/keyboard"
	"github.com/hoshinonyaruko/snaky/structs"
)

// FromKeyName maps a browser KeyboardEvent.key value to a direction.
// Arrow keys and WASD are equivalent, letters case-insensitive.
func FromKeyName(name string) (structs.Direction, bool) {
	switch name {
	case "ArrowUp":
		return structs.Up, true
	case "ArrowDown":
		return structs.Down, true
	case "ArrowLeft":
		return structs.Left, true
	case "ArrowRight":
		return structs.Right, true
	}
	switch strings.ToLower(name) {
	case "w":
		return structs.Up, true
	case "s":
		return structs.Down, true
	case "a":
		return structs.Left, true
	case "d":
		return structs.Right, true
	}
	return "", false
}

// IsRestartKey reports whether name restarts a game in status. Space and
// Enter only restart a finished game.
func IsRestartKey(name string, status structs.Status) bool {
	if !status.Terminal() {
		return false
	}
	return name == " " || name == "Enter" || name == "Space"
}

// KeyInput is one key press read from the terminal.
type KeyInput struct {
	Char rune
	Key  keyboard.Key
}

// KeyboardHandler forwards terminal key presses on a channel until Stop.
type KeyboardHandler struct {
	keys     chan KeyInput
	stop     chan struct{}
	stopOnce sync.Once
	opened   bool
}

func NewKeyboardHandler() *KeyboardHandler {
	return &KeyboardHandler{
		keys: make(chan KeyInput, 8),
		stop: make(chan struct{}),
	}
}

// Start puts the terminal in raw mode and begins reading keys.
func (h *KeyboardHandler) Start() error {
	if err := keyboard.Open(); err != nil {
		return fmt.Errorf("open keyboard: %w", err)
	}
	h.opened = true
	go h.read(keyboard.GetKey)
	return nil
}

func (h *KeyboardHandler) read(getKey func() (rune, keyboard.Key, error)) {
	defer close(h.keys)
	for {
		char, key, err := getKey()
		if err != nil {
			return
		}
		select {
		case h.keys <- KeyInput{Char: char, Key: key}:
		case <-h.stop:
			return
		}
	}
}

// Stop releases the terminal. It is safe to call more than once.
func (h *KeyboardHandler) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
		if h.opened {
			keyboard.Close()
		}
	})
}

// Input returns the key channel, closed once reading ends.
func (h *KeyboardHandler) Input() <-chan KeyInput {
	return h.keys
}

// FromTerminal maps a terminal key press to a direction.
func FromTerminal(in KeyInput) (structs.Direction, bool) {
	switch in.Key {
	case keyboard.KeyArrowUp:
		return structs.Up, true
	case keyboard.KeyArrowDown:
		return structs.Down, true
	case keyboard.KeyArrowLeft:
		return structs.Left, true
	case keyboard.KeyArrowRight:
		return structs.Right, true
	}
	if in.Char == 0 {
		return "", false
	}
	return FromKeyName(string(in.Char))
}

// IsTerminalRestart reports whether a terminal key press restarts a
// finished game.
func IsTerminalRestart(in KeyInput, status structs.Status) bool {
	switch in.Key {
	case keyboard.KeySpace:
		return IsRestartKey(" ", status)
	case keyboard.KeyEnter:
		return IsRestartKey("Enter", status)
	}
	return false
}

// IsQuit reports q, Esc or Ctrl-C.
func IsQuit(in KeyInput) bool {
	return in.Char == 'q' || in.Char == 'Q' || in.Key == keyboard.KeyEsc || in.Key == keyboard.KeyCtrlC
}
