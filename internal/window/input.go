package window

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/meshcast/internal/stream"
)

// EventType classifies an input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventKeyDown
	EventKeyUp
)

// Event represents a processed input event.
type Event struct {
	Type EventType
	Key  sdl.Scancode
}

// Speeds scales held-key input into per-frame controls.
type Speeds struct {
	Move float64 // units per second
	Turn float64 // radians per second
}

// Input polls SDL events.
type Input struct {
	events []Event
	keys   []uint8
}

// NewInput creates a new input handler.
func NewInput() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events. Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}
			if e.Type == sdl.KEYDOWN {
				i.events = append(i.events, Event{Type: EventKeyDown, Key: e.Keysym.Scancode})
			} else if e.Type == sdl.KEYUP {
				i.events = append(i.events, Event{Type: EventKeyUp, Key: e.Keysym.Scancode})
			}
		}
	}

	i.keys = sdl.GetKeyboardState()
	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key went down during the last Update.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// IsKeyHeld reports whether a key is currently down.
func (i *Input) IsKeyHeld(scancode sdl.Scancode) bool {
	return int(scancode) < len(i.keys) && i.keys[scancode] != 0
}

func (i *Input) axis(neg, pos sdl.Scancode) float64 {
	v := 0.0
	if i.IsKeyHeld(pos) {
		v++
	}
	if i.IsKeyHeld(neg) {
		v--
	}
	return v
}

// Controls converts held keys into camera controls for a frame lasting
// dt seconds.
//
//	W/S forward/back, A/D strafe, Space/LCtrl up/down,
//	arrows pitch and yaw, Q/E roll.
func (i *Input) Controls(dt float64, speeds Speeds) []stream.Control {
	var out []stream.Control

	move := speeds.Move * dt
	forward := i.axis(sdl.SCANCODE_S, sdl.SCANCODE_W)
	right := i.axis(sdl.SCANCODE_A, sdl.SCANCODE_D)
	up := i.axis(sdl.SCANCODE_LCTRL, sdl.SCANCODE_SPACE)
	if forward != 0 || right != 0 || up != 0 {
		out = append(out, stream.Control{Type: stream.ControlMove, X: forward * move, Y: right * move, Z: up * move})
	}

	turn := speeds.Turn * dt
	pitch := i.axis(sdl.SCANCODE_DOWN, sdl.SCANCODE_UP)
	yaw := i.axis(sdl.SCANCODE_LEFT, sdl.SCANCODE_RIGHT)
	roll := i.axis(sdl.SCANCODE_Q, sdl.SCANCODE_E)
	if pitch != 0 || yaw != 0 || roll != 0 {
		out = append(out, stream.Control{Type: stream.ControlTurn, X: pitch * turn, Y: yaw * turn, Z: roll * turn})
	}

	return out
}
