// Package input translates SDL2 events into viewer input state.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies a translated event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventText
)

// Event is one translated input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Repeat bool
	Width  int
	Height int
	MouseX int
	MouseY int
	DX     float32
	DY     float32
	Button uint8
	Text   string
}

// LookButton is the mouse button that enables mouse look while held.
const LookButton = sdl.BUTTON_RIGHT

// Input collects the events of one frame and tracks held keys.
type Input struct {
	events  []Event
	held    map[sdl.Scancode]bool
	looking bool
	dx, dy  float32
	quit    bool
}

// New creates an input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
		held:   make(map[sdl.Scancode]bool),
	}
}

// Update drains the SDL event queue. It returns true once a quit was
// requested.
func (i *Input) Update() bool {
	i.Begin()
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		i.Handle(event)
	}
	return i.quit
}

// Begin clears per-frame state.
func (i *Input) Begin() {
	i.events = i.events[:0]
	i.dx, i.dy = 0, 0
}

// Handle translates a single SDL event.
func (i *Input) Handle(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.quit = true
		i.events = append(i.events, Event{Type: EventQuit})

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			i.events = append(i.events, Event{
				Type:   EventWindowResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			})
		}

	case *sdl.KeyboardEvent:
		sc := e.Keysym.Scancode
		if e.Type == sdl.KEYDOWN {
			i.held[sc] = true
			i.events = append(i.events, Event{Type: EventKeyDown, Key: sc, Repeat: e.Repeat != 0})
		} else if e.Type == sdl.KEYUP {
			delete(i.held, sc)
			i.events = append(i.events, Event{Type: EventKeyUp, Key: sc})
		}

	case *sdl.TextInputEvent:
		i.events = append(i.events, Event{Type: EventText, Text: e.GetText()})

	case *sdl.MouseMotionEvent:
		if i.looking {
			i.dx += float32(e.XRel)
			i.dy += float32(e.YRel)
		}
		i.events = append(i.events, Event{
			Type:   EventMouseMove,
			MouseX: int(e.X),
			MouseY: int(e.Y),
			DX:     float32(e.XRel),
			DY:     float32(e.YRel),
		})

	case *sdl.MouseButtonEvent:
		t := EventMouseDown
		if e.Type == sdl.MOUSEBUTTONUP {
			t = EventMouseUp
		}
		if e.Button == LookButton {
			i.looking = t == EventMouseDown
		}
		i.events = append(i.events, Event{
			Type:   t,
			MouseX: int(e.X),
			MouseY: int(e.Y),
			Button: e.Button,
		})
	}
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed reports whether key went down this frame, ignoring repeats.
func (i *Input) IsKeyPressed(key sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == key && !e.Repeat {
			return true
		}
	}
	return false
}

// IsKeyDown reports whether key is currently held.
func (i *Input) IsKeyDown(key sdl.Scancode) bool {
	return i.held[key]
}

// MouseDelta returns mouse-look motion accumulated this frame.
func (i *Input) MouseDelta() (float32, float32) {
	return i.dx, i.dy
}

// Text returns the text typed this frame.
func (i *Input) Text() string {
	var s string
	for _, e := range i.events {
		if e.Type == EventText {
			s += e.Text
		}
	}
	return s
}

// QuitRequested reports whether a quit event has been seen.
func (i *Input) QuitRequested() bool {
	return i.quit
}
