// Package ui provides the viewer's on-screen property panel.
package ui

import (
	"go.uber.org/zap"

	"github.com/Faultbox/radiance-viewer/internal/logger"
)

// Getter formats a value read from the bound state.
type Getter[S any] func(s *S) string

// Setter parses text and stores it into the bound state.
type Setter[S any] func(s *S, text string) error

type entry[S any] struct {
	label string
	get   Getter[S]
	set   Setter[S]
}

// Line is one rendered panel row.
type Line struct {
	Label    string
	Value    string
	Writable bool
	Selected bool
	Editing  bool
}

// Painter draws panel rows.
type Painter interface {
	DrawPanel(title string, lines []Line)
}

// Panel is a table of labelled bindings to a state value of type S.
// Read-write entries are edited by selecting one, typing text and
// committing it through the entry's setter.
type Panel[S any] struct {
	title    string
	state    *S
	entries  []entry[S]
	selected int // index into entries, -1 when none
	editing  bool
	buffer   string
	visible  bool
	log      *zap.Logger
}

// NewPanel creates a visible panel bound to state.
func NewPanel[S any](title string, state *S) *Panel[S] {
	return &Panel[S]{
		title:    title,
		state:    state,
		selected: -1,
		visible:  true,
		log:      logger.Named("ui"),
	}
}

// AddReadOnly registers a displayed value.
func (p *Panel[S]) AddReadOnly(label string, get Getter[S]) {
	p.entries = append(p.entries, entry[S]{label: label, get: get})
}

// AddReadWrite registers an editable value.
func (p *Panel[S]) AddReadWrite(label string, get Getter[S], set Setter[S]) {
	p.entries = append(p.entries, entry[S]{label: label, get: get, set: set})
}

// Len returns the number of registered entries.
func (p *Panel[S]) Len() int { return len(p.entries) }

// Visible reports whether Draw renders anything.
func (p *Panel[S]) Visible() bool { return p.visible }

// Toggle flips visibility. Hiding the panel drops the selection.
func (p *Panel[S]) Toggle() {
	p.visible = !p.visible
	if !p.visible {
		p.Cancel()
		p.selected = -1
	}
}

// Lines evaluates every getter against the bound state.
func (p *Panel[S]) Lines() []Line {
	lines := make([]Line, len(p.entries))
	for i, e := range p.entries {
		l := Line{
			Label:    e.label,
			Value:    e.get(p.state),
			Writable: e.set != nil,
			Selected: i == p.selected,
		}
		if l.Selected && p.editing {
			l.Value = p.buffer
			l.Editing = true
		}
		lines[i] = l
	}
	return lines
}

// Draw paints the panel when visible.
func (p *Panel[S]) Draw(painter Painter) {
	if !p.visible {
		return
	}
	painter.DrawPanel(p.title, p.Lines())
}

// SelectNext moves the selection to the next writable entry, wrapping
// around, and abandons any edit in progress.
func (p *Panel[S]) SelectNext() {
	p.Cancel()
	n := len(p.entries)
	for step := 1; step <= n; step++ {
		i := (p.selected + step + n) % n
		if p.entries[i].set != nil {
			p.selected = i
			return
		}
	}
	p.selected = -1
}

// Selected returns the label of the selected entry.
func (p *Panel[S]) Selected() (string, bool) {
	if p.selected < 0 {
		return "", false
	}
	return p.entries[p.selected].label, true
}

// Type appends text to the edit buffer, starting an edit if needed.
func (p *Panel[S]) Type(text string) {
	if p.selected < 0 || text == "" {
		return
	}
	p.editing = true
	p.buffer += text
}

// Backspace removes the last character of the edit buffer.
func (p *Panel[S]) Backspace() {
	if !p.editing || p.buffer == "" {
		return
	}
	r := []rune(p.buffer)
	p.buffer = string(r[:len(r)-1])
}

// Cancel abandons the current edit.
func (p *Panel[S]) Cancel() {
	p.editing = false
	p.buffer = ""
}

// Commit passes the edit buffer to the selected entry's setter. A setter
// error is logged and returned; the state is whatever the setter left,
// which for well-behaved setters is unchanged.
func (p *Panel[S]) Commit() error {
	if !p.editing {
		return nil
	}
	e := p.entries[p.selected]
	text := p.buffer
	p.Cancel()
	if err := e.set(p.state, text); err != nil {
		p.log.Warn("rejected panel input", zap.String("label", e.label), zap.String("text", text), zap.Error(err))
		return err
	}
	return nil
}
