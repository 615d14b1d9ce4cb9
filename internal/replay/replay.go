// Package replay feeds scripted pointer and keyboard events through an
// interaction controller. Scripts are YAML (or JSON) lists of events.
package replay

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/msalah0e/horizon/internal/interact"
	"github.com/msalah0e/horizon/internal/workflow"
)

// Event types.
const (
	TypeDown   = "down"
	TypeMove   = "move"
	TypeUp     = "up"
	TypeLeave  = "leave"
	TypeClick  = "click"
	TypeWheel  = "wheel"
	TypeToggle = "toggle"
	TypeEscape = "escape"
)

var ErrBadEvent = errors.New("replay: bad event")

// Event is one scripted input. X and Y are screen coordinates.
type Event struct {
	Type       string  `yaml:"type" json:"type"`
	Area       string  `yaml:"area,omitempty" json:"area,omitempty"`
	Card       int     `yaml:"card,omitempty" json:"card,omitempty"`
	Connection int     `yaml:"connection,omitempty" json:"connection,omitempty"`
	X          float64 `yaml:"x,omitempty" json:"x,omitempty"`
	Y          float64 `yaml:"y,omitempty" json:"y,omitempty"`
	DeltaY     float64 `yaml:"dy,omitempty" json:"dy,omitempty"`
	Mode       string  `yaml:"mode,omitempty" json:"mode,omitempty"`
}

// Script is a named event list.
type Script struct {
	Name   string  `yaml:"name,omitempty" json:"name,omitempty"`
	Events []Event `yaml:"events" json:"events"`
}

// Parse decodes a script. A bare list of events is accepted too.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		var events []Event
		if lerr := yaml.Unmarshal(data, &events); lerr != nil {
			return nil, fmt.Errorf("replay: parse: %w", err)
		}
		s.Events = events
	}
	for i, e := range s.Events {
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("event %d: %w", i+1, err)
		}
	}
	return &s, nil
}

var areas = map[string]interact.Area{
	"":           interact.AreaBackground,
	"background": interact.AreaBackground,
	"toolbar":    interact.AreaToolbar,
	"card":       interact.AreaCardBody,
	"text":       interact.AreaCardText,
	"controls":   interact.AreaCardControls,
	"resize":     interact.AreaResizeHandle,
	"connection": interact.AreaConnection,
}

func (e Event) validate() error {
	switch e.Type {
	case TypeDown, TypeClick, TypeWheel:
		if _, ok := areas[e.Area]; !ok {
			return fmt.Errorf("%w: unknown area %q", ErrBadEvent, e.Area)
		}
	case TypeToggle:
		if _, ok := interact.ParseMode(e.Mode); !ok {
			return fmt.Errorf("%w: unknown mode %q", ErrBadEvent, e.Mode)
		}
	case TypeMove, TypeUp, TypeLeave, TypeEscape:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrBadEvent, e.Type)
	}
	return nil
}

func (e Event) target() interact.Target {
	return interact.Target{Area: areas[e.Area], CardID: e.Card, ConnectionID: e.Connection}
}

// Outcome reports what one event did.
type Outcome struct {
	Type    string `json:"type"`
	Handled bool   `json:"handled"`
	Action  string `json:"action,omitempty"`
	Deleted bool   `json:"deleted,omitempty"`
}

// Runner applies events to a controller.
type Runner struct {
	Controller *interact.Controller

	// Delete handles a click on a card's delete control. Nil leaves the
	// request unanswered.
	Delete func(ctx context.Context, id int) (bool, error)
}

// Apply feeds one event.
func (r *Runner) Apply(ctx context.Context, e Event) (Outcome, error) {
	if err := e.validate(); err != nil {
		return Outcome{}, err
	}
	c := r.Controller
	out := Outcome{Type: e.Type}
	p := workflow.Point{X: e.X, Y: e.Y}

	switch e.Type {
	case TypeDown:
		out.Handled = c.PointerDown(e.target(), p)
	case TypeMove:
		out.Handled = c.Gesture() != interact.GestureNone
		c.PointerMove(p)
	case TypeUp:
		out.Handled = c.Gesture() != interact.GestureNone
		c.PointerUp()
	case TypeLeave:
		out.Handled = c.Gesture() != interact.GestureNone
		c.PointerLeave()
	case TypeWheel:
		out.Handled = c.Wheel(e.target(), p, e.DeltaY)
	case TypeToggle:
		m, _ := interact.ParseMode(e.Mode)
		c.ToggleMode(m)
		out.Handled = true
	case TypeEscape:
		c.Escape()
		out.Handled = true
	case TypeClick:
		a := c.Click(e.target())
		out.Handled = a != interact.ActionNone
		out.Action = a.String()
		if a == interact.ActionDeleteRequested && r.Delete != nil {
			deleted, err := r.Delete(ctx, e.Card)
			if err != nil {
				return out, err
			}
			out.Deleted = deleted
		}
	}
	return out, nil
}

// Run feeds events in order and stops at the first error or when ctx is
// done.
func (r *Runner) Run(ctx context.Context, events []Event) ([]Outcome, error) {
	outs := make([]Outcome, 0, len(events))
	for i, e := range events {
		if err := ctx.Err(); err != nil {
			return outs, err
		}
		out, err := r.Apply(ctx, e)
		if err != nil {
			return outs, fmt.Errorf("event %d: %w", i+1, err)
		}
		outs = append(outs, out)
	}
	return outs, nil
}
