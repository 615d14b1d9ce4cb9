// Package interact is the canvas state machine: tool mode, pending connect
// anchor, selection and the pan/drag/resize gestures.
//
// All graph and viewport mutations go through the Controller so that the
// render sync and the commit hook always follow. The controller never blocks
// and never locks; callers deliver events one at a time.
package interact

import (
	"github.com/msalah0e/horizon/internal/viewport"
	"github.com/msalah0e/horizon/internal/workflow"
)

// Mode is the active tool.
type Mode string

const (
	ModeNavigate   Mode = "navigate"
	ModeConnect    Mode = "connect"
	ModeDisconnect Mode = "disconnect"
)

// ParseMode accepts the mode names plus the legacy "pan" and
// "delete-connect" spellings.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "navigate", "pan":
		return ModeNavigate, true
	case "connect":
		return ModeConnect, true
	case "disconnect", "delete-connect":
		return ModeDisconnect, true
	}
	return "", false
}

// Area is the kind of element under the pointer.
type Area int

const (
	AreaBackground Area = iota
	AreaToolbar
	AreaCardBody
	AreaCardText
	AreaCardControls
	AreaResizeHandle
	AreaConnection
)

// Target is a hit-test result.
type Target struct {
	Area         Area
	CardID       int
	ConnectionID int
}

// Background is the empty canvas.
var Background = Target{Area: AreaBackground}

// Gesture is the pointer gesture in progress.
type Gesture int

const (
	GestureNone Gesture = iota
	GesturePan
	GestureDrag
	GestureResize
)

func (g Gesture) String() string {
	switch g {
	case GesturePan:
		return "pan"
	case GestureDrag:
		return "drag"
	case GestureResize:
		return "resize"
	}
	return "none"
}

// Action is what a click ended up doing.
type Action int

const (
	ActionNone Action = iota
	ActionSelected
	ActionAnchored
	ActionConnected
	ActionDisconnected
	ActionDeleteRequested
)

func (a Action) String() string {
	switch a {
	case ActionSelected:
		return "selected"
	case ActionAnchored:
		return "anchored"
	case ActionConnected:
		return "connected"
	case ActionDisconnected:
		return "disconnected"
	case ActionDeleteRequested:
		return "delete_requested"
	}
	return "none"
}

// Field names an inline-editable card region.
type Field string

const (
	FieldTitle   Field = "title"
	FieldContent Field = "content"
)

// Change describes a committed mutation, handed to the commit hook.
type Change struct {
	Kind         string
	CardID       int
	ConnectionID int
}

// Renderer receives render-sync calls after each mutation.
type Renderer interface {
	Rebuild()
	PatchCard(id int)
	PatchViewport()
	RemoveCard(id int)
	AddLine(connID int)
	RemoveLine(connID int)
	Mark(selected, anchor int, disconnect bool)
}

// Controller drives one graph and viewport.
type Controller struct {
	graph  *workflow.Graph
	view   *viewport.Viewport
	render Renderer
	commit func(Change)

	mode     Mode
	anchor   int
	selected int

	gesture Gesture
	card    int
	last    workflow.Point
	rectW   float64
	rectH   float64
}

// New builds a controller in navigate mode. render and commit may be nil.
func New(g *workflow.Graph, v *viewport.Viewport, render Renderer, commit func(Change)) *Controller {
	if render == nil {
		render = nopRenderer{}
	}
	if commit == nil {
		commit = func(Change) {}
	}
	return &Controller{graph: g, view: v, render: render, commit: commit, mode: ModeNavigate}
}

func (c *Controller) Mode() Mode { return c.mode }
func (c *Controller) Anchor() int { return c.anchor }
func (c *Controller) Selected() int { return c.selected }
func (c *Controller) Gesture() Gesture { return c.gesture }
func (c *Controller) Graph() *workflow.Graph { return c.graph }
func (c *Controller) Viewport() *viewport.Viewport { return c.view }

func (c *Controller) mark() {
	c.render.Mark(c.selected, c.anchor, c.mode == ModeDisconnect)
}

// ─── Modes ───

// ToggleMode activates m, or returns to navigate when m is already active.
func (c *Controller) ToggleMode(m Mode) {
	if m == c.mode {
		m = ModeNavigate
	}
	c.setMode(m)
}

// Escape returns to navigate mode.
func (c *Controller) Escape() {
	c.setMode(ModeNavigate)
}

func (c *Controller) setMode(m Mode) {
	c.mode = m
	if m != ModeConnect {
		c.anchor = 0
	}
	// A gesture cut short by a mode switch keeps what it moved.
	c.endGesture(true)
	c.mark()
}

// Reset drops all transient state and rebuilds the scene. Used after a bulk
// load.
func (c *Controller) Reset() {
	c.mode = ModeNavigate
	c.anchor = 0
	c.selected = 0
	c.gesture = GestureNone
	c.card = 0
	c.render.Rebuild()
	c.mark()
}

// ─── Gestures ───

// PointerDown starts a gesture when the press lands on something draggable
// in navigate mode. It reports whether a gesture started.
func (c *Controller) PointerDown(t Target, p workflow.Point) bool {
	if c.mode != ModeNavigate || c.gesture != GestureNone {
		return false
	}
	switch t.Area {
	case AreaBackground:
		c.gesture = GesturePan
	case AreaCardBody:
		if c.graph.Card(t.CardID) == nil {
			return false
		}
		c.gesture = GestureDrag
		c.card = t.CardID
	case AreaResizeHandle:
		card := c.graph.Card(t.CardID)
		if card == nil {
			return false
		}
		c.gesture = GestureResize
		c.card = t.CardID
		c.rectW, c.rectH = card.Width, card.Height
	default:
		// Toolbar, editable text and controls keep the press for themselves.
		return false
	}
	c.last = p
	return true
}

// PointerMove advances the active gesture to screen point p.
func (c *Controller) PointerMove(p workflow.Point) {
	if c.gesture == GestureNone {
		return
	}
	dx, dy := p.X-c.last.X, p.Y-c.last.Y
	c.last = p

	switch c.gesture {
	case GesturePan:
		c.view.PanBy(dx, dy)
		c.render.PatchViewport()
	case GestureDrag:
		card := c.graph.Card(c.card)
		if card == nil {
			c.gesture = GestureNone
			return
		}
		x, y := card.X+dx/c.view.Scale, card.Y+dy/c.view.Scale
		c.graph.MutateCard(c.card, workflow.CardPatch{X: &x, Y: &y})
		c.render.PatchCard(c.card)
	case GestureResize:
		c.rectW += dx / c.view.Scale
		c.rectH += dy / c.view.Scale
		w, h := c.rectW, c.rectH
		if !c.graph.MutateCard(c.card, workflow.CardPatch{Width: &w, Height: &h}) {
			c.gesture = GestureNone
			return
		}
		c.render.PatchCard(c.card)
	}
}

// PointerUp ends the gesture and commits its last value.
func (c *Controller) PointerUp() { c.endGesture(true) }

// PointerLeave ends the gesture like PointerUp. There is no rollback.
func (c *Controller) PointerLeave() { c.endGesture(true) }

func (c *Controller) endGesture(commit bool) {
	g, card := c.gesture, c.card
	c.gesture = GestureNone
	c.card = 0
	if !commit {
		return
	}
	switch g {
	case GesturePan:
		c.commit(Change{Kind: "viewport.pan"})
	case GestureDrag:
		c.commit(Change{Kind: "card.move", CardID: card})
	case GestureResize:
		c.commit(Change{Kind: "card.resize", CardID: card})
	}
}

// Wheel zooms toward p. Scrolling over card text scrolls the text instead.
// deltaY follows browser wheel events: negative zooms in.
func (c *Controller) Wheel(t Target, p workflow.Point, deltaY float64) bool {
	if t.Area == AreaCardText || deltaY == 0 {
		return false
	}
	sign := 1.0
	if deltaY > 0 {
		sign = -1
	}
	c.view.ZoomAt(p, sign)
	c.render.PatchViewport()
	c.commit(Change{Kind: "viewport.zoom"})
	return true
}

// ─── Clicks ───

// Click handles a completed click on t according to the mode.
func (c *Controller) Click(t Target) Action {
	switch t.Area {
	case AreaCardText, AreaToolbar, AreaBackground, AreaResizeHandle:
		return ActionNone
	case AreaCardControls:
		if c.graph.Card(t.CardID) == nil {
			return ActionNone
		}
		return ActionDeleteRequested
	case AreaConnection:
		if c.mode != ModeDisconnect {
			return ActionNone
		}
		if c.Disconnect(t.ConnectionID) {
			return ActionDisconnected
		}
		return ActionNone
	case AreaCardBody:
		return c.clickCard(t.CardID)
	}
	return ActionNone
}

func (c *Controller) clickCard(id int) Action {
	if c.graph.Card(id) == nil {
		return ActionNone
	}
	switch c.mode {
	case ModeConnect:
		if c.anchor == 0 {
			c.anchor = id
			c.mark()
			return ActionAnchored
		}
		if id == c.anchor {
			return ActionNone
		}
		conn := c.Connect(c.anchor, id)
		c.anchor = 0
		c.mark()
		if conn == nil {
			return ActionNone
		}
		return ActionConnected
	case ModeDisconnect:
		return ActionNone
	}
	c.selected = id
	c.mark()
	return ActionSelected
}

// ─── Mutations ───

// AddCard adds a card at pos and draws it.
func (c *Controller) AddCard(kind workflow.Kind, title, content string, pos workflow.Point) *workflow.Card {
	card := c.graph.AddCard(kind, title, content, pos)
	c.render.PatchCard(card.ID)
	c.commit(Change{Kind: "card.add", CardID: card.ID})
	return card
}

// DeleteCard removes a card with its connections and clears any anchor or
// selection pointing at it.
func (c *Controller) DeleteCard(id int) bool {
	if !c.graph.DeleteCard(id) {
		return false
	}
	if c.anchor == id {
		c.anchor = 0
	}
	if c.selected == id {
		c.selected = 0
	}
	if c.card == id {
		c.gesture = GestureNone
		c.card = 0
	}
	c.render.RemoveCard(id)
	c.mark()
	c.commit(Change{Kind: "card.delete", CardID: id})
	return true
}

// Connect links two cards. Returns nil for the documented no-op cases.
func (c *Controller) Connect(a, b int) *workflow.Connection {
	conn := c.graph.AddConnection(a, b)
	if conn == nil {
		return nil
	}
	c.render.AddLine(conn.ID)
	c.mark()
	c.commit(Change{Kind: "connection.add", ConnectionID: conn.ID})
	return conn
}

// Disconnect removes a connection by id.
func (c *Controller) Disconnect(id int) bool {
	if !c.graph.DeleteConnection(id) {
		return false
	}
	c.render.RemoveLine(id)
	c.commit(Change{Kind: "connection.delete", ConnectionID: id})
	return true
}

// EditText commits an inline edit of a card's title or content.
func (c *Controller) EditText(id int, field Field, value string) bool {
	var patch workflow.CardPatch
	switch field {
	case FieldTitle:
		patch.Title = &value
	case FieldContent:
		patch.Content = &value
	default:
		return false
	}
	if !c.graph.MutateCard(id, patch) {
		return false
	}
	c.render.PatchCard(id)
	c.commit(Change{Kind: "card.edit", CardID: id})
	return true
}

// MoveCard sets a card's position directly.
func (c *Controller) MoveCard(id int, pos workflow.Point) bool {
	if !c.graph.MutateCard(id, workflow.CardPatch{X: &pos.X, Y: &pos.Y}) {
		return false
	}
	c.render.PatchCard(id)
	c.commit(Change{Kind: "card.move", CardID: id})
	return true
}

// ResizeCard sets a card's size directly, floored at the minimum.
func (c *Controller) ResizeCard(id int, w, h float64) bool {
	if !c.graph.MutateCard(id, workflow.CardPatch{Width: &w, Height: &h}) {
		return false
	}
	c.render.PatchCard(id)
	c.commit(Change{Kind: "card.resize", CardID: id})
	return true
}

// PanBy pans by a screen delta and commits.
func (c *Controller) PanBy(dx, dy float64) {
	c.view.PanBy(dx, dy)
	c.render.PatchViewport()
	c.commit(Change{Kind: "viewport.pan"})
}

// ZoomAt zooms toward p and commits.
func (c *Controller) ZoomAt(p workflow.Point, sign float64) {
	c.view.ZoomAt(p, sign)
	c.render.PatchViewport()
	c.commit(Change{Kind: "viewport.zoom"})
}

// ResetView returns to the identity transform and commits.
func (c *Controller) ResetView() {
	c.view.Reset()
	c.render.PatchViewport()
	c.commit(Change{Kind: "viewport.reset"})
}

// Clear removes every card and connection.
func (c *Controller) Clear() {
	c.graph.Clear()
	c.anchor = 0
	c.selected = 0
	c.gesture = GestureNone
	c.card = 0
	c.render.Rebuild()
	c.mark()
	c.commit(Change{Kind: "clear"})
}

type nopRenderer struct{}

func (nopRenderer) Rebuild() {}
func (nopRenderer) PatchCard(int) {}
func (nopRenderer) PatchViewport() {}
func (nopRenderer) RemoveCard(int) {}
func (nopRenderer) AddLine(int) {}
func (nopRenderer) RemoveLine(int) {}
func (nopRenderer) Mark(int, int, bool) {}
