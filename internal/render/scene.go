// Package render keeps a scene graph in step with the workflow graph and the
// viewport, and writes it out as SVG or Graphviz DOT.
//
// Cards are placed untransformed at their canvas geometry; the viewport
// transform is applied once to the whole scene. Rebuild is the full
// clear-and-rebuild path used on bulk loads. The Patch/Add/Remove methods are
// the incremental path used while dragging and resizing. For the same model
// state both paths yield equal scenes.
package render

import (
	"github.com/msalah0e/horizon/internal/viewport"
	"github.com/msalah0e/horizon/internal/workflow"
)

// CardVisual is the drawn form of a card.
type CardVisual struct {
	ID       int
	Kind     workflow.Kind
	X        float64
	Y        float64
	W        float64
	H        float64
	Title    string
	Content  string
	Selected bool
	Anchor   bool
}

// LineVisual is the drawn form of a connection, center to center.
type LineVisual struct {
	ID              int
	From            int
	To              int
	X1              float64
	Y1              float64
	X2              float64
	Y2              float64
	HighlightDelete bool
}

// Marks is the transient interaction state that shows up in the scene.
type Marks struct {
	Selected   int
	Anchor     int
	Disconnect bool
}

// Scene is the visible representation of one graph and viewport.
type Scene struct {
	Transform string
	Scale     float64
	Grid      bool
	Cards     map[int]*CardVisual
	Lines     map[int]*LineVisual
	Marks     Marks
}

// New returns an empty scene with the grid on.
func New() *Scene {
	return &Scene{
		Transform: viewport.New().Transform(),
		Scale:     1,
		Grid:      true,
		Cards:     make(map[int]*CardVisual),
		Lines:     make(map[int]*LineVisual),
	}
}

// Rebuild clears the scene and recreates every element.
func (s *Scene) Rebuild(g *workflow.Graph, v *viewport.Viewport, m Marks) {
	s.Cards = make(map[int]*CardVisual, len(g.Cards()))
	s.Lines = make(map[int]*LineVisual, len(g.Connections()))
	s.Marks = m
	s.PatchViewport(v)
	for _, c := range g.Cards() {
		s.Cards[c.ID] = s.cardVisual(c)
	}
	for _, conn := range g.Connections() {
		if lv := s.lineVisual(g, conn); lv != nil {
			s.Lines[conn.ID] = lv
		}
	}
}

// PatchViewport refreshes the scene transform.
func (s *Scene) PatchViewport(v *viewport.Viewport) {
	s.Transform = v.Transform()
	s.Scale = v.Scale
}

// PatchCard refreshes one card and the lines touching it. A card that no
// longer exists in g is removed.
func (s *Scene) PatchCard(g *workflow.Graph, id int) {
	c := g.Card(id)
	if c == nil {
		s.RemoveCard(id)
		return
	}
	s.Cards[id] = s.cardVisual(c)
	for _, conn := range g.ConnectionsOf(id) {
		if lv := s.lineVisual(g, conn); lv != nil {
			s.Lines[conn.ID] = lv
		}
	}
}

// RemoveCard drops a card and every line drawn to it.
func (s *Scene) RemoveCard(id int) {
	delete(s.Cards, id)
	for lid, lv := range s.Lines {
		if lv.From == id || lv.To == id {
			delete(s.Lines, lid)
		}
	}
}

// AddLine draws one connection.
func (s *Scene) AddLine(g *workflow.Graph, connID int) {
	conn := g.Connection(connID)
	if conn == nil {
		return
	}
	if lv := s.lineVisual(g, conn); lv != nil {
		s.Lines[connID] = lv
	}
}

// RemoveLine erases one connection.
func (s *Scene) RemoveLine(connID int) {
	delete(s.Lines, connID)
}

// SetMarks updates the selection, anchor and delete highlight flags.
func (s *Scene) SetMarks(m Marks) {
	s.Marks = m
	for _, cv := range s.Cards {
		cv.Selected = cv.ID == m.Selected
		cv.Anchor = cv.ID == m.Anchor
	}
	for _, lv := range s.Lines {
		lv.HighlightDelete = m.Disconnect
	}
}

func (s *Scene) cardVisual(c *workflow.Card) *CardVisual {
	return &CardVisual{
		ID:       c.ID,
		Kind:     c.Kind,
		X:        c.X,
		Y:        c.Y,
		W:        c.Width,
		H:        c.Height,
		Title:    c.Title,
		Content:  c.Content,
		Selected: c.ID == s.Marks.Selected,
		Anchor:   c.ID == s.Marks.Anchor,
	}
}

func (s *Scene) lineVisual(g *workflow.Graph, conn *workflow.Connection) *LineVisual {
	a, b := g.Card(conn.StartCardID), g.Card(conn.EndCardID)
	if a == nil || b == nil {
		return nil
	}
	ca, cb := a.Center(), b.Center()
	return &LineVisual{
		ID:              conn.ID,
		From:            conn.StartCardID,
		To:              conn.EndCardID,
		X1:              ca.X,
		Y1:              ca.Y,
		X2:              cb.X,
		Y2:              cb.Y,
		HighlightDelete: s.Marks.Disconnect,
	}
}

// Binding ties a scene to the graph and viewport it mirrors, so callers can
// patch by id alone.
type Binding struct {
	Scene    *Scene
	Graph    *workflow.Graph
	Viewport *viewport.Viewport
}

// Rebuild runs the full path with the current marks.
func (b *Binding) Rebuild() { b.Scene.Rebuild(b.Graph, b.Viewport, b.Scene.Marks) }

func (b *Binding) PatchCard(id int) { b.Scene.PatchCard(b.Graph, id) }
func (b *Binding) PatchViewport() { b.Scene.PatchViewport(b.Viewport) }
func (b *Binding) RemoveCard(id int) { b.Scene.RemoveCard(id) }
func (b *Binding) AddLine(connID int) { b.Scene.AddLine(b.Graph, connID) }
func (b *Binding) RemoveLine(connID int) { b.Scene.RemoveLine(connID) }

// Mark forwards interaction state into the scene.
func (b *Binding) Mark(selected, anchor int, disconnect bool) {
	b.Scene.SetMarks(Marks{Selected: selected, Anchor: anchor, Disconnect: disconnect})
}
