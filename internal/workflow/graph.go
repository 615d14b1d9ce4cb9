package workflow

import (
	"errors"
	"fmt"
	"sort"
)

// Kind is the card flavor. It only affects default size and rendering.
type Kind string

const (
	KindProcess Kind = "process"
	KindTeam    Kind = "team"
)

// Minimum card size in canvas units.
const (
	MinWidth  = 180.0
	MinHeight = 100.0
)

// ErrInvalidOperation marks a documented no-op: self loops, duplicate pairs,
// unknown ids. Graph methods never return it; callers that want to report a
// no-op to a user wrap it themselves.
var ErrInvalidOperation = errors.New("invalid operation")

// Point is a position in canvas space.
type Point struct {
	X float64
	Y float64
}

// Card is a node on the canvas.
type Card struct {
	ID      int     `json:"id"`
	Kind    Kind    `json:"type"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
}

// Center returns the geometric center of the card.
func (c *Card) Center() Point {
	return Point{X: c.X + c.Width/2, Y: c.Y + c.Height/2}
}

// Connection is an undirected edge between two distinct cards.
type Connection struct {
	ID          int `json:"id"`
	StartCardID int `json:"startCardId"`
	EndCardID   int `json:"endCardId"`
}

// Touches reports whether the connection references cardID.
func (c *Connection) Touches(cardID int) bool {
	return c.StartCardID == cardID || c.EndCardID == cardID
}

// Other returns the endpoint opposite cardID.
func (c *Connection) Other(cardID int) int {
	if c.StartCardID == cardID {
		return c.EndCardID
	}
	return c.StartCardID
}

// CardPatch carries optional in-place changes for MutateCard.
type CardPatch struct {
	X       *float64
	Y       *float64
	Width   *float64
	Height  *float64
	Title   *string
	Content *string
}

// Insights holds summary counts for the canvas side panel.
type Insights struct {
	Cards       int
	Connections int
	TeamCards   int
}

// Graph owns cards, connections and the two id counters.
type Graph struct {
	cards       []*Card
	connections []*Connection
	pairs       map[pairKey]int

	nextCardID       int
	nextConnectionID int
}

type pairKey struct{ lo, hi int }

func keyOf(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// New creates an empty graph with both counters at 1.
func New() *Graph {
	return &Graph{
		cards:            make([]*Card, 0),
		connections:      make([]*Connection, 0),
		pairs:            make(map[pairKey]int),
		nextCardID:       1,
		nextConnectionID: 1,
	}
}

// DefaultSize returns the initial size for a card kind.
func DefaultSize(kind Kind) (w, h float64) {
	if kind == KindTeam {
		return 250, 120
	}
	return 200, 100
}

// ─── Counters ───

// NextCardID returns the id the next AddCard will allocate.
func (g *Graph) NextCardID() int { return g.nextCardID }

// NextConnectionID returns the id the next AddConnection will allocate.
func (g *Graph) NextConnectionID() int { return g.nextConnectionID }

// ─── Cards ───

// AddCard appends a card with a freshly allocated id. pos is the top-left
// corner in canvas space. Callers that have no position compute one from
// the viewport first.
func (g *Graph) AddCard(kind Kind, title, content string, pos Point) *Card {
	if kind == "" {
		kind = KindProcess
	}
	w, h := DefaultSize(kind)
	c := &Card{
		ID:      g.nextCardID,
		Kind:    kind,
		X:       pos.X,
		Y:       pos.Y,
		Width:   w,
		Height:  h,
		Title:   title,
		Content: content,
	}
	g.nextCardID++
	g.cards = append(g.cards, c)
	return c
}

// Card returns the card with id, or nil.
func (g *Graph) Card(id int) *Card {
	for _, c := range g.cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Cards returns the live cards in insertion order.
func (g *Graph) Cards() []*Card {
	return g.cards
}

// DeleteCard removes the card and every connection touching it.
// Returns false when id is unknown.
func (g *Graph) DeleteCard(id int) bool {
	idx := -1
	for i, c := range g.cards {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	g.cards = append(g.cards[:idx], g.cards[idx+1:]...)

	// Cascade
	filtered := make([]*Connection, 0, len(g.connections))
	for _, conn := range g.connections {
		if conn.Touches(id) {
			delete(g.pairs, keyOf(conn.StartCardID, conn.EndCardID))
			continue
		}
		filtered = append(filtered, conn)
	}
	g.connections = filtered
	return true
}

// MutateCard applies patch in place. Sizes are floored at the minimum.
func (g *Graph) MutateCard(id int, patch CardPatch) bool {
	c := g.Card(id)
	if c == nil {
		return false
	}
	if patch.X != nil {
		c.X = *patch.X
	}
	if patch.Y != nil {
		c.Y = *patch.Y
	}
	if patch.Width != nil {
		c.Width = max(*patch.Width, MinWidth)
	}
	if patch.Height != nil {
		c.Height = max(*patch.Height, MinHeight)
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Content != nil {
		c.Content = *patch.Content
	}
	return true
}

// ─── Connections ───

// AddConnection links two distinct existing cards. It returns nil for a self
// loop, an unknown endpoint, or a pair that is already connected in either
// direction.
func (g *Graph) AddConnection(startID, endID int) *Connection {
	if startID == endID {
		return nil
	}
	if g.Card(startID) == nil || g.Card(endID) == nil {
		return nil
	}
	key := keyOf(startID, endID)
	if _, exists := g.pairs[key]; exists {
		return nil
	}

	conn := &Connection{
		ID:          g.nextConnectionID,
		StartCardID: startID,
		EndCardID:   endID,
	}
	g.nextConnectionID++
	g.connections = append(g.connections, conn)
	g.pairs[key] = conn.ID
	return conn
}

// Connection returns the connection with id, or nil.
func (g *Graph) Connection(id int) *Connection {
	for _, conn := range g.connections {
		if conn.ID == id {
			return conn
		}
	}
	return nil
}

// Connections returns the live connections in insertion order.
func (g *Graph) Connections() []*Connection {
	return g.connections
}

// ConnectionsOf returns the connections touching cardID.
func (g *Graph) ConnectionsOf(cardID int) []*Connection {
	var out []*Connection
	for _, conn := range g.connections {
		if conn.Touches(cardID) {
			out = append(out, conn)
		}
	}
	return out
}

// Connected reports whether a and b share a connection.
func (g *Graph) Connected(a, b int) bool {
	_, ok := g.pairs[keyOf(a, b)]
	return ok
}

// DeleteConnection removes a connection by id. Returns false when unknown.
func (g *Graph) DeleteConnection(id int) bool {
	for i, conn := range g.connections {
		if conn.ID == id {
			delete(g.pairs, keyOf(conn.StartCardID, conn.EndCardID))
			g.connections = append(g.connections[:i], g.connections[i+1:]...)
			return true
		}
	}
	return false
}

// ─── Bulk ───

// Clear drops every card and connection. Counters keep counting.
func (g *Graph) Clear() {
	g.cards = make([]*Card, 0)
	g.connections = make([]*Connection, 0)
	g.pairs = make(map[pairKey]int)
}

// Dropped counts the records Replace refused.
type Dropped struct {
	Cards       int
	Connections int
}

// Total is the number of refused records of either kind.
func (d Dropped) Total() int { return d.Cards + d.Connections }

// Replace swaps the whole graph content. Cards without a positive id or
// reusing an earlier card's id are dropped, as are connections that would
// break the graph invariants (self loops, dangling endpoints, duplicate
// pairs, reused ids). Counters are raised past the highest id present.
func (g *Graph) Replace(cards []Card, connections []Connection, nextCardID, nextConnectionID int) Dropped {
	g.Clear()

	var dropped Dropped
	seen := make(map[int]bool, len(cards))
	maxCard := 0
	for i := range cards {
		c := cards[i]
		// Zero means "no card" for anchors and selection.
		if c.ID <= 0 || seen[c.ID] {
			dropped.Cards++
			continue
		}
		seen[c.ID] = true
		if c.Kind == "" {
			c.Kind = KindProcess
		}
		g.cards = append(g.cards, &c)
		maxCard = max(maxCard, c.ID)
	}

	seenConn := make(map[int]bool, len(connections))
	maxConn := 0
	for i := range connections {
		conn := connections[i]
		key := keyOf(conn.StartCardID, conn.EndCardID)
		_, dup := g.pairs[key]
		if conn.StartCardID == conn.EndCardID || !seen[conn.StartCardID] || !seen[conn.EndCardID] || dup || seenConn[conn.ID] {
			dropped.Connections++
			continue
		}
		seenConn[conn.ID] = true
		g.connections = append(g.connections, &conn)
		g.pairs[key] = conn.ID
		maxConn = max(maxConn, conn.ID)
	}

	g.nextCardID = max(nextCardID, maxCard+1, 1)
	g.nextConnectionID = max(nextConnectionID, maxConn+1, 1)
	return dropped
}

// ─── Query ───

// Insights returns counts for the side panel.
func (g *Graph) Insights() Insights {
	teams := 0
	for _, c := range g.cards {
		if c.Kind == KindTeam {
			teams++
		}
	}
	return Insights{
		Cards:       len(g.cards),
		Connections: len(g.connections),
		TeamCards:   teams,
	}
}

// CardIDs returns the sorted ids of live cards.
func (g *Graph) CardIDs() []int {
	ids := make([]int, 0, len(g.cards))
	for _, c := range g.cards {
		ids = append(ids, c.ID)
	}
	sort.Ints(ids)
	return ids
}

// Describe renders a connection as "A — B" using card titles.
func (g *Graph) Describe(conn *Connection) string {
	name := func(id int) string {
		if c := g.Card(id); c != nil && c.Title != "" {
			return c.Title
		}
		return fmt.Sprintf("#%d", id)
	}
	return fmt.Sprintf("%s — %s", name(conn.StartCardID), name(conn.EndCardID))
}
