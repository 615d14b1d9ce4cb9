package interact

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msalah0e/horizon/internal/render"
	"github.com/msalah0e/horizon/internal/viewport"
	"github.com/msalah0e/horizon/internal/workflow"
)

type harness struct {
	g       *workflow.Graph
	v       *viewport.Viewport
	b       *render.Binding
	c       *Controller
	commits []Change
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{g: workflow.New(), v: viewport.New()}
	h.b = &render.Binding{Scene: render.New(), Graph: h.g, Viewport: h.v}
	h.c = New(h.g, h.v, h.b, func(ch Change) { h.commits = append(h.commits, ch) })
	return h
}

func (h *harness) cards(n int) {
	for i := 0; i < n; i++ {
		h.c.AddCard(workflow.KindProcess, "", "", workflow.Point{X: float64(i) * 300})
	}
	h.commits = nil
}

func card(id int) Target { return Target{Area: AreaCardBody, CardID: id} }

func pt(x, y float64) workflow.Point { return workflow.Point{X: x, Y: y} }

func (h *harness) assertSceneInSync(t *testing.T) {
	t.Helper()
	want := render.New()
	want.Rebuild(h.g, h.v, render.Marks{
		Selected:   h.c.Selected(),
		Anchor:     h.c.Anchor(),
		Disconnect: h.c.Mode() == ModeDisconnect,
	})
	if diff := cmp.Diff(want, h.b.Scene); diff != "" {
		t.Errorf("scene out of sync (-want +got):\n%s", diff)
	}
}

func TestModeToggle(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, ModeNavigate, h.c.Mode())

	h.c.ToggleMode(ModeConnect)
	assert.Equal(t, ModeConnect, h.c.Mode())

	h.c.ToggleMode(ModeDisconnect)
	assert.Equal(t, ModeDisconnect, h.c.Mode(), "activating one mode deactivates the other")

	h.c.ToggleMode(ModeDisconnect)
	assert.Equal(t, ModeNavigate, h.c.Mode(), "re-toggling returns to navigate")
}

func TestConnectGesture(t *testing.T) {
	h := newHarness(t)
	h.cards(3)
	h.c.ToggleMode(ModeConnect)

	assert.Equal(t, ActionAnchored, h.c.Click(card(1)))
	assert.Equal(t, 1, h.c.Anchor())
	assert.True(t, h.b.Scene.Cards[1].Anchor, "anchor should be outlined")

	assert.Equal(t, ActionNone, h.c.Click(card(1)), "clicking the anchor is a no-op")
	assert.Equal(t, 1, h.c.Anchor(), "clicking the anchor does not cancel")

	assert.Equal(t, ActionConnected, h.c.Click(card(2)))
	assert.Equal(t, 0, h.c.Anchor())
	require.Len(t, h.g.Connections(), 1)
	conn := h.g.Connections()[0]
	assert.Equal(t, 1, conn.StartCardID)
	assert.Equal(t, 2, conn.EndCardID)
	assert.Equal(t, "connection.add", h.commits[len(h.commits)-1].Kind)

	// Reverse pair is a duplicate: no new edge, anchor still cleared.
	h.c.Click(card(2))
	assert.Equal(t, ActionNone, h.c.Click(card(1)))
	assert.Len(t, h.g.Connections(), 1)
	assert.Equal(t, 0, h.c.Anchor())

	h.assertSceneInSync(t)
}

func TestLeavingConnectClearsAnchor(t *testing.T) {
	h := newHarness(t)
	h.cards(2)
	h.c.ToggleMode(ModeConnect)
	h.c.Click(card(1))

	h.c.ToggleMode(ModeConnect)
	assert.Equal(t, ModeNavigate, h.c.Mode())
	assert.Equal(t, 0, h.c.Anchor())
	assert.False(t, h.b.Scene.Cards[1].Anchor)
}

func TestEscapeReturnsToNavigate(t *testing.T) {
	h := newHarness(t)
	h.cards(2)
	h.c.ToggleMode(ModeConnect)
	h.c.Click(card(2))
	h.c.Escape()
	assert.Equal(t, ModeNavigate, h.c.Mode())
	assert.Equal(t, 0, h.c.Anchor())
}

func TestBackgroundClickDoesNotCancelAnchor(t *testing.T) {
	h := newHarness(t)
	h.cards(2)
	h.c.ToggleMode(ModeConnect)
	h.c.Click(card(1))
	h.c.Click(Background)
	assert.Equal(t, 1, h.c.Anchor())
}

func TestDisconnectMode(t *testing.T) {
	h := newHarness(t)
	h.cards(2)
	conn := h.c.Connect(1, 2)
	require.NotNil(t, conn)
	line := Target{Area: AreaConnection, ConnectionID: conn.ID}

	assert.Equal(t, ActionNone, h.c.Click(line), "lines are inert outside disconnect mode")
	assert.Len(t, h.g.Connections(), 1)

	h.c.ToggleMode(ModeDisconnect)
	assert.True(t, h.b.Scene.Lines[conn.ID].HighlightDelete)
	assert.Equal(t, ActionNone, h.c.Click(card(1)), "cards are inert in disconnect mode")
	assert.Equal(t, 0, h.c.Selected())

	assert.Equal(t, ActionDisconnected, h.c.Click(line))
	assert.Empty(t, h.g.Connections())
	assert.Equal(t, ActionNone, h.c.Click(line), "second click on a gone line is a no-op")
	h.assertSceneInSync(t)
}

func TestEditableTextSwallowsClicks(t *testing.T) {
	h := newHarness(t)
	h.cards(2)
	text := Target{Area: AreaCardText, CardID: 1}

	assert.Equal(t, ActionNone, h.c.Click(text))
	assert.Equal(t, 0, h.c.Selected())

	h.c.ToggleMode(ModeConnect)
	assert.Equal(t, ActionNone, h.c.Click(text))
	assert.Equal(t, 0, h.c.Anchor())

	assert.False(t, h.c.PointerDown(text, pt(0, 0)), "text press must not start a drag")
}

func TestSelectAndDeleteRequest(t *testing.T) {
	h := newHarness(t)
	h.cards(2)

	assert.Equal(t, ActionSelected, h.c.Click(card(2)))
	assert.Equal(t, 2, h.c.Selected())
	assert.True(t, h.b.Scene.Cards[2].Selected)

	assert.Equal(t, ActionDeleteRequested, h.c.Click(Target{Area: AreaCardControls, CardID: 2}))
	assert.Len(t, h.g.Cards(), 2, "a delete request does not delete by itself")
}

func TestDeleteCardClearsTransientState(t *testing.T) {
	h := newHarness(t)
	h.cards(3)
	h.c.Connect(1, 2)
	h.c.Connect(1, 3)
	h.c.Click(card(1))
	require.Equal(t, 1, h.c.Selected())

	require.True(t, h.c.DeleteCard(1))
	assert.Equal(t, 0, h.c.Selected())
	assert.Empty(t, h.g.Connections())
	h.assertSceneInSync(t)

	h.c.ToggleMode(ModeConnect)
	h.c.Click(card(2))
	require.True(t, h.c.DeleteCard(2))
	assert.Equal(t, 0, h.c.Anchor())
	assert.False(t, h.c.DeleteCard(2))
}

func TestPanGesture(t *testing.T) {
	h := newHarness(t)
	h.v.Set(0, 0, 2)

	require.True(t, h.c.PointerDown(Background, pt(100, 100)))
	assert.Equal(t, GesturePan, h.c.Gesture())
	h.c.PointerMove(pt(110, 95))
	h.c.PointerMove(pt(130, 90))
	assert.Empty(t, h.commits, "nothing is committed mid-gesture")
	h.c.PointerUp()

	assert.Equal(t, 30.0, h.v.PanX, "pan is 1:1 with the screen delta")
	assert.Equal(t, -10.0, h.v.PanY)
	require.Len(t, h.commits, 1)
	assert.Equal(t, "viewport.pan", h.commits[0].Kind)
	h.assertSceneInSync(t)
}

func TestPanNeedsBackground(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.c.PointerDown(Target{Area: AreaToolbar}, pt(0, 0)))
	h.c.ToggleMode(ModeConnect)
	assert.False(t, h.c.PointerDown(Background, pt(0, 0)), "gestures only run in navigate mode")
}

func TestDragTracksCursorInCanvasSpace(t *testing.T) {
	h := newHarness(t)
	h.cards(2)
	h.c.Connect(1, 2)
	h.v.Set(0, 0, 2)
	h.b.PatchViewport()
	h.commits = nil
	before := *h.g.Card(1)

	require.True(t, h.c.PointerDown(card(1), pt(50, 50)))
	h.c.PointerMove(pt(70, 40))
	h.c.PointerMove(pt(90, 30))
	h.c.PointerUp()

	after := h.g.Card(1)
	assert.InDelta(t, before.X+20, after.X, 1e-9, "dx 40 at scale 2 moves 20")
	assert.InDelta(t, before.Y-10, after.Y, 1e-9, "dy -20 at scale 2 moves -10")
	require.Len(t, h.commits, 1)
	assert.Equal(t, Change{Kind: "card.move", CardID: 1}, h.commits[0])

	lv := h.b.Scene.Lines[1]
	assert.InDelta(t, after.Center().X, lv.X1, 1e-9, "incident line follows the card")
	h.assertSceneInSync(t)
}

func TestPointerLeaveCommitsLastValue(t *testing.T) {
	h := newHarness(t)
	h.cards(1)
	h.c.PointerDown(card(1), pt(0, 0))
	h.c.PointerMove(pt(15, 25))
	h.c.PointerLeave()

	c := h.g.Card(1)
	assert.Equal(t, 15.0, c.X)
	assert.Equal(t, 25.0, c.Y)
	assert.Equal(t, GestureNone, h.c.Gesture())
	require.Len(t, h.commits, 1)
}

func TestModeSwitchCommitsActiveGesture(t *testing.T) {
	for name, switchMode := range map[string]func(*Controller){
		"toggle": func(c *Controller) { c.ToggleMode(ModeConnect) },
		"escape": func(c *Controller) { c.Escape() },
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			h.cards(1)
			h.c.PointerDown(card(1), pt(0, 0))
			h.c.PointerMove(pt(50, 40))
			switchMode(h.c)

			assert.Equal(t, GestureNone, h.c.Gesture())
			assert.Equal(t, 50.0, h.g.Card(1).X)
			require.Len(t, h.commits, 1, "the moved card must reach the store")
			assert.Equal(t, Change{Kind: "card.move", CardID: 1}, h.commits[0])
		})
	}
}

func TestModeSwitchWithoutGestureCommitsNothing(t *testing.T) {
	h := newHarness(t)
	h.cards(1)
	h.c.ToggleMode(ModeConnect)
	h.c.Escape()
	assert.Empty(t, h.commits)
}

func TestResizeFloorsAtMinimum(t *testing.T) {
	h := newHarness(t)
	h.cards(1)
	handle := Target{Area: AreaResizeHandle, CardID: 1}

	require.True(t, h.c.PointerDown(handle, pt(200, 100)))
	h.c.PointerMove(pt(260, 140))
	c := h.g.Card(1)
	assert.Equal(t, 260.0, c.Width)
	assert.Equal(t, 140.0, c.Height)

	h.c.PointerMove(pt(0, 0))
	assert.Equal(t, workflow.MinWidth, c.Width)
	assert.Equal(t, workflow.MinHeight, c.Height)

	// Growing back follows the pointer from the unclamped rectangle.
	h.c.PointerMove(pt(230, 130))
	assert.Equal(t, 230.0, c.Width)
	assert.Equal(t, 130.0, c.Height)
	h.c.PointerUp()

	require.Len(t, h.commits, 1)
	assert.Equal(t, "card.resize", h.commits[0].Kind)
	h.assertSceneInSync(t)
}

func TestWheelZoom(t *testing.T) {
	h := newHarness(t)
	p := pt(320, 240)
	before := h.v.ToCanvasSpace(p)

	assert.True(t, h.c.Wheel(Background, p, -120))
	assert.Greater(t, h.v.Scale, 1.0)
	after := h.v.ToCanvasSpace(p)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)

	assert.False(t, h.c.Wheel(Target{Area: AreaCardText, CardID: 1}, p, 120), "wheel over card text scrolls text")
	assert.True(t, h.c.Wheel(Background, p, 120))
	assert.InDelta(t, 1.0, h.v.Scale, 1e-9)
}

func TestEditText(t *testing.T) {
	h := newHarness(t)
	h.cards(1)

	assert.True(t, h.c.EditText(1, FieldTitle, "<i>Plan</i>"))
	assert.True(t, h.c.EditText(1, FieldContent, "line<br>two"))
	assert.False(t, h.c.EditText(1, Field("footer"), "x"))
	assert.False(t, h.c.EditText(42, FieldTitle, "x"))

	c := h.g.Card(1)
	assert.Equal(t, "<i>Plan</i>", c.Title)
	assert.Equal(t, "line<br>two", c.Content)
	assert.Len(t, h.commits, 2)
	h.assertSceneInSync(t)
}

func TestClearAndReset(t *testing.T) {
	h := newHarness(t)
	h.cards(3)
	h.c.Connect(1, 3)
	h.c.ToggleMode(ModeConnect)
	h.c.Click(card(2))

	h.c.Clear()
	assert.Empty(t, h.g.Cards())
	assert.Equal(t, 0, h.c.Anchor())
	h.assertSceneInSync(t)

	h.c.Reset()
	assert.Equal(t, ModeNavigate, h.c.Mode())
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"pan":            ModeNavigate,
		"navigate":       ModeNavigate,
		"connect":        ModeConnect,
		"delete-connect": ModeDisconnect,
		"disconnect":     ModeDisconnect,
	} {
		got, ok := ParseMode(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseMode("lasso")
	assert.False(t, ok)
}

func TestNilHooks(t *testing.T) {
	c := New(workflow.New(), viewport.New(), nil, nil)
	added := c.AddCard(workflow.KindTeam, "t", "", workflow.Point{})
	assert.Equal(t, 1, added.ID)
	assert.True(t, c.DeleteCard(1))
}
