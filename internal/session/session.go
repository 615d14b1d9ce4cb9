// Package session is the explicit application session: it owns one canvas
// (graph, viewport, scene, controller) and the collaborators around it, and
// exposes the toolbar operations.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"go.uber.org/zap"

	"github.com/msalah0e/horizon/internal/activity"
	"github.com/msalah0e/horizon/internal/interact"
	"github.com/msalah0e/horizon/internal/persist"
	"github.com/msalah0e/horizon/internal/render"
	"github.com/msalah0e/horizon/internal/roster"
	"github.com/msalah0e/horizon/internal/viewport"
	"github.com/msalah0e/horizon/internal/workflow"
)

// Options configures a session. Zero values are usable: a memory store,
// auto-declining confirmation, no notices and no journal.
type Options struct {
	Store     persist.Store
	Confirmer Confirmer
	Notifier  Notifier
	Journal   *activity.Journal
	Logger    *zap.Logger

	// ViewWidth and ViewHeight are the screen size used to place new cards
	// at the center of the view. Default 1280×720.
	ViewWidth  float64
	ViewHeight float64

	// Rand returns values in [0,1) for team card placement.
	Rand func() float64
}

// Session is one live canvas.
type Session struct {
	graph   *workflow.Graph
	view    *viewport.Viewport
	scene   *render.Scene
	ctrl    *interact.Controller
	store   persist.Store
	confirm Confirmer
	notify  Notifier
	journal *activity.Journal
	log     *zap.Logger
	viewW   float64
	viewH   float64
	rand    func() float64
}

// New builds a session with an empty canvas. Call Restore to load the
// stored snapshot.
func New(opts Options) *Session {
	s := &Session{
		graph:   workflow.New(),
		view:    viewport.New(),
		scene:   render.New(),
		store:   opts.Store,
		confirm: opts.Confirmer,
		notify:  opts.Notifier,
		journal: opts.Journal,
		log:     opts.Logger,
		viewW:   opts.ViewWidth,
		viewH:   opts.ViewHeight,
		rand:    opts.Rand,
	}
	if s.store == nil {
		s.store = persist.NewMemoryStore()
	}
	if s.confirm == nil {
		s.confirm = Always(false)
	}
	if s.notify == nil {
		s.notify = discard{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.viewW <= 0 {
		s.viewW = 1280
	}
	if s.viewH <= 0 {
		s.viewH = 720
	}
	if s.rand == nil {
		s.rand = rand.Float64
	}
	binding := &render.Binding{Scene: s.scene, Graph: s.graph, Viewport: s.view}
	s.ctrl = interact.New(s.graph, s.view, binding, s.committed)
	return s
}

func (s *Session) Graph() *workflow.Graph { return s.graph }
func (s *Session) Viewport() *viewport.Viewport { return s.view }
func (s *Session) Scene() *render.Scene { return s.scene }
func (s *Session) Controller() *interact.Controller { return s.ctrl }
func (s *Session) Store() persist.Store { return s.store }

// committed runs after every controller mutation.
func (s *Session) committed(ch interact.Change) {
	s.record(ch.Kind, ch.CardID, ch.ConnectionID, s.describe(ch))
	if err := s.Persist(context.Background()); err != nil {
		s.log.Warn("persist failed", zap.String("change", ch.Kind), zap.Error(err))
		s.notify.Notify(LevelWarning, "Could not save the workflow: "+err.Error())
	}
}

func (s *Session) describe(ch interact.Change) string {
	if ch.CardID != 0 {
		if c := s.graph.Card(ch.CardID); c != nil {
			return render.PlainText(c.Title)
		}
	}
	if ch.ConnectionID != 0 {
		if conn := s.graph.Connection(ch.ConnectionID); conn != nil {
			return s.graph.Describe(conn)
		}
	}
	return ""
}

func (s *Session) record(action string, cardID, connID int, details string) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(action, cardID, connID, details); err != nil {
		s.log.Debug("journal write failed", zap.Error(err))
	}
}

// ─── Persistence ───

// Restore loads the stored snapshot without asking. It reports whether one
// was found.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	snap, ok, err := s.store.Load(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		s.ctrl.Reset()
		return false, nil
	}
	s.load(snap)
	return true, nil
}

// Reload replaces the canvas with snap without asking or persisting. Used
// when the store changes underneath the session.
func (s *Session) Reload(snap persist.Snapshot) {
	s.load(snap)
}

func (s *Session) load(snap persist.Snapshot) workflow.Dropped {
	dropped := persist.Load(snap, s.graph, s.view)
	if dropped.Total() > 0 {
		s.log.Info("dropped invalid records on load",
			zap.Int("cards", dropped.Cards),
			zap.Int("connections", dropped.Connections))
	}
	s.ctrl.Reset()
	return dropped
}

// Snapshot serializes the live canvas.
func (s *Session) Snapshot() persist.Snapshot {
	return persist.Serialize(s.graph, s.view)
}

// Persist writes the live canvas to the store.
func (s *Session) Persist(ctx context.Context) error {
	return s.store.Save(ctx, s.Snapshot())
}

// Close persists one last time and closes the store.
func (s *Session) Close(ctx context.Context) error {
	err := s.Persist(ctx)
	if cerr := s.store.Close(); err == nil {
		err = cerr
	}
	return err
}

// ─── Toolbar ───

// ToggleMode flips the tool mode and returns the active one.
func (s *Session) ToggleMode(m interact.Mode) interact.Mode {
	s.ctrl.ToggleMode(m)
	return s.ctrl.Mode()
}

// AddCard adds a card. A nil pos centers the card in the current view.
func (s *Session) AddCard(kind workflow.Kind, title, content string, pos *workflow.Point) *workflow.Card {
	at := s.view.DefaultCardOrigin(s.viewW, s.viewH)
	if pos != nil {
		at = *pos
	}
	return s.ctrl.AddCard(kind, title, content, at)
}

// DeleteCard asks for confirmation, then deletes the card and its
// connections. It reports whether the card was deleted.
func (s *Session) DeleteCard(ctx context.Context, id int) (bool, error) {
	if s.graph.Card(id) == nil {
		return false, nil
	}
	ok, err := s.confirm.Confirm(ctx, Prompt{
		Title:   "Delete Card?",
		Message: "This will delete the card and all its connections.",
	})
	if err != nil || !ok {
		return false, err
	}
	return s.ctrl.DeleteCard(id), nil
}

// Clear asks for confirmation, then removes every card and connection.
func (s *Session) Clear(ctx context.Context) (bool, error) {
	ok, err := s.confirm.Confirm(ctx, Prompt{
		Title:   "Clear Workflow?",
		Message: "This will remove all cards and connections.",
	})
	if err != nil || !ok {
		return false, err
	}
	s.ctrl.Clear()
	s.notify.Notify(LevelInfo, "Workflow cleared")
	return true, nil
}

// Export writes the dated export file into dir.
func (s *Session) Export(dir string) (string, error) {
	path, err := persist.Export(dir, s.Snapshot())
	if err != nil {
		s.notify.Notify(LevelError, "Export failed: "+err.Error())
		return "", err
	}
	s.record("export", 0, 0, path)
	s.notify.Notify(LevelSuccess, "Workflow exported")
	return path, nil
}

// ImportFile reads path and hands it to Import.
func (s *Session) ImportFile(ctx context.Context, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.notify.Notify(LevelError, "Could not read the import file")
		return false, fmt.Errorf("session: import: %w", err)
	}
	return s.Import(ctx, data)
}

// Import parses data, asks for confirmation and then replaces the canvas.
// Malformed data is reported through the notifier and returned; the live
// canvas is untouched. A declined confirmation is (false, nil).
func (s *Session) Import(ctx context.Context, data []byte) (bool, error) {
	snap, err := persist.Import(data)
	if err != nil {
		s.notify.Notify(LevelError, "Failed to import workflow. Invalid file format.")
		return false, err
	}
	ok, err := s.confirm.Confirm(ctx, Prompt{
		Title: "Import Workflow?",
		Message: fmt.Sprintf("This will replace your current workflow with %d cards and %d connections.",
			len(snap.Cards), len(snap.Connections)),
	})
	if err != nil || !ok {
		return false, err
	}

	dropped := s.load(snap)
	s.record("import", 0, 0, fmt.Sprintf("%d cards, %d connections", len(snap.Cards)-dropped.Cards, len(snap.Connections)-dropped.Connections))
	if err := s.Persist(ctx); err != nil {
		s.notify.Notify(LevelWarning, "Imported, but could not save: "+err.Error())
		return true, err
	}
	s.notify.Notify(LevelSuccess, "Workflow imported successfully!")
	return true, nil
}

// MaterializeTeam adds a team card for a roster location at a random spot
// in [100,500)×[100,300).
func (s *Session) MaterializeTeam(loc roster.Location) *workflow.Card {
	title, content := roster.CardText(loc)
	pos := workflow.Point{X: s.rand()*400 + 100, Y: s.rand()*200 + 100}
	return s.ctrl.AddCard(workflow.KindTeam, title, content, pos)
}

// IsMalformed reports whether err came from unparseable import data.
func IsMalformed(err error) bool {
	return errors.Is(err, persist.ErrMalformedData)
}
