// Package serve exposes one live canvas session and the assistant over
// HTTP.
package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/msalah0e/horizon/internal/activity"
	"github.com/msalah0e/horizon/internal/assist"
	"github.com/msalah0e/horizon/internal/persist"
	"github.com/msalah0e/horizon/internal/replay"
	"github.com/msalah0e/horizon/internal/session"
)

const maxBody = 8 << 20

// Options configures a Server.
type Options struct {
	Store      persist.Store
	Journal    *activity.Journal
	Assistant  *assist.Assistant
	Logger     *zap.Logger
	ViewWidth  float64
	ViewHeight float64

	// Watch reloads the canvas when a file store is changed by another
	// process.
	Watch bool

	// TempDir is probed by the health check. Empty means os.TempDir.
	TempDir string
}

// Server owns the session. Handlers take mu for every session access.
type Server struct {
	mu      sync.Mutex
	sess    *session.Session
	notices *session.Recorder
	assist  *assist.Handler
	store   persist.Store
	log     *zap.Logger
	width   float64
	height  float64
	watch   bool
}

type confirmKey struct{}

// withConfirm marks ctx as pre-approved for destructive session prompts.
func withConfirm(ctx context.Context, yes bool) context.Context {
	return context.WithValue(ctx, confirmKey{}, yes)
}

// confirmFromContext answers prompts from the request's confirm flag.
var confirmFromContext = session.ConfirmFunc(func(ctx context.Context, _ session.Prompt) (bool, error) {
	yes, _ := ctx.Value(confirmKey{}).(bool)
	return yes, nil
})

// New builds a server with an empty canvas. Call Restore to load the stored
// one.
func New(opts Options) *Server {
	s := &Server{
		notices: &session.Recorder{},
		store:   opts.Store,
		log:     opts.Logger,
		width:   opts.ViewWidth,
		height:  opts.ViewHeight,
		watch:   opts.Watch,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.store == nil {
		s.store = persist.NewMemoryStore()
	}
	if s.width <= 0 {
		s.width = 1280
	}
	if s.height <= 0 {
		s.height = 720
	}
	a := opts.Assistant
	if a == nil {
		a = assist.New(assist.Options{Logger: s.log})
	}
	s.assist = assist.NewHandler(a, opts.TempDir)
	s.sess = session.New(session.Options{
		Store:      s.store,
		Confirmer:  confirmFromContext,
		Notifier:   s.notices,
		Journal:    opts.Journal,
		Logger:     s.log,
		ViewWidth:  s.width,
		ViewHeight: s.height,
	})
	return s
}

// Restore loads the stored canvas.
func (s *Server) Restore(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.Restore(ctx)
}

// Reload replaces the canvas with snap, for store changes made elsewhere.
func (s *Server) Reload(snap persist.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.Reload(snap)
	s.log.Info("canvas reloaded from store", zap.Int("cards", len(snap.Cards)))
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("/api/assist", s.assist)
	mux.HandleFunc("GET /api/workflow", s.handleGet)
	mux.HandleFunc("PUT /api/workflow", s.handlePut)
	mux.HandleFunc("GET /api/workflow/export", s.handleExport)
	mux.HandleFunc("POST /api/workflow/import", s.handleImport)
	mux.HandleFunc("GET /api/workflow/scene.svg", s.handleSVG)
	mux.HandleFunc("POST /api/workflow/events", s.handleEvents)
	return s.logged(mux)
}

// Serve runs the HTTP server on ln until ctx is done, then shuts down
// gracefully. With Watch set and a file store it also follows the file.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if fs, ok := s.store.(*persist.FileStore); ok && s.watch {
		g.Go(func() error {
			return fs.Watch(ctx, s.Reload, func(err error) {
				s.log.Warn("store watch", zap.Error(err))
			})
		})
	}

	err := g.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	if perr := s.sess.Persist(context.Background()); perr != nil && err == nil {
		err = fmt.Errorf("serve: final save: %w", perr)
	}
	return err
}

// ─── Handlers ───────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	hc := s.assist.Check()
	hc.Checks["store"] = "ok"
	if _, _, err := s.store.Load(r.Context()); err != nil {
		hc.Checks["store"] = "failed"
		hc.Status = "degraded"
	}
	status := http.StatusOK
	if hc.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, hc)
}

func (s *Server) handleGet(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	snap := s.sess.Snapshot()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

// handlePut replaces the canvas without a confirmation prompt.
func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r)
	if !ok {
		return
	}
	snap, err := persist.Import(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid workflow data")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.Reload(snap)
	if err := s.sess.Persist(r.Context()); err != nil {
		s.log.Error("persist after put", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Could not save the workflow")
		return
	}
	writeJSON(w, http.StatusOK, s.sess.Snapshot())
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	snap := s.sess.Snapshot()
	s.mu.Unlock()

	data, err := persist.MarshalExport(snap)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Export failed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, persist.ExportName(time.Now())))
	w.Write(data)
}

type importResult struct {
	Imported    bool             `json:"imported"`
	Cards       int              `json:"cards"`
	Connections int              `json:"connections"`
	Notices     []session.Notice `json:"notices,omitempty"`
}

// handleImport needs ?confirm=true; without it the request is answered with
// 409 and the canvas is left alone.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r)
	if !ok {
		return
	}
	ctx := withConfirm(r.Context(), confirmed(r))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices.Drain()
	imported, err := s.sess.Import(ctx, data)
	notices := s.notices.Drain()
	switch {
	case session.IsMalformed(err):
		writeError(w, http.StatusBadRequest, "Failed to import workflow. Invalid file format.")
	case err != nil && !imported:
		s.log.Error("import", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Import failed")
	case !imported:
		writeError(w, http.StatusConflict, "Import would replace the current workflow; repeat with ?confirm=true")
	default:
		writeJSON(w, http.StatusOK, importResult{
			Imported:    true,
			Cards:       len(s.sess.Graph().Cards()),
			Connections: len(s.sess.Graph().Connections()),
			Notices:     notices,
		})
	}
}

func (s *Server) handleSVG(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := s.sess.Scene().WriteSVG(w, int(s.width), int(s.height)); err != nil {
		s.log.Warn("write svg", zap.Error(err))
	}
}

type eventsResult struct {
	Outcomes    []replay.Outcome `json:"outcomes"`
	Mode        string           `json:"mode"`
	Selected    int              `json:"selected"`
	Anchor      int              `json:"anchor"`
	Cards       int              `json:"cards"`
	Connections int              `json:"connections"`
	Error       string           `json:"error,omitempty"`
}

// handleEvents feeds pointer events through the controller. Delete requests
// are carried out only with ?confirm=true.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r)
	if !ok {
		return
	}
	script, err := replay.Parse(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx := withConfirm(r.Context(), confirmed(r))

	s.mu.Lock()
	defer s.mu.Unlock()
	runner := &replay.Runner{Controller: s.sess.Controller(), Delete: s.sess.DeleteCard}
	outs, err := runner.Run(ctx, script.Events)

	ctrl, g := s.sess.Controller(), s.sess.Graph()
	res := eventsResult{
		Outcomes:    outs,
		Mode:        string(ctrl.Mode()),
		Selected:    ctrl.Selected(),
		Anchor:      ctrl.Anchor(),
		Cards:       len(g.Cards()),
		Connections: len(g.Connections()),
	}
	status := http.StatusOK
	if err != nil {
		res.Error = err.Error()
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

// ─── Helpers ────────────────────────────────────────────────

func confirmed(r *http.Request) bool {
	yes, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return yes
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return nil, false
	}
	return data, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, assist.ErrorBody{Error: assist.ErrorDetail{
		Message:   msg,
		Code:      status,
		Timestamp: time.Now().Format(time.RFC3339),
	}})
}

// logged tags each request with an id and logs its status.
func (s *Server) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.log.Debug("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
