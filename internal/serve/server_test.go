package serve

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/msalah0e/horizon/internal/assist"
	"github.com/msalah0e/horizon/internal/persist"
	"github.com/msalah0e/horizon/internal/workflow"
)

func newServer(t *testing.T) (*Server, *persist.MemoryStore) {
	t.Helper()
	store := persist.NewMemoryStore()
	gen := assist.GeneratorFunc(func(context.Context, string) (string, string, error) {
		return "Consider a follow-the-sun rota.", "stub", nil
	})
	s := New(Options{
		Store:     store,
		Assistant: assist.New(assist.Options{Generator: gen}),
		TempDir:   t.TempDir(),
	})
	_, err := s.Restore(context.Background())
	require.NoError(t, err)
	return s, store
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const twoCards = `{"cards":[{"id":1,"type":"process","x":0,"y":0,"title":"A"},{"id":2,"type":"team","x":400,"y":0,"title":"B"}],` +
	`"connections":[{"id":1,"startCardId":1,"endCardId":2}],"nextCardId":3,"nextConnectionId":2}`

func TestHealth(t *testing.T) {
	s, _ := newServer(t)
	rec := do(t, s.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var hc assist.Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hc))
	assert.Equal(t, "ok", hc.Checks["store"])
}

func TestAssistRoute(t *testing.T) {
	s, _ := newServer(t)
	rec := do(t, s.Handler(), http.MethodPost, "/api/assist", `{"prompt":"how should we rota?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp assist.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "stub", resp.Response.Metadata.Model)

	rec = do(t, s.Handler(), http.MethodGet, "/api/assist", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPutAndGetWorkflow(t *testing.T) {
	s, store := newServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPut, "/api/workflow", twoCards)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/workflow", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap persist.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Len(t, snap.Cards, 2)
	assert.Len(t, snap.Connections, 1)
	assert.Equal(t, 3, snap.NextCardID)

	stored, ok, err := store.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, stored.Cards, 2)

	rec = do(t, h, http.MethodPut, "/api/workflow", "[1,2,3]")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportNeedsConfirm(t *testing.T) {
	s, _ := newServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/workflow/import", twoCards)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, s.sess.Graph().Cards())

	rec = do(t, h, http.MethodPost, "/api/workflow/import?confirm=true", "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/workflow/import?confirm=true", twoCards)
	require.Equal(t, http.StatusOK, rec.Code)
	var res importResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Imported)
	assert.Equal(t, 2, res.Cards)
	assert.Equal(t, 1, res.Connections)
	require.NotEmpty(t, res.Notices)
	assert.Equal(t, "Workflow imported successfully!", res.Notices[len(res.Notices)-1].Message)
}

func TestExportAndSVG(t *testing.T) {
	s, _ := newServer(t)
	h := s.Handler()
	do(t, h, http.MethodPut, "/api/workflow", twoCards)

	rec := do(t, h, http.MethodGet, "/api/workflow/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "horizon-workflow-")
	assert.Contains(t, rec.Body.String(), `"version": "1.0"`)

	rec = do(t, h, http.MethodGet, "/api/workflow/scene.svg", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<svg"))
}

func TestEvents(t *testing.T) {
	s, _ := newServer(t)
	h := s.Handler()
	do(t, h, http.MethodPut, "/api/workflow", `{"cards":[{"id":1,"title":"A"},{"id":2,"title":"B"},{"id":3,"title":"C"}],"nextCardId":4}`)

	rec := do(t, h, http.MethodPost, "/api/workflow/events",
		`{"events":[{"type":"toggle","mode":"connect"},{"type":"click","area":"card","card":2},{"type":"click","area":"card","card":3}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res eventsResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "connect", res.Mode)
	assert.Equal(t, 1, res.Connections)
	assert.Equal(t, "connected", res.Outcomes[2].Action)

	// delete without confirm leaves the card
	rec = do(t, h, http.MethodPost, "/api/workflow/events", `[{"type":"click","area":"controls","card":1}]`)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Outcomes[0].Deleted)
	assert.Equal(t, 3, res.Cards)

	rec = do(t, h, http.MethodPost, "/api/workflow/events?confirm=1", `[{"type":"click","area":"controls","card":2}]`)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Outcomes[0].Deleted)
	assert.Equal(t, 2, res.Cards)
	assert.Equal(t, 0, res.Connections)

	rec = do(t, h, http.MethodPost, "/api/workflow/events", `[{"type":"jump"}]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeShutsDown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s, store := newServer(t)
	s.sess.AddCard(workflow.KindProcess, "kept", "", nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	http.DefaultClient.CloseIdleConnections()

	snap, ok, err := store.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, snap.Cards, 1)
}

func TestServeWatchesFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflow.json")
	s := New(Options{Store: persist.NewFileStore(path), Watch: true, TempDir: t.TempDir()})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(twoCards), 0o644))

	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.sess.Graph().Cards()) == 2
	}, 3*time.Second, 20*time.Millisecond)
}
