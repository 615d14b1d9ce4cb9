package assist

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxBody = 1 << 20

// ErrorBody is the JSON shape of a rejected request.
type ErrorBody struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail carries the message and status of a rejection.
type ErrorDetail struct {
	Message   string `json:"message"`
	Code      int    `json:"code"`
	Timestamp string `json:"timestamp"`
}

// Health is the JSON shape of a health probe.
type Health struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Handler serves the assistant over HTTP.
type Handler struct {
	a       *Assistant
	log     *zap.Logger
	tempDir string
}

// NewHandler wraps a. tempDir is probed for writability by Health; empty
// means os.TempDir.
func NewHandler(a *Assistant, tempDir string) *Handler {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Handler{a: a, log: a.log, tempDir: tempDir}
}

// ServeHTTP answers one POSTed question.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := &responseRecorder{ResponseWriter: w}
	start := time.Now()
	defer func() {
		h.log.Info("assist request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.statusCode),
			zap.Duration("elapsed", time.Since(start)),
		)
	}()
	h.serve(rec, r)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if !h.a.Configured() {
		h.writeError(w, ErrNotConfigured)
		return
	}
	if r.Method != http.MethodPost {
		h.writeError(w, &Error{Status: http.StatusMethodNotAllowed, Message: "Only POST requests allowed"})
		return
	}
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		h.writeError(w, &Error{Status: http.StatusBadRequest, Message: "Content-Type must be application/json"})
		return
	}

	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.writeError(w, &Error{Status: http.StatusRequestEntityTooLarge, Message: "Prompt too long"})
			return
		}
		h.writeError(w, &Error{Status: http.StatusBadRequest, Message: "Invalid JSON input"})
		return
	}

	resp, err := h.a.Ask(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Health reports whether the assistant can serve: a generator is configured
// and the temp directory is writable. A degraded result is sent with 503.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	hc := h.Check()
	status := http.StatusOK
	if hc.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, hc)
}

// Check runs the health probes.
func (h *Handler) Check() Health {
	hc := Health{
		Status:    "healthy",
		Timestamp: h.a.now().Format(time.RFC3339),
		Checks:    map[string]string{"api_key": "ok", "write_permissions": "ok"},
	}
	if !h.a.Configured() {
		hc.Checks["api_key"] = "missing"
	}
	if f, err := os.CreateTemp(h.tempDir, "horizon-health-*"); err != nil {
		hc.Checks["write_permissions"] = "failed"
	} else {
		f.Close()
		os.Remove(f.Name())
	}
	for _, v := range hc.Checks {
		if v != "ok" {
			hc.Status = "degraded"
		}
	}
	return hc
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error("assist failed", zap.Error(err))
		msg = "Internal server error occurred"
	}
	writeJSON(w, status, ErrorBody{
		Error: ErrorDetail{Message: msg, Code: status, Timestamp: h.a.now().Format(time.RFC3339)},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// responseRecorder captures the HTTP status code.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.statusCode == 0 {
		r.statusCode = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}
