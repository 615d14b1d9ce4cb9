// Package persist turns the live graph and viewport into snapshots and back,
// and keeps snapshots in a durable store.
package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/msalah0e/horizon/internal/viewport"
	"github.com/msalah0e/horizon/internal/workflow"
)

// Version is the snapshot format tag written on every export.
const Version = "1.0"

// ErrMalformedData is returned when imported bytes are not a JSON object.
var ErrMalformedData = errors.New("malformed data")

// clock is swapped in tests.
var clock = time.Now

// Snapshot is the persisted form of one canvas.
type Snapshot struct {
	Cards            []workflow.Card       `json:"cards"`
	Connections      []workflow.Connection `json:"connections"`
	NextCardID       int                   `json:"nextCardId"`
	NextConnectionID int                   `json:"nextConnectionId"`
	PanX             float64               `json:"panX"`
	PanY             float64               `json:"panY"`
	Scale            float64               `json:"scale"`
	ExportedAt       string                `json:"exportedAt,omitempty"`
	Version          string                `json:"version,omitempty"`
}

// wire mirrors Snapshot with optional fields so absent keys can be told
// apart from zero values.
type wire struct {
	Cards            []workflow.Card       `json:"cards"`
	Connections      []workflow.Connection `json:"connections"`
	NextCardID       *int                  `json:"nextCardId"`
	NextConnectionID *int                  `json:"nextConnectionId"`
	PanX             *float64              `json:"panX"`
	PanY             *float64              `json:"panY"`
	Scale            *float64              `json:"scale"`
	ExportedAt       string                `json:"exportedAt"`
	Version          string                `json:"version"`
}

// Serialize captures the graph and viewport. The export fields stay empty,
// so serializing an unchanged canvas yields identical bytes; exports add
// them via Stamp.
func Serialize(g *workflow.Graph, v *viewport.Viewport) Snapshot {
	s := Snapshot{
		Cards:            make([]workflow.Card, 0, len(g.Cards())),
		Connections:      make([]workflow.Connection, 0, len(g.Connections())),
		NextCardID:       g.NextCardID(),
		NextConnectionID: g.NextConnectionID(),
		PanX:             v.PanX,
		PanY:             v.PanY,
		Scale:            v.Scale,
	}
	for _, c := range g.Cards() {
		s.Cards = append(s.Cards, *c)
	}
	for _, conn := range g.Connections() {
		s.Connections = append(s.Connections, *conn)
	}
	return s
}

// Stamp returns a copy of s marked with the format version and export time.
func Stamp(s Snapshot) Snapshot {
	s.ExportedAt = clock().UTC().Format(time.RFC3339)
	s.Version = Version
	return s
}

// MarshalExport stamps a snapshot and renders it as indented JSON.
func MarshalExport(s Snapshot) ([]byte, error) {
	return encodeIndent(Stamp(s))
}

func encodeIndent(s Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// ExportName is the dated file name used for exports.
func ExportName(t time.Time) string {
	return fmt.Sprintf("horizon-workflow-%s.json", t.Format("2006-01-02"))
}

// Export writes s into dir under its dated name and returns the path.
func Export(dir string, s Snapshot) (string, error) {
	data, err := MarshalExport(s)
	if err != nil {
		return "", fmt.Errorf("persist: export: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("persist: export: %w", err)
	}
	path := filepath.Join(dir, ExportName(clock()))
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("persist: export: %w", err)
	}
	return path, nil
}

// Import parses snapshot bytes. Missing fields get their defaults. It never
// touches live state; pair it with Load once the replace is confirmed.
func Import(data []byte) (Snapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Snapshot{}, fmt.Errorf("%w: top level is not a JSON object", ErrMalformedData)
	}
	var w wire
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}

	s := Snapshot{
		Cards:            w.Cards,
		Connections:      w.Connections,
		NextCardID:       1,
		NextConnectionID: 1,
		Scale:            1,
		ExportedAt:       w.ExportedAt,
		Version:          w.Version,
	}
	if s.Cards == nil {
		s.Cards = []workflow.Card{}
	}
	if s.Connections == nil {
		s.Connections = []workflow.Connection{}
	}
	if w.NextCardID != nil {
		s.NextCardID = *w.NextCardID
	}
	if w.NextConnectionID != nil {
		s.NextConnectionID = *w.NextConnectionID
	}
	if w.PanX != nil {
		s.PanX = *w.PanX
	}
	if w.PanY != nil {
		s.PanY = *w.PanY
	}
	if w.Scale != nil {
		s.Scale = *w.Scale
	}
	return s, nil
}

// Load replaces the graph and viewport with the snapshot content. Cards
// without a kind become process cards, missing sizes take the kind default
// and undersized cards are floored. Cards with unusable ids and connections
// that would break the graph invariants are dropped and counted.
func Load(s Snapshot, g *workflow.Graph, v *viewport.Viewport) workflow.Dropped {
	cards := make([]workflow.Card, len(s.Cards))
	for i, c := range s.Cards {
		if c.Kind == "" {
			c.Kind = workflow.KindProcess
		}
		w, h := workflow.DefaultSize(c.Kind)
		if c.Width <= 0 {
			c.Width = w
		}
		if c.Height <= 0 {
			c.Height = h
		}
		c.Width = max(c.Width, workflow.MinWidth)
		c.Height = max(c.Height, workflow.MinHeight)
		cards[i] = c
	}
	dropped := g.Replace(cards, s.Connections, s.NextCardID, s.NextConnectionID)
	v.Set(s.PanX, s.PanY, s.Scale)
	return dropped
}

func encode(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}
