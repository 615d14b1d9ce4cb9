package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/msalah0e/horizon/internal/config"
	"github.com/msalah0e/horizon/internal/render"
	"github.com/msalah0e/horizon/internal/roster"
)

func TestParseHours(t *testing.T) {
	start, end, err := parseHours("8-16")
	if err != nil || start != 8 || end != 16 {
		t.Errorf("parseHours(8-16) = %d, %d, %v", start, end, err)
	}
	start, end, err = parseHours(" 22 - 6 ")
	if err != nil || start != 22 || end != 6 {
		t.Errorf("spaces should be trimmed, got %d, %d, %v", start, end, err)
	}
	for _, bad := range []string{"9", "nine-five", "9-", ""} {
		if _, _, err := parseHours(bad); !errors.Is(err, roster.ErrInvalidHours) {
			t.Errorf("parseHours(%q) error = %v", bad, err)
		}
	}
}

func TestWriteExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := writeExport(dir, "svg", []byte("<svg/>"))
	if err != nil {
		t.Fatalf("writeExport: %v", err)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "horizon-workflow-") || !strings.HasSuffix(base, ".svg") {
		t.Errorf("unexpected export name %q", base)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "<svg/>" {
		t.Errorf("written %q", data)
	}
}

func TestSceneBytes(t *testing.T) {
	scene := render.New()
	svg, err := sceneBytes(scene, "svg", 640, 480)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Errorf("svg output = %q", svg)
	}
	dot, err := sceneBytes(scene, "dot", 640, 480)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), "graph") {
		t.Errorf("dot output = %q", dot)
	}
}

func TestStoreOptionsFlags(t *testing.T) {
	t.Cleanup(func() { storeBackend, storeName = "", "" })
	cfg := config.Default()
	cfg.Storage.Path = "/data/workflow.json"

	opts := storeOptions(cfg)
	if opts.Backend != "file" || opts.Path != "/data/workflow.json" || opts.Name != "default" {
		t.Errorf("config options = %+v", opts)
	}

	storeBackend, storeName = "sqlite", "team-a"
	opts = storeOptions(cfg)
	if opts.Backend != "sqlite" || opts.Name != "team-a" {
		t.Errorf("flag options = %+v", opts)
	}
	if opts.Path != "" {
		t.Errorf("a different backend should not reuse the file path, got %q", opts.Path)
	}
}

func TestStoreOptionsRedisURLFromEnv(t *testing.T) {
	t.Cleanup(func() { storeBackend = "" })
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(redisURLKey, "redis://:secret@localhost:6379/0")

	storeBackend = "redis"
	if got := storeOptions(config.Default()).RedisURL; got != "redis://:secret@localhost:6379/0" {
		t.Errorf("RedisURL = %q", got)
	}
}

func TestKeyUse(t *testing.T) {
	cfg := config.Default()
	for key, want := range map[string]string{
		"GEMINI_API_KEY": "assist",
		redisURLKey:      "storage (redis)",
		"OTHER":          "-",
	} {
		if got := keyUse(cfg, key); got != want {
			t.Errorf("keyUse(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Zürich handoff", 6); got != "Züric…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
}
