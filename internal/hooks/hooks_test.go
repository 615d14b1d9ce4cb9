package hooks

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/msalah0e/horizon/internal/config"
)

func TestScript(t *testing.T) {
	h := config.HooksConfig{PostExport: "echo exported", PostClear: "echo cleared"}
	if got := Script(h, PostExport); got != "echo exported" {
		t.Errorf("post_export = %q", got)
	}
	if got := Script(h, PostImport); got != "" {
		t.Errorf("unset phase should be empty, got %q", got)
	}
	if got := Script(h, "pre_run"); got != "" {
		t.Errorf("unknown phase should be empty, got %q", got)
	}
}

func TestRunExportsEnv(t *testing.T) {
	out := filepath.Join(t.TempDir(), "hook.txt")
	h := config.HooksConfig{PostExport: `printf '%s %s' "$HORIZON_PHASE" "$HORIZON_PATH" > ` + out}

	if err := Run(context.Background(), h, PostExport, map[string]string{"PATH": "/tmp/w.json"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != "post_export /tmp/w.json" {
		t.Errorf("hook saw %q", got)
	}
}

func TestRunWithoutScript(t *testing.T) {
	if err := Run(context.Background(), config.HooksConfig{}, PostImport, nil); err != nil {
		t.Errorf("no script should be a no-op, got %v", err)
	}
}

func TestRunFailure(t *testing.T) {
	h := config.HooksConfig{PostClear: "exit 3"}
	if err := Run(context.Background(), h, PostClear, nil); err == nil {
		t.Error("failing script should return an error")
	}
}
