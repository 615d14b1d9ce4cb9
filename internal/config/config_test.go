package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.UI.Emoji {
		t.Error("default emoji should be true")
	}
	if !cfg.UI.Color {
		t.Error("default color should be true")
	}
	if cfg.Canvas.ViewWidth != 1280 || cfg.Canvas.ViewHeight != 720 {
		t.Errorf("expected 1280x720 view, got %vx%v", cfg.Canvas.ViewWidth, cfg.Canvas.ViewHeight)
	}
	if cfg.Storage.Backend != "file" {
		t.Errorf("expected storage backend 'file', got %q", cfg.Storage.Backend)
	}
	if cfg.Assist.Model != "gemini-1.5-flash" {
		t.Errorf("expected model gemini-1.5-flash, got %q", cfg.Assist.Model)
	}
	if cfg.Assist.MaxPromptLen != 10000 {
		t.Errorf("expected max prompt 10000, got %d", cfg.Assist.MaxPromptLen)
	}
	if cfg.Assist.Timeout() != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.Assist.Timeout())
	}
	if cfg.Server.ListenAddr() != "127.0.0.1:8420" {
		t.Errorf("expected 127.0.0.1:8420, got %q", cfg.Server.ListenAddr())
	}
}

func TestTimeoutFallback(t *testing.T) {
	if got := (AssistConfig{TimeoutSecs: 0}).Timeout(); got != 30*time.Second {
		t.Errorf("zero timeout should fall back to 30s, got %v", got)
	}
	if got := (AssistConfig{TimeoutSecs: 5}).Timeout(); got != 5*time.Second {
		t.Errorf("expected 5s, got %v", got)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	dir := ConfigDir()
	if dir != "/tmp/test-xdg/horizon" {
		t.Errorf("expected /tmp/test-xdg/horizon, got %q", dir)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	dir = ConfigDir()
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".config", "horizon")
	if dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg := Default()
	cfg.Storage.Backend = "sqlite"
	cfg.Server.Port = 9000

	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := Load()
	if loaded.Storage.Backend != "sqlite" {
		t.Errorf("expected backend sqlite, got %q", loaded.Storage.Backend)
	}
	if loaded.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", loaded.Server.Port)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Chdir(t.TempDir())

	path := filepath.Join(tmpDir, "horizon", "config.toml")
	os.MkdirAll(filepath.Dir(path), 0o755)
	os.WriteFile(path, []byte("[assist]\nmodel = \"gemini-2.0-flash\"\n"), 0o644)

	cfg := Load()
	if cfg.Assist.Model != "gemini-2.0-flash" {
		t.Errorf("model not read: %q", cfg.Assist.Model)
	}
	if cfg.Assist.APIKeyEnv != "GEMINI_API_KEY" {
		t.Errorf("unset keys should keep defaults, got %q", cfg.Assist.APIKeyEnv)
	}
}

func TestEnsureExists(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	if err := EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}

	path := filepath.Join(tmpDir, "horizon", "config.toml")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}

	if err := EnsureExists(); err != nil {
		t.Fatalf("EnsureExists second call failed: %v", err)
	}
}

func TestProjectConfigOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "a", "b", "c")
	os.MkdirAll(subDir, 0o755)
	os.WriteFile(filepath.Join(tmpDir, ProjectFile), []byte("[storage]\nbackend = \"memory\"\n"), 0o644)
	t.Chdir(subDir)

	found := findProjectConfig()
	expectedResolved, _ := filepath.EvalSymlinks(filepath.Join(tmpDir, ProjectFile))
	foundResolved, _ := filepath.EvalSymlinks(found)
	if foundResolved != expectedResolved {
		t.Errorf("expected %q, got %q", expectedResolved, foundResolved)
	}

	cfg := Load()
	if cfg.Storage.Backend != "memory" {
		t.Errorf("project file should override backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Name != "default" {
		t.Errorf("expected default storage name, got %q", cfg.Storage.Name)
	}
}
