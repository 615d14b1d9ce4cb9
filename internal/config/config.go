package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds horizon configuration.
type Config struct {
	UI      UIConfig      `toml:"ui"`
	Canvas  CanvasConfig  `toml:"canvas"`
	Storage StorageConfig `toml:"storage"`
	Assist  AssistConfig  `toml:"assist"`
	Server  ServerConfig  `toml:"server"`
	Hooks   HooksConfig   `toml:"hooks"`
}

// UIConfig controls display options.
type UIConfig struct {
	Emoji bool `toml:"emoji"`
	Color bool `toml:"color"`
}

// CanvasConfig describes the screen the canvas is shown on.
type CanvasConfig struct {
	ViewWidth  float64 `toml:"view_width"`
	ViewHeight float64 `toml:"view_height"`
	Grid       bool    `toml:"grid"`
	ExportDir  string  `toml:"export_dir"`
}

// StorageConfig selects where the live canvas is persisted.
type StorageConfig struct {
	Backend  string `toml:"backend"` // "file", "sqlite", "redis", "memory"
	Path     string `toml:"path"`
	RedisURL string `toml:"redis_url"`
	Name     string `toml:"name"`
}

// AssistConfig controls the AI assistant proxy.
type AssistConfig struct {
	APIKeyEnv    string `toml:"api_key_env"`
	Model        string `toml:"model"`
	TimeoutSecs  int    `toml:"timeout_secs"`
	MaxPromptLen int    `toml:"max_prompt_len"`
}

// Timeout returns the upstream request timeout.
func (a AssistConfig) Timeout() time.Duration {
	if a.TimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.TimeoutSecs) * time.Second
}

// ServerConfig controls `horizon serve`.
type ServerConfig struct {
	Addr  string `toml:"addr"`
	Port  int    `toml:"port"`
	Watch bool   `toml:"watch"`
}

// ListenAddr joins Addr and Port.
func (s ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", s.Addr, s.Port)
}

// HooksConfig defines shell scripts run after canvas operations.
type HooksConfig struct {
	PostExport string `toml:"post_export"`
	PostImport string `toml:"post_import"`
	PostClear  string `toml:"post_clear"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		UI:      UIConfig{Emoji: true, Color: true},
		Canvas:  CanvasConfig{ViewWidth: 1280, ViewHeight: 720, Grid: true, ExportDir: "."},
		Storage: StorageConfig{Backend: "file", Name: "default"},
		Assist: AssistConfig{
			APIKeyEnv:    "GEMINI_API_KEY",
			Model:        "gemini-1.5-flash",
			TimeoutSecs:  30,
			MaxPromptLen: 10000,
		},
		Server: ServerConfig{Addr: "127.0.0.1", Port: 8420, Watch: true},
	}
}

// ConfigDir returns the horizon config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "horizon")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// ProjectFile is the per-project override looked up from the working
// directory upward.
const ProjectFile = ".horizon.toml"

// Load reads the user config file and then the nearest project file on top
// of it. Missing or unreadable files are skipped; keys absent from a file
// keep their previous value.
func Load() *Config {
	cfg := Default()
	if data, err := os.ReadFile(Path()); err == nil {
		_ = toml.Unmarshal(data, cfg)
	}
	if p := findProjectConfig(); p != "" {
		if data, err := os.ReadFile(p); err == nil {
			_ = toml.Unmarshal(data, cfg)
		}
	}
	return cfg
}

func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		p := filepath.Join(dir, ProjectFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
func EnsureExists() error {
	if _, err := os.Stat(Path()); err == nil {
		return nil
	}
	return Save(Default())
}
