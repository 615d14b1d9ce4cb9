// Package hooks runs the user's shell scripts after canvas operations.
package hooks

import (
	"context"
	"os"
	"os/exec"

	"github.com/msalah0e/horizon/internal/config"
)

// Phases with a configurable script.
const (
	PostExport = "post_export"
	PostImport = "post_import"
	PostClear  = "post_clear"
)

// Run executes the script configured for phase, if any. Values in env are
// exported as HORIZON_<KEY>. The script inherits stdout and stderr.
func Run(ctx context.Context, h config.HooksConfig, phase string, env map[string]string) error {
	script := Script(h, phase)
	if script == "" {
		return nil
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", script)
	cmd.Env = append(os.Environ(), "HORIZON_PHASE="+phase)
	for k, v := range env {
		cmd.Env = append(cmd.Env, "HORIZON_"+k+"="+v)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Script returns the script for phase, or "".
func Script(h config.HooksConfig, phase string) string {
	switch phase {
	case PostExport:
		return h.PostExport
	case PostImport:
		return h.PostImport
	case PostClear:
		return h.PostClear
	default:
		return ""
	}
}
