// Package prompt stores reusable advisor questions with {{name}} placeholders.
package prompt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned for an unknown template name.
var ErrNotFound = errors.New("template not found")

// Template is a saved question.
type Template struct {
	Name      string
	Content   string
	Variables []string
	UpdatedAt time.Time
}

// Library is a directory of <name>.md templates.
type Library struct {
	dir string
}

// DefaultDir is prompts/ in the horizon config directory.
func DefaultDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "horizon", "prompts")
}

// Open returns the library rooted at dir. The directory is created on the
// first Save.
func Open(dir string) *Library { return &Library{dir: dir} }

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

func (l *Library) path(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("invalid template name %q", name)
	}
	return filepath.Join(l.dir, name+".md"), nil
}

// Save writes content under name, replacing any previous version.
func (l *Library) Save(name, content string) error {
	path, err := l.path(name)
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("template %q is empty", name)
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// Load reads one template.
func (l *Library) Load(name string) (*Template, error) {
	path, err := l.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	t := &Template{Name: name, Content: string(data), Variables: Variables(string(data))}
	if info, err := os.Stat(path); err == nil {
		t.UpdatedAt = info.ModTime()
	}
	return t, nil
}

// Delete removes a template.
func (l *Library) Delete(name string) error {
	path, err := l.path(name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return err
}

// List returns every template sorted by name. Unreadable files are skipped.
func (l *Library) List() ([]Template, error) {
	entries, err := os.ReadDir(l.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []Template
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		t, err := l.Load(strings.TrimSuffix(e.Name(), ".md"))
		if err != nil {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Variables lists the placeholder names in content, in order of first use.
func Variables(content string) []string {
	seen := map[string]bool{}
	var vars []string
	for _, m := range placeholder.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			vars = append(vars, m[1])
		}
	}
	return vars
}

// MissingError names placeholders Render had no value for.
type MissingError struct {
	Names []string
}

func (e *MissingError) Error() string {
	return "missing values for " + strings.Join(e.Names, ", ")
}

// Render substitutes vars into content. Every placeholder must have a value.
func Render(content string, vars map[string]string) (string, error) {
	var missing []string
	for _, name := range Variables(content) {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", &MissingError{Names: missing}
	}
	return placeholder.ReplaceAllStringFunc(content, func(m string) string {
		return vars[placeholder.FindStringSubmatch(m)[1]]
	}), nil
}
