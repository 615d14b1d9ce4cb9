// Package roster tracks the distributed team locations whose working hours
// the canvas plans around, and turns a location into a team card.
package roster

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

var (
	ErrInvalidTimezone = errors.New("invalid timezone")
	ErrDuplicate       = errors.New("location already added")
	ErrInvalidHours    = errors.New("invalid work hours")
	ErrNotFound        = errors.New("location not found")
)

// WorkHours is a local-time window, start inclusive and end exclusive.
type WorkHours struct {
	Start int `toml:"start" json:"start"`
	End   int `toml:"end" json:"end"`
}

// Location is one team in one timezone.
type Location struct {
	ID        string    `toml:"id" json:"id"`
	Timezone  string    `toml:"timezone" json:"timezone"`
	City      string    `toml:"city" json:"city"`
	Role      string    `toml:"role" json:"role"`
	TeamSize  int       `toml:"team_size" json:"teamSize"`
	WorkHours WorkHours `toml:"work_hours" json:"workHours"`
	IsLocal   bool      `toml:"is_local" json:"isLocal"`
	CreatedAt time.Time `toml:"created_at" json:"createdAt"`
}

// Roster is the saved list of locations.
type Roster struct {
	Locations []Location `toml:"location"`
}

// DefaultPath is roster.toml in the horizon config directory.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "horizon", "roster.toml")
}

// Load reads the roster at path. A missing file is an empty roster.
func Load(path string) (*Roster, error) {
	r := &Roster{}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("roster: parse %s: %w", path, err)
	}
	return r, nil
}

// Save writes the roster to path.
func Save(path string, r *Roster) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(r)
}

// CityFromTimezone derives a display name from an IANA zone,
// "America/New_York" gives "New York".
func CityFromTimezone(tz string) string {
	if i := strings.LastIndex(tz, "/"); i >= 0 {
		tz = tz[i+1:]
	}
	return strings.ReplaceAll(tz, "_", " ")
}

// Add validates loc and appends it. Empty city, role and team size get
// defaults, and the id and creation time are filled in.
func (r *Roster) Add(loc Location) (*Location, error) {
	if loc.Timezone == "" {
		return nil, ErrInvalidTimezone
	}
	if _, err := time.LoadLocation(loc.Timezone); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, loc.Timezone)
	}
	if r.Find(loc.Timezone) != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicate, loc.Timezone)
	}
	wh := loc.WorkHours
	if wh.Start < 0 || wh.End > 24 || wh.Start >= wh.End {
		return nil, fmt.Errorf("%w: %d-%d", ErrInvalidHours, wh.Start, wh.End)
	}
	if loc.City == "" {
		loc.City = CityFromTimezone(loc.Timezone)
	}
	if loc.Role == "" {
		loc.Role = "Engineering"
	}
	if loc.TeamSize < 1 {
		loc.TeamSize = 1
	}
	loc.ID = uuid.NewString()
	if loc.CreatedAt.IsZero() {
		loc.CreatedAt = time.Now().UTC()
	}
	r.Locations = append(r.Locations, loc)
	return &r.Locations[len(r.Locations)-1], nil
}

// Find returns the location with the given id, timezone or city
// (case-insensitive), or nil.
func (r *Roster) Find(key string) *Location {
	for i := range r.Locations {
		l := &r.Locations[i]
		if l.ID == key || l.Timezone == key || strings.EqualFold(l.City, key) {
			return l
		}
	}
	return nil
}

// Remove drops the location matching key.
func (r *Roster) Remove(key string) error {
	for i := range r.Locations {
		l := r.Locations[i]
		if l.ID == key || l.Timezone == key || strings.EqualFold(l.City, key) {
			r.Locations = append(r.Locations[:i], r.Locations[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, key)
}

// ─── Time ───

func zone(l Location) *time.Location {
	z, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.UTC
	}
	return z
}

// Now returns t in the location's timezone.
func Now(l Location, t time.Time) time.Time {
	return t.In(zone(l))
}

// InWorkHours reports whether t falls inside the location's work hours.
func InWorkHours(l Location, t time.Time) bool {
	h := Now(l, t).Hour()
	return h >= l.WorkHours.Start && h < l.WorkHours.End
}

// utcHours returns the set of UTC hours the location works on the day of t.
func utcHours(l Location, t time.Time) [24]bool {
	var set [24]bool
	local := Now(l, t)
	z := local.Location()
	for h := l.WorkHours.Start; h < l.WorkHours.End && h < 24; h++ {
		at := time.Date(local.Year(), local.Month(), local.Day(), h, 0, 0, 0, z)
		set[at.UTC().Hour()] = true
	}
	return set
}

// Coverage counts the UTC hours of the day of t worked by at least one
// location.
func Coverage(locs []Location, t time.Time) int {
	var covered [24]bool
	for _, l := range locs {
		for h, on := range utcHours(l, t) {
			covered[h] = covered[h] || on
		}
	}
	n := 0
	for _, on := range covered {
		if on {
			n++
		}
	}
	return n
}

// Overlap counts the UTC hours both locations work on the day of t.
func Overlap(a, b Location, t time.Time) int {
	ha, hb := utcHours(a, t), utcHours(b, t)
	n := 0
	for h := range ha {
		if ha[h] && hb[h] {
			n++
		}
	}
	return n
}

// HandoffEfficiency is the average pairwise overlap, two shared hours per
// pair counting as 100. A roster of fewer than two locations scores 100.
func HandoffEfficiency(locs []Location, t time.Time) int {
	if len(locs) < 2 {
		return 100
	}
	total, pairs := 0, 0
	for i := range locs {
		for j := i + 1; j < len(locs); j++ {
			total += Overlap(locs[i], locs[j], t)
			pairs++
		}
	}
	avg := float64(total) / float64(pairs)
	return min(int(avg/2*100+0.5), 100)
}

// ProductivityScore blends coverage and handoff efficiency into 0..100.
func ProductivityScore(locs []Location, t time.Time) int {
	if len(locs) == 0 {
		return 0
	}
	cov := float64(Coverage(locs, t)) / 24 * 50
	eff := float64(HandoffEfficiency(locs, t)) / 100 * 50
	return int(cov + eff + 0.5)
}

// CardText returns the title and rich-text content of the team card for l.
func CardText(l Location) (title, content string) {
	return l.City, fmt.Sprintf("%s Team • %d members<br>Work Hours: %d:00 - %d:00",
		l.Role, l.TeamSize, l.WorkHours.Start, l.WorkHours.End)
}
