package activity

import (
	"fmt"
	"sort"
	"time"
)

// Summary aggregates the journal.
type Summary struct {
	Total       int
	ByAction    map[string]int
	CardsAdded  int
	CardsLive   int // added minus deleted since the last clear or import
	Imports     int
	FirstChange time.Time
	LastChange  time.Time
}

// Summarize reads the whole journal and aggregates it.
func (j *Journal) Summarize() (*Summary, error) {
	entries, err := j.Recent(0)
	if err != nil {
		return nil, err
	}
	return summarize(entries), nil
}

func summarize(entries []Entry) *Summary {
	s := &Summary{ByAction: map[string]int{}}
	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Timestamp.Before(sorted[b].Timestamp)
	})
	for _, e := range sorted {
		s.Total++
		s.ByAction[e.Action]++
		if s.FirstChange.IsZero() || e.Timestamp.Before(s.FirstChange) {
			s.FirstChange = e.Timestamp
		}
		if e.Timestamp.After(s.LastChange) {
			s.LastChange = e.Timestamp
		}
		switch e.Action {
		case "card.add":
			s.CardsAdded++
			s.CardsLive++
		case "card.delete":
			if s.CardsLive > 0 {
				s.CardsLive--
			}
		case "clear":
			s.CardsLive = 0
		case "import":
			s.Imports++
			s.CardsLive = 0
			fmt.Sscanf(e.Details, "%d cards", &s.CardsLive)
		}
	}
	return s
}

// Actions returns the action names seen, most frequent first.
func (s *Summary) Actions() []string {
	names := make([]string, 0, len(s.ByAction))
	for name := range s.ByAction {
		names = append(names, name)
	}
	sort.Slice(names, func(a, b int) bool {
		if s.ByAction[names[a]] != s.ByAction[names[b]] {
			return s.ByAction[names[a]] > s.ByAction[names[b]]
		}
		return names[a] < names[b]
	})
	return names
}
