package activity

import (
	"path/filepath"
	"testing"
)

func TestSummarize(t *testing.T) {
	j := Open(filepath.Join(t.TempDir(), "activity.jsonl"))
	stepClock(j)

	j.Record("card.add", 1, 0, "A")
	j.Record("card.add", 2, 0, "B")
	j.Record("card.add", 3, 0, "C")
	j.Record("card.delete", 2, 0, "B")
	j.Record("import", 0, 0, "5 cards, 2 connections")
	j.Record("card.add", 6, 0, "D")

	s, err := j.Summarize()
	if err != nil {
		t.Fatal(err)
	}
	if s.Total != 6 {
		t.Errorf("Total = %d", s.Total)
	}
	if s.CardsAdded != 4 {
		t.Errorf("CardsAdded = %d", s.CardsAdded)
	}
	if s.CardsLive != 6 {
		t.Errorf("CardsLive = %d, want imported 5 plus 1", s.CardsLive)
	}
	if s.Imports != 1 {
		t.Errorf("Imports = %d", s.Imports)
	}
	if !s.LastChange.After(s.FirstChange) {
		t.Errorf("first %v, last %v", s.FirstChange, s.LastChange)
	}
	if got := s.Actions(); len(got) != 3 || got[0] != "card.add" {
		t.Errorf("Actions = %v", got)
	}
}

func TestSummarizeClearResetsLive(t *testing.T) {
	s := summarize([]Entry{
		{Action: "card.add"},
		{Action: "card.add"},
		{Action: "clear"},
		{Action: "card.delete"},
	})
	if s.CardsLive != 0 {
		t.Errorf("CardsLive = %d", s.CardsLive)
	}
	if s.ByAction["card.add"] != 2 {
		t.Errorf("ByAction = %v", s.ByAction)
	}
}

func TestSummarizeMissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "none.jsonl")).Summarize()
	if err != nil {
		t.Fatal(err)
	}
	if s.Total != 0 || len(s.Actions()) != 0 {
		t.Errorf("empty journal summary = %+v", s)
	}
}
