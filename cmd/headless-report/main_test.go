package main

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/firzad/zombieapocalypse/internal/config"
	"github.com/firzad/zombieapocalypse/internal/sim"
)

func TestOutcome(t *testing.T) {
	cases := []struct {
		name string
		rs   runStats
		want string
	}{
		{"overrun", runStats{over: true, stats: sim.Stats{Spawned: 3, FirstContactTick: 40}}, "overrun"},
		{"contact", runStats{stats: sim.Stats{Spawned: 3, FirstContactTick: 40}}, "contact"},
		{"evaded", runStats{stats: sim.Stats{Spawned: 3}}, "evaded"},
		{"empty", runStats{}, "empty"},
	}
	for _, tc := range cases {
		if got := outcome(tc.rs); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestFirstTick(t *testing.T) {
	entries := []sim.SimLogEntry{
		{Tick: 3, Category: "plan", Key: "step", Value: "1 -> 2"},
		{Tick: 8, Category: "state", Key: "game_over", Value: "caught by Z2"},
		{Tick: 9, Category: "state", Key: "game_over", Value: "caught by Z4"},
	}
	if got := firstTick(entries, "state", "game_over", ""); got != 8 {
		t.Fatalf("expected 8, got %d", got)
	}
	if got := firstTick(entries, "state", "game_over", "Z4"); got != 9 {
		t.Fatalf("expected 9, got %d", got)
	}
	if got := firstTick(entries, "contact", "first", ""); got != -1 {
		t.Fatalf("expected -1 for a missing event, got %d", got)
	}
}

func TestAverages(t *testing.T) {
	if avg(10, 0) != 0 || avg(10, 4) != 2.5 {
		t.Fatal("avg mismatch")
	}
	if perSearch(time.Second, 0) != 0 || perSearch(time.Second, 4) != 250*time.Millisecond {
		t.Fatal("perSearch mismatch")
	}
	if avgTickString(nil) != "n/a" || avgTickString([]int{10, 20}) != "15.0" {
		t.Fatal("avgTickString mismatch")
	}
	if markerTick(0) != -1 || markerTick(12) != 12 {
		t.Fatal("markerTick mismatch")
	}
}

func TestRunChase_SameSeedSameResult(t *testing.T) {
	logger := log.New(io.Discard)
	cfg := config.Default()
	a, err := runChase(cfg, 1, 5, 300, logger)
	if err != nil {
		t.Fatalf("runChase: %v", err)
	}
	b, err := runChase(cfg, 1, 5, 300, logger)
	if err != nil {
		t.Fatalf("runChase: %v", err)
	}
	a.stats.PlanTime, b.stats.PlanTime = 0, 0
	if a != b {
		t.Fatalf("runs diverged:\n%+v\n%+v", a, b)
	}
	if a.stats.Spawned == 0 || a.stats.Searches == 0 {
		t.Fatalf("expected spawns and searches, got %+v", a.stats)
	}
	if a.closestCells < 0 {
		t.Fatal("expected a closest distance once agents exist")
	}
}
