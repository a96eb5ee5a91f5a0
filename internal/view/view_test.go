package view

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/firzad/zombieapocalypse/internal/config"
	"github.com/firzad/zombieapocalypse/internal/sim"
)

func TestSpeedSteps(t *testing.T) {
	cases := []struct {
		cur, slower, faster float64
	}{
		{0, 0, 0.25},
		{0.25, 0, 0.5},
		{1, 0.5, 2},
		{4, 2, 4},
	}
	for _, tc := range cases {
		if got := slower(tc.cur); got != tc.slower {
			t.Errorf("slower(%v): expected %v, got %v", tc.cur, tc.slower, got)
		}
		if got := faster(tc.cur); got != tc.faster {
			t.Errorf("faster(%v): expected %v, got %v", tc.cur, tc.faster, got)
		}
	}
}

func TestFeedLines_KeepsNewest(t *testing.T) {
	entries := []sim.FeedEntry{
		{Tick: 1, Label: "Z1", Message: "rises at 38"},
		{Tick: 61, Label: "Z2", Message: "rises at 42"},
		{Tick: 300, Label: "Z1", Message: "reaches the survivor"},
	}
	lines := feedLines(entries, 2)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "Z2") || !strings.Contains(lines[1], "survivor") {
		t.Fatalf("unexpected lines %q", lines)
	}
	if feedLines(entries, 0) != nil {
		t.Fatal("no room should give no lines")
	}
}

func TestHUDLines(t *testing.T) {
	w, err := sim.New(config.Default(), sim.WithLogger(log.New(io.Discard)))
	if err != nil {
		t.Fatalf("sim.New: %v", err)
	}
	w.RunTicks(2)
	lines := hudLines(w, 0)
	if !strings.Contains(lines[0], "tick 2") || !strings.Contains(lines[0], "paused") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[2], "zombies 1") {
		t.Fatalf("expected one zombie after the first spawn, got %q", lines[2])
	}
	if !strings.Contains(hudLines(w, 2)[0], "2x") {
		t.Fatal("expected speed multiplier in header")
	}
}

func TestFastestSpeed(t *testing.T) {
	if fastestSpeed([]float64{80, 160}) != 160 || fastestSpeed(nil) != 0 {
		t.Fatal("fastestSpeed mismatch")
	}
}
