package sim

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/firzad/zombieapocalypse/internal/config"
	"github.com/firzad/zombieapocalypse/internal/grid"
)

// smallConfig is a 5x5 open map at 10 TPS. Agents at 40 px/s take ten ticks
// per tile and planning runs every tick.
func smallConfig() config.Config {
	return config.Config{
		Screen: config.Size{Width: 200, Height: 200},
		Tile:   config.Size{Width: 40, Height: 40},
		TPS:    10,
		Seed:   7,
		Target: config.Target{StartX: 160, StartY: 160, Speed: 40, Health: 100},
		Agents: config.Agents{
			SpawnTiles:    []int{1},
			SpawnInterval: 1,
			Speeds:        []float64{40},
			ContactDamage: 5,
		},
		Pathfinding: config.Pathfinding{UpdateInterval: 0.1},
	}
}

func quiet() *log.Logger { return log.New(io.Discard) }

func newWorld(t *testing.T, cfg config.Config, opts ...Option) *World {
	t.Helper()
	w, err := New(cfg, append([]Option{WithLogger(quiet())}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func TestWorld_RejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.TPS = 0
	if _, err := New(cfg, WithLogger(quiet())); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestWorld_RejectsEntitiesOnBlockedCells(t *testing.T) {
	cfg := smallConfig()
	cfg.Blocked = []int{7}
	if _, err := New(cfg, WithLogger(quiet()), WithAgent(7, 40)); err == nil {
		t.Fatal("expected an error for an agent on a blocked cell")
	}
	if _, err := New(cfg, WithLogger(quiet()), WithTargetAt(7)); err == nil {
		t.Fatal("expected an error for a target on a blocked cell")
	}
	cfg.Blocked = []int{25}
	if _, err := New(cfg, WithLogger(quiet())); err == nil {
		t.Fatal("expected an error for a target starting on a blocked cell")
	}
}

func TestWorld_TargetSnapsToTile(t *testing.T) {
	cfg := smallConfig()
	cfg.Target.StartX, cfg.Target.StartY = 95, 130
	w := newWorld(t, cfg, WithoutSpawning())
	if w.Target.Pos != (Point{X: 80, Y: 120}) {
		t.Fatalf("expected target snapped to (80,120), got %+v", w.Target.Pos)
	}
	if !w.Target.Aligned() {
		t.Fatal("snapped target should be aligned")
	}
}

func TestWorld_FirstTickPlansStep(t *testing.T) {
	w := newWorld(t, smallConfig(), WithoutSpawning(), WithVerbose(true), WithAgent(1, 40))
	w.Update()

	a := w.Agents[0]
	if a.NextCell() != 6 {
		t.Fatalf("expected agent heading to 6, got %d", a.NextCell())
	}
	if a.Pos != (Point{X: 0, Y: 4}) {
		t.Fatalf("expected 4px of progress south, got %+v", a.Pos)
	}
	if !w.SimLog.HasEntry("plan", "step", "1 -> 6") {
		t.Fatalf("expected a plan/step entry, log:\n%s", w.SimLog.Format())
	}
	if w.Stats.Searches != 1 || w.Stats.Moves != 1 || w.Stats.Expanded == 0 {
		t.Fatalf("unexpected stats %+v", w.Stats)
	}
}

func TestWorld_PendingAgentIsNotReplanned(t *testing.T) {
	w := newWorld(t, smallConfig(), WithoutSpawning(), WithAgent(1, 40))
	w.RunTicks(5)
	if w.Stats.Searches != 1 {
		t.Fatalf("expected one search while the first move is in flight, got %d", w.Stats.Searches)
	}
	if w.Stats.SkippedPending != 4 {
		t.Fatalf("expected 4 skipped passes, got %d", w.Stats.SkippedPending)
	}
}

func TestWorld_ChaseEndsInGameOver(t *testing.T) {
	w := newWorld(t, smallConfig(), WithoutSpawning(), WithAgent(1, 40))
	w.RunTicks(200)
	if !w.Over() {
		t.Fatalf("expected the target to be overrun, report:\n%s", w.DebugReport(200))
	}
	if w.Target.Health != 0 {
		t.Fatalf("expected health 0, got %d", w.Target.Health)
	}
	if w.Stats.FirstContactTick == 0 || w.Stats.ContactTicks != 20 {
		t.Fatalf("expected 20 contact ticks, got %+v", w.Stats)
	}
	if _, ok := w.SimLog.LastOf("state", "game_over"); !ok {
		t.Fatal("expected a game_over entry")
	}

	// The agent stops beside the target, never on it.
	a := w.Agents[0]
	if a.Cell() == w.Target.Cell() {
		t.Fatal("agent should not enter the target's cell")
	}
	if d := w.Grid.ManhattanCells(a.Cell(), w.Target.Cell()); d != 1 {
		t.Fatalf("expected agent adjacent to target, distance %d", d)
	}

	tick := w.Tick()
	w.Update()
	if w.Tick() != tick {
		t.Fatal("ticks after game over should be no-ops")
	}
}

func TestWorld_ContactNeedsAdjacency(t *testing.T) {
	w := newWorld(t, smallConfig(), WithoutSpawning(), WithAgent(24, 40))
	w.Update()
	if w.Target.Health != 95 {
		t.Fatalf("expected one contact hit, health %d", w.Target.Health)
	}
	if w.Stats.FirstContactTick != 1 {
		t.Fatalf("expected first contact on tick 1, got %d", w.Stats.FirstContactTick)
	}

	far := newWorld(t, smallConfig(), WithoutSpawning(), WithAgent(13, 40))
	far.Update()
	if far.Target.Health != 100 || far.Stats.ContactTicks != 0 {
		t.Fatalf("a distant agent should not touch the target, stats %+v", far.Stats)
	}
}

func TestWorld_BudgetServesEveryAgent(t *testing.T) {
	cfg := smallConfig()
	cfg.Pathfinding.MaxSearchesPerTick = 1
	w := newWorld(t, cfg, WithoutSpawning(),
		WithAgent(1, 40), WithAgent(5, 40), WithAgent(21, 40))

	w.Update()
	if !w.Agents[0].HasPendingMove() || w.Agents[1].HasPendingMove() || w.Agents[2].HasPendingMove() {
		t.Fatal("only the first agent should be served on tick 1")
	}
	w.RunTicks(2)
	for _, a := range w.Agents {
		if !a.HasPendingMove() {
			t.Fatalf("%s was never served", a.Label)
		}
	}
	if w.Stats.Searches != 3 {
		t.Fatalf("expected 3 searches, got %d", w.Stats.Searches)
	}
	if w.Stats.Deferred != 3 || w.Stats.SkippedPending != 3 {
		t.Fatalf("expected 3 deferred and 3 skipped, got %+v", w.Stats)
	}
}

func TestWorld_UnlimitedBudget(t *testing.T) {
	w := newWorld(t, smallConfig(), WithoutSpawning(),
		WithAgent(1, 40), WithAgent(5, 40), WithAgent(21, 40))
	w.Update()
	for _, a := range w.Agents {
		if !a.HasPendingMove() {
			t.Fatalf("%s should be planned on the first tick", a.Label)
		}
	}
	if w.Stats.Deferred != 0 {
		t.Fatalf("expected nothing deferred, got %d", w.Stats.Deferred)
	}
}

func TestWorld_SpawnCap(t *testing.T) {
	cfg := smallConfig()
	cfg.Agents.SpawnInterval = 0.1
	cfg.Agents.Max = 2
	w := newWorld(t, cfg)
	w.RunTicks(10)
	if len(w.Agents) != 2 || w.Stats.Spawned != 2 {
		t.Fatalf("expected 2 agents, got %d (spawned %d)", len(w.Agents), w.Stats.Spawned)
	}
	if w.SimLog.CountCategory("spawn", "spawned") != 2 {
		t.Fatal("expected two spawn entries")
	}
	if w.Agents[1].Label != "Z2" {
		t.Fatalf("expected label Z2, got %s", w.Agents[1].Label)
	}
}

func TestWorld_TargetStepRules(t *testing.T) {
	cfg := smallConfig()
	cfg.Blocked = []int{24}
	w := newWorld(t, cfg, WithoutSpawning())
	tg := w.Target
	if tg.Step(grid.DirW) {
		t.Fatal("step into a blocked cell should be refused")
	}
	if tg.Step(grid.DirE) {
		t.Fatal("step off the grid should be refused")
	}
	if tg.Step(grid.DirNW) {
		t.Fatal("diagonal steps should be refused")
	}
	if !tg.Step(grid.DirN) {
		t.Fatal("step north should be accepted")
	}
	if tg.Step(grid.DirN) {
		t.Fatal("a second step while moving should be refused")
	}
	w.RunTicks(10)
	if tg.Moving() || tg.Cell() != 20 {
		t.Fatalf("expected target settled on 20, got %d moving=%v", tg.Cell(), tg.Moving())
	}
}

func TestWorld_WanderMovesTarget(t *testing.T) {
	w := newWorld(t, smallConfig(), WithoutSpawning(), WithWander(true), WithTargetAt(13))
	start := w.Target.Pos
	w.Update()
	if w.Target.Pos == start {
		t.Fatal("wandering target should leave the centre of an open grid")
	}
}

func TestWorld_Deterministic(t *testing.T) {
	run := func() (Stats, []grid.Index) {
		w := newWorld(t, config.Default(), WithWander(true), WithSeed(99))
		w.RunTicks(600)
		s := w.Stats
		s.PlanTime = 0
		cells := make([]grid.Index, 0, len(w.Agents))
		for _, a := range w.Agents {
			cells = append(cells, a.Cell())
		}
		return s, cells
	}
	s1, c1 := run()
	s2, c2 := run()
	if s1 != s2 {
		t.Fatalf("stats diverged:\n%+v\n%+v", s1, s2)
	}
	if len(c1) != len(c2) {
		t.Fatalf("agent counts diverged: %d vs %d", len(c1), len(c2))
	}
	for i := range c1 {
		if c1[i] != c2[i] {
			t.Fatalf("agent %d diverged: %d vs %d", i, c1[i], c2[i])
		}
	}
}

func TestWorld_DefaultMapProducesMoves(t *testing.T) {
	w := newWorld(t, config.Default())
	w.RunTicks(600)
	if w.Stats.Spawned == 0 || w.Stats.Moves == 0 {
		t.Fatalf("expected spawns and moves, got %+v", w.Stats)
	}
	for _, a := range w.Agents {
		if !w.Grid.IsWalkable(a.Cell()) {
			t.Fatalf("%s stands on unwalkable cell %d", a.Label, a.Cell())
		}
	}
}

func TestWorld_DebugReport(t *testing.T) {
	w := newWorld(t, smallConfig(), WithoutSpawning(), WithAgent(1, 40))
	w.RunTicks(3)
	r := w.DebugReport(0)
	for _, want := range []string{"debug report", "== stats ==", "Z1", "searches=1", "== events =="} {
		if !strings.Contains(r, want) {
			t.Fatalf("report missing %q:\n%s", want, r)
		}
	}
}
