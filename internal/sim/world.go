// Package sim runs the chase: zombies spawn, plan one step at a time toward the
// survivor, and walk there tile by tile.
package sim

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/firzad/zombieapocalypse/internal/config"
	"github.com/firzad/zombieapocalypse/internal/grid"
	"github.com/firzad/zombieapocalypse/internal/pathfind"
)

// Stats accumulates counters over a run.
type Stats struct {
	Ticks            int
	Spawned          int
	Searches         int // PlanStep calls that ran a search
	Moves            int // searches that produced a step
	NoPath           int // searches that produced nothing
	SkippedPending   int // agents passed over because a move was in flight
	Deferred         int // idle agents left for a later tick by the search budget
	Expanded         int // cells closed across all searches
	Arrivals         int
	ContactTicks     int // agent-ticks spent touching the target
	FirstContactTick int // 0 until the first contact
	PlanTime         time.Duration
}

// World owns every entity of one run. It is not safe for concurrent use.
type World struct {
	Grid   *grid.Grid
	Engine *pathfind.Engine
	Agents []*Agent
	Target *Target
	SimLog *SimLog
	Feed   *EventFeed
	Stats  Stats

	cfg        config.Config
	rng        *rand.Rand
	logger     *log.Logger
	tick       int
	nextID     int
	cursor     int // round-robin start for budgeted planning
	spawnEvery int
	planEvery  int
	spawning   bool
	wander     bool
	over       bool
}

// New builds a world from cfg. Options are applied in two passes: settings
// first, then entity placement once the grid exists.
func New(cfg config.Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		SimLog:     NewSimLog(false),
		Feed:       NewEventFeed(),
		cfg:        cfg,
		rng:        rand.New(rand.NewSource(cfg.Seed)), // #nosec G404 -- simulation RNG
		logger:     log.Default(),
		spawnEvery: cfg.TicksPer(cfg.Agents.SpawnInterval),
		planEvery:  cfg.TicksPer(cfg.Pathfinding.UpdateInterval),
		spawning:   true,
	}
	for _, o := range opts {
		if o.kind == optInfra {
			if err := o.fn(w); err != nil {
				return nil, err
			}
		}
	}

	g, err := grid.New(cfg.Cols(), cfg.Rows(), cfg.Tile.Width, cfg.Tile.Height, cfg.Blocked)
	if err != nil {
		return nil, fmt.Errorf("sim: build grid: %w", err)
	}
	w.Grid = g
	w.Engine = pathfind.New(g,
		pathfind.WithDiagonal(cfg.Pathfinding.AllowDiagonal),
		pathfind.WithLogger(w.logger),
	)
	w.Target = &Target{
		Pos:    Point{X: cfg.Target.StartX, Y: cfg.Target.StartY},
		Speed:  cfg.Target.Speed,
		Health: cfg.Target.Health,
		Wander: w.wander,
		grid:   g,
	}
	// Snap the configured start onto its tile.
	start := w.Target.Cell()
	x, y := g.Position(start)
	w.Target.Pos = Point{X: float64(x), Y: float64(y)}

	for _, o := range opts {
		if o.kind == optEntity {
			if err := o.fn(w); err != nil {
				return nil, err
			}
		}
	}
	if !g.IsWalkable(w.Target.Cell()) {
		return nil, fmt.Errorf("sim: target starts on blocked cell %d", w.Target.Cell())
	}

	w.logger.Debug("world ready",
		"cols", g.Cols(), "rows", g.Rows(),
		"plan_every", w.planEvery, "spawn_every", w.spawnEvery,
		"budget", cfg.Pathfinding.MaxSearchesPerTick)
	return w, nil
}

// Config returns the configuration the world was built from.
func (w *World) Config() config.Config { return w.cfg }

// Tick returns how many ticks have run.
func (w *World) Tick() int { return w.tick }

// Over reports whether the target has been caught.
func (w *World) Over() bool { return w.over }

// Update advances the world by one tick.
func (w *World) Update() {
	if w.over {
		return
	}
	w.tick++
	w.Stats.Ticks++

	if w.spawning && (w.tick-1)%w.spawnEvery == 0 {
		w.spawn()
	}
	w.moveTarget()
	if (w.tick-1)%w.planEvery == 0 {
		w.plan()
	}
	w.moveAgents()
	w.checkContact()
}

// RunTicks advances n ticks, stopping early if the target is caught.
func (w *World) RunTicks(n int) {
	for i := 0; i < n && !w.over; i++ {
		w.Update()
	}
}

func (w *World) addAgent(cell grid.Index, speed float64) *Agent {
	w.nextID++
	a := newAgent(w.nextID, w.Grid, cell, speed)
	w.Agents = append(w.Agents, a)
	w.Stats.Spawned++
	w.SimLog.Add(w.tick, a.Label, "spawn", "spawned", fmt.Sprintf("cell %d speed %.0f", cell, speed), float64(cell))
	w.Feed.Add(w.tick, a.Label, fmt.Sprintf("rises at %d", cell))
	return a
}

func (w *World) spawn() {
	if w.cfg.Agents.Max > 0 && len(w.Agents) >= w.cfg.Agents.Max {
		return
	}
	tiles := w.cfg.Agents.SpawnTiles
	cell := grid.Index(tiles[w.rng.Intn(len(tiles))])
	speeds := w.cfg.Agents.Speeds
	speed := speeds[w.rng.Intn(len(speeds))]
	a := w.addAgent(cell, speed)
	w.logger.Debug("spawn", "agent", a.Label, "cell", cell, "speed", speed)
}

func (w *World) moveTarget() {
	t := w.Target
	if !t.Moving() && t.Wander {
		dirs := [4]grid.Direction{grid.DirN, grid.DirE, grid.DirS, grid.DirW}
		d := dirs[w.rng.Intn(len(dirs))]
		if t.Step(d) {
			w.SimLog.AddVerbose(w.tick, "T", "target", "step", d.String(), 0)
		}
	}
	if t.advance(w.cfg.TPS) {
		w.SimLog.AddVerbose(w.tick, "T", "target", "arrived", fmt.Sprintf("cell %d", t.Cell()), float64(t.Cell()))
	}
}

// plan runs one planning pass. Agents mid-move are skipped; idle agents are
// searched in round-robin order until the per-tick budget is spent.
func (w *World) plan() {
	goal := w.Target.Cell()
	n := len(w.Agents)
	if goal == grid.None || n == 0 {
		return
	}
	budget := w.cfg.Pathfinding.MaxSearchesPerTick
	started := time.Now()
	expandedBefore := w.Engine.Expanded()

	searched := 0
	lastSearched := -1
	for i := 0; i < n; i++ {
		a := w.Agents[(w.cursor+i)%n]
		if a.HasPendingMove() {
			w.Stats.SkippedPending++
			continue
		}
		if budget > 0 && searched >= budget {
			w.Stats.Deferred++
			continue
		}
		searched++
		lastSearched = i
		w.Stats.Searches++

		from := a.Cell()
		next, ok := w.Engine.PlanStep(a, goal)
		if !ok {
			w.Stats.NoPath++
			w.SimLog.AddVerbose(w.tick, a.Label, "plan", "no_step", fmt.Sprintf("%d -> %d", from, goal), float64(from))
			continue
		}
		w.Stats.Moves++
		w.SimLog.AddVerbose(w.tick, a.Label, "plan", "step", fmt.Sprintf("%d -> %d", from, next), float64(next))
	}
	if lastSearched >= 0 {
		w.cursor = (w.cursor + lastSearched + 1) % n
	}
	w.Stats.Expanded += w.Engine.Expanded() - expandedBefore
	w.Stats.PlanTime += time.Since(started)
}

func (w *World) moveAgents() {
	for _, a := range w.Agents {
		if a.advance(w.cfg.TPS) {
			w.Stats.Arrivals++
			w.SimLog.AddVerbose(w.tick, a.Label, "move", "arrived", fmt.Sprintf("cell %d", a.Cell()), float64(a.Cell()))
		}
	}
}

// checkContact drains the target's health for every tile-aligned agent on or
// beside the target's tile.
func (w *World) checkContact() {
	t := w.Target
	if !t.Aligned() {
		return
	}
	tc := t.Cell()
	for _, a := range w.Agents {
		if !a.Aligned() || w.Grid.ManhattanCells(a.Cell(), tc) > 1 {
			continue
		}
		w.Stats.ContactTicks++
		if w.Stats.FirstContactTick == 0 {
			w.Stats.FirstContactTick = w.tick
			w.SimLog.Add(w.tick, a.Label, "contact", "first", fmt.Sprintf("cell %d", a.Cell()), float64(w.tick))
			w.Feed.Add(w.tick, a.Label, "reaches the survivor")
		}
		t.Health -= w.cfg.Agents.ContactDamage
		if t.Health <= 0 {
			t.Health = 0
			w.over = true
			w.SimLog.Add(w.tick, "--", "state", "game_over", fmt.Sprintf("caught by %s", a.Label), float64(w.tick))
			w.Feed.Add(w.tick, "T", "is overrun")
			w.logger.Info("survivor overrun", "tick", w.tick, "agents", len(w.Agents))
			return
		}
	}
}
