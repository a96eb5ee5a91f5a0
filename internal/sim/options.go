package sim

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/firzad/zombieapocalypse/internal/grid"
)

// optionKind controls the pass in which an option is applied.
type optionKind int

const (
	optInfra  optionKind = iota // seed, logger, verbosity, behaviour flags, applied first
	optEntity                   // place target and agents, applied after the grid is built
)

// Option is a builder function applied to a World during construction.
type Option struct {
	kind optionKind
	fn   func(*World) error
}

// WithSeed sets the RNG seed, overriding the configured one.
func WithSeed(seed int64) Option {
	return Option{optInfra, func(w *World) error {
		w.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- simulation RNG
		return nil
	}}
}

// WithLogger routes operational logging to l.
func WithLogger(l *log.Logger) Option {
	return Option{optInfra, func(w *World) error {
		w.logger = l
		return nil
	}}
}

// WithVerbose records every planned step and arrival in the SimLog.
func WithVerbose(v bool) Option {
	return Option{optInfra, func(w *World) error {
		w.SimLog = NewSimLog(v)
		return nil
	}}
}

// WithoutSpawning disables timed spawns; agents then come only from WithAgent.
func WithoutSpawning() Option {
	return Option{optInfra, func(w *World) error {
		w.spawning = false
		return nil
	}}
}

// WithWander makes the target roam to a random open neighbour whenever idle.
func WithWander(on bool) Option {
	return Option{optInfra, func(w *World) error {
		w.wander = on
		return nil
	}}
}

// WithTargetAt places the target on cell instead of the configured start.
func WithTargetAt(cell grid.Index) Option {
	return Option{optEntity, func(w *World) error {
		if !w.Grid.IsWalkable(cell) {
			return fmt.Errorf("sim: target cell %d is not walkable", cell)
		}
		x, y := w.Grid.Position(cell)
		w.Target.Pos = Point{X: float64(x), Y: float64(y)}
		return nil
	}}
}

// WithAgent adds an agent on cell moving at speed pixels per second.
func WithAgent(cell grid.Index, speed float64) Option {
	return Option{optEntity, func(w *World) error {
		if !w.Grid.IsWalkable(cell) {
			return fmt.Errorf("sim: agent cell %d is not walkable", cell)
		}
		if speed <= 0 {
			return fmt.Errorf("sim: agent speed %.1f", speed)
		}
		w.addAgent(cell, speed)
		return nil
	}}
}
