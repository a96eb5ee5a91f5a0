// Package view is the ebiten front end: it owns a sim.World, steps it at the
// chosen speed and draws the map, the agents and a side panel of events.
package view

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/firzad/zombieapocalypse/internal/config"
	"github.com/firzad/zombieapocalypse/internal/grid"
	"github.com/firzad/zombieapocalypse/internal/sim"
)

const (
	panelWidth   = 280
	reportWindow = 600 // ticks of history copied with C
)

// simSpeeds are the selectable sim-ticks-per-frame multipliers.
var simSpeeds = []float64{0, 0.25, 0.5, 1, 2, 4}

// arrowKeys maps held arrow keys to target steps.
var arrowKeys = []struct {
	key ebiten.Key
	dir grid.Direction
}{
	{ebiten.KeyArrowUp, grid.DirN},
	{ebiten.KeyArrowDown, grid.DirS},
	{ebiten.KeyArrowLeft, grid.DirW},
	{ebiten.KeyArrowRight, grid.DirE},
}

// Game implements ebiten.Game.
type Game struct {
	world  *sim.World
	cfg    config.Config
	logger *log.Logger

	simSpeed  float64
	tickAccum float64
	prevKeys  map[ebiten.Key]bool
	status    string // transient HUD message
	statusTTL int

	reloads chan config.Config
}

// New builds a game around a fresh world for cfg.
func New(cfg config.Config, logger *log.Logger) (*Game, error) {
	g := &Game{
		cfg:      cfg,
		logger:   logger,
		simSpeed: 1,
		prevKeys: make(map[ebiten.Key]bool),
		reloads:  make(chan config.Config, 1),
	}
	if err := g.restart(); err != nil {
		return nil, err
	}
	return g, nil
}

// Reload queues cfg to replace the running world on the next frame. A reload
// still waiting to be picked up is replaced.
func (g *Game) Reload(cfg config.Config) {
	select {
	case <-g.reloads:
	default:
	}
	g.reloads <- cfg
}

// World exposes the running world.
func (g *Game) World() *sim.World { return g.world }

func (g *Game) restart() error {
	w, err := sim.New(g.cfg, sim.WithLogger(g.logger))
	if err != nil {
		return err
	}
	g.world = w
	g.tickAccum = 0
	return nil
}

func (g *Game) Update() error {
	select {
	case cfg := <-g.reloads:
		prev := g.cfg
		g.cfg = cfg
		if err := g.restart(); err != nil {
			g.cfg = prev
			g.logger.Error("reload rejected", "err", err)
			g.flash("reload failed: " + err.Error())
		} else {
			g.logger.Info("world reloaded", "cols", cfg.Cols(), "rows", cfg.Rows())
			g.flash("config reloaded")
		}
	default:
	}

	g.handleInput()
	if g.statusTTL > 0 {
		g.statusTTL--
	}

	if g.simSpeed <= 0 || g.world.Over() {
		return nil
	}
	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		g.world.Update()
	}
	return nil
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.cfg.Screen.Width + panelWidth, g.cfg.Screen.Height
}

func (g *Game) flash(msg string) {
	g.status = msg
	g.statusTTL = 180
}

// pressed reports a key going down this frame and records it for the next.
func (g *Game) pressed(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !g.prevKeys[k]
}

// handleInput processes keys: arrows walk the target while held, the rest
// are edge-triggered.
func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}

	if g.simSpeed > 0 && !g.world.Over() {
		for _, ak := range arrowKeys {
			if ebiten.IsKeyPressed(ak.key) && g.world.Target.Step(ak.dir) {
				break
			}
		}
	}

	if g.pressed(currentKeys, ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if g.pressed(currentKeys, ebiten.KeyComma) {
		g.simSpeed = slower(g.simSpeed)
	}
	if g.pressed(currentKeys, ebiten.KeyPeriod) {
		g.simSpeed = faster(g.simSpeed)
	}
	if g.pressed(currentKeys, ebiten.KeyR) {
		if err := g.restart(); err != nil {
			g.logger.Error("restart", "err", err)
		}
		g.flash("restarted")
	}
	if g.pressed(currentKeys, ebiten.KeyC) {
		if err := clipboard.WriteAll(g.world.DebugReport(reportWindow)); err != nil {
			g.logger.Warn("clipboard", "err", err)
			g.flash("clipboard unavailable")
		} else {
			g.flash(fmt.Sprintf("report copied (last %d ticks)", reportWindow))
		}
	}

	g.prevKeys = currentKeys
}

// slower returns the next lower speed step, stopping at pause.
func slower(cur float64) float64 {
	for i := len(simSpeeds) - 1; i > 0; i-- {
		if simSpeeds[i] <= cur {
			return simSpeeds[i-1]
		}
	}
	return simSpeeds[0]
}

// faster returns the next higher speed step, stopping at the top.
func faster(cur float64) float64 {
	for _, s := range simSpeeds {
		if s > cur {
			return s
		}
	}
	return simSpeeds[len(simSpeeds)-1]
}
