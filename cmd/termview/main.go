package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/firzad/zombieapocalypse/internal/config"
	"github.com/firzad/zombieapocalypse/internal/grid"
	"github.com/firzad/zombieapocalypse/internal/sim"
)

const (
	glyphFloor   = '.'
	glyphWall    = '#'
	glyphAgent   = 'z'
	glyphMoving  = 'Z'
	glyphTarget  = '@'
	glyphOverrun = 'X'
	sampleRate   = beep.SampleRate(44100)
)

var (
	styleFloor  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleWall   = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleAgent  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleTarget = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

type termGame struct {
	screen tcell.Screen
	world  *sim.World
	cfg    config.Config
	logger *log.Logger

	paused    bool
	audioInit bool
	spawned   int
	contacted bool
}

func main() {
	configPath := flag.String("config", "", "YAML world file layered over the built-in map")
	mute := flag.Bool("mute", false, "disable sound cues")
	flag.Parse()

	// World logging is discarded while tcell owns the terminal.
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "termview"})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("load config", "err", err)
	}
	w, err := sim.New(cfg, sim.WithLogger(log.New(io.Discard)))
	if err != nil {
		logger.Fatal("build world", "err", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		logger.Fatal("open terminal", "err", err)
	}
	if err := screen.Init(); err != nil {
		logger.Fatal("init terminal", "err", err)
	}

	g := &termGame{screen: screen, world: w, cfg: cfg, logger: logger}
	if !*mute {
		if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err == nil {
			g.audioInit = true
		}
	}
	g.run()
	g.cleanup()
	logger.Info("finished", "tick", g.world.Tick(), "health", g.world.Target.Health, "agents", len(g.world.Agents))
}

func (g *termGame) run() {
	ticker := time.NewTicker(time.Second / time.Duration(g.cfg.TPS))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- g.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !g.handleInput(ev) {
				return
			}
		case <-ticker.C:
			if !g.paused {
				g.world.Update()
				g.cues()
			}
			g.draw()
		}
	}
}

func (g *termGame) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			g.world.Target.Step(grid.DirN)
		case tcell.KeyDown:
			g.world.Target.Step(grid.DirS)
		case tcell.KeyLeft:
			g.world.Target.Step(grid.DirW)
		case tcell.KeyRight:
			g.world.Target.Step(grid.DirE)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'p':
				g.paused = !g.paused
			case 'r':
				w, err := sim.New(g.cfg, sim.WithLogger(log.New(io.Discard)))
				if err == nil {
					g.world = w
					g.spawned = 0
					g.contacted = false
				}
			}
		}
	case *tcell.EventResize:
		g.screen.Sync()
	}
	return true
}

// cues plays a short tone for each new spawn and a low one at first contact.
func (g *termGame) cues() {
	s := g.world.Stats
	if s.Spawned > g.spawned {
		g.spawned = s.Spawned
		g.tone(880, 50*time.Millisecond)
	}
	if s.FirstContactTick > 0 && !g.contacted {
		g.contacted = true
		g.tone(220, 200*time.Millisecond)
	}
}

func (g *termGame) tone(freq int, d time.Duration) {
	if !g.audioInit {
		return
	}
	sine, err := generators.SineTone(sampleRate, float64(freq))
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(d), sine))
}

func (g *termGame) draw() {
	g.screen.Clear()
	rows := glyphs(g.world)
	for y, row := range rows {
		for x, r := range row {
			g.screen.SetContent(x, y, r, nil, glyphStyle(r))
		}
	}

	px := g.world.Grid.Cols() + 2
	for i, line := range statusLines(g.world, g.paused) {
		drawText(g.screen, px, i, line)
	}
	g.screen.Show()
}

func (g *termGame) cleanup() {
	if g.audioInit {
		speaker.Close()
	}
	g.screen.Fini()
}

// glyphs renders the world one rune per cell, row by row.
func glyphs(w *sim.World) [][]rune {
	gr := w.Grid
	rows := make([][]rune, gr.Rows())
	for r := range rows {
		rows[r] = make([]rune, gr.Cols())
		for c := range rows[r] {
			if gr.IsWalkable(gr.IndexAt(c, r)) {
				rows[r][c] = glyphFloor
			} else {
				rows[r][c] = glyphWall
			}
		}
	}
	put := func(i grid.Index, ch rune) {
		if i == grid.None {
			return
		}
		c, r := gr.ColRow(i)
		rows[r][c] = ch
	}
	for _, a := range w.Agents {
		if a.HasPendingMove() {
			put(a.Cell(), glyphMoving)
		} else {
			put(a.Cell(), glyphAgent)
		}
	}
	if w.Over() {
		put(w.Target.Cell(), glyphOverrun)
	} else {
		put(w.Target.Cell(), glyphTarget)
	}
	return rows
}

func glyphStyle(r rune) tcell.Style {
	switch r {
	case glyphWall:
		return styleWall
	case glyphAgent, glyphMoving:
		return styleAgent
	case glyphTarget, glyphOverrun:
		return styleTarget
	default:
		return styleFloor
	}
}

func statusLines(w *sim.World, paused bool) []string {
	s := w.Stats
	state := "running"
	switch {
	case w.Over():
		state = "overrun"
	case paused:
		state = "paused"
	}
	return []string{
		fmt.Sprintf("tick %d (%s)", w.Tick(), state),
		fmt.Sprintf("health %d", w.Target.Health),
		fmt.Sprintf("zombies %d", len(w.Agents)),
		fmt.Sprintf("searches %d", s.Searches),
		fmt.Sprintf("no-step %d", s.NoPath),
		"",
		"arrows move  p pause",
		"r restart  q quit",
	}
}

func drawText(screen tcell.Screen, x, y int, text string) {
	for i, r := range text {
		screen.SetContent(x+i, y, r, nil, styleText)
	}
}
