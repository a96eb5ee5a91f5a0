package view

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/firzad/zombieapocalypse/internal/grid"
	"github.com/firzad/zombieapocalypse/internal/sim"
)

var (
	colFloor     = colornames.Dimgray
	colWall      = colornames.Saddlebrown
	colWallEdge  = colornames.Sienna
	colGridLine  = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	colAgent     = colornames.Olivedrab
	colAgentFast = colornames.Yellowgreen
	colPending   = colornames.Khaki
	colTarget    = colornames.Crimson
	colPanel     = color.RGBA{R: 18, G: 20, B: 28, A: 255}
	colHealthBg  = colornames.Darkred
	colHealth    = colornames.Limegreen
	colOverlay   = color.RGBA{R: 0, G: 0, B: 0, A: 150}
)

const lineHeight = 14

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colPanel)
	g.drawMap(screen)
	g.drawAgents(screen)
	g.drawTarget(screen)
	g.drawPanel(screen)
	if g.world.Over() {
		mw, mh := float32(g.cfg.Screen.Width), float32(g.cfg.Screen.Height)
		vector.FillRect(screen, 0, 0, mw, mh, colOverlay, false)
		ebitenutil.DebugPrintAt(screen, "OVERRUN - press R to restart", int(mw)/2-84, int(mh)/2)
	}
}

func (g *Game) drawMap(screen *ebiten.Image) {
	gr := g.world.Grid
	tw, th := float32(gr.TileWidth()), float32(gr.TileHeight())
	vector.FillRect(screen, 0, 0, tw*float32(gr.Cols()), th*float32(gr.Rows()), colFloor, false)

	for i := 1; i <= gr.TotalCells(); i++ {
		c, _ := gr.CellAt(grid.Index(i))
		if c.Walkable {
			continue
		}
		x, y := float32(c.X), float32(c.Y)
		vector.FillRect(screen, x, y, tw, th, colWall, false)
		vector.StrokeRect(screen, x+0.5, y+0.5, tw-1, th-1, 1.0, colWallEdge, false)
	}

	w, h := tw*float32(gr.Cols()), th*float32(gr.Rows())
	for c := 0; c <= gr.Cols(); c++ {
		x := float32(c) * tw
		vector.StrokeLine(screen, x, 0, x, h, 0.5, colGridLine, false)
	}
	for r := 0; r <= gr.Rows(); r++ {
		y := float32(r) * th
		vector.StrokeLine(screen, 0, y, w, y, 0.5, colGridLine, false)
	}
}

func (g *Game) drawAgents(screen *ebiten.Image) {
	gr := g.world.Grid
	tw, th := float32(gr.TileWidth()), float32(gr.TileHeight())
	fast := fastestSpeed(g.cfg.Agents.Speeds)
	for _, a := range g.world.Agents {
		x, y := float32(a.Pos.X), float32(a.Pos.Y)
		if p, ok := a.PendingMove(); ok {
			vector.StrokeLine(screen, x+tw/2, y+th/2, float32(p.X)+tw/2, float32(p.Y)+th/2, 2.0, colPending, false)
		}
		col := colAgent
		if a.Speed >= fast && len(g.cfg.Agents.Speeds) > 1 {
			col = colAgentFast
		}
		vector.FillRect(screen, x+4, y+4, tw-8, th-8, col, false)
		ebitenutil.DebugPrintAt(screen, a.Label, int(x)+6, int(y)+6)
	}
}

func (g *Game) drawTarget(screen *ebiten.Image) {
	gr := g.world.Grid
	t := g.world.Target
	tw, th := float32(gr.TileWidth()), float32(gr.TileHeight())
	x, y := float32(t.Pos.X), float32(t.Pos.Y)
	vector.FillCircle(screen, x+tw/2, y+th/2, tw/2-4, colTarget, true)

	frac := float32(t.Health) / float32(g.cfg.Target.Health)
	vector.FillRect(screen, x, y-6, tw, 4, colHealthBg, false)
	vector.FillRect(screen, x, y-6, tw*frac, 4, colHealth, false)
}

func (g *Game) drawPanel(screen *ebiten.Image) {
	px := g.cfg.Screen.Width + 8
	y := 8
	for _, line := range hudLines(g.world, g.simSpeed) {
		ebitenutil.DebugPrintAt(screen, line, px, y)
		y += lineHeight
	}
	if g.statusTTL > 0 {
		ebitenutil.DebugPrintAt(screen, g.status, px, y)
	}
	y += lineHeight * 2

	ebitenutil.DebugPrintAt(screen, "-- events --", px, y)
	y += lineHeight
	maxLines := (g.cfg.Screen.Height - y - lineHeight*5) / lineHeight
	for _, line := range feedLines(g.world.Feed.Recent(), maxLines) {
		ebitenutil.DebugPrintAt(screen, line, px, y)
		y += lineHeight
	}

	keys := []string{"arrows move  P pause", ",/. speed  R restart", "C copy report"}
	y = g.cfg.Screen.Height - lineHeight*len(keys) - 8
	for _, k := range keys {
		ebitenutil.DebugPrintAt(screen, k, px, y)
		y += lineHeight
	}
}

// hudLines is the status block at the top of the panel.
func hudLines(w *sim.World, speed float64) []string {
	s := w.Stats
	speedText := fmt.Sprintf("%.2gx", speed)
	if speed <= 0 {
		speedText = "paused"
	}
	return []string{
		fmt.Sprintf("tick %d  speed %s", w.Tick(), speedText),
		fmt.Sprintf("health %d", w.Target.Health),
		fmt.Sprintf("zombies %d", len(w.Agents)),
		fmt.Sprintf("searches %d  no-step %d", s.Searches, s.NoPath),
		fmt.Sprintf("deferred %d  expanded %d", s.Deferred, s.Expanded),
	}
}

// feedLines formats the newest limit entries of the feed, oldest first.
func feedLines(entries []sim.FeedEntry, limit int) []string {
	if limit <= 0 {
		return nil
	}
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, fmt.Sprintf("%5d %-4s %s", e.Tick, e.Label, e.Message))
	}
	return out
}

func fastestSpeed(speeds []float64) float64 {
	best := 0.0
	for _, s := range speeds {
		if s > best {
			best = s
		}
	}
	return best
}
