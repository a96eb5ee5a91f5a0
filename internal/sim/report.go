package sim

import (
	"fmt"
	"strings"
	"time"
)

// DebugReport renders run statistics, every agent's state and the SimLog for
// the last lastTicks ticks as plain text.
func (w *World) DebugReport(lastTicks int) string {
	if lastTicks <= 0 {
		lastTicks = 120
	}
	toTick := w.tick
	fromTick := toTick - lastTicks + 1
	if fromTick < 0 {
		fromTick = 0
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- zombieapocalypse debug report ---\n")
	fmt.Fprintf(&b, "seed=%d tick_range=[%d..%d] grid=%dx%d diagonal=%v budget=%d\n",
		w.cfg.Seed, fromTick, toTick, w.Grid.Cols(), w.Grid.Rows(),
		w.Engine.Diagonal(), w.cfg.Pathfinding.MaxSearchesPerTick)

	t := w.Target
	state := "alive"
	if w.over {
		state = "overrun"
	}
	fmt.Fprintf(&b, "target: cell=%d pos=(%.0f,%.0f) health=%d state=%s\n\n",
		t.Cell(), t.Pos.X, t.Pos.Y, t.Health, state)

	s := w.Stats
	b.WriteString("== stats ==\n")
	fmt.Fprintf(&b, "ticks=%d spawned=%d searches=%d moves=%d no_path=%d\n",
		s.Ticks, s.Spawned, s.Searches, s.Moves, s.NoPath)
	fmt.Fprintf(&b, "skipped_pending=%d deferred=%d expanded=%d arrivals=%d\n",
		s.SkippedPending, s.Deferred, s.Expanded, s.Arrivals)
	fmt.Fprintf(&b, "contact_ticks=%d first_contact=%d plan_time=%s\n",
		s.ContactTicks, s.FirstContactTick, s.PlanTime)
	if s.Searches > 0 {
		fmt.Fprintf(&b, "avg_expanded=%.1f avg_plan=%s\n",
			float64(s.Expanded)/float64(s.Searches), s.PlanTime/time.Duration(s.Searches))
	}
	b.WriteByte('\n')

	b.WriteString("== agents ==\n")
	if len(w.Agents) == 0 {
		b.WriteString("(none)\n")
	}
	tc := t.Cell()
	for _, a := range w.Agents {
		next := "-"
		if a.HasPendingMove() {
			next = fmt.Sprintf("%d", a.NextCell())
		}
		fmt.Fprintf(&b, "%-4s cell=%-4d next=%-4s speed=%-4.0f dist=%d\n",
			a.Label, a.Cell(), next, a.Speed, w.Grid.ManhattanCells(a.Cell(), tc))
	}
	b.WriteByte('\n')

	b.WriteString("== events ==\n")
	events := w.SimLog.FormatRange(fromTick, toTick)
	if events == "" {
		b.WriteString("(no events in range)\n")
	} else {
		b.WriteString(events)
	}
	return b.String()
}
