package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/firzad/zombieapocalypse/internal/config"
	"github.com/firzad/zombieapocalypse/internal/sim"
)

type runStats struct {
	runIndex int
	seed     int64

	stats        sim.Stats
	agents       int
	health       int
	over         bool
	overTick     int
	firstNoPath  int
	closestCells int // nearest Manhattan distance of any agent to the target at the end
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var configPath string
	var budget int
	var diagonal bool
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 3600, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&configPath, "config", "", "YAML world file layered over the built-in map")
	flag.IntVar(&budget, "budget", -1, "max searches per tick (-1 keeps the configured value, 0 is unlimited)")
	flag.BoolVar(&diagonal, "diagonal", false, "allow diagonal steps")
	flag.BoolVar(&verbose, "v", false, "log each run's start at debug level")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "headless"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("load config", "err", err)
	}
	if budget >= 0 {
		cfg.Pathfinding.MaxSearchesPerTick = budget
	}
	if diagonal {
		cfg.Pathfinding.AllowDiagonal = true
	}

	fmt.Printf("=== Headless Chase Report ===\n")
	fmt.Printf("runs=%d ticks=%d seed_base=%d seed_step=%d grid=%dx%d budget=%d diagonal=%v\n\n",
		runs, ticks, seedBase, seedStep, cfg.Cols(), cfg.Rows(),
		cfg.Pathfinding.MaxSearchesPerTick, cfg.Pathfinding.AllowDiagonal)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		logger.Debug("run", "index", i+1, "seed", seed)
		rs, err := runChase(cfg, i+1, seed, ticks, logger)
		if err != nil {
			logger.Fatal("build world", "seed", seed, "err", err)
		}
		all = append(all, rs)
		printRun(rs)
	}

	printAggregate(all)
}

// runChase plays one seeded world with a wandering target for up to ticks ticks.
func runChase(cfg config.Config, runIndex int, seed int64, ticks int, logger *log.Logger) (runStats, error) {
	w, err := sim.New(cfg,
		sim.WithSeed(seed),
		sim.WithWander(true),
		sim.WithLogger(logger),
	)
	if err != nil {
		return runStats{}, err
	}
	w.RunTicks(ticks)

	entries := w.SimLog.Entries()
	rs := runStats{
		runIndex:     runIndex,
		seed:         seed,
		stats:        w.Stats,
		agents:       len(w.Agents),
		health:       w.Target.Health,
		over:         w.Over(),
		overTick:     firstTick(entries, "state", "game_over", ""),
		firstNoPath:  firstTick(entries, "plan", "no_step", ""),
		closestCells: -1,
	}
	tc := w.Target.Cell()
	for _, a := range w.Agents {
		d := w.Grid.ManhattanCells(a.Cell(), tc)
		if rs.closestCells < 0 || d < rs.closestCells {
			rs.closestCells = d
		}
	}
	return rs, nil
}

func firstTick(entries []sim.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

// outcome classifies how a run ended.
func outcome(rs runStats) string {
	switch {
	case rs.over:
		return "overrun"
	case rs.stats.FirstContactTick > 0:
		return "contact"
	case rs.stats.Spawned == 0:
		return "empty"
	default:
		return "evaded"
	}
}

func printRun(rs runStats) {
	s := rs.stats
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("outcome=%s ticks=%d health=%d agents=%d closest=%d\n",
		outcome(rs), s.Ticks, rs.health, rs.agents, rs.closestCells)
	fmt.Printf("phase_markers: first_contact=%d overrun=%d\n", markerTick(s.FirstContactTick), rs.overTick)
	fmt.Printf("planning: searches=%d moves=%d no_path=%d skipped_pending=%d deferred=%d\n",
		s.Searches, s.Moves, s.NoPath, s.SkippedPending, s.Deferred)
	fmt.Printf("cost: expanded=%d avg_expanded=%.1f plan_time=%s avg_search=%s\n",
		s.Expanded, avg(s.Expanded, s.Searches), s.PlanTime, perSearch(s.PlanTime, s.Searches))
	fmt.Println()
}

func printAggregate(all []runStats) {
	totalSearches := 0
	totalMoves := 0
	totalNoPath := 0
	totalDeferred := 0
	totalExpanded := 0
	var totalPlan time.Duration

	contactTicks := make([]int, 0, len(all))
	overTicks := make([]int, 0, len(all))
	outcomes := map[string]int{}

	for _, rs := range all {
		totalSearches += rs.stats.Searches
		totalMoves += rs.stats.Moves
		totalNoPath += rs.stats.NoPath
		totalDeferred += rs.stats.Deferred
		totalExpanded += rs.stats.Expanded
		totalPlan += rs.stats.PlanTime
		if rs.stats.FirstContactTick > 0 {
			contactTicks = append(contactTicks, rs.stats.FirstContactTick)
		}
		if rs.overTick >= 0 {
			overTicks = append(overTicks, rs.overTick)
		}
		outcomes[outcome(rs)]++
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d outcomes: overrun=%d contact=%d evaded=%d empty=%d\n",
		len(all), outcomes["overrun"], outcomes["contact"], outcomes["evaded"], outcomes["empty"])
	fmt.Printf("avg_per_run: searches=%.1f moves=%.1f no_path=%.1f deferred=%.1f\n",
		avg(totalSearches, len(all)), avg(totalMoves, len(all)), avg(totalNoPath, len(all)), avg(totalDeferred, len(all)))
	fmt.Printf("search_cost: avg_expanded=%.1f avg_search=%s\n",
		avg(totalExpanded, totalSearches), perSearch(totalPlan, totalSearches))
	fmt.Printf("phase_marker_avg_ticks: first_contact=%s overrun=%s\n",
		avgTickString(contactTicks), avgTickString(overTicks))
}

func markerTick(tick int) int {
	if tick <= 0 {
		return -1
	}
	return tick
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func perSearch(total time.Duration, n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return total / time.Duration(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}
