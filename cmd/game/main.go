package main

import (
	"flag"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/firzad/zombieapocalypse/internal/config"
	"github.com/firzad/zombieapocalypse/internal/view"
)

func main() {
	configPath := flag.String("config", "", "YAML world file layered over the built-in map; reloaded on change")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "zombies"})
	if *debug {
		logger.SetLevel(log.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("load config", "err", err)
	}
	g, err := view.New(cfg, logger)
	if err != nil {
		logger.Fatal("build world", "err", err)
	}

	if *configPath != "" {
		w, err := config.NewWatcher(*configPath)
		if err != nil {
			logger.Fatal("watch config", "path", *configPath, "err", err)
		}
		defer w.Close()
		go func() {
			for {
				select {
				case path, ok := <-w.Events:
					if !ok {
						return
					}
					next, err := config.Load(path)
					if err != nil {
						logger.Error("reload config", "path", path, "err", err)
						continue
					}
					g.Reload(next)
				case err, ok := <-w.Errors:
					if !ok {
						return
					}
					logger.Warn("config watcher", "err", err)
				}
			}
		}()
	}

	ebiten.SetWindowTitle("Zombie Apocalypse")
	ebiten.SetWindowSize(cfg.Screen.Width+280, cfg.Screen.Height)
	ebiten.SetTPS(cfg.TPS)
	logger.Info("starting", "cols", cfg.Cols(), "rows", cfg.Rows(), "tps", cfg.TPS)
	if err := ebiten.RunGame(g); err != nil {
		logger.Fatal("run", "err", err)
	}
}
