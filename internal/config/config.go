// Package config loads world settings from YAML. An embedded default.yaml
// supplies every value; a file on disk only needs the keys it changes.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Screen      Size        `yaml:"screen"`
	Tile        Size        `yaml:"tile"`
	TPS         int         `yaml:"tps"`
	Seed        int64       `yaml:"seed"`
	Blocked     []int       `yaml:"blocked"`
	Target      Target      `yaml:"target"`
	Agents      Agents      `yaml:"agents"`
	Pathfinding Pathfinding `yaml:"pathfinding"`
}

type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Target is the survivor every agent chases.
type Target struct {
	StartX float64 `yaml:"start_x"`
	StartY float64 `yaml:"start_y"`
	Speed  float64 `yaml:"speed"` // pixels per second
	Health int     `yaml:"health"`
}

type Agents struct {
	SpawnTiles    []int     `yaml:"spawn_tiles"`
	SpawnInterval float64   `yaml:"spawn_interval"` // seconds between spawns
	Speeds        []float64 `yaml:"speeds"`         // pixels per second, one picked per agent
	Max           int       `yaml:"max"`            // 0 = no cap
	ContactDamage int       `yaml:"contact_damage"` // per tick while touching the target
}

type Pathfinding struct {
	UpdateInterval     float64 `yaml:"update_interval"` // seconds between planning passes
	AllowDiagonal      bool    `yaml:"allow_diagonal"`
	MaxSearchesPerTick int     `yaml:"max_searches_per_tick"` // 0 = every idle agent
}

// Default returns the embedded configuration.
func Default() Config {
	var c Config
	if err := yaml.Unmarshal(defaultYAML, &c); err != nil {
		panic("config: embedded default.yaml: " + err.Error())
	}
	return c
}

// Load reads path over the defaults and validates the result. An empty path
// yields the defaults.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, c.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Cols is the number of tile columns across the screen.
func (c Config) Cols() int {
	if c.Tile.Width <= 0 {
		return 0
	}
	return c.Screen.Width / c.Tile.Width
}

// Rows is the number of tile rows down the screen.
func (c Config) Rows() int {
	if c.Tile.Height <= 0 {
		return 0
	}
	return c.Screen.Height / c.Tile.Height
}

// TicksPer converts a duration in seconds to a whole number of ticks, never
// less than one.
func (c Config) TicksPer(seconds float64) int {
	n := int(math.Round(seconds * float64(c.TPS)))
	if n < 1 {
		return 1
	}
	return n
}

func (c Config) Validate() error {
	if c.Tile.Width <= 0 || c.Tile.Height <= 0 {
		return fmt.Errorf("%w: tile size %dx%d", ErrInvalid, c.Tile.Width, c.Tile.Height)
	}
	if c.Cols() <= 0 || c.Rows() <= 0 {
		return fmt.Errorf("%w: screen %dx%d holds no tiles", ErrInvalid, c.Screen.Width, c.Screen.Height)
	}
	if c.TPS <= 0 {
		return fmt.Errorf("%w: tps must be positive, got %d", ErrInvalid, c.TPS)
	}

	total := c.Cols() * c.Rows()
	solid := make(map[int]bool, len(c.Blocked))
	for _, b := range c.Blocked {
		if b < 1 || b > total {
			return fmt.Errorf("%w: blocked tile %d not in [1,%d]", ErrInvalid, b, total)
		}
		solid[b] = true
	}

	if len(c.Agents.SpawnTiles) == 0 {
		return fmt.Errorf("%w: no spawn tiles", ErrInvalid)
	}
	for _, s := range c.Agents.SpawnTiles {
		if s < 1 || s > total {
			return fmt.Errorf("%w: spawn tile %d not in [1,%d]", ErrInvalid, s, total)
		}
		if solid[s] {
			return fmt.Errorf("%w: spawn tile %d is blocked", ErrInvalid, s)
		}
	}
	if len(c.Agents.Speeds) == 0 {
		return fmt.Errorf("%w: no agent speeds", ErrInvalid)
	}
	for _, v := range c.Agents.Speeds {
		if v <= 0 {
			return fmt.Errorf("%w: agent speed %.1f", ErrInvalid, v)
		}
	}
	if c.Agents.SpawnInterval <= 0 {
		return fmt.Errorf("%w: spawn interval %.2f", ErrInvalid, c.Agents.SpawnInterval)
	}
	if c.Agents.Max < 0 || c.Agents.ContactDamage < 0 {
		return fmt.Errorf("%w: negative agent limits", ErrInvalid)
	}
	if c.Target.Speed <= 0 || c.Target.Health <= 0 {
		return fmt.Errorf("%w: target speed and health must be positive", ErrInvalid)
	}
	if c.Target.StartX < 0 || c.Target.StartY < 0 ||
		c.Target.StartX >= float64(c.Cols()*c.Tile.Width) || c.Target.StartY >= float64(c.Rows()*c.Tile.Height) {
		return fmt.Errorf("%w: target start (%.0f,%.0f) off the grid", ErrInvalid, c.Target.StartX, c.Target.StartY)
	}
	if c.Pathfinding.UpdateInterval <= 0 {
		return fmt.Errorf("%w: pathfinding interval %.3f", ErrInvalid, c.Pathfinding.UpdateInterval)
	}
	if c.Pathfinding.MaxSearchesPerTick < 0 {
		return fmt.Errorf("%w: negative search budget", ErrInvalid)
	}
	return nil
}
