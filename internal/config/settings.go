package config

import (
	"MengerSponge/internal/logger"
	"MengerSponge/internal/menger"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Settings is the on-disk configuration of the sponge scene
type Settings struct {
	Sponge SpongeSettings     `json:"sponge" yaml:"sponge"`
	Floor  menger.FloorConfig `json:"floor" yaml:"floor"`
	Log    LogSettings        `json:"log" yaml:"log"`
}

// SpongeSettings maps onto the menger sponge options
type SpongeSettings struct {
	InitialLevel int        `json:"initial_level" yaml:"initial_level"`
	MaxLevel     int        `json:"max_level" yaml:"max_level"`
	RootMin      [3]float32 `json:"root_min" yaml:"root_min"`
	RootEdge     float32    `json:"root_edge" yaml:"root_edge"`
	Workers      int        `json:"workers" yaml:"workers"`
}

// LogSettings configures the zap logger
type LogSettings struct {
	Level       string `json:"level" yaml:"level"`
	Development bool   `json:"development" yaml:"development"`
}

// Default returns the settings of the reference scene: a level 1 unit sponge
// centered on the origin above a 1000x1000 floor
func Default() Settings {
	return Settings{
		Sponge: SpongeSettings{
			InitialLevel: 1,
			MaxLevel:     menger.DefaultMaxLevel,
			RootMin:      [3]float32{menger.DefaultRootMin, menger.DefaultRootMin, menger.DefaultRootMin},
			RootEdge:     menger.DefaultRootEdge,
			Workers:      1,
		},
		Floor: menger.DefaultFloorConfig(),
		Log: LogSettings{
			Level: "info",
		},
	}
}

// Load reads settings from a .json, .yaml or .yml file on top of the defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (Settings, error) {
	settings := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Log.Info("No settings file found, using defaults", zap.String("path", path))
			return settings, nil
		}
		return settings, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &settings)
	case ".json":
		err = json.Unmarshal(data, &settings)
	default:
		return settings, fmt.Errorf("unsupported settings format %q", filepath.Ext(path))
	}
	if err != nil {
		return settings, fmt.Errorf("error parsing %s: %w", path, err)
	}

	if err := settings.Validate(); err != nil {
		return settings, err
	}
	logger.Log.Info("Settings loaded", zap.String("path", path))
	return settings, nil
}

// Validate reports every invalid field at once
func (s Settings) Validate() error {
	var err error
	sp := s.Sponge
	if sp.MaxLevel < 1 || sp.MaxLevel > menger.HardMaxLevel {
		err = multierr.Append(err, fmt.Errorf("sponge.max_level %d outside [1, %d]", sp.MaxLevel, menger.HardMaxLevel))
	}
	if sp.InitialLevel < 0 || sp.InitialLevel > sp.MaxLevel {
		err = multierr.Append(err, fmt.Errorf("sponge.initial_level %d outside [0, %d]", sp.InitialLevel, sp.MaxLevel))
	}
	if !(sp.RootEdge > 0) {
		err = multierr.Append(err, fmt.Errorf("sponge.root_edge must be positive, got %v", sp.RootEdge))
	}
	if sp.Workers < 1 {
		err = multierr.Append(err, fmt.Errorf("sponge.workers must be at least 1, got %d", sp.Workers))
	}

	f := s.Floor
	if !(f.Extent > 0) {
		err = multierr.Append(err, fmt.Errorf("floor.extent must be positive, got %v", f.Extent))
	}
	if !(f.TileSize > 0) {
		err = multierr.Append(err, fmt.Errorf("floor.tile_size must be positive, got %v", f.TileSize))
	}
	if !(f.Stride > 0) {
		err = multierr.Append(err, fmt.Errorf("floor.stride must be positive, got %v", f.Stride))
	}
	if f.Extent > 0 && f.TileSize > 0 && f.Stride > 0 {
		if _, e := f.TilesPerAxis(); e != nil {
			err = multierr.Append(err, fmt.Errorf("floor: %w", e))
		}
	}

	var lvl zapcore.Level
	if e := lvl.UnmarshalText([]byte(s.Log.Level)); e != nil {
		err = multierr.Append(err, fmt.Errorf("log.level: %w", e))
	}
	return err
}

// SpongeOptions maps the sponge settings onto menger options
func (s Settings) SpongeOptions() []menger.Option {
	return []menger.Option{
		menger.WithMaxLevel(s.Sponge.MaxLevel),
		menger.WithRoot(mgl32.Vec3(s.Sponge.RootMin), s.Sponge.RootEdge),
		menger.WithWorkers(s.Sponge.Workers),
	}
}
