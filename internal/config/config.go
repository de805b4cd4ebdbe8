// Package config holds run configuration for the relay simulator: the
// obstructing body, route margin, link range and output destinations.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/relay-simulator/core"
)

// DefaultDataFile is read when no scenario path is given.
const DefaultDataFile = "data_file.txt"

// PlanetConfig describes the obstructing sphere.
type PlanetConfig struct {
	// RadiusKm is the body radius. Default: core.EarthRadiusKm.
	RadiusKm float64 `yaml:"radius_km"`

	// Center is the body centre in ECEF km. Default: origin.
	Center [3]float64 `yaml:"center"`

	// GuardRadiusKm is the arrival sphere around a visibility target.
	// Default: core.DefaultGuardRadiusKm.
	GuardRadiusKm float64 `yaml:"guard_radius_km"`
}

// OutputConfig lists optional artefacts written after a run.
type OutputConfig struct {
	DumpGraph   bool   `yaml:"dump_graph"`
	GeoJSONPath string `yaml:"geojson_path"`
	MetricsFile string `yaml:"metrics_file"`
}

// Config is the full run configuration.
type Config struct {
	DataFile      string       `yaml:"data_file"`
	Planet        PlanetConfig `yaml:"planet"`
	RouteMarginKm float64      `yaml:"route_margin_km"`

	// MaxRangeKm caps link length. 0 = unlimited.
	MaxRangeKm float64 `yaml:"max_range_km"`

	Output OutputConfig `yaml:"output"`
}

// Default returns a Config with every field at its default.
func Default() Config {
	return Config{}.ApplyDefaults()
}

// ApplyDefaults fills zero or invalid fields with defaults.
// Negative radii and margins are treated as unset; a negative range is
// treated as unlimited.
func (c Config) ApplyDefaults() Config {
	if c.DataFile == "" {
		c.DataFile = DefaultDataFile
	}
	if c.Planet.RadiusKm <= 0 {
		c.Planet.RadiusKm = core.EarthRadiusKm
	}
	if c.Planet.GuardRadiusKm <= 0 {
		c.Planet.GuardRadiusKm = core.DefaultGuardRadiusKm
	}
	if c.RouteMarginKm <= 0 {
		c.RouteMarginKm = core.DefaultRouteMarginKm
	}
	if c.MaxRangeKm < 0 {
		c.MaxRangeKm = 0
	}
	return c
}

// CorePlanet converts the planet section into a core.Planet.
func (c Config) CorePlanet() core.Planet {
	return core.Planet{
		Center:        core.Vec3{X: c.Planet.Center[0], Y: c.Planet.Center[1], Z: c.Planet.Center[2]},
		RadiusKm:      c.Planet.RadiusKm,
		GuardRadiusKm: c.Planet.GuardRadiusKm,
	}
}

// Load reads a YAML config file and applies defaults. An empty path
// returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config data and applies defaults. Unknown keys are
// rejected.
func Parse(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg.ApplyDefaults(), nil
}
