package racer

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/baldhumanity/lidar-racer/racer/nn"
)

// ErrConfiguration marks fatal setup problems: invalid parameters, a selection
// count that cannot yield two distinct parents, or drivers that cannot be mated.
var ErrConfiguration = errors.New("configuration error")

// Driver kinds understood by NewDriverFactory.
const (
	DriverNoHidden  = "no_hidden"
	DriverOneHidden = "one_hidden"
	DriverMomentum  = "momentum"
	DriverRandom    = "random"
)

// Config stores the configuration parameters for a training run.
type Config struct {
	Population PopulationConfig
	Car        CarConfig
	Lidar      LidarConfig
	Network    NetworkConfig
	Momentum   MomentumConfig
	Arena      ArenaConfig
}

// PopulationConfig holds parameters of the generation loop.
type PopulationConfig struct {
	Size           int     `ini:"pop_size"`
	SelectionRatio float64 `ini:"selection_ratio"`
	EpisodeTicks   int     `ini:"episode_ticks"`
	Seed           uint64  `ini:"seed"` // 0 picks a random seed
	Driver         string  `ini:"driver"`
}

// CarConfig holds per-tick physics constants and body size.
type CarConfig struct {
	Length               float64 `ini:"length"`
	Width                float64 `ini:"width"`
	MaxSpeed             float64 `ini:"max_speed"`
	Acceleration         float64 `ini:"acceleration"`
	FrictionDeceleration float64 `ini:"friction_deceleration"`
	RotationCoefficient  float64 `ini:"rotation_coefficient"`
}

// LidarConfig describes the beam layout: one cluster per angle, each cluster holding
// one beam per length (near to far). ClusterValues are the feature values reported
// when the near, mid or far beam of a cluster is the nearest one hit.
type LidarConfig struct {
	ClusterAngles []float64 `ini:"cluster_angles" delim:" "`
	BeamLengths   []float64 `ini:"beam_lengths" delim:" "`
	ClusterValues []float64 `ini:"cluster_values" delim:" "`
}

// NetworkConfig holds initialization and mutation ranges for the neural drivers.
type NetworkConfig struct {
	Activation  string `ini:"activation"`
	HiddenUnits int    `ini:"hidden_units"`

	NoHiddenInitMin float64 `ini:"no_hidden_init_min"`
	NoHiddenInitMax float64 `ini:"no_hidden_init_max"`
	HiddenInitMin   float64 `ini:"hidden_init_min"`
	HiddenInitMax   float64 `ini:"hidden_init_max"`
	OutputInitMin   float64 `ini:"output_init_min"`
	OutputInitMax   float64 `ini:"output_init_max"`

	NoHiddenMutateMin float64 `ini:"no_hidden_mutate_min"`
	NoHiddenMutateMax float64 `ini:"no_hidden_mutate_max"`
	HiddenMutateMin   float64 `ini:"hidden_mutate_min"`
	HiddenMutateMax   float64 `ini:"hidden_mutate_max"`
	OutputMutateMin   float64 `ini:"output_mutate_min"`
	OutputMutateMax   float64 `ini:"output_mutate_max"`
}

// MomentumConfig tunes the momentum-biased random driver.
type MomentumConfig struct {
	ForwardBiasMin     float64 `ini:"forward_bias_min"`
	ForwardCoefficient float64 `ini:"forward_coefficient"`
	LeftCoefficient    float64 `ini:"left_coefficient"`
	LeftLimit          float64 `ini:"left_limit"`
}

// ArenaConfig is the host viewport the arena borders are built from.
type ArenaConfig struct {
	Width       float64 `ini:"width"`
	Height      float64 `ini:"height"`
	BorderWidth float64 `ini:"border_width"`
}

// DefaultConfig returns the configuration used when no file overrides a value.
func DefaultConfig() *Config {
	return &Config{
		Population: PopulationConfig{
			Size:           10,
			SelectionRatio: 0.5,
			EpisodeTicks:   300,
			Driver:         DriverNoHidden,
		},
		Car: CarConfig{
			Length:               40,
			Width:                20,
			MaxSpeed:             5,
			Acceleration:         0.05,
			FrictionDeceleration: 0.02,
			RotationCoefficient:  1,
		},
		Lidar: LidarConfig{
			ClusterAngles: []float64{-60, 0, 60},
			BeamLengths:   []float64{40, 80, 120},
			ClusterValues: []float64{1.0, 0.6, 0.3},
		},
		Network: NetworkConfig{
			Activation:        "bounded_sigmoid",
			HiddenUnits:       6,
			NoHiddenInitMin:   -2,
			NoHiddenInitMax:   2,
			HiddenInitMin:     -1,
			HiddenInitMax:     1,
			OutputInitMin:     -1,
			OutputInitMax:     1,
			NoHiddenMutateMin: -0.5,
			NoHiddenMutateMax: 0.5,
			HiddenMutateMin:   -0.5,
			HiddenMutateMax:   0.5,
			OutputMutateMin:   -0.2,
			OutputMutateMax:   0.2,
		},
		Momentum: MomentumConfig{
			ForwardBiasMin:     -0.2,
			ForwardCoefficient: 0.2,
			LeftCoefficient:    0.1,
			LeftLimit:          0.2,
		},
		Arena: ArenaConfig{
			Width:       1400,
			Height:      800,
			BorderWidth: 50,
		},
	}
}

// LoadConfig loads configuration parameters from an INI file on top of DefaultConfig.
func LoadConfig(filePath string) (*Config, error) {
	cfg, err := loadSource(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}
	return cfg, nil
}

// ParseConfig parses INI content on top of DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	return loadSource(data)
}

func loadSource(source any) (*Config, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, source)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	sections := []struct {
		name   string
		target any
	}{
		{"Population", &config.Population},
		{"Car", &config.Car},
		{"Lidar", &config.Lidar},
		{"Network", &config.Network},
		{"Momentum", &config.Momentum},
		{"Arena", &config.Arena},
	}
	for _, s := range sections {
		if !file.HasSection(s.name) {
			continue
		}
		if err := file.Section(s.name).MapTo(s.target); err != nil {
			return nil, fmt.Errorf("failed to map [%s] section: %w", s.name, err)
		}
	}

	config.Population.Driver = cleanIniString(config.Population.Driver)
	config.Network.Activation = cleanIniString(config.Network.Activation)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SelectionCount is the number of top-ranked drivers eligible as parents:
// floor(pop_size * selection_ratio).
func (c *Config) SelectionCount() int {
	return SelectionCount(c.Population.Size, c.Population.SelectionRatio)
}

// SelectionCount returns floor(size * ratio), tolerant of float rounding just below
// an integer product.
func SelectionCount(size int, ratio float64) int {
	return int(math.Floor(float64(size)*ratio + 1e-9))
}

// Validate checks every section and returns an error wrapping ErrConfiguration.
func (c *Config) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
	}

	p := c.Population
	if p.Size <= 0 {
		return fail("pop_size must be positive")
	}
	if p.SelectionRatio <= 0 || p.SelectionRatio > 1 {
		return fail("selection_ratio must be in (0, 1]")
	}
	if n := c.SelectionCount(); n <= 1 {
		return fail("selection count %d (pop_size %d * selection_ratio %g) must be greater than 1", n, p.Size, p.SelectionRatio)
	}
	if p.EpisodeTicks <= 0 {
		return fail("episode_ticks must be positive")
	}
	switch p.Driver {
	case DriverNoHidden, DriverOneHidden, DriverMomentum, DriverRandom:
	default:
		return fail("invalid driver '%s'", p.Driver)
	}

	car := c.Car
	if car.Length <= 0 || car.Width <= 0 {
		return fail("car length and width must be positive")
	}
	if car.MaxSpeed <= 0 {
		return fail("max_speed must be positive")
	}
	if car.Acceleration < 0 || car.FrictionDeceleration < 0 || car.RotationCoefficient < 0 {
		return fail("acceleration, friction_deceleration and rotation_coefficient cannot be negative")
	}

	l := c.Lidar
	if len(l.ClusterAngles) == 0 {
		return fail("cluster_angles must be specified")
	}
	if len(l.BeamLengths) != len(l.ClusterValues) {
		return fail("beam_lengths (%d) and cluster_values (%d) must have the same length", len(l.BeamLengths), len(l.ClusterValues))
	}
	if len(l.BeamLengths) != BeamsPerCluster {
		return fail("beam_lengths must list exactly %d distances per cluster", BeamsPerCluster)
	}
	for i, length := range l.BeamLengths {
		if length <= 0 {
			return fail("beam lengths must be positive")
		}
		if i > 0 && length <= l.BeamLengths[i-1] {
			return fail("beam_lengths must be listed near to far in strictly ascending order")
		}
	}

	n := c.Network
	if _, err := nn.GetActivation(n.Activation); err != nil {
		return fail("%v", err)
	}
	if n.HiddenUnits <= 0 {
		return fail("hidden_units must be positive")
	}
	ranges := []struct {
		name     string
		min, max float64
	}{
		{"no_hidden_init", n.NoHiddenInitMin, n.NoHiddenInitMax},
		{"hidden_init", n.HiddenInitMin, n.HiddenInitMax},
		{"output_init", n.OutputInitMin, n.OutputInitMax},
		{"no_hidden_mutate", n.NoHiddenMutateMin, n.NoHiddenMutateMax},
		{"hidden_mutate", n.HiddenMutateMin, n.HiddenMutateMax},
		{"output_mutate", n.OutputMutateMin, n.OutputMutateMax},
	}
	for _, r := range ranges {
		if r.max < r.min {
			return fail("%s_max cannot be less than %s_min", r.name, r.name)
		}
	}

	if c.Momentum.LeftLimit < 0 {
		return fail("left_limit cannot be negative")
	}

	a := c.Arena
	if a.Width <= 0 || a.Height <= 0 {
		return fail("arena width and height must be positive")
	}
	if a.BorderWidth < 0 || 2*a.BorderWidth >= math.Min(a.Width, a.Height) {
		return fail("border_width must leave room inside the arena")
	}
	return nil
}

// NewArena builds the arena for a level using the configured viewport.
func (a ArenaConfig) NewArena(level *Level) *Arena {
	return NewArena(level, a.Width, a.Height, a.BorderWidth)
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
