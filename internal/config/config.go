package config

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"arcade-drive/internal/camera"
	"arcade-drive/internal/core"
	"arcade-drive/internal/vehicle"

	"github.com/spf13/viper"
)

// ErrInvalidTuning is returned when a loaded file holds values the simulation
// cannot run with.
var ErrInvalidTuning = errors.New("invalid tuning")

// MinMaxDelta is the smallest accepted positive delta cap.
const MinMaxDelta = time.Millisecond

// ClockSettings configures the frame clock.
type ClockSettings struct {
	// MaxDelta caps a single frame delta; negative disables the cap. Files
	// must give a duration string such as "50ms": a bare number decodes as
	// nanoseconds and is rejected by Validate.
	MaxDelta time.Duration `mapstructure:"maxDelta" json:"maxDelta"`
}

// Settings is the file-backed, hot-reloadable part of the configuration.
type Settings struct {
	Vehicle   vehicle.Tuning  `mapstructure:"vehicle" json:"vehicle"`
	Camera    camera.Settings `mapstructure:"camera" json:"camera"`
	Clock     ClockSettings   `mapstructure:"clock" json:"clock"`
	SteerMode string          `mapstructure:"steerMode" json:"steerMode"`
}

// DefaultSettings returns the built-in handling, camera and clock values.
func DefaultSettings() Settings {
	return Settings{
		Vehicle:   vehicle.DefaultTuning(),
		Camera:    camera.DefaultSettings(),
		Clock:     ClockSettings{MaxDelta: core.DefaultMaxDelta},
		SteerMode: vehicle.SteerHeld.String(),
	}
}

// Set assigns a vehicle or camera value by parameter key.
func (s *Settings) Set(key string, value float64) bool {
	return s.Vehicle.Set(key, value) || s.Camera.Set(key, value)
}

// ApplyOverrides applies key=value pairs, as given to -set on the command line.
func (s *Settings) ApplyOverrides(pairs []string) error {
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("override %q: want key=value", pair)
		}
		key = strings.TrimSpace(key)
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("override %q: %w", pair, err)
		}
		if !s.Set(key, v) {
			return fmt.Errorf("override %q: unknown key %q", pair, key)
		}
	}
	return nil
}

// Steer returns the parsed steering mode.
func (s Settings) Steer() vehicle.SteerMode {
	m, _ := vehicle.ParseSteerMode(s.SteerMode)
	return m
}

// Validate reports every out-of-range value, wrapped in ErrInvalidTuning.
func Validate(s Settings) error {
	bad := s.Vehicle.Invalid()
	if s.Camera.FixedLerp <= 0 && !(s.Camera.Tau > 0) {
		bad = append(bad, camera.KeyTau)
	}
	if s.Camera.FixedLerp > 1 {
		bad = append(bad, camera.KeyFixedLerp)
	}
	if !(s.Camera.Epsilon > 0) {
		bad = append(bad, camera.KeyEpsilon)
	}
	if d := s.Clock.MaxDelta; d >= 0 && d < MinMaxDelta {
		bad = append(bad, "clock.maxDelta")
	}
	if _, ok := vehicle.ParseSteerMode(s.SteerMode); !ok {
		bad = append(bad, "steerMode")
	}
	if len(bad) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTuning, strings.Join(bad, ", "))
	}
	return nil
}

// Config represents the command-line parameters for the application plus the
// settings loaded from the optional config file.
type Config struct {
	Path       string
	Scale      int
	Width      int
	Height     int
	TPS        int
	LogLevel   string
	LogFormat  string
	StreamAddr string
	StreamRate int
	SteerMode  string

	Settings Settings
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Scale:      8,
		Width:      960,
		Height:     640,
		TPS:        60,
		LogLevel:   "info",
		LogFormat:  "console",
		StreamRate: 30,
		Settings:   DefaultSettings(),
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Path, "config", c.Path, "config file (yaml, json or toml)")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixels per world unit")
	fs.IntVar(&c.Width, "width", c.Width, "window width")
	fs.IntVar(&c.Height, "height", c.Height, "window height")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (trace, debug, info, warn, error)")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format (console or json)")
	fs.StringVar(&c.StreamAddr, "stream", c.StreamAddr, "serve the pose stream on this address")
	fs.IntVar(&c.StreamRate, "stream-rate", c.StreamRate, "pose stream frames per second")
	fs.StringVar(&c.SteerMode, "steer", c.SteerMode, "steering mode (held or edge), overrides the config file")
}

// Load reads the config file, if any, on top of the defaults, applies the
// -steer override and validates the result.
func (c *Config) Load() error {
	l := NewLoader(c.Path)
	s, err := l.Load()
	if err != nil {
		return err
	}
	if c.SteerMode != "" {
		s.SteerMode = c.SteerMode
	}
	if err := Validate(s); err != nil {
		return err
	}
	c.Settings = s
	return nil
}

// Loader wraps a private viper instance bound to one config file.
type Loader struct {
	v    *viper.Viper
	path string
}

// NewLoader returns a loader for path. An empty path loads defaults only.
func NewLoader(path string) *Loader {
	v := viper.New()
	setDefaults(v, DefaultSettings())
	if path != "" {
		v.SetConfigFile(path)
	}
	return &Loader{v: v, path: path}
}

func setDefaults(v *viper.Viper, d Settings) {
	v.SetDefault("vehicle.maxSpeed", d.Vehicle.MaxSpeed)
	v.SetDefault("vehicle.accelRate", d.Vehicle.AccelRate)
	v.SetDefault("vehicle.decelRate", d.Vehicle.DecelRate)
	v.SetDefault("vehicle.friction", d.Vehicle.Friction)
	v.SetDefault("vehicle.turnRotationLoss", d.Vehicle.TurnRotationLoss)
	v.SetDefault("vehicle.steeringAngleMax", d.Vehicle.SteeringAngleMax)
	v.SetDefault("vehicle.steeringSpeed", d.Vehicle.SteeringSpeed)

	v.SetDefault("camera.offset", d.Camera.Offset[:])
	v.SetDefault("camera.tau", d.Camera.Tau)
	v.SetDefault("camera.fixedLerp", d.Camera.FixedLerp)
	v.SetDefault("camera.epsilon", d.Camera.Epsilon)

	v.SetDefault("clock.maxDelta", d.Clock.MaxDelta)
	v.SetDefault("steerMode", d.SteerMode)
}

// Load reads the file (when one is configured) and decodes the settings.
// It does not validate.
func (l *Loader) Load() (Settings, error) {
	if l.path != "" {
		if err := l.v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return l.decode()
}

func (l *Loader) decode() (Settings, error) {
	var s Settings
	if err := l.v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	return s, nil
}

// Viper exposes the underlying instance, mainly for tests.
func (l *Loader) Viper() *viper.Viper { return l.v }
