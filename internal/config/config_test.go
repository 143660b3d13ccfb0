package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"arcade-drive/internal/camera"
	"arcade-drive/internal/core"
	"arcade-drive/internal/vehicle"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	s, err := NewLoader("").Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
	assert.NoError(t, Validate(s))
}

func TestLoad_YAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "drive.yaml", `
vehicle:
  maxSpeed: 35
  friction: 2.5
camera:
  tau: 0.3
  offset: [0, 4, 8]
clock:
  maxDelta: 50ms
steerMode: edge
`)
	s, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 35.0, s.Vehicle.MaxSpeed)
	assert.Equal(t, 2.5, s.Vehicle.Friction)
	assert.Equal(t, vehicle.DefaultTuning().AccelRate, s.Vehicle.AccelRate)
	assert.Equal(t, 0.3, s.Camera.Tau)
	assert.Equal(t, [3]float64{0, 4, 8}, s.Camera.Offset)
	assert.Equal(t, camera.DefaultSettings().Epsilon, s.Camera.Epsilon)
	assert.Equal(t, 50*time.Millisecond, s.Clock.MaxDelta)
	assert.Equal(t, vehicle.SteerEdge, s.Steer())
}

func TestLoad_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "drive.json", `{"vehicle": {"accelRate": 11}}`)
	s, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 11.0, s.Vehicle.AccelRate)
	assert.Equal(t, core.DefaultMaxDelta, s.Clock.MaxDelta)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader("/nonexistent/drive.yaml").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfigLoad_ValidatesAndOverridesSteer(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "drive.yaml", "steerMode: edge\n")

	c := NewConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.Bind(fs)
	require.NoError(t, fs.Parse([]string{"-config", path, "-steer", "held", "-tps", "120"}))
	require.NoError(t, c.Load())

	assert.Equal(t, 120, c.TPS)
	assert.Equal(t, vehicle.SteerHeld, c.Settings.Steer())
}

func TestConfigLoad_RejectsInvalidTuning(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "drive.yaml", "vehicle:\n  friction: 0\n  maxSpeed: -3\n")

	c := NewConfig()
	c.Path = path
	err := c.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTuning))
	assert.Contains(t, err.Error(), vehicle.KeyFriction)
	assert.Contains(t, err.Error(), vehicle.KeyMaxSpeed)
	assert.Equal(t, DefaultSettings(), c.Settings, "settings untouched on failure")
}

func TestConfigLoad_RejectsBareNumberMaxDelta(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "drive.yaml", "clock:\n  maxDelta: 50\n")

	c := NewConfig()
	c.Path = path
	err := c.Load()
	require.ErrorIs(t, err, ErrInvalidTuning)
	assert.Contains(t, err.Error(), "clock.maxDelta")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
		bad    string
	}{
		{"zero tau", func(s *Settings) { s.Camera.Tau = 0 }, camera.KeyTau},
		{"lerp above one", func(s *Settings) { s.Camera.FixedLerp = 1.5 }, camera.KeyFixedLerp},
		{"zero epsilon", func(s *Settings) { s.Camera.Epsilon = 0 }, camera.KeyEpsilon},
		{"zero max delta", func(s *Settings) { s.Clock.MaxDelta = 0 }, "clock.maxDelta"},
		{"sub-millisecond max delta", func(s *Settings) { s.Clock.MaxDelta = 50 }, "clock.maxDelta"},
		{"steer mode", func(s *Settings) { s.SteerMode = "wobbly" }, "steerMode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(&s)
			err := Validate(s)
			require.ErrorIs(t, err, ErrInvalidTuning)
			assert.Contains(t, err.Error(), tt.bad)
		})
	}

	s := DefaultSettings()
	s.Camera.Tau = 0
	s.Camera.FixedLerp = 0.2
	assert.NoError(t, Validate(s), "fixed lerp does not need tau")

	s = DefaultSettings()
	s.Clock.MaxDelta = -1
	assert.NoError(t, Validate(s), "negative disables the clamp")

	s = DefaultSettings()
	s.Clock.MaxDelta = MinMaxDelta
	assert.NoError(t, Validate(s))
}

func TestApplyOverrides(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.ApplyOverrides([]string{"max_speed=42", " camera_tau = 0.5"}))
	assert.Equal(t, 42.0, s.Vehicle.MaxSpeed)
	assert.Equal(t, 0.5, s.Camera.Tau)

	assert.Error(t, s.ApplyOverrides([]string{"max_speed"}))
	assert.Error(t, s.ApplyOverrides([]string{"max_speed=fast"}))
	assert.Error(t, s.ApplyOverrides([]string{"horsepower=300"}))
}

func TestWatch_RequiresFile(t *testing.T) {
	_, err := NewLoader("").Watch(zerolog.Nop())
	assert.Error(t, err)
}

func TestWatch_PublishesReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "drive.yaml", "vehicle:\n  maxSpeed: 20\n")
	l := NewLoader(path)
	_, err := l.Load()
	require.NoError(t, err)

	updates, err := l.Watch(zerolog.Nop())
	require.NoError(t, err)

	writeFile(t, dir, "drive.yaml", "vehicle:\n  maxSpeed: 27\n")

	// a truncating write can surface as more than one event
	deadline := time.After(5 * time.Second)
	for {
		select {
		case s := <-updates:
			if s.Vehicle.MaxSpeed == 27 {
				return
			}
		case <-deadline:
			t.Fatal("no reload published")
		}
	}
}
