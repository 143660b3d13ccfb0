package ui

import (
	"testing"

	"arcade-drive/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTunable struct {
	values map[string]float64
	reject bool
}

func (f *fakeTunable) Parameters() core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{{
		Name: "Drive",
		Params: []core.Parameter{
			{Key: "grip", Label: "Grip", Value: f.values["grip"], Min: 0, Max: 1, Step: 0.25},
			{Key: "power", Label: "Power", Value: f.values["power"], Min: 1, Max: 10, Step: 1},
		},
	}}}
}

func (f *fakeTunable) SetParameter(key string, value float64) bool {
	if f.reject {
		return false
	}
	f.values[key] = value
	return true
}

func centre(r Row, plus bool) (int, int) {
	rect := r.Minus
	if plus {
		rect = r.Plus
	}
	return (rect.Min.X + rect.Max.X) / 2, (rect.Min.Y + rect.Max.Y) / 2
}

func TestPanelLayout(t *testing.T) {
	ft := &fakeTunable{values: map[string]float64{"grip": 0.5, "power": 4}}
	p := NewPanel(240, ft)
	rows := p.Rows()
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Header)
	assert.Equal(t, "Drive", rows[0].Group)
	assert.Equal(t, "grip", rows[1].Param.Key)
	assert.Greater(t, rows[2].Top, rows[1].Top)
	assert.Equal(t, 240-panelPadding, rows[1].Plus.Max.X)
	assert.Less(t, rows[1].Minus.Max.X, rows[1].Plus.Min.X)
	assert.Equal(t, rows[2].Top+lineHeight+panelPadding, p.Height())
}

func TestPanelClickAdjustsAndClamps(t *testing.T) {
	ft := &fakeTunable{values: map[string]float64{"grip": 0.5, "power": 10}}
	p := NewPanel(240, ft)

	x, y := centre(p.Rows()[1], true)
	key, ok := p.Click(x, y)
	require.True(t, ok)
	assert.Equal(t, "grip", key)
	assert.Equal(t, 0.75, ft.values["grip"])

	p.Click(x, y)
	assert.Equal(t, 1.0, ft.values["grip"])
	_, ok = p.Click(x, y)
	assert.False(t, ok, "already at max")

	// power sits at max; plus is disabled, minus works
	px, py := centre(p.Rows()[2], true)
	_, ok = p.Click(px, py)
	assert.False(t, ok)
	mx, my := centre(p.Rows()[2], false)
	_, ok = p.Click(mx, my)
	require.True(t, ok)
	assert.Equal(t, 9.0, ft.values["power"])
}

func TestPanelClickMissesAndRejects(t *testing.T) {
	ft := &fakeTunable{values: map[string]float64{"grip": 0.5, "power": 4}}
	p := NewPanel(240, ft)
	_, ok := p.Click(0, 0)
	assert.False(t, ok)

	ft.reject = true
	x, y := centre(p.Rows()[1], false)
	_, ok = p.Click(x, y)
	assert.False(t, ok)
	assert.Equal(t, 0.5, p.Rows()[1].Param.Value)
}

func TestPanelRefreshPicksUpExternalChanges(t *testing.T) {
	ft := &fakeTunable{values: map[string]float64{"grip": 0.5, "power": 4}}
	p := NewPanel(240, ft)
	ft.values["power"] = 7
	p.Refresh()
	assert.Equal(t, 7.0, p.Rows()[2].Param.Value)
	assert.Len(t, p.Rows(), 3)
}

func TestPanelEmpty(t *testing.T) {
	p := NewPanel(200)
	assert.Empty(t, p.Rows())
	assert.Equal(t, controlsTop+panelPadding, p.Height())
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		param core.Parameter
		want  string
	}{
		{core.Parameter{Value: 20, Step: 1}, "20"},
		{core.Parameter{Value: 0.5236, Step: 0.01}, "0.52"},
		{core.Parameter{Value: 0.15, Step: 0.005}, "0.150"},
		{core.Parameter{Value: 3.3, Step: 0.25}, "3.3"},
		{core.Parameter{Value: 0.0004, Step: 0.0001}, "0.0004"},
		{core.Parameter{Value: 1.234}, "1.23"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.param))
	}
}

func TestTelemetryLines(t *testing.T) {
	lines := Telemetry{
		Tick:           42,
		FPS:            60,
		Speed:          12.5,
		Steering:       0.5235987755982988,
		TargetSteering: 0.5235987755982988,
		Position:       [3]float64{1, 0, -20},
		CameraDistance: 11.2,
		Settling:       true,
		SteerMode:      "held",
	}.Lines()
	require.Len(t, lines, 7)
	assert.Equal(t, "tick 42  60 fps", lines[0])
	assert.Contains(t, lines[2], "30.0 -> 30.0 deg")
	assert.Contains(t, lines[4], "1.0, -20.0")
	assert.Contains(t, lines[5], "settling")
}
