package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerOrdersByPriorityThenInsertion(t *testing.T) {
	bus := NewBus()
	var got []string
	record := func(tag string) Handler {
		return func(...any) { got = append(got, tag) }
	}

	bus.On("tick", record("p2-a"), 2)
	bus.On("tick", record("p1-a"))
	bus.On("tick", record("p0-a"), 0)
	bus.On("tick", record("p1-b"))
	bus.On("tick", record("p2-b"), 2)

	bus.Trigger("tick")

	assert.Equal(t, []string{"p0-a", "p1-a", "p1-b", "p2-a", "p2-b"}, got)
}

func TestTriggerPassesArgsPositionally(t *testing.T) {
	bus := NewBus()
	var code string
	var repeat bool
	bus.On("!keydown", func(args ...any) {
		code = args[0].(string)
		repeat = args[1].(bool)
	})

	bus.Trigger("!keydown", "KeyW", true)

	assert.Equal(t, "KeyW", code)
	assert.True(t, repeat)
}

func TestTriggerUnknownEventIsNoop(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() { bus.Trigger("missing") })
}

func TestDuplicateRegistrationFiresTwice(t *testing.T) {
	bus := NewBus()
	calls := 0
	fn := func(...any) { calls++ }

	first := bus.On("tick", fn)
	second := bus.On("tick", fn)
	require.NotEqual(t, first, second)

	bus.Trigger("tick")
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, bus.Count("tick"))
}

func TestRemoveByTokenScansBuckets(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.On("tick", func(...any) { got = append(got, "a") }, 0)
	tok := bus.On("tick", func(...any) { got = append(got, "b") }, 3)
	bus.On("tick", func(...any) { got = append(got, "c") }, 3)

	assert.True(t, bus.Remove("tick", tok))
	assert.False(t, bus.Remove("tick", tok))
	assert.False(t, bus.Remove("other", tok))

	bus.Trigger("tick")
	assert.Equal(t, []string{"a", "c"}, got)
	assert.Equal(t, 2, bus.Count("tick"))
}

func TestRemoveLastListenerDropsBucket(t *testing.T) {
	bus := NewBus()
	tok := bus.On("tick", func(...any) {}, 5)
	require.True(t, bus.Remove("tick", tok))
	assert.Equal(t, 0, bus.Count("tick"))

	// A new registration at the same priority must still work.
	fired := false
	bus.On("tick", func(...any) { fired = true }, 5)
	bus.Trigger("tick")
	assert.True(t, fired)
}

func TestOffRemovesAll(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.On("tick", func(...any) { calls++ })
	bus.On("tick", func(...any) { calls++ }, 4)
	bus.On("keyup", func(...any) { calls += 10 })

	bus.Off("tick")
	bus.Trigger("tick")
	bus.Trigger("keyup")

	assert.Equal(t, 10, calls)
}

func TestMutationDuringTriggerUsesSnapshot(t *testing.T) {
	bus := NewBus()
	var got []string
	var lateTok Token

	bus.On("tick", func(...any) {
		got = append(got, "first")
		bus.On("tick", func(...any) { got = append(got, "added") })
		bus.Remove("tick", lateTok)
	})
	lateTok = bus.On("tick", func(...any) { got = append(got, "late") })

	bus.Trigger("tick")
	assert.Equal(t, []string{"first", "late"}, got)

	got = nil
	bus.Trigger("tick")
	assert.Equal(t, []string{"first", "added"}, got)
}

func TestNilHandlerIgnored(t *testing.T) {
	bus := NewBus()
	assert.Equal(t, Token(0), bus.On("tick", nil))
	assert.Equal(t, 0, bus.Count("tick"))
}
