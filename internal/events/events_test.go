package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annelo/go-snake/internal/events"
)

func TestDispatcher_EmitCallsHandlersInOrder(t *testing.T) {
	d := events.NewDispatcher()

	var calls []string
	d.Subscribe(events.Over, func() { calls = append(calls, "first") })
	d.Subscribe(events.Over, func() { calls = append(calls, "second") })
	d.Subscribe(events.Won, func() { calls = append(calls, "won") })

	d.Emit(events.Over)
	assert.Equal(t, []string{"first", "second"}, calls)

	d.Emit(events.Started) // nobody listens
	assert.Len(t, calls, 2)
}

func TestDispatcher_UnknownKindsAreIgnored(t *testing.T) {
	d := events.NewDispatcher()
	called := false
	d.Subscribe(events.Kind(99), func() { called = true })
	d.Emit(events.Kind(99))
	d.Emit(events.Kind(-1))
	assert.False(t, called)
}

func TestDispatcher_SubscribeAll(t *testing.T) {
	d := events.NewDispatcher()
	var got []events.Kind
	d.SubscribeAll(func(k events.Kind) { got = append(got, k) })

	for _, k := range events.Kinds {
		d.Emit(k)
	}
	assert.Equal(t, events.Kinds[:], got)
}

func TestDispatcher_ChanDropsWhenFull(t *testing.T) {
	d := events.NewDispatcher()
	var dropped []events.Kind
	ch := d.Chan(1, func(k events.Kind) { dropped = append(dropped, k) })

	d.Emit(events.Started)
	d.Emit(events.ScoreUpdated)

	assert.Equal(t, events.Started, <-ch)
	assert.Equal(t, []events.Kind{events.ScoreUpdated}, dropped)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "game_over", events.Over.String())
	assert.Equal(t, "unknown", events.Kind(7).String())
}
