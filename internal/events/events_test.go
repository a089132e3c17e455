package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFireOrderAndOnce(t *testing.T) {
	bus := NewBus()
	key := Key{Category: "door", ID: 3, Event: "played"}
	var calls []string

	bus.BindOnce(key, func(Event) { calls = append(calls, "once") })
	bus.Bind(key, func(Event) { calls = append(calls, "durable") })

	bus.Fire(key, nil)
	bus.Fire(key, nil)

	assert.Equal(t, []string{"durable", "once", "durable"}, calls)
	assert.Equal(t, 1, bus.Bound(key))
}

func TestFireIsScopedPerEntity(t *testing.T) {
	bus := NewBus()
	var hits []int
	for _, k := range []Key{
		{Category: "door", ID: 1, Event: "played"},
		{Category: "door", ID: 2, Event: "played"},
		{Category: "treasure", ID: 1, Event: "played"},
	} {
		k := k
		bus.Bind(k, func(ev Event) {
			assert.Equal(t, k, ev.Key)
			hits = append(hits, k.ID)
		})
	}

	bus.Fire(Key{Category: "door", ID: 2, Event: "played"}, nil)
	bus.Fire(Key{Category: "door", ID: 2, Event: "discarded"}, nil)

	assert.Equal(t, []int{2}, hits)
}

func TestFirePassesPayload(t *testing.T) {
	bus := NewBus()
	key := Key{Category: "player", ID: 0, Event: "level_up"}
	var got any
	bus.Bind(key, func(ev Event) { got = ev.Payload })
	bus.Fire(key, 2)
	assert.Equal(t, 2, got)
}

func TestHandlerMayBindDuringFire(t *testing.T) {
	bus := NewBus()
	key := Key{Category: "door", ID: 1, Event: "played"}
	n := 0
	bus.BindOnce(key, func(Event) {
		n++
		bus.BindOnce(key, func(Event) { n += 10 })
	})
	bus.Fire(key, nil)
	assert.Equal(t, 1, n)
	bus.Fire(key, nil)
	assert.Equal(t, 11, n)
}

func TestUnbind(t *testing.T) {
	bus := NewBus()
	key := Key{Category: "door", ID: 1, Event: "played"}
	n := 0
	h := bus.Bind(key, func(Event) { n++ })
	bus.Unbind(h)
	bus.Fire(key, nil)
	assert.Zero(t, n)
	assert.Zero(t, bus.Bound(key))
	assert.Equal(t, -1, bus.Bind(key, nil))
}

func TestRekey(t *testing.T) {
	bus := NewBus()
	old := Key{Category: "door", ID: 4, Event: "played"}
	n := 0
	bus.Bind(old, func(Event) { n++ })
	bus.BindOnce(Key{Category: "door", ID: 4, Event: "discarded"}, func(Event) { n += 100 })
	bus.Bind(Key{Category: "treasure", ID: 4, Event: "played"}, func(Event) { n += 1000 })

	bus.Rekey("door", 4, 9)

	bus.Fire(old, nil)
	assert.Zero(t, n)
	bus.Fire(Key{Category: "door", ID: 9, Event: "played"}, nil)
	bus.Fire(Key{Category: "door", ID: 9, Event: "discarded"}, nil)
	assert.Equal(t, 101, n)
	assert.Equal(t, 1, bus.Bound(Key{Category: "treasure", ID: 4, Event: "played"}))
}

func TestDebounceReplacesPendingTimer(t *testing.T) {
	s := NewScheduler(context.Background(), nil)
	defer s.Close()

	var first, second atomic.Int32
	require.True(t, s.Debounce("stall", 30*time.Millisecond, func() { first.Add(1) }))
	require.True(t, s.Debounce("stall", 30*time.Millisecond, func() { second.Add(1) }))

	assert.Eventually(t, func() bool { return second.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, first.Load())
	assert.False(t, s.Pending("stall"))
}

func TestCancel(t *testing.T) {
	s := NewScheduler(context.Background(), nil)
	defer s.Close()

	var n atomic.Int32
	s.Debounce("stall", 20*time.Millisecond, func() { n.Add(1) })
	assert.True(t, s.Pending("stall"))
	s.Cancel("stall")
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, n.Load())
}

func TestTimerPanicIsRecovered(t *testing.T) {
	s := NewScheduler(context.Background(), nil)
	defer s.Close()

	var after atomic.Int32
	s.Debounce("a", time.Millisecond, func() { panic("boom") })
	s.Debounce("b", 10*time.Millisecond, func() { after.Add(1) })
	assert.Eventually(t, func() bool { return after.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestCloseStopsTimersAndJoinsTasks(t *testing.T) {
	s := NewScheduler(context.Background(), nil)

	var fired atomic.Int32
	s.Debounce("stall", 20*time.Millisecond, func() { fired.Add(1) })

	var stopped atomic.Bool
	s.Go("wait", func(ctx context.Context) error {
		<-ctx.Done()
		stopped.Store(true)
		return nil
	})

	require.NoError(t, s.Close())
	assert.True(t, stopped.Load())

	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, fired.Load())
	assert.False(t, s.Debounce("stall", time.Millisecond, func() {}))
	assert.False(t, s.Go("late", func(context.Context) error { return nil }))
	assert.NoError(t, s.Close())
}

func TestTaskErrorSurfacesOnClose(t *testing.T) {
	s := NewScheduler(context.Background(), nil)
	boom := errors.New("boom")
	s.Go("fail", func(context.Context) error { return boom })
	assert.ErrorIs(t, s.Close(), boom)
}
