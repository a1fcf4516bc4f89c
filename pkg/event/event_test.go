// pkg/event/event_test.go
package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventBus_Creation_ReturnsInitializedBus(t *testing.T) {
	bus := NewEventBus()

	require.NotNil(t, bus)
	assert.NotNil(t, bus.handlers)
	assert.Equal(t, uint64(1), bus.nextID)
}

func TestBaseEvent_GetType_ReturnsCorrectType(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		source    interface{}
	}{
		{name: "GateCrossed event", eventType: GateCrossed, source: "test_source"},
		{name: "PenaltyApplied event", eventType: PenaltyApplied, source: 123},
		{name: "Empty source", eventType: RunStarted, source: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &BaseEvent{EventType: tt.eventType, Source: tt.source}
			assert.Equal(t, tt.eventType, e.GetType())
			assert.Equal(t, tt.source, e.GetSource())
		})
	}
}

func TestBusSubscribe_MultipleHandlers_AllCalledInOrder(t *testing.T) {
	bus := NewEventBus()
	var calls []string

	sub1 := bus.Subscribe(GateCrossed, func(Event) { calls = append(calls, "first") })
	sub2 := bus.Subscribe(GateCrossed, func(Event) { calls = append(calls, "second") })
	bus.Subscribe(GateTouched, func(Event) { calls = append(calls, "other") })

	assert.NotEqual(t, sub1.ID, sub2.ID)
	assert.Equal(t, GateCrossed, sub1.Type)

	bus.Publish(NewGateEvent(GateCrossed, nil, 2, 2, 10))

	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestBusUnsubscribe_CancelRemovesOnlyThatHandler(t *testing.T) {
	bus := NewEventBus()
	var first, second int

	sub := bus.Subscribe(PenaltyApplied, func(Event) { first++ })
	bus.Subscribe(PenaltyApplied, func(Event) { second++ })

	sub.Cancel()
	sub.Cancel() // second cancel is a no-op

	bus.Publish(NewPenaltyEvent(nil, "touch", 2, 2, 1))

	assert.Zero(t, first)
	assert.Equal(t, 1, second)
}

func TestBusPublish_NoHandlers(t *testing.T) {
	bus := NewEventBus()
	assert.NotPanics(t, func() {
		bus.Publish(NewRunEvent(RunFinished, nil, "abc", 12.5, 2, 400))
	})
}

func TestBusPublish_HandlerMaySubscribe(t *testing.T) {
	bus := NewEventBus()
	var nested int

	bus.Subscribe(RunStarted, func(Event) {
		bus.Subscribe(RunFinished, func(Event) { nested++ })
	})

	bus.Publish(NewRunEvent(RunStarted, nil, "r", 0, 0, 0))
	bus.Publish(NewRunEvent(RunFinished, nil, "r", 0, 0, 0))

	assert.Equal(t, 1, nested)
}

func TestBus_ConcurrentSubscribePublish(t *testing.T) {
	bus := NewEventBus()
	var mu sync.Mutex
	var received int

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Subscribe(ObstacleStruck, func(Event) {
				mu.Lock()
				received++
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	bus.Publish(NewObstacleEvent(nil, 0, "boulder", 3.5, 1, -1, 9))
	assert.Equal(t, 10, received)
}

func TestTypedEvents_CarryPayload(t *testing.T) {
	g := NewGateEvent(GateTouched, "sim", 3, 1, 77)
	assert.Equal(t, GateTouched, g.GetType())
	assert.Equal(t, 3, g.Gate)
	assert.Equal(t, 1, g.Expected)
	assert.Equal(t, uint64(77), g.Tick)

	o := NewObstacleEvent("sim", 1, "ledge", 4.2, 2, 3, 5)
	assert.Equal(t, ObstacleStruck, o.GetType())
	assert.Equal(t, "ledge", o.Name)
	assert.Equal(t, 4.2, o.OverlapArea)

	p := NewPenaltyEvent("sim", "missed", 50, 52, 600)
	assert.Equal(t, PenaltyApplied, p.GetType())
	assert.Equal(t, 52.0, p.Total)
}
