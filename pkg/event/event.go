// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Run event types
const (
	RunStarted     Type = "run_started"
	RunFinished    Type = "run_finished"
	GateCrossed    Type = "gate_crossed"
	GateTouched    Type = "gate_touched"
	ObstacleStruck Type = "obstacle_struck"
	PenaltyApplied Type = "penalty_applied"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler.
type Subscription struct {
	ID     uint64
	Type   Type
	Cancel func()
}

type registration struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching. Handlers run synchronously
// on the publishing goroutine, in subscription order.
type Bus struct {
	handlers map[Type][]registration
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]registration),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], registration{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Type:   eventType,
		Cancel: func() { b.Unsubscribe(eventType, id) },
	}
}

// Unsubscribe removes the handler with the given subscription id.
func (b *Bus) Unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	regs := b.handlers[eventType]
	for i, r := range regs {
		if r.id == id {
			b.handlers[eventType] = append(regs[:i:i], regs[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	regs := append([]registration(nil), b.handlers[event.GetType()]...)
	b.mu.RUnlock()

	for _, r := range regs {
		r.handler(event)
	}
}

// GateEvent reports a crossing or a post touch.
type GateEvent struct {
	BaseEvent
	Gate     int
	Expected int
	Tick     uint64
}

// NewGateEvent creates a gate event.
func NewGateEvent(eventType Type, source interface{}, gate, expected int, tick uint64) *GateEvent {
	return &GateEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source},
		Gate:      gate,
		Expected:  expected,
		Tick:      tick,
	}
}

// ObstacleEvent reports hull contact with a rock.
type ObstacleEvent struct {
	BaseEvent
	Obstacle    int
	Name        string
	OverlapArea float64
	// Offset is the overlap centroid relative to the vessel position.
	OffsetX, OffsetY float64
	Tick             uint64
}

// NewObstacleEvent creates an obstacle event.
func NewObstacleEvent(source interface{}, obstacle int, name string, area, offsetX, offsetY float64, tick uint64) *ObstacleEvent {
	return &ObstacleEvent{
		BaseEvent:   BaseEvent{EventType: ObstacleStruck, Source: source},
		Obstacle:    obstacle,
		Name:        name,
		OverlapArea: area,
		OffsetX:     offsetX,
		OffsetY:     offsetY,
		Tick:        tick,
	}
}

// PenaltyEvent reports time added to the run.
type PenaltyEvent struct {
	BaseEvent
	Kind    string
	Seconds float64
	Total   float64
	Tick    uint64
}

// NewPenaltyEvent creates a penalty event.
func NewPenaltyEvent(source interface{}, kind string, seconds, total float64, tick uint64) *PenaltyEvent {
	return &PenaltyEvent{
		BaseEvent: BaseEvent{EventType: PenaltyApplied, Source: source},
		Kind:      kind,
		Seconds:   seconds,
		Total:     total,
		Tick:      tick,
	}
}

// RunEvent marks the start or end of a run.
type RunEvent struct {
	BaseEvent
	RunID   string
	Score   float64
	Penalty float64
	Tick    uint64
}

// NewRunEvent creates a run lifecycle event.
func NewRunEvent(eventType Type, source interface{}, runID string, score, penalty float64, tick uint64) *RunEvent {
	return &RunEvent{
		BaseEvent: BaseEvent{EventType: eventType, Source: source},
		RunID:     runID,
		Score:     score,
		Penalty:   penalty,
		Tick:      tick,
	}
}
