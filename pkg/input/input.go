// Package input maps paddling keys to engine commands. Terminals report key
// presses and auto-repeats but never releases, so a HoldTracker turns a lapse
// in repeats into a release.
package input

import (
	"sort"
	"time"

	"github.com/opd-ai/go-slalom/pkg/config"
	"github.com/opd-ai/go-slalom/pkg/engine"
)

// DefaultHoldTimeout is how long a key counts as held after its last repeat.
// Typical terminal auto-repeat fires every 30 to 50 ms after a 250 to 500 ms
// initial delay.
const DefaultHoldTimeout = 550 * time.Millisecond

// Action is a logical control, independent of the physical key.
type Action int

const (
	ActionNone Action = iota
	ActionForward
	ActionBackward
	ActionLeft
	ActionRight
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionForward:
		return "forward"
	case ActionBackward:
		return "backward"
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	case ActionQuit:
		return "quit"
	default:
		return "none"
	}
}

// axis groups actions that drive the same command.
func (a Action) axis() engine.CommandKind {
	switch a {
	case ActionForward, ActionBackward:
		return engine.CommandForward
	case ActionLeft, ActionRight:
		return engine.CommandAngular
	default:
		return engine.CommandNone
	}
}

// Binding is the pair of commands issued on press and on release.
type Binding struct {
	Press   engine.Command
	Release engine.Command
}

// KeyMap binds actions to commands.
type KeyMap map[Action]Binding

// DefaultKeyMap binds the arrows to full-speed paddling and turning, each
// zeroed on release, and Escape to quit.
func DefaultKeyMap(v config.VesselConfig) KeyMap {
	return KeyMap{
		ActionForward:  {Press: engine.Forward(v.MaxForwardSpeed), Release: engine.Forward(0)},
		ActionBackward: {Press: engine.Forward(-v.MaxBackwardSpeed), Release: engine.Forward(0)},
		ActionLeft:     {Press: engine.Angular(v.MaxRotationSpeed), Release: engine.Angular(0)},
		ActionRight:    {Press: engine.Angular(-v.MaxRotationSpeed), Release: engine.Angular(0)},
		ActionQuit:     {Press: engine.Quit(), Release: engine.Command{}},
	}
}

// Press returns the press command for a, if bound.
func (m KeyMap) Press(a Action) (engine.Command, bool) {
	b, ok := m[a]
	if !ok || b.Press.Kind == engine.CommandNone {
		return engine.Command{}, false
	}
	return b.Press, true
}

// Release returns the release command for a, if bound.
func (m KeyMap) Release(a Action) (engine.Command, bool) {
	b, ok := m[a]
	if !ok || b.Release.Kind == engine.CommandNone {
		return engine.Command{}, false
	}
	return b.Release, true
}

// HoldTracker remembers when each action was last pressed.
type HoldTracker struct {
	timeout time.Duration
	held    map[Action]time.Time
}

// NewHoldTracker creates a tracker that releases an action timeout after its
// last press.
func NewHoldTracker(timeout time.Duration) *HoldTracker {
	if timeout <= 0 {
		timeout = DefaultHoldTimeout
	}
	return &HoldTracker{timeout: timeout, held: make(map[Action]time.Time)}
}

// Press marks a as held at now and reports whether it was newly pressed.
// A held action on the same axis is dropped without a release, since the new
// press overwrites its command.
func (h *HoldTracker) Press(a Action, now time.Time) bool {
	_, already := h.held[a]
	if axis := a.axis(); axis != engine.CommandNone {
		for other := range h.held {
			if other != a && other.axis() == axis {
				delete(h.held, other)
			}
		}
	}
	h.held[a] = now
	return !already
}

// Held reports whether a is currently held.
func (h *HoldTracker) Held(a Action) bool {
	_, ok := h.held[a]
	return ok
}

// Expire releases every action not pressed within the timeout and returns
// them in Action order.
func (h *HoldTracker) Expire(now time.Time) []Action {
	var released []Action
	for a, last := range h.held {
		if now.Sub(last) >= h.timeout {
			released = append(released, a)
			delete(h.held, a)
		}
	}
	sort.Slice(released, func(i, j int) bool { return released[i] < released[j] })
	return released
}

// Controller turns raw action presses into commands.
type Controller struct {
	keys KeyMap
	hold *HoldTracker
}

// NewController creates a Controller. A zero timeout uses DefaultHoldTimeout.
func NewController(keys KeyMap, timeout time.Duration) *Controller {
	return &Controller{keys: keys, hold: NewHoldTracker(timeout)}
}

// Press handles a key press or auto-repeat of a.
func (c *Controller) Press(a Action, now time.Time) []engine.Command {
	cmd, ok := c.keys.Press(a)
	if !ok {
		return nil
	}
	if _, releasable := c.keys.Release(a); releasable {
		c.hold.Press(a, now)
	}
	return []engine.Command{cmd}
}

// Tick returns the release commands for actions whose hold lapsed.
func (c *Controller) Tick(now time.Time) []engine.Command {
	var cmds []engine.Command
	for _, a := range c.hold.Expire(now) {
		if cmd, ok := c.keys.Release(a); ok {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// Held reports whether a is currently held.
func (c *Controller) Held(a Action) bool {
	return c.hold.Held(a)
}
