package dom

import mapset "github.com/deckarep/golang-set/v2"

// nonBubbling are the event types that only reach ancestors during capture.
var nonBubbling = mapset.NewSet(
	"focus", "blur", "scroll", "load", "error", "mouseenter", "mouseleave",
)

// Bubbles reports whether events of this type bubble by default.
func Bubbles(typ string) bool {
	return !nonBubbling.Contains(typ)
}

type Phase uint8

const (
	PhaseNone Phase = iota
	PhaseCapturing
	PhaseAtTarget
	PhaseBubbling
)

type Event struct {
	Type          string
	Target        *Node
	CurrentTarget *Node
	Bubbles       bool
	// Detail carries an arbitrary payload for synthetic events.
	Detail any

	phase            Phase
	stopped          bool
	stoppedImmediate bool
	defaultPrevented bool
	stopHook         func()
}

// NewEvent creates an event whose bubbling follows its type.
func NewEvent(typ string) *Event {
	return &Event{Type: typ, Bubbles: Bubbles(typ)}
}

func (e *Event) Phase() Phase {
	return e.phase
}

// StopPropagation keeps the event from reaching further nodes. Listeners on
// the current node still run.
func (e *Event) StopPropagation() {
	e.stopped = true
	if e.stopHook != nil {
		e.stopHook()
	}
}

// StopImmediatePropagation also skips the remaining listeners on the current
// node.
func (e *Event) StopImmediatePropagation() {
	e.stoppedImmediate = true
	e.StopPropagation()
}

func (e *Event) PropagationStopped() bool {
	return e.stopped
}

func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// WrapStopPropagation chains hook onto StopPropagation: calling it keeps the
// native behaviour and then runs hook. restore removes the hook again.
func (e *Event) WrapStopPropagation(hook func()) (restore func()) {
	prev := e.stopHook
	e.stopHook = func() {
		if prev != nil {
			prev()
		}
		hook()
	}
	return func() {
		e.stopHook = prev
	}
}

type listener struct {
	fn      func(*Event)
	capture bool
	removed bool
}

// AddEventListener registers fn for typ. Capture listeners run while the
// event travels down to its target. The returned func unregisters it.
func (n *Node) AddEventListener(typ string, fn func(*Event), capture bool) (remove func()) {
	if n.listeners == nil {
		n.listeners = map[string][]*listener{}
	}
	l := &listener{fn: fn, capture: capture}
	n.listeners[typ] = append(n.listeners[typ], l)
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		ls := n.listeners[typ]
		for i, other := range ls {
			if other == l {
				n.listeners[typ] = append(ls[:i:i], ls[i+1:]...)
				break
			}
		}
		if len(n.listeners[typ]) == 0 {
			delete(n.listeners, typ)
		}
	}
}

// ListenerCount reports how many listeners are registered for typ.
func (n *Node) ListenerCount(typ string) int {
	return len(n.listeners[typ])
}

// DispatchEvent runs the capture, target and bubble phases for e with n as
// the target. It returns false when a listener prevented the default.
func (n *Node) DispatchEvent(e *Event) bool {
	e.Target = n
	e.stopped, e.stoppedImmediate = false, false

	var path []*Node
	for p := n.parent; p != nil; p = p.parent {
		path = append(path, p)
	}

	e.phase = PhaseCapturing
	for i := len(path) - 1; i >= 0 && !e.stopped; i-- {
		path[i].invoke(e, true, false)
	}

	if !e.stopped {
		e.phase = PhaseAtTarget
		n.invoke(e, true, true)
	}

	if e.Bubbles {
		e.phase = PhaseBubbling
		for i := 0; i < len(path) && !e.stopped; i++ {
			path[i].invoke(e, false, false)
		}
	}

	e.phase = PhaseNone
	e.CurrentTarget = nil
	return !e.defaultPrevented
}

func (n *Node) invoke(e *Event, capture, atTarget bool) {
	ls := n.listeners[e.Type]
	if len(ls) == 0 {
		return
	}
	snapshot := append([]*listener(nil), ls...)
	e.CurrentTarget = n
	for _, l := range snapshot {
		if l.removed || (!atTarget && l.capture != capture) {
			continue
		}
		l.fn(e)
		if e.stoppedImmediate {
			return
		}
	}
}
