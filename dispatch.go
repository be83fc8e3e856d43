package flicker

import "reflect"

// maxDrainIterations bounds the number of extra drain passes the update
// cycle takes within one frame before rolling remaining messages to the
// next frame, per spec.md §4.7 step 5.
const maxDrainIterations = 64

// Dispatcher routes decoded Events to components, drives the per-frame
// update cycle against a Registry, and forwards commands to a
// CommandExecutor. No teacher file has an equivalent: the teacher routed
// input directly through riffkey's pattern-matching Router rather than
// an Elm-style message queue, so this is grounded on spec.md §4.7's
// procedure directly, using the queue (queue.go) and registry
// (component.go) already in place.
type Dispatcher struct {
	registry Registry
	focus    FocusProvider
	hit      HitTester
	executor CommandExecutor
	queue    *MessageQueue

	shuttingDown bool
	quitReason   string
}

// NewDispatcher wires a Dispatcher against its collaborators.
func NewDispatcher(registry Registry, focus FocusProvider, hit HitTester, executor CommandExecutor, queue *MessageQueue) *Dispatcher {
	return &Dispatcher{registry: registry, focus: focus, hit: hit, executor: executor, queue: queue}
}

// Route classifies one Event per spec.md §4.7 and enqueues the resulting
// message for whichever component(s) it targets. Key and Paste go to the
// focused component; Mouse goes to the component under its coordinates
// or the root; Resize, Focus, and Tick broadcast to every registered
// component.
func (d *Dispatcher) Route(event Event) {
	if d.shuttingDown {
		return
	}
	switch event.Kind {
	case EventKey, EventPaste:
		id, ok := d.focus.FocusedComponent()
		if !ok {
			id = RootComponentID
		}
		d.routeTo(id, event)
	case EventMouse:
		id, ok := d.hit.ComponentAt(event.Y, event.X)
		if !ok {
			id = RootComponentID
		}
		d.routeTo(id, event)
	case EventResize, EventFocus, EventTick:
		for _, id := range d.registry.All() {
			d.routeTo(id, event)
		}
	}
}

// routeTo calls the target component's EventToMsg, following Propagate
// up the parent chain until a Msg, an Ignore, or the root is reached.
func (d *Dispatcher) routeTo(id ComponentID, event Event) {
	for {
		comp, ok := d.registry.Component(id)
		if !ok {
			return
		}
		action := comp.EventToMsg(event, d.registry.State(id))
		switch action.kind {
		case actionMsg:
			d.queue.Enqueue(id, action.msg)
			return
		case actionIgnore:
			return
		case actionPropagate:
			parent, ok := d.registry.Parent(id)
			if !ok {
				return
			}
			id = parent
		default:
			return
		}
	}
}

// RunUpdateCycle drains the queue and applies each message's Update,
// marking dirty on any state change, forwarding Commands, and re-draining
// up to maxDrainIterations times to absorb messages produced mid-cycle
// (e.g. by an executor that delivers results synchronously), per
// spec.md §4.7's update cycle.
// It returns whether any state changed (the caller sets the scheduler's
// dirty flag).
func (d *Dispatcher) RunUpdateCycle() bool {
	dirty := false
	for i := 0; i < maxDrainIterations; i++ {
		batch := d.queue.Drain()
		if len(batch) == 0 {
			break
		}
		for _, rm := range batch {
			if d.applyOne(rm) {
				dirty = true
			}
		}
	}
	return dirty
}

func (d *Dispatcher) applyOne(rm routedMessage) bool {
	comp, ok := d.registry.Component(rm.ComponentID)
	if !ok {
		return false
	}
	oldState := d.registry.State(rm.ComponentID)
	newState, cmds := comp.Update(rm.Msg, oldState)
	// Component state is any; a slice/map/func-backed model makes == panic,
	// so dirtiness is judged with a comparison that never panics.
	changed := !reflect.DeepEqual(newState, oldState)
	if changed {
		d.registry.SetState(rm.ComponentID, newState)
	}

	for _, cmd := range cmds {
		d.handleCommand(rm.ComponentID, cmd)
	}
	return changed
}

func (d *Dispatcher) handleCommand(origin ComponentID, cmd Command) {
	if d.shuttingDown {
		return
	}
	switch c := cmd.(type) {
	case Quit:
		d.shuttingDown = true
		d.quitReason = c.Reason
	default:
		if d.executor != nil {
			d.executor.Execute(origin, cmd, func(target ComponentID, msg Message) {
				if !d.shuttingDown {
					d.queue.Enqueue(target, msg)
				}
			})
		}
	}
}

// ShuttingDown reports whether a Quit command has been processed. New
// event ingestion should stop once this is true; the current cycle is
// still allowed to complete (spec.md §4.7, Cancellation).
func (d *Dispatcher) ShuttingDown() bool { return d.shuttingDown }

// QuitReason returns the reason passed to the Quit command that
// triggered shutdown, if any.
func (d *Dispatcher) QuitReason() string { return d.quitReason }
