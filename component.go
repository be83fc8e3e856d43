package flicker

// ComponentID identifies one component instance within a running
// application. The zero value, RootComponentID, names the root.
type ComponentID int

// RootComponentID is the implicit top-level component that broadcast
// events and unrouted mouse events fall back to.
const RootComponentID ComponentID = 0

// EventAction is what a component's EventToMsg decides to do with a raw
// Event, per spec.md §4.7.
type EventAction struct {
	kind eventActionKind
	msg  Message
}

type eventActionKind int

const (
	actionIgnore eventActionKind = iota
	actionMsg
	actionPropagate
)

// Msg wraps m as the result of handling an event.
func Msg(m Message) EventAction { return EventAction{kind: actionMsg, msg: m} }

// Ignore drops the event with no effect.
func Ignore() EventAction { return EventAction{kind: actionIgnore} }

// Propagate sends the event to the component's parent, per the registry
// collaborator's parent lookup.
func Propagate() EventAction { return EventAction{kind: actionPropagate} }

// RenderTree is the component's declarative view output. Its concrete
// shape belongs to the external layout/widget layer (out of scope here,
// spec.md §1); the core only consumes it through a Flattener.
type RenderTree any

// Component is the Elm-architecture unit the dispatcher drives:
// EventToMsg classifies raw input into a Message (or ignores/propagates
// it), Update is a pure state transition producing commands, and View
// renders the current state into a RenderTree for flattening onto the
// grid. Mount/Unmount are optional lifecycle hooks.
type Component interface {
	EventToMsg(event Event, state any) EventAction
	Update(msg Message, state any) (any, []Command)
	View(state any) RenderTree
}

// Mounter is an optional Component extension invoked when a component
// joins the registry.
type Mounter interface {
	Mount(state any) any
}

// Unmounter is an optional Component extension invoked when a component
// leaves the registry.
type Unmounter interface {
	Unmount(state any)
}

// FocusProvider answers which component currently has keyboard/paste
// focus, per spec.md §6.
type FocusProvider interface {
	FocusedComponent() (ComponentID, bool)
}

// HitTester answers which component occupies a screen coordinate, per
// spec.md §6. Coordinates are 1-indexed grid positions.
type HitTester interface {
	ComponentAt(row, col int) (ComponentID, bool)
}

// Registry is the component update/view table plus parent lookup the
// dispatcher consults (spec.md §6, §9's "global supervisor" redesign
// note): a single registry owns every component's identity, state, and
// tree position instead of a teacher-style Container hierarchy walked by
// pointer.
type Registry interface {
	Component(id ComponentID) (Component, bool)
	State(id ComponentID) any
	SetState(id ComponentID, state any)
	Parent(id ComponentID) (ComponentID, bool)
	All() []ComponentID
}

// Flattener turns a component's RenderTree into grid writes for an area.
// Its implementation lives in the external layout layer; flicker only
// calls it and writes the yielded cells (spec.md §6).
type Flattener interface {
	Flatten(tree RenderTree, area Rect, yield func(row, col int, cell Cell))
}

// Rect is a grid area in 1-indexed, inclusive coordinates.
type Rect struct {
	Row, Col      int
	Height, Width int
}

// CommandExecutor runs non-Quit commands (Task, After, and any custom
// command) and reports their result back to the originating component,
// per spec.md §4.7 step 4. DefaultExecutor runs Task and After
// asynchronously and ignores other commands; applications with custom
// commands implement this themselves.
type CommandExecutor interface {
	Execute(origin ComponentID, cmd Command, deliver func(ComponentID, Message))
}
