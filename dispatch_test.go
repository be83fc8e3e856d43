package flicker

import "testing"

type dispatchTestComponent struct {
	toMsg func(event Event, state any) EventAction
	update func(msg Message, state any) (any, []Command)
}

func (c *dispatchTestComponent) EventToMsg(event Event, state any) EventAction {
	if c.toMsg == nil {
		return Ignore()
	}
	return c.toMsg(event, state)
}

func (c *dispatchTestComponent) Update(msg Message, state any) (any, []Command) {
	if c.update == nil {
		return state, nil
	}
	return c.update(msg, state)
}

func (c *dispatchTestComponent) View(state any) RenderTree { return nil }

type fakeRegistry struct {
	comps   map[ComponentID]Component
	states  map[ComponentID]any
	parents map[ComponentID]ComponentID
	order   []ComponentID
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		comps:   make(map[ComponentID]Component),
		states:  make(map[ComponentID]any),
		parents: make(map[ComponentID]ComponentID),
	}
}

func (r *fakeRegistry) add(id ComponentID, c Component, state any) {
	r.comps[id] = c
	r.states[id] = state
	r.order = append(r.order, id)
}

func (r *fakeRegistry) Component(id ComponentID) (Component, bool) { c, ok := r.comps[id]; return c, ok }
func (r *fakeRegistry) State(id ComponentID) any                   { return r.states[id] }
func (r *fakeRegistry) SetState(id ComponentID, state any)         { r.states[id] = state }
func (r *fakeRegistry) Parent(id ComponentID) (ComponentID, bool) {
	p, ok := r.parents[id]
	return p, ok
}
func (r *fakeRegistry) All() []ComponentID { return r.order }

type fakeFocus struct{ id ComponentID }

func (f fakeFocus) FocusedComponent() (ComponentID, bool) { return f.id, true }

type fakeHit struct{ id ComponentID }

func (f fakeHit) ComponentAt(row, col int) (ComponentID, bool) { return f.id, true }

func TestDispatcherRoutesKeyToFocused(t *testing.T) {
	reg := newFakeRegistry()
	const target ComponentID = 5
	comp := &dispatchTestComponent{
		toMsg: func(event Event, state any) EventAction { return Msg("got-key") },
	}
	reg.add(target, comp, 0)

	queue := NewMessageQueue(10)
	d := NewDispatcher(reg, fakeFocus{target}, fakeHit{target}, nil, queue)
	d.Route(Event{Kind: EventKey, Key: KeyRune, Char: 'x'})

	batch := queue.Drain()
	if len(batch) != 1 || batch[0].ComponentID != target || batch[0].Msg != "got-key" {
		t.Fatalf("unexpected queue contents: %+v", batch)
	}
}

func TestDispatcherRoutesMouseToHitComponent(t *testing.T) {
	reg := newFakeRegistry()
	const target ComponentID = 7
	comp := &dispatchTestComponent{toMsg: func(event Event, state any) EventAction { return Msg("click") }}
	reg.add(target, comp, 0)

	queue := NewMessageQueue(10)
	d := NewDispatcher(reg, fakeFocus{RootComponentID}, fakeHit{target}, nil, queue)
	d.Route(Event{Kind: EventMouse, X: 3, Y: 4})

	batch := queue.Drain()
	if len(batch) != 1 || batch[0].ComponentID != target {
		t.Fatalf("unexpected queue contents: %+v", batch)
	}
}

func TestDispatcherBroadcastsResize(t *testing.T) {
	reg := newFakeRegistry()
	var seen []ComponentID
	for _, id := range []ComponentID{1, 2, 3} {
		id := id
		comp := &dispatchTestComponent{toMsg: func(event Event, state any) EventAction {
			seen = append(seen, id)
			return Msg("resized")
		}}
		reg.add(id, comp, 0)
	}
	queue := NewMessageQueue(10)
	d := NewDispatcher(reg, fakeFocus{RootComponentID}, fakeHit{RootComponentID}, nil, queue)
	d.Route(Event{Kind: EventResize, Rows: 24, Cols: 80})

	if len(seen) != 3 {
		t.Fatalf("expected broadcast to all 3 components, got %d", len(seen))
	}
	if queue.Len() != 3 {
		t.Fatalf("expected 3 queued messages, got %d", queue.Len())
	}
}

func TestDispatcherPropagatesToParent(t *testing.T) {
	reg := newFakeRegistry()
	const child, parent ComponentID = 1, 2
	childComp := &dispatchTestComponent{toMsg: func(event Event, state any) EventAction { return Propagate() }}
	parentComp := &dispatchTestComponent{toMsg: func(event Event, state any) EventAction { return Msg("parent-handled") }}
	reg.add(child, childComp, 0)
	reg.add(parent, parentComp, 0)
	reg.parents[child] = parent

	queue := NewMessageQueue(10)
	d := NewDispatcher(reg, fakeFocus{child}, fakeHit{child}, nil, queue)
	d.Route(Event{Kind: EventKey, Key: KeyEscape})

	batch := queue.Drain()
	if len(batch) != 1 || batch[0].ComponentID != parent || batch[0].Msg != "parent-handled" {
		t.Fatalf("unexpected queue contents: %+v", batch)
	}
}

func TestRunUpdateCycleAppliesAndMarksDirty(t *testing.T) {
	reg := newFakeRegistry()
	comp := &dispatchTestComponent{
		update: func(msg Message, state any) (any, []Command) { return state.(int) + 1, nil },
	}
	reg.add(RootComponentID, comp, 0)

	queue := NewMessageQueue(10)
	queue.Enqueue(RootComponentID, "inc")
	d := NewDispatcher(reg, fakeFocus{RootComponentID}, fakeHit{RootComponentID}, nil, queue)

	dirty := d.RunUpdateCycle()
	if !dirty {
		t.Fatal("expected dirty after a state change")
	}
	if reg.State(RootComponentID) != 1 {
		t.Fatalf("expected state 1, got %v", reg.State(RootComponentID))
	}
}

func TestRunUpdateCycleNoChangeNotDirty(t *testing.T) {
	reg := newFakeRegistry()
	comp := &dispatchTestComponent{}
	reg.add(RootComponentID, comp, 0)

	queue := NewMessageQueue(10)
	queue.Enqueue(RootComponentID, "noop")
	d := NewDispatcher(reg, fakeFocus{RootComponentID}, fakeHit{RootComponentID}, nil, queue)

	if d.RunUpdateCycle() {
		t.Fatal("expected no dirty flag when state is unchanged")
	}
}

func TestQuitCommandFreezesShutdown(t *testing.T) {
	reg := newFakeRegistry()
	comp := &dispatchTestComponent{
		update: func(msg Message, state any) (any, []Command) {
			return state, []Command{Quit{Reason: "done"}}
		},
	}
	reg.add(RootComponentID, comp, 0)

	queue := NewMessageQueue(10)
	queue.Enqueue(RootComponentID, "quit-please")
	d := NewDispatcher(reg, fakeFocus{RootComponentID}, fakeHit{RootComponentID}, nil, queue)
	d.RunUpdateCycle()

	if !d.ShuttingDown() {
		t.Fatal("expected ShuttingDown to be true")
	}
	if d.QuitReason() != "done" {
		t.Fatalf("unexpected quit reason: %q", d.QuitReason())
	}

	d.Route(Event{Kind: EventKey, Key: KeyRune, Char: 'z'})
	if queue.Len() != 0 {
		t.Fatal("expected no new events to be routed once shutting down")
	}
}

func TestRunUpdateCycleHandlesSliceBackedState(t *testing.T) {
	reg := newFakeRegistry()
	comp := &dispatchTestComponent{
		update: func(msg Message, state any) (any, []Command) {
			items := append([]string(nil), state.([]string)...)
			return append(items, msg.(string)), nil
		},
	}
	reg.add(RootComponentID, comp, []string{"a"})

	queue := NewMessageQueue(10)
	queue.Enqueue(RootComponentID, "b")
	d := NewDispatcher(reg, fakeFocus{RootComponentID}, fakeHit{RootComponentID}, nil, queue)

	if !d.RunUpdateCycle() {
		t.Fatal("expected dirty after appending to slice-backed state")
	}
	got := reg.State(RootComponentID).([]string)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected state: %+v", got)
	}
}

func TestRunUpdateCycleMapBackedStateNoChangeNotDirty(t *testing.T) {
	reg := newFakeRegistry()
	comp := &dispatchTestComponent{
		update: func(msg Message, state any) (any, []Command) {
			return map[string]int{"count": 1}, nil
		},
	}
	reg.add(RootComponentID, comp, map[string]int{"count": 1})

	queue := NewMessageQueue(10)
	queue.Enqueue(RootComponentID, "noop")
	d := NewDispatcher(reg, fakeFocus{RootComponentID}, fakeHit{RootComponentID}, nil, queue)

	if d.RunUpdateCycle() {
		t.Fatal("expected no dirty flag for an equal map-backed state")
	}
}

type recordingExecutor struct {
	executed []Command
}

func (e *recordingExecutor) Execute(origin ComponentID, cmd Command, deliver func(ComponentID, Message)) {
	e.executed = append(e.executed, cmd)
	deliver(origin, "delivered")
}

func TestNonQuitCommandGoesToExecutor(t *testing.T) {
	reg := newFakeRegistry()
	comp := &dispatchTestComponent{
		update: func(msg Message, state any) (any, []Command) {
			if msg == "go" {
				return state, []Command{After{}}
			}
			return state, nil
		},
	}
	reg.add(RootComponentID, comp, 0)

	queue := NewMessageQueue(10)
	queue.Enqueue(RootComponentID, "go")
	exec := &recordingExecutor{}
	d := NewDispatcher(reg, fakeFocus{RootComponentID}, fakeHit{RootComponentID}, exec, queue)
	d.RunUpdateCycle()

	if len(exec.executed) != 1 {
		t.Fatalf("expected the executor to run once, got %d", len(exec.executed))
	}
}
