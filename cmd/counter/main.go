// Command counter is a minimal flicker demo: arrow keys increment and
// decrement a number, q quits.
package main

import (
	"fmt"
	"log"
	"os"

	"flicker"
)

type counterState struct {
	value int
}

type incMsg struct{ delta int }

type counterComponent struct{}

func (counterComponent) EventToMsg(event flicker.Event, state any) flicker.EventAction {
	if event.Kind != flicker.EventKey {
		return flicker.Ignore()
	}
	switch event.Key {
	case flicker.KeyUp:
		return flicker.Msg(incMsg{delta: 1})
	case flicker.KeyDown:
		return flicker.Msg(incMsg{delta: -1})
	case flicker.KeyRune:
		if event.Char == 'q' {
			return flicker.Msg(incMsg{delta: 0})
		}
	}
	return flicker.Ignore()
}

func (counterComponent) Update(msg flicker.Message, state any) (any, []flicker.Command) {
	s := state.(counterState)
	m, ok := msg.(incMsg)
	if !ok {
		return s, nil
	}
	if m.delta == 0 {
		return s, []flicker.Command{flicker.Quit{Reason: "user requested quit"}}
	}
	s.value += m.delta
	return s, nil
}

func (counterComponent) View(state any) flicker.RenderTree {
	s := state.(counterState)
	return fmt.Sprintf("count: %d  (up/down to change, q to quit)", s.value)
}

// textFlattener writes its RenderTree string starting at the area's
// top-left corner, one cell per rune.
type textFlattener struct{}

func (textFlattener) Flatten(tree flicker.RenderTree, area flicker.Rect, yield func(row, col int, cell flicker.Cell)) {
	text, ok := tree.(string)
	if !ok {
		return
	}
	col := area.Col
	for _, r := range text {
		yield(area.Row, col, flicker.Cell{Grapheme: r, Style: flicker.DefaultStyle()})
		col++
	}
}

// singleRegistry holds exactly one component: the root.
type singleRegistry struct {
	comp  flicker.Component
	state any
}

func (r *singleRegistry) Component(id flicker.ComponentID) (flicker.Component, bool) {
	if id != flicker.RootComponentID {
		return nil, false
	}
	return r.comp, true
}
func (r *singleRegistry) State(id flicker.ComponentID) any { return r.state }
func (r *singleRegistry) SetState(id flicker.ComponentID, state any) {
	if id == flicker.RootComponentID {
		r.state = state
	}
}
func (r *singleRegistry) Parent(id flicker.ComponentID) (flicker.ComponentID, bool) { return 0, false }
func (r *singleRegistry) All() []flicker.ComponentID                               { return []flicker.ComponentID{flicker.RootComponentID} }

type rootFocus struct{}

func (rootFocus) FocusedComponent() (flicker.ComponentID, bool) { return flicker.RootComponentID, true }

type rootHit struct{}

func (rootHit) ComponentAt(row, col int) (flicker.ComponentID, bool) { return flicker.RootComponentID, true }

func main() {
	logger, closeLog, err := flicker.LogToFile(os.TempDir()+"/flicker-counter.log", "counter: ")
	if err != nil {
		log.Fatal(err)
	}
	defer closeLog()

	registry := &singleRegistry{comp: counterComponent{}, state: counterState{}}
	cfg := flicker.DefaultConfig()
	rt := flicker.NewRuntime(cfg, registry, rootFocus{}, rootHit{}, textFlattener{}, nil, logger)
	if err := rt.Run(); err != nil {
		log.Fatal(err)
	}
}
