package game

import (
	"fmt"
	"sort"
)

const (
	EventTypeGameInitialised = "GameInitialised"
	EventTypeActionCommitted = "ActionCommitted"
	EventTypePhaseAdvanced   = "PhaseAdvanced"
	EventTypeActionRevealed  = "ActionRevealed"
	EventTypeTurnFinalised   = "TurnFinalised"
	EventTypeGameFinished    = "GameFinished"
)

type Attribute struct {
	Key   string
	Value string
}

type Event struct {
	Type       string
	Attributes []Attribute
}

// Attr returns the value of the attribute named key, or "".
func (e Event) Attr(key string) string {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// NewEvent builds an event with attributes sorted by key so that emitted
// events are deterministic.
func NewEvent(typ string, attrs map[string]string) Event {
	ev := Event{Type: typ}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev.Attributes = append(ev.Attributes, Attribute{Key: k, Value: attrs[k]})
	}
	return ev
}

// EventManager collects the events emitted while executing one operation.
type EventManager struct {
	events []Event
}

func NewEventManager() *EventManager { return &EventManager{} }

func (em *EventManager) Emit(ev Event) { em.events = append(em.events, ev) }

func (em *EventManager) Events() []Event { return em.events }

func u32(v uint32) string { return fmt.Sprintf("%d", v) }

func i32(v int32) string { return fmt.Sprintf("%d", v) }
