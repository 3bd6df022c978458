package statemachine

import (
	"context"
	"fmt"
)

// Table is an immutable set of transitions. It is safe for concurrent use once built.
// Lookups are keyed [from][event] and preserve insertion order for guard branching.
type Table struct {
	transitions map[string]map[string][]Transition
}

// New builds a Table from options.
func New(opts ...Option) (*Table, error) {
	t := &Table{transitions: make(map[string]map[string][]Transition)}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	if len(t.transitions) == 0 {
		return nil, ErrEmptyTable
	}
	return t, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Table {
	t, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("statemachine: failed to build table: %v", err))
	}
	return t
}

func (t *Table) add(tr Transition) error {
	if tr.From == nil || tr.To == nil || tr.Event == nil {
		return ErrInvalidTransition
	}
	from := tr.From.Name()
	if _, ok := t.transitions[from]; !ok {
		t.transitions[from] = make(map[string][]Transition)
	}
	t.transitions[from][tr.Event.Name()] = append(t.transitions[from][tr.Event.Name()], tr)
	return nil
}

// Next returns the state reached from current on event.
// It evaluates guards, runs the winning transition's actions and reports
// a *TransitionError when no transition applies.
func (t *Table) Next(ctx context.Context, current State, event Event, data any) (State, error) {
	tr, err := t.match(ctx, current, event, data)
	if err != nil {
		return nil, err
	}
	for _, action := range tr.Actions {
		if err := action(ctx, current, tr.To, event, data); err != nil {
			return nil, fmt.Errorf("action failed: %w", err)
		}
	}
	return tr.To, nil
}

func (t *Table) match(ctx context.Context, current State, event Event, data any) (*Transition, error) {
	if current == nil {
		return nil, ErrInvalidState
	}
	if event == nil {
		return nil, ErrInvalidEvent
	}

	candidates := t.transitions[current.Name()][event.Name()]
	if len(candidates) == 0 {
		return nil, &TransitionError{State: current.Name(), Event: event.Name()}
	}

	for i := range candidates {
		if guardsPass(ctx, candidates[i], current, event, data) {
			return &candidates[i], nil
		}
	}
	return nil, &TransitionError{State: current.Name(), Event: event.Name(), Rejected: true}
}

func guardsPass(ctx context.Context, tr Transition, current State, event Event, data any) bool {
	for _, guard := range tr.Guards {
		if !guard(ctx, current, event, data) {
			return false
		}
	}
	return true
}
