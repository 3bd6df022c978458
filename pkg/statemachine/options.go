package statemachine

// Option configures a Table during construction.
type Option func(*Table) error

// TransitionOption configures guards and actions of a single transition.
type TransitionOption func(*Transition)

// WithTransition adds a transition from -> to on event.
func WithTransition(from, to State, event Event, opts ...TransitionOption) Option {
	return func(t *Table) error {
		tr := Transition{From: from, To: to, Event: event}
		for _, opt := range opts {
			opt(&tr)
		}
		return t.add(tr)
	}
}

// WithGuard appends a guard. Nil guards are ignored.
func WithGuard(guard Guard) TransitionOption {
	return func(tr *Transition) {
		if guard != nil {
			tr.Guards = append(tr.Guards, guard)
		}
	}
}

// WithAction appends an action. Nil actions are ignored.
func WithAction(action Action) TransitionOption {
	return func(tr *Transition) {
		if action != nil {
			tr.Actions = append(tr.Actions, action)
		}
	}
}
