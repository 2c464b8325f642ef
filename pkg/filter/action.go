package filter

import "ngsFilter/pkg/errs"

// Direction says which way a filter step may move the pass flags.
type Direction int

const (
	// Narrow only clears flags of currently passing records.
	Narrow Direction = iota
	// Rescue only sets flags of currently failing records.
	Rescue
)

type Action string

const (
	ActionRemove Action = "REMOVE"
	ActionFilter Action = "FILTER"
	ActionKeep   Action = "KEEP"
)

func (a Action) Direction() Direction {
	if a == ActionKeep {
		return Rescue
	}
	return Narrow
}

func parseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionRemove, ActionFilter, ActionKeep:
		return a, nil
	default:
		return "", errs.Argument("invalid action '%s'", s)
	}
}

func (b *Base) addAction(defaultAction Action, valid string) {
	b.addParam("action", String, string(defaultAction), "Action to perform", Constraints{"valid": valid})
}

func (b *Base) action() (Action, error) {
	s, err := b.Str("action", true)
	if err != nil {
		return "", err
	}
	return parseAction(s)
}
