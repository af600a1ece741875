package scheduling

import "github.com/clinicboard/clinicboard/services/clinic-service/internal/model"

// TransitionPolicy decides whether a status change is legal. The engine
// validates the target value against the enum before consulting the
// policy, so implementations only see defined statuses.
type TransitionPolicy interface {
	Allowed(from, to model.Status) bool
}

type allowAll struct{}

func (allowAll) Allowed(_, _ model.Status) bool { return true }

// AllowAllTransitions permits any status to move to any other status.
// This is the default policy.
func AllowAllTransitions() TransitionPolicy { return allowAll{} }

// GraphPolicy permits only the listed transitions. A status moving to
// itself is always allowed.
type GraphPolicy map[model.Status][]model.Status

func (g GraphPolicy) Allowed(from, to model.Status) bool {
	if from == to {
		return true
	}
	for _, next := range g[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StrictTransitions is a conventional clinical flow: forward progress
// plus cancellation, with completed as a terminal state.
func StrictTransitions() GraphPolicy {
	return GraphPolicy{
		model.StatusScheduled: {model.StatusConfirmed, model.StatusCompleted, model.StatusCancelled, model.StatusNoShow},
		model.StatusConfirmed: {model.StatusCompleted, model.StatusCancelled, model.StatusNoShow},
		model.StatusCancelled: {model.StatusScheduled},
		model.StatusNoShow:    {model.StatusScheduled},
	}
}
