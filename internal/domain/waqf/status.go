package waqf

// Status is the waqf lifecycle state. Transitions follow a fixed
// directed graph; anything not listed in statusTransitions is rejected.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusInactive  Status = "inactive"
	StatusArchived  Status = "archived"
)

// statusTransitions maps each state to its allowed successors.
// completed can only be archived; archived is terminal.
var statusTransitions = map[Status][]Status{
	StatusActive:    {StatusPaused, StatusCompleted, StatusInactive, StatusArchived},
	StatusPaused:    {StatusActive, StatusInactive, StatusArchived},
	StatusInactive:  {StatusActive, StatusArchived},
	StatusCompleted: {StatusArchived},
	StatusArchived:  {},
}

func (s Status) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether s -> next is an edge of the
// transition graph. A no-op transition (s == next) is always allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidStatuses returns the allow-list, for error messages.
func ValidStatuses() []Status {
	return []Status{StatusActive, StatusPaused, StatusCompleted, StatusInactive, StatusArchived}
}

// TrancheStatus is the tranche-local state machine:
// locked -> matured (implicit, by time) -> returned | return_scheduled | rolled_over.
type TrancheStatus string

const (
	TrancheLocked          TrancheStatus = "locked"
	TrancheMatured         TrancheStatus = "matured"
	TrancheReturnScheduled TrancheStatus = "return_scheduled"
	TrancheReturned        TrancheStatus = "returned"
	TrancheRolledOver      TrancheStatus = "rolled_over"
)

func (s TrancheStatus) Valid() bool {
	switch s {
	case TrancheLocked, TrancheMatured, TrancheReturnScheduled, TrancheReturned, TrancheRolledOver:
		return true
	}
	return false
}
