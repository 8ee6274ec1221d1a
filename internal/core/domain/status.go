package domain

// RequestStatus represents the lifecycle state of a donation request
type RequestStatus string

const (
	StatusPending    RequestStatus = "PENDING"
	StatusInProgress RequestStatus = "INPROGRESS"
	StatusDone       RequestStatus = "DONE"
	StatusCanceled   RequestStatus = "CANCELED"
)

// Valid reports whether s is a known status
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no transition is defined out of s
func (s RequestStatus) Terminal() bool {
	return s == StatusDone || s == StatusCanceled
}

// Event represents a state machine event on a donation request
type Event string

const (
	EventDonate   Event = "DONATE"   // a donor commits to donate
	EventComplete Event = "COMPLETE" // mark the donation done
	EventCancel   Event = "CANCEL"   // cancel the request
)

// Transition is the state machine's answer for one accepted event
type Transition struct {
	Next               RequestStatus
	ClearAssignedDonor bool
}

type outcome struct {
	next  RequestStatus
	clear bool
	err   error
}

func step(next RequestStatus) outcome         { return outcome{next: next} }
func stepClearing(next RequestStatus) outcome { return outcome{next: next, clear: true} }
func reject(err error) outcome                { return outcome{err: err} }

func terminalRow() map[Event]outcome {
	return map[Event]outcome{
		EventDonate:   reject(ErrInvalidTransition),
		EventComplete: reject(ErrInvalidTransition),
		EventCancel:   reject(ErrInvalidTransition),
	}
}

// transitionTable defines an explicit outcome for every status×event pair.
// Donating to an in-progress request is a lost race, not an unreachable edge,
// so it rejects with ErrConflictingState rather than ErrInvalidTransition.
var transitionTable = map[RequestStatus]map[Event]outcome{
	StatusPending: {
		EventDonate:   step(StatusInProgress),
		EventComplete: reject(ErrInvalidTransition),
		EventCancel:   step(StatusCanceled),
	},
	StatusInProgress: {
		EventDonate:   reject(ErrConflictingState),
		EventComplete: step(StatusDone),
		EventCancel:   stepClearing(StatusCanceled),
	},
	StatusDone:     terminalRow(),
	StatusCanceled: terminalRow(),
}

// Apply runs one event against a request snapshot and returns the resulting
// transition. It is the single authority on which status edges exist.
func Apply(r RequestSnapshot, ev Event) (Transition, error) {
	row, ok := transitionTable[r.Status]
	if !ok {
		return Transition{}, ErrInvalidStatus
	}
	out, ok := row[ev]
	if !ok {
		return Transition{}, ErrInvalidTransition
	}
	if out.err != nil {
		return Transition{}, out.err
	}
	if ev == EventDonate && r.AssignedDonorID != nil {
		return Transition{}, ErrConflictingState
	}
	return Transition{Next: out.next, ClearAssignedDonor: out.clear}, nil
}

// EventForTarget maps a requested target status onto the event that reaches it
func EventForTarget(target RequestStatus) (Event, error) {
	switch target {
	case StatusInProgress:
		return EventDonate, nil
	case StatusDone:
		return EventComplete, nil
	case StatusCanceled:
		return EventCancel, nil
	default:
		return "", ErrInvalidTransition
	}
}
