package domain

// Action represents an intended operation on a donation request
type Action string

const (
	ActionViewAny       Action = "VIEW_ANY"
	ActionCreate        Action = "CREATE"
	ActionDonate        Action = "DONATE"
	ActionEditFields    Action = "EDIT_FIELDS"
	ActionDelete        Action = "DELETE"
	ActionAdvanceStatus Action = "ADVANCE_STATUS"
)

// DenyReason explains a rejected decision
type DenyReason string

const (
	ReasonAccountBlocked    DenyReason = "ACCOUNT_BLOCKED"
	ReasonNotPermitted      DenyReason = "NOT_PERMITTED"
	ReasonInvalidTransition DenyReason = "INVALID_TRANSITION"
	ReasonConflictingState  DenyReason = "CONFLICTING_STATE"
)

// Decision is the policy's answer for one attempted action
type Decision struct {
	Allowed bool       `json:"allowed"`
	Reason  DenyReason `json:"reason,omitempty"`
}

func allowed() Decision          { return Decision{Allowed: true} }
func deny(r DenyReason) Decision { return Decision{Allowed: false, Reason: r} }

func denyErr(err error) Decision {
	switch err {
	case ErrConflictingState:
		return deny(ReasonConflictingState)
	case ErrInvalidTransition, ErrInvalidStatus:
		return deny(ReasonInvalidTransition)
	default:
		return deny(ReasonNotPermitted)
	}
}

// Err maps a denied decision back onto the error taxonomy
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonAccountBlocked:
		return ErrAccountBlocked
	case ReasonInvalidTransition:
		return ErrInvalidTransition
	case ReasonConflictingState:
		return ErrConflictingState
	default:
		return ErrNotPermitted
	}
}

// AuthzInput bundles everything the policy decides over
type AuthzInput struct {
	Actor   Actor
	Request RequestSnapshot
	Action  Action
	Target  RequestStatus // only for ActionAdvanceStatus
}

// Authorize decides whether the actor may perform the intended action on the
// request. Pure function, no side effects; first matching rule wins:
//
//  1. blocked account short-circuits every mutating action
//  2. viewAny is universal for authenticated actors
//  3. create: donors only
//  4. donate: donor, not the requester, request still pending and unassigned
//  5. editFields: admin (non-terminal), or owner while pending
//  6. delete: admin, or owner while pending/canceled
//  7. advanceStatus: delegate to the transition table preconditions;
//     volunteers get this action only
//  8. default deny
func Authorize(in AuthzInput) Decision {
	if in.Action == ActionViewAny {
		return allowed()
	}
	if in.Actor.IsBlocked() {
		return deny(ReasonAccountBlocked)
	}

	switch in.Action {
	case ActionCreate:
		if in.Actor.Role == RoleDonor {
			return allowed()
		}
		return deny(ReasonNotPermitted)

	case ActionDonate:
		if in.Actor.Role != RoleDonor {
			return deny(ReasonNotPermitted)
		}
		if in.Actor.Owns(in.Request) {
			return deny(ReasonNotPermitted)
		}
		if _, err := Apply(in.Request, EventDonate); err != nil {
			return denyErr(err)
		}
		return allowed()

	case ActionEditFields:
		if in.Actor.Role == RoleAdmin {
			if in.Request.Status.Terminal() {
				return deny(ReasonInvalidTransition)
			}
			return allowed()
		}
		if in.Actor.Owns(in.Request) && in.Request.Status == StatusPending {
			return allowed()
		}
		return deny(ReasonNotPermitted)

	case ActionDelete:
		if in.Actor.Role == RoleAdmin {
			return allowed()
		}
		if in.Actor.Owns(in.Request) &&
			(in.Request.Status == StatusPending || in.Request.Status == StatusCanceled) {
			return allowed()
		}
		return deny(ReasonNotPermitted)

	case ActionAdvanceStatus:
		return authorizeAdvance(in)
	}

	return deny(ReasonNotPermitted)
}

// authorizeAdvance gates advanceStatus(target) by the transition table's
// precondition column.
func authorizeAdvance(in AuthzInput) Decision {
	// terminal states absorb every attempt, whoever asks
	if in.Request.Status.Terminal() {
		return deny(ReasonInvalidTransition)
	}

	ev, err := EventForTarget(in.Target)
	if err != nil {
		return denyErr(err)
	}

	switch ev {
	case EventDonate:
		// advancing to in-progress is the donor commit flow
		return Authorize(AuthzInput{Actor: in.Actor, Request: in.Request, Action: ActionDonate})

	case EventCancel:
		if in.Request.Status == StatusPending {
			// pending cancel: owner or admin only
			if in.Actor.Role == RoleAdmin || in.Actor.Owns(in.Request) {
				return allowed()
			}
			return deny(ReasonNotPermitted)
		}
	}

	// in-progress edges: assigned donor, owner, admin or volunteer
	if in.Actor.Role == RoleAdmin || in.Actor.Role == RoleVolunteer ||
		in.Actor.Owns(in.Request) || in.Actor.IsAssignedDonor(in.Request) {
		if _, err := Apply(in.Request, ev); err != nil {
			return denyErr(err)
		}
		return allowed()
	}
	return deny(ReasonNotPermitted)
}
