package domain

import "errors"

// Decision errors - every rejection of the policy or the state machine is one
// of these four. All are non-fatal and leave actor/request state unchanged.
var (
	ErrAccountBlocked    = errors.New("account is blocked")
	ErrNotPermitted      = errors.New("action not permitted")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflictingState  = errors.New("request state has changed")
)

// Request errors
var (
	ErrRequestNotFound   = errors.New("donation request not found")
	ErrInvalidStatus     = errors.New("invalid request status")
	ErrInvalidBloodGroup = errors.New("invalid blood group")
	ErrScheduleInPast    = errors.New("scheduled time is in the past")
)

// User errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidRole       = errors.New("invalid role")
)

// Fund errors
var (
	ErrFundNotFound = errors.New("fund record not found")
)
