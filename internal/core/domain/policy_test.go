package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func donor(id uint) Actor     { return Actor{ID: id, Role: RoleDonor, Status: AccountActive} }
func volunteer(id uint) Actor { return Actor{ID: id, Role: RoleVolunteer, Status: AccountActive} }
func admin(id uint) Actor     { return Actor{ID: id, Role: RoleAdmin, Status: AccountActive} }

func blocked(a Actor) Actor {
	a.Status = AccountBlocked
	return a
}

func pendingRequest(requesterID uint) RequestSnapshot {
	return RequestSnapshot{ID: 10, RequesterID: requesterID, Status: StatusPending}
}

func inProgressRequest(requesterID, donorID uint) RequestSnapshot {
	return RequestSnapshot{ID: 10, RequesterID: requesterID, Status: StatusInProgress, AssignedDonorID: &donorID}
}

func TestAuthorizeViewAny(t *testing.T) {
	// read access is universal, even for blocked accounts
	for _, actor := range []Actor{donor(1), volunteer(2), admin(3), blocked(donor(4))} {
		d := Authorize(AuthzInput{Actor: actor, Action: ActionViewAny})
		assert.True(t, d.Allowed, "role=%s status=%s", actor.Role, actor.Status)
	}
}

func TestAuthorizeBlockedShortCircuit(t *testing.T) {
	request := pendingRequest(1)
	actions := []Action{ActionCreate, ActionDonate, ActionEditFields, ActionDelete, ActionAdvanceStatus}

	for _, action := range actions {
		d := Authorize(AuthzInput{
			Actor:   blocked(admin(1)),
			Request: request,
			Action:  action,
			Target:  StatusCanceled,
		})
		assert.False(t, d.Allowed, "action=%s", action)
		assert.Equal(t, ReasonAccountBlocked, d.Reason, "action=%s", action)
		assert.ErrorIs(t, d.Err(), ErrAccountBlocked, "action=%s", action)
	}
}

func TestAuthorizeCreate(t *testing.T) {
	tests := []struct {
		name    string
		actor   Actor
		allowed bool
	}{
		{"donor may create", donor(1), true},
		{"volunteer may not create", volunteer(2), false},
		{"admin may not create", admin(3), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Authorize(AuthzInput{Actor: tt.actor, Action: ActionCreate})
			assert.Equal(t, tt.allowed, d.Allowed)
			if !tt.allowed {
				assert.Equal(t, ReasonNotPermitted, d.Reason)
			}
		})
	}
}

func TestAuthorizeDonate(t *testing.T) {
	tests := []struct {
		name       string
		actor      Actor
		request    RequestSnapshot
		allowed    bool
		wantReason DenyReason
	}{
		{
			name:    "donor may donate to a pending request",
			actor:   donor(5),
			request: pendingRequest(1),
			allowed: true,
		},
		{
			name:       "requester may not donate to own request",
			actor:      donor(1),
			request:    pendingRequest(1),
			wantReason: ReasonNotPermitted,
		},
		{
			name:       "volunteer may not donate",
			actor:      volunteer(5),
			request:    pendingRequest(1),
			wantReason: ReasonNotPermitted,
		},
		{
			name:       "admin may not donate",
			actor:      admin(5),
			request:    pendingRequest(1),
			wantReason: ReasonNotPermitted,
		},
		{
			name:       "donate to in-progress request is a conflict",
			actor:      donor(5),
			request:    inProgressRequest(1, 6),
			wantReason: ReasonConflictingState,
		},
		{
			name:       "donate to done request is invalid",
			actor:      donor(5),
			request:    RequestSnapshot{ID: 10, RequesterID: 1, Status: StatusDone},
			wantReason: ReasonInvalidTransition,
		},
		{
			name:       "donate to canceled request is invalid",
			actor:      donor(5),
			request:    RequestSnapshot{ID: 10, RequesterID: 1, Status: StatusCanceled},
			wantReason: ReasonInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Authorize(AuthzInput{Actor: tt.actor, Request: tt.request, Action: ActionDonate})
			assert.Equal(t, tt.allowed, d.Allowed)
			if !tt.allowed {
				assert.Equal(t, tt.wantReason, d.Reason)
			}
		})
	}
}

func TestAuthorizeEditFields(t *testing.T) {
	tests := []struct {
		name       string
		actor      Actor
		request    RequestSnapshot
		allowed    bool
		wantReason DenyReason
	}{
		{
			name:    "owner may edit while pending",
			actor:   donor(1),
			request: pendingRequest(1),
			allowed: true,
		},
		{
			name:       "owner may not edit once in progress",
			actor:      donor(1),
			request:    inProgressRequest(1, 6),
			wantReason: ReasonNotPermitted,
		},
		{
			name:    "admin may edit while in progress",
			actor:   admin(9),
			request: inProgressRequest(1, 6),
			allowed: true,
		},
		{
			name:       "admin may not edit a done request",
			actor:      admin(9),
			request:    RequestSnapshot{ID: 10, RequesterID: 1, Status: StatusDone},
			wantReason: ReasonInvalidTransition,
		},
		{
			name:       "volunteer may never edit fields",
			actor:      volunteer(9),
			request:    pendingRequest(1),
			wantReason: ReasonNotPermitted,
		},
		{
			name:       "unrelated donor may not edit",
			actor:      donor(5),
			request:    pendingRequest(1),
			wantReason: ReasonNotPermitted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Authorize(AuthzInput{Actor: tt.actor, Request: tt.request, Action: ActionEditFields})
			assert.Equal(t, tt.allowed, d.Allowed)
			if !tt.allowed {
				assert.Equal(t, tt.wantReason, d.Reason)
			}
		})
	}
}

func TestAuthorizeDelete(t *testing.T) {
	tests := []struct {
		name    string
		actor   Actor
		request RequestSnapshot
		allowed bool
	}{
		{"admin may delete anywhere", admin(9), inProgressRequest(1, 6), true},
		{"owner may delete while pending", donor(1), pendingRequest(1), true},
		{
			"owner may delete when canceled",
			donor(1),
			RequestSnapshot{ID: 10, RequesterID: 1, Status: StatusCanceled},
			true,
		},
		{"owner may not delete while in progress", donor(1), inProgressRequest(1, 6), false},
		{"volunteer may not delete", volunteer(9), pendingRequest(1), false},
		{"unrelated donor may not delete", donor(5), pendingRequest(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Authorize(AuthzInput{Actor: tt.actor, Request: tt.request, Action: ActionDelete})
			assert.Equal(t, tt.allowed, d.Allowed)
		})
	}
}

func TestAuthorizeAdvanceStatus(t *testing.T) {
	tests := []struct {
		name       string
		actor      Actor
		request    RequestSnapshot
		target     RequestStatus
		allowed    bool
		wantReason DenyReason
	}{
		{
			name:    "volunteer completes an in-progress request",
			actor:   volunteer(9),
			request: inProgressRequest(1, 6),
			target:  StatusDone,
			allowed: true,
		},
		{
			name:    "assigned donor completes the donation",
			actor:   donor(6),
			request: inProgressRequest(1, 6),
			target:  StatusDone,
			allowed: true,
		},
		{
			name:    "owner cancels a pending request",
			actor:   donor(1),
			request: pendingRequest(1),
			target:  StatusCanceled,
			allowed: true,
		},
		{
			name:       "volunteer may not cancel a pending request",
			actor:      volunteer(9),
			request:    pendingRequest(1),
			target:     StatusCanceled,
			wantReason: ReasonNotPermitted,
		},
		{
			name:    "admin cancels a pending request",
			actor:   admin(9),
			request: pendingRequest(1),
			target:  StatusCanceled,
			allowed: true,
		},
		{
			name:    "owner cancels an in-progress request",
			actor:   donor(1),
			request: inProgressRequest(1, 6),
			target:  StatusCanceled,
			allowed: true,
		},
		{
			name:       "pending cannot advance straight to done",
			actor:      admin(9),
			request:    pendingRequest(1),
			target:     StatusDone,
			wantReason: ReasonInvalidTransition,
		},
		{
			name:       "terminal request rejects any advance, even by admin",
			actor:      admin(9),
			request:    RequestSnapshot{ID: 10, RequesterID: 1, Status: StatusCanceled},
			target:     StatusDone,
			wantReason: ReasonInvalidTransition,
		},
		{
			name:    "advancing to in-progress is the donate flow",
			actor:   donor(5),
			request: pendingRequest(1),
			target:  StatusInProgress,
			allowed: true,
		},
		{
			name:       "volunteer advancing to in-progress is denied like donate",
			actor:      volunteer(9),
			request:    pendingRequest(1),
			target:     StatusInProgress,
			wantReason: ReasonNotPermitted,
		},
		{
			name:       "unrelated donor may not complete",
			actor:      donor(5),
			request:    inProgressRequest(1, 6),
			target:     StatusDone,
			wantReason: ReasonNotPermitted,
		},
		{
			name:       "target pending is not reachable",
			actor:      admin(9),
			request:    inProgressRequest(1, 6),
			target:     StatusPending,
			wantReason: ReasonInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Authorize(AuthzInput{
				Actor:   tt.actor,
				Request: tt.request,
				Action:  ActionAdvanceStatus,
				Target:  tt.target,
			})
			assert.Equal(t, tt.allowed, d.Allowed)
			if !tt.allowed {
				assert.Equal(t, tt.wantReason, d.Reason)
			}
		})
	}
}

// The worked examples: one scenario per precedence rule interaction.
func TestAuthorizeScenarios(t *testing.T) {
	t.Run("blocked donor cannot donate to an open request", func(t *testing.T) {
		d := Authorize(AuthzInput{
			Actor:   blocked(donor(5)),
			Request: pendingRequest(1),
			Action:  ActionDonate,
		})
		assert.ErrorIs(t, d.Err(), ErrAccountBlocked)
	})

	t.Run("volunteer moves a stranger's in-progress request to done", func(t *testing.T) {
		d := Authorize(AuthzInput{
			Actor:   volunteer(9),
			Request: inProgressRequest(1, 6),
			Action:  ActionAdvanceStatus,
			Target:  StatusDone,
		})
		assert.True(t, d.Allowed)
	})

	t.Run("second donor arriving at an in-progress request gets a conflict", func(t *testing.T) {
		d := Authorize(AuthzInput{
			Actor:   donor(7),
			Request: inProgressRequest(1, 6),
			Action:  ActionDonate,
		})
		assert.ErrorIs(t, d.Err(), ErrConflictingState)
	})

	t.Run("owner edits fields of own pending request", func(t *testing.T) {
		d := Authorize(AuthzInput{
			Actor:   donor(1),
			Request: pendingRequest(1),
			Action:  ActionEditFields,
		})
		assert.True(t, d.Allowed)
	})

	t.Run("nobody advances a canceled request", func(t *testing.T) {
		canceled := RequestSnapshot{ID: 10, RequesterID: 1, Status: StatusCanceled}
		for _, actor := range []Actor{donor(1), volunteer(9), admin(3)} {
			d := Authorize(AuthzInput{
				Actor:   actor,
				Request: canceled,
				Action:  ActionAdvanceStatus,
				Target:  StatusInProgress,
			})
			assert.ErrorIs(t, d.Err(), ErrInvalidTransition, "role=%s", actor.Role)
		}
	})
}
