package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint { return &v }

func TestApplyTransitions(t *testing.T) {
	tests := []struct {
		name      string
		status    RequestStatus
		assigned  *uint
		event     Event
		wantNext  RequestStatus
		wantClear bool
		wantErr   error
	}{
		{
			name:     "pending donate moves to inprogress",
			status:   StatusPending,
			event:    EventDonate,
			wantNext: StatusInProgress,
		},
		{
			name:    "pending complete is undefined",
			status:  StatusPending,
			event:   EventComplete,
			wantErr: ErrInvalidTransition,
		},
		{
			name:     "pending cancel moves to canceled",
			status:   StatusPending,
			event:    EventCancel,
			wantNext: StatusCanceled,
		},
		{
			name:    "inprogress donate is a lost race",
			status:  StatusInProgress,
			event:   EventDonate,
			wantErr: ErrConflictingState,
		},
		{
			name:     "inprogress complete moves to done",
			status:   StatusInProgress,
			assigned: uintPtr(7),
			event:    EventComplete,
			wantNext: StatusDone,
		},
		{
			name:      "inprogress cancel clears the assigned donor",
			status:    StatusInProgress,
			assigned:  uintPtr(7),
			event:     EventCancel,
			wantNext:  StatusCanceled,
			wantClear: true,
		},
		{
			name:     "pending donate with stale assignment conflicts",
			status:   StatusPending,
			assigned: uintPtr(7),
			event:    EventDonate,
			wantErr:  ErrConflictingState,
		},
		{
			name:    "unknown status rejected",
			status:  RequestStatus("ARCHIVED"),
			event:   EventDonate,
			wantErr: ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := RequestSnapshot{
				ID:              1,
				RequesterID:     2,
				Status:          tt.status,
				AssignedDonorID: tt.assigned,
			}

			got, err := Apply(snapshot, tt.event)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantNext, got.Next)
			assert.Equal(t, tt.wantClear, got.ClearAssignedDonor)
		})
	}
}

func TestTerminalStatesAbsorbEveryEvent(t *testing.T) {
	events := []Event{EventDonate, EventComplete, EventCancel}

	for _, status := range []RequestStatus{StatusDone, StatusCanceled} {
		for _, ev := range events {
			_, err := Apply(RequestSnapshot{ID: 1, Status: status}, ev)
			assert.ErrorIs(t, err, ErrInvalidTransition, "status=%s event=%s", status, ev)
		}
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.True(t, StatusDone.Terminal())
	assert.True(t, StatusCanceled.Terminal())
}

func TestEventForTarget(t *testing.T) {
	tests := []struct {
		target  RequestStatus
		want    Event
		wantErr error
	}{
		{target: StatusInProgress, want: EventDonate},
		{target: StatusDone, want: EventComplete},
		{target: StatusCanceled, want: EventCancel},
		{target: StatusPending, wantErr: ErrInvalidTransition},
		{target: RequestStatus("bogus"), wantErr: ErrInvalidTransition},
	}

	for _, tt := range tests {
		ev, err := EventForTarget(tt.target)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, "target=%s", tt.target)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, ev, "target=%s", tt.target)
	}
}
