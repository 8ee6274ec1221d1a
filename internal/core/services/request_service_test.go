package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"bloodlink-api/internal/adapters/persistence/models"
	"bloodlink-api/internal/adapters/persistence/repositories"
	"bloodlink-api/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// ============================================================
// In-memory fakes honoring the repository contracts
// ============================================================

type fakeUserRepo struct {
	users map[uint]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[uint]*models.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, _ string, _, _ int) ([]*models.User, int64, error) {
	return nil, 0, nil
}

func (r *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(context.Background(), username)
	return err == nil, nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(context.Background(), email)
	return err == nil, nil
}

// fakeRequestRepo implements the conditional update contract: writes succeed
// only while the guarded preconditions hold, otherwise ErrConflictingState.
type fakeRequestRepo struct {
	mu       sync.Mutex
	nextID   uint
	requests map[uint]*models.DonationRequest
}

func newFakeRequestRepo(requests ...*models.DonationRequest) *fakeRequestRepo {
	repo := &fakeRequestRepo{nextID: 1, requests: map[uint]*models.DonationRequest{}}
	for _, req := range requests {
		repo.requests[req.ID] = req
		if req.ID >= repo.nextID {
			repo.nextID = req.ID + 1
		}
	}
	return repo
}

func (r *fakeRequestRepo) Create(_ context.Context, request *models.DonationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	request.ID = r.nextID
	r.nextID++
	r.requests[request.ID] = request
	return nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id uint) (*models.DonationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *req
	return &clone, nil
}

func (r *fakeRequestRepo) List(_ context.Context, _ repositories.RequestFilter, _, _ int) ([]*models.DonationRequest, int64, error) {
	return nil, 0, nil
}

func (r *fakeRequestRepo) ListByRequester(_ context.Context, requesterID uint) ([]*models.DonationRequest, error) {
	var out []*models.DonationRequest
	for _, req := range r.requests {
		if req.RequesterID == requesterID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) ListByAssignedDonor(_ context.Context, donorID uint) ([]*models.DonationRequest, error) {
	var out []*models.DonationRequest
	for _, req := range r.requests {
		if req.AssignedDonorID != nil && *req.AssignedDonorID == donorID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) AssignDonor(_ context.Context, requestID, donorID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[requestID]
	if !ok || req.Status != string(domain.StatusPending) || req.AssignedDonorID != nil {
		return domain.ErrConflictingState
	}
	req.Status = string(domain.StatusInProgress)
	req.AssignedDonorID = &donorID
	return nil
}

func (r *fakeRequestRepo) UpdateStatusIf(_ context.Context, requestID uint, expected, next domain.RequestStatus, clearAssigned bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[requestID]
	if !ok || req.Status != string(expected) {
		return domain.ErrConflictingState
	}
	req.Status = string(next)
	if clearAssigned {
		req.AssignedDonorID = nil
	}
	return nil
}

func (r *fakeRequestRepo) UpdateFields(_ context.Context, requestID uint, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[requestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := fields["blood_group"].(string); ok {
		req.BloodGroup = v
	}
	if v, ok := fields["scheduled_at"].(time.Time); ok {
		req.ScheduledAt = v
	}
	if v, ok := fields["hospital"].(string); ok {
		req.Hospital = v
	}
	if v, ok := fields["location"].(string); ok {
		req.Location = v
	}
	if v, ok := fields["message"].(string); ok {
		req.Message = v
	}
	return nil
}

func (r *fakeRequestRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.requests, id)
	return nil
}

type fakeEventRepo struct {
	events []*models.RequestEvent
}

func (r *fakeEventRepo) Create(_ context.Context, event *models.RequestEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *fakeEventRepo) GetByRequestID(_ context.Context, requestID uint) ([]*models.RequestEvent, error) {
	var out []*models.RequestEvent
	for _, ev := range r.events {
		if ev.RequestID == requestID {
			out = append(out, ev)
		}
	}
	return out, nil
}

// ============================================================
// Fixtures
// ============================================================

const (
	requesterID = uint(1)
	donorID     = uint(2)
	rivalID     = uint(3)
	volunteerID = uint(4)
	adminID     = uint(5)
	blockedID   = uint(6)
)

func seedUsers() *fakeUserRepo {
	return newFakeUserRepo(
		&models.User{ID: requesterID, Username: "maya", Role: "DONOR", Status: "ACTIVE", BloodGroup: "O-"},
		&models.User{ID: donorID, Username: "jon", Role: "DONOR", Status: "ACTIVE", BloodGroup: "O-"},
		&models.User{ID: rivalID, Username: "pia", Role: "DONOR", Status: "ACTIVE", BloodGroup: "O-"},
		&models.User{ID: volunteerID, Username: "vera", Role: "VOLUNTEER", Status: "ACTIVE"},
		&models.User{ID: adminID, Username: "root", Role: "ADMIN", Status: "ACTIVE"},
		&models.User{ID: blockedID, Username: "ban", Role: "DONOR", Status: "BLOCKED", BloodGroup: "A+"},
	)
}

func pendingFixture() *models.DonationRequest {
	return &models.DonationRequest{
		ID:          1,
		Code:        "req-1",
		RequesterID: requesterID,
		BloodGroup:  "O-",
		Status:      string(domain.StatusPending),
		ScheduledAt: time.Now().Add(48 * time.Hour),
		Hospital:    "General Hospital",
	}
}

func newService(requests ...*models.DonationRequest) (*RequestService, *fakeRequestRepo, *fakeEventRepo) {
	requestRepo := newFakeRequestRepo(requests...)
	eventRepo := &fakeEventRepo{}
	svc := NewRequestService(requestRepo, eventRepo, seedUsers())
	return svc, requestRepo, eventRepo
}

// ============================================================
// Tests
// ============================================================

func TestCreateRequest(t *testing.T) {
	svc, _, eventRepo := newService()
	ctx := context.Background()

	input := &CreateRequestInput{
		BloodGroup:  "O-",
		ScheduledAt: time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		Hospital:    "City Clinic",
	}

	request, err := svc.Create(ctx, input, requesterID, "10.0.0.1")
	assert.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), request.Status)
	assert.Nil(t, request.AssignedDonorID)
	assert.NotEmpty(t, request.Code)

	assert.Len(t, eventRepo.events, 1)
	assert.Equal(t, models.EvTypeCreate, eventRepo.events[0].EventType)
	assert.Equal(t, requesterID, eventRepo.events[0].PerformedBy)
}

func TestCreateRequestValidation(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	future := time.Now().Add(24 * time.Hour).Format(time.RFC3339)

	tests := []struct {
		name    string
		input   *CreateRequestInput
		actorID uint
		wantErr error
	}{
		{
			name:    "volunteer may not create",
			input:   &CreateRequestInput{BloodGroup: "O-", ScheduledAt: future},
			actorID: volunteerID,
			wantErr: domain.ErrNotPermitted,
		},
		{
			name:    "blocked donor may not create",
			input:   &CreateRequestInput{BloodGroup: "A+", ScheduledAt: future},
			actorID: blockedID,
			wantErr: domain.ErrAccountBlocked,
		},
		{
			name:    "unknown blood group rejected",
			input:   &CreateRequestInput{BloodGroup: "Z+", ScheduledAt: future},
			actorID: requesterID,
			wantErr: domain.ErrInvalidBloodGroup,
		},
		{
			name: "past schedule rejected",
			input: &CreateRequestInput{
				BloodGroup:  "O-",
				ScheduledAt: time.Now().Add(-time.Hour).Format(time.RFC3339),
			},
			actorID: requesterID,
			wantErr: domain.ErrScheduleInPast,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.input, tt.actorID, "10.0.0.1")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDonate(t *testing.T) {
	svc, _, eventRepo := newService(pendingFixture())
	ctx := context.Background()

	request, err := svc.Donate(ctx, 1, donorID, "10.0.0.2")
	assert.NoError(t, err)
	assert.Equal(t, string(domain.StatusInProgress), request.Status)
	if assert.NotNil(t, request.AssignedDonorID) {
		assert.Equal(t, donorID, *request.AssignedDonorID)
	}

	assert.Len(t, eventRepo.events, 1)
	assert.Equal(t, models.EvTypeDonate, eventRepo.events[0].EventType)
}

func TestDonateRaceSecondCommitterLoses(t *testing.T) {
	svc, _, _ := newService(pendingFixture())
	ctx := context.Background()

	_, err := svc.Donate(ctx, 1, donorID, "10.0.0.2")
	assert.NoError(t, err)

	_, err = svc.Donate(ctx, 1, rivalID, "10.0.0.3")
	assert.ErrorIs(t, err, domain.ErrConflictingState)
}

func TestDonateCASGuardsStaleSnapshot(t *testing.T) {
	// the policy saw a pending request, but the row moved before the write
	repo := newFakeRequestRepo(pendingFixture())
	ctx := context.Background()

	assert.NoError(t, repo.AssignDonor(ctx, 1, donorID))
	assert.ErrorIs(t, repo.AssignDonor(ctx, 1, rivalID), domain.ErrConflictingState)
	assert.ErrorIs(t, repo.UpdateStatusIf(ctx, 1, domain.StatusPending, domain.StatusCanceled, false), domain.ErrConflictingState)
}

func TestDonateRejections(t *testing.T) {
	svc, _, _ := newService(pendingFixture())
	ctx := context.Background()

	tests := []struct {
		name    string
		actorID uint
		wantErr error
	}{
		{"requester donating to own request", requesterID, domain.ErrNotPermitted},
		{"volunteer donating", volunteerID, domain.ErrNotPermitted},
		{"blocked donor donating", blockedID, domain.ErrAccountBlocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Donate(ctx, 1, tt.actorID, "10.0.0.9")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAdvanceStatusComplete(t *testing.T) {
	svc, _, eventRepo := newService(pendingFixture())
	ctx := context.Background()

	_, err := svc.Donate(ctx, 1, donorID, "10.0.0.2")
	assert.NoError(t, err)

	request, err := svc.AdvanceStatus(ctx, 1, &AdvanceStatusInput{Target: "DONE"}, volunteerID, "10.0.0.4")
	assert.NoError(t, err)
	assert.Equal(t, string(domain.StatusDone), request.Status)
	if assert.NotNil(t, request.AssignedDonorID) {
		assert.Equal(t, donorID, *request.AssignedDonorID)
	}

	assert.Len(t, eventRepo.events, 2)
	assert.Equal(t, models.EvTypeStatusChange, eventRepo.events[1].EventType)
}

func TestAdvanceStatusCancelClearsAssignedDonor(t *testing.T) {
	svc, _, _ := newService(pendingFixture())
	ctx := context.Background()

	_, err := svc.Donate(ctx, 1, donorID, "10.0.0.2")
	assert.NoError(t, err)

	request, err := svc.AdvanceStatus(ctx, 1, &AdvanceStatusInput{Target: "CANCELED"}, requesterID, "10.0.0.1")
	assert.NoError(t, err)
	assert.Equal(t, string(domain.StatusCanceled), request.Status)
	assert.Nil(t, request.AssignedDonorID)
}

func TestAdvanceStatusViaInProgressAssignsActor(t *testing.T) {
	svc, _, _ := newService(pendingFixture())
	ctx := context.Background()

	request, err := svc.AdvanceStatus(ctx, 1, &AdvanceStatusInput{Target: "INPROGRESS"}, donorID, "10.0.0.2")
	assert.NoError(t, err)
	assert.Equal(t, string(domain.StatusInProgress), request.Status)
	if assert.NotNil(t, request.AssignedDonorID) {
		assert.Equal(t, donorID, *request.AssignedDonorID)
	}
}

func TestAdvanceStatusRejections(t *testing.T) {
	svc, _, _ := newService(pendingFixture())
	ctx := context.Background()

	tests := []struct {
		name    string
		target  string
		actorID uint
		wantErr error
	}{
		{"unknown target", "ARCHIVED", adminID, domain.ErrInvalidStatus},
		{"pending straight to done", "DONE", adminID, domain.ErrInvalidTransition},
		{"volunteer canceling pending", "CANCELED", volunteerID, domain.ErrNotPermitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AdvanceStatus(ctx, 1, &AdvanceStatusInput{Target: tt.target}, tt.actorID, "10.0.0.9")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAdvanceStatusTerminalAbsorbs(t *testing.T) {
	svc, _, _ := newService(pendingFixture())
	ctx := context.Background()

	_, err := svc.AdvanceStatus(ctx, 1, &AdvanceStatusInput{Target: "CANCELED"}, adminID, "10.0.0.5")
	assert.NoError(t, err)

	for _, actorID := range []uint{requesterID, donorID, volunteerID, adminID} {
		_, err := svc.AdvanceStatus(ctx, 1, &AdvanceStatusInput{Target: "INPROGRESS"}, actorID, "10.0.0.9")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, "actor=%d", actorID)
	}
}

func TestEditFieldsNeverTouchesStatus(t *testing.T) {
	svc, repo, _ := newService(pendingFixture())
	ctx := context.Background()

	hospital := "St. Mary"
	request, err := svc.EditFields(ctx, 1, &EditFieldsInput{Hospital: &hospital}, requesterID, "10.0.0.1")
	assert.NoError(t, err)
	assert.Equal(t, "St. Mary", request.Hospital)
	assert.Equal(t, string(domain.StatusPending), request.Status)

	stored, err := repo.GetByID(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), stored.Status)
}

func TestEditFieldsPermissions(t *testing.T) {
	svc, _, _ := newService(pendingFixture())
	ctx := context.Background()
	note := "updated"

	_, err := svc.EditFields(ctx, 1, &EditFieldsInput{Message: &note}, volunteerID, "10.0.0.4")
	assert.ErrorIs(t, err, domain.ErrNotPermitted)

	_, err = svc.EditFields(ctx, 1, &EditFieldsInput{Message: &note}, adminID, "10.0.0.5")
	assert.NoError(t, err)

	// once in progress the owner loses edit rights, the admin keeps them
	_, err = svc.Donate(ctx, 1, donorID, "10.0.0.2")
	assert.NoError(t, err)

	_, err = svc.EditFields(ctx, 1, &EditFieldsInput{Message: &note}, requesterID, "10.0.0.1")
	assert.ErrorIs(t, err, domain.ErrNotPermitted)

	_, err = svc.EditFields(ctx, 1, &EditFieldsInput{Message: &note}, adminID, "10.0.0.5")
	assert.NoError(t, err)
}

func TestDeleteRequest(t *testing.T) {
	svc, _, _ := newService(pendingFixture())
	ctx := context.Background()

	err := svc.Delete(ctx, 1, rivalID, "10.0.0.3")
	assert.ErrorIs(t, err, domain.ErrNotPermitted)

	err = svc.Delete(ctx, 1, requesterID, "10.0.0.1")
	assert.NoError(t, err)

	_, err = svc.GetByID(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)
}

func TestDeleteInProgressOnlyAdmin(t *testing.T) {
	svc, _, _ := newService(pendingFixture())
	ctx := context.Background()

	_, err := svc.Donate(ctx, 1, donorID, "10.0.0.2")
	assert.NoError(t, err)

	err = svc.Delete(ctx, 1, requesterID, "10.0.0.1")
	assert.ErrorIs(t, err, domain.ErrNotPermitted)

	err = svc.Delete(ctx, 1, adminID, "10.0.0.5")
	assert.NoError(t, err)
}

func TestGetHistory(t *testing.T) {
	svc, _, _ := newService(pendingFixture())
	ctx := context.Background()

	_, err := svc.Donate(ctx, 1, donorID, "10.0.0.2")
	assert.NoError(t, err)
	_, err = svc.AdvanceStatus(ctx, 1, &AdvanceStatusInput{Target: "DONE"}, volunteerID, "10.0.0.4")
	assert.NoError(t, err)

	events, err := svc.GetHistory(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, events, 2)

	_, err = svc.GetHistory(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)
}
