package services

import (
	"context"
	"errors"
	"time"

	"bloodlink-api/internal/adapters/persistence/models"
	"bloodlink-api/internal/adapters/persistence/repositories"
	"bloodlink-api/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestService orchestrates the donation request lifecycle. Every mutation
// loads the acting user from storage and runs the authorization policy over
// that authoritative record; client-supplied role claims are a UI hint only.
type RequestService struct {
	requestRepo repositories.RequestRepository
	eventRepo   repositories.RequestEventRepository
	userRepo    repositories.UserRepository
}

// NewRequestService creates a new request service
func NewRequestService(
	requestRepo repositories.RequestRepository,
	eventRepo repositories.RequestEventRepository,
	userRepo repositories.UserRepository,
) *RequestService {
	return &RequestService{
		requestRepo: requestRepo,
		eventRepo:   eventRepo,
		userRepo:    userRepo,
	}
}

// actor loads the authoritative actor record for a user ID
func (s *RequestService) actor(ctx context.Context, userID uint) (domain.Actor, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Actor{}, domain.ErrUserNotFound
		}
		return domain.Actor{}, err
	}
	return user.Actor(), nil
}

// getRequest loads a request or maps the miss onto the domain error
func (s *RequestService) getRequest(ctx context.Context, id uint) (*models.DonationRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return request, nil
}

// recordEvent appends an audit row; history failures never fail the action
func (s *RequestService) recordEvent(ctx context.Context, ev *models.RequestEvent) {
	_ = s.eventRepo.Create(ctx, ev)
}

func statusPtr(s domain.RequestStatus) *string {
	v := string(s)
	return &v
}

// CreateRequestInput represents create request input
type CreateRequestInput struct {
	BloodGroup  string `json:"blood_group" validate:"required"`
	ScheduledAt string `json:"scheduled_at" validate:"required"`
	Hospital    string `json:"hospital,omitempty"`
	Location    string `json:"location,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Create creates a new donation request. Status is always forced to PENDING.
func (s *RequestService) Create(ctx context.Context, input *CreateRequestInput, actorID uint, ipAddress string) (*models.DonationRequest, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	decision := domain.Authorize(domain.AuthzInput{Actor: actor, Action: domain.ActionCreate})
	if err := decision.Err(); err != nil {
		return nil, err
	}

	group, err := domain.ParseBloodGroup(input.BloodGroup)
	if err != nil {
		return nil, err
	}

	scheduledAt, err := time.Parse(time.RFC3339, input.ScheduledAt)
	if err != nil {
		return nil, errors.New("invalid scheduled_at, use RFC3339 format")
	}
	if scheduledAt.Before(time.Now()) {
		return nil, domain.ErrScheduleInPast
	}

	request := &models.DonationRequest{
		Code:        uuid.New().String(),
		RequesterID: actorID,
		BloodGroup:  string(group),
		Status:      string(domain.StatusPending),
		ScheduledAt: scheduledAt,
		Hospital:    input.Hospital,
		Location:    input.Location,
		Message:     input.Message,
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, &models.RequestEvent{
		RequestID:   request.ID,
		EventType:   models.EvTypeCreate,
		ToStatus:    statusPtr(domain.StatusPending),
		PerformedBy: actorID,
		IPAddress:   ipAddress,
	})

	return request, nil
}

// GetByID gets a donation request by ID (read access is universal)
func (s *RequestService) GetByID(ctx context.Context, id uint) (*models.DonationRequest, error) {
	return s.getRequest(ctx, id)
}

// ListInput represents list input
type ListInput struct {
	Page       int
	Limit      int
	Status     string
	BloodGroup string
}

// ListOutput represents list output
type ListOutput struct {
	Requests   []*models.DonationRequest `json:"requests"`
	Total      int64                     `json:"total"`
	Page       int                       `json:"page"`
	Limit      int                       `json:"limit"`
	TotalPages int                       `json:"total_pages"`
}

// List lists donation requests
func (s *RequestService) List(ctx context.Context, input *ListInput) (*ListOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 10
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	if input.Status != "" && !domain.RequestStatus(input.Status).Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if input.BloodGroup != "" {
		if _, err := domain.ParseBloodGroup(input.BloodGroup); err != nil {
			return nil, err
		}
	}

	offset := (input.Page - 1) * input.Limit
	filter := repositories.RequestFilter{
		Status:     input.Status,
		BloodGroup: input.BloodGroup,
	}

	requests, total, err := s.requestRepo.List(ctx, filter, offset, input.Limit)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / input.Limit
	if int(total)%input.Limit > 0 {
		totalPages++
	}

	return &ListOutput{
		Requests:   requests,
		Total:      total,
		Page:       input.Page,
		Limit:      input.Limit,
		TotalPages: totalPages,
	}, nil
}

// ListByRequester lists requests created by a user
func (s *RequestService) ListByRequester(ctx context.Context, requesterID uint) ([]*models.DonationRequest, error) {
	return s.requestRepo.ListByRequester(ctx, requesterID)
}

// ListByAssignedDonor lists requests a donor committed to
func (s *RequestService) ListByAssignedDonor(ctx context.Context, donorID uint) ([]*models.DonationRequest, error) {
	return s.requestRepo.ListByAssignedDonor(ctx, donorID)
}

// Donate commits the acting donor to a pending request. The policy decision
// is made over a snapshot; the repository re-checks the preconditions inside
// a conditional update, so a lost race surfaces domain.ErrConflictingState.
func (s *RequestService) Donate(ctx context.Context, requestID, actorID uint, ipAddress string) (*models.DonationRequest, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	decision := domain.Authorize(domain.AuthzInput{
		Actor:   actor,
		Request: request.Snapshot(),
		Action:  domain.ActionDonate,
	})
	if err := decision.Err(); err != nil {
		return nil, err
	}

	if err := s.requestRepo.AssignDonor(ctx, requestID, actorID); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, &models.RequestEvent{
		RequestID:   requestID,
		EventType:   models.EvTypeDonate,
		FromStatus:  statusPtr(domain.StatusPending),
		ToStatus:    statusPtr(domain.StatusInProgress),
		PerformedBy: actorID,
		IPAddress:   ipAddress,
	})

	return s.getRequest(ctx, requestID)
}

// AdvanceStatusInput represents advance status input
type AdvanceStatusInput struct {
	Target string `json:"target" validate:"required"`
	Note   string `json:"note,omitempty"`
}

// AdvanceStatus moves a request along the lifecycle toward the target status.
// A target of INPROGRESS is the donor commit flow and assigns the actor.
func (s *RequestService) AdvanceStatus(ctx context.Context, requestID uint, input *AdvanceStatusInput, actorID uint, ipAddress string) (*models.DonationRequest, error) {
	target := domain.RequestStatus(input.Target)
	if !target.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	snapshot := request.Snapshot()

	decision := domain.Authorize(domain.AuthzInput{
		Actor:   actor,
		Request: snapshot,
		Action:  domain.ActionAdvanceStatus,
		Target:  target,
	})
	if err := decision.Err(); err != nil {
		return nil, err
	}

	ev, err := domain.EventForTarget(target)
	if err != nil {
		return nil, err
	}

	if ev == domain.EventDonate {
		if err := s.requestRepo.AssignDonor(ctx, requestID, actorID); err != nil {
			return nil, err
		}
	} else {
		transition, err := domain.Apply(snapshot, ev)
		if err != nil {
			return nil, err
		}
		if err := s.requestRepo.UpdateStatusIf(ctx, requestID, snapshot.Status, transition.Next, transition.ClearAssignedDonor); err != nil {
			return nil, err
		}
	}

	s.recordEvent(ctx, &models.RequestEvent{
		RequestID:   requestID,
		EventType:   models.EvTypeStatusChange,
		FromStatus:  statusPtr(snapshot.Status),
		ToStatus:    statusPtr(target),
		Note:        input.Note,
		PerformedBy: actorID,
		IPAddress:   ipAddress,
	})

	return s.getRequest(ctx, requestID)
}

// EditFieldsInput represents edit fields input; nil pointers leave the field alone
type EditFieldsInput struct {
	BloodGroup  *string `json:"blood_group,omitempty"`
	ScheduledAt *string `json:"scheduled_at,omitempty"`
	Hospital    *string `json:"hospital,omitempty"`
	Location    *string `json:"location,omitempty"`
	Message     *string `json:"message,omitempty"`
}

// EditFields updates descriptive fields. The status is never touched here;
// only the transition function writes it.
func (s *RequestService) EditFields(ctx context.Context, requestID uint, input *EditFieldsInput, actorID uint, ipAddress string) (*models.DonationRequest, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	decision := domain.Authorize(domain.AuthzInput{
		Actor:   actor,
		Request: request.Snapshot(),
		Action:  domain.ActionEditFields,
	})
	if err := decision.Err(); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.BloodGroup != nil {
		group, err := domain.ParseBloodGroup(*input.BloodGroup)
		if err != nil {
			return nil, err
		}
		fields["blood_group"] = string(group)
	}
	if input.ScheduledAt != nil {
		scheduledAt, err := time.Parse(time.RFC3339, *input.ScheduledAt)
		if err != nil {
			return nil, errors.New("invalid scheduled_at, use RFC3339 format")
		}
		fields["scheduled_at"] = scheduledAt
	}
	if input.Hospital != nil {
		fields["hospital"] = *input.Hospital
	}
	if input.Location != nil {
		fields["location"] = *input.Location
	}
	if input.Message != nil {
		fields["message"] = *input.Message
	}

	if len(fields) > 0 {
		if err := s.requestRepo.UpdateFields(ctx, requestID, fields); err != nil {
			return nil, err
		}

		s.recordEvent(ctx, &models.RequestEvent{
			RequestID:   requestID,
			EventType:   models.EvTypeUpdate,
			PerformedBy: actorID,
			IPAddress:   ipAddress,
		})
	}

	return s.getRequest(ctx, requestID)
}

// Delete removes a request permanently. This is a terminal removal by owner
// or admin, not a state transition.
func (s *RequestService) Delete(ctx context.Context, requestID, actorID uint, ipAddress string) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}

	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return err
	}

	decision := domain.Authorize(domain.AuthzInput{
		Actor:   actor,
		Request: request.Snapshot(),
		Action:  domain.ActionDelete,
	})
	if err := decision.Err(); err != nil {
		return err
	}

	if err := s.requestRepo.Delete(ctx, requestID); err != nil {
		return err
	}

	s.recordEvent(ctx, &models.RequestEvent{
		RequestID:   requestID,
		EventType:   models.EvTypeDelete,
		PerformedBy: actorID,
		IPAddress:   ipAddress,
	})

	return nil
}

// GetHistory gets the audit history of a request
func (s *RequestService) GetHistory(ctx context.Context, requestID uint) ([]*models.RequestEvent, error) {
	if _, err := s.getRequest(ctx, requestID); err != nil {
		return nil, err
	}
	return s.eventRepo.GetByRequestID(ctx, requestID)
}
