package repositories

import (
	"context"

	"bloodlink-api/internal/adapters/persistence/models"
	"bloodlink-api/internal/core/domain"

	"gorm.io/gorm"
)

// requestRepository implements RequestRepository interface
type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new donation request repository
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// Create creates a new donation request
func (r *requestRepository) Create(ctx context.Context, request *models.DonationRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// GetByID gets a donation request by ID with relations
func (r *requestRepository) GetByID(ctx context.Context, id uint) (*models.DonationRequest, error) {
	var request models.DonationRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("AssignedDonor").
		First(&request, id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// List lists donation requests with pagination and optional filters
func (r *requestRepository) List(ctx context.Context, filter RequestFilter, offset, limit int) ([]*models.DonationRequest, int64, error) {
	var requests []*models.DonationRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&models.DonationRequest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.BloodGroup != "" {
		query = query.Where("blood_group = ?", filter.BloodGroup)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Requester").
		Preload("AssignedDonor").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&requests).Error

	return requests, total, err
}

// ListByRequester lists requests created by a user
func (r *requestRepository) ListByRequester(ctx context.Context, requesterID uint) ([]*models.DonationRequest, error) {
	var requests []*models.DonationRequest
	err := r.db.WithContext(ctx).
		Preload("AssignedDonor").
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// ListByAssignedDonor lists requests a donor has committed to
func (r *requestRepository) ListByAssignedDonor(ctx context.Context, donorID uint) ([]*models.DonationRequest, error) {
	var requests []*models.DonationRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Where("assigned_donor_id = ?", donorID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// AssignDonor moves a pending, unassigned request to in-progress with the
// donor attached. Single conditional UPDATE: a concurrent committer loses the
// race and gets domain.ErrConflictingState.
func (r *requestRepository) AssignDonor(ctx context.Context, requestID, donorID uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.DonationRequest{}).
		Where("id = ? AND status = ? AND assigned_donor_id IS NULL", requestID, string(domain.StatusPending)).
		Updates(map[string]interface{}{
			"status":            string(domain.StatusInProgress),
			"assigned_donor_id": donorID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflictingState
	}
	return nil
}

// UpdateStatusIf writes the next status only while the current status still
// matches the expected one; a stale expectation gets domain.ErrConflictingState.
func (r *requestRepository) UpdateStatusIf(ctx context.Context, requestID uint, expected, next domain.RequestStatus, clearAssigned bool) error {
	updates := map[string]interface{}{
		"status": string(next),
	}
	if clearAssigned {
		updates["assigned_donor_id"] = nil
	}

	res := r.db.WithContext(ctx).
		Model(&models.DonationRequest{}).
		Where("id = ? AND status = ?", requestID, string(expected)).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflictingState
	}
	return nil
}

// UpdateFields updates descriptive fields without touching the status
func (r *requestRepository) UpdateFields(ctx context.Context, requestID uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.DonationRequest{}).
		Where("id = ?", requestID).
		Updates(fields).Error
}

// Delete soft deletes a donation request
func (r *requestRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.DonationRequest{}, id).Error
}

// requestEventRepository implements RequestEventRepository interface
type requestEventRepository struct {
	db *gorm.DB
}

// NewRequestEventRepository creates a new request event repository
func NewRequestEventRepository(db *gorm.DB) RequestEventRepository {
	return &requestEventRepository{db: db}
}

// Create appends an audit event
func (r *requestEventRepository) Create(ctx context.Context, event *models.RequestEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// GetByRequestID gets the audit history of a request
func (r *requestEventRepository) GetByRequestID(ctx context.Context, requestID uint) ([]*models.RequestEvent, error) {
	var events []*models.RequestEvent
	err := r.db.WithContext(ctx).
		Preload("Performer").
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		Find(&events).Error
	return events, err
}
