package repositories

import (
	"context"

	"bloodlink-api/internal/adapters/persistence/models"
	"bloodlink-api/internal/core/domain"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, role string, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// RequestFilter narrows request listings
type RequestFilter struct {
	Status     string
	BloodGroup string
}

// RequestRepository defines donation request repository interface.
//
// AssignDonor and UpdateStatusIf are conditional updates: they mutate the row
// only while the expected preconditions still hold and return
// domain.ErrConflictingState when the guarded write matches no row. This is
// the commit-time re-check backing the donate race contract.
type RequestRepository interface {
	Create(ctx context.Context, request *models.DonationRequest) error
	GetByID(ctx context.Context, id uint) (*models.DonationRequest, error)
	List(ctx context.Context, filter RequestFilter, offset, limit int) ([]*models.DonationRequest, int64, error)
	ListByRequester(ctx context.Context, requesterID uint) ([]*models.DonationRequest, error)
	ListByAssignedDonor(ctx context.Context, donorID uint) ([]*models.DonationRequest, error)
	AssignDonor(ctx context.Context, requestID, donorID uint) error
	UpdateStatusIf(ctx context.Context, requestID uint, expected, next domain.RequestStatus, clearAssigned bool) error
	UpdateFields(ctx context.Context, requestID uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

// RequestEventRepository defines request audit history repository interface
type RequestEventRepository interface {
	Create(ctx context.Context, event *models.RequestEvent) error
	GetByRequestID(ctx context.Context, requestID uint) ([]*models.RequestEvent, error)
}

// FundRepository defines fund record repository interface
type FundRepository interface {
	Create(ctx context.Context, record *models.FundRecord) error
	GetByID(ctx context.Context, id uint) (*models.FundRecord, error)
	List(ctx context.Context, offset, limit int) ([]*models.FundRecord, int64, error)
	Delete(ctx context.Context, id uint) error
	TotalAmount(ctx context.Context) (float64, error)
}
