package services

import (
	"context"
	"errors"
	"log"

	"bloodlink-api/internal/adapters/persistence/models"
	"bloodlink-api/internal/adapters/persistence/repositories"
	"bloodlink-api/internal/core/domain"

	"gorm.io/gorm"
)

// Fund service errors
var (
	ErrInvalidAmount = errors.New("amount must be greater than zero")
)

// FundService handles fund record business logic
type FundService struct {
	fundRepo repositories.FundRepository
}

// NewFundService creates a new fund service
func NewFundService(fundRepo repositories.FundRepository) *FundService {
	return &FundService{fundRepo: fundRepo}
}

// CreateFundInput represents fund record creation input
type CreateFundInput struct {
	DonorName string  `json:"donor_name" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Note      string  `json:"note,omitempty"`
}

// Create records a monetary contribution
func (s *FundService) Create(ctx context.Context, input *CreateFundInput, recordedBy uint) (*models.FundRecord, error) {
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	record := &models.FundRecord{
		DonorName:  input.DonorName,
		Amount:     input.Amount,
		Note:       input.Note,
		RecordedBy: recordedBy,
	}

	if err := s.fundRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	log.Printf("Fund record created: %.2f from %s by user %d", input.Amount, input.DonorName, recordedBy)
	return record, nil
}

// ListFundsOutput represents fund list output
type ListFundsOutput struct {
	Records    []*models.FundRecord `json:"records"`
	Total      int64                `json:"total"`
	TotalFunds float64              `json:"total_funds"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
}

// List lists fund records with pagination and the running total
func (s *FundService) List(ctx context.Context, page, limit int) (*ListFundsOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	offset := (page - 1) * limit
	records, total, err := s.fundRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	totalFunds, err := s.fundRepo.TotalAmount(ctx)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &ListFundsOutput{
		Records:    records,
		Total:      total,
		TotalFunds: totalFunds,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Delete removes a fund record
func (s *FundService) Delete(ctx context.Context, id uint) error {
	if _, err := s.fundRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrFundNotFound
		}
		return err
	}
	return s.fundRepo.Delete(ctx, id)
}
