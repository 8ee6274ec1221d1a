package repositories

import (
	"context"

	"bloodlink-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// fundRepository implements FundRepository interface
type fundRepository struct {
	db *gorm.DB
}

// NewFundRepository creates a new fund repository
func NewFundRepository(db *gorm.DB) FundRepository {
	return &fundRepository{db: db}
}

// Create creates a new fund record
func (r *fundRepository) Create(ctx context.Context, record *models.FundRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// GetByID gets a fund record by ID
func (r *fundRepository) GetByID(ctx context.Context, id uint) (*models.FundRecord, error) {
	var record models.FundRecord
	err := r.db.WithContext(ctx).Preload("Recorder").First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// List lists fund records with pagination
func (r *fundRepository) List(ctx context.Context, offset, limit int) ([]*models.FundRecord, int64, error) {
	var records []*models.FundRecord
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.FundRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Recorder").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error

	return records, total, err
}

// Delete soft deletes a fund record
func (r *fundRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.FundRecord{}, id).Error
}

// TotalAmount sums all recorded contributions
func (r *fundRepository) TotalAmount(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.FundRecord{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
