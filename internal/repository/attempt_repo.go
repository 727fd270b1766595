package repository

import (
	"time"

	"gorm.io/gorm"

	"adyenbridge/internal/models"
)

// AttemptRepository handles payment attempt database operations.
type AttemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Create records a new payment attempt.
func (r *AttemptRepository) Create(attempt *models.PaymentAttempt) error {
	return r.db.Create(attempt).Error
}

// FindByToken returns an attempt by its attempt token.
func (r *AttemptRepository) FindByToken(token string) (*models.PaymentAttempt, error) {
	var attempt models.PaymentAttempt
	if err := r.db.Where("attempt_token = ?", token).First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

// UpdateByToken updates an attempt by its attempt token.
func (r *AttemptRepository) UpdateByToken(token string, updates map[string]interface{}) error {
	return r.db.Model(&models.PaymentAttempt{}).Where("attempt_token = ?", token).Updates(updates).Error
}

// FindAll returns attempts with pagination.
func (r *AttemptRepository) FindAll(limit, page int) ([]models.PaymentAttempt, int64, error) {
	var attempts []models.PaymentAttempt
	var total int64

	db := r.db.Model(&models.PaymentAttempt{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	if err := db.Limit(limit).Offset(offset).Order("created_at DESC").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}

// ExpireStalePending marks pending attempts older than the cutoff as expired
// and returns how many rows changed.
func (r *AttemptRepository) ExpireStalePending(olderThan time.Time) (int64, error) {
	result := r.db.Model(&models.PaymentAttempt{}).
		Where("status = ? AND created_at < ?", models.AttemptStatusPending, olderThan).
		Update("status", models.AttemptStatusExpired)
	return result.RowsAffected, result.Error
}
