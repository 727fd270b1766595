package repository

import (
	"gorm.io/gorm"

	"adyenbridge/internal/models"
)

// WebhookEventRepository handles received webhook event database operations.
type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Create records a received webhook event.
func (r *WebhookEventRepository) Create(event *models.WebhookEvent) error {
	return r.db.Create(event).Error
}

// FindByPSPReference returns events for a gateway payment reference.
func (r *WebhookEventRepository) FindByPSPReference(pspReference string) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	err := r.db.Where("psp_reference = ?", pspReference).Order("received_at DESC").Find(&events).Error
	return events, err
}

// FindByAttemptToken returns events correlated to one attempt.
func (r *WebhookEventRepository) FindByAttemptToken(token string) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	err := r.db.Where("attempt_token = ?", token).Order("received_at DESC").Find(&events).Error
	return events, err
}

// Migrate creates the audit tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.PaymentAttempt{}, &models.WebhookEvent{})
}
