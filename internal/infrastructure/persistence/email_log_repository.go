package persistence

import (
	"context"

	"github.com/edi/backend/internal/domain/partner"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/edi/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormEmailLogRepository implements partner.EmailLogRepository using GORM
type GormEmailLogRepository struct {
	db *gorm.DB
}

// NewGormEmailLogRepository creates a new GormEmailLogRepository
func NewGormEmailLogRepository(db *gorm.DB) *GormEmailLogRepository {
	return &GormEmailLogRepository{db: db}
}

// Create records a delivered mail
func (r *GormEmailLogRepository) Create(ctx context.Context, log *partner.SentEmailLog) error {
	return r.db.WithContext(ctx).Create(&models.SentEmailLogModel{
		ID:         log.ID,
		CustomerID: log.CustomerID,
		Subject:    log.Subject,
		Body:       log.Body,
		SentAt:     log.SentAt,
	}).Error
}

// ListByCustomer returns one page of a customer's mail log, newest first by default
func (r *GormEmailLogRepository) ListByCustomer(ctx context.Context, customerID string, filter shared.Filter) ([]partner.SentEmailLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SentEmailLogModel{}).
		Where("customer_id = ?", customerID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SentEmailLogModel
	if err := paginate(query, filter, EmailLogSortFields, "sent_at", "id").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	logs := make([]partner.SentEmailLog, len(rows))
	for i := range rows {
		logs[i] = *rows[i].ToDomain()
	}
	return logs, total, nil
}

// DeleteByCustomer removes a customer's mail log and returns the row count
func (r *GormEmailLogRepository) DeleteByCustomer(ctx context.Context, customerID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Delete(&models.SentEmailLogModel{})
	return result.RowsAffected, result.Error
}

// Ensure GormEmailLogRepository implements partner.EmailLogRepository
var _ partner.EmailLogRepository = (*GormEmailLogRepository)(nil)
