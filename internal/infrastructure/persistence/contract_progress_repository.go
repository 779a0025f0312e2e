package persistence

import (
	"context"

	"github.com/edi/backend/internal/domain/partner"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/edi/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormContractProgressRepository implements partner.ContractProgressRepository using GORM
type GormContractProgressRepository struct {
	db *gorm.DB
}

// NewGormContractProgressRepository creates a new GormContractProgressRepository
func NewGormContractProgressRepository(db *gorm.DB) *GormContractProgressRepository {
	return &GormContractProgressRepository{db: db}
}

// Find returns the onboarding state of a customer
func (r *GormContractProgressRepository) Find(ctx context.Context, customerID string) (*partner.ContractProgress, error) {
	var model models.ContractProgressModel
	if err := r.db.WithContext(ctx).First(&model, "customer_id = ?", customerID).Error; err != nil {
		return nil, notFound(err, "contract progress for customer", customerID)
	}
	return model.ToDomain(), nil
}

// Upsert writes the state, replacing any previous one
func (r *GormContractProgressRepository) Upsert(ctx context.Context, progress *partner.ContractProgress) error {
	model := models.ContractProgressModel{
		CustomerID: progress.CustomerID,
		Status:     progress.Status,
		UpdatedAt:  progress.UpdatedAt,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).
		Create(&model).Error
}

// List returns one page of onboarding rows, optionally in one status
func (r *GormContractProgressRepository) List(ctx context.Context, status partner.ContractStatus, filter shared.Filter) ([]partner.ContractProgress, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ContractProgressModel{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ContractProgressModel
	if err := paginate(query, filter, ContractProgressSortFields, "updated_at", "customer_id").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]partner.ContractProgress, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// DeleteByCustomer removes the customer's onboarding row, if any
func (r *GormContractProgressRepository) DeleteByCustomer(ctx context.Context, customerID string) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Delete(&models.ContractProgressModel{}).Error
}

// Ensure GormContractProgressRepository implements partner.ContractProgressRepository
var _ partner.ContractProgressRepository = (*GormContractProgressRepository)(nil)
