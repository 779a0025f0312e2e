package persistence

import (
	"context"

	"github.com/edi/backend/internal/domain/partner"
	"github.com/edi/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountRepository implements partner.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// Create inserts the user and its profile together
func (r *GormAccountRepository) Create(ctx context.Context, user *partner.User, profile *partner.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.PartnerUserModelFromDomain(user)).Error; err != nil {
			if isDuplicateKey(err) {
				return partner.ErrUsernameTaken.Newf("username %s is already taken", user.Username)
			}
			return err
		}
		return tx.Create(models.PartnerProfileModelFromDomain(profile)).Error
	})
}

// ExistsByUsername reports whether the username is taken
func (r *GormAccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PartnerUserModel{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindProfilesByCustomer lists the profiles acting for a customer
func (r *GormAccountRepository) FindProfilesByCustomer(ctx context.Context, customerID string) ([]partner.Profile, error) {
	var profileModels []models.PartnerProfileModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&profileModels).Error; err != nil {
		return nil, err
	}
	profiles := make([]partner.Profile, len(profileModels))
	for i := range profileModels {
		profiles[i] = *profileModels[i].ToDomain()
	}
	return profiles, nil
}

// DeleteByCustomer deletes the customer's profiles, then their users
func (r *GormAccountRepository) DeleteByCustomer(ctx context.Context, customerID string) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var userIDs []uuid.UUID
		if err := tx.Model(&models.PartnerProfileModel{}).
			Where("customer_id = ?", customerID).
			Pluck("user_id", &userIDs).Error; err != nil {
			return err
		}
		if len(userIDs) == 0 {
			return nil
		}
		if err := tx.Where("customer_id = ?", customerID).Delete(&models.PartnerProfileModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", userIDs).Delete(&models.PartnerUserModel{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Ensure GormAccountRepository implements partner.AccountRepository
var _ partner.AccountRepository = (*GormAccountRepository)(nil)
