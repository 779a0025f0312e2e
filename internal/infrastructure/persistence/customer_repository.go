package persistence

import (
	"context"
	"time"

	"github.com/edi/backend/internal/domain/partner"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/edi/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its 10-digit id
func (r *GormCustomerRepository) FindByID(ctx context.Context, id string) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "customer", id)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds the customers with the given ids
func (r *GormCustomerRepository) FindByIDs(ctx context.Context, ids []string) ([]partner.Customer, error) {
	if len(ids) == 0 {
		return []partner.Customer{}, nil
	}
	var customerModels []models.CustomerModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&customerModels).Error; err != nil {
		return nil, err
	}
	return toDomainCustomers(customerModels), nil
}

// List returns one page of customers; Search matches name or kana
func (r *GormCustomerRepository) List(ctx context.Context, filter shared.Filter) ([]partner.Customer, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CustomerModel{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`(name LIKE ? ESCAPE '\' OR name_kana LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customerModels []models.CustomerModel
	if err := paginate(query, filter, CustomerSortFields, "id", "id").Find(&customerModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainCustomers(customerModels), total, nil
}

// Create inserts a new customer
func (r *GormCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	if err := r.db.WithContext(ctx).Create(models.CustomerModelFromDomain(customer)).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.ErrInvalidInput.Newf("customer %s already exists", customer.ID)
		}
		return err
	}
	return nil
}

// SaveWithLock saves a customer with optimistic locking (version check)
func (r *GormCustomerRepository) SaveWithLock(ctx context.Context, customer *partner.Customer) error {
	expected := customer.Version
	now := time.Now()
	model := models.CustomerModelFromDomain(customer)

	result := r.db.WithContext(ctx).Model(&models.CustomerModel{}).
		Where("id = ? AND version = ?", customer.ID, expected).
		Updates(map[string]any{
			"name":                     model.Name,
			"name_kana":                model.NameKana,
			"postal_code":              model.PostalCode,
			"address":                  model.Address,
			"tel":                      model.Tel,
			"fax":                      model.Fax,
			"email":                    model.Email,
			"cc":                       model.CC,
			"bcc":                      model.BCC,
			"representative_name":      model.RepresentativeName,
			"representative_name_kana": model.RepresentativeNameKana,
			"representative_position":  model.RepresentativePosition,
			"responsible_person":       model.ResponsiblePerson,
			"contact_person":           model.ContactPerson,
			"registration_no":          model.RegistrationNo,
			"bank_name":                model.BankName,
			"bank_branch":              model.BankBranch,
			"account_type":             model.AccountType,
			"account_number":           model.AccountNumber,
			"account_name":             model.AccountName,
			"version":                  expected + 1,
			"updated_at":               now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.CustomerModel{}).Where("id = ?", customer.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound.Newf("customer %s not found", customer.ID)
		}
		return concurrentModification("customer", customer.ID)
	}
	customer.Version = expected + 1
	customer.UpdatedAt = now
	return nil
}

// Delete removes a customer row
func (r *GormCustomerRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomerModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound.Newf("customer %s not found", id)
	}
	return nil
}

func toDomainCustomers(customerModels []models.CustomerModel) []partner.Customer {
	customers := make([]partner.Customer, len(customerModels))
	for i := range customerModels {
		customers[i] = *customerModels[i].ToDomain()
	}
	return customers
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
