package persistence

import (
	"context"
	"time"

	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/edi/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "order", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an order with SELECT ... FOR UPDATE
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, id string) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "order", id)
	}
	if err := r.db.WithContext(ctx).
		Scopes(orderedItems).
		Where("order_id = ?", id).
		Find(&model.Items).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySignatureRef finds the order carrying an external signature id
func (r *GormOrderRepository) FindBySignatureRef(ctx context.Context, ref string) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("external_signature_id = ?", ref).
		First(&model).Error; err != nil {
		return nil, notFound(err, "order with signature reference", ref)
	}
	return model.ToDomain(), nil
}

// List returns one page of orders and the total match count
func (r *GormOrderRepository) List(ctx context.Context, filter order.ListFilter) ([]order.Order, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orderModels []models.OrderModel
	if err := paginate(query, filter.Filter, OrderSortFields, "created_at", "id").
		Preload("Items", orderedItems).
		Find(&orderModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainOrders(orderModels), total, nil
}

// ListByStatus returns every order in status, oldest first
func (r *GormOrderRepository) ListByStatus(ctx context.Context, status order.Status) ([]order.Order, error) {
	var orderModels []models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("status = ?", status).
		Order("created_at ASC, id ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(orderModels), nil
}

// Create inserts a new order with its items
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.ErrInvalidInput.Newf("order %s already exists", o.ID)
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking (version check).
// external_signature_id is owned by SetSignatureRef and is not written here.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expected := o.Version
		now := time.Now()
		model := models.OrderModelFromDomain(o)

		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND version = ?", o.ID, expected).
			Updates(map[string]any{
				"project_id":           model.ProjectID,
				"status":               model.Status,
				"order_date":           model.OrderDate,
				"order_end_ym":         model.OrderEndYM,
				"work_start":           model.WorkStart,
				"work_end":             model.WorkEnd,
				"deliverable_text":     model.DeliverableText,
				"payment_condition":    model.PaymentCondition,
				"contract_items":       model.ContractItems,
				"remarks":              model.Remarks,
				"buyer_responsible":    model.BuyerResponsible,
				"buyer_contact":        model.BuyerContact,
				"supplier_responsible": model.SupplierResponsible,
				"supplier_contact":     model.SupplierContact,
				"work_lead":            model.WorkLead,
				"base_fee":             model.BaseFee,
				"time_lower_limit":     model.TimeLowerLimit,
				"time_upper_limit":     model.TimeUpperLimit,
				"shortage_fee":         model.ShortageFee,
				"excess_fee":           model.ExcessFee,
				"finalized_at":         model.FinalizedAt,
				"document_hash":        model.DocumentHash,
				"order_pdf_key":        model.OrderPDFKey,
				"acceptance_pdf_key":   model.AcceptancePDFKey,
				"version":              expected + 1,
				"updated_at":           now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return r.missingOrStale(tx, o.ID)
		}

		if err := replaceOrderItems(tx, o.ID, model.Items); err != nil {
			return err
		}

		o.Version = expected + 1
		o.UpdatedAt = now
		return nil
	})
}

// replaceOrderItems deletes lines no longer present and upserts the rest
func replaceOrderItems(tx *gorm.DB, orderID string, items []models.OrderItemModel) error {
	keep := make([]uuid.UUID, len(items))
	for i := range items {
		keep[i] = items[i].ID
	}
	del := tx.Where("order_id = ?", orderID)
	if len(keep) > 0 {
		del = del.Where("id NOT IN ?", keep)
	}
	if err := del.Delete(&models.OrderItemModel{}).Error; err != nil {
		return err
	}
	for i := range items {
		if err := tx.Save(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// MarkApproved writes the approval columns with a conditional UPDATE.
// The row must still be approvable and at the version o was loaded with.
func (r *GormOrderRepository) MarkApproved(ctx context.Context, o *order.Order) (bool, error) {
	expected := o.Version
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("id = ? AND version = ? AND status IN ?", o.ID, expected, order.ApprovableStatuses()).
		Updates(map[string]any{
			"status":             o.Status,
			"finalized_at":       o.FinalizedAt,
			"document_hash":      o.DocumentHash,
			"acceptance_pdf_key": o.AcceptancePDFKey,
			"version":            expected + 1,
			"updated_at":         now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	o.Version = expected + 1
	o.UpdatedAt = now
	return true, nil
}

// SetSignatureRef stores ref only while no reference is set
func (r *GormOrderRepository) SetSignatureRef(ctx context.Context, id, ref string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("id = ? AND external_signature_id IS NULL", id).
		Update("external_signature_id", ref)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return false, shared.ErrInvalidInput.Newf("signature reference %s belongs to another order", ref)
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountByStatus counts orders in any of statuses, optionally for one customer
func (r *GormOrderRepository) CountByStatus(ctx context.Context, customerID string, statuses ...order.Status) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	if customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsForCustomer reports whether any order references the customer
func (r *GormOrderRepository) ExistsForCustomer(ctx context.Context, customerID string) (bool, error) {
	count, err := r.CountByStatus(ctx, customerID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormOrderRepository) missingOrStale(tx *gorm.DB, id string) error {
	var count int64
	if err := tx.Model(&models.OrderModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound.Newf("order %s not found", id)
	}
	return concurrentModification("order", id)
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter order.ListFilter) *gorm.DB {
	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ExcludeDrafts {
		query = query.Where("status <> ?", order.StatusDraft)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`(id LIKE ? ESCAPE '\' OR deliverable_text LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	return query
}

func toDomainOrders(orderModels []models.OrderModel) []order.Order {
	orders := make([]order.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)
