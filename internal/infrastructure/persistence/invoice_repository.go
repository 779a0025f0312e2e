package persistence

import (
	"context"
	"time"

	"github.com/edi/backend/internal/domain/invoice"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/edi/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements invoice.Repository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice with its items
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "invoice", id)
	}
	return model.ToDomain(), nil
}

// FindByOrderID finds the invoice of an order
func (r *GormInvoiceRepository) FindByOrderID(ctx context.Context, orderID string) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("order_id = ?", orderID).
		First(&model).Error; err != nil {
		return nil, notFound(err, "invoice for order", orderID)
	}
	return model.ToDomain(), nil
}

// ExistsForOrder reports whether the order already has an invoice
func (r *GormInvoiceRepository) ExistsForOrder(ctx context.Context, orderID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("order_id = ?", orderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns one page of invoices and the total match count
func (r *GormInvoiceRepository) List(ctx context.Context, filter invoice.ListFilter) ([]invoice.Invoice, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoiceModels []models.InvoiceModel
	if err := paginate(query, filter.Filter, InvoiceSortFields, "created_at", "id").
		Preload("Items", orderedItems).
		Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}
	invoices := make([]invoice.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices, total, nil
}

// Create inserts an invoice with its items. The unique index on order_id
// turns a second invoice for the same order into DUPLICATE_INVOICE.
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.ErrDuplicateInvoice.Newf("order %s already has an invoice", inv.OrderID)
		}
		return err
	}
	return nil
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *invoice.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expected := inv.Version
		now := time.Now()
		model := models.InvoiceModelFromDomain(inv)

		result := tx.Model(&models.InvoiceModel{}).
			Where("id = ? AND version = ?", inv.ID, expected).
			Updates(map[string]any{
				"target_month":     model.TargetMonth,
				"issue_date":       model.IssueDate,
				"acceptance_date":  model.AcceptanceDate,
				"payment_deadline": model.PaymentDeadline,
				"department":       model.Department,
				"status":           model.Status,
				"subtotal_amount":  model.SubtotalAmount,
				"tax_amount":       model.TaxAmount,
				"total_amount":     model.TotalAmount,
				"version":          expected + 1,
				"updated_at":       now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.InvoiceModel{}).Where("id = ?", inv.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound.Newf("invoice %s not found", inv.ID)
			}
			return concurrentModification("invoice", inv.InvoiceNo)
		}

		keep := make([]uuid.UUID, len(model.Items))
		for i := range model.Items {
			keep[i] = model.Items[i].ID
		}
		del := tx.Where("invoice_id = ?", inv.ID)
		if len(keep) > 0 {
			del = del.Where("id NOT IN ?", keep)
		}
		if err := del.Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		for i := range model.Items {
			if err := tx.Save(&model.Items[i]).Error; err != nil {
				return err
			}
		}

		inv.Version = expected + 1
		inv.UpdatedAt = now
		return nil
	})
}

// CountByStatus counts invoices in any of statuses, optionally for one customer
func (r *GormInvoiceRepository) CountByStatus(ctx context.Context, customerID string, statuses ...invoice.Status) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
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

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter invoice.ListFilter) *gorm.DB {
	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.OrderID != "" {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.PartnerVisible {
		query = query.Where("status IN ?", []invoice.Status{invoice.StatusIssued, invoice.StatusSent})
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`(invoice_no LIKE ? ESCAPE '\' OR order_id LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	return query
}

// Ensure GormInvoiceRepository implements invoice.Repository
var _ invoice.Repository = (*GormInvoiceRepository)(nil)
