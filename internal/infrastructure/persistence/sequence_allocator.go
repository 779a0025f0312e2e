package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/edi/backend/internal/domain/sequence"
	"github.com/edi/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// identifierColumns names the column each scope numbers
var identifierColumns = map[sequence.Entity]struct {
	table  string
	column string
}{
	sequence.EntityCustomer: {"customers", "id"},
	sequence.EntityProject:  {"projects", "id"},
	sequence.EntityOrder:    {"orders", "id"},
	sequence.EntityInvoice:  {"invoices", "invoice_no"},
}

// warnedMalformed remembers ids already reported, so a bad row is logged once per process
var warnedMalformed sync.Map

// GormSequenceAllocator allocates identifiers from the sequence_counters table.
// The counter row of a scope is locked FOR UPDATE for the rest of the
// enclosing transaction, so concurrent allocations in one scope serialize.
// The next suffix is one above the larger of the counter and the highest
// suffix already stored, which keeps rows imported without the counter safe.
type GormSequenceAllocator struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormSequenceAllocator creates an allocator. Pass the transaction handle
// to allocate inside a unit of work.
func NewGormSequenceAllocator(db *gorm.DB, logger *zap.Logger) *GormSequenceAllocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GormSequenceAllocator{db: db, logger: logger}
}

// Allocate returns the next identifier in scope
func (a *GormSequenceAllocator) Allocate(ctx context.Context, scope sequence.Scope) (string, error) {
	target, ok := identifierColumns[scope.Entity]
	if !ok {
		return "", fmt.Errorf("sequence: unknown entity %q", scope.Entity)
	}

	var id string
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		key := scope.Key()
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.SequenceCounterModel{Scope: key, UpdatedAt: time.Now()}).Error; err != nil {
			return fmt.Errorf("sequence: init counter %s: %w", key, err)
		}

		var counter models.SequenceCounterModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&counter, "scope = ?", key).Error; err != nil {
			return fmt.Errorf("sequence: lock counter %s: %w", key, err)
		}

		var existing []string
		if err := tx.Table(target.table).
			Where(target.column+" LIKE ?", scope.Prefix+"%").
			Pluck(target.column, &existing).Error; err != nil {
			return fmt.Errorf("sequence: scan %s: %w", target.table, err)
		}
		highest, malformed := scope.MaxSuffix(existing)
		for _, bad := range malformed {
			if _, seen := warnedMalformed.LoadOrStore(key+"/"+bad, struct{}{}); !seen {
				a.logger.Warn("ignoring malformed identifier",
					zap.String("scope", key), zap.String("id", bad))
			}
		}

		next := max(highest, counter.Value) + 1
		formatted, err := scope.Format(next)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.SequenceCounterModel{}).
			Where("scope = ?", key).
			Updates(map[string]any{"value": next, "updated_at": time.Now()}).Error; err != nil {
			return fmt.Errorf("sequence: advance counter %s: %w", key, err)
		}
		id = formatted
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Ensure GormSequenceAllocator implements sequence.Allocator
var _ sequence.Allocator = (*GormSequenceAllocator)(nil)
