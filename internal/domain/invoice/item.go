package invoice

import (
	"time"

	"github.com/edi/backend/internal/domain/billing"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemInput carries the editable fields of a settlement line
type ItemInput struct {
	PersonName string
	WorkTime   decimal.Decimal
	Band       billing.Band
	Remarks    string
}

// Item is one worker's settlement on an invoice. The band is a copy taken
// when the line was created and is not linked to the order afterwards.
type Item struct {
	ID             uuid.UUID
	InvoiceID      uuid.UUID
	PersonName     string
	WorkTime       decimal.Decimal
	BaseFee        int64
	LowerLimit     decimal.Decimal
	UpperLimit     decimal.Decimal
	ShortageRate   int64
	ExcessRate     int64
	ExcessAmount   int64
	ShortageAmount int64
	Subtotal       int64
	Remarks        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewItem creates a settled line
func NewItem(invoiceID uuid.UUID, in ItemInput) (*Item, error) {
	item := &Item{
		ID:        uuid.New(),
		InvoiceID: invoiceID,
		CreatedAt: time.Now(),
	}
	if err := item.apply(in); err != nil {
		return nil, err
	}
	return item, nil
}

func (i *Item) apply(in ItemInput) error {
	if in.WorkTime.IsNegative() {
		return shared.ErrInvalidInput.Newf("work time cannot be negative")
	}
	if len([]rune(in.PersonName)) > 64 {
		return shared.ErrInvalidInput.Newf("person name cannot exceed 64 characters")
	}
	if err := in.Band.Validate(); err != nil {
		return err
	}
	i.PersonName = in.PersonName
	i.WorkTime = in.WorkTime
	i.BaseFee = in.Band.BaseFee
	i.LowerLimit = in.Band.Lower
	i.UpperLimit = in.Band.Upper
	i.ShortageRate = in.Band.ShortageRate
	i.ExcessRate = in.Band.ExcessRate
	i.Remarks = in.Remarks
	i.Recalculate()
	i.UpdatedAt = time.Now()
	return nil
}

// Band returns the copied rate schedule
func (i *Item) Band() billing.Band {
	return billing.Band{
		Lower:        i.LowerLimit,
		Upper:        i.UpperLimit,
		BaseFee:      i.BaseFee,
		ShortageRate: i.ShortageRate,
		ExcessRate:   i.ExcessRate,
	}
}

// Recalculate settles the line from its own fields
func (i *Item) Recalculate() {
	s := billing.SettleBand(i.WorkTime, i.Band())
	i.ExcessAmount = s.Excess
	i.ShortageAmount = s.Shortage
	i.Subtotal = s.Subtotal
}
