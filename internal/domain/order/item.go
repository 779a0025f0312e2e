package order

import (
	"time"

	"github.com/edi/backend/internal/domain/billing"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnnamedItemLabel is printed for items without a person name
const UnnamedItemLabel = "明細"

// Default item band in hours per month
var (
	DefaultLowerLimit = decimal.NewFromInt(140)
	DefaultUpperLimit = decimal.NewFromInt(180)
)

// ItemInput carries the editable fields of an order item.
// Nil pointers take the defaults: effort 1.00, limits 140 and 180 hours.
type ItemInput struct {
	PersonName   string
	Effort       *decimal.Decimal
	BaseFee      int64
	ActualHours  decimal.Decimal
	LowerLimit   *decimal.Decimal
	UpperLimit   *decimal.Decimal
	ShortageRate int64
	ExcessRate   int64
	Quantity     int
}

// Item is one worker allocation on an order
type Item struct {
	ID           uuid.UUID
	OrderID      string
	PersonName   string
	Effort       decimal.Decimal
	BaseFee      int64
	ActualHours  decimal.Decimal
	LowerLimit   decimal.Decimal
	UpperLimit   decimal.Decimal
	ShortageRate int64
	ExcessRate   int64
	Quantity     int
	Price        int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewItem creates an order item and prices it
func NewItem(orderID string, in ItemInput) (*Item, error) {
	now := time.Now()
	item := &Item{
		ID:        uuid.New(),
		OrderID:   orderID,
		CreatedAt: now,
	}
	if err := item.apply(in); err != nil {
		return nil, err
	}
	return item, nil
}

func (i *Item) apply(in ItemInput) error {
	effort := decimal.NewFromInt(1)
	if in.Effort != nil {
		effort = *in.Effort
	}
	lower, upper := DefaultLowerLimit, DefaultUpperLimit
	if in.LowerLimit != nil {
		lower = *in.LowerLimit
	}
	if in.UpperLimit != nil {
		upper = *in.UpperLimit
	}
	quantity := in.Quantity
	if quantity == 0 {
		quantity = 1
	}

	if len([]rune(in.PersonName)) > 64 {
		return shared.ErrInvalidInput.Newf("person name cannot exceed 64 characters")
	}
	if !effort.IsPositive() {
		return shared.ErrInvalidInput.Newf("effort must be positive")
	}
	if in.ActualHours.IsNegative() {
		return shared.ErrInvalidInput.Newf("actual hours cannot be negative")
	}
	if quantity < 0 {
		return shared.ErrInvalidInput.Newf("quantity cannot be negative")
	}
	band := billing.Band{Lower: lower, Upper: upper, BaseFee: in.BaseFee, ShortageRate: in.ShortageRate, ExcessRate: in.ExcessRate}
	if err := band.Validate(); err != nil {
		return err
	}

	i.PersonName = in.PersonName
	i.Effort = effort
	i.BaseFee = in.BaseFee
	i.ActualHours = in.ActualHours
	i.LowerLimit = lower
	i.UpperLimit = upper
	i.ShortageRate = in.ShortageRate
	i.ExcessRate = in.ExcessRate
	i.Quantity = quantity
	i.Recalculate()
	i.UpdatedAt = time.Now()
	return nil
}

// DisplayName is the name printed for the item; unnamed items print as 明細
func (i *Item) DisplayName() string {
	if i.PersonName == "" {
		return UnnamedItemLabel
	}
	return i.PersonName
}

// Band returns the item's own rate schedule
func (i *Item) Band() billing.Band {
	return billing.Band{
		Lower:        i.LowerLimit,
		Upper:        i.UpperLimit,
		BaseFee:      i.BaseFee,
		ShortageRate: i.ShortageRate,
		ExcessRate:   i.ExcessRate,
	}
}

// Recalculate prices the item from its own fields only
func (i *Item) Recalculate() {
	i.Price = billing.OrderItemPrice(i.Effort, i.BaseFee, i.ActualHours, i.Band())
}
