// Package reconcile applies e-signature provider callbacks to orders.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apporder "github.com/edi/backend/internal/application/order"
	"github.com/edi/backend/internal/application/txscope"
	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EventDocumentSigned is the provider event that approves an order
const EventDocumentSigned = "document_signed"

// Approver approves orders; the order service satisfies it
type Approver interface {
	Approve(ctx context.Context, id string) (*apporder.ApproveResponse, error)
}

// Result is the outcome of one callback
type Result struct {
	OrderID         string `json:"order_id"`
	AlreadyApproved bool   `json:"already_approved"`
	// Applied is true when this delivery changed the order
	Applied bool `json:"applied"`
	// Duplicate is true when the delivery had been processed before
	Duplicate bool `json:"duplicate"`
}

// Service reconciles signature callbacks. Deliveries are idempotent: the
// approval is guarded by the order state and repeated deliveries of the same
// (reference, event) pair are short-circuited through the idempotency store.
type Service struct {
	scope    txscope.TransactionScope
	approver Approver
	store    shared.IdempotencyStore
	ttl      time.Duration
	logger   *zap.Logger
}

// NewService creates a reconcile Service. store may be nil, in which case
// only the order state guards against repeats.
func NewService(scope txscope.TransactionScope, approver Approver, store shared.IdempotencyStore) *Service {
	return &Service{
		scope:    scope,
		approver: approver,
		store:    store,
		ttl:      shared.DefaultIdempotencyTTL,
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger
func (s *Service) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetTTL sets how long processed deliveries are remembered
func (s *Service) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		s.ttl = ttl
	}
}

// DeliveryKey is the idempotency key of a callback
func DeliveryKey(ref, eventType string) string {
	return fmt.Sprintf("signature:%s:%s", ref, eventType)
}

// Reconcile applies one provider callback.
//
// An unknown reference fails with UNKNOWN_REFERENCE and is not retried by
// the caller. document_signed approves the order; other event types are
// acknowledged without a state change. The delivery is marked processed only
// after it succeeded, so a failed delivery can be retried.
func (s *Service) Reconcile(ctx context.Context, ref, eventType string) (*Result, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, shared.ErrInvalidInput.Newf("signature reference is required")
	}
	eventType = strings.TrimSpace(eventType)
	log := s.logger.With(zap.String("signature_ref", ref), zap.String("event_type", eventType))

	var o *order.Order
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		var err error
		o, err = repos.OrderRepo().FindBySignatureRef(ctx, ref)
		return err
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Warn("signature callback for unknown reference")
			return nil, shared.ErrUnknownReference.Newf("no order has signature reference %s", ref)
		}
		return nil, err
	}

	key := DeliveryKey(ref, eventType)
	if s.store != nil {
		processed, err := s.store.IsProcessed(ctx, key)
		if err != nil {
			log.Warn("idempotency lookup failed, processing delivery", zap.Error(err))
		} else if processed {
			log.Info("duplicate signature callback", zap.String("order_id", o.ID))
			return &Result{OrderID: o.ID, AlreadyApproved: o.IsApproved(), Duplicate: true}, nil
		}
	}

	result := &Result{OrderID: o.ID, AlreadyApproved: o.IsApproved()}
	if eventType == EventDocumentSigned {
		resp, err := s.approver.Approve(ctx, o.ID)
		if err != nil {
			log.Error("approval from signature callback failed", zap.String("order_id", o.ID), zap.Error(err))
			return nil, err
		}
		result.AlreadyApproved = resp.AlreadyApproved
		result.Applied = !resp.AlreadyApproved
		for _, w := range resp.Warnings {
			log.Warn("approval completed with warning", zap.String("order_id", o.ID), zap.String("warning", w))
		}
	} else {
		log.Info("signature callback acknowledged without state change", zap.String("order_id", o.ID))
	}

	if s.store != nil {
		if _, err := s.store.MarkProcessed(ctx, key, s.ttl); err != nil {
			log.Warn("failed to record processed delivery", zap.Error(err))
		}
	}
	log.Info("signature callback reconciled",
		zap.String("order_id", o.ID),
		zap.Bool("applied", result.Applied),
		zap.Bool("already_approved", result.AlreadyApproved),
	)
	return result, nil
}
