package order

import (
	"context"
	"fmt"

	"github.com/edi/backend/internal/application/txscope"
	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/printing"
	"go.uber.org/zap"
)

// OrderDocument returns the order document. A DRAFT order gets a fresh
// watermarked preview that is never stored; published orders return the
// bytes frozen at publish time.
func (s *Service) OrderDocument(ctx context.Context, id string) (*printing.Document, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == order.StatusDraft || o.OrderPDFKey == "" {
		content, err := s.preview(ctx, o, printing.KindOrder, DraftWatermark)
		if err != nil {
			return nil, err
		}
		return s.document(o, printing.KindOrder, content), nil
	}
	content, err := s.store.Get(ctx, o.OrderPDFKey)
	if err != nil {
		return nil, fmt.Errorf("load order document %s: %w", o.OrderPDFKey, err)
	}
	return s.document(o, printing.KindOrder, content), nil
}

// AcceptanceDocument returns the frozen acceptance document of an approved
// order after checking it against the recorded hash. Orders that are not yet
// approved get an unsaved preview.
func (s *Service) AcceptanceDocument(ctx context.Context, id string) (*printing.Document, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.IsApproved() {
		content, err := s.preview(ctx, o, printing.KindAcceptance, "")
		if err != nil {
			return nil, err
		}
		return s.document(o, printing.KindAcceptance, content), nil
	}

	content, err := s.store.Get(ctx, o.AcceptancePDFKey)
	if err != nil {
		return nil, fmt.Errorf("load acceptance document %s: %w", o.AcceptancePDFKey, err)
	}
	if digest := printing.Digest(content); digest != o.DocumentHash {
		s.logger.Error("acceptance document hash mismatch",
			zap.String("order_id", o.ID),
			zap.String("expected", o.DocumentHash),
			zap.String("actual", digest),
		)
		return nil, printing.ErrDigestMismatch.Newf("acceptance document of order %s does not match its hash", o.ID)
	}
	return s.document(o, printing.KindAcceptance, content), nil
}

func (s *Service) preview(ctx context.Context, o *order.Order, kind printing.Kind, watermark string) ([]byte, error) {
	var snapshot *printing.OrderSnapshot
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		var err error
		snapshot, err = s.snapshot(ctx, repos, o)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.render(ctx, &printing.Request{Kind: kind, Snapshot: snapshot, Watermark: watermark})
}

func (s *Service) document(o *order.Order, kind printing.Kind, content []byte) *printing.Document {
	return &printing.Document{
		FileName:    o.DocumentFileName(kind.FilePrefix()),
		ContentType: s.renderer.ContentType(),
		Content:     content,
	}
}
