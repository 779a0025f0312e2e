package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/edi/backend/internal/application/txscope"
	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/printing"
	"github.com/edi/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Approve freezes the acceptance document of an UNCONFIRMED or CONFIRMING order.
//
// Under a row lock on the order it stamps finalized_at, renders the
// acceptance document, hashes it, stores it under a content-addressed key and
// writes status, hash and key with a conditional update. Approving an
// APPROVED order returns it untouched with AlreadyApproved set. After commit
// the signature request and the staff notice are attempted; their failures
// are returned as warnings.
func (s *Service) Approve(ctx context.Context, id string) (*ApproveResponse, error) {
	var (
		approved        *order.Order
		alreadyApproved bool
		storedKey       string
	)
	err := s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if o.IsApproved() {
			approved, alreadyApproved = o, true
			return nil
		}
		if !o.Status.IsAwaitingApproval() {
			return shared.ErrInvalidTransition.Newf("cannot approve order %s in %s status", o.ID, o.Status)
		}

		if err := o.Finalize(s.now()); err != nil {
			return err
		}
		snapshot, err := s.snapshot(ctx, repos, o)
		if err != nil {
			return err
		}
		content, err := s.render(ctx, &printing.Request{Kind: printing.KindAcceptance, Snapshot: snapshot})
		if err != nil {
			return err
		}
		hash := printing.Digest(content)
		key := printing.DocumentKey(printing.KindAcceptance, o.ID, hash)
		if err := s.store.Put(ctx, key, content); err != nil {
			return fmt.Errorf("store acceptance document: %w", err)
		}
		storedKey = key

		if err := o.Approve(hash, key); err != nil {
			return err
		}
		applied, err := repos.OrderRepo().MarkApproved(ctx, o)
		if err != nil {
			return err
		}
		if !applied {
			// another approval committed first; keep its document
			current, err := repos.OrderRepo().FindByID(ctx, id)
			if err != nil {
				return err
			}
			if current.AcceptancePDFKey != key {
				if err := s.store.Delete(ctx, key); err != nil {
					s.logger.Warn("failed to remove losing acceptance document", zap.String("key", key), zap.Error(err))
				}
			}
			storedKey = ""
			approved, alreadyApproved = current, true
			return nil
		}
		approved = o
		return nil
	})
	if err != nil {
		if storedKey != "" {
			s.discard(ctx, id, storedKey)
		}
		return nil, err
	}

	if alreadyApproved {
		approved.ClearDomainEvents()
		return &ApproveResponse{Order: ToOrderResponse(approved), AlreadyApproved: true}, nil
	}

	s.publishEvents(ctx, approved)
	s.logger.Info("order approved",
		zap.String("order_id", approved.ID),
		zap.String("document_hash", approved.DocumentHash),
		zap.String("acceptance_pdf_key", approved.AcceptancePDFKey),
	)

	var warnings []string
	if warning := s.requestSignature(ctx, approved); warning != "" {
		warnings = append(warnings, warning)
	}
	if warning := s.notifyStaff(ctx, approved); warning != "" {
		warnings = append(warnings, warning)
	}
	return &ApproveResponse{Order: ToOrderResponse(approved), Warnings: warnings}, nil
}

// requestSignature sends the order to the signature provider and stores the
// reference once. Failures are logged and returned as a warning.
func (s *Service) requestSignature(ctx context.Context, o *order.Order) string {
	if s.signer == nil || o.ExternalSignatureID != "" {
		return ""
	}
	req, err := s.signer.SendDocument(ctx, o)
	if err != nil {
		s.logger.Warn("signature request failed", zap.String("order_id", o.ID), zap.Error(err))
		if !errors.Is(err, shared.ErrExternalSignatureFailure) {
			err = shared.ErrExternalSignatureFailure.Wrap(err, "signature request failed")
		}
		return err.Error()
	}

	var stored bool
	err = s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		var err error
		stored, err = repos.OrderRepo().SetSignatureRef(ctx, o.ID, req.Reference)
		return err
	})
	if err != nil {
		s.logger.Warn("failed to store signature reference",
			zap.String("order_id", o.ID), zap.String("reference", req.Reference), zap.Error(err))
		return fmt.Sprintf("signature reference %s could not be stored: %v", req.Reference, err)
	}
	if stored {
		_ = o.AttachSignature(req.Reference)
		s.logger.Info("signature requested", zap.String("order_id", o.ID), zap.String("reference", req.Reference))
	}
	return ""
}

// notifyStaff mails the approval notice to the configured staff recipients
func (s *Service) notifyStaff(ctx context.Context, o *order.Order) string {
	if s.mailer == nil || len(s.staffRecipients) == 0 {
		return ""
	}
	var (
		customerName string
		projectName  string
	)
	_ = s.scope.Execute(ctx, func(repos txscope.TransactionalRepositories) error {
		if c, err := repos.CustomerRepo().FindByID(ctx, o.CustomerID); err == nil {
			customerName = c.Name
		}
		if o.ProjectID != "" {
			if p, err := repos.ProjectRepo().FindByID(ctx, o.ProjectID); err == nil {
				projectName = p.Name
			}
		}
		return nil
	})

	msg := shared.MailMessage{
		To:      s.staffRecipients,
		Subject: fmt.Sprintf("【承認通知】注文番号：%s", o.ID),
		Body:    approvalNoticeBody(o, customerName, projectName),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Warn("approval notice failed", zap.String("order_id", o.ID), zap.Error(err))
		return fmt.Sprintf("approval notice could not be sent: %v", err)
	}
	return ""
}

func approvalNoticeBody(o *order.Order, customerName, projectName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s 様より、以下の注文書が承認されました。\n\n", customerName)
	fmt.Fprintf(&b, "■注文番号：%s\n", o.ID)
	fmt.Fprintf(&b, "■プロジェクト：%s\n", projectName)
	fmt.Fprintf(&b, "■注文日：%s\n", o.OrderDate.Format(DateLayout))
	fmt.Fprintf(&b, "■文書ハッシュ：%s\n", o.DocumentHash)
	return b.String()
}
