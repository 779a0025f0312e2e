package printing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/edi/backend/internal/domain/shared"
)

// Request asks the renderer for one document
type Request struct {
	Kind Kind
	// Snapshot is an *OrderSnapshot for ORDER and ACCEPTANCE,
	// an *InvoiceSnapshot for INVOICE and PAYMENT_NOTICE
	Snapshot any
	// Watermark is stamped across every page when set (e.g. "下書き")
	Watermark string
}

// Validate checks that the snapshot type matches the kind
func (r *Request) Validate() error {
	if r == nil || !r.Kind.IsValid() {
		return shared.ErrInvalidInput.Newf("invalid document kind")
	}
	switch r.Kind {
	case KindOrder, KindAcceptance:
		if _, ok := r.Snapshot.(*OrderSnapshot); !ok {
			return shared.ErrInvalidInput.Newf("%s requires an order snapshot", r.Kind)
		}
	case KindInvoice, KindPaymentNotice:
		if _, ok := r.Snapshot.(*InvoiceSnapshot); !ok {
			return shared.ErrInvalidInput.Newf("%s requires an invoice snapshot", r.Kind)
		}
	}
	return nil
}

// Renderer turns a document request into PDF bytes.
// Failures are reported as RENDER_FAILURE and are safe to retry.
type Renderer interface {
	Render(ctx context.Context, req *Request) ([]byte, error)
	// ContentType is the MIME type of the rendered bytes
	ContentType() string
}

// Document is a rendered or stored document ready for download
type Document struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ContentStore persists frozen documents. Bytes written under a key are
// immutable: a second Put with different bytes fails with ErrContentExists.
type ContentStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// ErrContentExists is returned when a key already holds different bytes
var ErrContentExists = shared.NewDomainError("CONTENT_EXISTS", "Content already stored under key")

// Digest returns the hex sha256 of data
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DocumentKey returns the content-addressed key of a frozen document,
// e.g. "acceptances/MP20260201000001/<sha256>.pdf"
func DocumentKey(kind Kind, ownerID, digest string) string {
	return fmt.Sprintf("%ss/%s/%s.pdf", kind.FilePrefix(), ownerID, digest)
}

// ErrDigestMismatch is returned when stored bytes no longer hash to the
// recorded digest
var ErrDigestMismatch = shared.NewDomainError("DIGEST_MISMATCH", "Stored document does not match its recorded hash")
