// Package signature sends accepted orders to an external e-signature service.
package signature

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/edi/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Provider names accepted in signature.provider
const (
	ProviderMock       = "mock"
	ProviderGoogleDocs = "google_docs"
)

// DefaultMockAPIKey is used when no key is configured for the mock provider
const DefaultMockAPIKey = "mock_secret_key"

// StatusSent is reported for a request the provider accepted
const StatusSent = "SENT"

// ErrNotImplemented is returned by providers that are declared but not wired yet
var ErrNotImplemented = errors.New("signature provider not implemented")

// NewProvider returns the configured provider wrapped in the DRAFT guard
func NewProvider(cfg config.SignatureConfig, logger *zap.Logger) (order.SignatureProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var p order.SignatureProvider
	switch cfg.Provider {
	case "", ProviderMock:
		p = NewMockProvider(cfg.APIKey, logger)
	case ProviderGoogleDocs:
		p = &GoogleDocsProvider{}
	default:
		return nil, fmt.Errorf("unknown signature provider %q", cfg.Provider)
	}
	logger.Info("Signature provider configured", zap.String("provider", orDefault(cfg.Provider, ProviderMock)))
	return NewGuard(p, logger), nil
}

// Guard refuses DRAFT orders and reports every provider failure as
// EXTERNAL_SIGNATURE_FAILURE
type Guard struct {
	next   order.SignatureProvider
	logger *zap.Logger
}

// NewGuard wraps next
func NewGuard(next order.SignatureProvider, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{next: next, logger: logger}
}

// SendDocument implements order.SignatureProvider
func (g *Guard) SendDocument(ctx context.Context, o *order.Order) (*order.SignatureRequest, error) {
	if o == nil {
		return nil, shared.ErrInvalidInput.Newf("order is required")
	}
	if o.Status == order.StatusDraft {
		return nil, shared.ErrExternalSignatureFailure.Newf("order %s is a draft and cannot be sent for signature", o.ID)
	}
	req, err := g.next.SendDocument(ctx, o)
	if err != nil {
		g.logger.Error("Failed to request signature", zap.String("order_id", o.ID), zap.Error(err))
		if errors.Is(err, shared.ErrExternalSignatureFailure) {
			return nil, err
		}
		return nil, shared.ErrExternalSignatureFailure.Wrap(err, "unexpected error while requesting signature")
	}
	return req, nil
}

// MockProvider accepts every request without calling out. It is the
// development default and is refused in production by config validation.
type MockProvider struct {
	apiKey string
	logger *zap.Logger
}

// NewMockProvider creates a MockProvider. An empty key uses DefaultMockAPIKey.
func NewMockProvider(apiKey string, logger *zap.Logger) *MockProvider {
	if apiKey == "" {
		apiKey = DefaultMockAPIKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MockProvider{apiKey: apiKey, logger: logger}
}

// SendDocument returns a fresh sig_xxxxxxxx reference
func (p *MockProvider) SendDocument(ctx context.Context, o *order.Order) (*order.SignatureRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.apiKey == "" {
		return nil, shared.ErrExternalSignatureFailure.Newf("API key is missing")
	}
	ref := "sig_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	p.logger.Info("Mock: document sent for signature",
		zap.String("order_id", o.ID),
		zap.String("signature_id", ref),
	)
	return &order.SignatureRequest{
		Reference: ref,
		Status:    StatusSent,
		URL:       "https://mock-signature.com/sign/" + ref,
	}, nil
}

// GoogleDocsProvider is reserved for the Google Docs e-signature
// integration. It rejects every request until that integration exists.
type GoogleDocsProvider struct{}

// SendDocument implements order.SignatureProvider
func (p *GoogleDocsProvider) SendDocument(context.Context, *order.Order) (*order.SignatureRequest, error) {
	return nil, fmt.Errorf("google docs: %w", ErrNotImplemented)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

var (
	_ order.SignatureProvider = (*Guard)(nil)
	_ order.SignatureProvider = (*MockProvider)(nil)
	_ order.SignatureProvider = (*GoogleDocsProvider)(nil)
)
