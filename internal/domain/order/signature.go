package order

import "context"

// SignatureRequest is the provider's receipt for a signature request
type SignatureRequest struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	URL       string `json:"url"`
}

// SignatureProvider sends an order to an external e-signature service.
// Completion is reported back through the signature webhook.
type SignatureProvider interface {
	SendDocument(ctx context.Context, o *Order) (*SignatureRequest, error)
}
