package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/edi/backend/internal/application/reconcile"
	"github.com/edi/backend/internal/infrastructure/logger"
	"github.com/edi/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Reconciler applies signature provider callbacks
type Reconciler interface {
	Reconcile(ctx context.Context, ref, eventType string) (*reconcile.Result, error)
}

// SignatureEvent is the callback body sent by the e-signature provider.
// Fields other than these two are ignored.
type SignatureEvent struct {
	SignatureID string `json:"signature_id" example:"sig_01HZX4"`
	EventType   string `json:"event_type" example:"document_signed"`
}

// WebhookHandler receives callbacks from external systems
type WebhookHandler struct {
	BaseHandler
	reconciler Reconciler
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(reconciler Reconciler) *WebhookHandler {
	return &WebhookHandler{reconciler: reconciler}
}

// Signature godoc
// @Summary      E-signature callback
// @Description  Approves the order whose signature reference matches when event_type is document_signed.
// @Description  Repeated deliveries are acknowledged without changing the order.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        request body SignatureEvent true "Callback"
// @Success      200 {object} dto.StatusResponse
// @Failure      400 {object} dto.Response "Malformed JSON or missing signature_id"
// @Failure      404 {object} dto.Response "No order carries the signature reference"
// @Router       /webhooks/signature [post]
func (h *WebhookHandler) Signature(c *gin.Context) {
	log := logger.GetGinLogger(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Failed to read request body")
		return
	}

	var event SignatureEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Warn("Malformed signature callback", zap.Error(err), zap.Int("body_size", len(body)))
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
		return
	}
	if strings.TrimSpace(event.SignatureID) == "" {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "signature_id is required")
		return
	}

	result, err := h.reconciler.Reconcile(c.Request.Context(), event.SignatureID, event.EventType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	log.Info("Signature callback processed",
		zap.String("signature_id", event.SignatureID),
		zap.String("event_type", event.EventType),
		zap.String("order_id", result.OrderID),
		zap.Bool("applied", result.Applied),
		zap.Bool("duplicate", result.Duplicate),
	)
	c.JSON(http.StatusOK, dto.StatusResponse{
		Status:          "success",
		AlreadyApproved: result.AlreadyApproved,
	})
}
