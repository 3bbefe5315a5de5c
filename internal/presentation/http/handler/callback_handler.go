package handler

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/mn-payments-api/internal/application/service"
	"github.com/sangkips/mn-payments-api/internal/presentation/http/dto/response"
)

// CallbackHandler receives payment gateway callback notifications
type CallbackHandler struct {
	reconcileService *service.ReconcileService
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(reconcileService *service.ReconcileService) *CallbackHandler {
	return &CallbackHandler{reconcileService: reconcileService}
}

// HandleCallback reconciles a gateway payment notification. The invoice is
// identified by the invoice_id query parameter stamped into the callback URL
// at invoice creation; the body, when present, is stored verbatim for audit.
// @Summary Payment callback
// @Description Gateway payment notification entry point
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /payments/callback [post]
func (h *CallbackHandler) HandleCallback(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		response.BadRequest(c, "Could not read callback body")
		return
	}

	invoiceID := c.Query("invoice_id")
	if invoiceID == "" {
		invoiceID = c.Query("qpay_payment_id")
	}
	if invoiceID == "" && len(raw) > 0 {
		var body struct {
			InvoiceID string `json:"invoice_id"`
			ObjectID  string `json:"object_id"`
		}
		if err := json.Unmarshal(raw, &body); err == nil {
			invoiceID = body.InvoiceID
			if invoiceID == "" {
				invoiceID = body.ObjectID
			}
		}
	}

	invoice, err := h.reconcileService.ProcessCallback(c.Request.Context(), &service.CallbackInput{
		InvoiceID:  invoiceID,
		RawPayload: raw,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Callback processed", gin.H{
		"invoice_id": invoice.InvoiceID,
		"status":     invoice.Status,
	})
}
