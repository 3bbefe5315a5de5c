package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sangkips/mn-payments-api/internal/domain/entity"
	"github.com/sangkips/mn-payments-api/internal/domain/enum"
	"github.com/sangkips/mn-payments-api/internal/domain/repository"
	"github.com/sangkips/mn-payments-api/pkg/apperror"
	"github.com/sirupsen/logrus"
)

// ReconcileService confirms gateway payment callbacks against the local
// invoice state. The gateway's payment/check answer, not the callback body,
// is authoritative.
type ReconcileService struct {
	invoiceRepo repository.InvoiceRepository
	gateway     PaymentGateway
	log         *logrus.Entry
	now         func() time.Time
}

// NewReconcileService creates a new reconcile service.
func NewReconcileService(invoiceRepo repository.InvoiceRepository, gateway PaymentGateway, log *logrus.Logger) *ReconcileService {
	return &ReconcileService{
		invoiceRepo: invoiceRepo,
		gateway:     gateway,
		log:         log.WithField("component", "reconcile_service"),
		now:         time.Now,
	}
}

// CallbackInput is what the gateway delivers on its callback hook. RawPayload
// is stored verbatim with the invoice for audit.
type CallbackInput struct {
	InvoiceID  string
	RawPayload []byte
}

// ProcessCallback reconciles one callback delivery. The flow is idempotent:
// a repeated callback for an already confirmed payment is a no-op, while a
// callback contradicting a terminal state surfaces a conflict.
func (s *ReconcileService) ProcessCallback(ctx context.Context, input *CallbackInput) (*entity.Invoice, error) {
	if input.InvoiceID == "" {
		return nil, apperror.NewValidationError("Callback is missing the invoice identifier")
	}

	// The callback URL carries the sender invoice number, while manual
	// replays may quote the gateway's own invoice ID. Accept both.
	invoice, err := s.invoiceRepo.GetByInvoiceID(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		invoice, err = s.invoiceRepo.GetBySenderInvoiceNo(ctx, input.InvoiceID)
		if err != nil {
			return nil, err
		}
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}

	if len(input.RawPayload) > 0 {
		if err := s.invoiceRepo.RecordCallback(ctx, invoice.ID, s.now(), string(input.RawPayload)); err != nil {
			return nil, err
		}
	}

	check, err := s.gateway.CheckPayment(ctx, invoice.InvoiceID)
	if err != nil {
		return nil, err
	}

	result, _ := json.Marshal(check)
	paid := check.Count > 0

	switch invoice.Status {
	case enum.InvoiceStatusPaid:
		if !paid {
			// The gateway no longer reports the payment this record was
			// confirmed on.
			return nil, apperror.NewReconciliationConflict("Invoice is recorded as paid but the gateway reports no payment")
		}
		if !check.PaidAmount.Equal(invoice.Amount) {
			return nil, apperror.NewReconciliationConflict("Gateway paid amount does not match the confirmed invoice")
		}
		// Duplicate delivery of a confirmation we already hold.
		return invoice, nil

	case enum.InvoiceStatusCanceled:
		if paid {
			s.log.WithField("invoice_id", invoice.InvoiceID).
				Error("payment reported against a canceled invoice")
			return nil, apperror.NewReconciliationConflict("Payment reported against a canceled invoice")
		}
		return invoice, nil
	}

	if !paid {
		// Callback fired but nothing settled yet; keep the audit trail and
		// leave the invoice open.
		if err := s.invoiceRepo.RecordPaymentCheck(ctx, invoice.ID, s.now(), string(result)); err != nil {
			return nil, err
		}
		return invoice, nil
	}

	if !check.PaidAmount.Equal(invoice.Amount) {
		s.log.WithFields(logrus.Fields{
			"invoice_id": invoice.InvoiceID,
			"expected":   invoice.Amount,
			"paid":       check.PaidAmount,
		}).Warn("callback paid amount does not match invoice amount")
		return nil, apperror.NewReconciliationConflict("Paid amount does not match the invoice amount")
	}

	paidAt := s.now()
	rows, err := s.invoiceRepo.TransitionStatus(ctx, invoice.ID, enum.InvoiceStatusUnpaid, enum.InvoiceStatusPaid, invoice.Version, &paidAt, string(result))
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Lost the race against a poll or a duplicate callback. Re-read and
		// judge the winner's outcome.
		current, err := s.invoiceRepo.GetByInvoiceID(ctx, invoice.InvoiceID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, apperror.NewNotFoundError("Invoice")
		}
		if current.Status == enum.InvoiceStatusPaid {
			return current, nil
		}
		return nil, apperror.NewReconciliationConflict("Invoice was finalized in a conflicting state")
	}

	s.log.WithField("invoice_id", invoice.InvoiceID).Info("callback confirmed invoice as paid")
	return s.invoiceRepo.GetByInvoiceID(ctx, invoice.InvoiceID)
}
