package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/mn-payments-api/internal/domain/entity"
	"github.com/sangkips/mn-payments-api/internal/domain/enum"
	"github.com/sangkips/mn-payments-api/internal/domain/repository"
	"github.com/sangkips/mn-payments-api/internal/infrastructure/qpay"
	"github.com/sangkips/mn-payments-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PaymentGateway is the slice of the QPay client the invoice service needs.
type PaymentGateway interface {
	CreateInvoice(ctx context.Context, params *qpay.CreateInvoiceParams) (*qpay.Invoice, error)
	CheckPayment(ctx context.Context, invoiceID string) (*qpay.PaymentCheck, error)
	CancelInvoice(ctx context.Context, invoiceID string) error
}

// InvoiceService owns the invoice lifecycle: creation on the gateway,
// payment polling and cancellation.
type InvoiceService struct {
	invoiceRepo repository.InvoiceRepository
	gateway     PaymentGateway
	log         *logrus.Entry
	now         func() time.Time
}

// NewInvoiceService creates a new invoice service.
func NewInvoiceService(invoiceRepo repository.InvoiceRepository, gateway PaymentGateway, log *logrus.Logger) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		gateway:     gateway,
		log:         log.WithField("component", "invoice_service"),
		now:         time.Now,
	}
}

// CreateInvoiceInput is a new invoice request.
type CreateInvoiceInput struct {
	SenderInvoiceNo string
	SenderName      string
	SenderTIN       string
	ReceiverCode    string
	Description     string
	Amount          decimal.Decimal
	Currency        enum.Currency
}

// CreateInvoice registers the invoice with the gateway and records it as
// UNPAID. The local record is only written once the gateway has accepted the
// invoice.
func (s *InvoiceService) CreateInvoice(ctx context.Context, input *CreateInvoiceInput) (*entity.Invoice, error) {
	if input.Amount.Sign() <= 0 {
		return nil, apperror.NewValidationError("Invoice amount must be greater than zero")
	}
	if input.SenderInvoiceNo == "" {
		return nil, apperror.NewValidationError("Sender invoice number is required")
	}

	remote, err := s.gateway.CreateInvoice(ctx, &qpay.CreateInvoiceParams{
		SenderInvoiceNo: input.SenderInvoiceNo,
		ReceiverCode:    input.ReceiverCode,
		Description:     input.Description,
		Amount:          input.Amount,
	})
	if err != nil {
		return nil, err
	}

	urls := make([]entity.PaymentURL, 0, len(remote.URLs))
	for i, u := range remote.URLs {
		urls = append(urls, entity.PaymentURL{
			Position:    i,
			Name:        u.Name,
			Description: u.Description,
			Link:        u.Link,
			Logo:        u.Logo,
		})
	}

	invoice := &entity.Invoice{
		InvoiceID:       remote.InvoiceID,
		InvoiceCode:     remote.InvoiceCode,
		CallbackURL:     remote.CallbackURL,
		Status:          enum.InvoiceStatusUnpaid,
		Amount:          input.Amount,
		Currency:        input.Currency,
		SenderInvoiceNo: input.SenderInvoiceNo,
		SenderName:      input.SenderName,
		SenderTIN:       input.SenderTIN,
		Description:     input.Description,
		QRText:          remote.QRText,
		QRImage:         remote.QRImage,
		URLs:            urls,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		s.log.WithError(err).WithField("invoice_id", remote.InvoiceID).
			Error("gateway accepted invoice but the record could not be written")
		return nil, err
	}

	return invoice, nil
}

// GetInvoice returns a stored invoice by its local ID.
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoices returns stored invoices matching the filters.
func (s *InvoiceService) ListInvoices(ctx context.Context, params *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	return s.invoiceRepo.List(ctx, params)
}

// CheckPayment polls the gateway for settled payments and confirms the
// invoice as PAID when the paid amount covers it exactly. Terminal invoices
// are returned as-is without touching the gateway.
func (s *InvoiceService) CheckPayment(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status.IsTerminal() {
		return invoice, nil
	}

	check, err := s.gateway.CheckPayment(ctx, invoice.InvoiceID)
	if err != nil {
		return nil, err
	}

	result, _ := json.Marshal(check)

	if check.Count == 0 {
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
		}).Warn("paid amount does not match invoice amount")
		return nil, apperror.NewReconciliationConflict("Paid amount does not match the invoice amount")
	}

	paidAt := s.now()
	rows, err := s.invoiceRepo.TransitionStatus(ctx, invoice.ID, enum.InvoiceStatusUnpaid, enum.InvoiceStatusPaid, invoice.Version, &paidAt, string(result))
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Another writer finalized the invoice first; report its outcome.
		return s.GetInvoice(ctx, id)
	}

	s.log.WithField("invoice_id", invoice.InvoiceID).Info("invoice confirmed paid")
	return s.GetInvoice(ctx, id)
}

// CancelInvoice voids an UNPAID invoice on the gateway and records the
// transition. Terminal invoices cannot be canceled.
func (s *InvoiceService) CancelInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status.IsTerminal() {
		return nil, apperror.NewInvalidStateError(fmt.Sprintf("Only an unpaid invoice can be canceled, invoice is %s", invoice.Status))
	}

	if err := s.gateway.CancelInvoice(ctx, invoice.InvoiceID); err != nil {
		return nil, err
	}

	rows, err := s.invoiceRepo.TransitionStatus(ctx, invoice.ID, enum.InvoiceStatusUnpaid, enum.InvoiceStatusCanceled, invoice.Version, nil, "")
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		current, err := s.GetInvoice(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, apperror.NewInvalidStateError(fmt.Sprintf("Invoice was finalized as %s before it could be canceled", current.Status))
	}

	s.log.WithField("invoice_id", invoice.InvoiceID).Info("invoice canceled")
	return s.GetInvoice(ctx, id)
}
