package service

import (
	"context"
	"testing"
	"time"

	"github.com/sangkips/mn-payments-api/internal/domain/entity"
	"github.com/sangkips/mn-payments-api/internal/domain/enum"
	"github.com/sangkips/mn-payments-api/internal/domain/repository"
	"github.com/sangkips/mn-payments-api/internal/infrastructure/qpay"
	infraRepo "github.com/sangkips/mn-payments-api/internal/infrastructure/repository"
	"github.com/sangkips/mn-payments-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestInvoiceService(t *testing.T, gateway *mockPaymentGateway) (*InvoiceService, repository.InvoiceRepository, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	repo := infraRepo.NewInvoiceRepository(db)
	return NewInvoiceService(repo, gateway, testLogger()), repo, db
}

func acceptingGateway() *mockPaymentGateway {
	return &mockPaymentGateway{
		CreateInvoiceFunc: func(ctx context.Context, params *qpay.CreateInvoiceParams) (*qpay.Invoice, error) {
			return &qpay.Invoice{
				InvoiceID:   "remote-" + params.SenderInvoiceNo,
				InvoiceCode: "TEST_INVOICE",
				CallbackURL: "https://example.com/callback?invoice_id=" + params.SenderInvoiceNo,
				QRText:      "qr-payload",
				URLs:        []qpay.InvoiceURL{{Name: "Khan bank", Link: "khanbank://q"}},
			}, nil
		},
		CheckPaymentFunc: func(ctx context.Context, invoiceID string) (*qpay.PaymentCheck, error) {
			return &qpay.PaymentCheck{}, nil
		},
		CancelInvoiceFunc: func(ctx context.Context, invoiceID string) error {
			return nil
		},
	}
}

func TestCreateInvoiceRejectsNonPositiveAmount(t *testing.T) {
	svc, _, _ := newTestInvoiceService(t, acceptingGateway())

	for _, amount := range []string{"0", "-100"} {
		_, err := svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
			SenderInvoiceNo: "INV-001",
			Amount:          dec(amount),
		})
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	}
}

func TestCreateInvoicePersistsUnpaidRecord(t *testing.T) {
	svc, repo, _ := newTestInvoiceService(t, acceptingGateway())

	invoice, err := svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		SenderInvoiceNo: "INV-001",
		Description:     "test purchase",
		Amount:          dec("10000"),
		Currency:        enum.CurrencyMNT,
	})
	require.NoError(t, err)
	assert.Equal(t, "remote-INV-001", invoice.InvoiceID)
	assert.Equal(t, enum.InvoiceStatusUnpaid, invoice.Status)

	stored, err := repo.GetByInvoiceID(context.Background(), "remote-INV-001")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "TEST_INVOICE", stored.InvoiceCode)
	assert.Equal(t, "https://example.com/callback?invoice_id=INV-001", stored.CallbackURL)
	require.Len(t, stored.URLs, 1)
	assert.Equal(t, "Khan bank", stored.URLs[0].Name)
}

func TestCreateInvoiceMinimumAmount(t *testing.T) {
	svc, _, _ := newTestInvoiceService(t, acceptingGateway())

	invoice, err := svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		SenderInvoiceNo: "INV-001",
		Amount:          dec("0.01"),
	})
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusUnpaid, invoice.Status)
	assert.True(t, invoice.Amount.Equal(dec("0.01")))
}

func TestCreateInvoiceGatewayFailureDoesNotPersist(t *testing.T) {
	gateway := acceptingGateway()
	gateway.CreateInvoiceFunc = func(ctx context.Context, params *qpay.CreateInvoiceParams) (*qpay.Invoice, error) {
		return nil, apperror.NewRemoteError("payment gateway returned status 500")
	}
	svc, _, db := newTestInvoiceService(t, gateway)

	_, err := svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		SenderInvoiceNo: "INV-001",
		Amount:          dec("10000"),
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&entity.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCheckPaymentNoSettlementKeepsInvoiceOpen(t *testing.T) {
	svc, _, _ := newTestInvoiceService(t, acceptingGateway())

	created, err := svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		SenderInvoiceNo: "INV-001",
		Amount:          dec("10000"),
	})
	require.NoError(t, err)

	invoice, err := svc.CheckPayment(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusUnpaid, invoice.Status)

	refreshed, err := svc.GetInvoice(context.Background(), created.ID)
	require.NoError(t, err)
	assert.NotNil(t, refreshed.LastPaymentCheck)
}

func TestCheckPaymentConfirmsExactAmount(t *testing.T) {
	gateway := acceptingGateway()
	gateway.CheckPaymentFunc = func(ctx context.Context, invoiceID string) (*qpay.PaymentCheck, error) {
		return &qpay.PaymentCheck{Count: 1, PaidAmount: dec("10000")}, nil
	}
	svc, _, _ := newTestInvoiceService(t, gateway)

	created, err := svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		SenderInvoiceNo: "INV-001",
		Amount:          dec("10000"),
	})
	require.NoError(t, err)

	invoice, err := svc.CheckPayment(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusPaid, invoice.Status)
	assert.NotNil(t, invoice.PaidAt)
}

func TestCheckPaymentAmountMismatchConflicts(t *testing.T) {
	gateway := acceptingGateway()
	gateway.CheckPaymentFunc = func(ctx context.Context, invoiceID string) (*qpay.PaymentCheck, error) {
		return &qpay.PaymentCheck{Count: 1, PaidAmount: dec("9999")}, nil
	}
	svc, _, _ := newTestInvoiceService(t, gateway)

	created, err := svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		SenderInvoiceNo: "INV-001",
		Amount:          dec("10000"),
	})
	require.NoError(t, err)

	_, err = svc.CheckPayment(context.Background(), created.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindReconciliationConflict))

	// The invoice stays open after a conflicting check.
	invoice, err := svc.GetInvoice(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusUnpaid, invoice.Status)
}

func TestCheckPaymentTerminalInvoiceSkipsGateway(t *testing.T) {
	gateway := acceptingGateway()
	checks := 0
	gateway.CheckPaymentFunc = func(ctx context.Context, invoiceID string) (*qpay.PaymentCheck, error) {
		checks++
		return &qpay.PaymentCheck{Count: 1, PaidAmount: dec("10000")}, nil
	}
	svc, _, _ := newTestInvoiceService(t, gateway)

	created, err := svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		SenderInvoiceNo: "INV-001",
		Amount:          dec("10000"),
	})
	require.NoError(t, err)

	_, err = svc.CheckPayment(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, checks)

	// Paid is terminal; a second check never reaches the gateway.
	invoice, err := svc.CheckPayment(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusPaid, invoice.Status)
	assert.Equal(t, 1, checks)
}

func TestCancelInvoiceFromUnpaid(t *testing.T) {
	gateway := acceptingGateway()
	canceled := ""
	gateway.CancelInvoiceFunc = func(ctx context.Context, invoiceID string) error {
		canceled = invoiceID
		return nil
	}
	svc, _, _ := newTestInvoiceService(t, gateway)

	created, err := svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		SenderInvoiceNo: "INV-001",
		Amount:          dec("10000"),
	})
	require.NoError(t, err)

	invoice, err := svc.CancelInvoice(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusCanceled, invoice.Status)
	assert.Equal(t, "remote-INV-001", canceled)
}

func TestCancelInvoiceTerminalStateRejected(t *testing.T) {
	gateway := acceptingGateway()
	gateway.CheckPaymentFunc = func(ctx context.Context, invoiceID string) (*qpay.PaymentCheck, error) {
		return &qpay.PaymentCheck{Count: 1, PaidAmount: dec("10000")}, nil
	}
	svc, _, _ := newTestInvoiceService(t, gateway)

	created, err := svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		SenderInvoiceNo: "INV-001",
		Amount:          dec("10000"),
	})
	require.NoError(t, err)

	_, err = svc.CheckPayment(context.Background(), created.ID)
	require.NoError(t, err)

	_, err = svc.CancelInvoice(context.Background(), created.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
	assert.Contains(t, err.Error(), "PAID")
}

func TestCheckPaymentUsesInjectedClock(t *testing.T) {
	gateway := acceptingGateway()
	gateway.CheckPaymentFunc = func(ctx context.Context, invoiceID string) (*qpay.PaymentCheck, error) {
		return &qpay.PaymentCheck{Count: 1, PaidAmount: dec("10000")}, nil
	}
	svc, _, _ := newTestInvoiceService(t, gateway)

	frozen := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return frozen }

	created, err := svc.CreateInvoice(context.Background(), &CreateInvoiceInput{
		SenderInvoiceNo: "INV-001",
		Amount:          dec("10000"),
	})
	require.NoError(t, err)

	invoice, err := svc.CheckPayment(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, invoice.PaidAt)
	assert.True(t, invoice.PaidAt.Equal(frozen))
}
