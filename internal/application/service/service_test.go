package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/sangkips/mn-payments-api/internal/domain/entity"
	"github.com/sangkips/mn-payments-api/internal/infrastructure/ebarimt"
	"github.com/sangkips/mn-payments-api/internal/infrastructure/qpay"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.Receipt{},
		&entity.ReceiptItem{},
		&entity.Invoice{},
		&entity.PaymentURL{},
		&entity.PosTerminal{},
	))
	return db
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type mockEbarimtGateway struct {
	SubmitReceiptFunc      func(ctx context.Context, request *ebarimt.ReceiptRequest) (*ebarimt.ReceiptResponse, error)
	GetInfoFunc            func(ctx context.Context) (json.RawMessage, error)
	TriggerSendDataFunc    func(ctx context.Context) (json.RawMessage, error)
	LookupTaxpayerFunc     func(ctx context.Context, tin string) (*entity.TaxpayerInfo, error)
	LookupTINFunc          func(ctx context.Context, regNo string) (string, error)
	FetchDistrictCodesFunc func(ctx context.Context) ([]entity.DistrictCode, error)
}

func (m *mockEbarimtGateway) SubmitReceipt(ctx context.Context, request *ebarimt.ReceiptRequest) (*ebarimt.ReceiptResponse, error) {
	return m.SubmitReceiptFunc(ctx, request)
}

func (m *mockEbarimtGateway) GetInfo(ctx context.Context) (json.RawMessage, error) {
	return m.GetInfoFunc(ctx)
}

func (m *mockEbarimtGateway) TriggerSendData(ctx context.Context) (json.RawMessage, error) {
	return m.TriggerSendDataFunc(ctx)
}

func (m *mockEbarimtGateway) LookupTaxpayer(ctx context.Context, tin string) (*entity.TaxpayerInfo, error) {
	return m.LookupTaxpayerFunc(ctx, tin)
}

func (m *mockEbarimtGateway) LookupTIN(ctx context.Context, regNo string) (string, error) {
	return m.LookupTINFunc(ctx, regNo)
}

func (m *mockEbarimtGateway) FetchDistrictCodes(ctx context.Context) ([]entity.DistrictCode, error) {
	return m.FetchDistrictCodesFunc(ctx)
}

type mockPaymentGateway struct {
	CreateInvoiceFunc func(ctx context.Context, params *qpay.CreateInvoiceParams) (*qpay.Invoice, error)
	CheckPaymentFunc  func(ctx context.Context, invoiceID string) (*qpay.PaymentCheck, error)
	CancelInvoiceFunc func(ctx context.Context, invoiceID string) error
}

func (m *mockPaymentGateway) CreateInvoice(ctx context.Context, params *qpay.CreateInvoiceParams) (*qpay.Invoice, error) {
	return m.CreateInvoiceFunc(ctx, params)
}

func (m *mockPaymentGateway) CheckPayment(ctx context.Context, invoiceID string) (*qpay.PaymentCheck, error) {
	return m.CheckPaymentFunc(ctx, invoiceID)
}

func (m *mockPaymentGateway) CancelInvoice(ctx context.Context, invoiceID string) error {
	return m.CancelInvoiceFunc(ctx, invoiceID)
}
