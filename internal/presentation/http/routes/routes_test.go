package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/mn-payments-api/internal/application/service"
	"github.com/sangkips/mn-payments-api/internal/config"
	"github.com/sangkips/mn-payments-api/internal/domain/entity"
	"github.com/sangkips/mn-payments-api/internal/domain/enum"
	"github.com/sangkips/mn-payments-api/internal/infrastructure/ebarimt"
	"github.com/sangkips/mn-payments-api/internal/infrastructure/qpay"
	infraRepo "github.com/sangkips/mn-payments-api/internal/infrastructure/repository"
	"github.com/sangkips/mn-payments-api/internal/presentation/http/handler"
	"github.com/sangkips/mn-payments-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type routerEbarimt struct {
	SubmitReceiptFunc func(ctx context.Context, request *ebarimt.ReceiptRequest) (*ebarimt.ReceiptResponse, error)
}

func (g *routerEbarimt) SubmitReceipt(ctx context.Context, request *ebarimt.ReceiptRequest) (*ebarimt.ReceiptResponse, error) {
	return g.SubmitReceiptFunc(ctx, request)
}

func (g *routerEbarimt) GetInfo(ctx context.Context) (json.RawMessage, error) {
	return json.RawMessage(`{"posId":1}`), nil
}

func (g *routerEbarimt) TriggerSendData(ctx context.Context) (json.RawMessage, error) {
	return json.RawMessage(`{"success":true}`), nil
}

func (g *routerEbarimt) LookupTaxpayer(ctx context.Context, tin string) (*entity.TaxpayerInfo, error) {
	return &entity.TaxpayerInfo{TIN: tin, Found: true, VATPayer: true}, nil
}

func (g *routerEbarimt) LookupTIN(ctx context.Context, regNo string) (string, error) {
	return "37900846777", nil
}

func (g *routerEbarimt) FetchDistrictCodes(ctx context.Context) ([]entity.DistrictCode, error) {
	return []entity.DistrictCode{{BranchCode: "001", DistrictCode: "34"}}, nil
}

type routerQPay struct {
	CreateInvoiceFunc func(ctx context.Context, params *qpay.CreateInvoiceParams) (*qpay.Invoice, error)
	CheckPaymentFunc  func(ctx context.Context, invoiceID string) (*qpay.PaymentCheck, error)
}

func (g *routerQPay) CreateInvoice(ctx context.Context, params *qpay.CreateInvoiceParams) (*qpay.Invoice, error) {
	return g.CreateInvoiceFunc(ctx, params)
}

func (g *routerQPay) CheckPayment(ctx context.Context, invoiceID string) (*qpay.PaymentCheck, error) {
	return g.CheckPaymentFunc(ctx, invoiceID)
}

func (g *routerQPay) CancelInvoice(ctx context.Context, invoiceID string) error {
	return nil
}

type testApp struct {
	router *gin.Engine
	db     *gorm.DB
}

func setupTestApp(t *testing.T, eb *routerEbarimt, qp *routerQPay) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.Receipt{},
		&entity.ReceiptItem{},
		&entity.Invoice{},
		&entity.PaymentURL{},
		&entity.PosTerminal{},
		&entity.IdempotencyKey{},
	))

	hash, err := utils.HashPassword("terminal-secret")
	require.NoError(t, err)
	require.NoError(t, db.Create(&entity.PosTerminal{
		Code:       "POS-001",
		Name:       "Checkout 1",
		SecretHash: hash,
		BranchNo:   "001",
		Active:     true,
	}).Error)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	jwtManager := utils.NewJWTManager("router-test-secret", time.Hour, 24*time.Hour)

	receiptRepo := infraRepo.NewReceiptRepository(db)
	invoiceRepo := infraRepo.NewInvoiceRepository(db)
	terminalRepo := infraRepo.NewTerminalRepository(db)
	idempotencyRepo := infraRepo.NewIdempotencyRepository(db)

	merchant := service.MerchantInfo{TIN: "37900846102", PosNo: "10008891", BranchNo: "001", DistrictCode: "34"}
	receiptService := service.NewReceiptService(receiptRepo, eb, nil, merchant, time.Hour, log)
	invoiceService := service.NewInvoiceService(invoiceRepo, qp, log)
	reconcileService := service.NewReconcileService(invoiceRepo, qp, log)
	authService := service.NewAuthService(terminalRepo, jwtManager)

	handlers := &Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Receipt:  handler.NewReceiptHandler(receiptService),
		Invoice:  handler.NewInvoiceHandler(invoiceService),
		Callback: handler.NewCallbackHandler(reconcileService),
	}

	cfg := &config.Config{
		App: config.AppConfig{Name: "mn-payments-api", Env: "test"},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		},
		RateLimit: config.RateLimitConfig{Requests: 100, Duration: 1},
	}

	router := Setup(handlers, &Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		Log:             log,
		IdempotencyRepo: idempotencyRepo,
	})

	return &testApp{router: router, db: db}
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) login(t *testing.T) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/auth/token", "", gin.H{
		"code":   "POS-001",
		"secret": "terminal-secret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.AccessToken)
	return resp.Data.AccessToken
}

func TestRouterHealth(t *testing.T) {
	app := setupTestApp(t, &routerEbarimt{}, &routerQPay{})

	w := app.do(t, http.MethodGet, "/health", "", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestRouterLoginRejectsBadSecret(t *testing.T) {
	app := setupTestApp(t, &routerEbarimt{}, &routerQPay{})

	w := app.do(t, http.MethodPost, "/api/v1/auth/token", "", gin.H{
		"code":   "POS-001",
		"secret": "wrong-secret",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterProtectedRoutesRequireToken(t *testing.T) {
	app := setupTestApp(t, &routerEbarimt{}, &routerQPay{})

	w := app.do(t, http.MethodGet, "/api/v1/receipts", "", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterSubmitReceipt(t *testing.T) {
	eb := &routerEbarimt{
		SubmitReceiptFunc: func(ctx context.Context, request *ebarimt.ReceiptRequest) (*ebarimt.ReceiptResponse, error) {
			return &ebarimt.ReceiptResponse{
				ID:      "00000000009999999993820293759220",
				Lottery: "TK12345678",
				QRData:  "qr-data",
				Date:    "2026-02-10 14:30:00",
				Status:  ebarimt.PosStatusSuccess,
			}, nil
		},
	}
	app := setupTestApp(t, eb, &routerQPay{})
	token := app.login(t)

	w := app.do(t, http.MethodPost, "/api/v1/receipts", token, gin.H{
		"lines": []gin.H{
			{
				"name":                "Americano",
				"tax_type":            "VAT_ABLE",
				"classification_code": "8471300000",
				"qty":                 "2",
				"total_amount":        "11000",
			},
		},
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "TK12345678")

	var count int64
	require.NoError(t, app.db.Model(&entity.Receipt{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRouterSubmitReceiptRejectsUnknownTaxType(t *testing.T) {
	app := setupTestApp(t, &routerEbarimt{}, &routerQPay{})
	token := app.login(t)

	w := app.do(t, http.MethodPost, "/api/v1/receipts", token, gin.H{
		"lines": []gin.H{
			{
				"name":                "Americano",
				"tax_type":            "NOT_A_TAX_TYPE",
				"classification_code": "8471300000",
				"qty":                 "1",
				"total_amount":        "5000",
			},
		},
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouterInvoiceCreateRequiresIdempotencyKey(t *testing.T) {
	app := setupTestApp(t, &routerEbarimt{}, &routerQPay{})
	token := app.login(t)

	w := app.do(t, http.MethodPost, "/api/v1/invoices", token, gin.H{
		"sender_invoice_no": "ORDER-100",
		"description":       "Table 4",
		"amount":            "25000",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouterInvoiceCreateReplaysIdempotentResponse(t *testing.T) {
	calls := 0
	qp := &routerQPay{
		CreateInvoiceFunc: func(ctx context.Context, params *qpay.CreateInvoiceParams) (*qpay.Invoice, error) {
			calls++
			return &qpay.Invoice{
				InvoiceID: "GATEWAY-INV-1",
				QRText:    "qr-text",
				URLs: []qpay.InvoiceURL{
					{Name: "Khan bank", Link: "khanbank://q?qPay_QRcode=x"},
				},
			}, nil
		},
	}
	app := setupTestApp(t, &routerEbarimt{}, qp)
	token := app.login(t)

	body := gin.H{
		"sender_invoice_no": "ORDER-100",
		"description":       "Table 4",
		"amount":            "25000",
	}
	headers := map[string]string{"Idempotency-Key": "11111111-2222-3333-4444-555555555555"}

	first := app.do(t, http.MethodPost, "/api/v1/invoices", token, body, headers)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := app.do(t, http.MethodPost, "/api/v1/invoices", token, body, headers)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, 1, calls)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestRouterCallbackMarksInvoicePaid(t *testing.T) {
	qp := &routerQPay{
		CheckPaymentFunc: func(ctx context.Context, invoiceID string) (*qpay.PaymentCheck, error) {
			return &qpay.PaymentCheck{
				Count:      1,
				PaidAmount: decimal.NewFromInt(25000),
				Rows: []qpay.PaymentRow{
					{PaymentID: "PAY-1", PaymentStatus: "PAID", PaymentAmount: decimal.NewFromInt(25000)},
				},
			}, nil
		},
	}
	app := setupTestApp(t, &routerEbarimt{}, qp)

	invoice := &entity.Invoice{
		InvoiceID:       "GATEWAY-INV-7",
		Status:          enum.InvoiceStatusUnpaid,
		Amount:          decimal.NewFromInt(25000),
		Currency:        enum.CurrencyMNT,
		SenderInvoiceNo: "ORDER-700",
		Description:     "Table 7",
	}
	require.NoError(t, app.db.Create(invoice).Error)

	// The gateway calls back with the sender invoice number stamped into
	// the callback URL at creation time.
	w := app.do(t, http.MethodPost, "/api/v1/payments/callback?invoice_id=ORDER-700", "",
		gin.H{"payment_id": "PAY-1"}, nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored entity.Invoice
	require.NoError(t, app.db.Where("invoice_id = ?", "GATEWAY-INV-7").First(&stored).Error)
	assert.Equal(t, enum.InvoiceStatusPaid, stored.Status)
	assert.NotNil(t, stored.PaidAt)
}

func TestRouterCallbackUnknownInvoice(t *testing.T) {
	app := setupTestApp(t, &routerEbarimt{}, &routerQPay{})

	w := app.do(t, http.MethodPost, "/api/v1/payments/callback?invoice_id=NOPE", "", nil, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
