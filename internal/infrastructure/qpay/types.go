package qpay

import (
	"github.com/shopspring/decimal"
)

// CreateInvoiceParams carries the merchant-side fields of a new invoice.
type CreateInvoiceParams struct {
	SenderInvoiceNo  string
	SenderBranchCode string
	ReceiverCode     string
	Description      string
	Amount           decimal.Decimal
}

// money renders a monetary amount as a fixed two-decimal string, the form
// the gateway expects for every amount field.
type money decimal.Decimal

func (m money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + decimal.Decimal(m).StringFixed(2) + `"`), nil
}

func (m *money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = money(d)
	return nil
}

type createInvoiceRequest struct {
	InvoiceCode         string `json:"invoice_code"`
	SenderInvoiceNo     string `json:"sender_invoice_no"`
	SenderBranchCode    string `json:"sender_branch_code"`
	InvoiceReceiverCode string `json:"invoice_receiver_code"`
	InvoiceDescription  string `json:"invoice_description"`
	Amount              money  `json:"amount"`
	CallbackURL         string `json:"callback_url"`
}

// InvoiceURL is a bank deep link returned with a created invoice.
type InvoiceURL struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Logo        string `json:"logo"`
}

// Invoice is the gateway's answer to a created invoice. InvoiceCode and
// CallbackURL are not part of the gateway response; the client stamps the
// values it sent so callers can record them with the invoice.
type Invoice struct {
	InvoiceID    string       `json:"invoice_id"`
	QRText       string       `json:"qr_text"`
	QRImage      string       `json:"qr_image"`
	QPayShortURL string       `json:"qPay_shortUrl"`
	URLs         []InvoiceURL `json:"urls"`
	InvoiceCode  string       `json:"-"`
	CallbackURL  string       `json:"-"`
}

// InvoiceDetails is the full state of an invoice as the gateway sees it.
type InvoiceDetails struct {
	InvoiceID          string          `json:"invoice_id"`
	InvoiceStatus      string          `json:"invoice_status"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	InvoiceDescription string          `json:"invoice_description"`
	SenderInvoiceNo    string          `json:"sender_invoice_no"`
}

type checkPaymentRequest struct {
	ObjectType string             `json:"object_type"`
	ObjectID   string             `json:"object_id"`
	Offset     checkPaymentOffset `json:"offset"`
}

type checkPaymentOffset struct {
	PageNumber int `json:"page_number"`
	PageLimit  int `json:"page_limit"`
}

// PaymentRow is a single settled transaction on an invoice.
type PaymentRow struct {
	PaymentID     string          `json:"payment_id"`
	PaymentStatus string          `json:"payment_status"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	PaymentWallet string          `json:"payment_wallet"`
	PaymentDate   string          `json:"payment_date"`
}

// PaymentCheck is the gateway's payment/check response. Count zero means
// nothing has settled against the invoice yet.
type PaymentCheck struct {
	Count      int             `json:"count"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	Rows       []PaymentRow    `json:"rows"`
}

type tokenResponse struct {
	TokenType        string `json:"token_type"`
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshToken     string `json:"refresh_token"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}
