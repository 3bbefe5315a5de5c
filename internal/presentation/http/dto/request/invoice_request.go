package request

import "github.com/shopspring/decimal"

// CreateInvoiceRequest represents an invoice creation request
type CreateInvoiceRequest struct {
	SenderInvoiceNo string          `json:"sender_invoice_no" binding:"required,max=45"`
	SenderName      string          `json:"sender_name" binding:"omitempty,max=100"`
	SenderTIN       string          `json:"sender_tin" binding:"omitempty,max=20"`
	ReceiverCode    string          `json:"receiver_code" binding:"omitempty,max=45"`
	Description     string          `json:"description" binding:"required,max=255"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Currency        string          `json:"currency" binding:"omitempty,len=3"`
}

// InvoiceFilterRequest represents invoice list filter parameters
type InvoiceFilterRequest struct {
	Search    string `form:"search"`
	Status    string `form:"status"`
	SenderTIN string `form:"sender_tin"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}

// PaymentCallbackRequest represents the gateway callback notification.
// The gateway appends the payment ID as a query parameter; the body is
// forwarded verbatim to the reconciler.
type PaymentCallbackRequest struct {
	InvoiceID string `form:"invoice_id"`
	PaymentID string `form:"qpay_payment_id"`
}
