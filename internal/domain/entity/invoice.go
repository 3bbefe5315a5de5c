package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/mn-payments-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice is a payment-gateway invoice record. Status follows
// UNPAID -> PAID | CANCELED; terminal states are immutable. Version backs
// the optimistic check on every status transition so a racing poll and
// callback can never interleave updates.
type Invoice struct {
	ID               uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID        string             `gorm:"size:100;uniqueIndex;not null" json:"invoice_id"`
	InvoiceCode      string             `gorm:"size:100" json:"invoice_code"`
	Status           enum.InvoiceStatus `gorm:"default:0;index" json:"status"`
	Amount           decimal.Decimal    `gorm:"type:decimal(18,2);not null" json:"amount"`
	Currency         enum.Currency      `gorm:"size:3;default:'MNT'" json:"currency"`
	SenderInvoiceNo  string             `gorm:"size:100;not null;index" json:"sender_invoice_no"`
	SenderName       string             `gorm:"size:255" json:"sender_name,omitempty"`
	SenderTIN        string             `gorm:"size:20" json:"sender_tin,omitempty"`
	Description      string             `gorm:"size:500" json:"description"`
	CallbackURL      string             `gorm:"size:500" json:"callback_url"`
	QRText           string             `gorm:"type:text" json:"qr_text,omitempty"`
	QRImage          string             `gorm:"type:text" json:"qr_image,omitempty"`
	PaidAt           *time.Time         `json:"paid_at,omitempty"`
	LastPaymentCheck *time.Time         `json:"last_payment_check,omitempty"`
	PaymentResult    string             `gorm:"type:text" json:"-"`
	CallbackPayload  string             `gorm:"type:text" json:"-"`
	CallbackAt       *time.Time         `json:"-"`
	Version          int64              `gorm:"default:0" json:"-"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`

	// Relationships
	URLs []PaymentURL `gorm:"foreignKey:InvoiceID;references:ID" json:"urls,omitempty"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "qpay_invoices"
}

// PaymentURL is a bank-specific deep link attached to an invoice. Rows are
// created atomically with their invoice and never updated.
type PaymentURL struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID   uuid.UUID `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Position    int       `gorm:"not null" json:"position"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description,omitempty"`
	Link        string    `gorm:"size:1000;not null" json:"link"`
	Logo        string    `gorm:"size:500" json:"logo,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new payment URL
func (u *PaymentURL) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PaymentURL model
func (PaymentURL) TableName() string {
	return "qpay_payment_urls"
}
