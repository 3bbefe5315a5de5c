package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/mn-payments-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Receipt is a tax-authority receipt record. It is created only after the
// authority has acknowledged a submission and is never mutated afterwards;
// corrections are new submissions.
type Receipt struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	BillID        string             `gorm:"size:100;uniqueIndex;not null" json:"bill_id"`
	LotteryNumber string             `gorm:"size:50" json:"lottery_number,omitempty"`
	ReceiptDate   time.Time          `gorm:"not null" json:"receipt_date"`
	ReceiptType   enum.ReceiptType   `gorm:"default:0" json:"receipt_type"`
	Status        enum.ReceiptStatus `gorm:"default:0;index" json:"status"`
	MerchantTIN   string             `gorm:"size:20;not null;index" json:"merchant_tin"`
	PosNo         string             `gorm:"size:20;not null" json:"pos_no"`
	BranchNo      string             `gorm:"size:10;not null" json:"branch_no"`
	DistrictCode  string             `gorm:"size:10;not null" json:"district_code"`
	CustomerTIN   string             `gorm:"size:20" json:"customer_tin,omitempty"`
	ReportMonth   string             `gorm:"size:10" json:"report_month,omitempty"`
	TotalAmount   decimal.Decimal    `gorm:"type:decimal(18,2);not null" json:"total_amount"`
	TotalVAT      decimal.Decimal    `gorm:"type:decimal(18,2);not null" json:"total_vat"`
	TotalCityTax  decimal.Decimal    `gorm:"type:decimal(18,2);not null" json:"total_city_tax"`
	Message       string             `gorm:"size:500" json:"message,omitempty"`
	QRData        string             `gorm:"type:text" json:"qr_data,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`

	// Relationships
	Items []ReceiptItem `gorm:"foreignKey:ReceiptID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new receipt
func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Receipt model
func (Receipt) TableName() string {
	return "ebarimt_receipts"
}

// ReceiptItem is a single line on a submitted receipt. Position preserves
// submission order; the authority renders lines in the order they were sent.
type ReceiptItem struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	ReceiptID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"receipt_id"`
	Position           int              `gorm:"not null" json:"position"`
	Name               string           `gorm:"size:255;not null" json:"name"`
	TaxType            enum.TaxType     `gorm:"default:0" json:"tax_type"`
	ClassificationCode string           `gorm:"size:20;not null" json:"classification_code"`
	TaxProductCode     string           `gorm:"size:20" json:"tax_product_code"`
	MeasureUnit        string           `gorm:"size:20" json:"measure_unit"`
	Qty                decimal.Decimal  `gorm:"type:decimal(18,2);not null" json:"qty"`
	UnitPrice          decimal.Decimal  `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	TotalAmount        decimal.Decimal  `gorm:"type:decimal(18,2);not null" json:"total_amount"`
	TotalVAT           decimal.Decimal  `gorm:"type:decimal(18,2);not null" json:"total_vat"`
	TotalCityTax       decimal.Decimal  `gorm:"type:decimal(18,2);not null" json:"total_city_tax"`
	IsCityTax          bool             `gorm:"default:false" json:"is_city_tax"`
	BarCode            string           `gorm:"size:50" json:"bar_code,omitempty"`
	BarCodeType        enum.BarcodeType `gorm:"default:0" json:"bar_code_type"`
	CreatedAt          time.Time        `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new receipt item
func (i *ReceiptItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReceiptItem model
func (ReceiptItem) TableName() string {
	return "ebarimt_receipt_items"
}
