package request

import "github.com/shopspring/decimal"

// ReceiptLineRequest represents one sold line in a receipt submission
type ReceiptLineRequest struct {
	Name               string          `json:"name" binding:"required,max=255"`
	TaxType            string          `json:"tax_type" binding:"required"`
	ClassificationCode string          `json:"classification_code" binding:"required,max=20"`
	TaxProductCode     string          `json:"tax_product_code" binding:"omitempty,max=20"`
	MeasureUnit        string          `json:"measure_unit" binding:"omitempty,max=50"`
	Qty                decimal.Decimal `json:"qty" binding:"required"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	IsCityTax          bool            `json:"is_city_tax"`
	BarCode            string          `json:"bar_code" binding:"omitempty,max=50"`
	BarCodeType        string          `json:"bar_code_type" binding:"omitempty,max=20"`
}

// SubmitReceiptRequest represents a receipt submission request
type SubmitReceiptRequest struct {
	Lines         []ReceiptLineRequest `json:"lines" binding:"required,dive"`
	BranchNo      string               `json:"branch_no" binding:"omitempty,max=10"`
	DistrictCode  string               `json:"district_code" binding:"omitempty,max=10"`
	CustomerRegNo string               `json:"customer_reg_no" binding:"omitempty,max=20"`
	ReportMonth   string               `json:"report_month" binding:"omitempty,len=7"`
	MailTo        string               `json:"mail_to" binding:"omitempty,email"`
}

// ReceiptFilterRequest represents receipt list filter parameters
type ReceiptFilterRequest struct {
	Search      string `form:"search"`
	Status      string `form:"status"`
	ReceiptType string `form:"receipt_type"`
	PosNo       string `form:"pos_no"`
	StartDate   string `form:"start_date"`
	EndDate     string `form:"end_date"`
	SortBy      string `form:"sort_by"`
	SortOrder   string `form:"sort_order"`
	Page        int    `form:"page"`
	PerPage     int    `form:"per_page"`
}

// TaxpayerLookupRequest represents a taxpayer directory lookup
type TaxpayerLookupRequest struct {
	TIN string `form:"tin"`
}
