package ebarimt

import (
	"github.com/shopspring/decimal"
)

// Money is a monetary amount on the wire. PosAPI wants every amount as a
// string with exactly two decimal places.
type Money decimal.Decimal

// MarshalJSON renders the amount as a fixed two-decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + decimal.Decimal(m).StringFixed(2) + `"`), nil
}

// UnmarshalJSON accepts both quoted and bare decimal notations.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.Decimal(m)
}

func (m Money) String() string {
	return decimal.Decimal(m).StringFixed(2)
}

// ReceiptItemPayload is a single line in the PosAPI receipt body.
type ReceiptItemPayload struct {
	Name               string          `json:"name"`
	BarCode            string          `json:"barCode"`
	BarCodeType        string          `json:"barCodeType"`
	ClassificationCode string          `json:"classificationCode"`
	TaxProductCode     string          `json:"taxProductCode"`
	MeasureUnit        string          `json:"measureUnit"`
	Qty                decimal.Decimal `json:"qty"`
	UnitPrice          Money           `json:"unitPrice"`
	TotalAmount        Money           `json:"totalAmount"`
	TotalVAT           Money           `json:"totalVat"`
	TotalCityTax       Money           `json:"totalCityTax"`
}

// ReceiptGroupPayload is one tax-type group inside a receipt submission.
type ReceiptGroupPayload struct {
	TaxType      string               `json:"taxType"`
	Items        []ReceiptItemPayload `json:"items"`
	TotalAmount  Money                `json:"totalAmount"`
	TotalVAT     Money                `json:"totalVat"`
	TotalCityTax Money                `json:"totalCityTax"`
}

// ReceiptRequest is the full PosAPI POST rest/receipt body.
type ReceiptRequest struct {
	MerchantTIN  string                `json:"merchantTin"`
	PosNo        string                `json:"posNo"`
	BranchNo     string                `json:"branchNo"`
	DistrictCode string                `json:"districtCode"`
	Type         string                `json:"type"`
	CustomerTIN  string                `json:"customerTin"`
	ConsumerNo   string                `json:"consumerNo"`
	ReportMonth  string                `json:"reportMonth,omitempty"`
	TotalAmount  Money                 `json:"totalAmount"`
	TotalVAT     Money                 `json:"totalVat"`
	TotalCityTax Money                 `json:"totalCityTax"`
	Receipts     []ReceiptGroupPayload `json:"receipts"`
}

// ReceiptResponse is what PosAPI returns for a submitted receipt.
type ReceiptResponse struct {
	ID           string          `json:"id"`
	Lottery      string          `json:"lottery"`
	QRData       string          `json:"qrData"`
	Date         string          `json:"date"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	TotalVAT     decimal.Decimal `json:"totalVat"`
	TotalCityTax decimal.Decimal `json:"totalCityTax"`
	Status       string          `json:"status"`
	Message      string          `json:"message"`
}

// PosAPI receipt submission statuses.
const (
	PosStatusSuccess = "SUCCESS"
	PosStatusError   = "ERROR"
	PosStatusPayment = "PAYMENT"
)

// tpiEnvelope is the common {status, msg, data} wrapper of the TPI info
// endpoints.
type tpiEnvelope struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
}

type taxpayerInfoResponse struct {
	tpiEnvelope
	Data struct {
		Name                  string `json:"name"`
		Found                 bool   `json:"found"`
		VATPayer              bool   `json:"vatPayer"`
		CityPayer             bool   `json:"cityPayer"`
		FreeProject           bool   `json:"freeProject"`
		VATPayerRegisteredDay string `json:"vatpayerRegisteredDate"`
	} `json:"data"`
}

type tinInfoResponse struct {
	tpiEnvelope
	Data int64 `json:"data"`
}

type branchInfoResponse struct {
	tpiEnvelope
	Data []struct {
		BranchCode   string `json:"branchCode"`
		BranchName   string `json:"branchName"`
		DistrictCode string `json:"districtCode"`
		DistrictName string `json:"districtName"`
	} `json:"data"`
}

type tpiTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
