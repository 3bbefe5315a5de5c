package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// TaxType is the tax-authority classification of a line item. It decides
// whether VAT is deducted from the gross amount at all; city-tax liability
// is an orthogonal per-item flag.
type TaxType int

const (
	TaxTypeVATAble TaxType = 0
	TaxTypeVATFree TaxType = 1
	TaxTypeVATZero TaxType = 2
	TaxTypeNotVAT  TaxType = 3
)

func (t TaxType) String() string {
	names := [...]string{"VAT_ABLE", "VAT_FREE", "VAT_ZERO", "NOT_VAT"}
	if int(t) < 0 || int(t) >= len(names) {
		return "VAT_ABLE"
	}
	return names[t]
}

// IsValid reports whether the value is one of the known classifications.
func (t TaxType) IsValid() bool {
	return t >= TaxTypeVATAble && t <= TaxTypeNotVAT
}

// ParseTaxType parses a tax-authority classification code
func ParseTaxType(s string) (TaxType, error) {
	switch s {
	case "VAT_ABLE":
		return TaxTypeVATAble, nil
	case "VAT_FREE":
		return TaxTypeVATFree, nil
	case "VAT_ZERO":
		return TaxTypeVATZero, nil
	case "NOT_VAT":
		return TaxTypeNotVAT, nil
	}
	return TaxTypeVATAble, fmt.Errorf("unknown tax type %q", s)
}

func (t TaxType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TaxType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = TaxType(i)
		return nil
	}
	parsed, err := ParseTaxType(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TaxType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *TaxType) Scan(value interface{}) error {
	if value == nil {
		*t = TaxTypeVATAble
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = TaxType(v)
	case int:
		*t = TaxType(v)
	}
	return nil
}
