package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ReceiptType distinguishes consumer/business receipts and invoices as the
// tax authority classifies them
type ReceiptType int

const (
	ReceiptTypeB2CReceipt ReceiptType = 0
	ReceiptTypeB2BReceipt ReceiptType = 1
	ReceiptTypeB2CInvoice ReceiptType = 2
	ReceiptTypeB2BInvoice ReceiptType = 3
)

func (t ReceiptType) String() string {
	names := [...]string{"B2C_RECEIPT", "B2B_RECEIPT", "B2C_INVOICE", "B2B_INVOICE"}
	if int(t) < 0 || int(t) >= len(names) {
		return "B2C_RECEIPT"
	}
	return names[t]
}

// ParseReceiptType parses a receipt type wire code
func ParseReceiptType(s string) (ReceiptType, error) {
	switch s {
	case "B2C_RECEIPT":
		return ReceiptTypeB2CReceipt, nil
	case "B2B_RECEIPT":
		return ReceiptTypeB2BReceipt, nil
	case "B2C_INVOICE":
		return ReceiptTypeB2CInvoice, nil
	case "B2B_INVOICE":
		return ReceiptTypeB2BInvoice, nil
	}
	return ReceiptTypeB2CReceipt, fmt.Errorf("unknown receipt type %q", s)
}

func (t ReceiptType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ReceiptType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = ReceiptType(i)
		return nil
	}
	parsed, err := ParseReceiptType(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t ReceiptType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *ReceiptType) Scan(value interface{}) error {
	if value == nil {
		*t = ReceiptTypeB2CReceipt
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = ReceiptType(v)
	case int:
		*t = ReceiptType(v)
	}
	return nil
}
