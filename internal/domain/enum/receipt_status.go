package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ReceiptStatus is the terminal status a receipt record is created with.
// Receipts never transition in place; PAYMENT marks receipts tied to a
// still-pending invoice and is set at creation time.
type ReceiptStatus int

const (
	ReceiptStatusSuccess ReceiptStatus = 0
	ReceiptStatusError   ReceiptStatus = 1
	ReceiptStatusPayment ReceiptStatus = 2
)

func (s ReceiptStatus) String() string {
	names := [...]string{"SUCCESS", "ERROR", "PAYMENT"}
	if int(s) < 0 || int(s) >= len(names) {
		return "ERROR"
	}
	return names[s]
}

func ParseReceiptStatus(s string) (ReceiptStatus, error) {
	switch s {
	case "SUCCESS":
		return ReceiptStatusSuccess, nil
	case "ERROR":
		return ReceiptStatusError, nil
	case "PAYMENT":
		return ReceiptStatusPayment, nil
	}
	return ReceiptStatusError, fmt.Errorf("unknown receipt status %q", s)
}

func (s ReceiptStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ReceiptStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = ReceiptStatus(i)
		return nil
	}
	switch str {
	case "SUCCESS":
		*s = ReceiptStatusSuccess
	case "ERROR":
		*s = ReceiptStatusError
	case "PAYMENT":
		*s = ReceiptStatusPayment
	}
	return nil
}

func (s ReceiptStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *ReceiptStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ReceiptStatusError
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = ReceiptStatus(v)
	case int:
		*s = ReceiptStatus(v)
	}
	return nil
}
