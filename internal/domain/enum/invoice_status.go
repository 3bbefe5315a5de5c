package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// InvoiceStatus is the payment-gateway invoice state machine:
// UNPAID -> PAID | CANCELED. PAID and CANCELED are terminal.
type InvoiceStatus int

const (
	InvoiceStatusUnpaid   InvoiceStatus = 0
	InvoiceStatusPaid     InvoiceStatus = 1
	InvoiceStatusCanceled InvoiceStatus = 2
)

func (s InvoiceStatus) String() string {
	names := [...]string{"UNPAID", "PAID", "CANCELED"}
	if int(s) < 0 || int(s) >= len(names) {
		return "UNPAID"
	}
	return names[s]
}

// IsTerminal reports whether no further transition may leave this status
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCanceled
}

func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	switch s {
	case "UNPAID":
		return InvoiceStatusUnpaid, nil
	case "PAID":
		return InvoiceStatusPaid, nil
	case "CANCELED":
		return InvoiceStatusCanceled, nil
	}
	return InvoiceStatusUnpaid, fmt.Errorf("unknown invoice status %q", s)
}

func (s InvoiceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = InvoiceStatus(i)
		return nil
	}
	switch str {
	case "UNPAID":
		*s = InvoiceStatusUnpaid
	case "PAID":
		*s = InvoiceStatusPaid
	case "CANCELED":
		*s = InvoiceStatusCanceled
	}
	return nil
}

func (s InvoiceStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *InvoiceStatus) Scan(value interface{}) error {
	if value == nil {
		*s = InvoiceStatusUnpaid
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = InvoiceStatus(v)
	case int:
		*s = InvoiceStatus(v)
	}
	return nil
}
