package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// BarcodeType identifies the symbology of an optional line-item barcode
type BarcodeType int

const (
	BarcodeTypeUndefined BarcodeType = 0
	BarcodeTypeGS1       BarcodeType = 1
	BarcodeTypeISBN      BarcodeType = 2
)

func (b BarcodeType) String() string {
	names := [...]string{"UNDEFINED", "GS1", "ISBN"}
	if int(b) < 0 || int(b) >= len(names) {
		return "UNDEFINED"
	}
	return names[b]
}

func ParseBarcodeType(s string) (BarcodeType, error) {
	switch s {
	case "", "UNDEFINED":
		return BarcodeTypeUndefined, nil
	case "GS1":
		return BarcodeTypeGS1, nil
	case "ISBN":
		return BarcodeTypeISBN, nil
	}
	return BarcodeTypeUndefined, fmt.Errorf("unknown barcode type %q", s)
}

func (b BarcodeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *BarcodeType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*b = BarcodeType(i)
		return nil
	}
	switch str {
	case "UNDEFINED":
		*b = BarcodeTypeUndefined
	case "GS1":
		*b = BarcodeTypeGS1
	case "ISBN":
		*b = BarcodeTypeISBN
	}
	return nil
}

func (b BarcodeType) Value() (driver.Value, error) {
	return int64(b), nil
}

func (b *BarcodeType) Scan(value interface{}) error {
	if value == nil {
		*b = BarcodeTypeUndefined
		return nil
	}
	switch v := value.(type) {
	case int64:
		*b = BarcodeType(v)
	case int:
		*b = BarcodeType(v)
	}
	return nil
}
