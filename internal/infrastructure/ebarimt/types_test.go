package ebarimt

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyMarshalsFixedTwoDecimals(t *testing.T) {
	request := ReceiptRequest{
		MerchantTIN: "12345678",
		TotalAmount: Money(decimal.NewFromInt(15000)),
		TotalVAT:    Money(decimal.RequireFromString("1359.5")),
		Receipts: []ReceiptGroupPayload{
			{
				TaxType:     "VAT_ABLE",
				TotalAmount: Money(decimal.NewFromInt(15000)),
				Items: []ReceiptItemPayload{
					{
						Name:        "coffee",
						Qty:         decimal.NewFromInt(2),
						UnitPrice:   Money(decimal.RequireFromString("7500")),
						TotalAmount: Money(decimal.NewFromInt(15000)),
					},
				},
			},
		},
	}

	raw, err := json.Marshal(request)
	require.NoError(t, err)

	body := string(raw)
	assert.Contains(t, body, `"totalAmount":"15000.00"`)
	assert.Contains(t, body, `"totalVat":"1359.50"`)
	assert.Contains(t, body, `"totalCityTax":"0.00"`)
	assert.Contains(t, body, `"unitPrice":"7500.00"`)
}

func TestMoneyUnmarshalAcceptsQuotedAndBare(t *testing.T) {
	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"1359.50"`), &m))
	assert.True(t, m.Decimal().Equal(decimal.RequireFromString("1359.5")))

	require.NoError(t, json.Unmarshal([]byte(`1359.5`), &m))
	assert.True(t, m.Decimal().Equal(decimal.RequireFromString("1359.5")))
}
